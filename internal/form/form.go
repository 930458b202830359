// Package form is the client side of a flow run: it collects one input,
// submits it through the proxy and keeps what should be displayed.
package form

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"content-studio/backend/pkg/models"
)

// ErrBusy is returned when a submission is attempted while another is in flight.
var ErrBusy = errors.New("form: a submission is already in progress")

// Submitter sends a run request and reports the tagged outcome.
type Submitter interface {
	RunFlow(ctx context.Context, req models.RunFlowRequest) models.SubmissionResult
}

// State is what the form displays. At most one of Loading, Error and Result
// is set.
type State struct {
	Loading bool
	Error   string
	Result  *models.SubmissionResult
}

// Form holds the busy flag and the last outcome. It is safe for concurrent use.
type Form struct {
	submitter  Submitter
	flowID     string
	langflowID string

	mu     sync.Mutex
	busy   bool
	errMsg string
	result *models.SubmissionResult
}

// New creates a Form bound to one flow.
func New(submitter Submitter, flowID, langflowID string) *Form {
	return &Form{submitter: submitter, flowID: flowID, langflowID: langflowID}
}

// Submit sends free text as the flow input and blocks until the outcome is
// known. It returns ErrBusy without sending anything when a prior submission
// has not finished.
func (f *Form) Submit(ctx context.Context, input string) (models.SubmissionResult, error) {
	f.mu.Lock()
	if f.busy {
		f.mu.Unlock()
		return models.SubmissionResult{}, ErrBusy
	}
	f.busy = true
	f.errMsg = ""
	f.mu.Unlock()

	result := f.submitter.RunFlow(ctx, models.RunFlowRequest{
		FlowID:     f.flowID,
		LangflowID: f.langflowID,
		InputValue: input,
		Tweaks:     json.RawMessage(`{}`),
		Stream:     false,
	})

	f.mu.Lock()
	defer f.mu.Unlock()
	f.busy = false
	if result.Succeeded() {
		f.result = &result
		f.errMsg = ""
	} else {
		f.result = nil
		f.errMsg = result.Failure.Message()
	}
	return result, nil
}

// SubmitDisplayType submits one of the enumerated display types.
func (f *Form) SubmitDisplayType(ctx context.Context, dt models.DisplayType) (models.SubmissionResult, error) {
	if _, err := models.ParseDisplayType(string(dt)); err != nil {
		return models.SubmissionResult{}, err
	}
	return f.Submit(ctx, string(dt))
}

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.busy
}

// State returns a snapshot of what should be displayed.
func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.busy {
		return State{Loading: true}
	}
	if f.errMsg != "" {
		return State{Error: f.errMsg}
	}
	if f.result != nil {
		r := *f.result
		return State{Result: &r}
	}
	return State{}
}
