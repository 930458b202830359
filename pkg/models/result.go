package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Error messages returned by the proxy.
const (
	ErrorInvalidRequestBody = "Invalid request body"
	ErrorInitiatingSession  = "Error initiating session"
	ErrorUnexpected         = "An unexpected error occurred"
	ErrorRequestTooLarge    = "Request body too large"
)

// ErrorResult is the error body returned by the proxy.
type ErrorResult struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Message returns the text shown to a user: details when present, else error.
func (e ErrorResult) Message() string {
	if e.Details != "" {
		return e.Details
	}
	return e.Error
}

// DisplayType is the content format a user can ask the flow to generate.
type DisplayType string

const (
	DisplayTypeReel     DisplayType = "Reel"
	DisplayTypeCarousel DisplayType = "Carousel"
	DisplayTypeStatic   DisplayType = "Static"
)

// DefaultDisplayType is preselected in the form.
const DefaultDisplayType = DisplayTypeStatic

// DisplayTypes lists the selectable options in display order.
var DisplayTypes = []DisplayType{DisplayTypeReel, DisplayTypeCarousel, DisplayTypeStatic}

// ParseDisplayType accepts only one of the enumerated options.
func ParseDisplayType(s string) (DisplayType, error) {
	for _, dt := range DisplayTypes {
		if string(dt) == s {
			return dt, nil
		}
	}
	return "", fmt.Errorf("unknown display type %q (want one of Reel, Carousel, Static)", s)
}

// FlowMessage is the renderable part of a successful run.
type FlowMessage struct {
	Text      string `json:"text"`
	Timestamp string `json:"timestamp"`
}

// ResultKind tags a SubmissionResult.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultFailure:
		return "failure"
	default:
		return fmt.Sprintf("ResultKind(%d)", int(k))
	}
}

// SubmissionResult is either a success payload or an ErrorResult.
type SubmissionResult struct {
	Kind ResultKind
	// Payload is the raw success body as returned by the proxy.
	Payload json.RawMessage
	// Message is extracted from Payload on success.
	Message FlowMessage
	// Failure is set when Kind is ResultFailure.
	Failure ErrorResult
	// ReceivedAt is when the response arrived.
	ReceivedAt time.Time
}

// Succeeded reports whether the result is the success variant.
func (r SubmissionResult) Succeeded() bool { return r.Kind == ResultSuccess }

// NewSuccess builds a success result and extracts its message.
func NewSuccess(payload json.RawMessage, receivedAt time.Time) SubmissionResult {
	return SubmissionResult{
		Kind:       ResultSuccess,
		Payload:    payload,
		Message:    ExtractMessage(payload),
		ReceivedAt: receivedAt,
	}
}

// NewFailure builds a failure result.
func NewFailure(failure ErrorResult, receivedAt time.Time) SubmissionResult {
	return SubmissionResult{Kind: ResultFailure, Failure: failure, ReceivedAt: receivedAt}
}

// langflowRunResponse is the subset of the Langflow run response that carries
// the chat output message.
type langflowRunResponse struct {
	Outputs []struct {
		Outputs []struct {
			Results struct {
				Message FlowMessage `json:"message"`
			} `json:"results"`
		} `json:"outputs"`
	} `json:"outputs"`
}

// ExtractMessage reads {text, timestamp} from the top level of payload, falling
// back to outputs[0].outputs[0].results.message of a Langflow run response.
func ExtractMessage(payload json.RawMessage) FlowMessage {
	var msg FlowMessage
	if err := json.Unmarshal(payload, &msg); err == nil && msg.Text != "" {
		return msg
	}

	var run langflowRunResponse
	if err := json.Unmarshal(payload, &run); err != nil {
		return msg
	}
	if len(run.Outputs) == 0 || len(run.Outputs[0].Outputs) == 0 {
		return msg
	}
	nested := run.Outputs[0].Outputs[0].Results.Message
	if nested.Text == "" {
		return msg
	}
	return nested
}
