// Package models defines the request and response shapes shared by the
// content studio proxy, its clients and the Langflow run API.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
)

// ErrInvalidRequestBody is returned when a run request is missing a required
// field or carries a field of the wrong type.
var ErrInvalidRequestBody = errors.New(ErrorInvalidRequestBody)

// Langflow chat I/O types sent on every run.
const (
	InputTypeChat  = "chat"
	OutputTypeChat = "chat"
)

// RunFlowRequest is the body accepted by POST /api/runFlow.
type RunFlowRequest struct {
	FlowID     string          `json:"flowId"`
	LangflowID string          `json:"langflowId"` // workflow namespace
	InputValue string          `json:"inputValue"`
	Tweaks     json.RawMessage `json:"tweaks"`
	Stream     bool            `json:"stream"`
}

// LangflowRunRequest is the body posted to {baseURL}/lf/{langflowId}/api/v1/run/{flowId}.
type LangflowRunRequest struct {
	InputValue string          `json:"input_value"`
	InputType  string          `json:"input_type"`
	OutputType string          `json:"output_type"`
	Tweaks     json.RawMessage `json:"tweaks"`
}

// NewLangflowRunRequest reshapes an inbound request into the Langflow run body.
func NewLangflowRunRequest(req RunFlowRequest) LangflowRunRequest {
	return LangflowRunRequest{
		InputValue: req.InputValue,
		InputType:  InputTypeChat,
		OutputType: OutputTypeChat,
		Tweaks:     req.Tweaks,
	}
}

// ParseRunFlowRequest decodes and validates a run request body.
//
// flowId, langflowId and inputValue must be non-empty strings. tweaks and
// stream only have to be present: an empty object, null tweaks or a false
// stream are all accepted. Any violation yields ErrInvalidRequestBody.
func ParseRunFlowRequest(body []byte) (RunFlowRequest, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return RunFlowRequest{}, ErrInvalidRequestBody
	}

	var req RunFlowRequest
	var ok bool
	if req.FlowID, ok = requiredString(fields, "flowId"); !ok {
		return RunFlowRequest{}, ErrInvalidRequestBody
	}
	if req.LangflowID, ok = requiredString(fields, "langflowId"); !ok {
		return RunFlowRequest{}, ErrInvalidRequestBody
	}
	if req.InputValue, ok = requiredString(fields, "inputValue"); !ok {
		return RunFlowRequest{}, ErrInvalidRequestBody
	}

	tweaks, present := fields["tweaks"]
	if !present || !isObjectOrNull(tweaks) {
		return RunFlowRequest{}, ErrInvalidRequestBody
	}
	req.Tweaks = compact(tweaks)

	stream, present := fields["stream"]
	if !present {
		return RunFlowRequest{}, ErrInvalidRequestBody
	}
	if err := json.Unmarshal(stream, &req.Stream); err != nil || isNull(stream) {
		return RunFlowRequest{}, ErrInvalidRequestBody
	}

	return req, nil
}

// Validate applies the same rules as ParseRunFlowRequest to an already typed
// request. A nil Tweaks counts as absent.
func (r RunFlowRequest) Validate() error {
	if r.FlowID == "" || r.LangflowID == "" || r.InputValue == "" {
		return ErrInvalidRequestBody
	}
	if len(r.Tweaks) == 0 || !isObjectOrNull(r.Tweaks) {
		return ErrInvalidRequestBody
	}
	return nil
}

func requiredString(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, present := fields[key]
	if !present || isNull(raw) {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil || s == "" {
		return "", false
	}
	return s, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isObjectOrNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return true
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Valid(trimmed)
}

func compact(raw json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
