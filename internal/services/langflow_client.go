package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"content-studio/backend/pkg/models"
)

// UpstreamError is returned when Langflow answers with a non-2xx status.
// The status is not interpreted: every code is reported the same way.
type UpstreamError struct {
	StatusCode int
	StatusText string
	// Body is the response body serialized as compact JSON.
	Body string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%d %s - %s", e.StatusCode, e.StatusText, e.Body)
}

// LangflowClient is an HTTP implementation of the FlowRunner interface.
type LangflowClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLangflowClient creates a new LangflowClient. httpClient is expected to
// attach the application token (see auth.NewHTTPClient).
func NewLangflowClient(baseURL string, httpClient *http.Client) *LangflowClient {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &LangflowClient{baseURL: baseURL, httpClient: httpClient}
}

// RunURL builds {baseURL}/lf/{langflowId}/api/v1/run/{flowId}?stream={stream}.
func (c *LangflowClient) RunURL(req models.RunFlowRequest) string {
	return c.baseURL +
		"/lf/" + url.PathEscape(req.LangflowID) +
		"/api/v1/run/" + url.PathEscape(req.FlowID) +
		"?stream=" + strconv.FormatBool(req.Stream)
}

// RunFlow posts the chat input to the flow and returns the response body.
func (c *LangflowClient) RunFlow(ctx context.Context, req models.RunFlowRequest) (json.RawMessage, error) {
	requestBody, err := json.Marshal(models.NewLangflowRunRequest(req))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RunURL(req), bytes.NewReader(requestBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{
			StatusCode: resp.StatusCode,
			StatusText: http.StatusText(resp.StatusCode),
			Body:       serializeBody(body),
		}
	}

	var payload json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}
	return json.RawMessage(body), nil
}

// serializeBody renders an error body as compact JSON. Bodies that are not
// JSON are quoted as a JSON string.
func serializeBody(body []byte) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err == nil {
		return buf.String()
	}
	quoted, _ := json.Marshal(string(body))
	return string(quoted)
}
