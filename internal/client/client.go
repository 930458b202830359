// Package client calls the content studio proxy and maps its responses onto
// models.SubmissionResult.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"content-studio/backend/pkg/models"
)

// RunFlowPath is the proxy route for flow runs.
const RunFlowPath = "/api/runFlow"

// Client talks to the proxy.
type Client struct {
	BaseURL string
	Client  *http.Client
	// Now is used to stamp results; defaults to time.Now.
	Now func() time.Time
}

// New constructs a client. A nil httpClient means no client-side timeout:
// a run is bounded only by ctx and the transport.
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{BaseURL: baseURL, Client: httpClient, Now: time.Now}
}

// RunFlow posts req to the proxy. Transport failures, non-2xx responses and
// bodies carrying an "error" field all yield the failure variant.
func (c *Client) RunFlow(ctx context.Context, req models.RunFlowRequest) models.SubmissionResult {
	if req.Tweaks == nil {
		req.Tweaks = json.RawMessage(`{}`)
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return c.failure(err.Error())
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+RunFlowPath, bytes.NewReader(payload))
	if err != nil {
		return c.failure(err.Error())
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(httpReq)
	if err != nil {
		return c.failure(err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.failure(err.Error())
	}

	var probe struct {
		Error   *string `json:"error"`
		Details string  `json:"details"`
	}
	decodeErr := json.Unmarshal(body, &probe)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		failure := models.ErrorResult{
			Error:   models.ErrorUnexpected,
			Details: fmt.Sprintf("Request failed with status code %d", resp.StatusCode),
		}
		if decodeErr == nil && probe.Error != nil && *probe.Error != "" {
			failure = models.ErrorResult{Error: *probe.Error, Details: probe.Details}
		}
		return models.NewFailure(failure, c.Now())
	}

	if decodeErr != nil {
		if !json.Valid(body) {
			return c.failure("invalid response body: " + decodeErr.Error())
		}
		// Valid JSON that is not an object, e.g. an array: nothing to probe.
		return models.NewSuccess(body, c.Now())
	}
	if probe.Error != nil {
		return models.NewFailure(models.ErrorResult{Error: *probe.Error, Details: probe.Details}, c.Now())
	}
	return models.NewSuccess(body, c.Now())
}

func (c *Client) failure(details string) models.SubmissionResult {
	return models.NewFailure(models.ErrorResult{Error: models.ErrorUnexpected, Details: details}, c.Now())
}
