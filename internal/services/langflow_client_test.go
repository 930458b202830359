package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-studio/backend/internal/auth"
	"content-studio/backend/pkg/models"
)

func newRunRequest() models.RunFlowRequest {
	return models.RunFlowRequest{
		FlowID:     "flow-123",
		LangflowID: "ns-456",
		InputValue: "Static",
		Tweaks:     json.RawMessage(`{}`),
		Stream:     false,
	}
}

func newTestClient(t *testing.T, server *httptest.Server) *LangflowClient {
	t.Helper()
	httpClient, err := auth.NewHTTPClient("test-token", server.Client().Transport, 0)
	require.NoError(t, err)
	return NewLangflowClient(server.URL, httpClient)
}

func TestLangflowClient_RunURL(t *testing.T) {
	c := NewLangflowClient("https://api.langflow.astra.datastax.com", nil)

	req := newRunRequest()
	assert.Equal(t, "https://api.langflow.astra.datastax.com/lf/ns-456/api/v1/run/flow-123?stream=false", c.RunURL(req))

	req.Stream = true
	assert.Equal(t, "https://api.langflow.astra.datastax.com/lf/ns-456/api/v1/run/flow-123?stream=true", c.RunURL(req))
}

func TestLangflowClient_RunFlow_ForwardsRequest(t *testing.T) {
	var (
		gotMethod, gotPath, gotQuery string
		gotHeaders                   http.Header
		gotBody                      []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotHeaders = r.Header.Clone()
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text":"hello","timestamp":"2024-01-01T00:00:00Z"}`))
	}))
	defer server.Close()

	payload, err := newTestClient(t, server).RunFlow(context.Background(), newRunRequest())
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/lf/ns-456/api/v1/run/flow-123", gotPath)
	assert.Equal(t, "stream=false", gotQuery)
	assert.Equal(t, "Bearer test-token", gotHeaders.Get("Authorization"))
	assert.Equal(t, "application/json", gotHeaders.Get("Content-Type"))
	assert.JSONEq(t, `{"input_value":"Static","input_type":"chat","output_type":"chat","tweaks":{}}`, string(gotBody))
	assert.Equal(t, `{"text":"hello","timestamp":"2024-01-01T00:00:00Z"}`, string(payload))
}

func TestLangflowClient_RunFlow_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("{\"detail\": \"overloaded\"}\n"))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).RunFlow(context.Background(), newRunRequest())
	require.Error(t, err)

	var upstream *UpstreamError
	require.True(t, errors.As(err, &upstream))
	assert.Equal(t, http.StatusServiceUnavailable, upstream.StatusCode)
	assert.Equal(t, `503 Service Unavailable - {"detail":"overloaded"}`, err.Error())
}

func TestLangflowClient_RunFlow_UpstreamErrorNotJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such flow", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := newTestClient(t, server).RunFlow(context.Background(), newRunRequest())
	require.Error(t, err)
	assert.Equal(t, `404 Not Found - "no such flow\n"`, err.Error())
}

func TestLangflowClient_RunFlow_InvalidSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway</html>"))
	}))
	defer server.Close()

	_, err := newTestClient(t, server).RunFlow(context.Background(), newRunRequest())
	require.Error(t, err)

	var upstream *UpstreamError
	assert.False(t, errors.As(err, &upstream))
	assert.Contains(t, err.Error(), "failed to decode response body")
}

func TestLangflowClient_RunFlow_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client := newTestClient(t, server)
	server.Close()

	_, err := client.RunFlow(context.Background(), newRunRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to make request")
	assert.NotContains(t, err.Error(), "test-token")
}
