package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"content-studio/backend/internal/client"
	"content-studio/backend/internal/form"
	"content-studio/backend/pkg/models"
)

func newProxy(t *testing.T, status int, body string, got *models.RunFlowRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if got != nil {
			json.Unmarshal(raw, got)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRun_DisplayType(t *testing.T) {
	var got models.RunFlowRequest
	proxy := newProxy(t, http.StatusOK, `{"text":"A static post","timestamp":"not a date"}`, &got)
	f := form.New(client.New(proxy.URL, nil), "flow-1", "ns-1")

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, f, nil, models.DisplayTypeCarousel))

	assert.Equal(t, "Carousel", got.InputValue)
	assert.Equal(t, "flow-1", got.FlowID)
	assert.Equal(t, "Processing...\nGenerated Response\n\nA static post\n\nGenerated at: not a date\n", out.String())
}

func TestRun_FreeText(t *testing.T) {
	var got models.RunFlowRequest
	proxy := newProxy(t, http.StatusOK, `{"text":"ok"}`, &got)
	f := form.New(client.New(proxy.URL, nil), "flow-1", "ns-1")

	text := "three hooks for a bakery reel"
	require.NoError(t, run(context.Background(), io.Discard, f, &text, ""))
	assert.Equal(t, text, got.InputValue)
}

func TestRun_Failure(t *testing.T) {
	proxy := newProxy(t, http.StatusInternalServerError, `{"error":"Error initiating session","details":"503 Service Unavailable - {}"}`, nil)
	f := form.New(client.New(proxy.URL, nil), "flow-1", "ns-1")

	var out bytes.Buffer
	err := run(context.Background(), &out, f, nil, models.DisplayTypeReel)

	assert.ErrorIs(t, err, errSubmissionFailed)
	assert.Contains(t, out.String(), "Error: 503 Service Unavailable - {}")
}

func TestRun_UnknownDisplayType(t *testing.T) {
	f := form.New(client.New("http://127.0.0.1:0", nil), "f", "ns")

	err := run(context.Background(), io.Discard, f, nil, "Story")
	assert.Error(t, err)
	assert.False(t, f.Busy())
}
