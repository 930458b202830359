// Package auth holds the service credential used against the Langflow API.
//
// The application token is static and process-wide: it is read once from
// configuration at startup and attached to every outbound run request as a
// bearer token. It is never written to logs or error payloads.
package auth

import (
	"errors"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

// ErrEmptyToken is returned when no application token is supplied.
var ErrEmptyToken = errors.New("auth: application token is empty")

// NewTokenSource returns a token source that always yields the given
// application token with the Bearer type.
func NewTokenSource(token string) (oauth2.TokenSource, error) {
	if token == "" {
		return nil, ErrEmptyToken
	}
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}), nil
}

// NewHTTPClient creates an HTTP client that sets "Authorization: Bearer
// <token>" on every request. base may be nil to use http.DefaultTransport.
// A zero timeout leaves the call bounded only by the transport and the
// request context.
func NewHTTPClient(token string, base http.RoundTripper, timeout time.Duration) (*http.Client, error) {
	source, err := NewTokenSource(token)
	if err != nil {
		return nil, err
	}
	if base == nil {
		base = http.DefaultTransport
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: source,
			Base:   otelhttp.NewTransport(base),
		},
		Timeout: timeout,
	}, nil
}
