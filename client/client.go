// Package client implements the outbound HTTP clients: the JSON-bin document
// store backing the remote task store and the plan-generation endpoint used
// for enrichment.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/bytedance/sonic"
)

const defaultTimeout = 10 * time.Second

// bodySnippetLen caps how much of a response body is carried in a
// TransportError for diagnostics.
const bodySnippetLen = 200

// TransportError reports a failed outbound call: a network failure, an
// unexpected status, or an undecodable response body.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.Status == 0:
		return fmt.Sprintf("remote call failed: %v", e.Err)
	case e.Err != nil:
		return fmt.Sprintf("remote call failed with status %d: %v", e.Status, e.Err)
	default:
		return fmt.Sprintf("unexpected status %d; body=%s", e.Status, e.Body)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// base carries the pieces shared by both outbound clients: the base URL, an
// http.Client with the fixed per-call timeout, and status checking.
type base struct {
	baseURL string
	http    *http.Client
}

func newBase(baseURL string, timeout time.Duration) base {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return base{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (b base) url(path string) string {
	if path == "" {
		return b.baseURL
	}
	return b.baseURL + "/" + strings.TrimLeft(path, "/")
}

// do executes a single request and returns the body when the response status
// is one of expected. Every failure mode surfaces as a *TransportError; there
// are no retries.
func (b base) do(ctx context.Context, method, path string, headers map[string]string, payload any, expected ...int) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		data, err := sonic.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.url(path), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := b.http.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Status: resp.StatusCode, Err: err}
	}
	if !slices.Contains(expected, resp.StatusCode) {
		return nil, &TransportError{Status: resp.StatusCode, Body: snippet(data)}
	}
	return data, nil
}

func snippet(body []byte) string {
	if len(body) > bodySnippetLen {
		body = body[:bodySnippetLen]
	}
	return string(body)
}
