package modeladapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds a single request when the adapter has no Client and
// no explicit Timeout. Local inference is slow, so it is generous.
const DefaultTimeout = 2 * time.Minute

// maxErrorBody caps how much of a non-2xx body is kept for diagnostics.
const maxErrorBody = 4 << 10

// StatusError is returned when the server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// ModelAdapter holds the HTTP plumbing shared by backend clients: base URL,
// client, extra headers and JSON helpers. It carries no provider knowledge.
type ModelAdapter struct {
	BaseURL string            // API base URL (no trailing slash).
	Client  *http.Client      // HTTP client; a default one is built when nil.
	Timeout time.Duration     // Timeout for the default client (0 = DefaultTimeout).
	Headers map[string]string // Extra headers applied to every request.

	clientOnce    sync.Once
	defaultClient *http.Client
}

// New creates a ModelAdapter for baseURL. Trailing slashes are dropped so
// paths can always start with "/".
func New(baseURL string, client *http.Client) *ModelAdapter {
	return &ModelAdapter{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
	}
}

// httpClient returns the configured client or a cached default client.
func (a *ModelAdapter) httpClient() *http.Client {
	if a.Client != nil {
		return a.Client
	}

	a.clientOnce.Do(func() {
		timeout := a.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		a.defaultClient = &http.Client{Timeout: timeout}
	})

	return a.defaultClient
}

// NewRequest builds an *http.Request against the base URL with the custom
// headers already applied.
func (a *ModelAdapter) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, body)
	if err != nil {
		return nil, err
	}

	for k, v := range a.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (a *ModelAdapter) Do(req *http.Request) (*http.Response, error) {
	return a.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// PostJSON marshals payload as JSON, POSTs it to path, checks for a 2xx status
// and returns the raw response body.
func (a *ModelAdapter) PostJSON(ctx context.Context, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := a.NewRequest(ctx, http.MethodPost, path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	return a.roundTrip(req)
}

// GetJSON sends a GET to path, checks for a 2xx status and returns the raw
// response body.
func (a *ModelAdapter) GetJSON(ctx context.Context, path string) ([]byte, error) {
	req, err := a.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	return a.roundTrip(req)
}

func (a *ModelAdapter) roundTrip(req *http.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")

	resp, err := a.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return data, nil
}
