package fatal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultEndpoint is the backend log endpoint path.
const DefaultEndpoint = "/api/log-error"

// HTTPSender posts reports as JSON to a backend endpoint.
type HTTPSender struct {
	// Endpoint is the absolute URL of the log endpoint.
	Endpoint string

	// Client defaults to an http.Client with Timeout.
	Client *http.Client

	// Timeout bounds each request when Client is nil. Defaults to 5s.
	Timeout time.Duration
}

// Send implements Sender.
func (s *HTTPSender) Send(ctx context.Context, r Report) error {
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("fatal: encode report: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("fatal: build request: %w", err)
	}
	// Browsers beacon with text/plain; the endpoint accepts any type.
	req.Header.Set("Content-Type", "text/plain;charset=UTF-8")

	resp, err := s.client().Do(req)
	if err != nil {
		return fmt.Errorf("fatal: post report: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fatal: post report: %s", resp.Status)
	}
	return nil
}

func (s *HTTPSender) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
