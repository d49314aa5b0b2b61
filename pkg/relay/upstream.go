package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/contractgen/contractgen/pkg/config"
	"github.com/contractgen/contractgen/pkg/version"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxErrorBodyBytes caps how much of a failed upstream response is kept for logs.
const maxErrorBodyBytes = 512

// UpstreamClient opens event streams on the contract-generation service.
type UpstreamClient struct {
	httpClient *http.Client
	url        string
	logger     *slog.Logger
}

type generateRequest struct {
	Prompt string `json:"prompt"`
}

// NewUpstreamClient creates a client for the configured generation endpoint.
// The client has no overall timeout: streams live as long as the request context.
func NewUpstreamClient(cfg *config.UpstreamConfig) *UpstreamClient {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = cfg.ResponseHeaderTimeout

	return &UpstreamClient{
		httpClient: &http.Client{Transport: otelhttp.NewTransport(transport)},
		url:        cfg.GenerateURL(),
		logger:     slog.Default(),
	}
}

// Generate posts prompt to the generation service and returns the open event
// stream. The caller must close it. No retries are attempted.
//
// Errors match ErrUpstream; a non-2xx status is reported as *UpstreamError.
func (c *UpstreamClient) Generate(ctx context.Context, prompt string) (io.ReadCloser, error) {
	body, err := json.Marshal(generateRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("User-Agent", version.Full())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: POST %s: %w", ErrUpstream, c.url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	// The instrumented transport wraps every body, so emptiness is read from
	// the response metadata rather than compared against http.NoBody.
	if !hasBody(resp) {
		if resp.Body != nil {
			_ = resp.Body.Close()
		}
		return nil, fmt.Errorf("%w: response has no body (HTTP %d)", ErrUpstream, resp.StatusCode)
	}

	c.logger.Debug("Upstream stream opened", "url", c.url, "status", resp.StatusCode)
	return resp.Body, nil
}

func hasBody(resp *http.Response) bool {
	switch {
	case resp.Body == nil, resp.Body == http.NoBody:
		return false
	case resp.StatusCode == http.StatusNoContent, resp.StatusCode == http.StatusResetContent:
		return false
	case resp.ContentLength == 0:
		return false
	}
	return true
}
