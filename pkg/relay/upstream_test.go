package relay

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/contractgen/contractgen/pkg/config"
	"github.com/contractgen/contractgen/pkg/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUpstream(t *testing.T, baseURL string) *UpstreamClient {
	t.Helper()
	cfg := config.DefaultUpstreamConfig()
	cfg.BaseURL = baseURL
	cfg.ResponseHeaderTimeout = 5 * time.Second
	return NewUpstreamClient(cfg)
}

func TestUpstreamClient_Generate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/generate-contract", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		assert.Equal(t, version.Full(), r.Header.Get("User-Agent"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]string{"prompt": "an ERC20 token"}, body)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "event: status\ndata: {}\n\n")
	}))
	defer server.Close()

	stream, err := newTestUpstream(t, server.URL+"/").Generate(context.Background(), "an ERC20 token")
	require.NoError(t, err)
	defer stream.Close()

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, "event: status\ndata: {}\n\n", string(got))
}

func TestUpstreamClient_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, strings.Repeat("overloaded ", 100))
	}))
	defer server.Close()

	stream, err := newTestUpstream(t, server.URL).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Nil(t, stream)
	assert.ErrorIs(t, err, ErrUpstream)

	var upErr *UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, http.StatusServiceUnavailable, upErr.StatusCode)
	assert.Len(t, upErr.Body, maxErrorBodyBytes)
}

func TestUpstreamClient_EmptyBody(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		contentLength string
	}{
		{name: "no content", status: http.StatusNoContent},
		{name: "reset content", status: http.StatusResetContent},
		{name: "zero content length", status: http.StatusOK, contentLength: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.contentLength != "" {
					w.Header().Set("Content-Length", tt.contentLength)
				}
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			stream, err := newTestUpstream(t, server.URL).Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Nil(t, stream)
			assert.ErrorIs(t, err, ErrUpstream)

			var upErr *UpstreamError
			assert.False(t, errors.As(err, &upErr))
		})
	}
}

func TestUpstreamClient_TransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestUpstream(t, url).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)

	var upErr *UpstreamError
	assert.False(t, errors.As(err, &upErr))
}

func TestUpstreamClient_ContextCancelAbortsStream(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, "event: status\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	stream, err := newTestUpstream(t, server.URL).Generate(ctx, "p")
	require.NoError(t, err)
	defer stream.Close()

	buf := make([]byte, 64)
	n, err := stream.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "event: status\n", string(buf[:n]))

	cancel()
	_, err = io.ReadAll(stream)
	assert.Error(t, err)
}

func TestUpstreamError_Error(t *testing.T) {
	err := &UpstreamError{StatusCode: 502}
	assert.Equal(t, "upstream returned HTTP 502", err.Error())
	assert.True(t, errors.Is(err, ErrUpstream))
}
