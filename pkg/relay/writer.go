package relay

import (
	"errors"
	"net/http"
)

// LineWriter receives forwarded lines. Each call carries one complete line
// without its terminator.
type LineWriter interface {
	WriteLine(line []byte) error
}

// SSEWriter writes relayed lines to an HTTP response, flushing after each.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter sets the event-stream response headers and returns a writer.
// Headers are only committed on the first write, so callers can still send
// an error status if nothing has been written yet.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support flushing")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no") // nginx

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// Commit sends the 200 status and headers before any line is available, so
// the client sees the stream open while upstream is still working.
func (s *SSEWriter) Commit() {
	s.w.WriteHeader(http.StatusOK)
	s.flusher.Flush()
}

// WriteLine writes line followed by a newline and flushes it to the client.
func (s *SSEWriter) WriteLine(line []byte) error {
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	if _, err := s.w.Write(newline); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

var newline = []byte{'\n'}
