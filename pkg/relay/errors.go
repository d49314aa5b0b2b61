package relay

import (
	"errors"
	"fmt"
)

// ErrUpstream marks any failure to obtain a readable event stream from the
// generation service.
var ErrUpstream = errors.New("upstream generation service failed")

// UpstreamError reports a non-success HTTP status from the generation service.
type UpstreamError struct {
	StatusCode int
	// Body holds the start of the upstream response body, for logging.
	Body string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream returned HTTP %d", e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrUpstream) match.
func (e *UpstreamError) Unwrap() error {
	return ErrUpstream
}
