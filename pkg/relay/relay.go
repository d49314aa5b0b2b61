// Package relay re-streams the generation service's event stream to a client,
// dropping frames the client cannot parse and noting contract artifacts as
// they pass.
package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/contractgen/contractgen/pkg/config"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var (
	statusPrefix = []byte("event: status")
	dataPrefix   = []byte("data: ")
	errorEvent   = []byte("event: error")
)

// Summary counts what happened to the lines of one stream.
type Summary struct {
	Forwarded int
	Dropped   int
	Captured  int
}

// Relay filters an upstream event stream line by line.
type Relay struct {
	cfg    *config.RelayConfig
	logger *slog.Logger
}

// New creates a Relay.
func New(cfg *config.RelayConfig) *Relay {
	return &Relay{cfg: cfg, logger: slog.Default()}
}

// WithLogger returns a copy of the relay that logs through logger.
func (r *Relay) WithLogger(logger *slog.Logger) *Relay {
	cp := *r
	cp.logger = logger
	return &cp
}

// Pipe reads src until EOF, writing every accepted line to dst.
//
// Complete lines are handled as they arrive:
//   - blank lines are skipped
//   - "event: status" lines are forwarded unchanged
//   - "data: " lines are forwarded unchanged when the payload is valid JSON
//     and dropped otherwise
//   - anything else is dropped
//
// A trailing fragment without a newline gets the data-line handling only.
// Lines longer than MaxLineBytes are dropped unless it is negative. All decisions depend only on
// line content, never on how src chunks its reads.
func (r *Relay) Pipe(ctx context.Context, src io.Reader, dst LineWriter) (*Summary, error) {
	s := &stream{
		relay: r,
		dst:   dst,
		sum:   &Summary{},
		acc:   &Accumulator{},
	}

	err := s.run(ctx, src)

	r.logger.Info("Relay stream finished",
		"forwarded", s.sum.Forwarded,
		"dropped", s.sum.Dropped,
		"captured", s.sum.Captured,
		"artifacts", s.acc)

	return s.sum, err
}

// stream holds the per-request state of one Pipe call.
type stream struct {
	relay *Relay
	dst   LineWriter
	sum   *Summary
	acc   *Accumulator

	pending    []byte
	discarding bool
}

func (s *stream) run(ctx context.Context, src io.Reader) error {
	size := s.relay.cfg.ReadBufferBytes
	if size <= 0 {
		size = 4096
	}
	buf := make([]byte, size)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, readErr := src.Read(buf)
		if n > 0 {
			if err := s.feed(buf[:n]); err != nil {
				return err
			}
		}

		if errors.Is(readErr, io.EOF) {
			return s.finish()
		}
		if readErr != nil {
			return fmt.Errorf("read upstream stream: %w", readErr)
		}
	}
}

// feed splits chunk on newlines, carrying the unterminated tail to the next call.
func (s *stream) feed(chunk []byte) error {
	for len(chunk) > 0 {
		i := bytes.IndexByte(chunk, '\n')
		if i < 0 {
			if !s.discarding {
				s.pending = append(s.pending, chunk...)
				if s.oversized(s.pending) {
					s.dropOversized(len(s.pending))
					s.pending = s.pending[:0]
					s.discarding = true
				}
			}
			return nil
		}

		part := chunk[:i]
		chunk = chunk[i+1:]

		if s.discarding {
			// Tail of a line already dropped as oversized
			s.discarding = false
			continue
		}

		line := part
		if len(s.pending) > 0 {
			s.pending = append(s.pending, part...)
			line = s.pending
		}

		var err error
		if s.oversized(line) {
			s.dropOversized(len(line))
		} else {
			err = s.handleLine(line)
		}
		s.pending = s.pending[:0]
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *stream) finish() error {
	if s.discarding || len(s.pending) == 0 {
		return nil
	}
	fragment := s.pending
	s.pending = nil

	if len(bytes.TrimSpace(fragment)) == 0 {
		return nil
	}
	if s.oversized(fragment) {
		s.dropOversized(len(fragment))
		return nil
	}
	if !bytes.HasPrefix(fragment, dataPrefix) {
		s.sum.Dropped++
		s.relay.logger.Debug("Dropping trailing fragment", "bytes", len(fragment))
		return nil
	}
	return s.handleData(fragment)
}

func (s *stream) handleLine(line []byte) error {
	switch {
	case len(bytes.TrimSpace(line)) == 0:
		return nil
	case bytes.HasPrefix(line, statusPrefix):
		return s.forward(line)
	case bytes.HasPrefix(line, dataPrefix):
		return s.handleData(line)
	default:
		s.sum.Dropped++
		s.relay.logger.Debug("Dropping unrecognized line", "bytes", len(line))
		return nil
	}
}

func (s *stream) handleData(line []byte) error {
	raw := bytes.TrimSpace(line[len(dataPrefix):])
	if !gjson.ValidBytes(raw) {
		s.sum.Dropped++
		s.relay.logger.Warn("Dropping malformed data frame", "bytes", len(line))
		if s.relay.cfg.EmitMalformedAsError {
			return s.emitMalformed()
		}
		return nil
	}

	env := ParseEnvelope(raw)
	if s.acc.Apply(env.Payload()) {
		s.sum.Captured++
		s.relay.logger.Debug("Captured contract artifacts", "agent", env.Agent, "status", env.Status)
	}
	return s.forward(line)
}

func (s *stream) forward(line []byte) error {
	if err := s.dst.WriteLine(line); err != nil {
		return fmt.Errorf("write to client: %w", err)
	}
	s.sum.Forwarded++
	return nil
}

// emitMalformed writes a synthetic error event in the upstream's own envelope shape.
func (s *stream) emitMalformed() error {
	body, err := malformedFramePayload()
	if err != nil {
		return err
	}
	if err := s.dst.WriteLine(errorEvent); err != nil {
		return fmt.Errorf("write to client: %w", err)
	}
	frame := append(append([]byte{}, dataPrefix...), body...)
	if err := s.dst.WriteLine(frame); err != nil {
		return fmt.Errorf("write to client: %w", err)
	}
	// SSE events end with a blank line
	if err := s.dst.WriteLine(nil); err != nil {
		return fmt.Errorf("write to client: %w", err)
	}
	return nil
}

func malformedFramePayload() ([]byte, error) {
	body := []byte(`{}`)
	var err error
	for _, kv := range []struct {
		path  string
		value string
	}{
		{"agent", "Relay"},
		{"action", "Relaying stream"},
		{"status", string(StatusError)},
		{"data.error", "Dropped a malformed frame from the generation service"},
	} {
		if body, err = sjson.SetBytes(body, kv.path, kv.value); err != nil {
			return nil, fmt.Errorf("build error frame: %w", err)
		}
	}
	return body, nil
}

func (s *stream) oversized(line []byte) bool {
	limit := s.relay.cfg.MaxLineBytes
	return limit > 0 && len(line) > limit
}

func (s *stream) dropOversized(n int) {
	s.sum.Dropped++
	s.relay.logger.Warn("Dropping oversized line", "bytes", n, "limit", s.relay.cfg.MaxLineBytes)
}
