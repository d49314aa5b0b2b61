package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/contractgen/contractgen/pkg/relay"
	"github.com/gin-gonic/gin"
)

// automateHandler handles POST /api/automate.
// Errors before the upstream stream opens produce a JSON error; once the
// stream is committed the status stays 200 and failures only end the stream.
func (s *Server) automateHandler(c *gin.Context) {
	logger := loggerFrom(c)
	ctx := c.Request.Context()

	var req AutomateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Failed to decode automate request", "error", err)
		abortWithError(c, http.StatusInternalServerError, msgGenerateFailed)
		return
	}
	if req.Prompt == "" {
		abortWithError(c, http.StatusBadRequest, msgPromptRequired)
		return
	}

	stream, err := s.generator.Generate(ctx, req.Prompt)
	if err != nil {
		attrs := []any{"error", err}
		var upErr *relay.UpstreamError
		if errors.As(err, &upErr) {
			attrs = append(attrs, "upstream_status", upErr.StatusCode, "upstream_body", upErr.Body)
		}
		logger.Error("Contract generation request failed", attrs...)
		abortWithError(c, http.StatusInternalServerError, msgGenerateFailed)
		return
	}
	defer func() { _ = stream.Close() }()

	w, err := relay.NewSSEWriter(c.Writer)
	if err != nil {
		logger.Error("Streaming not supported by response writer", "error", err)
		abortWithError(c, http.StatusInternalServerError, msgGenerateFailed)
		return
	}
	w.Commit()

	if _, err := s.relay.WithLogger(logger).Pipe(ctx, stream, w); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("Client disconnected during contract generation")
			return
		}
		logger.Warn("Contract generation stream ended early", "error", err)
	}
}
