package api

import (
	"errors"
	"net/http"

	"github.com/contractgen/contractgen/pkg/services"
	"github.com/gin-gonic/gin"
)

// Client-facing error messages. The UI matches on these strings.
const (
	msgPromptRequired    = "Prompt is required"
	msgGenerateFailed    = "Failed to generate contract"
	msgOwnerRequired     = "Owner address is required"
	msgContractNotFound  = "No contract found for this address"
	msgFetchContract     = "Failed to fetch contract"
	msgFetchContracts    = "Failed to fetch contracts"
	msgMissingAuthHeader = "Missing or invalid authorization header"
	msgInvalidAPIKey     = "Invalid API key"
	msgTooManyRequests   = "Too many requests"
)

// mapServiceError maps contract lookup errors to a status and client message.
// fallback is used for unexpected errors.
func mapServiceError(err error, fallback string) (int, string) {
	if errors.Is(err, services.ErrInvalidInput) {
		return http.StatusBadRequest, msgOwnerRequired
	}
	if errors.Is(err, services.ErrNotFound) {
		return http.StatusNotFound, msgContractNotFound
	}
	return http.StatusInternalServerError, fallback
}

func abortWithError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
