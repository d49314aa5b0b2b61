package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// getContractHandler handles GET /api/contract?ownerAddress=...
// Returns the owner's most recently created contract.
func (s *Server) getContractHandler(c *gin.Context) {
	owner := c.Query("ownerAddress")
	if owner == "" {
		abortWithError(c, http.StatusBadRequest, msgOwnerRequired)
		return
	}

	contract, err := s.contracts.LatestByOwner(c.Request.Context(), owner)
	if err != nil {
		status, msg := mapServiceError(err, msgFetchContract)
		if status == http.StatusInternalServerError {
			loggerFrom(c).Error("Failed to fetch contract", "owner_address", owner, "error", err)
		}
		abortWithError(c, status, msg)
		return
	}

	c.JSON(http.StatusOK, contract)
}

// listContractsHandler handles GET /api/contracts (bearer authenticated).
func (s *Server) listContractsHandler(c *gin.Context) {
	contracts, err := s.contracts.ListWithUsers(c.Request.Context())
	if err != nil {
		loggerFrom(c).Error("Failed to fetch contracts", "error", err)
		abortWithError(c, http.StatusInternalServerError, msgFetchContracts)
		return
	}

	c.JSON(http.StatusOK, contracts)
}
