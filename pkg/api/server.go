// Package api serves the contract-generation HTTP endpoints.
package api

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/contractgen/contractgen/pkg/config"
	"github.com/contractgen/contractgen/pkg/database"
	"github.com/contractgen/contractgen/pkg/models"
	"github.com/contractgen/contractgen/pkg/relay"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ContractLookup reads persisted contracts.
type ContractLookup interface {
	LatestByOwner(ctx context.Context, ownerAddress string) (*models.Contract, error)
	ListWithUsers(ctx context.Context) ([]*models.ContractWithUser, error)
}

// ContractGenerator opens an event stream for a generation prompt.
type ContractGenerator interface {
	Generate(ctx context.Context, prompt string) (io.ReadCloser, error)
}

// Server is the HTTP API server.
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server

	dbClient  *database.Client
	contracts ContractLookup
	generator ContractGenerator
	relay     *relay.Relay

	// nil when /api/automate is not rate limited
	automateLimiter *rate.Limiter
}

// NewServer creates a new API server with all routes registered.
// dbClient is only used for health checks.
func NewServer(
	cfg *config.Config,
	dbClient *database.Client,
	contracts ContractLookup,
	generator ContractGenerator,
	rl *relay.Relay,
) *Server {
	router := gin.New()

	s := &Server{
		cfg:       cfg,
		router:    router,
		dbClient:  dbClient,
		contracts: contracts,
		generator: generator,
		relay:     rl,
	}

	if limit := cfg.Server.AutomateRateLimit; limit > 0 {
		s.automateLimiter = rate.NewLimiter(rate.Limit(limit), max(cfg.Server.AutomateRateBurst, 1))
	}

	// No WriteTimeout: /api/automate streams for as long as upstream does
	s.httpServer = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestID())
	s.router.Use(requestLogger())
	s.router.Use(securityHeaders())

	s.router.GET("/health", s.healthHandler)

	api := s.router.Group("/api")
	api.POST("/automate", rateLimit(s.automateLimiter), s.automateHandler)
	api.GET("/contract", s.getContractHandler)
	api.GET("/contracts", bearerAuth(s.cfg.Auth), s.listContractsHandler)
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr and serves until Shutdown. Always returns a non-nil error;
// http.ErrServerClosed after a graceful shutdown.
func (s *Server) Start(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the HTTP server, waiting for open streams until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
