package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/contractgen/contractgen/pkg/config"
	"github.com/contractgen/contractgen/pkg/database"
	"github.com/contractgen/contractgen/pkg/models"
	"github.com/contractgen/contractgen/pkg/relay"
	"github.com/contractgen/contractgen/pkg/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecretEnv = "CONTRACTGEN_TEST_AUTH_SECRET"

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// fakeContracts is an in-memory ContractLookup.
type fakeContracts struct {
	latest   *models.Contract
	list     []*models.ContractWithUser
	err      error
	gotOwner string
}

func (f *fakeContracts) LatestByOwner(_ context.Context, owner string) (*models.Contract, error) {
	f.gotOwner = owner
	if f.err != nil {
		return nil, f.err
	}
	return f.latest, nil
}

func (f *fakeContracts) ListWithUsers(context.Context) ([]*models.ContractWithUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.list, nil
}

func testConfig(upstreamURL string) *config.Config {
	upstream := config.DefaultUpstreamConfig()
	upstream.BaseURL = upstreamURL
	return &config.Config{
		Server:   config.DefaultServerConfig(),
		Upstream: upstream,
		Relay:    config.DefaultRelayConfig(),
		Auth:     &config.AuthConfig{SecretEnv: testSecretEnv},
	}
}

type serverOption func(*config.Config)

func newTestServer(t *testing.T, contracts ContractLookup, upstreamURL string, dbClient *database.Client, opts ...serverOption) *Server {
	t.Helper()
	cfg := testConfig(upstreamURL)
	for _, opt := range opts {
		opt(cfg)
	}
	return NewServer(cfg, dbClient, contracts, relay.NewUpstreamClient(cfg.Upstream), relay.New(cfg.Relay))
}

func doRequest(s *Server, method, target string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	s := newTestServer(t, &fakeContracts{}, "http://127.0.0.1:1", nil)

	rec := doRequest(s, http.MethodGet, "/api/contract", nil, nil)

	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "camera=(), microphone=(), geolocation=()", rec.Header().Get("Permissions-Policy"))
}

func TestRequestID(t *testing.T) {
	s := newTestServer(t, &fakeContracts{}, "http://127.0.0.1:1", nil)

	t.Run("propagates caller id", func(t *testing.T) {
		rec := doRequest(s, http.MethodGet, "/api/contract", nil, map[string]string{requestIDHeader: "abc-123"})
		assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
	})

	t.Run("generates id when absent", func(t *testing.T) {
		first := doRequest(s, http.MethodGet, "/api/contract", nil, nil).Header().Get(requestIDHeader)
		second := doRequest(s, http.MethodGet, "/api/contract", nil, nil).Header().Get(requestIDHeader)
		assert.Len(t, first, 36)
		assert.NotEqual(t, first, second)
	})
}

func TestGetContractHandler(t *testing.T) {
	chainID := int64(1)
	contract := &models.Contract{
		ID:           "c1",
		Code:         "contract A {}",
		ABI:          []byte(`[]`),
		Bytecode:     "0x60",
		OwnerAddress: "0xabc",
		ChainID:      &chainID,
	}

	tests := []struct {
		name       string
		target     string
		fake       *fakeContracts
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing owner",
			target:     "/api/contract",
			fake:       &fakeContracts{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Owner address is required"}`,
		},
		{
			name:       "empty owner",
			target:     "/api/contract?ownerAddress=",
			fake:       &fakeContracts{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"Owner address is required"}`,
		},
		{
			name:       "not found",
			target:     "/api/contract?ownerAddress=0xnone",
			fake:       &fakeContracts{err: services.ErrNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error":"No contract found for this address"}`,
		},
		{
			name:       "lookup failure",
			target:     "/api/contract?ownerAddress=0xabc",
			fake:       &fakeContracts{err: errors.New("connection refused")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to fetch contract"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.fake, "http://127.0.0.1:1", nil)
			rec := doRequest(s, http.MethodGet, tt.target, nil, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}

	t.Run("returns latest contract", func(t *testing.T) {
		fake := &fakeContracts{latest: contract}
		s := newTestServer(t, fake, "http://127.0.0.1:1", nil)

		rec := doRequest(s, http.MethodGet, "/api/contract?ownerAddress=0xabc", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "0xabc", fake.gotOwner)

		body := rec.Body.String()
		assert.Contains(t, body, `"ownerAddress":"0xabc"`)
		assert.Contains(t, body, `"chainId":1`)
		assert.Contains(t, body, `"constructorArgs":null`)
		assert.Contains(t, body, `"abi":[]`)
	})
}

func TestListContractsHandler(t *testing.T) {
	name := "Ada"
	list := []*models.ContractWithUser{
		{Contract: models.Contract{ID: "c1", ABI: []byte(`[]`)}, User: &models.UserSummary{ID: "u1", Name: &name}},
		{Contract: models.Contract{ID: "c2", ABI: []byte(`[]`)}},
	}

	tests := []struct {
		name       string
		secret     string
		auth       string
		fake       *fakeContracts
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing header",
			secret:     "s3cret",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Missing or invalid authorization header"}`,
		},
		{
			name:       "wrong scheme",
			secret:     "s3cret",
			auth:       "Basic s3cret",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Missing or invalid authorization header"}`,
		},
		{
			name:       "lowercase scheme",
			secret:     "s3cret",
			auth:       "bearer s3cret",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Missing or invalid authorization header"}`,
		},
		{
			name:       "wrong key",
			secret:     "s3cret",
			auth:       "Bearer wrong-key",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid API key"}`,
		},
		{
			name:       "empty key",
			secret:     "s3cret",
			auth:       "Bearer ",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid API key"}`,
		},
		{
			name:       "unset secret rejects everything",
			secret:     "",
			auth:       "Bearer ",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid API key"}`,
		},
		{
			name:       "lookup failure",
			secret:     "s3cret",
			auth:       "Bearer s3cret",
			fake:       &fakeContracts{err: errors.New("boom")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Failed to fetch contracts"}`,
		},
		{
			name:       "empty table",
			secret:     "s3cret",
			auth:       "Bearer s3cret",
			fake:       &fakeContracts{list: []*models.ContractWithUser{}},
			wantStatus: http.StatusOK,
			wantBody:   `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(testSecretEnv, tt.secret)
			fake := tt.fake
			if fake == nil {
				fake = &fakeContracts{list: list}
			}
			s := newTestServer(t, fake, "http://127.0.0.1:1", nil)

			headers := map[string]string{}
			if tt.auth != "" {
				headers["Authorization"] = tt.auth
			}
			rec := doRequest(s, http.MethodGet, "/api/contracts", nil, headers)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}

	t.Run("correct key returns contracts with users", func(t *testing.T) {
		t.Setenv(testSecretEnv, "s3cret")
		s := newTestServer(t, &fakeContracts{list: list}, "http://127.0.0.1:1", nil)

		rec := doRequest(s, http.MethodGet, "/api/contracts", nil, map[string]string{"Authorization": "Bearer s3cret"})
		require.Equal(t, http.StatusOK, rec.Code)

		body := rec.Body.String()
		assert.True(t, strings.HasPrefix(body, "["))
		assert.Contains(t, body, `"user":{"id":"u1","name":"Ada","email":null}`)
		assert.Contains(t, body, `"user":null`)
	})
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	s := newTestServer(t, &fakeContracts{}, "http://127.0.0.1:1", nil)

	rec := doRequest(s, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"unhealthy"`)
	assert.Contains(t, rec.Body.String(), `"version"`)
}

func TestServer_StartAndShutdown(t *testing.T) {
	s := newTestServer(t, &fakeContracts{}, "http://127.0.0.1:1", nil)

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start("127.0.0.1:0") }()

	require.NoError(t, s.Shutdown(context.Background()))
	err := <-errCh
	if err != nil {
		assert.ErrorIs(t, err, http.ErrServerClosed)
	}
}
