package router_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glassline/erp-api/internal/auth"
	"github.com/glassline/erp-api/internal/config"
	"github.com/glassline/erp-api/internal/domain"
	"github.com/glassline/erp-api/internal/http/handler"
	"github.com/glassline/erp-api/internal/http/middleware"
	"github.com/glassline/erp-api/internal/http/router"
	"github.com/glassline/erp-api/internal/pricing"
	"github.com/glassline/erp-api/internal/repository"
	"github.com/glassline/erp-api/internal/service"
	"github.com/glassline/erp-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	handler http.Handler
	org     *domain.Organization
	jwt     *auth.JWTValidator
}

func setupRouter(t *testing.T) *testServer {
	db := testutil.SetupTestDB(t)
	org := testutil.CreateTestOrganization(t, db, "Clearview Glass")
	log := testutil.NewLogger()

	cfg := &config.Config{
		App:       config.AppConfig{Name: "test", Environment: "test", Port: 8080},
		Auth:      config.AuthConfig{ApiKey: "test-api-key", JWTSecret: "test-secret", JWTIssuer: "glassline"},
		Security:  config.SecurityConfig{ContentTypeNosniff: true, FrameOptions: "DENY"},
		RateLimit: config.RateLimitConfig{Enabled: false, RequestsPerMinute: 100},
	}

	orgRepo := repository.NewOrganizationRepository(db)
	processRepo := repository.NewProcessRepository(db)
	quoteRepo := repository.NewQuoteRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	numbers := service.NewNumberSequenceService(repository.NewNumberSequenceRepository(db, sql.LevelSerializable), orgRepo, log)
	taxRates := service.NewTaxRateService(repository.NewTaxRateRepository(db), pricing.DefaultTaxRates(), log)
	quotes := service.NewQuoteService(quoteRepo, orgRepo, processRepo, taxRates, numbers, log)

	rt := router.NewRouter(
		cfg,
		log,
		db,
		auth.NewMiddleware(&cfg.Auth, log),
		middleware.NewRateLimiter(&cfg.RateLimit, log),
		handler.NewPricingHandler(quotes, taxRates, log),
		handler.NewQuoteHandler(
			quotes,
			service.NewOrderService(orderRepo, quoteRepo, numbers, log),
			service.NewInvoiceService(repository.NewInvoiceRepository(db), orderRepo, taxRates, numbers, log),
			log,
		),
		handler.NewMasterDataHandler(
			service.NewProcessService(processRepo, log),
			taxRates,
			service.NewOrganizationService(orgRepo, log),
			log,
		),
		handler.NewSequenceHandler(numbers, log),
	)

	return &testServer{
		handler: rt.Setup(),
		org:     org,
		jwt:     auth.NewJWTValidator(&cfg.Auth),
	}
}

func (s *testServer) token(t *testing.T, roles ...auth.Role) string {
	t.Helper()
	tok, err := s.jwt.IssueToken(&auth.UserContext{
		Subject:        "user-1",
		DisplayName:    "Test User",
		OrganizationID: s.org.ID,
		Roles:          roles,
	}, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthEndpoints(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK", rr.Body.String())

	rr = s.do(http.MethodGet, "/health/db", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestAPIRequiresAuthentication(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(http.MethodGet, "/api/v1/quotes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPricingThroughRouter(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(http.MethodPost, "/api/v1/pricing/tax", s.token(t, auth.RoleUser), domain.TaxSplitRequest{
		Subtotal: 1000,
		Mode:     "INTER",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var split domain.TaxSplitDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &split))
	assert.Equal(t, 180.0, split.IGST)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
}

func TestAdminRoutes(t *testing.T) {
	s := setupRouter(t)

	rr := s.do(http.MethodPost, "/api/v1/admin/sequences/repair", s.token(t, auth.RoleUser), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodPut, "/api/v1/tax-rates", s.token(t, auth.RoleUser), domain.UpdateTaxRatesRequest{CGST: 6, SGST: 6, IGST: 12})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodPost, "/api/v1/admin/sequences/repair", s.token(t, auth.RoleAdmin), nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var results []domain.SequenceRepairResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	assert.Len(t, results, 3)

	t.Run("API key acts as a service caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/sequences", nil)
		req.Header.Set("x-api-key", "test-api-key")
		req.Header.Set(auth.OrganizationHeader, s.org.ID.String())
		rr := httptest.NewRecorder()
		s.handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
	})
}
