package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glassline/erp-api/internal/auth"
	"github.com/glassline/erp-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testAPIKey = "test-api-key-12345"

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		ApiKey:    testAPIKey,
		JWTSecret: "test-secret-0123456789",
		JWTIssuer: "glassline",
	}
}

func captureHandler(captured **auth.UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured, _ = auth.FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_Authenticate_WithAPIKey(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	orgID := uuid.New()

	var captured *auth.UserContext
	handler := m.Authenticate(captureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("x-api-key", testAPIKey)
	req.Header.Set(auth.OrganizationHeader, orgID.String())
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, orgID, captured.OrganizationID)
	assert.True(t, captured.IsAdmin())
}

func TestMiddleware_Authenticate_APIKeyRequiresOrganization(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	var captured *auth.UserContext
	handler := m.Authenticate(captureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("x-api-key", testAPIKey)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, captured)
}

func TestMiddleware_Authenticate_InvalidAPIKey(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	var captured *auth.UserContext
	handler := m.Authenticate(captureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("x-api-key", "wrong")
	req.Header.Set(auth.OrganizationHeader, uuid.NewString())
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, captured)
}

func TestMiddleware_Authenticate_WithJWT(t *testing.T) {
	cfg := testAuthConfig()
	m := auth.NewMiddleware(cfg, zap.NewNop())
	validator := auth.NewJWTValidator(cfg)

	orgID := uuid.New()
	token, err := validator.IssueToken(&auth.UserContext{
		Subject:        "user-1",
		DisplayName:    "Priya Shah",
		OrganizationID: orgID,
		Roles:          []auth.Role{auth.RoleUser},
	}, time.Hour)
	require.NoError(t, err)

	var captured *auth.UserContext
	handler := m.Authenticate(captureHandler(&captured))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "user-1", captured.Subject)
	assert.Equal(t, orgID, captured.OrganizationID)
	assert.False(t, captured.IsAdmin())
}

func TestMiddleware_Authenticate_MissingHeader(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	var captured *auth.UserContext
	handler := m.Authenticate(captureHandler(&captured))

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	cfg := testAuthConfig()
	validator := auth.NewJWTValidator(cfg)
	user := &auth.UserContext{Subject: "u", OrganizationID: uuid.New()}

	t.Run("expired", func(t *testing.T) {
		token, err := validator.IssueToken(user, -time.Minute)
		require.NoError(t, err)
		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: "another-secret", JWTIssuer: cfg.JWTIssuer})
		token, err := other.IssueToken(user, time.Hour)
		require.NoError(t, err)
		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := auth.NewJWTValidator(&config.AuthConfig{JWTSecret: cfg.JWTSecret, JWTIssuer: "someone-else"})
		token, err := other.IssueToken(user, time.Hour)
		require.NoError(t, err)
		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("missing organization", func(t *testing.T) {
		claims := &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.JWTIssuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
		require.NoError(t, err)
		_, err = validator.ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrMissingTenant)
	})
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	m := auth.NewMiddleware(testAuthConfig(), zap.NewNop())
	handler := m.RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name string
		user *auth.UserContext
		want int
	}{
		{"no context", nil, http.StatusForbidden},
		{"plain user", &auth.UserContext{Roles: []auth.Role{auth.RoleUser}}, http.StatusForbidden},
		{"admin", &auth.UserContext{Roles: []auth.Role{auth.RoleAdmin}}, http.StatusOK},
		{"service", &auth.UserContext{Roles: []auth.Role{auth.RoleService}}, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/sequences/repair", nil)
			if tc.user != nil {
				req = req.WithContext(auth.WithUserContext(req.Context(), tc.user))
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}
