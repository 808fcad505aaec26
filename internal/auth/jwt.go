package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/glassline/erp-api/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrMissingTenant = errors.New("token missing organization")
)

// Claims are the JWT claims issued for API callers
type Claims struct {
	jwt.RegisteredClaims
	Name           string   `json:"name,omitempty"`
	OrganizationID string   `json:"org"`
	Roles          []string `json:"roles,omitempty"`
}

// JWTValidator validates HS256 tokens signed with a shared secret
type JWTValidator struct {
	secret []byte
	issuer string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.JWTIssuer,
	}
}

// ValidateToken validates a JWT token and returns user context
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	if len(v.secret) == 0 {
		return nil, fmt.Errorf("%w: token authentication is not configured", ErrInvalidToken)
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	orgID, err := uuid.Parse(claims.OrganizationID)
	if err != nil {
		return nil, ErrMissingTenant
	}

	roles := make([]Role, len(claims.Roles))
	for i, r := range claims.Roles {
		roles[i] = Role(r)
	}

	return &UserContext{
		Subject:        claims.Subject,
		DisplayName:    claims.Name,
		OrganizationID: orgID,
		Roles:          roles,
	}, nil
}

// IssueToken signs a token for the given caller. Used by tooling and tests.
func (v *JWTValidator) IssueToken(user *UserContext, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Subject,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:           user.DisplayName,
		OrganizationID: user.OrganizationID.String(),
		Roles:          user.RolesAsStrings(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
