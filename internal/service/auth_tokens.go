package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/zaeom/storefront-bfa-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// ============================================================
// ValidateAccessToken: used by middleware
// ============================================================

// AccessClaims are the claims the hosted auth service puts in access tokens.
type AccessClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"` // database role: anon, authenticated, service_role
	jwt.RegisteredClaims
}

const (
	authenticatedAudience = "authenticated"
	jwtLeeway             = 30 * time.Second
)

// ValidateAccessToken checks signature, expiry and audience.
func (s *AuthService) ValidateAccessToken(tokenString string) (*AccessClaims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, &domain.ErrNotConfigured{Component: "SUPABASE_JWT_SECRET"}
	}

	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	},
		jwt.WithAudience(authenticatedAudience),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(jwtLeeway),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, &domain.ErrUnauthorized{Message: "session expired"}
		}
		return nil, &domain.ErrUnauthorized{Message: "invalid access token"}
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, &domain.ErrUnauthorized{Message: "invalid access token"}
	}
	return claims, nil
}
