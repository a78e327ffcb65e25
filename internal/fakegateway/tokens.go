package fakegateway

import (
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-order-portal/users"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type accessClaims struct {
	Email      string     `json:"email"`
	Role       users.Role `json:"role"`
	Generation int        `json:"gen"`
	jwtlib.RegisteredClaims
}

func (s *Server) createAccessToken(u *users.User, generation int) (string, error) {
	now := NowTimeFunc()
	claims := accessClaims{
		Email:      u.Email,
		Role:       u.Role,
		Generation: generation,
		RegisteredClaims: jwtlib.RegisteredClaims{
			Issuer:    issuer,
			Subject:   u.Email,
			IssuedAt:  jwtlib.NewNumericDate(now),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.accessTTL)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign JWT token: %w", err)
	}
	return signed, nil
}

// parseAccessToken verifies signature, expiry and generation.
func (s *Server) parseAccessToken(raw string, generation int) (*accessClaims, error) {
	claims := new(accessClaims)
	parser := jwtlib.NewParser(
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}),
		jwtlib.WithIssuer(issuer),
		jwtlib.WithTimeFunc(NowTimeFunc),
	)
	token, err := parser.ParseWithClaims(raw, claims, func(*jwtlib.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid || claims.Generation != generation {
		return nil, fmt.Errorf("token expired")
	}
	return claims, nil
}

func newRefreshToken() string {
	return uuid.New().String()
}
