package fakegateway

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-order-portal/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated user
const ContextKeyUser ContextKey = "user"

func userFromContext(ctx context.Context) *users.User {
	u, _ := ctx.Value(ContextKeyUser).(*users.User)
	return u
}

// bearerToken extracts the token of an "Authorization: Bearer" header.
func bearerToken(r *http.Request) (string, bool) {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// authenticate resolves the bearer token of r to a user.
func (s *Server) authenticate(r *http.Request) (*users.User, string) {
	raw, ok := bearerToken(r)
	if !ok {
		return nil, "Missing Authorization header"
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	claims, err := s.parseAccessToken(raw, s.generation)
	if err != nil {
		return nil, "Token expired or invalid"
	}
	acc, ok := s.accounts[strings.ToLower(claims.Email)]
	if !ok || !acc.user.Active {
		return nil, "Unknown or inactive user"
	}
	u := acc.user
	return &u, ""
}

// requireAuth rejects requests without a current access token with 401.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, reason := s.authenticate(r)
		if u == nil {
			writeFailure(w, http.StatusUnauthorized, reason)
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), ContextKeyUser, u)))
	}
}

// requireAdmin must be chained after requireAuth.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if u := userFromContext(r.Context()); u == nil || !u.Role.IsAdmin() {
			writeFailure(w, http.StatusForbidden, "Admin access required")
			return
		}
		next(w, r)
	}
}

// chainMiddleware applies mw so the first one listed runs first.
func chainMiddleware(route http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chained := route
	for i := len(mw) - 1; i >= 0; i-- {
		chained = mw[i](chained)
	}
	return chained
}

// recoverMiddleware turns a handler panic into a 500 envelope.
func recoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("fake gateway handler panicked")
				writeFailure(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next(w, r)
	}
}
