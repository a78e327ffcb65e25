package fakegateway

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-order-portal/gateway"
	"github.com/jrsteele09/go-order-portal/users"
)

func (s *Server) issueTokens(u *users.User) (*gateway.TokenResponse, error) {
	access, err := s.createAccessToken(u, s.generation)
	if err != nil {
		return nil, err
	}
	refresh := newRefreshToken()
	s.refreshTokens[refresh] = strings.ToLower(u.Email)
	return &gateway.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req gateway.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	acc, ok := s.accounts[strings.ToLower(req.Email)]
	if !ok || !checkPasswordHash(req.Password, acc.passwordHash) {
		writeFailure(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if !acc.user.Active {
		writeFailure(w, http.StatusForbidden, "User is blocked")
		return
	}

	tokens, err := s.issueTokens(&acc.user)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeEnvelope(w, http.StatusOK, true, "Login successful", tokens)
}

// refreshHandler mints a new pair. Old refresh tokens stay valid, so
// concurrent refreshes with the same token all succeed.
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	var req gateway.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, http.StatusBadRequest, "Malformed request")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.failRefresh {
		writeFailure(w, http.StatusOK, "Refresh token expired")
		return
	}
	email, ok := s.refreshTokens[req.RefreshToken]
	if !ok {
		writeFailure(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	acc, ok := s.accounts[email]
	if !ok || !acc.user.Active {
		writeFailure(w, http.StatusUnauthorized, "Unknown or inactive user")
		return
	}

	tokens, err := s.issueTokens(&acc.user)
	if err != nil {
		writeFailure(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeEnvelope(w, http.StatusOK, true, "Token refreshed", tokens)
}

func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	u, reason := s.authenticate(r)
	if u == nil {
		writeEnvelope(w, http.StatusOK, true, reason, gateway.TokenValidation{Valid: false, Message: reason})
		return
	}
	writeEnvelope(w, http.StatusOK, true, "Token is valid", gateway.TokenValidation{
		Valid:   true,
		Email:   u.Email,
		Role:    u.Role,
		Message: "Token is valid",
	})
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	if caller := userFromContext(r.Context()); caller == nil || !caller.Role.IsAdmin() {
		writeFailure(w, http.StatusForbidden, "Admin access required")
		return
	}

	var req gateway.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" || req.Password == "" {
		writeFailure(w, http.StatusBadRequest, "Malformed request")
		return
	}
	role, ok := users.ParseRole(string(req.Role))
	if !ok {
		writeFailure(w, http.StatusBadRequest, "Unknown role")
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if _, exists := s.accounts[strings.ToLower(req.Email)]; exists {
		writeFailure(w, http.StatusConflict, "Email already registered")
		return
	}
	u := s.addAccount(users.User{
		Name:      req.Name,
		Surname:   req.Surname,
		Email:     req.Email,
		BirthDate: req.BirthDate,
		Role:      role,
		Active:    true,
	}, req.Password)
	writeEnvelope(w, http.StatusCreated, true, "User registered", *u)
}
