package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-order-portal/api"
	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/users"
	"golang.org/x/oauth2"
)

// Auth endpoints of the API gateway.
const (
	LoginPath    = "/api/v1/auth/login"
	RegisterPath = "/api/v1/auth/register"
	RefreshPath  = "/api/v1/auth/refresh"
	ValidatePath = "/api/v1/auth/validate"
)

// UnauthenticatedPaths are the endpoints that must never carry the session's
// bearer token or trigger a refresh.
var UnauthenticatedPaths = []string{LoginPath, RegisterPath, RefreshPath}

// IsUnauthenticatedPath reports whether path is one of UnauthenticatedPaths.
func IsUnauthenticatedPath(path string) bool {
	for _, p := range UnauthenticatedPaths {
		if strings.HasSuffix(strings.TrimRight(path, "/"), p) {
			return true
		}
	}
	return false
}

// Client performs the auth calls against the gateway. It holds no session
// state and never retries; each method is one request and one response.
type Client struct {
	api    *api.Client
	tokens oauth2.TokenSource
}

// New creates a client. apiClient should use a plain transport: these calls
// manage their own credentials.
func New(apiClient *api.Client) *Client {
	return &Client{api: apiClient}
}

// WithTokenSource sets where RegisterUser takes the admin's bearer token from.
func (c *Client) WithTokenSource(ts oauth2.TokenSource) *Client {
	c.tokens = ts
	return c
}

func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	tokens, err := api.Call[TokenResponse](ctx, c.api, api.Request{
		Method: http.MethodPost,
		Path:   LoginPath,
		Body:   LoginRequest{Email: email, Password: password},
	})
	if err != nil {
		return nil, fmt.Errorf("[gateway.Login] %w", err)
	}
	if err := checkTokens(&tokens); err != nil {
		return nil, fmt.Errorf("[gateway.Login] %w", err)
	}
	return &tokens, nil
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	tokens, err := api.Call[TokenResponse](ctx, c.api, api.Request{
		Method: http.MethodPost,
		Path:   RefreshPath,
		Body:   RefreshRequest{RefreshToken: refreshToken},
	})
	if err != nil {
		return nil, fmt.Errorf("[gateway.Refresh] %w", err)
	}
	if err := checkTokens(&tokens); err != nil {
		return nil, fmt.Errorf("[gateway.Refresh] %w", err)
	}
	return &tokens, nil
}

// Validate asks the gateway who owns accessToken. A token the server reports
// as invalid yields the validation and an error wrapping ErrInvalidToken.
func (c *Client) Validate(ctx context.Context, accessToken string) (*TokenValidation, error) {
	header := http.Header{}
	(&oauth2.Token{AccessToken: accessToken}).SetAuthHeader(&http.Request{Header: header})

	v, err := api.Call[TokenValidation](ctx, c.api, api.Request{
		Method: http.MethodPost,
		Path:   ValidatePath,
		Header: header,
	})
	if err != nil {
		return nil, fmt.Errorf("[gateway.Validate] %w", err)
	}
	if !v.Valid {
		msg := v.Message
		if msg == "" {
			msg = "Token is invalid"
		}
		return &v, &errors.APIError{StatusCode: http.StatusOK, Message: msg, Cause: errors.ErrInvalidToken}
	}
	return &v, nil
}

// RegisterUser creates a user. Only the server decides whether the caller may.
func (c *Client) RegisterUser(ctx context.Context, req RegisterRequest) (*users.User, error) {
	header := http.Header{}
	if c.tokens != nil {
		if tok, err := c.tokens.Token(); err == nil {
			tok.SetAuthHeader(&http.Request{Header: header})
		}
	}

	u, err := api.Call[users.User](ctx, c.api, api.Request{
		Method: http.MethodPost,
		Path:   RegisterPath,
		Body:   req,
		Header: header,
	})
	if err != nil {
		return nil, fmt.Errorf("[gateway.RegisterUser] %w", err)
	}
	return &u, nil
}

func checkTokens(t *TokenResponse) error {
	if t.AccessToken == "" {
		return &errors.APIError{StatusCode: http.StatusOK, Message: "response carried no access token", Cause: errors.ErrUnsuccessful}
	}
	return nil
}
