// Package authorizer decorates outgoing gateway calls with the session's
// bearer token and recovers an expired access token with one refresh and
// one retry.
package authorizer

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/jrsteele09/go-order-portal/gateway"
	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
)

// Session is the part of the session store the transport reads and writes.
type Session interface {
	oauth2.TokenSource
	RefreshToken() string
	SetTokens(access, refresh string)
	Logout()
}

// Refresher mints a new token pair. *gateway.Client satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (*gateway.TokenResponse, error)
}

var _ http.RoundTripper = (*Transport)(nil)

// Transport is an http.RoundTripper that authorizes every request except the
// login, register and refresh endpoints.
//
// On a 401 it refreshes once and retries the original request once with the
// new token, returning whatever the retry returns. When no refresh is
// possible the session is cleared, OnReauthRequired is called with the
// reason, and the original 401 response is returned to the caller.
type Transport struct {
	Base             http.RoundTripper
	Session          Session
	Refresher        Refresher
	OnReauthRequired func(reason error)
}

// New creates a Transport over base. A nil base uses http.DefaultTransport.
func New(base http.RoundTripper, session Session, refresher Refresher) *Transport {
	return &Transport{Base: base, Session: session, Refresher: refresher}
}

// Client returns an *http.Client that sends every request through t.
func (t *Transport) Client(timeout time.Duration) *http.Client {
	return &http.Client{Transport: t, Timeout: timeout}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if gateway.IsUnauthenticatedPath(req.URL.Path) {
		return t.base().RoundTrip(req)
	}

	getBody, err := replayableBody(req)
	if err != nil {
		return nil, err
	}

	first, err := cloneRequest(req, getBody)
	if err != nil {
		return nil, err
	}
	if tok, err := t.Session.Token(); err == nil {
		tok.SetAuthHeader(first)
	}

	resp, err := t.base().RoundTrip(first)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	refreshToken := t.Session.RefreshToken()
	if refreshToken == "" {
		t.reauth(req, errors.ErrNoRefreshToken)
		return resp, nil
	}

	tokens, err := t.Refresher.Refresh(req.Context(), refreshToken)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			resp.Body.Close()
			return nil, ctxErr
		}
		t.reauth(req, err)
		return resp, nil
	}
	t.Session.SetTokens(tokens.AccessToken, tokens.RefreshToken)
	log.Debug().Str("path", req.URL.Path).Msg("access token refreshed, retrying request")

	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	retry, err := cloneRequest(req, getBody)
	if err != nil {
		return nil, err
	}
	(&oauth2.Token{AccessToken: tokens.AccessToken, TokenType: "Bearer"}).SetAuthHeader(retry)
	return t.base().RoundTrip(retry)
}

func (t *Transport) reauth(req *http.Request, reason error) {
	log.Warn().Err(reason).Str("path", req.URL.Path).Msg("session expired, re-authentication required")
	t.Session.Logout()
	if t.OnReauthRequired != nil {
		t.OnReauthRequired(reason)
	}
}

func (t *Transport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}
	return t.Base
}

// replayableBody returns a func producing a fresh copy of the request body,
// buffering it when the request cannot rewind it itself.
func replayableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		req.Body.Close()
		return req.GetBody, nil
	}
	data, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, errors.Wrapf(err, "[authorizer] read request body")
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(data)), nil
	}, nil
}

// cloneRequest copies req so the caller's request is never modified.
func cloneRequest(req *http.Request, getBody func() (io.ReadCloser, error)) (*http.Request, error) {
	r := req.Clone(req.Context())
	if getBody == nil {
		return r, nil
	}
	body, err := getBody()
	if err != nil {
		return nil, errors.Wrapf(err, "[authorizer] rewind request body")
	}
	r.Body = body
	r.GetBody = getBody
	return r, nil
}
