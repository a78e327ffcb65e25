// Package pages holds the sign-in and admin registration page controllers.
// A controller runs one submission at a time; once its view is closed every
// pending completion is dropped without touching the session.
package pages

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-order-portal/gateway"
	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/session"
	"github.com/jrsteele09/go-order-portal/users"
)

var (
	ErrClosed     = errors.New("page closed")
	ErrSubmitting = errors.New("submission already in progress")
)

// Authenticator is the part of the gateway the login page calls.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*gateway.TokenResponse, error)
	Validate(ctx context.Context, accessToken string) (*gateway.TokenValidation, error)
}

// Registrar is the part of the gateway the register page calls.
type Registrar interface {
	RegisterUser(ctx context.Context, req gateway.RegisterRequest) (*users.User, error)
}

// SessionWriter is the part of the session store the login page writes.
type SessionWriter interface {
	SetTokens(access, refresh string)
	SetIdentity(id *session.Identity) error
	Logout()
}

type Navigator interface {
	Navigate(target string) string
}

// view is the state shared by every page: its lifetime, the in-flight flag
// and the last error shown to the user.
type view struct {
	ctx    context.Context
	cancel context.CancelFunc

	lock       sync.Mutex
	closed     bool
	submitting bool
	errorText  string
}

func (v *view) open(ctx context.Context) {
	v.ctx, v.cancel = context.WithCancel(ctx)
}

// begin marks a submission as started, clearing the previous error.
func (v *view) begin() error {
	v.lock.Lock()
	defer v.lock.Unlock()
	if v.closed {
		return ErrClosed
	}
	if v.submitting {
		return ErrSubmitting
	}
	v.submitting = true
	v.errorText = ""
	return nil
}

// complete runs fn under the view lock unless the view was closed, then ends
// the submission. It reports whether fn ran.
func (v *view) complete(fn func()) bool {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.submitting = false
	if v.closed {
		return false
	}
	if fn != nil {
		fn()
	}
	return true
}

// whileOpen runs fn under the view lock unless the view was closed. The
// submission stays in flight. It reports whether fn ran.
func (v *view) whileOpen(fn func()) bool {
	v.lock.Lock()
	defer v.lock.Unlock()
	if v.closed {
		return false
	}
	fn()
	return true
}

func (v *view) fail(err error, fallback string) error {
	if !v.complete(func() { v.errorText = errors.Message(err, fallback) }) {
		return ErrClosed
	}
	return err
}

func (v *view) setError(text string) {
	v.lock.Lock()
	defer v.lock.Unlock()
	v.errorText = text
}

// ErrorText is the message to show, "" when the last submission succeeded.
func (v *view) ErrorText() string {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.errorText
}

func (v *view) Submitting() bool {
	v.lock.Lock()
	defer v.lock.Unlock()
	return v.submitting
}

// Close abandons the view. Requests still in flight are cancelled and their
// results discarded.
func (v *view) Close() {
	v.lock.Lock()
	v.closed = true
	v.lock.Unlock()
	v.cancel()
}
