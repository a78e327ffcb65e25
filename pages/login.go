package pages

import (
	"context"
	"net/mail"
	"strings"

	"github.com/jrsteele09/go-order-portal/guard"
	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/session"
	"github.com/rs/zerolog/log"
)

// LoginPage signs a user in: login, store the tokens, resolve the identity
// through the gateway and continue to the return target.
type LoginPage struct {
	view

	gateway   Authenticator
	session   SessionWriter
	nav       Navigator
	returnURL string
}

func NewLoginPage(ctx context.Context, gw Authenticator, s SessionWriter, nav Navigator, returnURL string) *LoginPage {
	p := &LoginPage{
		gateway:   gw,
		session:   s,
		nav:       nav,
		returnURL: guard.SafeReturnURL(returnURL),
	}
	p.open(ctx)
	return p
}

// ValidateLogin checks the form before anything is sent.
func ValidateLogin(email, password string) error {
	verr := &errors.ValidationError{}
	email = strings.TrimSpace(email)
	if email == "" {
		verr.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(email); err != nil {
		verr.Add("email", "Enter a valid email")
	}
	if password == "" {
		verr.Add("password", "Password is required")
	}
	return verr.OrNil()
}

// Submit runs one sign-in. On success the session holds the new tokens and the
// server-confirmed identity, and the navigator has moved on. A failed login
// leaves the session untouched; a login whose token does not validate is
// cleared again.
func (p *LoginPage) Submit(email, password string) error {
	if err := ValidateLogin(email, password); err != nil {
		p.setError(errors.Message(err, "Please check the form"))
		return err
	}
	if err := p.begin(); err != nil {
		return err
	}

	tokens, err := p.gateway.Login(p.ctx, strings.TrimSpace(email), password)
	if err != nil {
		return p.fail(err, "Login failed")
	}
	if !p.whileOpen(func() { p.session.SetTokens(tokens.AccessToken, tokens.RefreshToken) }) {
		return p.fail(ErrClosed, "")
	}

	v, err := p.gateway.Validate(p.ctx, tokens.AccessToken)
	if err != nil {
		if !p.whileOpen(p.session.Logout) {
			return p.fail(ErrClosed, "")
		}
		log.Warn().Err(err).Msg("token issued at login did not validate")
		return p.fail(err, "Token is invalid")
	}
	var idErr error
	if !p.whileOpen(func() { idErr = p.session.SetIdentity(&session.Identity{Email: v.Email, Role: v.Role}) }) {
		return p.fail(ErrClosed, "")
	}
	if idErr != nil {
		return p.fail(idErr, "Login failed")
	}

	if !p.complete(nil) {
		return ErrClosed
	}
	p.nav.Navigate(p.returnURL)
	return nil
}
