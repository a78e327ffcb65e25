package pages

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"github.com/jrsteele09/go-order-portal/gateway"
	"github.com/jrsteele09/go-order-portal/guard"
	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/users"
)

const birthDateLayout = "2006-01-02"

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// RegisterForm is the admin's new-user form as typed.
type RegisterForm struct {
	Name            string
	Surname         string
	Email           string
	Password        string
	ConfirmPassword string
	BirthDate       string
	Role            string
}

// Validate checks every field and reports all failures at once.
func (f RegisterForm) Validate() error {
	verr := &errors.ValidationError{}

	minLength := func(field, value string, n int, label string) {
		switch v := strings.TrimSpace(value); {
		case v == "":
			verr.Add(field, label+" is required")
		case len([]rune(v)) < n:
			verr.Add(field, label+" is too short")
		}
	}
	minLength("name", f.Name, 2, "Name")
	minLength("surname", f.Surname, 2, "Surname")

	if strings.TrimSpace(f.Email) == "" {
		verr.Add("email", "Email is required")
	} else if _, err := mail.ParseAddress(strings.TrimSpace(f.Email)); err != nil {
		verr.Add("email", "Enter a valid email")
	}

	switch {
	case f.Password == "":
		verr.Add("password", "Password is required")
	case len(f.Password) < 6:
		verr.Add("password", "Password must be at least 6 characters")
	}
	if f.ConfirmPassword == "" {
		verr.Add("confirmPassword", "Confirm your password")
	} else if f.ConfirmPassword != f.Password {
		verr.Add("confirmPassword", "Passwords do not match")
	}

	if f.BirthDate == "" {
		verr.Add("birthDate", "Birth date is required")
	} else if d, err := time.Parse(birthDateLayout, f.BirthDate); err != nil {
		verr.Add("birthDate", "Use the format yyyy-mm-dd")
	} else if !d.Before(NowTimeFunc().UTC().Truncate(24 * time.Hour)) {
		verr.Add("birthDate", "Birth date must be in the past")
	}

	if _, ok := users.ParseRole(f.Role); !ok {
		verr.Add("role", "Role must be ADMIN or USER")
	}
	return verr.OrNil()
}

func (f RegisterForm) request() gateway.RegisterRequest {
	role, _ := users.ParseRole(f.Role)
	return gateway.RegisterRequest{
		Email:     strings.TrimSpace(f.Email),
		Password:  f.Password,
		Name:      strings.TrimSpace(f.Name),
		Surname:   strings.TrimSpace(f.Surname),
		BirthDate: f.BirthDate,
		Role:      role,
	}
}

// RegisterPage lets an admin create users. The gateway decides whether the
// caller is allowed to.
type RegisterPage struct {
	view

	gateway Registrar
	nav     Navigator
}

func NewRegisterPage(ctx context.Context, gw Registrar, nav Navigator) *RegisterPage {
	p := &RegisterPage{gateway: gw, nav: nav}
	p.open(ctx)
	return p
}

// Submit registers the user and moves on to the user list.
func (p *RegisterPage) Submit(form RegisterForm) (*users.User, error) {
	if err := form.Validate(); err != nil {
		p.setError(errors.Message(err, "Please check the form"))
		return nil, err
	}
	if err := p.begin(); err != nil {
		return nil, err
	}

	u, err := p.gateway.RegisterUser(p.ctx, form.request())
	if err != nil {
		return nil, p.fail(err, "Registration failed")
	}
	if !p.complete(nil) {
		return nil, ErrClosed
	}
	p.nav.Navigate(guard.UsersPath)
	return u, nil
}
