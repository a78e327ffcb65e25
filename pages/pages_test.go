package pages_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-order-portal/api"
	"github.com/jrsteele09/go-order-portal/gateway"
	"github.com/jrsteele09/go-order-portal/guard"
	"github.com/jrsteele09/go-order-portal/internal/errors"
	"github.com/jrsteele09/go-order-portal/internal/fakegateway"
	"github.com/jrsteele09/go-order-portal/pages"
	"github.com/jrsteele09/go-order-portal/session"
	"github.com/jrsteele09/go-order-portal/session/repofake"
	"github.com/jrsteele09/go-order-portal/users"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	fake  *fakegateway.Server
	gw    *gateway.Client
	repo  *repofake.FakeSessionRepo
	store *session.Store
	nav   *guard.Navigator
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()
	fake := fakegateway.New()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	repo := repofake.NewFakeSessionRepo()
	store := session.NewStore(repo)
	return &fixture{
		fake:  fake,
		gw:    gateway.New(api.NewClient(srv.URL, srv.Client())).WithTokenSource(store),
		repo:  repo,
		store: store,
		nav:   guard.NewNavigator(store, nil),
	}
}

func TestLoginPage_Success(t *testing.T) {
	f := setupFixture(t)
	page := pages.NewLoginPage(context.Background(), f.gw, f.store, f.nav, "/payments")

	require.NoError(t, page.Submit(fakegateway.AdminEmail, fakegateway.AdminPassword))
	require.Empty(t, page.ErrorText())
	require.False(t, page.Submitting())

	require.True(t, f.store.IsAuthenticated())
	require.True(t, f.store.IsAdmin())
	require.Equal(t, fakegateway.AdminEmail, f.store.Email())
	require.Equal(t, "/payments", f.nav.Current())
	require.Equal(t, "ADMIN", f.repo.Values()[session.RoleKey])
}

func TestLoginPage_DefaultsToOrders(t *testing.T) {
	f := setupFixture(t)
	page := pages.NewLoginPage(context.Background(), f.gw, f.store, f.nav, "https://elsewhere.example")

	require.NoError(t, page.Submit(fakegateway.UserEmail, fakegateway.UserPassword))
	require.Equal(t, "/orders", f.nav.Current())
	require.False(t, f.store.IsAdmin())
}

func TestLoginPage_BadCredentialsLeaveSessionUntouched(t *testing.T) {
	f := setupFixture(t)
	f.store.SetTokens("old-access", "old-refresh")
	page := pages.NewLoginPage(context.Background(), f.gw, f.store, f.nav, "")

	err := page.Submit(fakegateway.UserEmail, "wrong")
	require.ErrorIs(t, err, errors.ErrUnauthorized)
	require.Equal(t, "Invalid email or password", page.ErrorText())
	require.False(t, page.Submitting())
	require.Equal(t, "old-access", f.store.AccessToken())
	require.Empty(t, f.nav.Current())
}

func TestLoginPage_ValidationNeverCallsGateway(t *testing.T) {
	f := setupFixture(t)
	page := pages.NewLoginPage(context.Background(), f.gw, f.store, f.nav, "")

	err := page.Submit("not-an-email", "")
	require.ErrorIs(t, err, errors.ErrValidation)
	var verr *errors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "email")
	require.Contains(t, verr.Fields, "password")
	require.NotEmpty(t, page.ErrorText())
	require.Zero(t, f.fake.Requests(gateway.LoginPath))
	require.Empty(t, f.repo.Writes())
}

// stubGateway logs in successfully and reports every token as invalid.
type stubGateway struct {
	onLogin  func()
	validity bool
}

func (s *stubGateway) Login(ctx context.Context, _, _ string) (*gateway.TokenResponse, error) {
	if s.onLogin != nil {
		s.onLogin()
	}
	return &gateway.TokenResponse{AccessToken: "a1", RefreshToken: "r1"}, nil
}

func (s *stubGateway) Validate(ctx context.Context, _ string) (*gateway.TokenValidation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !s.validity {
		return &gateway.TokenValidation{Valid: false}, &errors.APIError{Message: "Token is invalid", Cause: errors.ErrInvalidToken}
	}
	return &gateway.TokenValidation{Valid: true, Email: "x@y.com", Role: users.RoleUser}, nil
}

func TestLoginPage_InvalidTokenIsCleared(t *testing.T) {
	f := setupFixture(t)
	page := pages.NewLoginPage(context.Background(), &stubGateway{}, f.store, f.nav, "")

	err := page.Submit("x@y.com", "secret")
	require.ErrorIs(t, err, errors.ErrInvalidToken)
	require.Equal(t, "Token is invalid", page.ErrorText())
	require.False(t, f.store.IsAuthenticated())
	require.Empty(t, f.repo.Values())
}

func TestLoginPage_CloseDropsCompletion(t *testing.T) {
	f := setupFixture(t)
	stub := &stubGateway{validity: true}
	page := pages.NewLoginPage(context.Background(), stub, f.store, f.nav, "")
	stub.onLogin = page.Close

	err := page.Submit("x@y.com", "secret")
	require.ErrorIs(t, err, pages.ErrClosed)
	require.False(t, f.store.IsAuthenticated())
	require.Empty(t, f.repo.Writes())
	require.Empty(t, f.nav.Current())
	require.Empty(t, page.ErrorText())

	require.ErrorIs(t, page.Submit("x@y.com", "secret"), pages.ErrClosed)
}

// gatedSession holds SetTokens until release is closed.
type gatedSession struct {
	*session.Store
	entered chan struct{}
	release chan struct{}
}

func (g *gatedSession) SetTokens(access, refresh string) {
	close(g.entered)
	<-g.release
	g.Store.SetTokens(access, refresh)
}

func TestLoginPage_CloseWaitsForTokenWrite(t *testing.T) {
	f := setupFixture(t)
	gated := &gatedSession{Store: f.store, entered: make(chan struct{}), release: make(chan struct{})}
	page := pages.NewLoginPage(context.Background(), &stubGateway{validity: true}, gated, f.nav, "")

	submitted := make(chan error, 1)
	go func() { submitted <- page.Submit("x@y.com", "secret") }()
	<-gated.entered

	closed := make(chan struct{})
	go func() {
		page.Close()
		close(closed)
	}()
	require.Never(t, func() bool {
		select {
		case <-closed:
			return true
		default:
			return false
		}
	}, 50*time.Millisecond, 5*time.Millisecond)

	close(gated.release)
	require.Eventually(t, func() bool {
		select {
		case <-closed:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)

	require.ErrorIs(t, <-submitted, pages.ErrClosed)
	require.Equal(t, "a1", f.store.AccessToken())
	require.Nil(t, f.store.State().Identity)
	require.Empty(t, f.nav.Current())
}

func validForm() pages.RegisterForm {
	return pages.RegisterForm{
		Name:            "Grace",
		Surname:         "Hopper",
		Email:           "grace@example.com",
		Password:        "cobol1",
		ConfirmPassword: "cobol1",
		BirthDate:       "1990-12-09",
		Role:            "user",
	}
}

func TestRegisterForm_Validate(t *testing.T) {
	pages.NowTimeFunc = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(func() { pages.NowTimeFunc = time.Now })

	require.NoError(t, validForm().Validate())

	tests := []struct {
		name  string
		edit  func(*pages.RegisterForm)
		field string
	}{
		{"short name", func(f *pages.RegisterForm) { f.Name = "G" }, "name"},
		{"missing surname", func(f *pages.RegisterForm) { f.Surname = " " }, "surname"},
		{"bad email", func(f *pages.RegisterForm) { f.Email = "grace" }, "email"},
		{"short password", func(f *pages.RegisterForm) { f.Password, f.ConfirmPassword = "abc", "abc" }, "password"},
		{"mismatch", func(f *pages.RegisterForm) { f.ConfirmPassword = "cobol2" }, "confirmPassword"},
		{"bad date", func(f *pages.RegisterForm) { f.BirthDate = "09/12/1990" }, "birthDate"},
		{"future date", func(f *pages.RegisterForm) { f.BirthDate = "2025-06-01" }, "birthDate"},
		{"bad role", func(f *pages.RegisterForm) { f.Role = "ROOT" }, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(&form)
			var verr *errors.ValidationError
			require.ErrorAs(t, form.Validate(), &verr)
			require.Len(t, verr.Fields, 1)
			require.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestRegisterPage(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()

	t.Run("as user", func(t *testing.T) {
		login := pages.NewLoginPage(ctx, f.gw, f.store, f.nav, "")
		require.NoError(t, login.Submit(fakegateway.UserEmail, fakegateway.UserPassword))

		page := pages.NewRegisterPage(ctx, f.gw, f.nav)
		_, err := page.Submit(validForm())
		require.ErrorIs(t, err, errors.ErrForbidden)
		require.Equal(t, "Admin access required", page.ErrorText())
		require.Equal(t, "/orders", f.nav.Current())
	})

	t.Run("as admin", func(t *testing.T) {
		login := pages.NewLoginPage(ctx, f.gw, f.store, f.nav, "")
		require.NoError(t, login.Submit(fakegateway.AdminEmail, fakegateway.AdminPassword))

		page := pages.NewRegisterPage(ctx, f.gw, f.nav)
		u, err := page.Submit(validForm())
		require.NoError(t, err)
		require.Equal(t, "grace@example.com", u.Email)
		require.Equal(t, users.RoleUser, u.Role)
		require.Equal(t, "/users", f.nav.Current())
		require.Empty(t, page.ErrorText())
	})

	t.Run("invalid form", func(t *testing.T) {
		before := f.fake.Requests(gateway.RegisterPath)
		page := pages.NewRegisterPage(ctx, f.gw, f.nav)
		_, err := page.Submit(pages.RegisterForm{})
		require.ErrorIs(t, err, errors.ErrValidation)
		require.Equal(t, before, f.fake.Requests(gateway.RegisterPath))
	})
}
