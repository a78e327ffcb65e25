package guard_test

import (
	"testing"

	"github.com/jrsteele09/go-order-portal/guard"
	"github.com/jrsteele09/go-order-portal/session"
	"github.com/jrsteele09/go-order-portal/users"
	"github.com/stretchr/testify/require"
)

type authState struct {
	authenticated bool
	admin         bool
}

func (a authState) IsAuthenticated() bool { return a.authenticated }
func (a authState) IsAdmin() bool         { return a.admin }

var (
	anonymous = authState{}
	user      = authState{authenticated: true}
	admin     = authState{authenticated: true, admin: true}
)

func TestAuthCanMatch(t *testing.T) {
	d := guard.AuthCanMatch(anonymous, []string{"orders"})
	require.Equal(t, guard.RedirectToAuth, d.Outcome)
	require.Equal(t, "/auth?returnUrl=/orders", d.Redirect)

	require.True(t, guard.AuthCanMatch(user, []string{"orders"}).Allowed())
	require.True(t, guard.AuthCanMatch(admin, []string{"payments"}).Allowed())
}

func TestAuthCanActivateKeepsQuery(t *testing.T) {
	d := guard.AuthCanActivate(anonymous, "/orders?page=2")
	require.Equal(t, guard.RedirectToAuth, d.Outcome)
	require.Equal(t, "/auth?returnUrl=/orders%3Fpage%3D2", d.Redirect)
	require.Equal(t, "/orders?page=2", guard.ReturnURL(d.Redirect))
}

func TestAdminCanMatch(t *testing.T) {
	tests := []struct {
		name     string
		auth     authState
		outcome  guard.Outcome
		redirect string
	}{
		{"anonymous", anonymous, guard.RedirectToAuth, "/auth?returnUrl=/users"},
		{"user", user, guard.RedirectToHome, "/orders"},
		{"admin", admin, guard.Allowed, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := guard.AdminCanMatch(tt.auth, []string{"users"})
			require.Equal(t, tt.outcome, d.Outcome)
			require.Equal(t, tt.redirect, d.Redirect)
		})
	}
}

func TestSafeReturnURL(t *testing.T) {
	tests := map[string]string{
		"":                       "/orders",
		"/payments":              "/payments",
		"/orders/7?tab=items":    "/orders/7?tab=items",
		"//evil.example":         "/orders",
		"/\\evil.example":        "/orders",
		"https://evil.example/x": "/orders",
		"orders":                 "/orders",
		"/auth":                  "/orders",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			require.Equal(t, want, guard.SafeReturnURL(in))
		})
	}
}

func TestFreshSessionIsSentToSignIn(t *testing.T) {
	store := session.NewStore(nil)
	d := guard.AuthCanMatch(store, guard.Segments("/orders"))
	require.Equal(t, "/auth?returnUrl=/orders", d.Redirect)
}

func TestNavigator(t *testing.T) {
	store := session.NewStore(nil)
	nav := guard.NewNavigator(store, nil)

	var seen []string
	unsubscribe := nav.Subscribe(func(loc string) { seen = append(seen, loc) })

	require.Equal(t, "/auth?returnUrl=/orders", nav.Navigate("/orders"))
	require.Equal(t, "/auth?returnUrl=/orders", nav.Navigate("/"))
	require.Equal(t, "/auth?returnUrl=/orders", nav.Navigate("/nowhere"))
	require.Equal(t, "/auth?returnUrl=/users", nav.Navigate("/users"))

	store.SetTokens("a1", "r1")
	require.NoError(t, store.SetIdentity(&session.Identity{Email: "u@example.com", Role: users.RoleUser}))
	require.Equal(t, "/orders", nav.Navigate("/users"))
	require.Equal(t, "/payments", nav.Navigate("/payments"))
	require.Equal(t, "/orders/3", nav.Navigate("/orders/3"))

	require.NoError(t, store.SetIdentity(&session.Identity{Email: "a@example.com", Role: users.RoleAdmin}))
	require.Equal(t, "/users", nav.Navigate("/users"))
	require.Equal(t, "/users", nav.Current())

	unsubscribe()
	store.Logout()
	require.Equal(t, "/auth?returnUrl=/users", nav.Navigate("/users"))
	require.Len(t, seen, 8)
}

func TestNavigatorStopsRedirectLoops(t *testing.T) {
	loop := []guard.Route{
		{Path: "/a", RedirectTo: "/b"},
		{Path: "/b", RedirectTo: "/a"},
	}
	nav := guard.NewNavigator(user, loop)
	require.Equal(t, guard.SignInPath, nav.Navigate("/a"))
}
