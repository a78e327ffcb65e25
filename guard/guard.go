// Package guard decides whether a navigation may enter a route. Guards only
// read the session; they never change it.
package guard

import (
	"net/url"
	"strings"
)

// Routes of the portal.
const (
	SignInPath   = "/auth"
	OrdersPath   = "/orders"
	PaymentsPath = "/payments"
	UsersPath    = "/users"

	// HomePath is where authenticated users land by default.
	HomePath = OrdersPath

	ReturnURLParam = "returnUrl"
)

// AuthState is the derived session state guards read. *session.Store satisfies it.
type AuthState interface {
	IsAuthenticated() bool
	IsAdmin() bool
}

type Outcome int

const (
	Allowed Outcome = iota
	RedirectToAuth
	RedirectToHome
)

func (o Outcome) String() string {
	switch o {
	case Allowed:
		return "allowed"
	case RedirectToAuth:
		return "redirect-to-auth"
	case RedirectToHome:
		return "redirect-to-home"
	default:
		return "unknown"
	}
}

// Decision is the result of one guard evaluation. Redirect is set unless
// the outcome is Allowed.
type Decision struct {
	Outcome  Outcome
	Redirect string
}

func (d Decision) Allowed() bool {
	return d.Outcome == Allowed
}

func allow() Decision {
	return Decision{Outcome: Allowed}
}

func toSignIn(returnURL string) Decision {
	return Decision{Outcome: RedirectToAuth, Redirect: SignInURL(returnURL)}
}

// AuthCanActivate allows an authenticated session into url.
func AuthCanActivate(auth AuthState, url string) Decision {
	if auth.IsAuthenticated() {
		return allow()
	}
	return toSignIn(url)
}

// AuthCanMatch is AuthCanActivate for a route given as path segments.
func AuthCanMatch(auth AuthState, segments []string) Decision {
	return AuthCanActivate(auth, JoinSegments(segments))
}

// AdminCanMatch allows only admins. Authenticated non-admins go home, since
// signing in again would not change their role.
func AdminCanMatch(auth AuthState, segments []string) Decision {
	if !auth.IsAuthenticated() {
		return toSignIn(JoinSegments(segments))
	}
	if !auth.IsAdmin() {
		return Decision{Outcome: RedirectToHome, Redirect: HomePath}
	}
	return allow()
}

// SignInURL is the sign-in route carrying returnURL, e.g. /auth?returnUrl=/orders.
func SignInURL(returnURL string) string {
	if returnURL == "" {
		return SignInPath
	}
	escaped := strings.ReplaceAll(url.QueryEscape(returnURL), "%2F", "/")
	return SignInPath + "?" + ReturnURLParam + "=" + escaped
}

// SafeReturnURL returns raw when it is a local absolute path and HomePath
// otherwise, so a return target can never leave the portal.
func SafeReturnURL(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return HomePath
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return HomePath
	}
	if u.Path == SignInPath {
		return HomePath
	}
	return raw
}

// ReturnURL extracts the sanitized return target from a sign-in URL.
func ReturnURL(signInURL string) string {
	u, err := url.Parse(signInURL)
	if err != nil {
		return HomePath
	}
	return SafeReturnURL(u.Query().Get(ReturnURLParam))
}

// Segments splits a path into its non-empty segments, dropping any query.
func Segments(path string) []string {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	var out []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func JoinSegments(segments []string) string {
	return "/" + strings.Join(segments, "/")
}
