package session

import "github.com/jrsteele09/go-order-portal/users"

// Durable storage keys. Each is written or removed on its own.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	RoleKey         = "auth_role"
	EmailKey        = "auth_email"
)

// Keys lists every key the store owns, in write order.
var Keys = []string{AccessTokenKey, RefreshTokenKey, RoleKey, EmailKey}

// Identity is the server-confirmed owner of the access token. It is only ever
// built from a validate response, never by decoding the token.
type Identity struct {
	Email string     `json:"email"`
	Role  users.Role `json:"role"`
}

// State is an immutable snapshot of the session. Empty strings mean absent.
type State struct {
	AccessToken  string
	RefreshToken string
	Identity     *Identity
}

// IsAuthenticated reports whether an access token is held.
func (s State) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// IsAdmin is false whenever identity is absent.
func (s State) IsAdmin() bool {
	return s.Identity != nil && s.Identity.Role.IsAdmin()
}

// Email returns the identity email, or "" when identity is absent.
func (s State) Email() string {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Email
}

// Role returns the identity role, or "" when identity is absent.
func (s State) Role() users.Role {
	if s.Identity == nil {
		return ""
	}
	return s.Identity.Role
}

func (s State) equal(o State) bool {
	if s.AccessToken != o.AccessToken || s.RefreshToken != o.RefreshToken {
		return false
	}
	if s.Identity == nil || o.Identity == nil {
		return s.Identity == o.Identity
	}
	return *s.Identity == *o.Identity
}

// Repo is the durable client-side storage behind the store. Get returns
// errors.ErrNotFound for an absent key; Delete of an absent key is not an error.
type Repo interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}
