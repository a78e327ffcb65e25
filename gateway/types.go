package gateway

import (
	"time"

	"github.com/jrsteele09/go-order-portal/users"
	"golang.org/x/oauth2"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// TokenResponse is issued by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds
}

// Token converts the response to an oauth2.Token. The expiry is informational
// only: expiry is detected by a 401, never by a local timer.
func (t *TokenResponse) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
	}
	if t.ExpiresIn > 0 {
		tok.Expiry = NowTimeFunc().Add(time.Duration(t.ExpiresIn) * time.Second)
	}
	return tok
}

// TokenValidation is the server's verdict on an access token and the only
// trusted source of the caller's email and role.
type TokenValidation struct {
	Valid   bool       `json:"valid"`
	Email   string     `json:"email"`
	Role    users.Role `json:"role"`
	Message string     `json:"message"`
}

// RegisterRequest creates a user. The gateway only accepts it from an ADMIN.
type RegisterRequest struct {
	Email     string     `json:"email"`
	Password  string     `json:"password"`
	Name      string     `json:"name"`
	Surname   string     `json:"surname"`
	BirthDate string     `json:"birthDate"` // yyyy-mm-dd
	Role      users.Role `json:"role"`
}
