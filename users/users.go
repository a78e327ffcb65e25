package users

import "strings"

// Role is the authorization level the gateway assigns to a user.
type Role string

const (
	RoleAdmin Role = "ADMIN" // Manages users and sees every order and payment
	RoleUser  Role = "USER"  // Sees and pays for their own orders
)

// ParseRole normalises s, reporting false for anything but ADMIN or USER.
func ParseRole(s string) (Role, bool) {
	switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
	case RoleAdmin, RoleUser:
		return r, true
	default:
		return Role(s), false
	}
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name,omitempty"`      // First name of the user
	Surname   string `json:"surname,omitempty"`   // Last name of the user
	BirthDate string `json:"birthDate,omitempty"` // yyyy-mm-dd
	Email     string `json:"email,omitempty"`     // User's email address
	Role      Role   `json:"role,omitempty"`
	Active    bool   `json:"active"` // Inactive users cannot log in
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// FullName joins name and surname.
func (u *User) FullName() string {
	return strings.TrimSpace(u.Name + " " + u.Surname)
}

// UpdateRequest changes only the fields that are set.
type UpdateRequest struct {
	Name      *string `json:"name,omitempty"`
	Surname   *string `json:"surname,omitempty"`
	BirthDate *string `json:"birthDate,omitempty"`
	Email     *string `json:"email,omitempty"`
}

// FilterParams narrows a user listing by name and surname.
type FilterParams struct {
	Page    *int
	Size    int
	Name    string
	Surname string
}
