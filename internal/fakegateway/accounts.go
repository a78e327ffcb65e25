package fakegateway

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/jrsteele09/go-order-portal/users"
)

// account is a user as the gateway stores it.
type account struct {
	user         users.User
	passwordHash string
}

// Seeded credentials.
const (
	AdminEmail    = "admin@example.com"
	AdminPassword = "admin123"
	UserEmail     = "user@example.com"
	UserPassword  = "user123"
)

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	return string(bytes), err
}

func checkPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
