package domain

import (
	"regexp"
	"strings"
	"time"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered canteen account.
type User struct {
	ID           int
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether the address is acceptable for registration.
// A purely numeric local part is rejected.
func ValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return false
	}
	local := email[:strings.Index(email, "@")]
	for _, r := range local {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

const (
	MinUsernameLen = 3
	MinPasswordLen = 6
)

// Validate rejects malformed persisted user records.
func (u User) Validate() error {
	if u.ID <= 0 {
		return ErrInvalidID
	}
	if len(u.Username) < MinUsernameLen {
		return ErrUsernameTooShort
	}
	if !ValidEmail(u.Email) {
		return ErrInvalidEmail
	}
	if u.Role != RoleUser && u.Role != RoleAdmin {
		return ErrInvalidRole
	}
	return nil
}
