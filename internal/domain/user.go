// Package domain contains entities without logic, just meta-data
package domain

import (
	"strings"
	"time"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 36
	MinPasswordLen = 6
	// bcrypt ignores everything past 72 bytes.
	MaxPasswordLen = 72
)

type UserID string

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleMember || r == RoleAdmin
}

// User is the stored account. PasswordHash never leaves the credential store.
type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	Avatar       string
	Role         Role
	CreatedAt    time.Time
}

func (u User) Identity() Identity {
	return Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
}

// Identity is what a verified credential proves. It is copied by value and
// never mutated once issued into a token.
type Identity struct {
	UserID   UserID `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (i Identity) IsZero() bool { return i.UserID == "" }

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func ValidateUsername(username string) error {
	n := len(strings.TrimSpace(username))
	if n == 0 {
		return ErrUsernameEmpty
	}
	if n != len(username) {
		return ErrUsernameInvalid
	}
	if n < MinUsernameLen {
		return ErrUsernameTooShort
	}
	if n > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLen {
		return ErrPasswordTooLong
	}
	return nil
}
