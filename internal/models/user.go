package models

import (
	"time"
)

// Authority labels granted to users
const (
	RoleAdmin = "ROLE_ADMIN"
	RoleUser  = "ROLE_USER"
)

// BirthdayLayout is the ISO date format used for birthdays on the wire
const BirthdayLayout = "2006-01-02"

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Birthday     *time.Time // date only, nil when unknown
	Address      string
	Authorities  []string // e.g., "ROLE_ADMIN", "ROLE_USER"
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasAuthority reports whether any granted authority equals label
func (u *User) HasAuthority(label string) bool {
	for _, a := range u.Authorities {
		if a == label {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user holds ROLE_ADMIN
func (u *User) IsAdmin() bool {
	return u.HasAuthority(RoleAdmin)
}
