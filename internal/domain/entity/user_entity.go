package entity

import (
	"time"
)

// User is the aggregate root for the security domain.
// Passwords are stored as bcrypt hashes in PasswordHash.
//
// The login trail (Last*/Current*) is shifted on every successful login:
// last takes the previous current, current takes the new values.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	AvatarURL    string

	Active      bool
	ConfirmedAt *time.Time

	LastLoginAt    *time.Time
	CurrentLoginAt *time.Time
	LastLoginIP    string
	CurrentLoginIP string
	LoginCount     int

	Roles []Role

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Confirmed reports whether the user ever confirmed their email.
func (u *User) Confirmed() bool {
	return u.ConfirmedAt != nil && !u.ConfirmedAt.IsZero()
}

// HasRole reports whether the user carries the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// RoleNames returns the user's role names in load order.
func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}
