package entity

import "time"

// Role represents an authorization role.
// Many-to-many with User via user_roles.
type Role struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
