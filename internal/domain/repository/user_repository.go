package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rizkypratama/authguard/internal/domain/entity"
)

// ErrNotFound is returned by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when the users.email unique constraint fires.
var ErrDuplicateEmail = errors.New("email already registered")

// LoginTrail carries the values written on a successful login.
type LoginTrail struct {
	At time.Time
	IP string
}

// UserRepository is the datastore adapter for user rows.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error

	// SetConfirmed stamps confirmed_at once; later calls are no-ops.
	SetConfirmed(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error

	// RecordLogin shifts the login trail in a single statement:
	// last_* take the previous current_*, current_* take trail, count increments.
	RecordLogin(ctx context.Context, id string, trail LoginTrail) error

	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
}

// RoleRepository is the datastore adapter for roles and the user_roles join.
type RoleRepository interface {
	FindOrCreate(ctx context.Context, name, description string) (*entity.Role, error)
	GetByName(ctx context.Context, name string) (*entity.Role, error)
	RolesForUser(ctx context.Context, userID string) ([]entity.Role, error)
	AddToUser(ctx context.Context, userID, roleID string) error
	RemoveFromUser(ctx context.Context, userID, roleID string) error
}

// AuditRepository records security events.
type AuditRepository interface {
	Insert(ctx context.Context, e *entity.AuditEntry) error
	ListForUser(ctx context.Context, userID string, limit int) ([]*entity.AuditEntry, error)
}
