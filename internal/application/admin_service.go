package application

import (
	"context"
	"errors"

	"github.com/rizkypratama/authguard/internal/domain/entity"
	repo "github.com/rizkypratama/authguard/internal/domain/repository"
	"github.com/rizkypratama/authguard/pkg/helpers"
)

var ErrRoleNotFound = errors.New("role not found")

// ListUsers returns a page of users with their roles attached.
func (s *Service) ListUsers(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	users, err := s.Users.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if roles, rErr := s.Roles.RolesForUser(ctx, u.ID); rErr == nil {
			u.Roles = roles
		}
	}
	return users, nil
}

// SetActive toggles the active flag. Deactivation also destroys the live
// session so the user is cut off on their next request.
func (s *Service) SetActive(ctx context.Context, userID string, active bool) error {
	if err := s.Users.SetActive(ctx, userID, active); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if !active && s.Redis != nil {
		_ = s.Redis.Del(ctx, helpers.KeySession(userID)).Err()
	}
	if u, gErr := s.Users.GetByID(ctx, userID); gErr == nil {
		_ = s.indexUser(ctx, u)
	}
	return nil
}

// AssignRole grants the named role, creating it on first use.
func (s *Service) AssignRole(ctx context.Context, userID, roleName, description string) (*entity.Role, error) {
	if _, err := s.Users.GetByID(ctx, userID); err != nil {
		return nil, ErrUserNotFound
	}
	role, err := s.Roles.FindOrCreate(ctx, roleName, description)
	if err != nil {
		return nil, err
	}
	if err := s.Roles.AddToUser(ctx, userID, role.ID); err != nil {
		return nil, err
	}
	s.refreshSessionRoles(ctx, userID)
	return role, nil
}

// RemoveRole revokes the named role from the user.
func (s *Service) RemoveRole(ctx context.Context, userID, roleName string) error {
	role, err := s.Roles.GetByName(ctx, roleName)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	if err := s.Roles.RemoveFromUser(ctx, userID, role.ID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRoleNotFound
		}
		return err
	}
	s.refreshSessionRoles(ctx, userID)
	return nil
}

// refreshSessionRoles keeps the cached role list of a live session current
// so role checks pick up grants without a re-login.
func (s *Service) refreshSessionRoles(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	key := helpers.KeySession(userID)
	exists, err := s.Redis.Exists(ctx, key).Result()
	if err != nil || exists == 0 {
		return
	}
	roles, err := s.Roles.RolesForUser(ctx, userID)
	if err != nil {
		return
	}
	if err := s.Redis.HSet(ctx, key, "roles", joinRoleNames(roles)).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("session role refresh failed")
	}
}
