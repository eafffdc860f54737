package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rizkypratama/authguard/pkg/helpers"
)

func TestListUsers(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()
	f.register(t, "a@example.com", "password123")
	f.register(t, "b@example.com", "password123")
	f.register(t, "c@example.com", "password123")

	users, err := f.svc.ListUsers(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Email)
	require.Len(t, users[0].Roles, 1)
	assert.Equal(t, "user", users[0].Roles[0].Name)

	users, err = f.svc.ListUsers(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "c@example.com", users[0].Email)
}

func TestSetActive_DeactivationKillsSession(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "alice@example.com", "password123")
	_, err := f.svc.Login(ctx, "alice@example.com", "password123", "1.1.1.1")
	require.NoError(t, err)
	require.True(t, f.mr.Exists(helpers.KeySession(u.ID)))

	require.NoError(t, f.svc.SetActive(ctx, u.ID, false))
	assert.False(t, f.mr.Exists(helpers.KeySession(u.ID)))

	_, err = f.svc.Authenticate(ctx, "alice@example.com", "password123")
	assert.ErrorIs(t, err, ErrUserInactive)

	// reactivation does not resurrect the session
	require.NoError(t, f.svc.SetActive(ctx, u.ID, true))
	assert.False(t, f.mr.Exists(helpers.KeySession(u.ID)))

	assert.ErrorIs(t, f.svc.SetActive(ctx, "missing", false), ErrUserNotFound)
}

func TestAssignRole(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "alice@example.com", "password123")
	_, err := f.svc.Login(ctx, "alice@example.com", "password123", "1.1.1.1")
	require.NoError(t, err)

	role, err := f.svc.AssignRole(ctx, u.ID, "admin", "full access")
	require.NoError(t, err)
	assert.Equal(t, "admin", role.Name)

	// live session picks up the grant without a re-login
	assert.Equal(t, "admin,user", f.mr.HGet(helpers.KeySession(u.ID), "roles"))

	// idempotent
	_, err = f.svc.AssignRole(ctx, u.ID, "admin", "full access")
	require.NoError(t, err)

	_, err = f.svc.AssignRole(ctx, "missing", "admin", "")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestRemoveRole(t *testing.T) {
	f := newServiceFixture(t, false)
	ctx := context.Background()
	u := f.register(t, "alice@example.com", "password123")
	_, err := f.svc.AssignRole(ctx, u.ID, "admin", "")
	require.NoError(t, err)
	_, err = f.svc.Login(ctx, "alice@example.com", "password123", "1.1.1.1")
	require.NoError(t, err)

	require.NoError(t, f.svc.RemoveRole(ctx, u.ID, "admin"))
	assert.Equal(t, "user", f.mr.HGet(helpers.KeySession(u.ID), "roles"))

	// not assigned anymore
	assert.ErrorIs(t, f.svc.RemoveRole(ctx, u.ID, "admin"), ErrRoleNotFound)
	// never existed
	assert.ErrorIs(t, f.svc.RemoveRole(ctx, u.ID, "ghost"), ErrRoleNotFound)
}
