package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuncrm/crm-api/internal/auth"
	"github.com/tuncrm/crm-api/internal/domain"
)

func newUserService(t *testing.T) (*UserService, repos) {
	_, r := setupRepos(t)
	svc := NewUserService(r.users, nopLogger())
	svc.now = fixedClock(testNow)
	return svc, r
}

func TestUserService_Create(t *testing.T) {
	svc, r := newUserService(t)
	ctx := context.Background()

	u, err := svc.Create(ctx, &domain.CreateUserRequest{
		FirstName: "Zeynep",
		LastName:  "Kaya",
		Email:     "zeynep@example.com",
		Password:  "secret123",
	})
	require.NoError(t, err)
	assert.True(t, u.Active)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, "Zeynep Kaya", u.FullName)

	stored, err := r.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "secret123"))

	t.Run("duplicate email is a conflict regardless of case", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateUserRequest{FirstName: "Z", LastName: "K", Email: "ZEYNEP@example.com", Password: "secret123"})
		var conflict *ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Equal(t, domain.MsgEmailExists, conflict.Message)
	})

	t.Run("deactivated users still hold their email", func(t *testing.T) {
		require.NoError(t, svc.Delete(ctx, u.ID))
		_, err := svc.Create(ctx, &domain.CreateUserRequest{FirstName: "Z", LastName: "K", Email: "zeynep@example.com", Password: "secret123"})
		assert.True(t, errors.Is(err, ErrConflict))
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateUserRequest{FirstName: "A", LastName: "B", Email: "ab@example.com", Password: "secret123", Role: domain.Role(9)})
		assert.True(t, errors.Is(err, ErrInvalidInput))
	})
}

func TestUserService_UpdateAndDelete(t *testing.T) {
	svc, _ := newUserService(t)
	ctx := context.Background()

	a, err := svc.Create(ctx, &domain.CreateUserRequest{FirstName: "Ali", LastName: "Veli", Email: "ali@example.com", Password: "secret123", Role: domain.RoleSales})
	require.NoError(t, err)
	_, err = svc.Create(ctx, &domain.CreateUserRequest{FirstName: "Can", LastName: "Er", Email: "can@example.com", Password: "secret123"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, a.ID, &domain.UpdateUserRequest{FirstName: "Ali", LastName: "Yılmaz", Email: "ali@example.com", Role: domain.RoleManager})
	require.NoError(t, err)
	assert.Equal(t, "Ali Yılmaz", updated.FullName)
	assert.Equal(t, domain.RoleManager, updated.Role)
	assert.True(t, updated.Active)

	_, err = svc.Update(ctx, a.ID, &domain.UpdateUserRequest{FirstName: "Ali", LastName: "Y", Email: "can@example.com", Role: domain.RoleManager})
	assert.True(t, errors.Is(err, ErrConflict))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ali", list[0].FirstName)

	require.NoError(t, svc.Delete(ctx, a.ID))
	list, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.GetByID(ctx, a.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, a.ID), ErrNotFound))
}
