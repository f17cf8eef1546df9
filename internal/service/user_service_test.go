package service

import (
	"context"
	"testing"

	"tobaku-pos/internal/model"
	"tobaku-pos/internal/repository/memory"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewUserService(store.Users())

	created, err := svc.CreateUser(ctx, admin, CreateUserRequest{Username: "Kasir2", Password: "rahasia1", Name: "Dewi", Role: model.RoleStaff})
	require.NoError(t, err)
	assert.Equal(t, "kasir2", created.Username)
	assert.True(t, created.IsActive)

	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{Username: "kasir2", Password: "rahasia1", Name: "Dewi", Role: model.RoleStaff})
	assert.ErrorIs(t, err, ErrUsernameExists)

	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{Username: "kasir3", Password: "123", Name: "Dewi", Role: model.RoleStaff})
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{Username: "kasir3", Password: "rahasia1", Name: "Dewi", Role: "owner"})
	assert.ErrorIs(t, err, ErrValidation)

	all, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	got, err := svc.GetUserByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dewi", got.Name)

	_, err = svc.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUser_Deactivate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewUserService(store.Users())
	u := newUser(t, store, "sari", "rahasia1", model.RoleStaff, true)

	self := u.Actor()
	assert.ErrorIs(t, svc.DeactivateUser(ctx, self, u.ID), ErrValidation)

	require.NoError(t, svc.DeactivateUser(ctx, admin, u.ID))
	got, err := svc.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	assert.ErrorIs(t, svc.DeactivateUser(ctx, admin, uuid.New()), ErrNotFound)
}

func TestUser_ResetPassword(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewUserService(store.Users())
	newUser(t, store, "admin", "lama1234", model.RoleAdmin, true)

	assert.ErrorIs(t, svc.ResetPassword(ctx, "admin", "x"), ErrValidation)
	assert.ErrorIs(t, svc.ResetPassword(ctx, "nobody", "baru1234"), ErrNotFound)
	require.NoError(t, svc.ResetPassword(ctx, "admin", "baru1234"))

	u, err := store.Users().FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, u.CheckPassword("baru1234"))
	assert.False(t, u.CheckPassword("lama1234"))
}
