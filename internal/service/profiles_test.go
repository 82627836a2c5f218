package service

import (
	"context"
	"errors"
	"testing"

	"github.com/geocoder89/storeratings/internal/apperr"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateOwnProfileIsPartial(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", user.RoleUser)

	before, err := env.profiles.Get(ctx, alice, alice.ID)
	require.NoError(t, err)

	after, err := env.profiles.Update(ctx, alice, alice.ID, user.ProfilePatch{Address: strPtr("7 Elm Row")})
	require.NoError(t, err)

	assert.Equal(t, "7 Elm Row", after.Address)
	assert.Equal(t, before.Name, after.Name)
	assert.Equal(t, before.Email, after.Email)
	assert.Equal(t, before.Role, after.Role)
}

func TestUpdatingAnotherProfileIsForbidden(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", user.RoleUser)
	bob := env.seedUser(t, "bob", user.RoleUser)
	admin := env.seedUser(t, "admin", user.RoleAdmin)

	for _, p := range []user.Principal{alice, admin} {
		_, err := env.profiles.Update(ctx, p, bob.ID, user.ProfilePatch{Name: strPtr("Mallory")})
		assert.True(t, errors.Is(err, apperr.ErrForbidden))
	}

	_, err := env.profiles.Get(ctx, alice, bob.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	got, err := env.profiles.Get(ctx, bob, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.Name)
}

func TestUpdateProfileValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	alice := env.seedUser(t, "alice", user.RoleUser)

	_, err := env.profiles.Update(ctx, alice, alice.ID, user.ProfilePatch{Name: strPtr("A")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, "name", apperr.As(err).Fields[0].Field)

	_, err = env.profiles.Update(ctx, alice, alice.ID, user.ProfilePatch{Name: strPtr("    ")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	unchanged, err := env.profiles.Update(ctx, alice, alice.ID, user.ProfilePatch{})
	require.NoError(t, err)
	assert.Equal(t, "alice", unchanged.Name)

	trimmed, err := env.profiles.Update(ctx, alice, alice.ID, user.ProfilePatch{Name: strPtr("  Alice  ")})
	require.NoError(t, err)
	assert.Equal(t, "Alice", trimmed.Name)
}
