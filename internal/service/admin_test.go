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

func TestDashboardStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := env.seedUser(t, "admin", user.RoleAdmin)
	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	alice := env.seedUser(t, "alice", user.RoleUser)
	bob := env.seedUser(t, "bob", user.RoleUser)

	d, err := env.stats.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Nil(t, d.AverageRating)

	a := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")
	b := env.seedStore(t, owner, "Harbour Fish Market And Grill", "fish@example.com")
	env.seedStore(t, owner, "Unrated Bakery On The Corner", "bakery@example.com")

	for _, r := range []struct {
		p     user.Principal
		store string
		value int
	}{
		{alice, a.ID, 5},
		{bob, a.ID, 4},
		{alice, b.ID, 2},
	} {
		_, err := env.ratings.Upsert(ctx, r.p, r.store, r.value, nil)
		require.NoError(t, err)
	}

	d, err = env.stats.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 4, d.TotalUsers)
	assert.Equal(t, 1, d.StoreOwners)
	assert.Equal(t, 3, d.TotalStores)
	assert.Equal(t, 3, d.TotalRatings)
	require.NotNil(t, d.AverageRating)
	// mean of per-store means: (4.5 + 2) / 2
	assert.InDelta(t, 3.25, *d.AverageRating, 1e-9)

	_, err = env.stats.Dashboard(ctx, owner)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestAdminListsUsersWithoutSecrets(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := env.seedUser(t, "admin", user.RoleAdmin)
	env.seedUser(t, "owner", user.RoleStoreOwner)
	env.seedUser(t, "alice", user.RoleUser)

	all, err := env.users.List(ctx, admin, user.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	owners := user.RoleStoreOwner
	filtered, err := env.users.List(ctx, admin, user.ListFilter{Role: &owners})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, user.RoleStoreOwner, filtered[0].Role)

	_, err = env.users.List(ctx, user.Principal{ID: filtered[0].ID, Role: user.RoleStoreOwner}, user.ListFilter{})
	assert.True(t, errors.Is(err, apperr.ErrForbidden))
}

func TestAdminDeletesUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	admin := env.seedUser(t, "admin", user.RoleAdmin)
	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	alice := env.seedUser(t, "alice", user.RoleUser)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")

	_, err := env.ratings.Upsert(ctx, alice, s.ID, 1, nil)
	require.NoError(t, err)

	err = env.users.Delete(ctx, admin, owner.ID)
	assert.True(t, errors.Is(err, apperr.Conflict("user_owns_stores", "")))

	err = env.users.Delete(ctx, admin, admin.ID)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	err = env.users.Delete(ctx, alice, owner.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	require.NoError(t, env.users.Delete(ctx, admin, alice.ID))

	got, err := env.stores.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.TotalRatings)
	assert.Nil(t, got.AverageRating)

	err = env.users.Delete(ctx, admin, alice.ID)
	assert.True(t, errors.Is(err, apperr.NotFound("user_not_found", "")))
}
