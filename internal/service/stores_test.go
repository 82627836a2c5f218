package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/geocoder89/storeratings/internal/apperr"
	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestCreateStoreRules(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	alice := env.seedUser(t, "alice", user.RoleUser)
	admin := env.seedUser(t, "admin", user.RoleAdmin)

	req := store.CreateRequest{Name: "Corner Coffee House Downtown", Email: "Coffee@Example.com", Address: "1 Main St"}

	_, err := env.stores.Create(ctx, alice, req)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = env.stores.Create(ctx, admin, req)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	_, err = env.stores.Create(ctx, owner, store.CreateRequest{Name: "Tiny", Email: "tiny@example.com"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = env.stores.Create(ctx, owner, store.CreateRequest{Name: strings.Repeat(" ", 25), Email: "blank@example.com"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = env.stores.Create(ctx, owner, store.CreateRequest{Name: "          Tiny          ", Email: "padded@example.com"})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	created, err := env.stores.Create(ctx, owner, req)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, created.OwnerID)
	assert.Equal(t, "coffee@example.com", created.Email)

	_, err = env.stores.Update(ctx, owner, created.ID, store.Patch{Name: strPtr(strings.Repeat(" ", 26))})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	renamed, err := env.stores.Update(ctx, owner, created.ID, store.Patch{Name: strPtr("  Corner Coffee House Uptown  ")})
	require.NoError(t, err)
	assert.Equal(t, "Corner Coffee House Uptown", renamed.Name)

	got, err := env.stores.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corner Coffee House Uptown", got.Name)
}

func TestDuplicateStoreEmailConflicts(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	other := env.seedUser(t, "other", user.RoleStoreOwner)
	env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")

	_, err := env.stores.Create(ctx, other, store.CreateRequest{Name: "Another Coffee House Uptown", Email: "coffee@example.com"})
	assert.True(t, errors.Is(err, apperr.Conflict("store_email_taken", "")))

	second := env.seedStore(t, other, "Another Coffee House Uptown", "uptown@example.com")
	_, err = env.stores.Update(ctx, other, second.ID, store.Patch{Email: strPtr("coffee@example.com")})
	assert.True(t, errors.Is(err, apperr.ErrConflict))
}

func TestNonOwnerCannotUpdateOrDeleteStore(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	intruder := env.seedUser(t, "intruder", user.RoleStoreOwner)
	alice := env.seedUser(t, "alice", user.RoleUser)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")

	for _, p := range []user.Principal{intruder, alice} {
		_, err := env.stores.Update(ctx, p, s.ID, store.Patch{Name: strPtr("Hijacked Coffee House Downtown")})
		assert.True(t, errors.Is(err, apperr.ErrForbidden))

		err = env.stores.Delete(ctx, p, s.ID)
		assert.True(t, errors.Is(err, apperr.ErrForbidden))
	}

	got, err := env.stores.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Corner Coffee House Downtown", got.Name)
	assert.Equal(t, s.UpdatedAt, got.UpdatedAt)
}

func TestOwnerAndAdminUpdateStore(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	admin := env.seedUser(t, "admin", user.RoleAdmin)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")

	updated, err := env.stores.Update(ctx, owner, s.ID, store.Patch{Address: strPtr("99 Harbour Road")})
	require.NoError(t, err)
	assert.Equal(t, "99 Harbour Road", updated.Address)
	assert.Equal(t, s.Name, updated.Name)

	updated, err = env.stores.Update(ctx, admin, s.ID, store.Patch{Name: strPtr("Renamed Coffee House Downtown")})
	require.NoError(t, err)
	assert.Equal(t, "Renamed Coffee House Downtown", updated.Name)
	assert.Equal(t, owner.ID, updated.OwnerID)

	_, err = env.stores.Update(ctx, owner, s.ID, store.Patch{Name: strPtr("")})
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	_, err = env.stores.Update(ctx, admin, "5f2b1c9e-8a37-4d0e-9a51-1f2c3d4e5f60", store.Patch{})
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestDeletingStoreRemovesItsRatings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	admin := env.seedUser(t, "admin", user.RoleAdmin)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")
	kept := env.seedStore(t, owner, "Harbour Fish Market And Grill", "fish@example.com")

	var raters []user.Principal
	for i := 0; i < 3; i++ {
		p := env.seedUser(t, "rater", user.RoleUser)
		raters = append(raters, p)
		_, err := env.ratings.Upsert(ctx, p, s.ID, i+2, nil)
		require.NoError(t, err)
	}
	_, err := env.ratings.Upsert(ctx, raters[0], kept.ID, 5, nil)
	require.NoError(t, err)

	require.NoError(t, env.stores.Delete(ctx, admin, s.ID))

	_, err = env.stores.Get(ctx, s.ID)
	assert.True(t, errors.Is(err, apperr.NotFound("store_not_found", "")))

	left, err := env.ratings.ForStore(ctx, s.ID)
	require.NoError(t, err)
	assert.Empty(t, left)

	for _, p := range raters {
		_, err := env.ratings.ForUserAndStore(ctx, p, s.ID)
		assert.True(t, errors.Is(err, apperr.ErrNotFound))
	}

	d, err := env.stats.Dashboard(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, d.TotalRatings)

	err = env.stores.Delete(ctx, admin, s.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestListingReflectsWritesImmediately(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	alice := env.seedUser(t, "alice", user.RoleUser)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")

	list, err := env.stores.List(ctx, store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].AverageRating)

	_, err = env.ratings.Upsert(ctx, alice, s.ID, 4, nil)
	require.NoError(t, err)

	list, err = env.stores.List(ctx, store.ListFilter{})
	require.NoError(t, err)
	require.NotNil(t, list[0].AverageRating)
	assert.Equal(t, 4.0, *list[0].AverageRating)
	assert.Equal(t, 1, list[0].TotalRatings)
	assert.Equal(t, "owner", list[0].OwnerName)
}

func TestListFiltersAndOwnerView(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	other := env.seedUser(t, "other", user.RoleStoreOwner)
	env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")
	env.seedStore(t, owner, "Harbour Fish Market And Grill", "fish@example.com")
	env.seedStore(t, other, "Uptown Coffee Roasters Limited", "roasters@example.com")

	coffee, err := env.stores.List(ctx, store.ListFilter{Name: strPtr("COFFEE")})
	require.NoError(t, err)
	assert.Len(t, coffee, 2)

	byEmail, err := env.stores.List(ctx, store.ListFilter{Email: strPtr("fish@")})
	require.NoError(t, err)
	require.Len(t, byEmail, 1)
	assert.Equal(t, "Harbour Fish Market And Grill", byEmail[0].Name)

	mine, err := env.stores.ForOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)
	for _, s := range mine {
		assert.Equal(t, owner.ID, s.OwnerID)
	}
}
