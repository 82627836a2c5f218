package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/storeratings/internal/apperr"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverageIsMeanOfCurrentRatings(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")

	agg, err := env.ratings.AverageAndCount(ctx, s.ID)
	require.NoError(t, err)
	assert.Nil(t, agg.Average)
	assert.Equal(t, 0, agg.Count)

	values := []int{5, 4, 4, 1}
	var ids []string
	for _, v := range values {
		p := env.seedUser(t, "rater", user.RoleUser)
		rt, err := env.ratings.Upsert(ctx, p, s.ID, v, nil)
		require.NoError(t, err)
		ids = append(ids, rt.ID)
	}

	agg, err = env.ratings.AverageAndCount(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, agg.Average)
	assert.InDelta(t, 3.5, *agg.Average, 1e-9)
	assert.Equal(t, 4, agg.Count)

	admin := env.seedUser(t, "admin", user.RoleAdmin)
	require.NoError(t, env.ratings.Delete(ctx, admin, ids[3]))

	agg, err = env.ratings.AverageAndCount(ctx, s.ID)
	require.NoError(t, err)
	assert.InDelta(t, 13.0/3.0, *agg.Average, 1e-9)
	assert.Equal(t, 3, agg.Count)
}

func TestUpsertTwiceKeepsOneRow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")
	alice := env.seedUser(t, "alice", user.RoleUser)

	first, err := env.ratings.Upsert(ctx, alice, s.ID, 2, nil)
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)

	comment := "  better on the second visit  "
	second, err := env.ratings.Upsert(ctx, alice, s.ID, 4, &comment)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 4, second.Value)
	require.NotNil(t, second.Comment)
	assert.Equal(t, "better on the second visit", *second.Comment)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	all, err := env.ratings.ForStore(ctx, s.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	mine, err := env.ratings.ForUserAndStore(ctx, alice, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, mine.Value)
	assert.Equal(t, "alice", mine.UserName)
}

func TestScenarioRatingUpdateMovesAverage(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")
	a := env.seedUser(t, "a", user.RoleUser)
	b := env.seedUser(t, "b", user.RoleUser)

	_, err := env.ratings.Upsert(ctx, a, s.ID, 5, nil)
	require.NoError(t, err)
	_, err = env.ratings.Upsert(ctx, b, s.ID, 3, nil)
	require.NoError(t, err)

	got, err := env.stores.Get(ctx, s.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.Equal(t, 4.0, *got.AverageRating)
	assert.Equal(t, 2, got.TotalRatings)

	_, err = env.ratings.Upsert(ctx, a, s.ID, 1, nil)
	require.NoError(t, err)

	got, err = env.stores.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2.0, *got.AverageRating)
	assert.Equal(t, 2, got.TotalRatings)
}

func TestUpsertValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")
	alice := env.seedUser(t, "alice", user.RoleUser)

	_, err := env.ratings.Upsert(ctx, alice, s.ID, 6, nil)
	assert.True(t, errors.Is(err, apperr.ErrValidation))
	assert.Equal(t, "rating", apperr.As(err).Fields[0].Field)

	_, err = env.ratings.Upsert(ctx, alice, s.ID, 0, nil)
	assert.True(t, errors.Is(err, apperr.ErrValidation))

	long := strings.Repeat("x", 501)
	_, err = env.ratings.Upsert(ctx, alice, s.ID, 3, &long)
	assert.True(t, errors.Is(err, apperr.Validation("invalid_comment", "")))

	_, err = env.ratings.Upsert(ctx, alice, "5f2b1c9e-8a37-4d0e-9a51-1f2c3d4e5f60", 3, nil)
	assert.True(t, errors.Is(err, apperr.NotFound("store_not_found", "")))

	_, err = env.ratings.Upsert(ctx, user.Principal{}, s.ID, 3, nil)
	assert.True(t, errors.Is(err, apperr.ErrUnauthenticated))

	agg, err := env.ratings.AverageAndCount(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, agg.Count)
}

func TestDeleteRatingAuthorization(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")
	alice := env.seedUser(t, "alice", user.RoleUser)
	bob := env.seedUser(t, "bob", user.RoleUser)

	rt, err := env.ratings.Upsert(ctx, alice, s.ID, 4, nil)
	require.NoError(t, err)

	err = env.ratings.Delete(ctx, bob, rt.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden))

	err = env.ratings.Delete(ctx, owner, rt.ID)
	assert.True(t, errors.Is(err, apperr.ErrForbidden), "store owners cannot delete ratings of their stores")

	require.NoError(t, env.ratings.Delete(ctx, alice, rt.ID))

	err = env.ratings.Delete(ctx, alice, rt.ID)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}

func TestForStoreOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")

	var want []string
	for i := 0; i < 3; i++ {
		p := env.seedUser(t, "rater", user.RoleUser)
		rt, err := env.ratings.Upsert(ctx, p, s.ID, 3, nil)
		require.NoError(t, err)
		want = append([]string{rt.ID}, want...)
		time.Sleep(2 * time.Millisecond)
	}

	got, err := env.ratings.ForStore(ctx, s.ID)
	require.NoError(t, err)

	ids := make([]string, 0, len(got))
	for _, rt := range got {
		ids = append(ids, rt.ID)
	}
	assert.Equal(t, want, ids)

	none, err := env.ratings.ForStore(ctx, "5f2b1c9e-8a37-4d0e-9a51-1f2c3d4e5f60")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestConcurrentUpsertsYieldOneRow(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	owner := env.seedUser(t, "owner", user.RoleStoreOwner)
	s := env.seedStore(t, owner, "Corner Coffee House Downtown", "coffee@example.com")
	alice := env.seedUser(t, "alice", user.RoleUser)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			_, err := env.ratings.Upsert(ctx, alice, s.ID, v, nil)
			assert.NoError(t, err)
		}(i%5 + 1)
	}
	wg.Wait()

	agg, err := env.ratings.AverageAndCount(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Count)

	mine, err := env.ratings.ForUserAndStore(ctx, alice, s.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(mine.Value), *agg.Average)
}
