package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/geocoder89/storeratings/internal/auth"
	"github.com/geocoder89/storeratings/internal/cache"
	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/repo/memory"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	db       *memory.DB
	listing  *StoreListing
	ratings  *RatingService
	stores   *StoreService
	profiles *ProfileService
	stats    *StatsService
	users    *UserAdminService
	identity *IdentityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := memory.NewDB()
	listing := NewStoreListing(cache.NewMemory(time.Minute), nil)
	jwt := auth.NewManager("test-secret", time.Minute, time.Hour)

	return &testEnv{
		db:       db,
		listing:  listing,
		ratings:  NewRatingService(db.Ratings(), db.Stores(), listing, nil),
		stores:   NewStoreService(db.Stores(), listing, nil),
		profiles: NewProfileService(db.Users(), nil),
		stats:    NewStatsService(db.Stats(), nil),
		users:    NewUserAdminService(db.Users(), listing, nil),
		identity: NewIdentityService(db.Users(), db.Sessions(), jwt, nil),
	}
}

var userSeq int

// seedUser inserts a user directly, skipping password hashing.
func (e *testEnv) seedUser(t *testing.T, name string, role user.Role) user.Principal {
	t.Helper()
	userSeq++

	u, err := e.db.Users().Create(context.Background(), user.User{
		Email:        fmt.Sprintf("%s-%d@example.com", name, userSeq),
		PasswordHash: "unused",
		Name:         name,
		Role:         role,
	})
	require.NoError(t, err)
	return user.Principal{ID: u.ID, Role: u.Role}
}

func (e *testEnv) seedStore(t *testing.T, owner user.Principal, name, email string) store.Store {
	t.Helper()

	s, err := e.stores.Create(context.Background(), owner, store.CreateRequest{
		Name:    name,
		Email:   email,
		Address: "12 Market Street",
	})
	require.NoError(t, err)
	return s
}
