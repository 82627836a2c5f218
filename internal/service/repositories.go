package service

import (
	"context"
	"time"

	"github.com/geocoder89/storeratings/internal/domain/rating"
	"github.com/geocoder89/storeratings/internal/domain/session"
	"github.com/geocoder89/storeratings/internal/domain/stats"
	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/domain/user"
)

// The interfaces below are implemented by both repo/postgres and repo/memory.

type UserRepository interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, patch user.ProfilePatch) (user.User, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	List(ctx context.Context, filter user.ListFilter) ([]user.User, error)
	Delete(ctx context.Context, id string) error
}

type StoreRepository interface {
	Create(ctx context.Context, s store.Store) (store.Store, error)
	GetByID(ctx context.Context, id string) (store.Store, error)
	GetWithStats(ctx context.Context, id string) (store.WithStats, error)
	Update(ctx context.Context, id string, patch store.Patch) (store.Store, error)
	DeleteWithRatings(ctx context.Context, id string) error
	List(ctx context.Context, filter store.ListFilter) ([]store.WithStats, error)
}

type RatingRepository interface {
	Upsert(ctx context.Context, userID, storeID string, value int, comment *string) (rating.Rating, error)
	GetByID(ctx context.Context, id string) (rating.Rating, error)
	GetByUserAndStore(ctx context.Context, userID, storeID string) (rating.Rating, error)
	ListByStore(ctx context.Context, storeID string) ([]rating.Rating, error)
	Aggregate(ctx context.Context, storeID string) (rating.Aggregate, error)
	Delete(ctx context.Context, id string) error
}

type StatsRepository interface {
	Dashboard(ctx context.Context) (stats.Dashboard, error)
}

type SessionStore interface {
	Create(ctx context.Context, row session.RefreshToken) error
	Rotate(ctx context.Context, oldID, presentedHash string, next session.RefreshToken, now time.Time) error
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
}
