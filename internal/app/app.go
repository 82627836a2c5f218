// Package app assembles repositories, services and the HTTP router. The API
// binary and the HTTP tests share it so both run the same wiring.
package app

import (
	"context"

	"github.com/geocoder89/storeratings/internal/auth"
	"github.com/geocoder89/storeratings/internal/cache"
	"github.com/geocoder89/storeratings/internal/config"
	apphttp "github.com/geocoder89/storeratings/internal/http"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/repo/memory"
	"github.com/geocoder89/storeratings/internal/repo/postgres"
	"github.com/geocoder89/storeratings/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repositories struct {
	Users    service.UserRepository
	Stores   service.StoreRepository
	Ratings  service.RatingRepository
	Stats    service.StatsRepository
	Sessions service.SessionStore

	// Ping backs readiness. nil for the memory backend.
	Ping func(ctx context.Context) error
}

func MemoryRepositories(db *memory.DB) Repositories {
	return Repositories{
		Users:    db.Users(),
		Stores:   db.Stores(),
		Ratings:  db.Ratings(),
		Stats:    db.Stats(),
		Sessions: db.Sessions(),
	}
}

func PostgresRepositories(pool *pgxpool.Pool, prom *observability.Prom) Repositories {
	return Repositories{
		Users:    postgres.NewUsersRepo(pool, prom),
		Stores:   postgres.NewStoresRepo(pool, prom),
		Ratings:  postgres.NewRatingsRepo(pool, prom),
		Stats:    postgres.NewStatsRepo(pool, prom),
		Sessions: postgres.NewRefreshTokensRepo(pool, prom),
		Ping:     pool.Ping,
	}
}

type Options struct {
	Config config.Config
	Repos  Repositories
	// Cache defaults to an in-process cache with Config.CacheTTL.
	Cache cache.Generational
	Prom  *observability.Prom
}

// NewRouter builds the services over o.Repos and returns the gin engine.
func NewRouter(o Options) *gin.Engine {
	c := o.Cache
	if c == nil {
		c = cache.NewMemory(o.Config.CacheTTL)
	}

	jwt := auth.NewManager(o.Config.JWTSecret, o.Config.AccessTTL, o.Config.RefreshTTL)
	listing := service.NewStoreListing(c, o.Prom)
	r := o.Repos

	return apphttp.NewRouter(apphttp.Deps{
		Config: o.Config,
		JWT:    jwt,
		Prom:   o.Prom,
		Ping:   r.Ping,

		Identity: service.NewIdentityService(r.Users, r.Sessions, jwt, o.Prom),
		Profiles: service.NewProfileService(r.Users, o.Prom),
		Stores:   service.NewStoreService(r.Stores, listing, o.Prom),
		Ratings:  service.NewRatingService(r.Ratings, r.Stores, listing, o.Prom),
		Stats:    service.NewStatsService(r.Stats, o.Prom),
		Users:    service.NewUserAdminService(r.Users, listing, o.Prom),
	})
}
