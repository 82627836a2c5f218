package http

import (
	"context"

	"github.com/geocoder89/storeratings/internal/auth"
	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/domain/user"
	"github.com/geocoder89/storeratings/internal/http/handlers"
	"github.com/geocoder89/storeratings/internal/http/middlewares"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs. Ping may be nil for the memory backend.
type Deps struct {
	Config config.Config
	JWT    *auth.Manager
	Prom   *observability.Prom
	Ping   func(ctx context.Context) error

	Identity *service.IdentityService
	Profiles *service.ProfileService
	Stores   *service.StoreService
	Ratings  *service.RatingService
	Stats    *service.StatsService
	Users    *service.UserAdminService
}

func NewRouter(d Deps) *gin.Engine {
	if d.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(gin.Recovery())
	if d.Config.OtelEnabled {
		r.Use(otelgin.Middleware("storeratings-api"))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Config.CORSAllowedOrigins))
	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	// ops
	health := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMW := middlewares.NewAuthMiddleware(d.JWT)
	limiter := middlewares.NewRateLimiter(d.Config.RateLimitPerMinute)
	authLimiter := middlewares.NewRateLimiter(max(d.Config.RateLimitPerMinute/6, 5))

	api := r.Group("/api")
	api.Use(middlewares.MaxBodyBytes(d.Config.MaxBodyBytes))
	api.Use(middlewares.RequireJSON())

	authH := handlers.NewAuthHandler(d.Identity, d.Config.IsProd())
	profileH := handlers.NewProfileHandler(d.Profiles)
	authGroup := api.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/register", authH.Register)
		authGroup.POST("/login", authH.Login)
		authGroup.POST("/refresh", authH.Refresh)
		authGroup.POST("/logout", authH.Logout)
		authGroup.PUT("/update-password", authMW.RequireAuth(), authH.UpdatePassword)
		// session bootstrap reads the current user here
		authGroup.GET("/profile", authMW.RequireAuth(), profileH.GetProfile)
	}

	storesH := handlers.NewStoresHandler(d.Stores)
	ratingsH := handlers.NewRatingsHandler(d.Ratings)

	// public reads
	api.GET("/stores", storesH.ListStores)
	api.GET("/stores/:id", storesH.GetStore)
	api.GET("/ratings/store/:id", ratingsH.ListStoreRatings)

	authed := api.Group("")
	authed.Use(authMW.RequireAuth())
	authed.Use(limiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP))
	{
		authed.GET("/profile", profileH.GetProfile)
		authed.PUT("/profile", profileH.UpdateProfile)

		authed.POST("/stores", authMW.RequireRole(user.RoleStoreOwner), storesH.CreateStore)
		authed.GET("/stores/owner", authMW.RequireRole(user.RoleStoreOwner), storesH.ListOwnStores)
		authed.PUT("/stores/:id", storesH.UpdateStore)
		authed.DELETE("/stores/:id", storesH.DeleteStore)

		authed.POST("/ratings", ratingsH.SubmitRating)
		authed.GET("/ratings/user/:storeId", ratingsH.GetMyRating)
		authed.DELETE("/ratings/:id", ratingsH.DeleteRating)

		adminH := handlers.NewAdminHandler(d.Stats, d.Users)
		admin := authed.Group("/admin")
		admin.Use(authMW.RequireRole(user.RoleAdmin))
		admin.GET("/stats", adminH.Stats)
		admin.GET("/users", adminH.ListUsers)
		admin.DELETE("/users/:id", adminH.DeleteUser)
	}

	return r
}
