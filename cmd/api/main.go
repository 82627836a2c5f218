package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/storeratings/internal/app"
	"github.com/geocoder89/storeratings/internal/cache"
	"github.com/geocoder89/storeratings/internal/config"
	"github.com/geocoder89/storeratings/internal/db"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/redisclient"
	"github.com/geocoder89/storeratings/internal/repo/memory"
	"github.com/geocoder89/storeratings/internal/utils"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api exited", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OtelEnabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracerConfig{
			ServiceName: "storeratings-api",
			Env:         cfg.Env,
			Endpoint:    cfg.OtelEndpoint,
			SampleRatio: cfg.OtelSampleRatio,
		})
		if err != nil {
			return fmt.Errorf("init tracer: %w", err)
		}
		defer func() {
			sctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdown(sctx)
		}()
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	repos, closeRepos, err := openStorage(ctx, cfg, prom, log)
	if err != nil {
		return err
	}
	defer closeRepos()

	seedCtx, cancel := config.WithParentTimeout(ctx, 5*time.Second)
	created, err := db.EnsureAdminUser(seedCtx, repos.Users, db.AdminSeed{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info("admin user created", "email", cfg.AdminEmail)
	}

	listCache, closeCache := openCache(ctx, cfg, log)
	defer closeCache()

	router := app.NewRouter(app.Options{
		Config: cfg,
		Repos:  repos,
		Cache:  listCache,
		Prom:   prom,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.Storage)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	sctx, scancel := config.WithTimeout(10 * time.Second)
	defer scancel()

	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

func openStorage(ctx context.Context, cfg config.Config, prom *observability.Prom, log *slog.Logger) (app.Repositories, func(), error) {
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warn("using in-memory storage, data is lost on restart")
		return app.MemoryRepositories(memory.NewDB()), func() {}, nil

	case config.StoragePostgres:
		if cfg.MigrateOnStart {
			if err := db.MigrateUp(cfg.DBURL); err != nil {
				return app.Repositories{}, nil, err
			}
			log.Info("migrations applied")
		}

		pool, err := db.NewPool(ctx, cfg.DBURL, db.PoolConfig{
			MaxConns:        int32(cfg.DBMaxConns),
			MinConns:        2,
			MaxConnIdleTime: 5 * time.Minute,
		})
		if err != nil {
			return app.Repositories{}, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return app.PostgresRepositories(pool, prom), pool.Close, nil

	default:
		return app.Repositories{}, nil, fmt.Errorf("unknown STORAGE %q", cfg.Storage)
	}
}

// openCache prefers Redis so every instance shares listing generations.
// Without REDIS_ADDR, or when Redis is down at boot, it falls back to memory.
func openCache(ctx context.Context, cfg config.Config, log *slog.Logger) (cache.Generational, func()) {
	if cfg.RedisAddr == "" {
		return cache.NewMemory(cfg.CacheTTL), func() {}
	}

	rc, err := redisclient.Connect(ctx, redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, 2*time.Second)
	if err != nil {
		log.Warn("redis unavailable, using in-process listing cache", "addr", cfg.RedisAddr, "err", err)
		return cache.NewMemory(cfg.CacheTTL), func() {}
	}

	return cache.NewRedis(rc.Raw(), cfg.CacheTTL, utils.StoresGenerationKey), func() { _ = rc.Close() }
}
