package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/geocoder89/storeratings/internal/cache"
	"github.com/geocoder89/storeratings/internal/domain/store"
	"github.com/geocoder89/storeratings/internal/observability"
	"github.com/geocoder89/storeratings/internal/utils"
)

// StoreListing caches annotated store listings. Every committed store or
// rating mutation calls Invalidate before returning, so a later read never
// sees a listing computed before that mutation.
type StoreListing struct {
	cache cache.Generational
	prom  *observability.Prom
}

func NewStoreListing(c cache.Generational, prom *observability.Prom) *StoreListing {
	return &StoreListing{cache: c, prom: prom}
}

func (l *StoreListing) Get(ctx context.Context, filter store.ListFilter, load func() ([]store.WithStats, error)) ([]store.WithStats, error) {
	if l == nil || l.cache == nil {
		return load()
	}

	gen, err := l.cache.Generation(ctx)
	if err != nil {
		l.prom.IncStoreListCache("error")
		slog.Default().WarnContext(ctx, "store listing cache unavailable", "err", err)
		return load()
	}

	key := utils.BuildStoresListCacheKey(gen, filter)

	b, err := l.cache.Get(ctx, key)
	if err == nil {
		var out []store.WithStats
		if jerr := json.Unmarshal(b, &out); jerr == nil {
			l.prom.IncStoreListCache("hit")
			return out, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		l.prom.IncStoreListCache("error")
		slog.Default().WarnContext(ctx, "store listing cache read failed", "key", key, "err", err)
		return load()
	}

	l.prom.IncStoreListCache("miss")

	out, err := load()
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		if err := l.cache.Set(ctx, key, b); err != nil {
			slog.Default().WarnContext(ctx, "store listing cache write failed", "key", key, "err", err)
		}
	}
	return out, nil
}

func (l *StoreListing) Invalidate(ctx context.Context) {
	if l == nil || l.cache == nil {
		return
	}
	if err := l.cache.Bump(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "store listing cache invalidation failed", "err", err)
	}
}
