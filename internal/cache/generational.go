package cache

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrMiss = errors.New("cache miss")

// Generational caches listing payloads under keys that embed a generation
// number. Bump moves every reader to a fresh key space, so entries written
// before a mutation are never read after it.
type Generational interface {
	Generation(ctx context.Context) (int64, error)
	Bump(ctx context.Context) error
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte) error
}

// Memory is the in-process backend, used when no Redis is configured.
type Memory struct {
	gen   atomic.Int64
	store *TTL[[]byte]
}

func NewMemory(ttl time.Duration) *Memory {
	return &Memory{store: NewTTL[[]byte](ttl)}
}

func (m *Memory) Generation(_ context.Context) (int64, error) {
	return m.gen.Load(), nil
}

func (m *Memory) Bump(_ context.Context) error {
	m.gen.Add(1)
	// old generations are unreachable
	m.store.Clear()
	return nil
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	b, ok := m.store.Get(key)
	if !ok {
		return nil, ErrMiss
	}
	return b, nil
}

func (m *Memory) Set(_ context.Context, key string, val []byte) error {
	m.store.Set(key, val)
	return nil
}

// Redis keeps the generation counter and the payloads in Redis so every
// API instance shares one view.
type Redis struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	genKey string
}

func NewRedis(rdb redis.UniversalClient, ttl time.Duration, genKey string) *Redis {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &Redis{rdb: rdb, ttl: ttl, genKey: genKey}
}

func (r *Redis) Generation(ctx context.Context) (int64, error) {
	s, err := r.rdb.Get(ctx, r.genKey).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(s, 10, 64)
}

func (r *Redis) Bump(ctx context.Context) error {
	return r.rdb.Incr(ctx, r.genKey).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return b, err
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) error {
	return r.rdb.Set(ctx, key, val, r.ttl).Err()
}
