// Package rate limita intentos por clave con ventana fija. Lo usa el login
// de la consola (por IP + path).
package rate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	rdb "github.com/redis/go-redis/v9"
)

type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// RedisLimiter: fixed window sencillo (INCR + EXPIRE), compartido entre réplicas.
type RedisLimiter struct {
	Client *rdb.Client
	Prefix string
	Max    int64
	Window time.Duration
}

func NewRedisLimiter(client *rdb.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		Client: client,
		Prefix: prefix,
		Max:    int64(max),
		Window: window,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	now := time.Now().UTC()
	winStart := now.Truncate(l.Window)
	redisKey := fmt.Sprintf("%s%s:%d", l.Prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())

	pipe := l.Client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, err
	}

	// expiry en el primer hit
	if incr.Val() == 1 {
		_ = l.Client.Expire(ctx, redisKey, l.Window).Err()
		ttl = l.Client.TTL(ctx, redisKey)
	}
	return result(incr.Val(), l.Max, ttl.Val(), l.Window), nil
}

// MemoryLimiter misma ventana fija en memoria del proceso (cache.kind=memory).
type MemoryLimiter struct {
	Max    int64
	Window time.Duration

	hits *gocache.Cache
	now  func() time.Time
}

func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		Max:    int64(max),
		Window: window,
		hits:   gocache.New(window, 2*window),
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	now := l.now().UTC()
	winStart := now.Truncate(l.Window)
	k := fmt.Sprintf("%s:%d", key, winStart.Unix())
	ttl := winStart.Add(l.Window).Sub(now)

	// Add falla si ya existe; en ese caso incrementa
	if err := l.hits.Add(k, int64(1), ttl); err == nil {
		return result(1, l.Max, ttl, l.Window), nil
	}
	n, err := l.hits.IncrementInt64(k, 1)
	if err != nil {
		// expiró entre Add e Increment
		l.hits.Set(k, int64(1), ttl)
		n = 1
	}
	return result(n, l.Max, ttl, l.Window), nil
}

func result(hits, max int64, ttl, window time.Duration) Result {
	remaining := max - hits
	if remaining < 0 {
		remaining = 0
	}
	res := Result{
		Allowed:     hits <= max,
		Remaining:   remaining,
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		// resto de la ventana
		res.RetryAfter = ttl
		if res.RetryAfter < 0 {
			res.RetryAfter = time.Duration(math.Ceil(window.Seconds())) * time.Second
		}
	}
	return res
}
