package rate

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter_FixedWindow(t *testing.T) {
	l := NewMemoryLimiter(2, time.Minute)
	base := time.Date(2026, 1, 1, 10, 0, 10, 0, time.UTC)
	l.now = func() time.Time { return base }
	ctx := context.Background()

	r, err := l.Allow(ctx, "1.2.3.4|/api/auth/login")
	require.NoError(t, err)
	require.True(t, r.Allowed)
	require.EqualValues(t, 1, r.Remaining)

	r, _ = l.Allow(ctx, "1.2.3.4|/api/auth/login")
	require.True(t, r.Allowed)
	require.EqualValues(t, 0, r.Remaining)

	r, _ = l.Allow(ctx, "1.2.3.4|/api/auth/login")
	require.False(t, r.Allowed)
	require.EqualValues(t, 3, r.CurrentHits)
	require.Equal(t, 50*time.Second, r.RetryAfter)

	// otra clave no comparte contador
	r, _ = l.Allow(ctx, "5.6.7.8|/api/auth/login")
	require.True(t, r.Allowed)

	// ventana siguiente
	l.now = func() time.Time { return base.Add(time.Minute) }
	r, _ = l.Allow(ctx, "1.2.3.4|/api/auth/login")
	require.True(t, r.Allowed)
	require.EqualValues(t, 1, r.CurrentHits)
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	c := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = c.Close() })

	l := NewRedisLimiter(c, "", 1, time.Minute)
	require.Equal(t, "rl:", l.Prefix)
	ctx := context.Background()

	r, err := l.Allow(ctx, "k 1")
	require.NoError(t, err)
	require.True(t, r.Allowed)
	require.Greater(t, r.WindowTTL, time.Duration(0))

	r, err = l.Allow(ctx, "k 1")
	require.NoError(t, err)
	require.False(t, r.Allowed)
	require.Greater(t, r.RetryAfter, time.Duration(0))
}
