package console

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/cache"
	"github.com/dropDatabas3/adminconsole/internal/dict"
	"github.com/dropDatabas3/adminconsole/internal/stores"
)

func newManager(t *testing.T, p *stores.Persistence) *Manager {
	t.Helper()
	m, err := NewManager(Config{
		TTL:             time.Hour,
		Backend:         api.Config{BaseURL: "http://backend.invalid"},
		DefaultHomePath: "/analytics",
		LoginPath:       "/auth/login",
	}, Deps{
		Dict:        dict.New(dict.Options{Logger: zap.NewNop()}),
		Persistence: p,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func TestManager_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	var active int
	m := newManager(t, nil)
	m.deps.OnActive = func(n int) { active = n }

	ws, err := m.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, ws.ID)
	require.Equal(t, "/auth/login", ws.Navigator.Current().Path)
	require.Equal(t, 1, active)

	got, ok := m.Get(ctx, ws.ID)
	require.True(t, ok)
	require.Same(t, ws, got)

	_, ok = m.Get(ctx, "not-a-uuid")
	require.False(t, ok)

	m.Delete(ctx, ws.ID)
	_, ok = m.Get(ctx, ws.ID)
	require.False(t, ok)
	require.Equal(t, 0, m.Count())
}

func TestManager_ResolveCreatesOnMiss(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)

	ws, created, err := m.Resolve(ctx, "")
	require.NoError(t, err)
	require.True(t, created)

	again, created, err := m.Resolve(ctx, ws.ID)
	require.NoError(t, err)
	require.False(t, created)
	require.Same(t, ws, again)
}

func TestManager_RestoresFromPersistence(t *testing.T) {
	ctx := context.Background()
	p := stores.NewPersistence(cache.NewMemory("", 0), "console", 0)

	first := newManager(t, p)
	ws, err := first.Create(ctx)
	require.NoError(t, err)
	ws.Access.SetTokens("at", "rt")
	first.Save(ctx, ws)

	// otra instancia del proceso (o tras un reinicio)
	second := newManager(t, p)
	restored, ok := second.Get(ctx, ws.ID)
	require.True(t, ok)
	require.NotSame(t, ws, restored)
	require.Equal(t, "at", restored.Access.AccessToken())
	require.Equal(t, 1, second.Count())
}

func TestManager_LogoutResetClearsLoginFlag(t *testing.T) {
	ctx := context.Background()
	m := newManager(t, nil)
	ws, err := m.Create(ctx)
	require.NoError(t, err)

	ws.Access.SetTokens("at", "rt")
	ws.Stores.ResetAll()
	require.Empty(t, ws.Access.AccessToken())
	require.False(t, ws.Flow.LoginInProgress())
}

func TestNewManager_RequiresDict(t *testing.T) {
	_, err := NewManager(Config{}, Deps{})
	require.ErrorIs(t, err, ErrNoDict)
}
