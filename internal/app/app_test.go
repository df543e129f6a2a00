package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/adminconsole/internal/config"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Env: "test"})
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.App.Env = "test"
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Server.ShutdownTimeout = "2s"
	cfg.Backend.BaseURL = "http://127.0.0.1:1"
	return cfg
}

func TestInitWiresHandler(t *testing.T) {
	a := New(testConfig())
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(a.Close)

	require.NotNil(t, a.Handler)
	require.NotNil(t, a.Dict)
	require.NotNil(t, a.Workspaces)
	require.Len(t, a.Routes.All(), 5)

	// Init es idempotente
	mgr := a.Workspaces
	require.NoError(t, a.Init(context.Background()))
	require.Same(t, mgr, a.Workspaces)

	srv := httptest.NewServer(a.Handler)
	t.Cleanup(srv.Close)

	res, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)
	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&body))
	require.Equal(t, "degraded", body.Status)
	require.Equal(t, Version, body.Version)

	// métricas en el mismo mux si no hay metrics_addr
	mres, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer mres.Body.Close()
	b, _ := io.ReadAll(mres.Body)
	require.Equal(t, http.StatusOK, mres.StatusCode)
	require.True(t, strings.Contains(string(b), "console_workspaces_active"))
}

func TestStatusCreatesWorkspace(t *testing.T) {
	a := New(testConfig())
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(a.Close)

	rec := httptest.NewRecorder()
	a.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, a.Workspaces.Count())

	var cookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "console_sid" {
			cookie = c
		}
	}
	require.NotNil(t, cookie)

	var st struct {
		Authenticated bool     `json:"authenticated"`
		AccessCodes   []string `json:"accessCodes"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &st))
	require.False(t, st.Authenticated)
	require.Empty(t, st.AccessCodes)
}

func TestInitFailsOnUnknownLocale(t *testing.T) {
	cfg := testConfig()
	cfg.App.Locale = "xx-XX"
	a := New(cfg)
	t.Cleanup(a.Close)

	err := a.Init(context.Background())
	require.ErrorContains(t, err, "app: init locales")
	// el error queda memorizado
	require.Equal(t, err, a.Init(context.Background()))
	require.Nil(t, a.Handler)
}

func TestRunShutsDownOnCancel(t *testing.T) {
	a := New(testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestLoginRateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.Server.LoginRateLimit.Max = 1
	a := New(cfg)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(a.Close)
	require.NotNil(t, a.Limiter)

	post := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		a.Handler.ServeHTTP(rec, req)
		return rec
	}

	require.Equal(t, http.StatusBadRequest, post().Code)
	rec := post()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestInitSealsPersistence(t *testing.T) {
	cfg := testConfig()
	cfg.Session.SecretKey = "0123456789abcdef0123456789abcdef"
	a := New(cfg)
	require.NoError(t, a.Init(context.Background()))
	t.Cleanup(a.Close)
	require.NotNil(t, a.Persistence.Sealer)

	bad := testConfig()
	bad.Session.SecretKey = "too-short"
	b := New(bad)
	t.Cleanup(b.Close)
	require.ErrorContains(t, b.Init(context.Background()), "app: init stores")
}
