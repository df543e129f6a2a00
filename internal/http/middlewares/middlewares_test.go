package middlewares

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/rate"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Env: "test"})
	os.Exit(m.Run())
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}), WithRequestID())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec := serve(h, req)
	require.Equal(t, "abc", rec.Header().Get("X-Request-ID"))
	require.Equal(t, "abc", seen)

	rec = serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestRecover(t *testing.T) {
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }), WithRecover())
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "panic recovered")
}

func TestCORS(t *testing.T) {
	h := Chain(okHandler, WithCORS([]string{"http://localhost:5173/"}))

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := serve(h, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = serve(h, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequireAuth_NoWorkspace(t *testing.T) {
	rec := serve(Chain(okHandler, RequireAuth()), httptest.NewRequest(http.MethodGet, "/api/dict", nil))
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

type errLimiter struct{}

func (errLimiter) Allow(context.Context, string) (rate.Result, error) {
	return rate.Result{}, errors.New("redis down")
}

func TestRateLimit(t *testing.T) {
	h := Chain(okHandler, WithRateLimit(rate.NewMemoryLimiter(1, time.Minute), nil))
	req := func(ip string) *http.Request {
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader("{}"))
		r.RemoteAddr = ip + ":5000"
		return r
	}

	rec := serve(h, req("10.0.0.1"))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	rec = serve(h, req("10.0.0.1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Contains(t, rec.Body.String(), "RATE_LIMITED")

	// otra IP
	require.Equal(t, http.StatusOK, serve(h, req("10.0.0.2")).Code)

	// X-Forwarded-For tiene prioridad
	r := req("10.0.0.1")
	r.Header.Set("X-Forwarded-For", "192.168.1.9, 10.0.0.1")
	require.Equal(t, "192.168.1.9|/api/auth/login", IPPathRateKey(r))
}

type fixedLimiter struct{ res rate.Result }

func (l fixedLimiter) Allow(context.Context, string) (rate.Result, error) { return l.res, nil }

func TestRateLimit_RetryAfterRoundsUp(t *testing.T) {
	cases := []struct {
		wait time.Duration
		want string
	}{
		{300 * time.Millisecond, "1"},
		{time.Second, "1"},
		{1500 * time.Millisecond, "2"},
	}
	for _, tc := range cases {
		h := Chain(okHandler, WithRateLimit(fixedLimiter{rate.Result{RetryAfter: tc.wait}}, nil))
		rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, tc.want, rec.Header().Get("Retry-After"), "wait=%s", tc.wait)
	}
}

func TestRateLimit_FailOpenAndNil(t *testing.T) {
	rec := serve(Chain(okHandler, WithRateLimit(errLimiter{}, nil)), httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(Chain(okHandler, WithRateLimit(nil, nil)), httptest.NewRequest(http.MethodPost, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAccessCodes_PanicsOnMalformedCode(t *testing.T) {
	require.Panics(t, func() { RequireAccessCodes("System post") })
	require.NotPanics(t, func() { RequireAccessCodes("system:post:query", "*:*:*") })
}
