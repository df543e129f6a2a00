package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/adminconsole/internal/auth"
)

type memTokens struct {
	mu      sync.Mutex
	access  string
	refresh string
	expired bool
}

func (m *memTokens) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.access
}

func (m *memTokens) RefreshToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refresh
}

func (m *memTokens) SetTokens(a, r string) {
	m.mu.Lock()
	m.access, m.refresh = a, r
	m.mu.Unlock()
}

func (m *memTokens) SetLoginExpired(v bool) {
	m.mu.Lock()
	m.expired = v
	m.mu.Unlock()
}

func writeEnv(w http.ResponseWriter, code int, msg string, data any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"code": code, "msg": msg, "data": data})
}

func newClient(t *testing.T, h http.Handler, refresh bool, tokens *memTokens) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL, EnableRefreshToken: refresh, TenantID: "1", Logger: zap.NewNop()}, tokens)
}

func TestLogin_AnonymousAndDecodes(t *testing.T) {
	var sawAuth string
	mux := http.NewServeMux()
	mux.HandleFunc(PathLogin, func(w http.ResponseWriter, r *http.Request) {
		sawAuth = r.Header.Get("Authorization")
		require.Equal(t, "1", r.Header.Get("tenant-id"))
		var cred auth.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&cred))
		require.Equal(t, "admin", cred.Username)
		writeEnv(w, 0, "", auth.TokenPair{UserID: 1, AccessToken: "at", RefreshToken: "rt"})
	})

	c := newClient(t, mux, false, &memTokens{access: "old"})
	pair, err := c.Login(context.Background(), auth.Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	require.Equal(t, "at", pair.AccessToken)
	require.Empty(t, sawAuth)
}

func TestDo_BusinessErrorIsAPIError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(PathLogin, func(w http.ResponseWriter, r *http.Request) {
		writeEnv(w, 1002000000, "bad credentials", nil)
	})
	c := newClient(t, mux, false, &memTokens{})
	_, err := c.Login(context.Background(), auth.Credentials{Username: "x"})
	ae, ok := AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, 1002000000, ae.Code)
	require.Equal(t, "bad credentials", ae.Msg)
}

func TestDo_UnauthorizedWithoutRefreshMarksExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(PathPermissionInfo, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	tokens := &memTokens{access: "at", refresh: "rt"}
	c := newClient(t, mux, false, tokens)

	_, err := c.PermissionInfo(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.True(t, tokens.expired)
}

func TestDo_RefreshOnceAndRetry(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(PathPermissionInfo, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh" {
			writeEnv(w, 401, "token expired", nil)
			return
		}
		writeEnv(w, 0, "", auth.PermissionInfo{Permissions: []string{"system:post:query"}})
	})
	mux.HandleFunc(PathRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		require.Equal(t, "rt", r.URL.Query().Get("refreshToken"))
		writeEnv(w, 0, "", auth.TokenPair{AccessToken: "fresh", RefreshToken: "rt2"})
	})

	tokens := &memTokens{access: "stale", refresh: "rt"}
	c := newClient(t, mux, true, tokens)

	info, err := c.PermissionInfo(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"system:post:query"}, info.Permissions)
	require.Equal(t, int32(1), refreshes.Load())
	require.Equal(t, "fresh", tokens.AccessToken())
	require.Equal(t, "rt2", tokens.RefreshToken())
	require.False(t, tokens.expired)
}

func TestDo_RefreshFailsMarksExpired(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(PathPermissionInfo, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc(PathRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		writeEnv(w, 401, "refresh token invalid", nil)
	})
	tokens := &memTokens{access: "stale", refresh: "rt"}
	c := newClient(t, mux, true, tokens)

	_, err := c.PermissionInfo(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	require.True(t, tokens.expired)
}

func TestLogout_DoesNotRefresh(t *testing.T) {
	var refreshes atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(PathLogout, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	mux.HandleFunc(PathRefreshToken, func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
	})
	c := newClient(t, mux, true, &memTokens{access: "a", refresh: "r"})
	require.ErrorIs(t, c.Logout(context.Background()), ErrUnauthorized)
	require.Zero(t, refreshes.Load())
}

func TestDictSimpleList_PassesParams(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(PathDictSimpleList, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "0", r.URL.Query().Get("status"))
		writeEnv(w, 0, "", []map[string]any{{"dictType": "common_status", "label": "Enabled", "value": "0"}})
	})
	c := newClient(t, mux, false, &memTokens{access: "a"})
	recs, err := c.DictSimpleList(context.Background(), map[string]any{"status": 0})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, "common_status", recs[0]["dictType"])
}

func TestDictSimpleList_KeepsNumbersExact(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc(PathDictSimpleList, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":0,"msg":"","data":[{"dictType":"A","label":"big","value":12345678901234567}]}`))
	})
	c := newClient(t, mux, false, &memTokens{access: "a"})
	recs, err := c.DictSimpleList(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	require.Equal(t, json.Number("12345678901234567"), recs[0]["value"])
}
