package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/adminconsole/internal/backend"
	"github.com/dropDatabas3/adminconsole/internal/backend/password"
	"github.com/dropDatabas3/adminconsole/internal/backend/store"
	"github.com/dropDatabas3/adminconsole/internal/backend/tokens"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Env: "test"})
	os.Exit(m.Run())
}

func mockBackend(t *testing.T) string {
	t.Helper()
	seed, err := store.DefaultSeed(password.Fast)
	require.NoError(t, err)
	ks, err := tokens.NewEd25519("cli")
	require.NoError(t, err)
	srv, err := backend.New(backend.Config{
		Store:  store.NewMemory(seed),
		Issuer: tokens.NewIssuer("http://mock", ks, time.Minute),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestLogin_Text(t *testing.T) {
	url := mockBackend(t)
	out, err := run(t, "login", "--backend-url", url, "--username", "admin", "--password", "admin123")
	require.NoError(t, err)
	require.Contains(t, out, "Login Successful")
	require.Contains(t, out, "Administrator (admin)")
	require.Contains(t, out, "*:*:*")
}

func TestLogin_BadCredentials(t *testing.T) {
	url := mockBackend(t)
	_, err := run(t, "login", "--backend-url", url, "--username", "admin", "--password", "nope")
	require.Error(t, err)
	require.Contains(t, err.Error(), "login:")
}

func TestLogin_MissingCredentials(t *testing.T) {
	t.Setenv("CONSOLECTL_USERNAME", "")
	t.Setenv("CONSOLECTL_PASSWORD", "")
	_, err := run(t, "login", "--backend-url", "http://127.0.0.1:1")
	require.ErrorContains(t, err, "faltan credenciales")
}

func TestDict_JSON(t *testing.T) {
	url := mockBackend(t)
	base := []string{"--backend-url", url, "--username", "admin", "--password", "admin123", "--out", "json"}

	out, err := run(t, append([]string{"dict"}, base...)...)
	require.NoError(t, err)
	var types struct {
		Types []string `json:"types"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &types))
	require.Contains(t, types.Types, "common_status")

	out, err = run(t, append([]string{"dict", "common_status", "0"}, base...)...)
	require.NoError(t, err)
	var e struct {
		Label string `json:"label"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &e))
	require.Equal(t, "Enabled", e.Label)

	_, err = run(t, append([]string{"dict", "nope"}, base...)...)
	require.ErrorContains(t, err, "no encontrado")
}

func TestPostsList(t *testing.T) {
	url := mockBackend(t)
	out, err := run(t, "posts", "list", "--backend-url", url, "--username", "test", "--password", "test123", "--status", "1")
	require.NoError(t, err)
	require.Contains(t, out, "Disabled")
	require.Contains(t, out, "total: 1")
}

func TestInvalidOut(t *testing.T) {
	_, err := run(t, "login", "--out", "yaml")
	require.ErrorContains(t, err, "--out")
}
