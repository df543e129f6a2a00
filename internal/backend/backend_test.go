package backend

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dropDatabas3/adminconsole/internal/access"
	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/auth"
	"github.com/dropDatabas3/adminconsole/internal/backend/password"
	"github.com/dropDatabas3/adminconsole/internal/backend/store"
	"github.com/dropDatabas3/adminconsole/internal/backend/tokens"
	"github.com/dropDatabas3/adminconsole/internal/dict"
	"github.com/dropDatabas3/adminconsole/internal/notify"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/post"
	"github.com/dropDatabas3/adminconsole/internal/router"
	"github.com/dropDatabas3/adminconsole/internal/stores"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

func TestMain(m *testing.M) {
	logger.Init(logger.Config{Env: "test"})
	os.Exit(m.Run())
}

func newBackend(t *testing.T) (*httptest.Server, *store.Memory) {
	t.Helper()
	seed, err := store.DefaultSeed(password.Fast)
	require.NoError(t, err)
	st := store.NewMemory(seed)

	ks, err := tokens.NewEd25519("test")
	require.NoError(t, err)
	srv, err := New(Config{
		Store:  st,
		Issuer: tokens.NewIssuer("http://mock", ks, time.Minute),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, st
}

func newClient(ts *httptest.Server, acc *access.Store, refresh bool) *api.Client {
	return api.New(api.Config{BaseURL: ts.URL, TenantID: "1", EnableRefreshToken: refresh, Logger: zap.NewNop()}, acc)
}

func TestBackend_LoginAndPermissionInfo(t *testing.T) {
	ts, _ := newBackend(t)
	ctx := context.Background()
	acc := access.NewStore()
	c := newClient(ts, acc, false)

	pair, err := c.Login(ctx, auth.Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)
	acc.SetTokens(pair.AccessToken, pair.RefreshToken)

	exp, ok := acc.AccessTokenExpiresAt()
	require.True(t, ok)
	require.Equal(t, pair.ExpiresTime/1000, exp.Unix())

	info, err := c.PermissionInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, "Administrator", info.User.DisplayName())
	require.Equal(t, []string{access.SuperCode}, info.Permissions)
	require.NotEmpty(t, info.Menus)
}

func TestBackend_BadCredentials(t *testing.T) {
	ts, _ := newBackend(t)
	c := newClient(ts, access.NewStore(), false)

	_, err := c.Login(context.Background(), auth.Credentials{Username: "admin", Password: "nope"})
	ae, ok := api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, CodeBadCredential, ae.Code)
}

func TestBackend_UnauthorizedMarksExpired(t *testing.T) {
	ts, _ := newBackend(t)
	acc := access.NewStore()
	acc.SetTokens("garbage", "")
	c := newClient(ts, acc, false)

	_, err := c.PermissionInfo(context.Background())
	require.ErrorIs(t, err, api.ErrUnauthorized)
	require.True(t, acc.LoginExpired())
}

func TestBackend_RefreshRotatesTokens(t *testing.T) {
	ts, _ := newBackend(t)
	ctx := context.Background()
	acc := access.NewStore()
	c := newClient(ts, acc, true)

	pair, err := c.Login(ctx, auth.Credentials{Username: "test", Password: "test123"})
	require.NoError(t, err)

	// access inválido + refresh válido: el cliente refresca y reintenta
	acc.SetTokens("garbage", pair.RefreshToken)
	info, err := c.PermissionInfo(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"system:post:query"}, info.Permissions)
	require.NotEqual(t, "garbage", acc.AccessToken())
	require.NotEqual(t, pair.RefreshToken, acc.RefreshToken())

	// el refresh viejo ya no sirve
	_, err = c.RefreshToken(ctx, pair.RefreshToken)
	require.Error(t, err)
}

func TestBackend_LogoutRevokesRefresh(t *testing.T) {
	ts, _ := newBackend(t)
	ctx := context.Background()
	acc := access.NewStore()
	c := newClient(ts, acc, true)

	pair, err := c.Login(ctx, auth.Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	acc.SetTokens(pair.AccessToken, pair.RefreshToken)

	require.NoError(t, c.Logout(ctx))
	_, err = c.RefreshToken(ctx, pair.RefreshToken)
	require.Error(t, err)
}

func TestBackend_PostCRUDWithPermissions(t *testing.T) {
	ts, _ := newBackend(t)
	ctx := context.Background()
	d := dict.New(dict.Options{Logger: zap.NewNop()})

	admin := access.NewStore()
	ac := newClient(ts, admin, false)
	pair, err := ac.Login(ctx, auth.Credentials{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	admin.SetTokens(pair.AccessToken, pair.RefreshToken)
	require.NoError(t, d.LoadFromRemote(ctx, ac.DictSimpleList, nil, "", "").Wait(ctx))

	svc := post.NewService(ac, d)
	sort, status := 5, 0
	id, err := svc.Create(ctx, post.SaveReq{Name: "Intern", Code: "intern", Sort: &sort, Status: &status})
	require.NoError(t, err)

	row, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Enabled", row.StatusLabel)

	_, err = svc.Create(ctx, post.SaveReq{Name: "Dup", Code: "intern", Sort: &sort, Status: &status})
	ae, ok := api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, CodePostConflict, ae.Code)

	page, err := svc.List(ctx, post.PageParam{Name: "intern"})
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)

	require.NoError(t, svc.Update(ctx, post.SaveReq{ID: id, Name: "Trainee", Code: "intern", Sort: &sort, Status: &status}))
	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	ae, ok = api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, CodeNotFound, ae.Code)

	// test solo tiene query
	tester := access.NewStore()
	tc := newClient(ts, tester, false)
	pair, err = tc.Login(ctx, auth.Credentials{Username: "test", Password: "test123"})
	require.NoError(t, err)
	tester.SetTokens(pair.AccessToken, pair.RefreshToken)
	_, err = post.NewService(tc, d).Create(ctx, post.SaveReq{Name: "X", Code: "x", Sort: &sort, Status: &status})
	ae, ok = api.AsAPIError(err)
	require.True(t, ok)
	require.Equal(t, CodeForbidden, ae.Code)
}

// La consola completa contra el backend: login, permisos, diccionario y
// logout con redirect.
func TestBackend_AuthFlowEndToEnd(t *testing.T) {
	ts, _ := newBackend(t)
	ctx := context.Background()

	acc := access.NewStore()
	usr := user.NewStore()
	reg := stores.NewRegistry(acc, usr)
	nav := router.NewNavigator(router.Location{Path: router.LoginPath})
	queue := notify.NewQueue(0)
	d := dict.New(dict.Options{Logger: zap.NewNop()})

	flow, err := auth.NewFlow(auth.Deps{
		API:             newClient(ts, acc, true),
		Access:          acc,
		User:            usr,
		Dict:            d,
		Navigator:       nav,
		Notifier:        queue,
		Resetter:        reg,
		DefaultHomePath: "/analytics",
		LoginPath:       router.LoginPath,
	})
	require.NoError(t, err)

	res, err := flow.Login(ctx, auth.Credentials{Username: "admin", Password: "admin123"}, nil)
	require.NoError(t, err)
	require.NoError(t, res.DictRefresh.Wait(ctx))
	require.Equal(t, "/analytics", nav.Current().Path)
	require.True(t, acc.HasAccessCode("system:post:delete"))

	e, ok := d.Lookup(post.StatusDictType, "1")
	require.True(t, ok)
	require.Equal(t, "Disabled", e.Label)
	require.Len(t, queue.Drain(), 1)

	nav.Visit(router.Location{Path: "/system/post"})
	require.NoError(t, flow.Logout(ctx, true))
	require.False(t, acc.Authenticated())
	loc := nav.Current()
	require.Equal(t, router.LoginPath, loc.Path)
	from, ok := router.RedirectTarget(loc)
	require.True(t, ok)
	require.Equal(t, "/system/post", from)
}

func TestBackend_JWKS(t *testing.T) {
	ts, _ := newBackend(t)
	resp, err := http.Get(ts.URL + "/.well-known/jwks.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}
