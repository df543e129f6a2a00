package auth

import (
	"context"
	"errors"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/dropDatabas3/adminconsole/internal/access"
	"github.com/dropDatabas3/adminconsole/internal/dict"
	"github.com/dropDatabas3/adminconsole/internal/notify"
	"github.com/dropDatabas3/adminconsole/internal/router"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeAPI struct {
	mu sync.Mutex

	pair      *TokenPair
	loginErr  error
	info      *PermissionInfo
	infoErr   error
	logoutErr error
	records   []dict.Record

	// loginGate si no es nil, Login bloquea hasta que se cierre.
	loginGate chan struct{}
	entered   chan struct{}

	logoutCalls int
	infoN       int
}

func (f *fakeAPI) Login(ctx context.Context, _ Credentials) (*TokenPair, error) {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.loginGate != nil {
		<-f.loginGate
	}
	return f.pair, f.loginErr
}

func (f *fakeAPI) Logout(context.Context) error {
	f.mu.Lock()
	f.logoutCalls++
	f.mu.Unlock()
	return f.logoutErr
}

func (f *fakeAPI) PermissionInfo(context.Context) (*PermissionInfo, error) {
	f.mu.Lock()
	f.infoN++
	f.mu.Unlock()
	return f.info, f.infoErr
}

func (f *fakeAPI) infoCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.infoN
}

func (f *fakeAPI) DictSimpleList(context.Context, map[string]any) ([]dict.Record, error) {
	return f.records, nil
}

type registry struct {
	acc *access.Store
	usr *user.Store
}

func (r registry) ResetAll() {
	r.acc.Reset()
	r.usr.Reset()
}

type env struct {
	api   *fakeAPI
	acc   *access.Store
	usr   *user.Store
	dict  *dict.Cache
	nav   *router.Navigator
	queue *notify.Queue
	flow  *Flow
	hooks *hookRecorder
}

type hookRecorder struct {
	mu        sync.Mutex
	starts    int
	results   []string
	logoutErr []error
}

func (h *hookRecorder) hooks() Hooks {
	return Hooks{
		OnLoginStart: func() {
			h.mu.Lock()
			h.starts++
			h.mu.Unlock()
		},
		OnLoginDone: func(r string) {
			h.mu.Lock()
			h.results = append(h.results, r)
			h.mu.Unlock()
		},
		OnLogoutError: func(err error) {
			h.mu.Lock()
			h.logoutErr = append(h.logoutErr, err)
			h.mu.Unlock()
		},
	}
}

func newEnv(t *testing.T, api *fakeAPI, exclusive bool) *env {
	t.Helper()
	e := &env{
		api:   api,
		acc:   access.NewStore(),
		usr:   user.NewStore(),
		dict:  dict.New(dict.Options{Logger: zap.NewNop()}),
		nav:   router.NewNavigator(router.Location{Path: router.LoginPath}),
		queue: notify.NewQueue(0),
		hooks: &hookRecorder{},
	}
	flow, err := NewFlow(Deps{
		API:             api,
		Access:          e.acc,
		User:            e.usr,
		Dict:            e.dict,
		Navigator:       e.nav,
		Notifier:        e.queue,
		Resetter:        registry{acc: e.acc, usr: e.usr},
		Hooks:           e.hooks.hooks(),
		DefaultHomePath: "/analytics",
		ExclusiveLogin:  exclusive,
	})
	require.NoError(t, err)
	e.flow = flow
	return e
}

func okAPI() *fakeAPI {
	return &fakeAPI{
		pair: &TokenPair{AccessToken: "at", RefreshToken: "rt"},
		info: &PermissionInfo{
			User:        user.Profile{ID: 1, Username: "admin", Nickname: "Yudao"},
			Roles:       []user.Role{{ID: 1, Code: "super_admin"}},
			Menus:       []user.MenuNode{{ID: 1, Name: "System", Path: "/system"}},
			Permissions: []string{"system:post:query"},
		},
		records: []dict.Record{{"dictType": "common_status", "label": "Enabled", "value": "0"}},
	}
}

func TestLogin_StoresTokensNavigatesAndRefreshesDict(t *testing.T) {
	e := newEnv(t, okAPI(), false)
	calls := 0
	var navAtCallback string

	res, err := e.flow.Login(context.Background(), Credentials{Username: "admin"}, func(context.Context) error {
		calls++
		navAtCallback = e.nav.Current().Path
		return nil
	})
	require.NoError(t, err)
	require.False(t, e.flow.LoginInProgress())

	require.Equal(t, "at", e.acc.AccessToken())
	require.Equal(t, "rt", e.acc.RefreshToken())
	require.True(t, e.acc.HasAccessCode("system:post:query"))
	p, ok := e.usr.UserInfo()
	require.True(t, ok)
	require.Equal(t, "admin", p.Username)

	require.Equal(t, 1, calls)
	require.Equal(t, router.LoginPath, navAtCallback, "el callback corre antes de navegar")
	require.Equal(t, "/analytics", e.nav.Current().Path)

	require.NotNil(t, res.PermissionInfo)
	require.NoError(t, res.DictRefresh.Wait(context.Background()))
	_, ok = e.dict.Lookup("common_status", "0")
	require.True(t, ok)

	notes := e.queue.Drain()
	require.Len(t, notes, 1)
	require.Equal(t, "authentication.loginSuccess", notes[0].Content)
	require.Equal(t, "authentication.loginSuccessDesc:Yudao", notes[0].Description)
	require.Equal(t, int64(3000), notes[0].DurationMs)
	require.Equal(t, []string{ResultOK}, e.hooks.results)
}

func TestLogin_NavigatesToHomePathWhenPresent(t *testing.T) {
	api := okAPI()
	api.info.HomePath = "/workspace"
	e := newEnv(t, api, false)

	res, err := e.flow.Login(context.Background(), Credentials{}, nil)
	require.NoError(t, err)
	require.NoError(t, res.DictRefresh.Wait(context.Background()))
	require.Equal(t, "/workspace", e.nav.Current().Path)
}

func TestLogin_EmptyTokenIsSilentNoop(t *testing.T) {
	api := okAPI()
	api.pair = &TokenPair{}
	e := newEnv(t, api, false)
	e.acc.SetTokens("old", "oldrt")
	e.acc.SetAccessCodes([]string{"system:post:query"})

	res, err := e.flow.Login(context.Background(), Credentials{}, func(context.Context) error {
		t.Fatal("no debe llamarse")
		return nil
	})
	require.NoError(t, err)
	require.Nil(t, res.PermissionInfo)
	require.Nil(t, res.DictRefresh)
	require.Equal(t, "old", e.acc.AccessToken())
	require.Equal(t, "oldrt", e.acc.RefreshToken())
	require.Equal(t, []string{"system:post:query"}, e.acc.AccessCodes())
	require.Equal(t, 0, api.infoCalls())
	require.Equal(t, router.LoginPath, e.nav.Current().Path)
	_, pending := e.nav.TakePending()
	require.False(t, pending)
	require.False(t, e.flow.LoginInProgress())
}

func TestLogin_ExpiredSessionResumesWithoutNavigation(t *testing.T) {
	e := newEnv(t, okAPI(), false)
	e.nav.Visit(router.Location{Path: "/system/post"})
	e.acc.SetLoginExpired(true)

	called := false
	res, err := e.flow.Login(context.Background(), Credentials{}, func(context.Context) error {
		called = true
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, res.DictRefresh.Wait(context.Background()))

	require.True(t, res.Resumed)
	require.False(t, called)
	require.False(t, e.acc.LoginExpired())
	require.NotNil(t, res.PermissionInfo)
	require.Equal(t, "/system/post", e.nav.Current().Path)
	_, pending := e.nav.TakePending()
	require.False(t, pending)
	require.Equal(t, []string{ResultResumed}, e.hooks.results)
}

func TestLogin_RemoteErrorPropagatesAndClearsFlag(t *testing.T) {
	api := okAPI()
	boom := errors.New("bad credentials")
	api.loginErr = boom
	e := newEnv(t, api, false)

	_, err := e.flow.Login(context.Background(), Credentials{}, nil)
	require.ErrorIs(t, err, boom)
	require.False(t, e.flow.LoginInProgress())
	require.Empty(t, e.acc.AccessToken())
	require.Equal(t, []string{ResultError}, e.hooks.results)
}

func TestLogin_PermissionErrorKeepsTokens(t *testing.T) {
	api := okAPI()
	boom := errors.New("who am i failed")
	api.infoErr = boom
	e := newEnv(t, api, false)

	_, err := e.flow.Login(context.Background(), Credentials{}, nil)
	require.ErrorIs(t, err, boom)
	require.Equal(t, "at", e.acc.AccessToken())
	require.Equal(t, router.LoginPath, e.nav.Current().Path)
	require.False(t, e.flow.LoginInProgress())
}

func TestLogin_CallbackErrorAbortsNavigation(t *testing.T) {
	e := newEnv(t, okAPI(), false)
	boom := errors.New("callback")
	_, err := e.flow.Login(context.Background(), Credentials{}, func(context.Context) error { return boom })
	require.ErrorIs(t, err, boom)
	require.Equal(t, router.LoginPath, e.nav.Current().Path)
}

func TestLogin_NoNotificationWithoutDisplayName(t *testing.T) {
	api := okAPI()
	api.info.User = user.Profile{ID: 1, Username: "admin"}
	e := newEnv(t, api, false)

	res, err := e.flow.Login(context.Background(), Credentials{}, nil)
	require.NoError(t, err)
	require.NoError(t, res.DictRefresh.Wait(context.Background()))
	require.Zero(t, e.queue.Len())
}

func TestLogin_FlagVisibleWhileInFlight(t *testing.T) {
	api := okAPI()
	api.loginGate = make(chan struct{})
	api.entered = make(chan struct{}, 1)
	e := newEnv(t, api, false)

	done := make(chan *LoginResult, 1)
	go func() {
		res, _ := e.flow.Login(context.Background(), Credentials{}, nil)
		done <- res
	}()
	<-api.entered
	require.True(t, e.flow.LoginInProgress())

	close(api.loginGate)
	res := <-done
	require.NoError(t, res.DictRefresh.Wait(context.Background()))
	require.False(t, e.flow.LoginInProgress())
}

func TestLogin_ExclusiveRejectsConcurrent(t *testing.T) {
	api := okAPI()
	api.loginGate = make(chan struct{})
	api.entered = make(chan struct{}, 1)
	e := newEnv(t, api, true)

	done := make(chan *LoginResult, 1)
	go func() {
		res, _ := e.flow.Login(context.Background(), Credentials{}, nil)
		done <- res
	}()
	<-api.entered

	_, err := e.flow.Login(context.Background(), Credentials{}, nil)
	require.ErrorIs(t, err, ErrLoginInProgress)

	close(api.loginGate)
	res := <-done
	require.NoError(t, res.DictRefresh.Wait(context.Background()))
	require.False(t, e.flow.LoginInProgress())

	// cada start tiene su done, el gauge de logins en curso vuelve a 0
	e.hooks.mu.Lock()
	defer e.hooks.mu.Unlock()
	require.Equal(t, 2, e.hooks.starts)
	require.Len(t, e.hooks.results, 2)
	require.ElementsMatch(t, []string{ResultBusy, ResultOK}, e.hooks.results)
}

func TestLogout_AlwaysClearsSessionEvenIfRemoteFails(t *testing.T) {
	api := okAPI()
	api.logoutErr = errors.New("network down")
	e := newEnv(t, api, false)

	e.acc.SetTokens("at", "rt")
	e.acc.SetLoginExpired(true)
	e.usr.SetUserInfo(user.Profile{ID: 1})

	require.NoError(t, e.flow.Logout(context.Background(), true))

	require.Empty(t, e.acc.AccessToken())
	require.Empty(t, e.acc.RefreshToken())
	require.False(t, e.acc.LoginExpired())
	_, ok := e.usr.UserInfo()
	require.False(t, ok)
	require.Len(t, e.hooks.logoutErr, 1)
	require.Equal(t, 1, api.logoutCalls)
}

func TestLogout_RedirectBackCarriesPreviousPath(t *testing.T) {
	e := newEnv(t, okAPI(), false)
	prev := router.Location{Path: "/system/post", Query: url.Values{"name": {"dev ops"}}}
	e.nav.Visit(prev)

	require.NoError(t, e.flow.Logout(context.Background(), true))

	loc, ok := e.nav.TakePending()
	require.True(t, ok)
	require.Equal(t, router.LoginPath, loc.Path)
	decoded, err := url.QueryUnescape(loc.Query.Get("redirect"))
	require.NoError(t, err)
	require.Equal(t, prev.FullPath(), decoded)
}

func TestLogout_WithoutRedirectHasEmptyQuery(t *testing.T) {
	e := newEnv(t, okAPI(), false)
	e.nav.Visit(router.Location{Path: "/system/post"})

	require.NoError(t, e.flow.Logout(context.Background(), false))
	loc, ok := e.nav.TakePending()
	require.True(t, ok)
	require.Equal(t, router.LoginPath, loc.Path)
	require.Empty(t, loc.Query)
}

func TestReset_ClearsFlag(t *testing.T) {
	e := newEnv(t, okAPI(), true)
	e.flow.inflight.Store(1)
	e.flow.Reset()
	require.False(t, e.flow.LoginInProgress())
}

func TestNewFlow_RequiresCollaborators(t *testing.T) {
	_, err := NewFlow(Deps{})
	require.Error(t, err)
}
