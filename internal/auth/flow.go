// Package auth orquesta login, refresco de permisos y logout de un workspace
// sobre sus stores explícitos (access, user, dict) más navegador y notificaciones.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dropDatabas3/adminconsole/internal/dict"
	"github.com/dropDatabas3/adminconsole/internal/locales"
	"github.com/dropDatabas3/adminconsole/internal/notify"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/router"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

// ErrLoginInProgress con ExclusiveLogin, otro login del mismo workspace está en curso.
var ErrLoginInProgress = errors.New("auth: login already in progress")

const successNoticeDuration = 3 * time.Second

// Resultados de login para métricas.
const (
	ResultOK      = "ok"
	ResultResumed = "expired_resume"
	ResultNoToken = "no_token"
	ResultError   = "error"
	ResultBusy    = "busy"
)

const (
	defaultLogin   = router.LoginPath
	defaultHome    = "/analytics"
	msgLoginOK     = "authentication.loginSuccess"
	msgLoginOKDesc = "authentication.loginSuccessDesc"
)

// API operaciones remotas que usa el flujo.
type API interface {
	Login(ctx context.Context, cred Credentials) (*TokenPair, error)
	Logout(ctx context.Context) error
	PermissionInfo(ctx context.Context) (*PermissionInfo, error)
	DictSimpleList(ctx context.Context, params map[string]any) ([]dict.Record, error)
}

// AccessStore subconjunto del Access Store que muta el flujo.
type AccessStore interface {
	SetTokens(accessToken, refreshToken string)
	LoginExpired() bool
	SetLoginExpired(bool)
	SetAccessCodes([]string)
}

// UserStore subconjunto del User Store.
type UserStore interface {
	SetUserInfo(user.Profile)
	SetUserRoles([]user.Role)
	SetAccessMenus([]user.MenuNode)
}

// DictLoader dispara el refresco del cache de diccionarios.
type DictLoader interface {
	LoadFromRemote(ctx context.Context, fetch dict.FetchFunc, params map[string]any, labelField, valueField string) *dict.Task
}

// Navigator router del workspace.
type Navigator interface {
	Current() router.Location
	Push(ctx context.Context, path string) error
	Replace(ctx context.Context, loc router.Location) error
}

// Resetter vuelve todos los stores del workspace al estado inicial.
type Resetter interface {
	ResetAll()
}

// Hooks observabilidad de lo que el flujo no propaga. Todos opcionales.
type Hooks struct {
	OnLoginStart  func()
	OnLoginDone   func(result string)
	OnLogoutError func(error)
}

// Deps colaboradores del flujo. API, Access, User, Dict, Navigator y
// Resetter son obligatorios.
type Deps struct {
	API        API
	Access     AccessStore
	User       UserStore
	Dict       DictLoader
	Navigator  Navigator
	Notifier   notify.Sink
	Resetter   Resetter
	Translator locales.Translator
	Hooks      Hooks

	DefaultHomePath string
	LoginPath       string
	DictParams      map[string]any
	DictLabelField  string
	DictValueField  string
	ExclusiveLogin  bool
}

// LoginResult PermissionInfo es nil cuando el backend no emitió token.
type LoginResult struct {
	PermissionInfo *PermissionInfo
	DictRefresh    *dict.Task
	// Resumed la sesión estaba expirada; no hubo callback ni navegación.
	Resumed bool
}

// Flow es seguro para uso concurrente.
type Flow struct {
	d        Deps
	inflight atomic.Int32
}

func NewFlow(d Deps) (*Flow, error) {
	switch {
	case d.API == nil:
		return nil, errors.New("auth: API is required")
	case d.Access == nil:
		return nil, errors.New("auth: Access store is required")
	case d.User == nil:
		return nil, errors.New("auth: User store is required")
	case d.Dict == nil:
		return nil, errors.New("auth: Dict is required")
	case d.Navigator == nil:
		return nil, errors.New("auth: Navigator is required")
	case d.Resetter == nil:
		return nil, errors.New("auth: Resetter is required")
	}
	if d.Notifier == nil {
		d.Notifier = notify.SinkFunc(func(notify.Notification) {})
	}
	if d.Translator == nil {
		d.Translator = identity{}
	}
	if d.DefaultHomePath == "" {
		d.DefaultHomePath = defaultHome
	}
	if d.LoginPath == "" {
		d.LoginPath = defaultLogin
	}
	return &Flow{d: d}, nil
}

// LoginInProgress flag observable para spinners.
func (f *Flow) LoginInProgress() bool {
	return f.inflight.Load() > 0
}

// Reset limpia el flag de login en curso.
func (f *Flow) Reset() {
	f.inflight.Store(0)
}

// Login autentica, carga permisos, navega a la home y dispara el refresco
// de diccionarios. Sin access token en la respuesta no hace nada.
func (f *Flow) Login(ctx context.Context, cred Credentials, onSuccess func(context.Context) error) (res *LoginResult, err error) {
	log := logger.From(ctx).With(logger.Layer("flow"), logger.Op("auth.login"), logger.Username(cred.Username))

	// start y done siempre van en pareja, también en el rechazo por busy
	if f.d.Hooks.OnLoginStart != nil {
		f.d.Hooks.OnLoginStart()
	}
	if f.d.ExclusiveLogin {
		if !f.inflight.CompareAndSwap(0, 1) {
			f.done(ResultBusy)
			return nil, ErrLoginInProgress
		}
	} else {
		f.inflight.Add(1)
	}

	result := ResultError
	defer func() {
		f.release()
		f.done(result)
	}()

	pair, err := f.d.API.Login(ctx, cred)
	if err != nil {
		log.Info("remote login failed", logger.Err(err))
		return nil, fmt.Errorf("auth: login: %w", err)
	}
	if pair == nil || pair.AccessToken == "" {
		result = ResultNoToken
		log.Warn("login returned no access token")
		return &LoginResult{}, nil
	}

	f.d.Access.SetTokens(pair.AccessToken, pair.RefreshToken)

	info, err := f.RefreshPermissions(ctx)
	if err != nil {
		return nil, err
	}

	resumed := false
	if f.d.Access.LoginExpired() {
		f.d.Access.SetLoginExpired(false)
		resumed = true
	} else {
		if onSuccess != nil {
			if err := onSuccess(ctx); err != nil {
				return nil, fmt.Errorf("auth: login callback: %w", err)
			}
		}
		home := info.HomePath
		if home == "" {
			home = f.d.DefaultHomePath
		}
		if err := f.d.Navigator.Push(ctx, home); err != nil {
			return nil, fmt.Errorf("auth: navigate home: %w", err)
		}
	}

	task := f.d.Dict.LoadFromRemote(ctx, f.d.API.DictSimpleList, f.d.DictParams, f.d.DictLabelField, f.d.DictValueField)

	if name := info.User.DisplayName(); name != "" {
		f.d.Notifier.Success(notify.Notification{
			Content:     f.d.Translator.T(msgLoginOK),
			Description: f.d.Translator.T(msgLoginOKDesc) + ":" + name,
			Duration:    successNoticeDuration,
		})
	}

	result = ResultOK
	if resumed {
		result = ResultResumed
	}
	log.Info("login ok", logger.Bool("resumed", resumed))
	return &LoginResult{PermissionInfo: info, DictRefresh: task, Resumed: resumed}, nil
}

// RefreshPermissions vuelve a pedir who-am-i y reemplaza user/roles/menús/códigos.
func (f *Flow) RefreshPermissions(ctx context.Context) (*PermissionInfo, error) {
	info, err := f.d.API.PermissionInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("auth: permission info: %w", err)
	}
	if info == nil {
		return nil, errors.New("auth: permission info: empty response")
	}
	f.d.User.SetUserInfo(info.User)
	f.d.User.SetUserRoles(info.Roles)
	f.d.User.SetAccessMenus(info.Menus)
	f.d.Access.SetAccessCodes(info.Permissions)
	return info, nil
}

// Logout cierra la sesión local siempre, aunque falle el backend. Con
// redirectBack la ruta actual viaja en el query "redirect" del login.
// Solo devuelve error si falla la navegación.
func (f *Flow) Logout(ctx context.Context, redirectBack bool) error {
	log := logger.From(ctx).With(logger.Layer("flow"), logger.Op("auth.logout"))

	from := f.d.Navigator.Current().FullPath()

	if err := f.d.API.Logout(ctx); err != nil {
		log.Debug("remote logout failed, ignoring", logger.Err(err))
		if f.d.Hooks.OnLogoutError != nil {
			f.d.Hooks.OnLogoutError(err)
		}
	}

	f.d.Resetter.ResetAll()
	f.d.Access.SetLoginExpired(false)

	loc := router.LoginLocation(f.d.LoginPath, "")
	if redirectBack {
		loc = router.LoginLocation(f.d.LoginPath, from)
	}
	if err := f.d.Navigator.Replace(ctx, loc); err != nil {
		return fmt.Errorf("auth: navigate login: %w", err)
	}
	return nil
}

// release decrementa sin bajar de cero (Reset puede haber limpiado el flag).
func (f *Flow) release() {
	for {
		v := f.inflight.Load()
		if v <= 0 || f.inflight.CompareAndSwap(v, v-1) {
			return
		}
	}
}

func (f *Flow) done(result string) {
	if f.d.Hooks.OnLoginDone != nil {
		f.d.Hooks.OnLoginDone(result)
	}
}

type identity struct{}

func (identity) T(k string) string { return k }
