// Package app arma la consola: inicialización ordenada de los componentes y
// ciclo de vida de los servidores HTTP.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/auth"
	"github.com/dropDatabas3/adminconsole/internal/cache"
	"github.com/dropDatabas3/adminconsole/internal/config"
	"github.com/dropDatabas3/adminconsole/internal/console"
	"github.com/dropDatabas3/adminconsole/internal/dict"
	authctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/auth"
	consolectrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/console"
	healthctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/health"
	postctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/post"
	mw "github.com/dropDatabas3/adminconsole/internal/http/middlewares"
	httprouter "github.com/dropDatabas3/adminconsole/internal/http/router"
	"github.com/dropDatabas3/adminconsole/internal/locales"
	"github.com/dropDatabas3/adminconsole/internal/metrics"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/rate"
	"github.com/dropDatabas3/adminconsole/internal/router"
	"github.com/dropDatabas3/adminconsole/internal/security/secretbox"
	"github.com/dropDatabas3/adminconsole/internal/stores"
)

// Version se sobreescribe con -ldflags en el build.
var Version = "dev"

// App contiene los componentes de la consola ya cableados.
type App struct {
	cfg  *config.Config
	once sync.Once
	err  error

	Log         *zap.Logger
	Locales     *locales.Bundle
	Cache       cache.Client
	Persistence *stores.Persistence
	Dict        *dict.Cache
	Workspaces  *console.Manager
	Routes      *router.Table
	Registry    *prometheus.Registry
	Limiter     rate.Limiter
	Handler     http.Handler

	translator locales.Translator
	server     *http.Server
	metricsSrv *http.Server
}

// New crea la App sin inicializar nada; ver Init.
func New(cfg *config.Config) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	return &App{cfg: cfg}
}

// Init corre una sola vez la secuencia de arranque:
// logger, locales, stores, acceso, router, título, mount.
// Llamadas siguientes devuelven el mismo resultado.
func (a *App) Init(ctx context.Context) error {
	a.once.Do(func() {
		steps := []struct {
			name string
			fn   func(context.Context) error
		}{
			{"logger", a.initLogger},
			{"locales", a.initLocales},
			{"stores", a.initStores},
			{"access", a.initAccess},
			{"router", a.initRouter},
			{"title", a.initTitle},
			{"mount", a.mount},
		}
		for _, s := range steps {
			start := time.Now()
			if err := s.fn(ctx); err != nil {
				a.err = fmt.Errorf("app: init %s: %w", s.name, err)
				return
			}
			a.Log.Debug("init step done", logger.Op(s.name), logger.Elapsed(time.Since(start)))
		}
		a.Log.Info("console initialised",
			logger.String("addr", a.cfg.Server.Addr),
			logger.Upstream(a.cfg.Backend.BaseURL),
			logger.Count(a.Dict.Len()),
		)
	})
	return a.err
}

func (a *App) initLogger(context.Context) error {
	logger.Init(logger.Config{
		Env:         a.cfg.App.Env,
		Level:       a.cfg.Log.Level,
		ServiceName: "admin-console",
		Version:     Version,
	})
	a.Log = logger.L()
	return nil
}

func (a *App) initLocales(context.Context) error {
	b, err := locales.Load(a.cfg.App.Locale)
	if err != nil {
		return err
	}
	a.Locales = b
	a.translator = b.For(a.cfg.App.Locale)
	return nil
}

// initStores: backend de cache, persistencia bajo el namespace, restore del
// diccionario y tabla de workspaces.
func (a *App) initStores(ctx context.Context) error {
	c, err := cache.New(cache.Config{
		Driver:     a.cfg.Cache.Kind,
		Addr:       a.cfg.Cache.Redis.Addr,
		Password:   a.cfg.Cache.Redis.Password,
		DB:         a.cfg.Cache.Redis.DB,
		Prefix:     a.cfg.Cache.Redis.Prefix,
		DefaultTTL: config.Duration(a.cfg.Cache.Memory.DefaultTTL, 0),
	})
	if err != nil {
		return err
	}
	a.Cache = c

	sessionTTL := config.Duration(a.cfg.Session.TTL, 12*time.Hour)
	a.Persistence = stores.NewPersistence(c, a.cfg.App.Namespace, sessionTTL)
	a.Persistence.OnError = func(store string, err error) {
		metrics.PersistFailures.WithLabelValues(store).Inc()
	}
	if strings.TrimSpace(a.cfg.Session.SecretKey) != "" {
		key, err := secretbox.ParseKey(a.cfg.Session.SecretKey)
		if err != nil {
			return err
		}
		box, err := secretbox.New(key)
		if err != nil {
			return err
		}
		a.Persistence.Sealer = box
	}

	a.Dict = dict.New(dict.Options{
		Persister: a.Persistence,
		Logger:    a.Log,
		Hooks: dict.Hooks{
			OnRefreshError: func(error) { metrics.DictRefreshTotal.WithLabelValues("error").Inc() },
			OnRefreshed: func(types int) {
				metrics.DictRefreshTotal.WithLabelValues("ok").Inc()
				metrics.DictTypes.Set(float64(types))
			},
		},
	})
	if err := a.Dict.Restore(ctx); err != nil {
		// Un cache frío no impide arrancar; el próximo login lo recarga.
		a.Log.Warn("dict restore failed", logger.Err(err))
	}
	metrics.DictTypes.Set(float64(a.Dict.Len()))

	mgr, err := console.NewManager(console.Config{
		TTL: sessionTTL,
		Backend: api.Config{
			BaseURL:            a.cfg.Backend.BaseURL,
			Timeout:            config.Duration(a.cfg.Backend.Timeout, 10*time.Second),
			TenantID:           a.cfg.Backend.TenantID,
			EnableRefreshToken: a.cfg.App.EnableRefreshToken,
		},
		DefaultHomePath: a.cfg.App.DefaultHomePath,
		LoginPath:       a.cfg.App.LoginPath,
		DictParams:      a.cfg.Dict.Params,
		DictLabelField:  a.cfg.Dict.LabelField,
		DictValueField:  a.cfg.Dict.ValueField,
		ExclusiveLogin:  a.cfg.App.ExclusiveLogin,
	}, console.Deps{
		Dict:        a.Dict,
		Translator:  a.translator,
		Persistence: a.Persistence,
		Logger:      a.Log,
		AuthHooks: auth.Hooks{
			OnLoginStart: func() { metrics.LoginInflight.Inc() },
			OnLoginDone: func(result string) {
				metrics.LoginInflight.Dec()
				metrics.LoginTotal.WithLabelValues(result).Inc()
			},
			OnLogoutError: func(error) { metrics.LogoutRemoteFailures.Inc() },
		},
		OnActive: func(n int) { metrics.WorkspacesActive.Set(float64(n)) },
	})
	if err != nil {
		return err
	}
	a.Workspaces = mgr
	return nil
}

// initAccess prepara lo que consumen las directivas de acceso: el limiter
// del login y el registry de métricas de login/permisos. RequireAuth y
// RequireAccessCodes se montan por ruta en mount.
func (a *App) initAccess(context.Context) error {
	rl := a.cfg.Server.LoginRateLimit
	window := config.Duration(rl.Window, time.Minute)
	if rl.Max > 0 && window > 0 {
		if rb, ok := a.Cache.(cache.RedisBacked); ok {
			a.Limiter = rate.NewRedisLimiter(rb.Redis(), a.cfg.App.Namespace+":rl:", rl.Max, window)
		} else {
			a.Limiter = rate.NewMemoryLimiter(rl.Max, window)
		}
	}

	a.Registry = prometheus.NewRegistry()
	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if err := metrics.Register(a.Registry); err != nil {
		return err
	}
	return mw.RegisterHTTPMetrics(a.Registry)
}

func (a *App) initRouter(context.Context) error {
	a.Routes = router.DefaultRoutes(a.cfg.App.LoginPath, a.cfg.App.DefaultHomePath)
	if _, ok := a.Routes.Match(a.cfg.App.DefaultHomePath); !ok {
		return fmt.Errorf("default home path %q is not routable", a.cfg.App.DefaultHomePath)
	}
	return nil
}

func (a *App) initTitle(context.Context) error {
	if !a.cfg.App.DynamicTitle {
		return nil
	}
	home, _ := a.Routes.Match(a.cfg.App.DefaultHomePath)
	a.Log.Debug("dynamic title enabled",
		logger.String("home_title", router.PageTitle(a.translator, a.cfg.App.Name, home)))
	return nil
}

func (a *App) mount(context.Context) error {
	var metricsHandler http.Handler
	promh := promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{})
	if strings.TrimSpace(a.cfg.Server.MetricsAddr) == "" {
		metricsHandler = promh
	} else {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promh)
		a.metricsSrv = &http.Server{
			Addr:              a.cfg.Server.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	a.Handler = httprouter.New(httprouter.Deps{
		Workspaces: a.Workspaces,
		Cookie: mw.CookieConfig{
			Name:   a.cfg.Session.CookieName,
			TTL:    config.Duration(a.cfg.Session.TTL, 12*time.Hour),
			Secure: a.cfg.Session.Secure,
		},
		AuthControllers: authctrl.NewControllers(a.Workspaces),
		ConsoleControllers: consolectrl.NewControllers(consolectrl.Deps{
			Dict:         a.Dict,
			Routes:       a.Routes,
			Locales:      a.Locales,
			AppName:      a.cfg.App.Name,
			LoginPath:    a.cfg.App.LoginPath,
			DynamicTitle: a.cfg.App.DynamicTitle,

			EnableRefreshToken: a.cfg.App.EnableRefreshToken,
			CompanyName:        a.cfg.App.CompanyName,
			CompanySite:        a.cfg.App.CompanySite,
		}),
		PostControllers: postctrl.NewControllers(a.Locales),
		HealthControllers: healthctrl.NewControllers(healthctrl.Deps{
			Cache:      a.Cache,
			DictTypes:  a.Dict.Len,
			Workspaces: a.Workspaces.Count,
			Version:    Version,
		}),
		CORSOrigins:  a.cfg.Server.CORSAllowedOrigins,
		LoginLimiter: a.Limiter,
		StaticDir:    a.cfg.Server.StaticDir,
		Metrics:      metricsHandler,
	})

	a.server = &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.Handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return nil
}

// Run inicializa (si hace falta) y sirve hasta que ctx se cancele; después
// hace un shutdown ordenado con server.shutdown_timeout.
func (a *App) Run(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	g, gctx := errgroup.WithContext(ctx)

	servers := []*http.Server{a.server}
	if a.metricsSrv != nil {
		servers = append(servers, a.metricsSrv)
	}
	for _, srv := range servers {
		srv := srv
		g.Go(func() error {
			a.Log.Info("listening", logger.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		timeout := config.Duration(a.cfg.Server.ShutdownTimeout, 10*time.Second)
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(sctx); err != nil {
				errs = append(errs, err)
			}
		}
		a.Log.Info("shutdown complete")
		return errors.Join(errs...)
	})

	err := g.Wait()
	a.Close()
	return err
}

// Close libera workspaces y el cliente de cache. Seguro de llamar sin Init.
func (a *App) Close() {
	if a.Workspaces != nil {
		a.Workspaces.Close()
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil && a.Log != nil {
			a.Log.Warn("cache close failed", logger.Err(err))
		}
	}
	if a.Log != nil {
		_ = a.Log.Sync()
	}
}
