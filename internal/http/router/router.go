// Package router arma el handler HTTP de la consola sobre chi.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dropDatabas3/adminconsole/internal/console"
	authctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/auth"
	consolectrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/console"
	healthctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/health"
	postctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/post"
	httperrors "github.com/dropDatabas3/adminconsole/internal/http/errors"
	mw "github.com/dropDatabas3/adminconsole/internal/http/middlewares"
	"github.com/dropDatabas3/adminconsole/internal/rate"
)

// Deps contiene todas las dependencias del handler.
type Deps struct {
	Workspaces *console.Manager
	Cookie     mw.CookieConfig

	AuthControllers    *authctrl.Controllers
	ConsoleControllers *consolectrl.Controllers
	PostControllers    *postctrl.Controllers
	HealthControllers  *healthctrl.Controllers

	// Opcionales
	CORSOrigins  []string
	LoginLimiter rate.Limiter
	StaticDir    string       // build de la SPA
	Metrics      http.Handler // expuesto en /metrics si no es nil
}

// New registra todas las rutas y devuelve el handler raíz.
func New(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(mw.Std(
		mw.WithRecover(),
		mw.WithRequestID(),
		mw.WithCORS(d.CORSOrigins),
	)...)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrMethodNotAllowed)
	})

	if d.HealthControllers != nil {
		RegisterHealthRoutes(r, HealthRouterDeps{Controllers: d.HealthControllers})
	}
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	ws := workspaceChain(d.Workspaces, d.Cookie)
	r.Route("/api", func(api chi.Router) {
		api.Use(mw.Std(ws...)...)
		if d.AuthControllers != nil {
			RegisterAuthRoutes(api, AuthRouterDeps{Controllers: d.AuthControllers, LoginLimiter: d.LoginLimiter})
		}
		if d.ConsoleControllers != nil {
			RegisterConsoleRoutes(api, ConsoleRouterDeps{Controllers: d.ConsoleControllers})
		}
		if d.PostControllers != nil {
			RegisterPostRoutes(api, PostRouterDeps{Controllers: d.PostControllers})
		}
	})

	if d.StaticDir != "" {
		RegisterStaticRoutes(r, d.StaticDir)
	}
	return r
}

// workspaceChain middlewares de toda ruta /api: cabeceras, logging,
// métricas y resolución del workspace por cookie.
func workspaceChain(mgr *console.Manager, cc mw.CookieConfig) []mw.Middleware {
	return []mw.Middleware{
		mw.WithSecurityHeaders(mw.APICSP),
		mw.WithNoStore(),
		mw.WithLogging(),
		mw.WithMetrics(),
		mw.WithWorkspace(mgr, cc),
	}
}
