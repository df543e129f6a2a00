package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/auth"
	mw "github.com/dropDatabas3/adminconsole/internal/http/middlewares"
	"github.com/dropDatabas3/adminconsole/internal/rate"
)

// AuthRouterDeps contiene las dependencias para el router de auth.
type AuthRouterDeps struct {
	Controllers *ctrl.Controllers
	// LoginLimiter opcional; limita POST /auth/login por IP.
	LoginLimiter rate.Limiter
}

// RegisterAuthRoutes registra rutas de sesión bajo /api.
func RegisterAuthRoutes(r chi.Router, deps AuthRouterDeps) {
	c := deps.Controllers

	// POST /api/auth/login
	r.Method(http.MethodPost, "/auth/login", mw.ChainFunc(c.Login.Login, mw.WithRateLimit(deps.LoginLimiter, mw.IPPathRateKey)))

	// POST /api/auth/logout
	r.Post("/auth/logout", c.Logout.Logout)

	// GET /api/auth/status
	r.Get("/auth/status", c.Session.Status)

	// GET /api/auth/permission-info (requires auth)
	r.Method(http.MethodGet, "/auth/permission-info", mw.ChainFunc(c.Session.PermissionInfo, mw.RequireAuth()))
}
