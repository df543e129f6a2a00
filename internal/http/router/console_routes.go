package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/console"
	mw "github.com/dropDatabas3/adminconsole/internal/http/middlewares"
)

// ConsoleRouterDeps contiene las dependencias para el router de consola.
type ConsoleRouterDeps struct {
	Controllers *ctrl.Controllers
}

// RegisterConsoleRoutes registra navegación, diccionarios y notificaciones.
func RegisterConsoleRoutes(r chi.Router, deps ConsoleRouterDeps) {
	c := deps.Controllers

	// Navegación: el guard decide, no requiere sesión
	r.Post("/route", c.Route.Resolve)
	r.Get("/routes", c.Route.Table)

	r.Get("/notifications", c.Notices.Drain)
	r.Get("/preferences", c.Preferences.Get)

	// Diccionarios (requires auth)
	r.Group(func(g chi.Router) {
		g.Use(mw.Std(mw.RequireAuth())...)
		g.Get("/dict", c.Dict.Types)
		g.Get("/dict/{type}", c.Dict.Entries)
		g.Get("/dict/{type}/{value}", c.Dict.Entry)
	})
}
