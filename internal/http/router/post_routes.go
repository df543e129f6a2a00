package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/post"
	mw "github.com/dropDatabas3/adminconsole/internal/http/middlewares"
)

// Códigos de permiso de la pantalla de puestos.
const (
	PermPostQuery  = "system:post:query"
	PermPostCreate = "system:post:create"
	PermPostUpdate = "system:post:update"
	PermPostDelete = "system:post:delete"
)

// PostRouterDeps contiene las dependencias para el router de puestos.
type PostRouterDeps struct {
	Controllers *ctrl.Controllers
}

// RegisterPostRoutes registra el CRUD de /api/system/post, cada operación
// con su código de permiso.
func RegisterPostRoutes(r chi.Router, deps PostRouterDeps) {
	c := deps.Controllers.Post

	r.Route("/system/post", func(pr chi.Router) {
		pr.With(mw.RequireAccessCodes(PermPostQuery)).Get("/schema", c.Schema)
		pr.With(mw.RequireAccessCodes(PermPostQuery)).Get("/", c.List)
		pr.With(mw.RequireAccessCodes(PermPostQuery)).Get("/{id}", c.Get)
		pr.With(mw.RequireAccessCodes(PermPostCreate)).Post("/", c.Create)
		pr.With(mw.RequireAccessCodes(PermPostUpdate)).Put("/{id}", c.Update)
		pr.With(mw.RequireAccessCodes(PermPostDelete)).Delete("/{id}", c.Delete)
	})
}
