package router

import (
	"github.com/go-chi/chi/v5"

	ctrl "github.com/dropDatabas3/adminconsole/internal/http/controllers/health"
)

// HealthRouterDeps contiene las dependencias para el router de health.
type HealthRouterDeps struct {
	Controllers *ctrl.Controllers
}

// RegisterHealthRoutes registra rutas de health check.
// Sin workspace ni logging (muy frecuentes).
func RegisterHealthRoutes(r chi.Router, deps HealthRouterDeps) {
	c := deps.Controllers
	r.Get("/readyz", c.Health.Readyz)
	r.Get("/healthz", c.Health.Readyz)
}
