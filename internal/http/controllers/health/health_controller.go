// Package health contiene el controller para health checks.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dropDatabas3/adminconsole/internal/http/helpers"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

// Pinger dependencia con chequeo de vida (cache/persistencia).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps todas opcionales.
type Deps struct {
	Cache      Pinger
	DictTypes  func() int
	Workspaces func() int
	Version    string
}

type Component struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type Response struct {
	Status     string      `json:"status"`
	Version    string      `json:"version,omitempty"`
	DictTypes  int         `json:"dictTypes"`
	Workspaces int         `json:"workspaces"`
	Components []Component `json:"components"`
}

// HealthController maneja las rutas de health check.
type HealthController struct {
	d Deps
}

func NewHealthController(d Deps) *HealthController {
	return &HealthController{d: d}
}

// Controllers agrupa todos los controllers del dominio health.
type Controllers struct {
	Health *HealthController
}

func NewControllers(d Deps) *Controllers {
	return &Controllers{Health: NewHealthController(d)}
}

// Readyz maneja GET /readyz
// "degraded" si el diccionario no cargó todavía; "unavailable" si la
// persistencia no responde.
func (c *HealthController) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("HealthController.Readyz"))

	resp := Response{Status: "ready", Version: c.d.Version, Components: []Component{}}
	if c.d.DictTypes != nil {
		resp.DictTypes = c.d.DictTypes()
	}
	if c.d.Workspaces != nil {
		resp.Workspaces = c.d.Workspaces()
	}

	dictComp := Component{Name: "dict", Status: "ok"}
	if resp.DictTypes == 0 {
		dictComp.Status = "empty"
		resp.Status = "degraded"
	}
	resp.Components = append(resp.Components, dictComp)

	if c.d.Cache != nil {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := c.d.Cache.Ping(pctx)
		cancel()
		comp := Component{Name: "cache", Status: "ok"}
		if err != nil {
			comp.Status = "down"
			comp.Detail = err.Error()
			resp.Status = "unavailable"
		}
		resp.Components = append(resp.Components, comp)
	}

	if c.d.Version != "" {
		w.Header().Set("X-Service-Version", c.d.Version)
	}
	status := http.StatusOK
	if resp.Status == "unavailable" {
		status = http.StatusServiceUnavailable
	}

	log.Debug("health check completed",
		logger.String("status", resp.Status),
		logger.Count(len(resp.Components)),
	)
	helpers.WriteJSON(w, status, resp)
}
