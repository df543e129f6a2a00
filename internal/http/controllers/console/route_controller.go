package console

import (
	"net/http"
	"time"

	httperrors "github.com/dropDatabas3/adminconsole/internal/http/errors"
	"github.com/dropDatabas3/adminconsole/internal/http/helpers"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/router"
)

type RouteRequest struct {
	Path string `json:"path"`
}

// RouteResponse decisión del guard para la ruta pedida.
type RouteResponse struct {
	Route    router.Route    `json:"route"`
	Matched  bool            `json:"matched"`
	Decision router.Decision `json:"decision"`
	Title    string          `json:"title"`
}

// RouteController resuelve navegaciones del navegador contra la tabla de
// rutas y el guard de acceso.
type RouteController struct {
	d   Deps
	now func() time.Time
}

func NewRouteController(d Deps) *RouteController {
	if d.LoginPath == "" {
		d.LoginPath = router.LoginPath
	}
	return &RouteController{d: d, now: time.Now}
}

// Resolve maneja POST /api/route
func (c *RouteController) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}

	var req RouteRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	if req.Path == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("path is required"))
		return
	}
	loc, err := router.ParseLocation(req.Path)
	if err != nil {
		httperrors.WriteError(w, httperrors.ErrInvalidParameter.WithDetail("invalid path").WithCause(err))
		return
	}

	route, matched := c.d.Routes.Match(loc.Path)
	dec := router.Guard(ws.Access, route, loc, c.d.LoginPath, c.now())
	if dec.Allow {
		ws.Navigator.Visit(loc)
	} else {
		logger.From(ctx).Debug("route denied", logger.Route(loc.Path), logger.String("reason", dec.Reason))
	}

	title := c.d.AppName
	if c.d.DynamicTitle && dec.Allow && c.d.Locales != nil {
		title = router.PageTitle(c.d.Locales.For(helpers.Locale(r)), c.d.AppName, route)
	}
	helpers.WriteJSON(w, http.StatusOK, RouteResponse{
		Route:    route,
		Matched:  matched,
		Decision: dec,
		Title:    title,
	})
}

// Table maneja GET /api/routes: rutas visibles para la sesión actual.
func (c *RouteController) Table(w http.ResponseWriter, r *http.Request) {
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	out := []router.Route{}
	for _, rt := range c.d.Routes.All() {
		if rt.Public || ws.Access.HasAnyAccessCode(rt.AccessCodes...) {
			out = append(out, rt)
		}
	}
	helpers.WriteJSON(w, http.StatusOK, out)
}
