package auth

import (
	"net/http"

	"github.com/dropDatabas3/adminconsole/internal/http/helpers"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/router"
)

type LogoutResponse struct {
	Navigation *router.Location `json:"navigation,omitempty"`
}

// LogoutController maneja el endpoint de logout.
type LogoutController struct {
	saver Saver
}

func NewLogoutController(saver Saver) *LogoutController {
	return &LogoutController{saver: saver}
}

// Logout maneja POST /api/auth/logout?redirect=true|false
// La sesión local se limpia aunque el backend falle.
func (c *LogoutController) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LogoutController.Logout"))

	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}

	redirectBack := helpers.QueryBool(r, router.RedirectParam, true)
	if err := ws.Flow.Logout(ctx, redirectBack); err != nil {
		log.Warn("logout navigation failed", logger.Err(err))
	}
	c.saver.Save(ctx, ws)

	var resp LogoutResponse
	if loc, ok := ws.Navigator.TakePending(); ok {
		resp.Navigation = &loc
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
