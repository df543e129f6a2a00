package console

import (
	"net/http"

	"github.com/dropDatabas3/adminconsole/internal/http/helpers"
)

// NoticesController entrega las notificaciones pendientes del workspace.
type NoticesController struct{}

func NewNoticesController() *NoticesController { return &NoticesController{} }

// Drain maneja GET /api/notifications. Cada notificación se entrega una vez.
func (c *NoticesController) Drain(w http.ResponseWriter, r *http.Request) {
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ws.Notices.Drain())
}
