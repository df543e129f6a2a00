package auth

import (
	"net/http"

	httperrors "github.com/dropDatabas3/adminconsole/internal/http/errors"
	"github.com/dropDatabas3/adminconsole/internal/http/helpers"
	"github.com/dropDatabas3/adminconsole/internal/user"
)

// StatusResponse estado de sesión del workspace.
type StatusResponse struct {
	Authenticated bool            `json:"authenticated"`
	LoginLoading  bool            `json:"loginLoading"`
	LoginExpired  bool            `json:"loginExpired"`
	AccessCodes   []string        `json:"accessCodes"`
	User          *user.Profile   `json:"user,omitempty"`
	Roles         []user.Role     `json:"roles,omitempty"`
	Menus         []user.MenuNode `json:"menus,omitempty"`
}

// SessionController estado y refresco de permisos.
type SessionController struct {
	saver Saver
}

func NewSessionController(saver Saver) *SessionController {
	return &SessionController{saver: saver}
}

// Status maneja GET /api/auth/status
func (c *SessionController) Status(w http.ResponseWriter, r *http.Request) {
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	resp := StatusResponse{
		Authenticated: ws.Access.Authenticated(),
		LoginLoading:  ws.Flow.LoginInProgress(),
		LoginExpired:  ws.Access.LoginExpired(),
		AccessCodes:   ws.Access.AccessCodes(),
		Roles:         ws.User.Roles(),
		Menus:         ws.User.AccessMenus(),
	}
	if resp.AccessCodes == nil {
		resp.AccessCodes = []string{}
	}
	if p, ok := ws.User.UserInfo(); ok {
		resp.User = &p
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}

// PermissionInfo maneja GET /api/auth/permission-info
// Vuelve a pedir who-am-i al backend y reemplaza user/roles/menús/códigos.
func (c *SessionController) PermissionInfo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}
	info, err := ws.Flow.RefreshPermissions(ctx)
	if err != nil {
		httperrors.WriteError(w, err)
		return
	}
	c.saver.Save(ctx, ws)
	helpers.WriteJSON(w, http.StatusOK, info)
}
