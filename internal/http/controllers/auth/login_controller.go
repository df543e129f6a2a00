package auth

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/adminconsole/internal/auth"
	httperrors "github.com/dropDatabas3/adminconsole/internal/http/errors"
	"github.com/dropDatabas3/adminconsole/internal/http/helpers"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/router"
)

// LoginResponse resultado del login para el navegador.
type LoginResponse struct {
	Authenticated  bool                 `json:"authenticated"`
	Resumed        bool                 `json:"resumed,omitempty"`
	PermissionInfo *auth.PermissionInfo `json:"permissionInfo,omitempty"`
	Navigation     *router.Location     `json:"navigation,omitempty"`
	// DictRefreshing la recarga de diccionarios sigue en curso.
	DictRefreshing bool `json:"dictRefreshing,omitempty"`
}

// LoginController maneja el endpoint de login.
type LoginController struct {
	saver Saver
}

func NewLoginController(saver Saver) *LoginController {
	return &LoginController{saver: saver}
}

// Login maneja POST /api/auth/login
func (c *LoginController) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.From(ctx).With(logger.Layer("controller"), logger.Op("LoginController.Login"))

	ws, ok := helpers.Workspace(w, r)
	if !ok {
		return
	}

	var req auth.Credentials
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		httperrors.WriteError(w, httperrors.ErrMissingFields.WithDetail("username and password are required"))
		return
	}

	res, err := ws.Flow.Login(ctx, req, nil)
	if err != nil {
		log.Debug("login failed", logger.Err(err))
		httperrors.WriteError(w, err)
		return
	}
	c.saver.Save(ctx, ws)

	resp := LoginResponse{
		Authenticated:  ws.Access.Authenticated(),
		Resumed:        res.Resumed,
		PermissionInfo: res.PermissionInfo,
	}
	if loc, ok := ws.Navigator.TakePending(); ok {
		resp.Navigation = &loc
	}
	if res.DictRefresh != nil {
		select {
		case <-res.DictRefresh.Done():
		default:
			resp.DictRefreshing = true
		}
	}
	helpers.WriteJSON(w, http.StatusOK, resp)
}
