// Package auth contiene los controllers de sesión de la consola: login,
// logout, refresco de permisos y estado.
package auth

import (
	"context"

	"github.com/dropDatabas3/adminconsole/internal/console"
)

// Saver persiste el workspace tras cambiar su sesión.
type Saver interface {
	Save(ctx context.Context, ws *console.Workspace)
}

// Controllers agrupa todos los controllers del dominio auth.
type Controllers struct {
	Login   *LoginController
	Logout  *LogoutController
	Session *SessionController
}

// NewControllers crea el agregador de controllers auth.
func NewControllers(saver Saver) *Controllers {
	return &Controllers{
		Login:   NewLoginController(saver),
		Logout:  NewLogoutController(saver),
		Session: NewSessionController(saver),
	}
}
