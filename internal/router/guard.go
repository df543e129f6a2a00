package router

import (
	"time"

	"github.com/dropDatabas3/adminconsole/internal/locales"
)

// SessionState lo que el guard necesita del Access Store.
type SessionState interface {
	AccessToken() string
	AccessTokenExpired(now time.Time) bool
	SetLoginExpired(bool)
	HasAnyAccessCode(codes ...string) bool
}

// Decision resultado del guard.
type Decision struct {
	Allow        bool      `json:"allow"`
	Redirect     *Location `json:"redirect,omitempty"`
	LoginExpired bool      `json:"loginExpired,omitempty"`
	Reason       string    `json:"reason,omitempty"`
}

// Guard decide si loc (resuelta a route) se puede visitar.
//   - rutas públicas pasan
//   - sin access token: redirect a login con la ruta de origen
//   - token vencido: marca loginExpired y deja pasar (la UI abre el modal de re-login)
//   - faltan códigos: redirect a 403
func Guard(sess SessionState, route Route, loc Location, loginPath string, now time.Time) Decision {
	if route.Public {
		return Decision{Allow: true}
	}
	if sess.AccessToken() == "" {
		to := LoginLocation(loginPath, loc.FullPath())
		return Decision{Redirect: &to, Reason: "unauthenticated"}
	}
	d := Decision{Allow: true}
	if sess.AccessTokenExpired(now) {
		sess.SetLoginExpired(true)
		d.LoginExpired = true
	}
	if !sess.HasAnyAccessCode(route.AccessCodes...) {
		to := Location{Path: ForbiddenPath}
		return Decision{Redirect: &to, Reason: "forbidden", LoginExpired: d.LoginExpired}
	}
	return d
}

// PageTitle "<título> - <app>" o solo la app si la ruta no tiene título.
func PageTitle(tr locales.Translator, appName string, route Route) string {
	if route.Title == "" {
		return appName
	}
	return tr.T(route.Title) + " - " + appName
}
