package middlewares

import (
	"fmt"
	"net/http"

	"github.com/dropDatabas3/adminconsole/internal/http/errors"
	"github.com/dropDatabas3/adminconsole/internal/validation"
)

// RequireAuth exige sesión vigente en el workspace (access directive).
// Debe ir después de WithWorkspace.
func RequireAuth() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws := GetWorkspace(r.Context())
			if ws == nil || !ws.Access.Authenticated() {
				errors.WriteError(w, errors.ErrUnauthorized)
				return
			}
			if ws.Access.LoginExpired() {
				errors.WriteError(w, errors.ErrSessionExpired)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAccessCodes exige sesión y al menos uno de los códigos de permiso.
// Un código mal formado es un error de programación: paniquea al registrar.
func RequireAccessCodes(codes ...string) Middleware {
	for _, c := range codes {
		if !validation.ValidAccessCode(c) {
			panic(fmt.Sprintf("middlewares: invalid access code %q", c))
		}
	}
	return func(next http.Handler) http.Handler {
		return RequireAuth()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ws := GetWorkspace(r.Context())
			if !ws.Access.HasAnyAccessCode(codes...) {
				errors.WriteError(w, errors.ErrForbidden.WithDetail("missing access code"))
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
