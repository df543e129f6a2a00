package helpers

import (
	"net/http"

	"github.com/dropDatabas3/adminconsole/internal/console"
	"github.com/dropDatabas3/adminconsole/internal/http/errors"
	mw "github.com/dropDatabas3/adminconsole/internal/http/middlewares"
)

// Workspace devuelve el workspace del request o escribe 500 si la ruta no
// pasó por WithWorkspace.
func Workspace(w http.ResponseWriter, r *http.Request) (*console.Workspace, bool) {
	ws := mw.GetWorkspace(r.Context())
	if ws == nil {
		errors.WriteError(w, errors.ErrInternalServerError.WithDetail("workspace missing"))
		return nil, false
	}
	return ws, true
}

// Locale primer idioma del Accept-Language ("" si no viene).
func Locale(r *http.Request) string {
	raw := r.Header.Get("Accept-Language")
	for i, c := range raw {
		if c == ',' || c == ';' {
			return raw[:i]
		}
	}
	return raw
}
