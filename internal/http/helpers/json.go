// Package helpers utilidades HTTP compartidas por los controllers.
package helpers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/dropDatabas3/adminconsole/internal/http/errors"
)

const maxBody = 1 << 20

// ReadJSON decodifica JSON de forma tolerante (no falla por campos desconocidos).
// Valida Content-Type y limita el body a 1MB.
// Devuelve false si ya escribió el error HTTP.
func ReadJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		errors.WriteError(w, errors.ErrBadRequest.WithDetail("Content-Type debe ser application/json"))
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	defer r.Body.Close()

	if err := json.NewDecoder(r.Body).Decode(v); err != nil && err != io.EOF {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			errors.WriteError(w, errors.ErrBadRequest.WithDetail("body demasiado grande"))
			return false
		}
		errors.WriteError(w, errors.ErrInvalidJSON.WithCause(err))
		return false
	}
	return true
}

// WriteJSON escribe una respuesta JSON estándar.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// QueryInt lee un entero opcional del query. ok es false si vino mal formado.
func QueryInt(r *http.Request, key string) (v *int, ok bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &n, true
}

// QueryBool lee un bool opcional con default.
func QueryBool(r *http.Request, key string, def bool) bool {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return def
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return b
}
