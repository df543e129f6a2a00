package api

import (
	"errors"
	"fmt"
)

// ErrUnauthorized la sesión no es válida y no se pudo refrescar.
var ErrUnauthorized = errors.New("api: unauthorized")

// APIError error de negocio o de transporte devuelto por el backend.
type APIError struct {
	Status int    // HTTP status
	Code   int    // código del envelope
	Msg    string // mensaje del backend
	Path   string
}

func (e *APIError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("api: %s: code=%d status=%d: %s", e.Path, e.Code, e.Status, e.Msg)
	}
	return fmt.Sprintf("api: %s: code=%d status=%d", e.Path, e.Code, e.Status)
}

// AsAPIError extrae un *APIError de la cadena.
func AsAPIError(err error) (*APIError, bool) {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}
