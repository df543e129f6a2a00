package errors

import (
	"fmt"
	"net/http"
)

// AppError estructura estándar de errores de la consola.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"` // No se serializa, usado para el header
	Err        error  `json:"-"` // Causa original, solo para logs
}

// Error implementa la interfaz error
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap permite acceder al error original
func (e *AppError) Unwrap() error {
	return e.Err
}

// New crea un nuevo AppError
func New(status int, code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// WithDetail devuelve una COPIA con detalle (no muta los errores base).
func (e *AppError) WithDetail(detail string) *AppError {
	newErr := *e
	newErr.Detail = detail
	return &newErr
}

// WithCause devuelve una COPIA con la causa original.
func (e *AppError) WithCause(err error) *AppError {
	newErr := *e
	newErr.Err = err
	return &newErr
}

// =================================================================================
// ERRORES PREDEFINIDOS
// =================================================================================

// 400 - cliente / validación
var (
	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "La solicitud contiene sintaxis inválida o parámetros faltantes.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidJSON = &AppError{
		Code:       "INVALID_JSON",
		Message:    "El cuerpo de la solicitud no es un JSON válido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrMissingFields = &AppError{
		Code:       "MISSING_FIELDS",
		Message:    "Faltan campos requeridos o tienen valores inválidos.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrInvalidParameter = &AppError{
		Code:       "INVALID_PARAMETER",
		Message:    "Uno de los parámetros de la URL o Query String es inválido.",
		HTTPStatus: http.StatusBadRequest,
	}

	ErrBackendRejected = &AppError{
		Code:       "BACKEND_REJECTED",
		Message:    "El backend rechazó la operación.",
		HTTPStatus: http.StatusBadRequest,
	}
)

// 401 / 403 - sesión y permisos
var (
	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Se requiere iniciar sesión.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrSessionExpired = &AppError{
		Code:       "SESSION_EXPIRED",
		Message:    "La sesión expiró. Iniciá sesión nuevamente.",
		HTTPStatus: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "No tenés permisos para realizar esta acción.",
		HTTPStatus: http.StatusForbidden,
	}
)

// 404 / 405 / 409
var (
	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "El recurso solicitado no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrDictNotFound = &AppError{
		Code:       "DICT_NOT_FOUND",
		Message:    "El diccionario o valor solicitado no está en cache.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrRouteNotFound = &AppError{
		Code:       "ROUTE_NOT_FOUND",
		Message:    "La ruta solicitada no existe.",
		HTTPStatus: http.StatusNotFound,
	}

	ErrMethodNotAllowed = &AppError{
		Code:       "METHOD_NOT_ALLOWED",
		Message:    "Método HTTP no permitido para esta ruta.",
		HTTPStatus: http.StatusMethodNotAllowed,
	}

	ErrLoginInProgress = &AppError{
		Code:       "LOGIN_IN_PROGRESS",
		Message:    "Ya hay un inicio de sesión en curso.",
		HTTPStatus: http.StatusConflict,
	}

	ErrTooManyRequests = &AppError{
		Code:       "RATE_LIMITED",
		Message:    "Demasiadas solicitudes, intente más tarde.",
		HTTPStatus: http.StatusTooManyRequests,
	}
)

// 5xx
var (
	ErrInternalServerError = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Ocurrió un error inesperado en el servidor.",
		HTTPStatus: http.StatusInternalServerError,
	}

	ErrBackendUnavailable = &AppError{
		Code:       "BACKEND_UNAVAILABLE",
		Message:    "El backend de administración no está disponible.",
		HTTPStatus: http.StatusBadGateway,
	}

	ErrGatewayTimeout = &AppError{
		Code:       "GATEWAY_TIMEOUT",
		Message:    "El backend de administración no respondió a tiempo.",
		HTTPStatus: http.StatusGatewayTimeout,
	}
)
