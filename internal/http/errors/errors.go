package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/dropDatabas3/adminconsole/internal/api"
	"github.com/dropDatabas3/adminconsole/internal/auth"
	"github.com/dropDatabas3/adminconsole/internal/post"
)

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// FromError traduce errores de las capas de dominio a AppError. Lo que no
// reconoce es un 500 que conserva la causa.
func FromError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stderrors.Is(err, api.ErrUnauthorized):
		return ErrSessionExpired.WithCause(err)
	case stderrors.Is(err, auth.ErrLoginInProgress):
		return ErrLoginInProgress.WithCause(err)
	case stderrors.Is(err, context.DeadlineExceeded):
		return ErrGatewayTimeout.WithCause(err)
	}

	var ve *post.ValidationError
	if stderrors.As(err, &ve) {
		return ErrMissingFields.WithDetail(ve.Error()).WithCause(err)
	}

	if ae, ok := api.AsAPIError(err); ok {
		if ae.Status >= 500 {
			return ErrBackendUnavailable.WithDetail(ae.Msg).WithCause(err)
		}
		return ErrBackendRejected.WithDetail(ae.Msg).WithCause(err)
	}

	return ErrInternalServerError.WithCause(err)
}

// WriteError escribe la respuesta JSON del error.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
