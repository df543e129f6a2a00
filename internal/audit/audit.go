// Package audit registra eventos de seguridad (login, logout, cambios de datos)
// como logs estructurados bajo el logger "audit".
package audit

import (
	"context"

	"go.uber.org/zap"

	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

// Eventos conocidos.
const (
	EventLoginOK      = "auth.login.ok"
	EventLoginFailed  = "auth.login.failed"
	EventLogout       = "auth.logout"
	EventTokenRefresh = "auth.token.refresh"
	EventPostCreated  = "post.created"
	EventPostUpdated  = "post.updated"
	EventPostDeleted  = "post.deleted"
)

// Log escribe un evento de auditoría con los campos del logger del contexto
// (request_id, etc.).
func Log(ctx context.Context, event string, fields ...zap.Field) {
	l := logger.From(ctx).Named("audit")
	l.Info(event, append([]zap.Field{zap.String("event", event)}, fields...)...)
}
