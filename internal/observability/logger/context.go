package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ToContext inyecta un logger en el contexto.
// Usado por middlewares para propagar un logger "scoped" con campos del request.
func ToContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// From extrae el logger del contexto.
// Si no hay logger en el contexto, retorna el singleton.
func From(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return L()
	}
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return L()
}

// WithFields agrega campos al logger del contexto y devuelve el contexto nuevo.
// Lo usa el middleware de workspace para que todo log posterior lleve workspace_id.
func WithFields(ctx context.Context, fields ...zap.Field) context.Context {
	return ToContext(ctx, From(ctx).With(fields...))
}
