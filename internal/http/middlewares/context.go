package middlewares

import (
	"context"

	"github.com/dropDatabas3/adminconsole/internal/console"
)

type ctxKey int

const (
	ctxRequestID ctxKey = iota
	ctxWorkspace
)

func setRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, ctxRequestID, rid)
}

// GetRequestID devuelve el request id del contexto ("" si no hay).
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxRequestID).(string)
	return v
}

// SetWorkspace inyecta el workspace resuelto por WithWorkspace.
func SetWorkspace(ctx context.Context, ws *console.Workspace) context.Context {
	return context.WithValue(ctx, ctxWorkspace, ws)
}

// GetWorkspace devuelve el workspace del request (nil fuera de WithWorkspace).
func GetWorkspace(ctx context.Context) *console.Workspace {
	v, _ := ctx.Value(ctxWorkspace).(*console.Workspace)
	return v
}
