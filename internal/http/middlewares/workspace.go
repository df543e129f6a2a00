package middlewares

import (
	"net/http"
	"time"

	"github.com/dropDatabas3/adminconsole/internal/console"
	"github.com/dropDatabas3/adminconsole/internal/http/errors"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
)

// CookieConfig cookie que identifica el workspace del navegador.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// WithWorkspace resuelve (o crea) el workspace del request a partir de la
// cookie y lo inyecta en el contexto junto con workspace_id en el logger.
func WithWorkspace(mgr *console.Manager, cc CookieConfig) Middleware {
	if cc.Name == "" {
		cc.Name = "console_sid"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var id string
			if c, err := r.Cookie(cc.Name); err == nil {
				id = c.Value
			}

			ws, created, err := mgr.Resolve(ctx, id)
			if err != nil {
				logger.From(ctx).Error("workspace resolve failed", logger.Err(err))
				errors.WriteError(w, errors.ErrInternalServerError.WithCause(err))
				return
			}
			if created || id != ws.ID {
				http.SetCookie(w, &http.Cookie{
					Name:     cc.Name,
					Value:    ws.ID,
					Path:     "/",
					HttpOnly: true,
					Secure:   cc.Secure || isHTTPS(r),
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(cc.TTL.Seconds()),
				})
			}

			ctx = SetWorkspace(ctx, ws)
			ctx = logger.WithFields(ctx, logger.WorkspaceID(ws.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
