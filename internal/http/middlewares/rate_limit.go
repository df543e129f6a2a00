package middlewares

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/dropDatabas3/adminconsole/internal/http/errors"
	"github.com/dropDatabas3/adminconsole/internal/observability/logger"
	"github.com/dropDatabas3/adminconsole/internal/rate"
)

// IPPathRateKey clave IP + path (sin leer el body).
func IPPathRateKey(r *http.Request) string {
	return clientIP(r) + "|" + r.URL.Path
}

// WithRateLimit corta con 429 cuando el limiter rechaza la clave. Si el
// limiter falla se deja pasar el request. limiter nil = no-op.
func WithRateLimit(limiter rate.Limiter, key func(*http.Request) string) Middleware {
	if key == nil {
		key = IPPathRateKey
	}
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), key(r))
			if err != nil {
				logger.From(r.Context()).Warn("rate limit error", logger.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if res.WindowTTL > 0 {
				resetAt := time.Now().Add(res.WindowTTL).Unix()
				w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt, 10))
			}
			if !res.Allowed {
				if res.RetryAfter > 0 {
					w.Header().Set("Retry-After", retryAfterSeconds(res.RetryAfter))
				}
				errors.WriteError(w, errors.ErrTooManyRequests)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(res.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}

// retryAfterSeconds redondea hacia arriba: una espera de 300ms es "1", nunca "0".
func retryAfterSeconds(d time.Duration) string {
	return strconv.FormatInt(int64(math.Ceil(d.Seconds())), 10)
}
