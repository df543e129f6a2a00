package middlewares

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// WithRequestID genera o propaga un Request ID único para cada request.
// Si el cliente envía X-Request-ID (razonable), lo usa. Si no, genera uno nuevo.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if rid == "" || len(rid) > 128 {
				rid = uuid.NewString()
			}

			w.Header().Set(requestIDHeader, rid)
			next.ServeHTTP(w, r.WithContext(setRequestID(r.Context(), rid)))
		})
	}
}
