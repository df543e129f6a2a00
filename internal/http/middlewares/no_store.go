package middlewares

import "net/http"

// WithNoStore agrega Cache-Control: no-store a la respuesta.
// Todo /api de la consola lo usa: las respuestas dependen de la sesión.
func WithNoStore() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-store")
			next.ServeHTTP(w, r)
		})
	}
}

// WithCacheControl agrega Cache-Control con TTL configurable (assets estáticos).
func WithCacheControl(directive string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", directive)
			next.ServeHTTP(w, r)
		})
	}
}
