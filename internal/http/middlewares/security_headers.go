package middlewares

import (
	"net/http"
	"strings"
)

// Políticas CSP usadas por el servidor.
const (
	APICSP = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'self'"
	SPACSP = "default-src 'self'; img-src 'self' data:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none'; base-uri 'self'"
)

// isHTTPS detecta si el request llegó por HTTPS (directo o detrás de proxy).
func isHTTPS(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return false
}

// WithSecurityHeaders inyecta cabeceras de seguridad por defecto.
// csp vacío usa la política estricta de API; la SPA pasa la suya.
func WithSecurityHeaders(csp string) Middleware {
	if csp == "" {
		csp = APICSP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			// Referrer y MIME sniffing
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("X-Content-Type-Options", "nosniff")

			// DNS prefetch y cross-domain policies
			h.Set("X-DNS-Prefetch-Control", "off")
			h.Set("X-Permitted-Cross-Domain-Policies", "none")
			h.Set("Cross-Origin-Resource-Policy", "same-site")

			// Clickjacking
			h.Set("X-Frame-Options", "DENY")

			h.Set("Content-Security-Policy", csp)

			h.Set("Permissions-Policy", "geolocation=(), microphone=(), camera=(), payment=()")

			// HSTS si HTTPS
			if isHTTPS(r) {
				h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}
