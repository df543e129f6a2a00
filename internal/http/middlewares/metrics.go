package middlewares

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsOnce sync.Once
	metricsErr  error

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpInflight        *prometheus.GaugeVec
)

// RegisterHTTPMetrics inicializa las métricas HTTP (una sola vez) en reg.
func RegisterHTTPMetrics(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	metricsOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Número total de requests procesadas",
		}, []string{"method", "path", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latencia de los requests HTTP",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"})

		httpInflight = prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_inflight_requests",
			Help: "Requests en vuelo por método",
		}, []string{"method"})

		for _, c := range []prometheus.Collector{httpRequestsTotal, httpRequestDuration, httpInflight} {
			if err := registerCollector(reg, c); err != nil {
				metricsErr = err
				return
			}
		}
	})
	return metricsErr
}

// WithMetrics instrumenta requests HTTP (contadores, latencia, inflight).
// El label path es el patrón de chi cuando existe; si no, el path normalizado.
func WithMetrics() Middleware {
	return func(next http.Handler) http.Handler {
		if httpRequestsTotal == nil || httpRequestDuration == nil || httpInflight == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			method := strings.ToUpper(r.Method)
			httpInflight.WithLabelValues(method).Inc()
			start := time.Now()

			rec := &statusRecorder{ResponseWriter: w}
			defer func() {
				httpInflight.WithLabelValues(method).Dec()
				pathLabel := routeLabel(r)
				httpRequestDuration.WithLabelValues(method, pathLabel).Observe(time.Since(start).Seconds())

				status := rec.status
				if status == 0 {
					status = http.StatusOK
				}
				httpRequestsTotal.WithLabelValues(method, pathLabel, strconv.Itoa(status)).Inc()
			}()

			next.ServeHTTP(rec, r)
		})
	}
}

func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return normalizePath(r.URL.Path)
}

// registerCollector registra ignorando duplicados.
func registerCollector(reg prometheus.Registerer, collector prometheus.Collector) error {
	if err := reg.Register(collector); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

var (
	uuidSegmentRE  = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F-]{4}-[0-9a-fA-F-]{4,}$`)
	hexSegmentRE   = regexp.MustCompile(`^[0-9a-fA-F]{16,}$`)
	tokenSegmentRE = regexp.MustCompile(`^[A-Za-z0-9_-]{24,}$`)
)

// normalizePath reemplaza segmentos dinámicos (ids, uuids, tokens) por :param
// para no explotar la cardinalidad.
func normalizePath(p string) string {
	clean := strings.SplitN(p, "?", 2)[0]
	if clean == "" || clean == "/" {
		return "/"
	}
	var out []string
	for _, seg := range strings.Split(clean, "/") {
		if seg == "" {
			continue
		}
		if isDynamicSegment(seg) {
			out = append(out, ":param")
		} else {
			out = append(out, seg)
		}
	}
	if len(out) == 0 {
		return "/"
	}
	return "/" + strings.Join(out, "/")
}

func isDynamicSegment(seg string) bool {
	if len(seg) > 48 {
		return true
	}
	if uuidSegmentRE.MatchString(seg) || hexSegmentRE.MatchString(seg) || tokenSegmentRE.MatchString(seg) {
		return true
	}
	_, err := strconv.Atoi(seg)
	return err == nil
}
