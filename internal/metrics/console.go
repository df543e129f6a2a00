package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas de dominio de la consola. Viven en un paquete aparte para que
// auth/dict/stores no dependan del paquete http (se conectan vía hooks en app).

var (
	LoginTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_login_total",
		Help: "Intentos de login por resultado",
	}, []string{"result"}) // result: ok|expired_resume|no_token|error|busy

	LoginInflight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_login_inflight",
		Help: "Logins en curso",
	})

	LogoutRemoteFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "console_logout_remote_failures_total",
		Help: "Fallas del logout remoto (ignoradas localmente)",
	})

	DictRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_dict_refresh_total",
		Help: "Refrescos del cache de diccionarios por resultado",
	}, []string{"result"}) // result: ok|error

	DictTypes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_dict_types",
		Help: "Cantidad de tipos de diccionario en cache",
	})

	PersistFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "console_persist_failures_total",
		Help: "Fallas al persistir snapshots de stores",
	}, []string{"store"}) // store: access|user|dict

	WorkspacesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "console_workspaces_active",
		Help: "Workspaces vivos en memoria",
	})
)

// Register registra las métricas de la consola en el registry indicado (o el default si es nil).
// Es idempotente: ignora AlreadyRegisteredError.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		LoginTotal,
		LoginInflight,
		LogoutRemoteFailures,
		DictRefreshTotal,
		DictTypes,
		PersistFailures,
		WorkspacesActive,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
