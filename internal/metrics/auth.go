package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Métricas Prometheus del servicio. Viven en un paquete propio para evitar
// ciclos de import entre auth, scope y HTTP.

var (
	TokensIssued = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerconnect_tokens_issued_total",
		Help: "Credenciales emitidas por clase",
	}, []string{"kind"})

	AuthFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerconnect_auth_failures_total",
		Help: "Fallas de autenticación por causa",
	}, []string{"reason"})

	Broadcasts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerconnect_broadcasts_total",
		Help: "Lotes reenviados al ledger por resultado",
	}, []string{"status"})

	BroadcastLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledgerconnect_broadcast_latency_ms",
		Help:    "Latencia del broadcast sincrónico en milisegundos",
		Buckets: prometheus.ExponentialBuckets(1, 2, 14),
	})

	DirectoryLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgerconnect_directory_lookups_total",
		Help: "Lookups de cuentas al ledger por resultado",
	}, []string{"status"})
)

// Register registra las métricas en el registry dado (o el default si es nil).
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	collectors := []prometheus.Collector{
		TokensIssued,
		AuthFailures,
		Broadcasts,
		BroadcastLatency,
		DirectoryLookups,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
