// Package metrics expõe os coletores Prometheus do motor de estoque.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovementsRecorded movimentos aceitos no razão, por tipo (IN/OUT).
	MovementsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "almoxarifado",
		Subsystem: "stock",
		Name:      "movements_recorded_total",
		Help:      "Movimentos registrados no razão de estoque, por tipo.",
	}, []string{"type"})

	// NotificationsEmitted notificações de transição de status emitidas.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "almoxarifado",
		Subsystem: "stock",
		Name:      "notifications_emitted_total",
		Help:      "Notificações emitidas por transição de status, pelo status novo.",
	}, []string{"status"})

	// RecomputeRetries retentativas da sequência de recomputação por falha de serialização.
	RecomputeRetries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "almoxarifado",
		Subsystem: "stock",
		Name:      "recompute_retries_total",
		Help:      "Retentativas da recomputação após falha de serialização.",
	})

	// DispatchFailures falhas ao entregar notificações ao coletor externo.
	DispatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "almoxarifado",
		Subsystem: "notify",
		Name:      "dispatch_failures_total",
		Help:      "Notificações descartadas por falha de despacho.",
	})
)
