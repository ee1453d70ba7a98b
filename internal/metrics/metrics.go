// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "packadmin"

var (
	EditorOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "editor_operations_total",
		Help:      "Editing commands applied to open sessions, by operation and result.",
	}, []string{"op", "result"})

	PackSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pack_saves_total",
		Help:      "Pack persistence attempts, by mode (create or update) and result.",
	}, []string{"mode", "result"})

	PackCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pack_cache_requests_total",
		Help:      "Pack cache lookups, by result (hit, miss or error).",
	}, []string{"result"})

	OpenSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "editor_open_sessions",
		Help:      "Editing sessions currently held by the registry.",
	})
)

// Result labels an outcome as "ok" or "error".
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
