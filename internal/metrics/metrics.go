package metrics

import (
	"time"

	"fieldbook/internal/database"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the store operation collectors exposed on /metrics.
type Metrics struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fieldbook",
			Subsystem: "store",
			Name:      "operations_total",
			Help:      "Gateway operations by name and outcome.",
		}, []string{"op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fieldbook",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Gateway operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
	}

	for _, c := range []prometheus.Collector{m.ops, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveStoreOp matches database.ObserverFunc.
func (m *Metrics) ObserveStoreOp(op string, err error, elapsed time.Duration) {
	m.ops.WithLabelValues(op, Outcome(err)).Inc()
	m.duration.WithLabelValues(op).Observe(elapsed.Seconds())
}

// Outcome names the result of a gateway call for the outcome label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case database.IsNotFound(err):
		return "not_found"
	case database.IsConnection(err):
		return "connection_error"
	}
	return "store_error"
}
