package metrics

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pkgerrors "github.com/angelmondragon/stockroom-backend/pkg/errors"
)

const resultOK = "ok"

// LifecycleMetrics counts requisition lifecycle operations by outcome.
type LifecycleMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewLifecycleMetrics registers the lifecycle metrics on the provided registerer.
func NewLifecycleMetrics(reg prometheus.Registerer) *LifecycleMetrics {
	if reg == nil {
		return &LifecycleMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "requisition_operation_total",
		Help: "Requisition lifecycle operations by result.",
	}, []string{"op", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "requisition_operation_duration_seconds",
		Help:    "Duration of requisition lifecycle operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	reg.MustRegister(operations, duration)
	return &LifecycleMetrics{
		operations: operations,
		duration:   duration,
	}
}

// Observe records one finished operation. The result label is "ok" or the
// lower-cased error code.
func (m *LifecycleMetrics) Observe(op string, started time.Time, err error) {
	if m == nil || m.operations == nil {
		return
	}
	op = normalizeLabel(op)
	m.operations.WithLabelValues(op, resultLabel(err)).Inc()
	m.duration.WithLabelValues(op).Observe(time.Since(started).Seconds())
}

func resultLabel(err error) string {
	if err == nil {
		return resultOK
	}
	return strings.ToLower(string(pkgerrors.CodeOf(err)))
}
