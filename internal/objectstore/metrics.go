package objectstore

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics observes object store operations. Implementations must be safe for
// concurrent use. A nil Metrics is valid everywhere in this package and is
// normalized to noopMetrics by NewClientFromConfig.
type Metrics interface {
	ObserveOp(operation string, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOp(string, time.Duration, error) {}

// PrometheusMetrics is a Metrics implementation backed by a caller-supplied
// Prometheus registry, so the object store's metrics share a registry with
// the rest of the process instead of depending on a global singleton.
type PrometheusMetrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewPrometheusMetrics registers the object store's metrics against reg.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	operationsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mediakit_objectstore_operations_total",
		Help: "Total number of object store operations by operation and status.",
	}, []string{"operation", "status"})

	operationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "mediakit_objectstore_operation_duration_milliseconds",
		Help:    "Duration of object store operations in milliseconds.",
		Buckets: []float64{5, 25, 100, 250, 500, 1000, 5000, 15000},
	}, []string{"operation"})

	reg.MustRegister(operationsTotal, operationDuration)

	return &PrometheusMetrics{
		operationsTotal:   operationsTotal,
		operationDuration: operationDuration,
	}
}

func (m *PrometheusMetrics) ObserveOp(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(float64(duration.Milliseconds()))
}
