// Package metrics records per-operation Prometheus metrics for the file
// manager. Metrics live on a private registry; exposing them is left to the
// embedding host.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"fsguard/pkg/fileops"
)

// Result label values.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	AccessDenied      *prometheus.CounterVec
	ErrorsByKind      *prometheus.CounterVec
}

// New creates a metrics collector on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsguard_operations_total",
				Help: "Total number of file operations by result",
			},
			[]string{"operation", "result"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fsguard_operation_duration_seconds",
				Help:    "File operation duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"operation"},
		),
		AccessDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsguard_access_denied_total",
				Help: "Requests rejected for touching paths outside the allowed directories",
			},
			[]string{"operation"},
		),
		ErrorsByKind: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fsguard_errors_total",
				Help: "Failed file operations by error kind",
			},
			[]string{"operation", "kind"},
		),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Observe records one finished operation.
func (m *Metrics) Observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}

	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	if err == nil {
		m.OperationsTotal.WithLabelValues(operation, ResultOK).Inc()
		return
	}

	kind := fileops.KindOf(err)
	m.OperationsTotal.WithLabelValues(operation, ResultError).Inc()
	m.ErrorsByKind.WithLabelValues(operation, kind.String()).Inc()
	if kind == fileops.KindAccessDenied {
		m.AccessDenied.WithLabelValues(operation).Inc()
	}
}
