package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Expiry sweep metrics
	SweepLicensesChecked prometheus.Counter
	SweepAlertsSent      *prometheus.CounterVec
	SweepErrors          *prometheus.CounterVec
	SweepDuration        prometheus.Histogram

	// HTTP metrics
	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		SweepLicensesChecked: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_licenses_checked_total",
			Help:      "Total number of licenses examined by expiry sweeps",
		}),
		SweepAlertsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_alerts_sent_total",
			Help:      "Total number of successfully dispatched expiry alerts",
		}, []string{"channel", "level"}),
		SweepErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_errors_total",
			Help:      "Total number of failed alert dispatch attempts",
		}, []string{"channel"}),
		SweepDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Time spent running expiry sweeps",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"method", "path", "status"}),
		RequestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}

// NewTestMetrics registers against a throwaway registry so parallel tests
// don't collide on the default one.
func NewTestMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		SweepLicensesChecked: factory.NewCounter(prometheus.CounterOpts{Name: "sweep_licenses_checked_total"}),
		SweepAlertsSent:      factory.NewCounterVec(prometheus.CounterOpts{Name: "sweep_alerts_sent_total"}, []string{"channel", "level"}),
		SweepErrors:          factory.NewCounterVec(prometheus.CounterOpts{Name: "sweep_errors_total"}, []string{"channel"}),
		SweepDuration:        factory.NewHistogram(prometheus.HistogramOpts{Name: "sweep_duration_seconds"}),
		RequestDuration:      factory.NewHistogramVec(prometheus.HistogramOpts{Name: "http_request_duration_seconds"}, []string{"method", "path", "status"}),
		RequestTotal:         factory.NewCounterVec(prometheus.CounterOpts{Name: "http_requests_total"}, []string{"method", "path", "status"}),
		DatabaseOperations:   factory.NewCounterVec(prometheus.CounterOpts{Name: "database_operations_total"}, []string{"operation", "status"}),
	}
}
