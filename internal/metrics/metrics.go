// Package metrics exposes operation counters for the record services.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "recordkeep"

// OutcomeOK labels operations that returned no error.
const OutcomeOK = "ok"

// Collector is a prometheus.Collector for service operations.
type Collector struct {
	operations        *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
}

// NewCollector returns a new Collector.
func NewCollector() *Collector {
	return &Collector{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "The number of service operations by outcome.",
			}, []string{"service", "operation", "outcome"},
		),
		operationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "The time taken to run a service operation.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			}, []string{"service", "operation"},
		),
	}
}

// Describe is part of the prometheus.Collector interface.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.operations.Describe(ch)
	c.operationDuration.Describe(ch)
}

// Collect is part of the prometheus.Collector interface.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.operations.Collect(ch)
	c.operationDuration.Collect(ch)
}

// Observe records one finished operation. A nil Collector is a no-op.
func (c *Collector) Observe(service, operation, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	if outcome == "" {
		outcome = OutcomeOK
	}
	c.operations.WithLabelValues(service, operation, outcome).Inc()
	c.operationDuration.WithLabelValues(service, operation).Observe(elapsed.Seconds())
}

// Handler registers c on a fresh registry, alongside the Go runtime
// collectors, and returns the scrape handler for it.
func Handler(c *Collector) (http.Handler, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(c); err != nil {
		return nil, err
	}
	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), nil
}
