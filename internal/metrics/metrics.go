// Package metrics exposes Prometheus counters for the person service.
package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace   = "person_api"
	HandlerPath = "/metrics"
)

type Recorder struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// New builds a Recorder on its own registry so tests can create as many as
// they like without duplicate registration panics.
func New() *Recorder {
	registry := prometheus.NewRegistry()
	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "service",
			Name:      "operations_total",
			Help:      "Person service operations by name and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	registry.MustRegister(
		operations,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Recorder{registry: registry, operations: operations}
}

func (r *Recorder) Observe(operation, outcome string) {
	r.operations.WithLabelValues(operation, outcome).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}
