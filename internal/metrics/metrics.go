// Package metrics exposes Prometheus counters for key validation, key
// lifecycle and usage-event recording.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Validation outcomes.
const (
	OutcomeAllow = "allow"
	OutcomeDeny  = "deny"
	OutcomeError = "error"
)

// Usage event results.
const (
	ResultRecorded = "recorded"
	ResultFailed   = "failed"
)

// Metrics holds the service collectors and the registry they are registered in.
// All methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	validations *prometheus.CounterVec
	issued      prometheus.Counter
	revoked     prometheus.Counter
	usageEvents *prometheus.CounterVec
	registry    *prometheus.Registry
}

// New creates a Metrics instance with its own registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "keygate"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "validations_total",
			Help:      "API key validations by outcome",
		},
		[]string{"outcome"},
	)

	m.issued = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "apikey",
		Name:      "issued_total",
		Help:      "API keys issued",
	})

	m.revoked = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "apikey",
		Name:      "revocations_total",
		Help:      "API key revocation requests that completed",
	})

	m.usageEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "usage",
			Name:      "events_total",
			Help:      "Usage events handed to durable storage by result",
		},
		[]string{"result"},
	)

	m.registry.MustRegister(
		m.validations,
		m.issued,
		m.revoked,
		m.usageEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	for _, outcome := range []string{OutcomeAllow, OutcomeDeny, OutcomeError} {
		m.validations.WithLabelValues(outcome)
	}

	for _, result := range []string{ResultRecorded, ResultFailed} {
		m.usageEvents.WithLabelValues(result)
	}

	return m
}

// ObserveValidation counts one validation outcome.
func (m *Metrics) ObserveValidation(outcome string) {
	if m == nil {
		return
	}

	m.validations.WithLabelValues(outcome).Inc()
}

// KeyIssued counts an issued key.
func (m *Metrics) KeyIssued() {
	if m == nil {
		return
	}

	m.issued.Inc()
}

// KeyRevoked counts a completed revocation.
func (m *Metrics) KeyRevoked() {
	if m == nil {
		return
	}

	m.revoked.Inc()
}

// ObserveUsageEvent counts a usage event append result.
func (m *Metrics) ObserveUsageEvent(result string) {
	if m == nil {
		return
	}

	m.usageEvents.WithLabelValues(result).Inc()
}

// Registry returns the registry the collectors are registered in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
