// Package metrics exposes Prometheus collectors for operation calls and the
// outbound requests they issue.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcpchecker/kanban-mcp/pkg/gateway"
)

const namespace = "kanban_mcp"

type Metrics struct {
	registry       *prometheus.Registry
	calls          *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
}

// New creates collectors registered on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_calls_total",
			Help:      "Operation calls by operation name and outcome.",
		}, []string{"operation", "outcome"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "remote_request_duration_seconds",
			Help:      "Duration of requests sent to the remote Kanban service.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "method", "code"}),
	}

	m.registry.MustRegister(
		m.calls,
		m.remoteDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveCall counts one finished operation call.
func (m *Metrics) ObserveCall(operation string, err error) {
	m.calls.WithLabelValues(operation, gateway.Outcome(err)).Inc()
}

// InstrumentTransport wraps next so every outbound request is timed, labelled
// with the operation that issued it.
func (m *Metrics) InstrumentTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return promhttp.InstrumentRoundTripperDuration(m.remoteDuration, next,
		promhttp.WithLabelFromCtx("operation", gateway.OperationFromContext),
	)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
