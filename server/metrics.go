package server

import (
	"net/http"
	"time"

	"github.com/func/cfn-sagemaker/handler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects handler invocation metrics.
type Metrics struct {
	registry *prometheus.Registry

	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	runs        *prometheus.CounterVec

	// types are the type names used as label values.
	types map[string]bool
}

// NewMetrics creates a new metrics collector with its own registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cfn_sagemaker",
				Name:      "invocations_total",
				Help:      "Handler invocations by type, action, status and error code.",
			},
			[]string{"type", "action", "status", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "cfn_sagemaker",
				Name:      "invocation_duration_seconds",
				Help:      "Duration of handler invocations.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type", "action"},
		),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "cfn_sagemaker",
				Name:      "runs_total",
				Help:      "Completed runs by type, action and final status.",
			},
			[]string{"type", "action", "status"},
		),
	}
	m.registry.MustRegister(m.invocations, m.duration, m.runs)
	return m
}

func (m *Metrics) observeInvocation(req *handler.Request, ev *handler.ProgressEvent, d time.Duration) {
	if m == nil {
		return
	}
	typ, action := m.labels(req)
	m.invocations.WithLabelValues(typ, action, string(ev.Status), string(ev.ErrorCode)).Inc()
	m.duration.WithLabelValues(typ, action).Observe(d.Seconds())
}

func (m *Metrics) observeRun(req *handler.Request, status handler.Status) {
	if m == nil {
		return
	}
	typ, action := m.labels(req)
	m.runs.WithLabelValues(typ, action, string(status)).Inc()
}

// unknown replaces label values that come from requests but are not known.
const unknown = "unknown"

func (m *Metrics) setTypes(types []string) {
	m.types = make(map[string]bool, len(types))
	for _, t := range types {
		m.types[t] = true
	}
}

// labels returns the type and action label values for a request. Request
// bodies are not trusted, so only registered types and supported actions are
// used as is.
func (m *Metrics) labels(req *handler.Request) (typ, action string) {
	typ, action = unknown, unknown
	if m.types[req.TypeName] {
		typ = req.TypeName
	}
	if a, ok := handler.ParseAction(string(req.Action)); ok {
		action = string(a)
	}
	return typ, action
}

// Handler returns an http handler serving the collected metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
