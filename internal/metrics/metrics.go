package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "mathai"

// Metrics owns its registry so several instances can live in one process (tests, embedded servers).
// All methods are safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	questions          *prometheus.CounterVec
	capabilityCalls    *prometheus.CounterVec
	capabilityDuration *prometheus.HistogramVec
	agentIterations    prometheus.Histogram
	activeSessions     prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		questions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "questions_total",
				Help:      "Questions answered, by router strategy and outcome",
			},
			[]string{"strategy", "outcome"},
		),
		capabilityCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "capability_invocations_total",
				Help:      "Capability runs, by capability and outcome",
			},
			[]string{"capability", "outcome"},
		),
		capabilityDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "capability_duration_seconds",
				Help:      "Capability run latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"capability"},
		),
		agentIterations: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "agent_iterations",
				Help:      "Agent loop iterations used per question",
				Buckets:   []float64{1, 2, 3, 5, 8},
			},
		),
		activeSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Sessions currently held in memory",
			},
		),
	}
	m.registry.MustRegister(
		m.questions,
		m.capabilityCalls,
		m.capabilityDuration,
		m.agentIterations,
		m.activeSessions,
	)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObserveQuestion(strategy string, err error) {
	if m == nil {
		return
	}
	m.questions.WithLabelValues(strategy, outcome(err)).Inc()
}

// ObserveCapability satisfies capability.Recorder.
func (m *Metrics) ObserveCapability(name string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.capabilityCalls.WithLabelValues(name, outcome(err)).Inc()
	m.capabilityDuration.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveAgentIterations(n int) {
	if m == nil {
		return
	}
	m.agentIterations.Observe(float64(n))
}

func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
