package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for scenario runs. A nil *Metrics or a
// disabled configuration is a no-op; callers never need to guard.
type Metrics struct {
	config MetricsConfig

	decisionsTotal       *prometheus.CounterVec
	constraintRejections *prometheus.CounterVec
	rankerInvocations    *prometheus.CounterVec
	yearSolveDuration    prometheus.Histogram
	runsStarted          prometheus.Counter
	runsCompleted        *prometheus.CounterVec

	registry *prometheus.Registry
	server   *http.Server
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// No-op metrics instance.
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		decisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decisions_total",
				Help:      "Technology decisions committed, by switch type",
			},
			[]string{"switch_type"},
		),
		constraintRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "constraint_rejections_total",
				Help:      "Candidate resource requests rejected, by resource category",
			},
			[]string{"resource"},
		),
		rankerInvocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ranker_invocations_total",
				Help:      "Ranker invocations, by scoring mode",
			},
			[]string{"mode"},
		),
		yearSolveDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "year_solve_duration_seconds",
				Help:      "Wall time to solve one simulated year",
				Buckets:   prometheus.DefBuckets,
			},
		),
		runsStarted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_started_total",
				Help:      "Scenario runs started",
			},
		),
		runsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_completed_total",
				Help:      "Scenario runs completed, by outcome",
			},
			[]string{"status"},
		),
	}

	registry.MustRegister(
		m.decisionsTotal,
		m.constraintRejections,
		m.rankerInvocations,
		m.yearSolveDuration,
		m.runsStarted,
		m.runsCompleted,
	)

	return m, nil
}

// StartServer starts the metrics HTTP endpoint. No-op when disabled.
func (m *Metrics) StartServer() error {
	if m == nil || m.registry == nil {
		return nil
	}
	path := m.config.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))

	m.server = &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()
	return nil
}

// Close shuts down the metrics endpoint if one is running.
func (m *Metrics) Close() error {
	if m == nil || m.server == nil {
		return nil
	}
	return m.server.Close()
}

// ObserveDecision counts a committed technology decision.
func (m *Metrics) ObserveDecision(switchType string) {
	if m == nil || m.decisionsTotal == nil {
		return
	}
	m.decisionsTotal.WithLabelValues(switchType).Inc()
}

// ObserveConstraintRejection counts a rejected candidate resource request.
func (m *Metrics) ObserveConstraintRejection(resource string) {
	if m == nil || m.constraintRejections == nil {
		return
	}
	m.constraintRejections.WithLabelValues(resource).Inc()
}

// ObserveRankerInvocation counts a ranker call.
func (m *Metrics) ObserveRankerInvocation(mode string) {
	if m == nil || m.rankerInvocations == nil {
		return
	}
	m.rankerInvocations.WithLabelValues(mode).Inc()
}

// ObserveYearDuration records the wall time spent solving one year.
func (m *Metrics) ObserveYearDuration(seconds float64) {
	if m == nil || m.yearSolveDuration == nil {
		return
	}
	m.yearSolveDuration.Observe(seconds)
}

// ObserveRunStarted counts a scenario run start.
func (m *Metrics) ObserveRunStarted() {
	if m == nil || m.runsStarted == nil {
		return
	}
	m.runsStarted.Inc()
}

// ObserveRunCompleted counts a scenario run completion by outcome.
func (m *Metrics) ObserveRunCompleted(status string) {
	if m == nil || m.runsCompleted == nil {
		return
	}
	m.runsCompleted.WithLabelValues(status).Inc()
}
