// Package observability exposes engine metrics in Prometheus format.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recompute outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeIntegrity = "integrity_error"
	OutcomeError     = "error"
)

// Metrics holds the engine's collectors. A nil *Metrics is valid and
// records nothing, so callers never need to guard.
type Metrics struct {
	registry *prometheus.Registry

	recomputeTotal    *prometheus.CounterVec
	recomputeDuration prometheus.Histogram
	unlocksTotal      prometheus.Counter
	recsPersisted     prometheus.Counter
	reinforcements    prometheus.Counter
	stateWarnings     prometheus.Counter
	hookFailures      *prometheus.CounterVec
	httpRequests      *prometheus.CounterVec
	httpLatency       *prometheus.HistogramVec
}

// NewMetrics registers all collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		recomputeTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillforge_recompute_total",
			Help: "Learner recomputes by outcome",
		}, []string{"outcome"}),
		recomputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "skillforge_recompute_duration_seconds",
			Help:    "Wall time of a full learner recompute",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		unlocksTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "skillforge_unlocks_total",
			Help: "Skills newly unlocked",
		}),
		recsPersisted: f.NewCounter(prometheus.CounterOpts{
			Name: "skillforge_recommendations_persisted_total",
			Help: "Recommendations written as active",
		}),
		reinforcements: f.NewCounter(prometheus.CounterOpts{
			Name: "skillforge_reinforcements_total",
			Help: "Skill practices recorded from completed activities",
		}),
		stateWarnings: f.NewCounter(prometheus.CounterOpts{
			Name: "skillforge_invalid_state_warnings_total",
			Help: "Stored skill states that had to be clamped",
		}),
		hookFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillforge_hook_failures_total",
			Help: "Post-recompute hook failures by hook",
		}, []string{"hook"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "skillforge_http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"method", "route", "status"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skillforge_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveRecompute(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.recomputeTotal.WithLabelValues(outcome).Inc()
	m.recomputeDuration.Observe(d.Seconds())
}

func (m *Metrics) AddUnlocks(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.unlocksTotal.Add(float64(n))
}

func (m *Metrics) AddRecommendationsPersisted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.recsPersisted.Add(float64(n))
}

func (m *Metrics) AddReinforcements(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.reinforcements.Add(float64(n))
}

func (m *Metrics) IncStateWarning() {
	if m == nil {
		return
	}
	m.stateWarnings.Inc()
}

func (m *Metrics) IncHookFailure(hook string) {
	if m == nil {
		return
	}
	m.hookFailures.WithLabelValues(hook).Inc()
}

func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
