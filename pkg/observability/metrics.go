package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the application collectors.
type Metrics struct {
	Transitions    *prometheus.CounterVec
	Submissions    *prometheus.CounterVec
	Rejections     *prometheus.CounterVec
	RoadmapBuilds  prometheus.Counter
	RemoteFailures *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentorai_flow_transitions_total",
				Help: "Accepted flow actions by flow and action",
			},
			[]string{"flow", "action"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentorai_onboarding_submissions_total",
				Help: "Onboarding submissions by outcome",
			},
			[]string{"outcome"},
		),
		Rejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentorai_flow_rejections_total",
				Help: "Flow actions rejected by validation",
			},
			[]string{"flow", "action"},
		),
		RoadmapBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mentorai_roadmap_builds_total",
			Help: "Roadmaps generated",
		}),
		RemoteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mentorai_remote_failures_total",
				Help: "Failed calls to the hosted backend",
			},
			[]string{"operation"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mentorai_http_request_duration_seconds",
				Help:    "HTTP request latency by route and status",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
	reg.MustRegister(m.Transitions, m.Submissions, m.Rejections, m.RoadmapBuilds, m.RemoteFailures, m.HTTPDuration)
	return m
}

// ObserveHTTP records one request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// RemoteFailure counts a failed backend call.
func (m *Metrics) RemoteFailure(op string) {
	if m == nil {
		return
	}
	m.RemoteFailures.WithLabelValues(op).Inc()
}
