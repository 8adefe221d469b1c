package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Toggle outcomes
const (
	OutcomeCast      = "cast"
	OutcomeRetracted = "retracted"
	OutcomeError     = "error"
)

// Race kinds
const (
	RaceDuplicate = "duplicate"
	RaceNotFound  = "not_found"
)

// VoteMetrics tracks vote toggles. A nil *VoteMetrics records nothing.
type VoteMetrics struct {
	Toggles    *prometheus.CounterVec
	Races      *prometheus.CounterVec
	ToggleTime prometheus.Histogram
}

// NewVoteMetrics registers the vote collectors on reg
func NewVoteMetrics(reg prometheus.Registerer, namespace string) *VoteMetrics {
	factory := promauto.With(reg)

	return &VoteMetrics{
		Toggles: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_toggled_total",
				Help:      "Total number of vote toggles by outcome",
			},
			[]string{"outcome"},
		),
		Races: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vote_races_total",
				Help:      "Concurrent toggles that lost a race and were absorbed",
			},
			[]string{"kind"},
		),
		ToggleTime: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "vote_toggle_duration_seconds",
				Help:      "Histogram of vote toggle latency",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
			},
		),
	}
}

func (m *VoteMetrics) ObserveToggle(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Toggles.WithLabelValues(outcome).Inc()
	m.ToggleTime.Observe(elapsed.Seconds())
}

func (m *VoteMetrics) ObserveRace(kind string) {
	if m == nil {
		return
	}
	m.Races.WithLabelValues(kind).Inc()
}

// HTTPMetrics tracks requests by chi route pattern
type HTTPMetrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

func NewHTTPMetrics(reg prometheus.Registerer, namespace string) *HTTPMetrics {
	factory := promauto.With(reg)

	return &HTTPMetrics{
		Requests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		Duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (m *HTTPMetrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.Duration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
