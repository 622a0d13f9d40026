// Package metrics holds the Prometheus collectors shared by both bridges.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trooba_http"

// Client call outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeConnectTimeout = "connect_timeout"
	OutcomeReadTimeout    = "read_timeout"
	OutcomeError          = "error"
)

// Metrics holds all collectors. A nil *Metrics records nothing.
type Metrics struct {
	ClientRequests *prometheus.CounterVec
	PhaseDuration  *prometheus.HistogramVec
	ServerRequests *prometheus.CounterVec
	CodecFailures  *prometheus.CounterVec
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		ClientRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "client_requests_total",
				Help:      "Outbound calls by outcome",
			},
			[]string{"outcome"},
		),
		PhaseDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "client_phase_duration_seconds",
				Help:      "Duration of outbound call phases in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"phase"},
		),
		ServerRequests: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "server_requests_total",
				Help:      "Inbound calls by response status",
			},
			[]string{"status"},
		),
		CodecFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "codec_failures_total",
				Help:      "Context codec failures that were skipped",
			},
			[]string{"side", "direction"}, // side=client/server, direction=serialize/deserialize
		),
	}
}

func (m *Metrics) ClientOutcome(outcome string) {
	if m == nil {
		return
	}
	m.ClientRequests.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.PhaseDuration.WithLabelValues(phase).Observe(d.Seconds())
}

func (m *Metrics) ServerStatus(code int) {
	if m == nil {
		return
	}
	m.ServerRequests.WithLabelValues(strconv.Itoa(code)).Inc()
}

func (m *Metrics) CodecFailure(side, direction string) {
	if m == nil {
		return
	}
	m.CodecFailures.WithLabelValues(side, direction).Inc()
}
