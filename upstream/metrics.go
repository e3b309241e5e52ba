package upstream

import (
	"time"

	"github.com/kroma-labs/sentinel-upstream/httpclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values of upstream_requests_total.
const (
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeAbandoned = "abandoned"
)

// Failure class label values of upstream_request_failures_total.
const (
	ClassClient  = "client"
	ClassServer  = "server"
	ClassTimeout = "timeout"
)

// Metrics holds the Prometheus collectors of a Caller.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	FailuresTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg, or with
// prometheus.DefaultRegisterer when reg is nil. It panics if they are
// already registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "upstream",
				Name:      "requests_total",
				Help:      "Upstream requests by method and outcome",
			},
			[]string{"method", "outcome"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "upstream",
				Name:      "request_failures_total",
				Help:      "Failed upstream requests by class (client, server, timeout)",
			},
			[]string{"class"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Time from dispatch until the outcome is known",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 15),
			},
			[]string{"method"},
		),
	}
}

// FailureClass returns the failures_total class of err.
func FailureClass(err *httpclient.TransportError) string {
	switch {
	case err.IsTimeout():
		return ClassTimeout
	case err.Code >= 500:
		return ClassServer
	default:
		return ClassClient
	}
}

func (m *Metrics) observe(method, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, outcome).Inc()
	m.RequestDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) failure(err *httpclient.TransportError) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(FailureClass(err)).Inc()
}
