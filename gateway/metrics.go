package gateway

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultSuccess = "success"
	resultFailure = "failure"
)

// Metrics counts what the gateway does with rejected requests.
type Metrics struct {
	// RefreshTotal counts refresh round trips by result.
	RefreshTotal *prometheus.CounterVec

	// QueuedTotal counts requests that waited on a refresh already in flight.
	QueuedTotal prometheus.Counter

	// RetriesTotal counts requests sent a second time.
	RetriesTotal prometheus.Counter
}

// NewMetrics creates the gateway collectors and registers them with reg. A nil
// reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RefreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "sanctyr",
				Subsystem: "gateway",
				Name:      "refresh_total",
				Help:      "Total number of credential refreshes",
			},
			[]string{"result"},
		),
		QueuedTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sanctyr",
				Subsystem: "gateway",
				Name:      "queued_requests_total",
				Help:      "Total number of requests queued behind an in-flight refresh",
			},
		),
		RetriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "sanctyr",
				Subsystem: "gateway",
				Name:      "retries_total",
				Help:      "Total number of requests retried after a 401",
			},
		),
	}
}

func (m *Metrics) recordRefresh(err error) {
	if err != nil {
		m.RefreshTotal.WithLabelValues(resultFailure).Inc()
		return
	}
	m.RefreshTotal.WithLabelValues(resultSuccess).Inc()
}
