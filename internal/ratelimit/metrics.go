package ratelimit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Rejected  *prometheus.CounterVec
	FailOpens prometheus.Counter
}

// NewMetrics registers rate limit metrics with the default registry. Call once per process.
func NewMetrics() *Metrics {
	return &Metrics{
		Rejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confessional_rate_limit_rejections_total",
			Help: "Requests rejected by rate limiting, by class",
		}, []string{"class"}),
		FailOpens: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_rate_limit_fail_open_total",
			Help: "Requests let through because the limiter store was unavailable",
		}),
	}
}

func (m *Metrics) IncRejected(class Class) {
	m.Rejected.WithLabelValues(string(class)).Inc()
}

func (m *Metrics) IncFailOpen() {
	m.FailOpens.Inc()
}
