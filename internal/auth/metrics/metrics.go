package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for login.
type Metrics struct {
	Logins       *prometheus.CounterVec
	AuthFailures prometheus.Counter
}

// New registers auth metrics with the default registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confessional_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_auth_failures_total",
			Help: "Total number of failed credential checks",
		}),
	}
}

func (m *Metrics) IncLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncAuthFailure() {
	m.AuthFailures.Inc()
}
