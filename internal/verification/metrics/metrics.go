package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Registrations   prometheus.Counter
	Transitions     *prometheus.CounterVec
	BanChanges      *prometheus.CounterVec
	PendingEvidence prometheus.Counter
}

// New registers verification metrics with the default registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		Registrations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_registrations_total",
			Help: "Principals registered and awaiting adjudication",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confessional_verification_transitions_total",
			Help: "Verification status transitions by target status and outcome",
		}, []string{"to", "outcome"}),
		BanChanges: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confessional_ban_changes_total",
			Help: "Ban flag changes that took effect",
		}, []string{"banned"}),
		PendingEvidence: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_evidence_deletions_scheduled_total",
			Help: "Evidence deletions scheduled after a terminal transition",
		}),
	}
}

func (m *Metrics) IncRegistration() {
	m.Registrations.Inc()
}

func (m *Metrics) IncTransition(to, outcome string) {
	m.Transitions.WithLabelValues(to, outcome).Inc()
}

func (m *Metrics) IncBanChange(banned bool) {
	label := "false"
	if banned {
		label = "true"
	}
	m.BanChanges.WithLabelValues(label).Inc()
}

func (m *Metrics) IncEvidenceScheduled() {
	m.PendingEvidence.Inc()
}
