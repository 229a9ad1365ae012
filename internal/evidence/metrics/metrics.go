package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	ProviderCalls     *prometheus.CounterVec
	Deletions         *prometheus.CounterVec
	PermanentFailures prometheus.Counter
	QueueDepth        prometheus.Gauge
}

// New registers evidence metrics with the default registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		ProviderCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confessional_evidence_provider_calls_total",
			Help: "Evidence provider calls by operation and outcome",
		}, []string{"op", "outcome"}),
		Deletions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confessional_evidence_deletions_total",
			Help: "Evidence deletion attempts by path (inline, retry) and outcome",
		}, []string{"path", "outcome"}),
		PermanentFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_evidence_deletion_permanent_failures_total",
			Help: "Evidence deletions abandoned after the retry limit",
		}),
		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "confessional_evidence_deletion_queue_depth",
			Help: "Live entries in the evidence deletion queue",
		}),
	}
}

func (m *Metrics) IncProviderCall(op, outcome string) {
	m.ProviderCalls.WithLabelValues(op, outcome).Inc()
}

func (m *Metrics) IncDeletion(path, outcome string) {
	m.Deletions.WithLabelValues(path, outcome).Inc()
}

func (m *Metrics) IncPermanentFailure() {
	m.PermanentFailures.Inc()
}

func (m *Metrics) SetQueueDepth(n int64) {
	m.QueueDepth.Set(float64(n))
}
