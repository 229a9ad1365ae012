package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the outbox relay.
type Metrics struct {
	PendingDepth    prometheus.Gauge
	PublishedTotal  prometheus.Counter
	PublishFailures prometheus.Counter
	BatchSize       prometheus.Histogram
	PollDuration    prometheus.Histogram
}

// New registers the outbox metrics with the default registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		PendingDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "confessional_outbox_pending_total",
			Help: "Current number of unpublished outbox entries",
		}),
		PublishedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_outbox_published_total",
			Help: "Outbox entries published to Kafka",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_outbox_publish_failures_total",
			Help: "Outbox fetch or publish failures",
		}),
		BatchSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "confessional_outbox_batch_size",
			Help:    "Entries fetched per poll",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}),
		PollDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "confessional_outbox_poll_duration_seconds",
			Help:    "Duration of one poll cycle",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}
}

func (m *Metrics) SetPendingDepth(count int64)        { m.PendingDepth.Set(float64(count)) }
func (m *Metrics) IncPublished()                      { m.PublishedTotal.Inc() }
func (m *Metrics) IncPublishFailures()                { m.PublishFailures.Inc() }
func (m *Metrics) ObserveBatchSize(size int)          { m.BatchSize.Observe(float64(size)) }
func (m *Metrics) ObservePollDuration(seconds float64) { m.PollDuration.Observe(seconds) }
