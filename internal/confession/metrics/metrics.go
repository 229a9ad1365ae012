package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Created   *prometheus.CounterVec
	Reactions *prometheus.CounterVec
	FeedSize  prometheus.Histogram
}

// New registers confession metrics with the default registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		Created: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confessional_confessions_created_total",
			Help: "Confessions created, labelled by whether an image was attached",
		}, []string{"with_image"}),
		Reactions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "confessional_reactions_total",
			Help: "Likes, unlikes and comments",
		}, []string{"kind"}),
		FeedSize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "confessional_feed_page_items",
			Help:    "Items returned per feed page",
			Buckets: []float64{0, 1, 5, 10, 20, 50},
		}),
	}
}

func (m *Metrics) IncCreated(withImage bool) {
	label := "false"
	if withImage {
		label = "true"
	}
	m.Created.WithLabelValues(label).Inc()
}

func (m *Metrics) IncReaction(kind string) {
	m.Reactions.WithLabelValues(kind).Inc()
}

func (m *Metrics) ObserveFeedSize(n int) {
	m.FeedSize.Observe(float64(n))
}
