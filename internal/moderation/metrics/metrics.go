package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Reports  prometheus.Counter
	Removals prometheus.Counter
	Bans     prometheus.Counter
}

// New registers moderation metrics with the default registry. Call once per process.
func New() *Metrics {
	return &Metrics{
		Reports: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_reports_total",
			Help: "Reports filed against content",
		}),
		Removals: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_content_removals_total",
			Help: "Content items soft-removed by moderators",
		}),
		Bans: promauto.NewCounter(prometheus.CounterOpts{
			Name: "confessional_author_bans_total",
			Help: "Ban requests issued from reported content",
		}),
	}
}

func (m *Metrics) IncReport()  { m.Reports.Inc() }
func (m *Metrics) IncRemoval() { m.Removals.Inc() }
func (m *Metrics) IncBan()     { m.Bans.Inc() }
