package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	Launches       *prometheus.CounterVec
	RecordsCreated *prometheus.CounterVec
	LaunchDuration prometheus.Histogram
	Distributions  prometheus.Counter
}

// New registers the builder metrics on reg. A nil reg leaves them
// unregistered, which tests rely on.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Launches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adbuilder",
			Name:      "launches_total",
			Help:      "Campaign launches by outcome.",
		}, []string{"outcome"}),
		RecordsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adbuilder",
			Name:      "records_created_total",
			Help:      "Records written by launches, by entity.",
		}, []string{"entity"}),
		LaunchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "adbuilder",
			Name:      "launch_duration_seconds",
			Help:      "Wall time of launches that passed validation.",
			Buckets:   prometheus.DefBuckets,
		}),
		Distributions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "adbuilder",
			Name:      "queue_distributions_total",
			Help:      "Confirmed queue-mode distributions.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Launches, m.RecordsCreated, m.LaunchDuration, m.Distributions)
	}
	return m
}
