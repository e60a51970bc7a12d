package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// generations counts pipeline runs by kind (message|enhance|image) and
	// outcome (ok or the error class).
	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "campaign_generations_total",
			Help: "Generation pipeline runs by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)

	// pollAttempts records how many status probes a finished poll loop used.
	pollAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "image_poll_attempts",
			Help:    "Status probes per image task poll loop.",
			Buckets: []float64{1, 2, 3, 5, 8, 12, 20, 30},
		},
	)

	// pollInflight gauges poll loops currently holding a concurrency slot.
	pollInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "image_polls_inflight",
			Help: "Image task poll loops currently running.",
		},
	)
)

func init() {
	prometheus.MustRegister(generations, pollAttempts, pollInflight)
}
