package detection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	attemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focuscrop_detection_attempts_total",
			Help: "Detector invocations by method and outcome",
		},
		[]string{"method", "outcome"},
	)

	stepDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "focuscrop_detection_step_duration_seconds",
			Help:    "Time spent in a single detector step",
			Buckets: []float64{.01, .05, .1, .25, .5, 1, 2, 3, 5, 8},
		},
		[]string{"method"},
	)

	resolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "focuscrop_detection_resolutions_total",
			Help: "Resolved detection chains by the method that produced the region",
		},
		[]string{"method"},
	)
)
