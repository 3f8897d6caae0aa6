package focuscrop

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cropAreaRatio = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "focuscrop_crop_area_ratio",
		Help:    "Crop area as a fraction of the source image area",
		Buckets: []float64{.05, .1, .2, .3, .4, .5, .6, .7, .8, .9, 1},
	},
	[]string{"method"},
)
