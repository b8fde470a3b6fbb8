package trajectory

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TraversalsProcessed prometheus.Counter
	TraversalsSkipped   prometheus.Counter
	PointsEmitted       prometheus.Counter
	BatchDuration       prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TraversalsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_trajectory_traversals_processed_total",
			Help: "Total number of Traversals expanded into trajectory points.",
		}),
		TraversalsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_trajectory_traversals_skipped_total",
			Help: "Total number of Traversals skipped for an unknown link or negative duration.",
		}),
		PointsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_trajectory_points_emitted_total",
			Help: "Total number of interpolated trajectory points written to the sink.",
		}),
		BatchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "trafficsim_trajectory_batch_duration_seconds",
			Help: "Duration of interpolating one batch of Traversals.",
		}),
	}
}
