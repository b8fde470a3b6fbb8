package heatmap

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	TimepointsProcessed prometheus.Counter
	CellsEmitted        prometheus.Counter
	LinksSkippedUnknown prometheus.Counter
	TimepointDuration   prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TimepointsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_heatmap_timepoints_processed_total",
			Help: "Total number of timepoints sampled.",
		}),
		CellsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_heatmap_cells_emitted_total",
			Help: "Total number of link-density cells written to the sink.",
		}),
		LinksSkippedUnknown: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_heatmap_links_skipped_unknown_total",
			Help: "Total number of active link_id occurrences skipped because they are not in the LinkIndex.",
		}),
		TimepointDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "trafficsim_heatmap_timepoint_duration_seconds",
			Help: "Duration of sampling one timepoint across every active link.",
		}),
	}
}
