package filter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters emitted while streaming and filtering events.
// WindowRejections and LinkRejections are tracked separately (rather than
// one combined "discarded" counter) so operators can tell a misconfigured
// window list apart from a misconfigured link set.
type Metrics struct {
	RecordsRead         prometheus.Counter
	RecordsMalformed    prometheus.Counter
	WindowRejections    prometheus.Counter
	LinkRejections      prometheus.Counter
	UnpairedEnters      prometheus.Counter
	TraversalsEmitted   prometheus.Counter
	ChunksRead          prometheus.Counter
	ChunkQueueDepth     prometheus.Gauge
	ChunkProcessingTime prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RecordsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_filter_records_read_total",
			Help: "Total number of event records read from the source log.",
		}),
		RecordsMalformed: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_filter_records_malformed_total",
			Help: "Total number of event records skipped for missing or non-integer fields.",
		}),
		WindowRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_filter_window_rejections_total",
			Help: "Total number of matched pairs discarded because time_enter fell outside every configured window.",
		}),
		LinkRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_filter_link_rejections_total",
			Help: "Total number of matched pairs discarded because the link is not in the LinkIndex.",
		}),
		UnpairedEnters: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_filter_unpaired_enters_total",
			Help: "Total number of EnterLink events with no matching LeaveLink in the stream.",
		}),
		TraversalsEmitted: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_filter_traversals_emitted_total",
			Help: "Total number of Traversal rows written to the intermediate table.",
		}),
		ChunksRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_filter_chunks_read_total",
			Help: "Total number of reader chunks produced.",
		}),
		ChunkQueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "trafficsim_filter_chunk_queue_depth",
			Help: "Current number of chunks buffered between the reader and the worker pool.",
		}),
		ChunkProcessingTime: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "trafficsim_filter_chunk_processing_duration_seconds",
			Help: "Duration of a single worker processing one chunk.",
		}),
	}
}
