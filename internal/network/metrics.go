package network

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters and histograms emitted while loading and
// indexing the road network.
type Metrics struct {
	CacheHits           prometheus.Counter
	CacheMisses         prometheus.Counter
	CacheWriteDuration  prometheus.Histogram
	SourceLoadDuration  prometheus.Histogram
	LinksIndexed        prometheus.Counter
	LinksSkippedGeomErr prometheus.Counter
	IndexBuildDuration  prometheus.Histogram
}

// NewMetrics registers the network package's metrics against reg. Pass a
// prometheus.Registry, or nil to create the metrics without registering
// them anywhere.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_network_cache_hits_total",
			Help: "Total number of network loads served from a valid cache file.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_network_cache_misses_total",
			Help: "Total number of network loads that required reading the authoritative source.",
		}),
		CacheWriteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "trafficsim_network_cache_write_duration_seconds",
			Help: "Duration of writing the network cache side file.",
		}),
		SourceLoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "trafficsim_network_source_load_duration_seconds",
			Help: "Duration of reading the authoritative network source.",
		}),
		LinksIndexed: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_network_links_indexed_total",
			Help: "Total number of links successfully hydrated into the LinkIndex.",
		}),
		LinksSkippedGeomErr: factory.NewCounter(prometheus.CounterOpts{
			Name: "trafficsim_network_links_skipped_geometry_errors_total",
			Help: "Total number of links skipped at index build time due to degenerate or unreadable geometry.",
		}),
		IndexBuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name: "trafficsim_network_index_build_duration_seconds",
			Help: "Duration of building the LinkIndex from hydrated link rows.",
		}),
	}
}
