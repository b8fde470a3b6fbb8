// Package pipeline wires NetworkCache, LinkIndex, EventFilter,
// TrajectoryExporter, and HeatmapSampler into one run, in the dependency
// order spec.md §2 lays out: NetworkCache -> LinkIndex -> EventFilter ->
// {TrajectoryExporter, HeatmapSampler}.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/NoahBjongHoKim/trafficsim/internal/columnar"
	"github.com/NoahBjongHoKim/trafficsim/internal/config"
	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
	"github.com/NoahBjongHoKim/trafficsim/internal/heatmap"
	"github.com/NoahBjongHoKim/trafficsim/internal/network"
	"github.com/NoahBjongHoKim/trafficsim/internal/trajectory"
)

// Config bundles a validated config.Config with the collaborators an
// orchestrator run needs that config.Load can't produce on its own: a
// logger, a metrics registry, and (for deterministic tests) a clock.
// Clock never influences pipeline correctness, which depends only on the
// simulation timestamps inside the event log — it exists purely so stage
// duration logging is reproducible under test, the same role
// server.Config.Clock plays in flow-ingest.
type Config struct {
	Settings config.Config
	Log      *slog.Logger
	Registry prometheus.Registerer
	Clock    clockwork.Clock
}

func (c *Config) setDefaults() {
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.Clock == nil {
		c.Clock = clockwork.NewRealClock()
	}
}

// Run executes one full pipeline pass: it loads and indexes the network,
// filters the event log into the intermediate table, then runs whichever
// of TrajectoryExporter/HeatmapSampler the config requests. A fatal error
// at any stage aborts the remaining stages and returns a wrapped error.
func Run(ctx context.Context, cfg Config) error {
	cfg.setDefaults()
	settings := cfg.Settings

	runStart := cfg.Clock.Now()

	netMetrics := network.NewMetrics(cfg.Registry)
	cache := network.NewNetworkCache(settings.NetworkSource, settings.NetworkCache,
		network.WithCacheLogger(cfg.Log), network.WithCacheMetrics(netMetrics))
	links, err := cache.Load(ctx)
	if err != nil {
		return fmt.Errorf("pipeline: load network: %w", err)
	}

	index, err := network.Build(links, network.WithLogger(cfg.Log), network.WithMetrics(netMetrics))
	if err != nil {
		return fmt.Errorf("pipeline: build link index: %w", err)
	}
	cfg.Log.Info("pipeline: link index built", "links", index.Len())

	intermediatePath := settings.Intermediate
	if intermediatePath == "" {
		f, err := os.CreateTemp("", "trafficsim-intermediate-*.duckdb")
		if err != nil {
			return fmt.Errorf("pipeline: create temp intermediate file: %w", err)
		}
		intermediatePath = f.Name()
		f.Close()
		os.Remove(intermediatePath)
		defer os.Remove(intermediatePath)
	}

	intermediateDB, err := columnar.Open(cfg.Log, intermediatePath)
	if err != nil {
		return fmt.Errorf("pipeline: open intermediate store: %w", err)
	}
	defer intermediateDB.Close()

	events, err := os.Open(settings.Events)
	if err != nil {
		return fmt.Errorf("pipeline: open event log: %w", err)
	}
	defer events.Close()

	filterWriter, err := filter.NewWriter(intermediateDB, cfg.Log)
	if err != nil {
		return fmt.Errorf("pipeline: init traversal writer: %w", err)
	}

	filterStart := cfg.Clock.Now()
	if err := filter.Run(ctx, events, index, filterWriter, filter.Config{
		ChunkSize:     settings.ChunkSize,
		WorkerCount:   settings.Workers,
		QueueCapacity: settings.QueueCapacity,
		Windows:       settings.Windows,
		Log:           cfg.Log,
		Metrics:       filter.NewMetrics(cfg.Registry),
	}); err != nil {
		return fmt.Errorf("pipeline: filter events: %w", err)
	}
	cfg.Log.Info("pipeline: stage 1 complete", "duration", cfg.Clock.Now().Sub(filterStart))

	if settings.TrajectoryOut != "" {
		if err := runTrajectory(ctx, cfg, settings, intermediateDB, index); err != nil {
			return err
		}
	}

	if settings.HeatmapOut != "" {
		if err := runHeatmap(ctx, cfg, settings, intermediateDB, index); err != nil {
			return err
		}
	}

	cfg.Log.Info("pipeline: run complete", "duration", cfg.Clock.Now().Sub(runStart))
	return nil
}

func runTrajectory(ctx context.Context, cfg Config, settings config.Config, intermediateDB *columnar.DB, index *network.LinkIndex) error {
	reader, err := trajectory.NewTraversalReader(ctx, intermediateDB)
	if err != nil {
		return fmt.Errorf("pipeline: open traversal reader: %w", err)
	}
	defer reader.Close()

	sink, closeSink, err := openTrajectorySink(settings)
	if err != nil {
		return fmt.Errorf("pipeline: open trajectory sink: %w", err)
	}
	defer closeSink()

	start := cfg.Clock.Now()
	if err := trajectory.Run(ctx, reader, index, sink, trajectory.Config{
		WorkerCount: settings.Workers,
		Log:         cfg.Log,
		Metrics:     trajectory.NewMetrics(cfg.Registry),
	}); err != nil {
		return fmt.Errorf("pipeline: export trajectories: %w", err)
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("pipeline: close trajectory sink: %w", err)
	}
	cfg.Log.Info("pipeline: stage 2 complete", "duration", cfg.Clock.Now().Sub(start))
	return nil
}

func openTrajectorySink(settings config.Config) (trajectory.Sink, func(), error) {
	switch settings.TrajectoryFormat {
	case "geojson":
		f, err := os.Create(settings.TrajectoryOut)
		if err != nil {
			return nil, nil, err
		}
		sink := trajectory.NewGeoJSONSink(f)
		return sink, func() { sink.Close(); f.Close() }, nil
	default:
		db, err := columnar.Open(slog.Default(), settings.TrajectoryOut)
		if err != nil {
			return nil, nil, err
		}
		sink, err := trajectory.NewColumnarSink(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return sink, func() { db.Close() }, nil
	}
}

func runHeatmap(ctx context.Context, cfg Config, settings config.Config, intermediateDB *columnar.DB, index *network.LinkIndex) error {
	traversals, err := heatmap.LoadTraversals(ctx, intermediateDB)
	if err != nil {
		return fmt.Errorf("pipeline: load traversals for heatmap: %w", err)
	}

	heatmapDB, err := columnar.Open(cfg.Log, settings.HeatmapOut)
	if err != nil {
		return fmt.Errorf("pipeline: open heatmap output: %w", err)
	}
	defer heatmapDB.Close()

	sink, err := heatmap.NewColumnarSink(heatmapDB)
	if err != nil {
		return fmt.Errorf("pipeline: init heatmap sink: %w", err)
	}

	start := cfg.Clock.Now()
	if err := heatmap.Run(ctx, traversals, index, sink, heatmap.Config{
		Interval:    settings.HeatmapInterval,
		WorkerCount: settings.Workers,
		Log:         cfg.Log,
		Metrics:     heatmap.NewMetrics(cfg.Registry),
	}); err != nil {
		return fmt.Errorf("pipeline: sample heatmap: %w", err)
	}
	cfg.Log.Info("pipeline: stage 3 complete", "duration", cfg.Clock.Now().Sub(start))
	return nil
}
