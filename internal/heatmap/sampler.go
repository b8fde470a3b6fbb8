package heatmap

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
	"github.com/NoahBjongHoKim/trafficsim/internal/network"
	"github.com/NoahBjongHoKim/trafficsim/internal/timeutil"
)

// Config tunes a Run. Start and End bound the sampled range [t0, t1]; when
// either is nil it is derived from the Traversal set (the minimum
// time_enter and maximum time_leave, respectively), per spec.md §4.5.
type Config struct {
	Interval    int
	Start       *int
	End         *int
	WorkerCount int
	Log         *slog.Logger
	Metrics     *Metrics
}

func (c *Config) setDefaults() {
	if c.Interval <= 0 {
		c.Interval = 300
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = runtime.NumCPU()
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.Metrics == nil {
		c.Metrics = NewMetrics(nil)
	}
}

// timepoints returns t0, t0+interval, ... up to and including the first
// timepoint >= t1, per spec.md §4.5. Note the final point may overshoot t1
// by up to interval-1 seconds; that point is still sampled.
func timepoints(t0, t1, interval int) []int {
	if interval <= 0 {
		return nil
	}
	var out []int
	for t := t0; ; t += interval {
		out = append(out, t)
		if t >= t1 {
			break
		}
	}
	return out
}

// bounds derives [t0, t1] from cfg, falling back to the Traversal set's
// observed range wherever either endpoint is unset.
func bounds(cfg Config, traversals []filter.Traversal) (int, int) {
	if cfg.Start != nil && cfg.End != nil {
		return *cfg.Start, *cfg.End
	}
	t0, t1 := 0, 0
	for i, t := range traversals {
		if i == 0 || t.TimeEnter < t0 {
			t0 = t.TimeEnter
		}
		if i == 0 || t.TimeLeave > t1 {
			t1 = t.TimeLeave
		}
	}
	if cfg.Start != nil {
		t0 = *cfg.Start
	}
	if cfg.End != nil {
		t1 = *cfg.End
	}
	return t0, t1
}

// sampleAt scans the full Traversal set for the vehicles active at t under
// the half-open rule [time_enter, time_leave), counts them per link_id, and
// emits one Cell per link known to index. Mirrors
// parquet_to_heatmap.py's process_timepoint_batch mask-and-count exactly,
// rather than an incremental sweep, since every timepoint must be safe to
// compute independently of the others.
func sampleAt(t int, traversals []filter.Traversal, index *network.LinkIndex, metrics *Metrics) []Cell {
	counts := make(map[string]int)
	for _, trav := range traversals {
		if trav.TimeEnter <= t && t < trav.TimeLeave {
			counts[trav.LinkID]++
		}
	}

	cells := make([]Cell, 0, len(counts))
	timestamp := timeutil.Render(t)
	for linkID, count := range counts {
		link, ok := index.Get(linkID)
		if !ok {
			metrics.LinksSkippedUnknown.Inc()
			continue
		}
		cells = append(cells, Cell{
			LinkID:           linkID,
			X:                link.Center[0],
			Y:                link.Center[1],
			Timestamp:        timestamp,
			TimepointSeconds: t,
			VehicleCount:     count,
		})
	}
	return cells
}

// Run samples every timepoint in [t0, t1] at cfg.Interval and writes the
// resulting Cells to sink. Timepoints are independent, so each is computed
// concurrently across a pond worker pool, the same bounded group/wait shape
// TrajectoryExporter uses per batch.
func Run(ctx context.Context, traversals []filter.Traversal, index *network.LinkIndex, sink Sink, cfg Config) error {
	cfg.setDefaults()

	t0, t1 := bounds(cfg, traversals)
	points := timepoints(t0, t1, cfg.Interval)
	if len(points) == 0 {
		cfg.Log.Warn("heatmap: no timepoints to sample", "t0", t0, "t1", t1, "interval", cfg.Interval)
		return nil
	}

	pool := pond.NewResultPool[[]Cell](cfg.WorkerCount)
	group := pool.NewGroupContext(ctx)
	for _, t := range points {
		t := t
		group.SubmitErr(func() ([]Cell, error) {
			start := time.Now()
			cells := sampleAt(t, traversals, index, cfg.Metrics)
			cfg.Metrics.TimepointDuration.Observe(time.Since(start).Seconds())
			cfg.Metrics.TimepointsProcessed.Inc()
			return cells, nil
		})
	}
	results, err := group.Wait()
	if err != nil {
		return fmt.Errorf("heatmap: sample timepoints: %w", err)
	}

	for _, cells := range results {
		if len(cells) == 0 {
			continue
		}
		if err := sink.WriteCells(ctx, cells); err != nil {
			return fmt.Errorf("heatmap: write cells: %w", err)
		}
		cfg.Metrics.CellsEmitted.Add(float64(len(cells)))
	}
	return nil
}
