package trajectory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/NoahBjongHoKim/trafficsim/internal/network"
)

// Config tunes a Run.
type Config struct {
	BatchSize   int
	WorkerCount int
	Log         *slog.Logger
	Metrics     *Metrics
}

func (c *Config) setDefaults() {
	if c.BatchSize <= 0 {
		c.BatchSize = 10000
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

// Run pages Traversals out of reader in batches, interpolates each
// Traversal in a batch concurrently across a worker pool, and writes the
// resulting points to sink, one batch at a time. Because a batch's worth
// of interpolation is bounded and known up front, this uses
// pond.NewResultPool's group/wait barrier rather than a continuous
// streaming pool: the right tool for a finite, collect-then-continue unit
// of work (see controlplane/telemetry's circuit-latency fan-out for the
// same shape).
func Run(ctx context.Context, reader *TraversalReader, index *network.LinkIndex, sink Sink, cfg Config) error {
	cfg.setDefaults()

	pool := pond.NewResultPool[[]Point](cfg.WorkerCount)

	for {
		batch, err := reader.NextBatch(cfg.BatchSize)
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("trajectory: read batch: %w", err)
		}
		done := errors.Is(err, io.EOF)

		if len(batch) > 0 {
			start := time.Now()
			group := pool.NewGroupContext(ctx)
			for _, trav := range batch {
				trav := trav
				group.SubmitErr(func() ([]Point, error) {
					return Interpolate(trav, index), nil
				})
			}
			results, werr := group.Wait()
			if werr != nil {
				return fmt.Errorf("trajectory: interpolate batch: %w", werr)
			}
			cfg.Metrics.BatchDuration.Observe(time.Since(start).Seconds())

			for _, points := range results {
				if len(points) == 0 {
					cfg.Metrics.TraversalsSkipped.Inc()
					continue
				}
				cfg.Metrics.TraversalsProcessed.Inc()
				cfg.Metrics.PointsEmitted.Add(float64(len(points)))
				if err := sink.WritePoints(ctx, points); err != nil {
					return fmt.Errorf("trajectory: write points: %w", err)
				}
			}
		}

		if done {
			return nil
		}
	}
}
