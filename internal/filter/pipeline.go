package filter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/NoahBjongHoKim/trafficsim/internal/network"
)

// Config tunes a Run. WorkerCount and QueueCapacity default to NumCPU and
// 4*WorkerCount respectively, per spec's concurrency defaults.
type Config struct {
	ChunkSize     int
	WorkerCount   int
	QueueCapacity int
	Windows       []SnapshotWindow
	Log           *slog.Logger
	Metrics       *Metrics
}

func (c *Config) setDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 50000
	}
	if c.WorkerCount <= 0 {
		c.WorkerCount = runtime.NumCPU()
	}
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = 4 * c.WorkerCount
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.Metrics == nil {
		c.Metrics = NewMetrics(nil)
	}
}

// Run streams events from src, filters and pairs them against index and
// the configured windows, and writes surviving Traversals through w. It
// returns once the source is exhausted and every chunk has been written,
// or immediately on the first fatal error from any stage.
func Run(ctx context.Context, src io.Reader, index *network.LinkIndex, w *Writer, cfg Config) error {
	cfg.setDefaults()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	reader := NewReader(src, cfg.ChunkSize, cfg.Log, cfg.Metrics)

	chunks := make(chan []rawEvent, cfg.QueueCapacity)
	batches := make(chan []Traversal, cfg.QueueCapacity)

	var readErr error
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		defer close(chunks)
		for {
			chunk, err := reader.NextChunk()
			if err == io.EOF {
				return
			}
			if err != nil {
				readErr = err
				cancel()
				return
			}
			select {
			case chunks <- chunk:
				cfg.Metrics.ChunkQueueDepth.Set(float64(len(chunks)))
			case <-ctx.Done():
				return
			}
		}
	}()

	var workers sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		workers.Add(1)
		go func() {
			defer workers.Done()
			for {
				select {
				case chunk, ok := <-chunks:
					if !ok {
						return
					}
					batch := processChunk(chunk, cfg.Windows, index, cfg.Metrics)
					select {
					case batches <- batch:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		workers.Wait()
		close(batches)
	}()

	var writeErr error
	for batch := range batches {
		if writeErr != nil {
			continue // drain the channel so workers never block, but stop writing after the first failure
		}
		if err := w.WriteBatch(ctx, batch); err != nil {
			writeErr = fmt.Errorf("filter: write batch: %w", err)
			cancel()
		}
	}

	<-readDone

	if readErr != nil {
		return fmt.Errorf("filter: read source: %w", readErr)
	}
	if writeErr != nil {
		return writeErr
	}
	return nil
}
