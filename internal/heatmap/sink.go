package heatmap

import (
	"context"
	"fmt"

	"github.com/NoahBjongHoKim/trafficsim/internal/columnar"
)

// Sink accepts batches of sampled Cells as the HeatmapSampler produces them.
type Sink interface {
	WriteCells(ctx context.Context, cells []Cell) error
}

// ColumnarSink writes Cells into a "heatmap_cells" table in a columnar.DB.
type ColumnarSink struct {
	db *columnar.DB
}

// NewColumnarSink creates the heatmap_cells table (if absent) in db and
// returns a Sink that appends to it.
func NewColumnarSink(db *columnar.DB) (*ColumnarSink, error) {
	_, err := db.ExecContext(context.Background(), `
		CREATE TABLE IF NOT EXISTS heatmap_cells (
			link_id VARCHAR,
			x DOUBLE,
			y DOUBLE,
			timestamp VARCHAR,
			timepoint_seconds INTEGER,
			vehicle_count INTEGER
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("heatmap: create table: %w", err)
	}
	return &ColumnarSink{db: db}, nil
}

func (s *ColumnarSink) WriteCells(ctx context.Context, cells []Cell) error {
	if len(cells) == 0 {
		return nil
	}
	tx, err := s.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("heatmap: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO heatmap_cells (link_id, x, y, timestamp, timepoint_seconds, vehicle_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("heatmap: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, c := range cells {
		if _, err := stmt.ExecContext(ctx, c.LinkID, c.X, c.Y, c.Timestamp, c.TimepointSeconds, c.VehicleCount); err != nil {
			tx.Rollback()
			return fmt.Errorf("heatmap: insert cell: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("heatmap: commit: %w", err)
	}
	return nil
}
