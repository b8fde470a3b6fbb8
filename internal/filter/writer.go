package filter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NoahBjongHoKim/trafficsim/internal/columnar"
)

// Writer serializes Traversal batches to a single DuckDB table. It is not
// safe for concurrent use: the pipeline runs exactly one writer goroutine,
// per spec's "a single writer task serialises worker output."
type Writer struct {
	db  *columnar.DB
	log *slog.Logger
}

func NewWriter(db *columnar.DB, log *slog.Logger) (*Writer, error) {
	if log == nil {
		log = slog.Default()
	}
	ctx := context.Background()
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS traversals (
			person      VARCHAR,
			link_id     VARCHAR,
			time_enter  INTEGER,
			time_leave  INTEGER,
			interval_id INTEGER
		)`); err != nil {
		return nil, fmt.Errorf("filter: create traversals table: %w", err)
	}
	return &Writer{db: db, log: log}, nil
}

// WriteBatch appends a batch of Traversals to the intermediate table. Row
// order is not preserved or guaranteed, per spec's "the output intermediate
// is not sorted."
func (w *Writer) WriteBatch(ctx context.Context, batch []Traversal) error {
	if len(batch) == 0 {
		return nil
	}

	tx, err := w.db.Conn().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("filter: begin write tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO traversals (person, link_id, time_enter, time_leave, interval_id) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("filter: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range batch {
		if _, err := stmt.ExecContext(ctx, t.Person, t.LinkID, t.TimeEnter, t.TimeLeave, t.IntervalID); err != nil {
			tx.Rollback()
			return fmt.Errorf("filter: insert traversal: %w", err)
		}
	}
	return tx.Commit()
}
