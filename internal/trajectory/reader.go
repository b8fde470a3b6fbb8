package trajectory

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/NoahBjongHoKim/trafficsim/internal/columnar"
	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
)

// TraversalReader pages rows out of the intermediate traversals table so
// that stage 2 never needs the whole table resident in memory at once.
type TraversalReader struct {
	rows *sql.Rows
}

func NewTraversalReader(ctx context.Context, db *columnar.DB) (*TraversalReader, error) {
	rows, err := db.QueryContext(ctx, "SELECT person, link_id, time_enter, time_leave, interval_id FROM traversals")
	if err != nil {
		return nil, fmt.Errorf("trajectory: query traversals: %w", err)
	}
	return &TraversalReader{rows: rows}, nil
}

// NextBatch returns up to n Traversals, or io.EOF once the table is
// exhausted (along with any rows read before exhaustion).
func (r *TraversalReader) NextBatch(n int) ([]filter.Traversal, error) {
	batch := make([]filter.Traversal, 0, n)
	for len(batch) < n {
		if !r.rows.Next() {
			if err := r.rows.Err(); err != nil {
				return batch, fmt.Errorf("trajectory: read traversal row: %w", err)
			}
			return batch, io.EOF
		}
		var t filter.Traversal
		if err := r.rows.Scan(&t.Person, &t.LinkID, &t.TimeEnter, &t.TimeLeave, &t.IntervalID); err != nil {
			return batch, fmt.Errorf("trajectory: scan traversal row: %w", err)
		}
		batch = append(batch, t)
	}
	return batch, nil
}

func (r *TraversalReader) Close() error {
	return r.rows.Close()
}
