package heatmap

import (
	"context"
	"fmt"

	"github.com/NoahBjongHoKim/trafficsim/internal/columnar"
	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
)

// LoadTraversals reads the entire intermediate traversals table into memory,
// ordered by time_enter. Unlike trajectory's paged TraversalReader, stage 3
// is explicitly allowed to hold the full set resident (every timepoint's
// active-set scan needs to see all of it), so there is no batching here.
func LoadTraversals(ctx context.Context, db *columnar.DB) ([]filter.Traversal, error) {
	rows, err := db.QueryContext(ctx, "SELECT person, link_id, time_enter, time_leave, interval_id FROM traversals ORDER BY time_enter")
	if err != nil {
		return nil, fmt.Errorf("heatmap: query traversals: %w", err)
	}
	defer rows.Close()

	var out []filter.Traversal
	for rows.Next() {
		var t filter.Traversal
		if err := rows.Scan(&t.Person, &t.LinkID, &t.TimeEnter, &t.TimeLeave, &t.IntervalID); err != nil {
			return nil, fmt.Errorf("heatmap: scan traversal row: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("heatmap: read traversal rows: %w", err)
	}
	return out, nil
}
