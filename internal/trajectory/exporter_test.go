package trajectory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahBjongHoKim/trafficsim/internal/columnar"
	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
)

func TestRunExportsAllTraversals(t *testing.T) {
	idx := buildIndex(t)

	db, err := columnar.OpenMemory(nil)
	require.NoError(t, err)
	defer db.Close()

	fw, err := filter.NewWriter(db, nil)
	require.NoError(t, err)
	require.NoError(t, fw.WriteBatch(context.Background(), []filter.Traversal{
		{Person: "A", LinkID: "L1", TimeEnter: 100, TimeLeave: 105, IntervalID: 0},
		{Person: "B", LinkID: "L1", TimeEnter: 200, TimeLeave: 200, IntervalID: 0}, // delta=0, emits exactly one point
	}))

	sink, err := NewColumnarSink(db)
	require.NoError(t, err)

	reader, err := NewTraversalReader(context.Background(), db)
	require.NoError(t, err)
	defer reader.Close()

	cfg := Config{BatchSize: 1, WorkerCount: 2}
	require.NoError(t, Run(context.Background(), reader, idx, sink, cfg))

	row := db.QueryRowContext(context.Background(), "SELECT count(*) FROM trajectory_points")
	var count int
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 7, count, "A's 6 points plus B's single zero-duration point")
}
