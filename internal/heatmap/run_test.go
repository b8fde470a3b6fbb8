package heatmap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahBjongHoKim/trafficsim/internal/columnar"
	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
)

func TestRunSamplesEveryTimepoint(t *testing.T) {
	idx := buildTwoLinkIndex(t)

	db, err := columnar.OpenMemory(nil)
	require.NoError(t, err)
	defer db.Close()

	fw, err := filter.NewWriter(db, nil)
	require.NoError(t, err)
	require.NoError(t, fw.WriteBatch(context.Background(), []filter.Traversal{
		{Person: "A", LinkID: "L1", TimeEnter: 100, TimeLeave: 200},
		{Person: "B", LinkID: "L1", TimeEnter: 150, TimeLeave: 180},
		{Person: "C", LinkID: "L2", TimeEnter: 160, TimeLeave: 170},
	}))

	traversals, err := LoadTraversals(context.Background(), db)
	require.NoError(t, err)
	require.Len(t, traversals, 3)

	sink, err := NewColumnarSink(db)
	require.NoError(t, err)

	start, end := 100, 200
	cfg := Config{Interval: 35, Start: &start, End: &end, WorkerCount: 2}
	require.NoError(t, Run(context.Background(), traversals, idx, sink, cfg))

	row := db.QueryRowContext(context.Background(), "SELECT count(*) FROM heatmap_cells")
	var count int
	require.NoError(t, row.Scan(&count))
	// timepoints 100,135,170,205 emit one L1 cell, one L1 cell, one L1 cell
	// (L1 count=2, C already left by 170), and zero cells at 205 (nothing
	// still active) = 3 rows total.
	assert.Equal(t, 3, count)
}
