package heatmap

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
	"github.com/NoahBjongHoKim/trafficsim/internal/network"
)

func buildTwoLinkIndex(t *testing.T) *network.LinkIndex {
	t.Helper()
	idx, err := network.Build([]network.Link{
		{ID: "L1", FromNode: "A", ToNode: "B", Geometry: network.NewSingleGeometry(orb.LineString{{0, 0}, {10, 0}})},
		{ID: "L2", FromNode: "C", ToNode: "D", Geometry: network.NewSingleGeometry(orb.LineString{{0, 10}, {10, 10}})},
	})
	require.NoError(t, err)
	return idx
}

// TestSampleAtCountsActiveVehicles covers spec.md §8 seed scenario 5:
// Traversals (A,L1,100,200), (B,L1,150,180), (C,L2,160,170).
func TestSampleAtCountsActiveVehicles(t *testing.T) {
	idx := buildTwoLinkIndex(t)
	traversals := []filter.Traversal{
		{Person: "A", LinkID: "L1", TimeEnter: 100, TimeLeave: 200},
		{Person: "B", LinkID: "L1", TimeEnter: 150, TimeLeave: 180},
		{Person: "C", LinkID: "L2", TimeEnter: 160, TimeLeave: 170},
	}
	metrics := NewMetrics(nil)

	countsAt := func(t int) map[string]int {
		cells := sampleAt(t, traversals, idx, metrics)
		out := make(map[string]int, len(cells))
		for _, c := range cells {
			out[c.LinkID] = c.VehicleCount
		}
		return out
	}

	assert.Equal(t, map[string]int{"L1": 1}, countsAt(100))
	assert.Equal(t, map[string]int{"L1": 1}, countsAt(135))
	assert.Equal(t, map[string]int{"L1": 2, "L2": 1}, countsAt(165))
	assert.Equal(t, map[string]int{"L1": 2}, countsAt(170), "C left at exactly 170, excluded by the half-open rule; A and B are still on L1")
}

func TestSampleAtSkipsLinksNotInIndex(t *testing.T) {
	idx := buildTwoLinkIndex(t)
	traversals := []filter.Traversal{{Person: "A", LinkID: "Lx", TimeEnter: 0, TimeLeave: 10}}
	metrics := NewMetrics(nil)

	cells := sampleAt(5, traversals, idx, metrics)
	assert.Empty(t, cells)
}

func TestTimepointsIncludesFirstPointAtOrPastEnd(t *testing.T) {
	assert.Equal(t, []int{100, 135, 170, 205}, timepoints(100, 200, 35))
	assert.Equal(t, []int{100}, timepoints(100, 100, 35))
}

func TestBoundsDerivedFromTraversalsWhenUnset(t *testing.T) {
	traversals := []filter.Traversal{
		{Person: "A", LinkID: "L1", TimeEnter: 100, TimeLeave: 200},
		{Person: "C", LinkID: "L2", TimeEnter: 50, TimeLeave: 170},
	}
	t0, t1 := bounds(Config{}, traversals)
	assert.Equal(t, 50, t0)
	assert.Equal(t, 200, t1)
}
