package trajectory

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
	"github.com/NoahBjongHoKim/trafficsim/internal/network"
)

func buildIndex(t *testing.T) *network.LinkIndex {
	t.Helper()
	idx, err := network.Build([]network.Link{
		{ID: "L1", FromNode: "A", ToNode: "B", Geometry: network.NewSingleGeometry(orb.LineString{{0, 0}, {10, 0}})},
	})
	require.NoError(t, err)
	return idx
}

func TestInterpolateSingleTraversalSingleWindow(t *testing.T) {
	idx := buildIndex(t)
	trav := filter.Traversal{Person: "A", LinkID: "L1", TimeEnter: 110, TimeLeave: 115, IntervalID: 0}

	points := Interpolate(trav, idx)

	require.Len(t, points, 6, "a traversal of delta=5 yields delta+1=6 points")
	assert.Equal(t, "2024/01/01 00:01:50", points[0].Timestamp)
	assert.Equal(t, "2024/01/01 00:01:55", points[5].Timestamp)
	for _, p := range points {
		assert.Equal(t, points[0].Bearing, p.Bearing, "bearing is identical across the sequence")
	}
}

func TestInterpolateEnterEqualsLeaveEmitsSinglePoint(t *testing.T) {
	idx := buildIndex(t)
	trav := filter.Traversal{Person: "A", LinkID: "L1", TimeEnter: 150, TimeLeave: 150, IntervalID: 0}

	points := Interpolate(trav, idx)
	require.Len(t, points, 1, "delta=0 still yields exactly delta+1=1 point, at travel_start")
	assert.Equal(t, "2024/01/01 00:02:30", points[0].Timestamp)
	assert.InDelta(t, 0, points[0].X, 1e-9)
}

func TestInterpolateNegativeDeltaEmitsNothing(t *testing.T) {
	idx := buildIndex(t)
	trav := filter.Traversal{Person: "A", LinkID: "L1", TimeEnter: 150, TimeLeave: 140, IntervalID: 0}

	points := Interpolate(trav, idx)
	assert.Empty(t, points, "a negative delta returns nil")
}

func TestInterpolateUnknownLinkIsSkipped(t *testing.T) {
	idx := buildIndex(t)
	trav := filter.Traversal{Person: "A", LinkID: "Lx", TimeEnter: 100, TimeLeave: 110, IntervalID: 0}

	assert.Nil(t, Interpolate(trav, idx))
}

func TestInterpolateEndpointsMatchTravelStartEnd(t *testing.T) {
	idx := buildIndex(t)
	trav := filter.Traversal{Person: "A", LinkID: "L1", TimeEnter: 0, TimeLeave: 10, IntervalID: 0}

	points := Interpolate(trav, idx)
	require.Len(t, points, 11)
	assert.InDelta(t, 0, points[0].X, 1e-9)
	assert.InDelta(t, 10, points[10].X, 1e-9)
}
