package network

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildResolvesTravelEndpointsAndExcludesUTurns(t *testing.T) {
	links := []Link{
		{ID: "L1", FromNode: "A", ToNode: "B", Geometry: NewSingleGeometry(orb.LineString{{0, 0}, {1, 0}})},
		{ID: "L2", FromNode: "B", ToNode: "C", Geometry: NewSingleGeometry(orb.LineString{{1, 0}, {2, 0}})},
		{ID: "L3", FromNode: "C", ToNode: "B", Geometry: NewSingleGeometry(orb.LineString{{2, 0}, {1, 0}})},
	}

	idx, err := Build(links)
	require.NoError(t, err)
	require.Equal(t, 3, idx.Len())

	l1, ok := idx.Get("L1")
	require.True(t, ok)
	assert.Equal(t, orb.Point{0, 0}, l1.TravelStart, "L1 has no entering link at A, falls back to its own edge start")
	assert.Equal(t, orb.Point{1, 0}, l1.TravelEnd, "L1's next link L2 starts where L1 ends")

	l2, ok := idx.Get("L2")
	require.True(t, ok)
	assert.Equal(t, orb.Point{1, 0}, l2.TravelStart, "L2's previous link L1 ends where L2 starts")
	assert.Equal(t, orb.Point{2, 0}, l2.TravelEnd, "L3 is a U-turn back onto L2 and must be excluded, falling back to L2's own edge end")

	l3, ok := idx.Get("L3")
	require.True(t, ok)
	assert.Equal(t, orb.Point{2, 0}, l3.TravelStart, "L2 is a U-turn relative to L3 and must be excluded")
	assert.Equal(t, orb.Point{1, 0}, l3.TravelEnd, "L2, the only link leaving B, is a U-turn back to L3's origin C and must be excluded, falling back to L3's own edge end")
}

func TestBuildSkipsDegenerateGeometry(t *testing.T) {
	links := []Link{
		{ID: "L1", FromNode: "A", ToNode: "B", Geometry: NewSingleGeometry(orb.LineString{{0, 0}, {1, 0}})},
		{ID: "L2", FromNode: "B", ToNode: "B", Geometry: NewSingleGeometry(orb.LineString{{1, 0}, {1, 0}})},
	}

	idx, err := Build(links)
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
	assert.True(t, idx.Has("L1"))
	assert.False(t, idx.Has("L2"))
}

func TestBuildComputesCenterFromGeometryMidpoint(t *testing.T) {
	links := []Link{
		{ID: "L1", FromNode: "A", ToNode: "B", Geometry: NewSingleGeometry(orb.LineString{{0, 0}, {10, 0}})},
	}
	idx, err := Build(links)
	require.NoError(t, err)

	l1, ok := idx.Get("L1")
	require.True(t, ok)
	assert.InDelta(t, 5, l1.Center[0], 1e-9)
	assert.InDelta(t, 0, l1.Center[1], 1e-9)
}

func TestBuildDeterministicAcrossInputOrder(t *testing.T) {
	a := Link{ID: "L1", FromNode: "A", ToNode: "B", Geometry: NewSingleGeometry(orb.LineString{{0, 0}, {1, 0}})}
	b := Link{ID: "L2", FromNode: "B", ToNode: "C", Geometry: NewSingleGeometry(orb.LineString{{1, 0}, {2, 0}})}

	idx1, err := Build([]Link{a, b})
	require.NoError(t, err)
	idx2, err := Build([]Link{b, a})
	require.NoError(t, err)

	l1a, _ := idx1.Get("L1")
	l1b, _ := idx2.Get("L1")
	assert.Equal(t, l1a.TravelEnd, l1b.TravelEnd)
}
