package filter

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NoahBjongHoKim/trafficsim/internal/network"
)

func buildTestIndex(t *testing.T) *network.LinkIndex {
	t.Helper()
	links := []network.Link{
		{ID: "L1", FromNode: "A", ToNode: "B", Geometry: network.NewSingleGeometry(orb.LineString{{0, 0}, {1, 0}})},
		{ID: "L2", FromNode: "B", ToNode: "C", Geometry: network.NewSingleGeometry(orb.LineString{{1, 0}, {2, 0}})},
	}
	idx, err := network.Build(links)
	require.NoError(t, err)
	return idx
}

func TestProcessChunkSingleTraversalSingleWindow(t *testing.T) {
	idx := buildTestIndex(t)
	windows := []SnapshotWindow{{Start: 100, End: 200}}
	chunk := []rawEvent{
		{Type: eventTypeEnterLink, Person: "A", Link: "L1", Time: 110},
		{Type: eventTypeLeaveLink, Person: "A", Link: "L1", Time: 115},
	}

	out := processChunk(chunk, windows, idx, NewMetrics(nil))

	require.Len(t, out, 1)
	assert.Equal(t, Traversal{Person: "A", LinkID: "L1", TimeEnter: 110, TimeLeave: 115, IntervalID: 0}, out[0])
}

func TestProcessChunkClipsAtWindowEnd(t *testing.T) {
	idx := buildTestIndex(t)
	windows := []SnapshotWindow{{Start: 100, End: 120}}
	chunk := []rawEvent{
		{Type: eventTypeEnterLink, Person: "A", Link: "L1", Time: 115},
		{Type: eventTypeLeaveLink, Person: "A", Link: "L1", Time: 130},
	}

	out := processChunk(chunk, windows, idx, NewMetrics(nil))

	require.Len(t, out, 1)
	assert.Equal(t, 120, out[0].TimeLeave, "time_leave is clipped to the window end")
}

func TestProcessChunkEnterOutsideWindowIsDropped(t *testing.T) {
	idx := buildTestIndex(t)
	windows := []SnapshotWindow{{Start: 100, End: 200}}
	chunk := []rawEvent{
		{Type: eventTypeEnterLink, Person: "A", Link: "L1", Time: 50},
		{Type: eventTypeLeaveLink, Person: "A", Link: "L1", Time: 150},
	}

	out := processChunk(chunk, windows, idx, NewMetrics(nil))
	assert.Empty(t, out)
}

func TestProcessChunkLinkNotInIndexIsDropped(t *testing.T) {
	idx := buildTestIndex(t)
	windows := []SnapshotWindow{{Start: 100, End: 200}}
	chunk := []rawEvent{
		{Type: eventTypeEnterLink, Person: "A", Link: "Lx", Time: 110},
		{Type: eventTypeLeaveLink, Person: "A", Link: "Lx", Time: 150},
	}

	out := processChunk(chunk, windows, idx, NewMetrics(nil))
	assert.Empty(t, out)
}

func TestProcessChunkEnterEqualsLeaveProducesSingleTraversal(t *testing.T) {
	idx := buildTestIndex(t)
	windows := []SnapshotWindow{{Start: 100, End: 200}}
	chunk := []rawEvent{
		{Type: eventTypeEnterLink, Person: "A", Link: "L1", Time: 150},
		{Type: eventTypeLeaveLink, Person: "A", Link: "L1", Time: 150},
	}

	out := processChunk(chunk, windows, idx, NewMetrics(nil))
	require.Len(t, out, 1)
	assert.Equal(t, out[0].TimeEnter, out[0].TimeLeave)
}
