package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectWindowFirstMatchWins(t *testing.T) {
	windows := []SnapshotWindow{
		{Start: 100, End: 200},
		{Start: 150, End: 250},
	}

	idx, ok := SelectWindow(windows, 160)
	assert.True(t, ok)
	assert.Equal(t, 0, idx, "the first configured window containing time_enter wins, even with overlap")
}

func TestSelectWindowInclusiveBounds(t *testing.T) {
	windows := []SnapshotWindow{{Start: 100, End: 200}}

	_, ok := SelectWindow(windows, 100)
	assert.True(t, ok)
	_, ok = SelectWindow(windows, 200)
	assert.True(t, ok)
	_, ok = SelectWindow(windows, 99)
	assert.False(t, ok)
	_, ok = SelectWindow(windows, 201)
	assert.False(t, ok)
}

func TestSelectWindowNoMatch(t *testing.T) {
	windows := []SnapshotWindow{{Start: 100, End: 200}}
	_, ok := SelectWindow(windows, 50)
	assert.False(t, ok)
}
