package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeIncidenceLeavingEntering(t *testing.T) {
	links := []Link{
		{ID: "L1", FromNode: "A", ToNode: "B"},
		{ID: "L2", FromNode: "B", ToNode: "C"},
		{ID: "L3", FromNode: "A", ToNode: "C"},
	}
	ni := buildNodeIncidence(links)

	assert.Equal(t, []string{"L1", "L3"}, ni.LeavingNode("A"))
	assert.Equal(t, []string{"L2"}, ni.LeavingNode("B"))
	assert.Empty(t, ni.LeavingNode("C"))

	assert.Equal(t, []string{"L1"}, ni.EnteringNode("B"))
	assert.Equal(t, []string{"L2", "L3"}, ni.EnteringNode("C"))
	assert.Empty(t, ni.EnteringNode("A"))
}
