package network

import "github.com/paulmach/orb"

// Link is an immutable road-network edge, hydrated once by LinkIndex.Build
// and shared read-only by every downstream pipeline stage.
type Link struct {
	ID        string
	FromNode  string
	ToNode    string
	Length    float64 // meters
	FreeSpeed float64 // meters/sec
	Geometry  LinkGeometry

	// Derived fields, populated by LinkIndex.Build. Zero values until then.
	TravelStart orb.Point
	TravelEnd   orb.Point
	Bearing     int
	Center      orb.Point
}

// NodeIncidence holds the reverse indices from node identifier to the
// links leaving and entering that node. It is derived once from a set of
// Links at build time and never mutated afterward.
type NodeIncidence struct {
	fromNode map[string][]string // node -> link IDs leaving it
	toNode   map[string][]string // node -> link IDs entering it
}

func buildNodeIncidence(links []Link) NodeIncidence {
	ni := NodeIncidence{
		fromNode: make(map[string][]string, len(links)),
		toNode:   make(map[string][]string, len(links)),
	}
	for _, l := range links {
		ni.fromNode[l.FromNode] = append(ni.fromNode[l.FromNode], l.ID)
		ni.toNode[l.ToNode] = append(ni.toNode[l.ToNode], l.ID)
	}
	return ni
}

// LeavingNode returns the link IDs whose FromNode equals node, in the
// order they were first encountered while building the index.
func (ni NodeIncidence) LeavingNode(node string) []string {
	return ni.fromNode[node]
}

// EnteringNode returns the link IDs whose ToNode equals node, in the order
// they were first encountered while building the index.
func (ni NodeIncidence) EnteringNode(node string) []string {
	return ni.toNode[node]
}
