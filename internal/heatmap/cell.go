// Package heatmap implements stage 3 of the pipeline: at each configured
// clock instant, count the Traversals active on every link and emit one
// density record per link.
package heatmap

// Cell is a single stage 3 output row: the count of vehicles active on
// link_id at timepoint_seconds, located at the link's center.
type Cell struct {
	LinkID           string
	X                float64
	Y                float64
	Timestamp        string
	TimepointSeconds int
	VehicleCount     int
}
