// Package trajectory implements stage 2 of the pipeline: expanding each
// Traversal from the intermediate table into a dense, one-second series
// of interpolated positions along the link's travel endpoints.
package trajectory

// Point is a single interpolated trajectory sample, stage 2's output row.
type Point struct {
	X          float64
	Y          float64
	Timestamp  string
	Bearing    int
	Person     string
	IntervalID int
}
