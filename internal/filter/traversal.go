// Package filter implements stage 1 of the pipeline: streaming the raw
// MATSim-style event log, pairing EnterLink/LeaveLink events per (person,
// link), assigning each pair to a configured snapshot window, clipping its
// end time to the window boundary, and writing the surviving pairs as a
// compact columnar Traversal table.
package filter

// Traversal is the intermediate record handed from stage 1 to stages 2
// and 3. LinkId is always present in the LinkIndex by the time a Traversal
// is emitted; time_enter always lies inside the window named by
// IntervalID, and time_leave never exceeds that window's end.
type Traversal struct {
	Person     string
	LinkID     string
	TimeEnter  int
	TimeLeave  int
	IntervalID int
}
