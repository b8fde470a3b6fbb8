package filter

// SnapshotWindow is a configured, inclusive-on-both-ends interval of
// simulation time that selects which traversals survive stage 1 filtering.
// Windows are evaluated in configured order; the first window containing
// time_enter wins, even if windows overlap.
type SnapshotWindow struct {
	Start int
	End   int
}

// SelectWindow returns the index of the first window (in configured order)
// whose [Start, End] contains tEnter, inclusive on both ends, and true. If
// no window contains tEnter, it returns (0, false).
func SelectWindow(windows []SnapshotWindow, tEnter int) (int, bool) {
	for i, w := range windows {
		if tEnter >= w.Start && tEnter <= w.End {
			return i, true
		}
	}
	return 0, false
}
