package filter

import (
	"github.com/NoahBjongHoKim/trafficsim/internal/network"
)

// processChunk pairs the EnterLink/LeaveLink events in chunk (already
// guaranteed adjacent by the Reader) and emits a Traversal for each pair
// that survives window selection and link-membership filtering. It is a
// pure function: no shared mutable state, safe to run concurrently across
// chunks.
func processChunk(chunk []rawEvent, windows []SnapshotWindow, index *network.LinkIndex, metrics *Metrics) []Traversal {
	pending := make(map[pairKey]rawEvent)
	var out []Traversal

	for _, ev := range chunk {
		switch ev.Type {
		case eventTypeEnterLink:
			pending[ev.key()] = ev
		case eventTypeLeaveLink:
			enter, found := pending[ev.key()]
			if !found {
				continue
			}
			delete(pending, ev.key())

			intervalID, ok := SelectWindow(windows, enter.Time)
			if !ok {
				metrics.WindowRejections.Inc()
				continue
			}
			if !index.Has(ev.Link) {
				metrics.LinkRejections.Inc()
				continue
			}

			timeLeave := ev.Time
			if end := windows[intervalID].End; timeLeave > end {
				timeLeave = end
			}

			out = append(out, Traversal{
				Person:     ev.Person,
				LinkID:     ev.Link,
				TimeEnter:  enter.Time,
				TimeLeave:  timeLeave,
				IntervalID: intervalID,
			})
			metrics.TraversalsEmitted.Inc()
		}
	}

	return out
}
