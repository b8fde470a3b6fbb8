package trajectory

import (
	"math"

	"github.com/NoahBjongHoKim/trafficsim/internal/filter"
	"github.com/NoahBjongHoKim/trafficsim/internal/network"
	"github.com/NoahBjongHoKim/trafficsim/internal/timeutil"
)

// Interpolate expands a single Traversal into its Δ+1 one-second
// trajectory points, where Δ = time_leave - time_enter. If the link is
// not in index, it returns nil (per spec: "If absent, record and skip").
// A negative Δ also returns nil; Δ == 0 still yields exactly one point at
// travel_start, matching interpolate_1s's `range(0, time_delta + 1)` and
// its `fraction = t / time_delta if time_delta > 0 else 0` guard.
//
// Coordinates are rounded to 12 decimal places to match the reference
// implementation's output byte-for-byte in the common case.
func Interpolate(t filter.Traversal, index *network.LinkIndex) []Point {
	link, ok := index.Get(t.LinkID)
	if !ok {
		return nil
	}

	delta := t.TimeLeave - t.TimeEnter
	if delta < 0 {
		return nil
	}

	xs, ys := link.TravelStart[0], link.TravelStart[1]
	xe, ye := link.TravelEnd[0], link.TravelEnd[1]

	points := make([]Point, 0, delta+1)
	for k := 0; k <= delta; k++ {
		var f float64
		if delta > 0 {
			f = float64(k) / float64(delta)
		}
		points = append(points, Point{
			X:          round12(xs + f*(xe-xs)),
			Y:          round12(ys + f*(ye-ys)),
			Timestamp:  timeutil.Render(t.TimeEnter + k),
			Bearing:    link.Bearing,
			Person:     t.Person,
			IntervalID: t.IntervalID,
		})
	}
	return points
}

func round12(v float64) float64 {
	const scale = 1e12
	return math.Round(v*scale) / scale
}
