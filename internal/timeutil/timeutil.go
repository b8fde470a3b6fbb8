// Package timeutil converts the simulation clock — integer seconds since
// midnight of the simulated day — to and from the fixed-epoch timestamp
// string used throughout the trajectory and heatmap outputs.
package timeutil

import "time"

// Epoch anchors every rendered timestamp, regardless of which day the
// upstream simulator actually modeled. Consumers that need real calendar
// dates must remap it themselves; this package intentionally does not
// take a base date parameter so that outputs stay byte-identical across
// runs and across which simulation day produced them.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

const layout = "2006/01/02 15:04:05"

// Render formats seconds-since-midnight against Epoch as "YYYY/MM/DD HH:MM:SS".
func Render(seconds int) string {
	return Epoch.Add(time.Duration(seconds) * time.Second).Format(layout)
}

// Parse reverses Render, returning the number of whole seconds elapsed
// since midnight of the rendered day (hour*3600 + minute*60 + second).
func Parse(stamp string) (int, error) {
	t, err := time.Parse(layout, stamp)
	if err != nil {
		return 0, err
	}
	return t.Hour()*3600 + t.Minute()*60 + t.Second(), nil
}
