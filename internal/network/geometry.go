package network

import (
	"math"

	"github.com/paulmach/orb"
)

// LinkGeometry is the sum type over the two shapes a road link's polyline
// can take in the source network: a single chain, or a set of disjoint
// chains that together describe one link (a split carriageway, a link that
// crosses a cartographic seam, etc). Downstream code must only ever reach
// for Endpoints and SampleFraction — never switch on the underlying
// variant — so that adding a third representation later doesn't ripple
// through the interpolator or sampler.
type LinkGeometry struct {
	single *orb.LineString
	multi  *orb.MultiLineString
}

// NewSingleGeometry wraps a single polyline chain.
func NewSingleGeometry(ls orb.LineString) LinkGeometry {
	return LinkGeometry{single: &ls}
}

// NewMultiGeometry wraps an ordered set of polyline chains that together
// describe one link.
func NewMultiGeometry(mls orb.MultiLineString) LinkGeometry {
	return LinkGeometry{multi: &mls}
}

// IsZero reports whether the geometry was never set.
func (g LinkGeometry) IsZero() bool {
	return g.single == nil && g.multi == nil
}

// chains returns the geometry as an ordered list of chains, regardless of
// which variant it holds.
func (g LinkGeometry) chains() []orb.LineString {
	if g.single != nil {
		return []orb.LineString{*g.single}
	}
	if g.multi != nil {
		return []orb.LineString(*g.multi)
	}
	return nil
}

// Endpoints returns the first coordinate of the first chain and the last
// coordinate of the last chain — the "edge" points of the link's geometry,
// as distinct from its derived travel endpoints.
func (g LinkGeometry) Endpoints() (start, end orb.Point, ok bool) {
	chains := g.chains()
	if len(chains) == 0 {
		return orb.Point{}, orb.Point{}, false
	}
	first := chains[0]
	last := chains[len(chains)-1]
	if len(first) == 0 || len(last) == 0 {
		return orb.Point{}, orb.Point{}, false
	}
	return first[0], last[len(last)-1], true
}

// NonDegenerate reports whether the geometry has at least two distinct
// coordinate tuples, the invariant every indexed Link must satisfy.
func (g LinkGeometry) NonDegenerate() bool {
	chains := g.chains()
	count := 0
	var prev orb.Point
	first := true
	for _, chain := range chains {
		for _, p := range chain {
			if first {
				prev = p
				first = false
				count++
				continue
			}
			if p != prev {
				count++
			}
			prev = p
		}
	}
	return count >= 2
}

// SampleFraction returns the point at arc-length parameter f (0=start,
// 1=end) along the flattened sequence of all chains, matching the planar
// (non-geodesic) interpolation the reference implementation performs.
// It returns ok=false if the geometry has zero total length, in which case
// the caller should fall back to the arithmetic midpoint of the travel
// endpoints.
func (g LinkGeometry) SampleFraction(f float64) (orb.Point, bool) {
	var pts []orb.Point
	for _, chain := range g.chains() {
		pts = append(pts, chain...)
	}
	if len(pts) < 2 {
		return orb.Point{}, false
	}
	if f <= 0 {
		return pts[0], true
	}
	if f >= 1 {
		return pts[len(pts)-1], true
	}

	segLens := make([]float64, len(pts)-1)
	total := 0.0
	for i := 0; i < len(pts)-1; i++ {
		segLens[i] = planarDistance(pts[i], pts[i+1])
		total += segLens[i]
	}
	if total == 0 {
		return orb.Point{}, false
	}

	target := f * total
	acc := 0.0
	for i, segLen := range segLens {
		if acc+segLen >= target || i == len(segLens)-1 {
			if segLen == 0 {
				return pts[i], true
			}
			t := (target - acc) / segLen
			x := pts[i][0] + t*(pts[i+1][0]-pts[i][0])
			y := pts[i][1] + t*(pts[i+1][1]-pts[i][1])
			return orb.Point{x, y}, true
		}
		acc += segLen
	}
	return pts[len(pts)-1], true
}

// AsOrbGeometry unwraps the variant into a plain orb.Geometry, for callers
// that need to hand it to a generic encoder (WKB, GeoJSON). This is the one
// place allowed to know which variant is underneath; everything outside the
// network package still only ever sees Endpoints and SampleFraction.
func (g LinkGeometry) AsOrbGeometry() orb.Geometry {
	if g.single != nil {
		return *g.single
	}
	if g.multi != nil {
		return *g.multi
	}
	return nil
}

func planarDistance(a, b orb.Point) float64 {
	dx := b[0] - a[0]
	dy := b[1] - a[1]
	return math.Sqrt(dx*dx + dy*dy)
}

// bearingDegrees computes the forward azimuth in integer degrees [0,360)
// from start to end using the spherical forward-azimuth formula.
//
// The reference implementation destructures its (x, y) = (lon, lat) input
// tuples as if they were (lat, lon) pairs — a latent swap that nonetheless
// produces the bearings the downstream consumers already expect. This
// function preserves that exact ordering rather than "fixing" it: callers
// pass orb.Points whose X is treated as the latitude term and whose Y is
// treated as the longitude term.
func bearingDegrees(start, end orb.Point) int {
	lat1 := toRadians(start[0])
	lon1 := toRadians(start[1])
	lat2 := toRadians(end[0])
	lon2 := toRadians(end[1])

	deltaLon := lon2 - lon1
	x := math.Cos(lat2) * math.Sin(deltaLon)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(deltaLon)

	angle := math.Atan2(x, y)
	degrees := angle * 180 / math.Pi

	bearing := int(math.Round(degrees))
	bearing = ((bearing % 360) + 360) % 360
	return bearing
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
