// Package network loads the road network used to spatially filter events
// and to interpolate and sample vehicle trajectories along it: NetworkCache
// handles fast repeated loads from an authoritative GIS source via a
// columnar side file, and LinkIndex hydrates the loaded rows into the
// lookup structure the rest of the pipeline shares read-only.
package network

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus"
)

// LinkIndex is the hydrated, precomputed representation of the road
// network: a lookup from LinkId to Link (with travel endpoints, bearing,
// and center already derived), plus the node incidence used to build it.
// It is built once at pipeline start and never mutated afterward, so it is
// safe to share by reference across every worker goroutine in stages 1-3.
type LinkIndex struct {
	links     map[string]Link
	order     []string // link IDs in sorted order, used for deterministic iteration
	incidence NodeIncidence
}

// Option configures Build.
type Option func(*buildConfig)

type buildConfig struct {
	logger  *slog.Logger
	metrics *Metrics
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *buildConfig) { c.logger = logger }
}

func WithMetrics(metrics *Metrics) Option {
	return func(c *buildConfig) { c.metrics = metrics }
}

// Build hydrates a LinkIndex from the given links, precomputing each
// link's edge points, travel endpoints, bearing, and center. Links with
// degenerate or unreadable geometry are skipped with a warning rather than
// failing the whole build, per the GeometryUnsupported error taxonomy.
//
// Neighbour resolution ties are broken by iterating links in lexicographic
// LinkId order, so that the resulting travel endpoints are reproducible
// across runs regardless of the order links arrived in from the source.
func Build(links []Link, opts ...Option) (*LinkIndex, error) {
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.metrics == nil {
		cfg.metrics = NewMetrics(prometheus.NewRegistry())
	}

	start := time.Now()
	defer func() {
		cfg.metrics.IndexBuildDuration.Observe(time.Since(start).Seconds())
	}()

	valid := make(map[string]Link, len(links))
	edgeStart := make(map[string]orb.Point, len(links))
	edgeEnd := make(map[string]orb.Point, len(links))

	ids := make([]string, 0, len(links))
	for _, l := range links {
		if !l.Geometry.NonDegenerate() {
			cfg.logger.Warn("network: skipping link with degenerate geometry", "link_id", l.ID)
			cfg.metrics.LinksSkippedGeomErr.Inc()
			continue
		}
		es, ee, ok := l.Geometry.Endpoints()
		if !ok {
			cfg.logger.Warn("network: skipping link with unreadable geometry", "link_id", l.ID)
			cfg.metrics.LinksSkippedGeomErr.Inc()
			continue
		}
		if _, dup := valid[l.ID]; dup {
			cfg.logger.Warn("network: duplicate link id, keeping first occurrence", "link_id", l.ID)
			continue
		}
		valid[l.ID] = l
		edgeStart[l.ID] = es
		edgeEnd[l.ID] = ee
		ids = append(ids, l.ID)
	}
	sort.Strings(ids)

	orderedLinks := make([]Link, 0, len(ids))
	for _, id := range ids {
		orderedLinks = append(orderedLinks, valid[id])
	}
	incidence := buildNodeIncidence(orderedLinks)

	result := make(map[string]Link, len(ids))
	for _, id := range ids {
		l := valid[id]

		prevID, ok := firstPreviousLink(id, l.FromNode, l.ToNode, incidence, valid)
		var p1, p2 orb.Point
		if ok {
			p1, p2 = edgeStart[prevID], edgeEnd[prevID]
		} else {
			p1, p2 = edgeStart[id], edgeStart[id]
		}

		nextID, ok := firstNextLink(id, l.FromNode, l.ToNode, incidence, valid)
		var n1, n2 orb.Point
		if ok {
			n1, n2 = edgeStart[nextID], edgeEnd[nextID]
		} else {
			n1, n2 = edgeEnd[id], edgeEnd[id]
		}

		es, ee := edgeStart[id], edgeEnd[id]

		travelStart := es
		if p1 == es || p2 == es {
			if p1 == es {
				travelStart = p1
			} else {
				travelStart = p2
			}
		}

		travelEnd := ee
		if n1 == ee || n2 == ee {
			if n1 == ee {
				travelEnd = n1
			} else {
				travelEnd = n2
			}
		}

		l.TravelStart = travelStart
		l.TravelEnd = travelEnd
		l.Bearing = bearingDegrees(travelStart, travelEnd)

		if center, ok := l.Geometry.SampleFraction(0.5); ok {
			l.Center = center
		} else {
			l.Center = orb.Point{
				(travelStart[0] + travelEnd[0]) / 2,
				(travelStart[1] + travelEnd[1]) / 2,
			}
		}

		result[id] = l
		cfg.metrics.LinksIndexed.Inc()
	}

	return &LinkIndex{links: result, order: ids, incidence: incidence}, nil
}

// firstPreviousLink finds the deterministic first candidate previous link
// for link id: a link distinct from id whose ToNode equals fromNode and
// whose FromNode is not toNode (the U-turn exclusion).
func firstPreviousLink(id, fromNode, toNode string, incidence NodeIncidence, links map[string]Link) (string, bool) {
	for _, candidateID := range incidence.EnteringNode(fromNode) {
		if candidateID == id {
			continue
		}
		candidate, ok := links[candidateID]
		if !ok {
			continue
		}
		if candidate.FromNode != toNode {
			return candidateID, true
		}
	}
	return "", false
}

// firstNextLink finds the deterministic first candidate next link for
// link id: a link distinct from id whose FromNode equals toNode and whose
// ToNode is not fromNode (the U-turn exclusion).
func firstNextLink(id, fromNode, toNode string, incidence NodeIncidence, links map[string]Link) (string, bool) {
	for _, candidateID := range incidence.LeavingNode(toNode) {
		if candidateID == id {
			continue
		}
		candidate, ok := links[candidateID]
		if !ok {
			continue
		}
		if candidate.ToNode != fromNode {
			return candidateID, true
		}
	}
	return "", false
}

// Get returns the hydrated Link for id, and whether it was found.
func (idx *LinkIndex) Get(id string) (Link, bool) {
	l, ok := idx.links[id]
	return l, ok
}

// Has reports whether id exists in the index, without the cost of copying
// the Link value out.
func (idx *LinkIndex) Has(id string) bool {
	_, ok := idx.links[id]
	return ok
}

// Len returns the number of hydrated links.
func (idx *LinkIndex) Len() int {
	return len(idx.links)
}

// Links returns every hydrated link, ordered by LinkId.
func (idx *LinkIndex) Links() []Link {
	out := make([]Link, 0, len(idx.order))
	for _, id := range idx.order {
		out = append(out, idx.links[id])
	}
	return out
}

// Incidence returns the node incidence derived while building the index.
func (idx *LinkIndex) Incidence() NodeIncidence {
	return idx.incidence
}

func (idx *LinkIndex) String() string {
	return fmt.Sprintf("LinkIndex(%d links)", idx.Len())
}
