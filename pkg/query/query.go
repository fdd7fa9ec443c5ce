// Package query exposes the stateless geometric queries of shapequery:
// vector helpers, distance ranking over point sets, and raycast / inside /
// edge queries against shape descriptions.
//
// Each descriptor-based query builds its own shape tree, evaluates it and
// drops it; nothing is cached between calls.
package query

import (
	"math"
	"sort"

	"github.com/chazu/shapequery/pkg/descriptor"
	"github.com/chazu/shapequery/pkg/geom"
)

// SortMode selects the ordering of DistanceAll results.
type SortMode int

const (
	SortDescending SortMode = -1
	SortNone       SortMode = 0
	SortAscending  SortMode = 1
)

// SortModeOf maps an integer flag to a SortMode by its sign.
func SortModeOf(n int) SortMode {
	switch {
	case n > 0:
		return SortAscending
	case n < 0:
		return SortDescending
	default:
		return SortNone
	}
}

func (m SortMode) String() string {
	switch m {
	case SortAscending:
		return "ascending"
	case SortDescending:
		return "descending"
	case SortNone:
		return "none"
	default:
		return "unknown"
	}
}

// Ranked is the distance from a reference to one point of a set. Index is
// the point's position in the input.
type Ranked struct {
	Index    int      `json:"index"`
	Point    geom.Vec `json:"point"`
	Distance float64  `json:"distance"`
}

// ---------------------------------------------------------------------------
// Vector helpers
// ---------------------------------------------------------------------------

// Length returns |v|.
func Length(v geom.Vec) float64 { return geom.Length(v) }

// Distance returns |b - a|.
func Distance(a, b geom.Vec) float64 { return geom.Distance(a, b) }

// Dot returns a ⋅ b.
func Dot(a, b geom.Vec) float64 { return geom.Dot(a, b) }

// Cross returns a × b. For 2D inputs only Z is non-zero.
func Cross(a, b geom.Vec) geom.Vec { return geom.Cross(a, b) }

// Normalize returns v/|v|, NaN for a zero-length v.
func Normalize(v geom.Vec) geom.Vec { return geom.Normalize(v) }

// ---------------------------------------------------------------------------
// Point sets
// ---------------------------------------------------------------------------

// DistanceAll measures the distance from ref to every point. With SortNone
// results follow input order; otherwise they are stably sorted by distance,
// so equal distances keep input order.
func DistanceAll(ref geom.Vec, pts []geom.Vec, mode SortMode) []Ranked {
	out := make([]Ranked, len(pts))
	for i, p := range pts {
		out[i] = Ranked{Index: i, Point: p, Distance: geom.Distance(ref, p)}
	}
	switch mode {
	case SortAscending:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	case SortDescending:
		sort.SliceStable(out, func(i, j int) bool { return out[j].Distance < out[i].Distance })
	}
	return out
}

// Distances returns just the distances from ref, in input order.
func Distances(ref geom.Vec, pts []geom.Vec) []float64 {
	out := make([]float64, len(pts))
	for i, p := range pts {
		out[i] = geom.Distance(ref, p)
	}
	return out
}

// NearestOf returns the point closest to ref. The first of several equally
// near points wins. ok is false for an empty set.
func NearestOf(ref geom.Vec, pts []geom.Vec) (r Ranked, ok bool) {
	dd := math.MaxFloat64
	for i, p := range pts {
		if d := geom.Distance(ref, p); d < dd {
			r = Ranked{Index: i, Point: p, Distance: d}
			dd = d
			ok = true
		}
	}
	return r, ok
}

// ---------------------------------------------------------------------------
// Shape queries
// ---------------------------------------------------------------------------

// RaycastShape casts the ray origin + t⋅dir against s and returns the hits
// sorted by distance, with reflection vectors, truncated to limit when
// limit > 0.
func RaycastShape(origin, dir geom.Vec, s geom.Shape, limit int) []geom.Hit {
	return geom.Collect(s.Raycast(origin, dir), dir, limit)
}

// Raycast builds the shape described by d and casts a ray against it.
func Raycast(origin, dir geom.Vec, d *descriptor.Descriptor, limit int) ([]geom.Hit, error) {
	s, err := descriptor.Build(d)
	if err != nil {
		return nil, err
	}
	return RaycastShape(origin, dir, s, limit), nil
}

// Inside returns the signed distance from p to the shape described by d:
// negative inside, positive outside.
func Inside(p geom.Vec, d *descriptor.Descriptor) (float64, error) {
	s, err := descriptor.Build(d)
	if err != nil {
		return 0, err
	}
	return s.SignedDistance(p), nil
}

// Edge returns the point on the surface of the shape described by d that is
// nearest to p.
func Edge(p geom.Vec, d *descriptor.Descriptor) (geom.Vec, error) {
	s, err := descriptor.Build(d)
	if err != nil {
		return geom.Vec{}, err
	}
	return s.NearestPoint(p), nil
}
