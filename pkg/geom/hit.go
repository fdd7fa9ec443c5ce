package geom

import "sort"

// Hit is one ray/shape intersection.
type Hit struct {
	Distance float64 `json:"distance"` // ray parameter t, Point = o + t⋅d
	Point    Vec     `json:"point"`
	Normal   Vec     `json:"normal"`
	Reflect  Vec     `json:"reflect"`
}

// newHit appends the hit at parameter t to hits, computing the normal with s.
// Intersections behind the ray origin are dropped.
func newHit(s Shape, o, d Vec, t float64, hits []Hit) []Hit {
	if t < 0 {
		return hits
	}
	p := o.Add(d.MulScalar(t))
	return append(hits, Hit{
		Distance: t,
		Point:    p,
		Normal:   s.SurfaceNormal(p),
	})
}

// Collect orders raw hits for the ray direction d: it sorts them by distance
// (stable, so equal distances keep their discovery order), fills in the
// reflection vectors and keeps at most limit hits when limit > 0.
// The input slice is reordered in place.
func Collect(hits []Hit, d Vec, limit int) []Hit {
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	for i := range hits {
		hits[i].Reflect = Reflect(d, hits[i].Normal)
	}
	return hits
}
