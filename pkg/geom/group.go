package geom

import "math"

// Group is the union of its children, expressed in a local frame offset by
// Origin. The group owns its children; their order is kept as given.
type Group struct {
	Origin   Vec
	Children []Shape
}

// NewGroup returns a group with the given origin and children.
func NewGroup(origin Vec, children ...Shape) *Group {
	return &Group{Origin: origin, Children: children}
}

// Add appends a child shape.
func (g *Group) Add(s Shape) {
	g.Children = append(g.Children, s)
}

func (*Group) shape() {}

// Kind returns KindGroup.
func (*Group) Kind() Kind { return KindGroup }

// SignedDistance returns the smallest child distance. An empty group
// returns math.MaxFloat64.
func (g *Group) SignedDistance(p Vec) float64 {
	p = p.Sub(g.Origin)
	dd := math.MaxFloat64
	for _, c := range g.Children {
		if d := c.SignedDistance(p); d < dd {
			dd = d
		}
	}
	return dd
}

// NearestPoint returns the closest child projection. An empty group returns
// the zero vector.
func (g *Group) NearestPoint(p Vec) Vec {
	if len(g.Children) == 0 {
		return Vec{}
	}
	p = p.Sub(g.Origin)
	var v Vec
	dd := math.MaxFloat64
	for _, c := range g.Children {
		vn := c.NearestPoint(p)
		if d := vn.Sub(p).Length2(); d < dd {
			v, dd = vn, d
		}
	}
	return v.Add(g.Origin)
}

// Raycast concatenates the hits of every child in child order. Overlapping
// children may report several hits at the same place.
func (g *Group) Raycast(o, d Vec) []Hit {
	o = o.Sub(g.Origin)
	var hits []Hit
	for _, c := range g.Children {
		for _, h := range c.Raycast(o, d) {
			h.Point = h.Point.Add(g.Origin)
			hits = append(hits, h)
		}
	}
	return hits
}

// SurfaceNormal is not meaningful for a group; hits carry the normal of the
// child they came from. It returns the zero vector.
func (g *Group) SurfaceNormal(Vec) Vec {
	return Vec{}
}
