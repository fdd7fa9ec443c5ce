package geom

import "math"

// Sphere is the set of points at Radius from Center. A non-positive
// radius is allowed and yields a shifted distance field.
type Sphere struct {
	Center Vec
	Radius float64
}

// NewSphere returns a sphere.
func NewSphere(center Vec, radius float64) *Sphere {
	return &Sphere{Center: center, Radius: radius}
}

func (*Sphere) shape() {}

// Kind returns KindSphere.
func (*Sphere) Kind() Kind { return KindSphere }

// SignedDistance returns |p - center| - radius.
func (s *Sphere) SignedDistance(p Vec) float64 {
	return Length(p.Sub(s.Center)) - s.Radius
}

// NearestPoint projects p radially onto the sphere. The result is NaN when
// p is the center.
func (s *Sphere) NearestPoint(p Vec) Vec {
	v := p.Sub(s.Center)
	return s.Center.Add(v.MulScalar(s.Radius / Length(v)))
}

// Raycast solves a⋅t² + b⋅t + c = 0 for the ray o + t⋅d.
func (s *Sphere) Raycast(o, d Vec) []Hit {
	a := Dot(d, d)
	if a <= 0 {
		return nil
	}
	oc := o.Sub(s.Center)
	b := 2 * Dot(oc, d)
	c := Dot(oc, oc) - s.Radius*s.Radius

	delta := b*b - 4*a*c
	var hits []Hit
	switch {
	case delta > 0:
		sd := math.Sqrt(delta)
		hits = newHit(s, o, d, (-b-sd)/(2*a), hits)
		hits = newHit(s, o, d, (-b+sd)/(2*a), hits)
	case delta == 0:
		hits = newHit(s, o, d, -b/(2*a), hits)
	}
	return hits
}

// SurfaceNormal returns the outward unit normal at p.
func (s *Sphere) SurfaceNormal(p Vec) Vec {
	return Normalize(p.Sub(s.Center))
}
