package geom

import "math"

// Plane passes through Center with the given Normal. An Extent of zero means
// the plane is infinite; a positive Extent bounds it to a disk of that
// radius around Center.
//
// The normal is used as given. A non-unit normal scales SignedDistance
// accordingly.
type Plane struct {
	Center Vec
	Normal Vec
	Extent float64
}

// NewPlane returns a plane.
func NewPlane(center, normal Vec, extent float64) *Plane {
	return &Plane{Center: center, Normal: normal, Extent: extent}
}

// NewLine2D returns the infinite plane containing the 2D line through p with
// direction (dx, dy).
func NewLine2D(p Vec, dx, dy float64) *Plane {
	return &Plane{Center: p, Normal: Vec{X: dy, Y: -dx}}
}

// NewSegment2D returns the disk-bounded plane spanning the 2D segment from p
// to (x2, y2). The z coordinate of p is kept for the center.
func NewSegment2D(p Vec, x2, y2 float64) *Plane {
	dx := x2 - p.X
	dy := y2 - p.Y
	l := math.Sqrt(dx*dx + dy*dy)
	return &Plane{
		Center: Vec{X: p.X + dx/2, Y: p.Y + dy/2, Z: p.Z},
		Normal: Vec{X: dy / l, Y: -dx / l},
		Extent: l / 2,
	}
}

func (*Plane) shape() {}

// Kind returns KindPlane.
func (*Plane) Kind() Kind { return KindPlane }

// Bounded reports whether the plane is limited to a disk.
func (pl *Plane) Bounded() bool { return pl.Extent > 0 }

// SignedDistance returns (p - center) ⋅ normal.
func (pl *Plane) SignedDistance(p Vec) float64 {
	return Dot(p.Sub(pl.Center), pl.Normal)
}

// NearestPoint projects p along the normal, then clamps the result into the
// disk for a bounded plane.
func (pl *Plane) NearestPoint(p Vec) Vec {
	d := Dot(p.Sub(pl.Center), pl.Normal)
	v := p.Sub(pl.Normal.MulScalar(d))
	if pl.Extent > 0 {
		r := v.Sub(pl.Center)
		if rd := Length(r); rd > pl.Extent {
			v = pl.Center.Add(r.MulScalar(pl.Extent / rd))
		}
	}
	return v
}

// Raycast intersects the ray o + t⋅d with the plane. A ray parallel to the
// plane never hits, even when it lies in it.
func (pl *Plane) Raycast(o, d Vec) []Hit {
	dn := Dot(d, pl.Normal)
	if dn == 0 {
		return nil
	}
	t := Dot(pl.Center.Sub(o), pl.Normal) / dn
	if pl.Extent > 0 {
		r := o.Add(d.MulScalar(t)).Sub(pl.Center)
		if Length(r) > pl.Extent {
			return nil
		}
	}
	return newHit(pl, o, d, t, nil)
}

// SurfaceNormal returns the stored normal. It is not turned toward the ray.
func (pl *Plane) SurfaceNormal(Vec) Vec {
	return pl.Normal
}
