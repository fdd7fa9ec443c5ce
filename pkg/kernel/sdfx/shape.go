package sdfx

import (
	"fmt"
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/shapequery/pkg/geom"
)

// shapeSDF evaluates a geom shape tree as an sdfx distance field.
type shapeSDF struct {
	shape geom.Shape
	bb    sdf.Box3
}

var _ sdf.SDF3 = (*shapeSDF)(nil)

// FromShape exposes a shape tree as an sdf.SDF3. The tree must be bounded:
// an infinite plane anywhere in it yields ErrUnbounded, and a tree without
// any leaf yields ErrEmpty.
func FromShape(s geom.Shape) (sdf.SDF3, error) {
	bb, ok, err := bounds(s, "shape")
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrEmpty
	}
	return &shapeSDF{shape: s, bb: bb}, nil
}

// Evaluate returns the signed distance from p to the shape.
func (s *shapeSDF) Evaluate(p v3.Vec) float64 {
	return s.shape.SignedDistance(p)
}

// BoundingBox returns the bounds computed when the SDF was built.
func (s *shapeSDF) BoundingBox() sdf.Box3 {
	return s.bb
}

// bounds returns the axis-aligned box around s. ok is false when s holds
// no leaves.
func bounds(s geom.Shape, path string) (bb sdf.Box3, ok bool, err error) {
	switch t := s.(type) {
	case *geom.Sphere:
		r := v3.Vec{X: math.Abs(t.Radius), Y: math.Abs(t.Radius), Z: math.Abs(t.Radius)}
		return sdf.Box3{Min: t.Center.Sub(r), Max: t.Center.Add(r)}, true, nil

	case *geom.Plane:
		if !t.Bounded() {
			return bb, false, fmt.Errorf("%w (at %s)", ErrUnbounded, path)
		}
		e := v3.Vec{X: t.Extent, Y: t.Extent, Z: t.Extent}
		return sdf.Box3{Min: t.Center.Sub(e), Max: t.Center.Add(e)}, true, nil

	case *geom.Group:
		for i, c := range t.Children {
			cb, cok, err := bounds(c, fmt.Sprintf("%s.children[%d]", path, i))
			if err != nil {
				return bb, false, err
			}
			if !cok {
				continue
			}
			cb = sdf.Box3{Min: cb.Min.Add(t.Origin), Max: cb.Max.Add(t.Origin)}
			if !ok {
				bb, ok = cb, true
				continue
			}
			bb = extend(bb, cb)
		}
		return bb, ok, nil
	}
	return bb, false, fmt.Errorf("sdfx: unsupported shape %T", s)
}

func extend(a, b sdf.Box3) sdf.Box3 {
	return sdf.Box3{
		Min: v3.Vec{X: math.Min(a.Min.X, b.Min.X), Y: math.Min(a.Min.Y, b.Min.Y), Z: math.Min(a.Min.Z, b.Min.Z)},
		Max: v3.Vec{X: math.Max(a.Max.X, b.Max.X), Y: math.Max(a.Max.Y, b.Max.Y), Z: math.Max(a.Max.Z, b.Max.Z)},
	}
}
