// Package descriptor parses shape descriptions and builds owned geom.Shape
// trees from them.
//
// A description is a record. Its fields select the shape, in priority
// order:
//
//	radius      sphere centered at (x, y, z)
//	normal      plane through (x, y, z), optional extent (0 = infinite)
//	dx [dy]     2D line through (x, y, z)
//	x2 [y2]     2D segment from (x, y, z) to (x2, y2)
//	otherwise   group with origin (x, y, z) and the records in children
package descriptor

import (
	"errors"
	"fmt"

	"github.com/chazu/shapequery/pkg/geom"
)

// ErrFormat is returned when a shape description is not a record or holds a
// field of the wrong type.
var ErrFormat = errors.New("shape definition must be a record")

// Descriptor is the typed form of a shape description. Optional selector
// fields are pointers so that presence can be told apart from zero.
type Descriptor struct {
	X, Y, Z float64

	Radius *float64

	Normal *geom.Vec
	Extent float64

	DX *float64
	DY float64

	X2 *float64
	Y2 float64

	Children []*Descriptor
}

// Position returns the (x, y, z) fields as a vector.
func (d *Descriptor) Position() geom.Vec {
	return geom.Vec{X: d.X, Y: d.Y, Z: d.Z}
}

// Kind returns the shape kind the description selects.
func (d *Descriptor) Kind() geom.Kind {
	switch {
	case d.Radius != nil:
		return geom.KindSphere
	case d.Normal != nil, d.DX != nil, d.X2 != nil:
		return geom.KindPlane
	default:
		return geom.KindGroup
	}
}

// Build constructs the shape tree for d. The tree is owned by the caller and
// shares nothing with d.
func Build(d *Descriptor) (geom.Shape, error) {
	return build(d, "shape")
}

func build(d *Descriptor, path string) (geom.Shape, error) {
	if d == nil {
		return nil, fmt.Errorf("%w (at %s)", ErrFormat, path)
	}
	p := d.Position()
	switch {
	case d.Radius != nil:
		return geom.NewSphere(p, *d.Radius), nil
	case d.Normal != nil:
		return geom.NewPlane(p, *d.Normal, d.Extent), nil
	case d.DX != nil:
		return geom.NewLine2D(p, *d.DX, d.DY), nil
	case d.X2 != nil:
		return geom.NewSegment2D(p, *d.X2, d.Y2), nil
	}

	g := geom.NewGroup(p)
	for i, c := range d.Children {
		s, err := build(c, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		g.Add(s)
	}
	return g, nil
}

// Sphere returns a sphere description.
func Sphere(center geom.Vec, radius float64) *Descriptor {
	return &Descriptor{X: center.X, Y: center.Y, Z: center.Z, Radius: &radius}
}

// Plane returns a plane description. An extent of 0 makes it infinite.
func Plane(center, normal geom.Vec, extent float64) *Descriptor {
	return &Descriptor{X: center.X, Y: center.Y, Z: center.Z, Normal: &normal, Extent: extent}
}

// Line returns a 2D line description.
func Line(p geom.Vec, dx, dy float64) *Descriptor {
	return &Descriptor{X: p.X, Y: p.Y, Z: p.Z, DX: &dx, DY: dy}
}

// Segment returns a 2D segment description.
func Segment(p geom.Vec, x2, y2 float64) *Descriptor {
	return &Descriptor{X: p.X, Y: p.Y, Z: p.Z, X2: &x2, Y2: y2}
}

// Group returns a group description.
func Group(origin geom.Vec, children ...*Descriptor) *Descriptor {
	return &Descriptor{X: origin.X, Y: origin.Y, Z: origin.Z, Children: children}
}
