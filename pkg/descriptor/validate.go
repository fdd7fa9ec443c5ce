package descriptor

import (
	"fmt"
	"math"
)

// Warning codes reported by Validate.
const (
	CodeNonPositiveRadius = "NON_POSITIVE_RADIUS"
	CodeZeroNormal        = "ZERO_NORMAL"
	CodeNonUnitNormal     = "NON_UNIT_NORMAL"
	CodeNegativeExtent    = "NEGATIVE_EXTENT"
	CodeZeroDirection     = "ZERO_DIRECTION"
	CodeZeroSegment       = "ZERO_LENGTH_SEGMENT"
	CodeEmptyGroup        = "EMPTY_GROUP"
)

// unitTolerance is how far |normal| may stray from 1 before it is reported.
const unitTolerance = 1e-6

// Warning describes degenerate but legal input. Queries still run; the
// results are whatever the math produces (NaN, scaled distances, no hits).
type Warning struct {
	Code    string
	Path    string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s (at %s)", w.Code, w.Message, w.Path)
}

// Validate walks d and reports every degenerate shape it finds, in
// depth-first order.
func Validate(d *Descriptor) []Warning {
	if d == nil {
		return nil
	}
	return validate(d, "shape")
}

func validate(d *Descriptor, path string) []Warning {
	var warnings []Warning
	add := func(code, format string, args ...any) {
		warnings = append(warnings, Warning{
			Code:    code,
			Path:    path,
			Message: fmt.Sprintf(format, args...),
		})
	}

	switch {
	case d.Radius != nil:
		if *d.Radius <= 0 {
			add(CodeNonPositiveRadius, "sphere radius is %.4f, distances are shifted", *d.Radius)
		}

	case d.Normal != nil:
		n := *d.Normal
		l := math.Sqrt(n.X*n.X + n.Y*n.Y + n.Z*n.Z)
		switch {
		case l == 0:
			add(CodeZeroNormal, "plane normal is zero, the plane has no orientation")
		case math.Abs(l-1) > unitTolerance:
			add(CodeNonUnitNormal, "plane normal has length %.4f, distances are scaled by it", l)
		}
		if d.Extent < 0 {
			add(CodeNegativeExtent, "plane extent is %.4f, treated as infinite", d.Extent)
		}

	case d.DX != nil:
		l := math.Hypot(*d.DX, d.DY)
		switch {
		case l == 0:
			add(CodeZeroDirection, "line direction is zero")
		case math.Abs(l-1) > unitTolerance:
			add(CodeNonUnitNormal, "line direction has length %.4f, distances are scaled by it", l)
		}

	case d.X2 != nil:
		if *d.X2 == d.X && d.Y2 == d.Y {
			add(CodeZeroSegment, "segment endpoints coincide")
		}

	default:
		if len(d.Children) == 0 {
			add(CodeEmptyGroup, "group has no children and contains nothing")
		}
		for i, c := range d.Children {
			if c == nil {
				continue
			}
			warnings = append(warnings, validate(c, fmt.Sprintf("%s.children[%d]", path, i))...)
		}
	}

	return warnings
}
