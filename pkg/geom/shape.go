package geom

// Kind enumerates the shape variants.
type Kind int

const (
	KindSphere Kind = iota
	KindPlane
	KindGroup
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindPlane:
		return "plane"
	case KindGroup:
		return "group"
	default:
		return "unknown"
	}
}

// Shape is an implicit surface. The set of implementations is closed:
// Sphere, Plane and Group.
//
// Shapes are immutable once built and safe for concurrent queries.
type Shape interface {
	Kind() Kind

	// SignedDistance is negative inside, zero on the surface and positive
	// outside.
	SignedDistance(p Vec) float64

	// NearestPoint projects p onto the surface.
	NearestPoint(p Vec) Vec

	// Raycast returns every intersection of the ray o + t⋅d with t >= 0,
	// unsorted. Reflect is left unset; see Collect.
	Raycast(o, d Vec) []Hit

	// SurfaceNormal returns the normal at a point on the surface.
	SurfaceNormal(p Vec) Vec

	shape() // marker method restricting implementations to this package
}

// Compile-time interface checks.
var (
	_ Shape = (*Sphere)(nil)
	_ Shape = (*Plane)(nil)
	_ Shape = (*Group)(nil)
)
