// Package kernel defines the solid-modeling backend used to turn shape
// trees into preview meshes. The query packages never depend on it; it is
// only reached through tessellation.
package kernel

// Solid is an opaque handle to a kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds solids and meshes them.
type Kernel interface {
	// Primitives
	Sphere(radius float64) (Solid, error)

	// Combinators
	Union(a, b Solid) Solid
	Translate(s Solid, x, y, z float64) Solid

	// Mesh output
	ToMesh(s Solid) (*Mesh, error)
}
