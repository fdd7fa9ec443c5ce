// Package geom implements the implicit shapes of shapequery: spheres,
// planes and groups, with signed distance, surface projection and ray
// intersection.
package geom

import (
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Vec is a 3-component vector. 2D callers leave Z at zero.
type Vec = v3.Vec

// Vec2 returns the vector (x, y, 0).
func Vec2(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Length returns |v|.
func Length(v Vec) float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

// Distance returns |b - a|.
func Distance(a, b Vec) float64 {
	return Length(b.Sub(a))
}

// Dot returns u ⋅ v.
func Dot(u, v Vec) float64 {
	return u.X*v.X + u.Y*v.Y + u.Z*v.Z
}

// Cross returns u × v.
func Cross(u, v Vec) Vec {
	return Vec{
		X: u.Y*v.Z - u.Z*v.Y,
		Y: u.Z*v.X - u.X*v.Z,
		Z: u.X*v.Y - u.Y*v.X,
	}
}

// Normalize returns v/|v|. The result is NaN for a zero-length v.
func Normalize(v Vec) Vec {
	l := Length(v)
	return Vec{X: v.X / l, Y: v.Y / l, Z: v.Z / l}
}

// Reflect mirrors the incident direction d about the normal n.
func Reflect(d, n Vec) Vec {
	return d.Sub(n.MulScalar(2 * Dot(d, n)))
}

// IsNaN reports whether any component of v is NaN.
func IsNaN(v Vec) bool {
	return math.IsNaN(v.X) || math.IsNaN(v.Y) || math.IsNaN(v.Z)
}
