// Package tessellate walks a shape tree and produces preview triangle
// meshes using a geometry kernel. One mesh is produced per sphere leaf.
// Planes have no volume and are reported as skipped.
package tessellate

import (
	"fmt"

	"github.com/chazu/shapequery/pkg/geom"
	"github.com/chazu/shapequery/pkg/kernel"
)

// Skip records a leaf that produced no mesh.
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Result is the outcome of tessellating a tree.
type Result struct {
	Meshes  []*kernel.Mesh `json:"meshes"`
	Skipped []Skip         `json:"skipped,omitempty"`
}

// originStack accumulates group origins during traversal.
type originStack struct {
	origins []geom.Vec
}

func (st *originStack) push(v geom.Vec) {
	st.origins = append(st.origins, v)
}

func (st *originStack) pop() {
	if len(st.origins) > 0 {
		st.origins = st.origins[:len(st.origins)-1]
	}
}

// offset returns the sum of all origins on the stack.
func (st *originStack) offset() geom.Vec {
	var sum geom.Vec
	for _, o := range st.origins {
		sum = sum.Add(o)
	}
	return sum
}

// leaf is a placed solid waiting to be meshed.
type leaf struct {
	path  string
	solid kernel.Solid
}

// Tessellate produces one mesh per sphere leaf of s, in depth-first order.
// Each mesh is named by the leaf's tree path. The tree is never mutated.
func Tessellate(s geom.Shape, k kernel.Kernel) (*Result, error) {
	res := &Result{}
	if s == nil {
		return res, nil
	}
	leaves, err := collect(s, k, "shape", &originStack{}, res)
	if err != nil {
		return nil, err
	}
	for _, l := range leaves {
		mesh, err := k.ToMesh(l.solid)
		if err != nil {
			return nil, fmt.Errorf("tessellate: ToMesh failed for %s: %w", l.path, err)
		}
		mesh.Name = l.path
		res.Meshes = append(res.Meshes, mesh)
	}
	return res, nil
}

// Merged unions every sphere leaf of s into a single mesh named "shape".
// Result.Meshes is empty when the tree has no meshable leaf.
func Merged(s geom.Shape, k kernel.Kernel) (*Result, error) {
	res := &Result{}
	if s == nil {
		return res, nil
	}
	leaves, err := collect(s, k, "shape", &originStack{}, res)
	if err != nil {
		return nil, err
	}
	if len(leaves) == 0 {
		return res, nil
	}
	solid := leaves[0].solid
	for _, l := range leaves[1:] {
		solid = k.Union(solid, l.solid)
	}
	mesh, err := k.ToMesh(solid)
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed: %w", err)
	}
	mesh.Name = "shape"
	res.Meshes = []*kernel.Mesh{mesh}
	return res, nil
}

// collect walks s and returns its sphere leaves placed in world space.
// Skipped leaves are appended to res.
func collect(s geom.Shape, k kernel.Kernel, path string, st *originStack, res *Result) ([]leaf, error) {
	switch t := s.(type) {
	case *geom.Sphere:
		if t.Radius <= 0 {
			res.Skipped = append(res.Skipped, Skip{Path: path, Reason: "non-positive radius"})
			return nil, nil
		}
		solid, err := k.Sphere(t.Radius)
		if err != nil {
			return nil, fmt.Errorf("tessellate: sphere at %s: %w", path, err)
		}
		c := st.offset().Add(t.Center)
		if c.X != 0 || c.Y != 0 || c.Z != 0 {
			solid = k.Translate(solid, c.X, c.Y, c.Z)
		}
		return []leaf{{path: path, solid: solid}}, nil

	case *geom.Plane:
		res.Skipped = append(res.Skipped, Skip{Path: path, Reason: "plane has no volume"})
		return nil, nil

	case *geom.Group:
		st.push(t.Origin)
		defer st.pop()
		var leaves []leaf
		for i, c := range t.Children {
			got, err := collect(c, k, fmt.Sprintf("%s.children[%d]", path, i), st, res)
			if err != nil {
				return nil, err
			}
			leaves = append(leaves, got...)
		}
		return leaves, nil

	default:
		return nil, fmt.Errorf("tessellate: unsupported shape %T at %s", s, path)
	}
}
