package engine

import (
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/shapequery/pkg/descriptor"
	"github.com/chazu/shapequery/pkg/geom"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a vector.
type sexpVec3 struct {
	vec geom.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpHit wraps a ray hit returned by raycast.
type sexpHit struct {
	hit geom.Hit
}

func (h *sexpHit) SexpString(ps *zygo.PrintState) string {
	p := h.hit.Point
	return fmt.Sprintf("(hit :distance %g :point (vec3 %g %g %g))", h.hit.Distance, p.X, p.Y, p.Z)
}
func (h *sexpHit) Type() *zygo.RegisteredType { return nil }

// sexpShape wraps a decoded shape description.
type sexpShape struct {
	desc *descriptor.Descriptor
}

func (s *sexpShape) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(shape %s)", s.desc.Kind())
}
func (s *sexpShape) Type() *zygo.RegisteredType { return nil }

func num(x float64) zygo.Sexp { return &zygo.SexpFloat{Val: x} }

func vec(v geom.Vec) zygo.Sexp { return &sexpVec3{vec: v} }

// list builds a Lisp list; an empty list is nil.
func list(items ...zygo.Sexp) zygo.Sexp {
	return zygo.MakeList(items)
}

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok || !strings.HasPrefix(str.S, kwPrefix) {
		return "", false
	}
	return str.S[len(kwPrefix):], true
}

// kwArgs holds a mixed positional and keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	keys       []string
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A
// trailing keyword with no value maps to nil.
func parseArgs(args []zygo.Sexp) kwArgs {
	pa := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			pa.positional = append(pa.positional, args[i])
			continue
		}
		var v zygo.Sexp = zygo.SexpNull
		if i+1 < len(args) {
			i++
			v = args[i]
		}
		if _, seen := pa.kw[name]; !seen {
			pa.keys = append(pa.keys, name)
		}
		pa.kw[name] = v
	}
	return pa
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nil"
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// toFloat64 extracts a float64 from a SexpInt or SexpFloat.
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toInt extracts an integer, truncating floats.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(s))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", describe(s))
}

// toVec accepts a vec3/vec2 value or a list of two or three numbers.
func toVec(s zygo.Sexp) (geom.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	items, err := sexpListToSlice(s)
	if err != nil || len(items) < 2 || len(items) > 3 {
		return geom.Vec{}, fmt.Errorf("expected vector, got %s", describe(s))
	}
	var c [3]float64
	for i, item := range items {
		if c[i], err = toFloat64(item); err != nil {
			return geom.Vec{}, fmt.Errorf("vector component %d: %w", i, err)
		}
	}
	return geom.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// toPoints extracts a list of vectors.
func toPoints(s zygo.Sexp) ([]geom.Vec, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	pts := make([]geom.Vec, len(items))
	for i, item := range items {
		if pts[i], err = toVec(item); err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
	}
	return pts, nil
}

// toDescriptor accepts a shape value, or any other value that decodes as a
// shape description. Anything else fails with descriptor.ErrFormat.
func toDescriptor(s zygo.Sexp) (*descriptor.Descriptor, error) {
	if sh, ok := s.(*sexpShape); ok {
		return sh.desc, nil
	}
	v, err := toGo(s)
	if err != nil {
		return nil, err
	}
	return descriptor.Decode(v)
}

// toGo converts a zygomys value to plain Go data. Lists become []any,
// numbers float64, keywords their bare name.
func toGo(s zygo.Sexp) (any, error) {
	switch v := s.(type) {
	case nil:
		return nil, nil
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	case *zygo.SexpStr:
		if name, ok := isKW(v); ok {
			return name, nil
		}
		return v.S, nil
	case *zygo.SexpBool:
		return v.Val, nil
	case *sexpVec3:
		return v.vec, nil
	case *sexpHit:
		return v.hit, nil
	case *sexpShape:
		return v.desc, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	case *zygo.SexpPair, *zygo.SexpArray:
		items, err := sexpListToSlice(v)
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, item := range items {
			if out[i], err = toGo(item); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot convert %s to a Go value", describe(s))
}
