package engine

import (
	"fmt"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/shapequery/pkg/descriptor"
	"github.com/chazu/shapequery/pkg/geom"
	"github.com/chazu/shapequery/pkg/query"
)

type builtin = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// arity wraps fn with an exact argument count check.
func arity(n int, fn builtin) builtin {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != n {
			return zygo.SexpNull, fmt.Errorf("%s requires exactly %d arguments, got %d", name, n, len(args))
		}
		return fn(env, name, args)
	}
}

// vecArgs extracts every argument as a vector.
func vecArgs(name string, args []zygo.Sexp) ([]geom.Vec, error) {
	out := make([]geom.Vec, len(args))
	for i, a := range args {
		v, err := toVec(a)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", name, i+1, err)
		}
		out[i] = v
	}
	return out, nil
}

// rankedPair renders a ranked point as (point distance).
func rankedPair(r query.Ranked) zygo.Sexp {
	return list(vec(r.Point), num(r.Distance))
}

// registerBuiltins installs the query builtins into a zygomys environment.
// limit is the raycast hit limit used when a script passes no :limit.
//
// Source must go through preprocessSource first so that :keyword tokens and
// kebab-case names (hit-point -> hit_point) are recognized.
func registerBuiltins(env *zygo.Zlisp, limit int) {

	// -----------------------------------------------------------------------
	// Vectors: (vec3 x y z) (vec2 x y) (vx v) (vy v) (vz v)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", arity(3, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return vec(geom.Vec{X: c[0], Y: c[1], Z: c[2]}), nil
	}))

	env.AddFunction("vec2", arity(2, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("vec2: y: %w", err)
		}
		return vec(geom.Vec2(x, y)), nil
	}))

	for i, axis := range []string{"vx", "vy", "vz"} {
		env.AddFunction(axis, arity(1, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			v, err := toVec(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return num([3]float64{v.X, v.Y, v.Z}[i]), nil
		}))
	}

	// -----------------------------------------------------------------------
	// Vector ops: (length v) (normalize v) (dot a b) (cross a b) (distance a b)
	// -----------------------------------------------------------------------
	env.AddFunction("length", arity(1, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := vecArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return num(query.Length(v[0])), nil
	}))

	env.AddFunction("normalize", arity(1, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := vecArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return vec(query.Normalize(v[0])), nil
	}))

	env.AddFunction("dot", arity(2, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := vecArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return num(query.Dot(v[0], v[1])), nil
	}))

	env.AddFunction("cross", arity(2, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := vecArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return vec(query.Cross(v[0], v[1])), nil
	}))

	env.AddFunction("distance", arity(2, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := vecArgs(name, args)
		if err != nil {
			return zygo.SexpNull, err
		}
		return num(query.Distance(v[0], v[1])), nil
	}))

	// -----------------------------------------------------------------------
	// (distances ref (list p ...))        -> distances in input order
	// (distances ref (list p ...) sort)   -> ((point distance) ...) ordered
	//                                        by the sign of sort
	// -----------------------------------------------------------------------
	env.AddFunction("distances", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 || len(args) > 3 {
			return zygo.SexpNull, fmt.Errorf("distances requires a reference, a point list and an optional sort, got %d arguments", len(args))
		}
		ref, err := toVec(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distances: reference: %w", err)
		}
		pts, err := toPoints(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distances: points: %w", err)
		}

		if len(args) == 2 {
			ds := query.Distances(ref, pts)
			out := make([]zygo.Sexp, len(ds))
			for i, d := range ds {
				out[i] = num(d)
			}
			return list(out...), nil
		}

		mode, err := toInt(args[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("distances: sort: %w", err)
		}
		ranked := query.DistanceAll(ref, pts, query.SortModeOf(mode))
		out := make([]zygo.Sexp, len(ranked))
		for i, r := range ranked {
			out[i] = rankedPair(r)
		}
		return list(out...), nil
	})

	// -----------------------------------------------------------------------
	// (nearest ref (list p ...)) -> (point distance), or nil for no points
	// -----------------------------------------------------------------------
	env.AddFunction("nearest", arity(2, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ref, err := toVec(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("nearest: reference: %w", err)
		}
		pts, err := toPoints(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("nearest: points: %w", err)
		}
		r, ok := query.NearestOf(ref, pts)
		if !ok {
			return zygo.SexpNull, nil
		}
		return rankedPair(r), nil
	}))

	// -----------------------------------------------------------------------
	// (shape :radius 1 :x 2)                       sphere
	// (shape :normal (vec3 0 0 1) :extent 0.5)     plane
	// (shape :dx 1 :dy 0) (shape :x2 4 :y2 0)      2D line / segment
	// (shape :x 1 child child ...)                 group
	//
	// Keywords become record fields; positional arguments are appended to
	// the children.
	// -----------------------------------------------------------------------
	env.AddFunction("shape", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		rec := descriptor.Record{}
		for _, k := range pa.keys {
			v, err := toGo(pa.kw[k])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("shape: %s: %w", k, err)
			}
			rec[k] = v
		}
		if len(pa.positional) > 0 {
			children, _ := rec["children"].([]any)
			for _, p := range pa.positional {
				v, err := toGo(p)
				if err != nil {
					return zygo.SexpNull, fmt.Errorf("shape: child: %w", err)
				}
				children = append(children, v)
			}
			rec["children"] = children
		}
		d, err := descriptor.Decode(rec)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("shape: %w", err)
		}
		return &sexpShape{desc: d}, nil
	})

	// -----------------------------------------------------------------------
	// (raycast origin dir shape [:limit n]) -> (hit ...) nearest first
	// -----------------------------------------------------------------------
	env.AddFunction("raycast", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 3 {
			return zygo.SexpNull, fmt.Errorf("raycast requires an origin, a direction and a shape, got %d arguments", len(pa.positional))
		}
		v, err := vecArgs(name, pa.positional[:2])
		if err != nil {
			return zygo.SexpNull, err
		}
		d, err := toDescriptor(pa.positional[2])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("raycast: %w", err)
		}
		n := limit
		if l, ok := pa.kw["limit"]; ok {
			if n, err = toInt(l); err != nil {
				return zygo.SexpNull, fmt.Errorf("raycast: limit: %w", err)
			}
		}

		hits, err := query.Raycast(v[0], v[1], d, n)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("raycast: %w", err)
		}
		out := make([]zygo.Sexp, len(hits))
		for i, h := range hits {
			out[i] = &sexpHit{hit: h}
		}
		return list(out...), nil
	})

	// -----------------------------------------------------------------------
	// (inside p shape) -> signed distance, negative inside
	// (edge p shape)   -> nearest surface point
	// -----------------------------------------------------------------------
	env.AddFunction("inside", arity(2, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := toVec(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inside: point: %w", err)
		}
		d, err := toDescriptor(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inside: %w", err)
		}
		sd, err := query.Inside(p, d)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("inside: %w", err)
		}
		return num(sd), nil
	}))

	env.AddFunction("edge", arity(2, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		p, err := toVec(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: point: %w", err)
		}
		d, err := toDescriptor(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: %w", err)
		}
		q, err := query.Edge(p, d)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("edge: %w", err)
		}
		return vec(q), nil
	}))

	// -----------------------------------------------------------------------
	// Hit accessors: (hit-distance h) (hit-point h) (hit-normal h)
	// (hit-reflect h). Registered in snake_case; see preprocessSource.
	// -----------------------------------------------------------------------
	accessors := map[string]func(geom.Hit) zygo.Sexp{
		"hit_distance": func(h geom.Hit) zygo.Sexp { return num(h.Distance) },
		"hit_point":    func(h geom.Hit) zygo.Sexp { return vec(h.Point) },
		"hit_normal":   func(h geom.Hit) zygo.Sexp { return vec(h.Normal) },
		"hit_reflect":  func(h geom.Hit) zygo.Sexp { return vec(h.Reflect) },
	}
	for accessor, get := range accessors {
		env.AddFunction(accessor, arity(1, func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
			h, ok := args[0].(*sexpHit)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s: expected hit, got %s", name, describe(args[0]))
			}
			return get(h.hit), nil
		}))
	}
}
