package main

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/chazu/shapequery/pkg/descriptor"
	"github.com/chazu/shapequery/pkg/geom"
)

// number is a float64 that survives JSON encoding when it is not finite:
// NaN and the infinities are written as the strings "NaN", "+Inf", "-Inf".
type number float64

func (n number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	switch {
	case math.IsNaN(f):
		return []byte(`"NaN"`), nil
	case math.IsInf(f, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(f, -1):
		return []byte(`"-Inf"`), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

func (n *number) UnmarshalJSON(b []byte) error {
	switch string(b) {
	case `"NaN"`:
		*n = number(math.NaN())
		return nil
	case `"+Inf"`:
		*n = number(math.Inf(1))
		return nil
	case `"-Inf"`:
		*n = number(math.Inf(-1))
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*n = number(f)
	return nil
}

// wireVec uses the lowercase keys of the descriptor format, so points in
// the output can be fed back in as shape input.
type wireVec struct {
	X number `json:"x"`
	Y number `json:"y"`
	Z number `json:"z"`
}

func toWireVec(v geom.Vec) wireVec {
	return wireVec{X: number(v.X), Y: number(v.Y), Z: number(v.Z)}
}

type wireHit struct {
	Distance number  `json:"distance"`
	Point    wireVec `json:"point"`
	Normal   wireVec `json:"normal"`
	Reflect  wireVec `json:"reflect"`
}

func toWireHit(h geom.Hit) wireHit {
	return wireHit{
		Distance: number(h.Distance),
		Point:    toWireVec(h.Point),
		Normal:   toWireVec(h.Normal),
		Reflect:  toWireVec(h.Reflect),
	}
}

type wireRanked struct {
	Index    int     `json:"index"`
	Point    wireVec `json:"point"`
	Distance number  `json:"distance"`
}

// toWire rewrites a script value for encoding. Shapes become their
// descriptor record.
func toWire(v any) any {
	switch v := v.(type) {
	case float64:
		return number(v)
	case geom.Vec:
		return toWireVec(v)
	case geom.Hit:
		return toWireHit(v)
	case *descriptor.Descriptor:
		if v == nil {
			return nil
		}
		return toWire(v.Record())
	case descriptor.Record:
		out := make(map[string]any, len(v))
		for k, e := range v {
			out[k] = toWire(e)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = toWire(e)
		}
		return out
	}
	return v
}

// ---------------------------------------------------------------------------
// Result encoding
// ---------------------------------------------------------------------------

func (r EvalResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Value  any         `json:"value"`
		Errors []ErrorData `json:"errors"`
	}{toWire(r.Value), r.Errors})
}

func (r RaycastResult) MarshalJSON() ([]byte, error) {
	var hits [][]wireHit
	if r.Hits != nil {
		hits = make([][]wireHit, len(r.Hits))
	}
	for i, hs := range r.Hits {
		hits[i] = make([]wireHit, len(hs))
		for j, h := range hs {
			hits[i][j] = toWireHit(h)
		}
	}
	return json.Marshal(struct {
		Hits     [][]wireHit   `json:"hits"`
		Warnings []WarningData `json:"warnings"`
	}{hits, r.Warnings})
}

func (r InsideResult) MarshalJSON() ([]byte, error) {
	var ds []number
	if r.Distances != nil {
		ds = make([]number, len(r.Distances))
	}
	for i, d := range r.Distances {
		ds[i] = number(d)
	}
	return json.Marshal(struct {
		Distances []number      `json:"distances"`
		Warnings  []WarningData `json:"warnings"`
	}{ds, r.Warnings})
}

func (r EdgeResult) MarshalJSON() ([]byte, error) {
	var pts []wireVec
	if r.Points != nil {
		pts = make([]wireVec, len(r.Points))
	}
	for i, p := range r.Points {
		pts[i] = toWireVec(p)
	}
	return json.Marshal(struct {
		Points   []wireVec     `json:"points"`
		Warnings []WarningData `json:"warnings"`
	}{pts, r.Warnings})
}

func (r DistancesResult) MarshalJSON() ([]byte, error) {
	ranked := make([]wireRanked, len(r.Ranked))
	for i, rk := range r.Ranked {
		ranked[i] = wireRanked{Index: rk.Index, Point: toWireVec(rk.Point), Distance: number(rk.Distance)}
	}
	return json.Marshal(struct {
		Sort   string       `json:"sort"`
		Ranked []wireRanked `json:"ranked"`
	}{r.Sort, ranked})
}
