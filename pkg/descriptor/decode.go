package descriptor

import (
	"fmt"

	"github.com/chazu/shapequery/pkg/geom"
)

// Record is the generic form of a shape description, as produced by YAML
// and JSON decoders and by the script host.
type Record = map[string]any

// Decode converts a generic description tree into a Descriptor. v must be a
// Record (or a *Descriptor, returned as is); nested children must be
// records too. Vector fields accept a record with x/y/z, a geom.Vec, or a
// list of two or three numbers.
func Decode(v any) (*Descriptor, error) {
	return decode(v, "shape")
}

func decode(v any, path string) (*Descriptor, error) {
	switch r := v.(type) {
	case *Descriptor:
		if r == nil {
			break
		}
		return r, nil
	case Record:
		return decodeRecord(r, path)
	case map[any]any:
		m := make(Record, len(r))
		for k, val := range r {
			m[fmt.Sprint(k)] = val
		}
		return decodeRecord(m, path)
	}
	return nil, fmt.Errorf("%w (at %s, got %T)", ErrFormat, path, v)
}

func decodeRecord(r Record, path string) (*Descriptor, error) {
	d := &Descriptor{}
	var err error

	if d.X, err = optFloat(r, "x", path); err != nil {
		return nil, err
	}
	if d.Y, err = optFloat(r, "y", path); err != nil {
		return nil, err
	}
	if d.Z, err = optFloat(r, "z", path); err != nil {
		return nil, err
	}

	// The first selector field present decides the shape.
	if present(r, "radius") {
		radius, err := optFloat(r, "radius", path)
		if err != nil {
			return nil, err
		}
		d.Radius = &radius
		return d, nil
	}
	if present(r, "normal") {
		n, err := toVec(r["normal"], path+".normal")
		if err != nil {
			return nil, err
		}
		d.Normal = &n
		if d.Extent, err = optFloat(r, "extent", path); err != nil {
			return nil, err
		}
		return d, nil
	}
	if present(r, "dx") {
		dx, err := optFloat(r, "dx", path)
		if err != nil {
			return nil, err
		}
		d.DX = &dx
		if d.DY, err = optFloat(r, "dy", path); err != nil {
			return nil, err
		}
		return d, nil
	}
	if present(r, "x2") {
		x2, err := optFloat(r, "x2", path)
		if err != nil {
			return nil, err
		}
		d.X2 = &x2
		if d.Y2, err = optFloat(r, "y2", path); err != nil {
			return nil, err
		}
		return d, nil
	}

	if !present(r, "children") {
		return d, nil
	}
	items, ok := r["children"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s.children: expected list, got %T", ErrFormat, path, r["children"])
	}
	d.Children = make([]*Descriptor, 0, len(items))
	for i, item := range items {
		c, err := decode(item, fmt.Sprintf("%s.children[%d]", path, i))
		if err != nil {
			return nil, err
		}
		d.Children = append(d.Children, c)
	}
	return d, nil
}

// Record converts d back into its generic form. Zero coordinates are
// omitted.
func (d *Descriptor) Record() Record {
	r := Record{}
	putNonZero(r, "x", d.X)
	putNonZero(r, "y", d.Y)
	putNonZero(r, "z", d.Z)
	switch {
	case d.Radius != nil:
		r["radius"] = *d.Radius
	case d.Normal != nil:
		r["normal"] = vecRecord(*d.Normal)
		putNonZero(r, "extent", d.Extent)
	case d.DX != nil:
		r["dx"] = *d.DX
		r["dy"] = d.DY
	case d.X2 != nil:
		r["x2"] = *d.X2
		r["y2"] = d.Y2
	default:
		children := make([]any, 0, len(d.Children))
		for _, c := range d.Children {
			children = append(children, c.Record())
		}
		r["children"] = children
	}
	return r
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func present(r Record, key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// optFloat returns r[key] as a float64, or 0 if it is absent.
func optFloat(r Record, key, path string) (float64, error) {
	if !present(r, key) {
		return 0, nil
	}
	f, err := toFloat64(r[key])
	if err != nil {
		return 0, fmt.Errorf("%w: %s.%s: %v", ErrFormat, path, key, err)
	}
	return f, nil
}

// toFloat64 extracts a float64 from any Go numeric value.
func toFloat64(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T", v)
}

// toVec extracts a vector from a record, a geom.Vec or a numeric list.
// Missing components are zero.
func toVec(v any, path string) (geom.Vec, error) {
	switch t := v.(type) {
	case geom.Vec:
		return t, nil
	case *geom.Vec:
		if t != nil {
			return *t, nil
		}
	case Record:
		var out geom.Vec
		var err error
		if out.X, err = optFloat(t, "x", path); err != nil {
			return geom.Vec{}, err
		}
		if out.Y, err = optFloat(t, "y", path); err != nil {
			return geom.Vec{}, err
		}
		if out.Z, err = optFloat(t, "z", path); err != nil {
			return geom.Vec{}, err
		}
		return out, nil
	case map[any]any:
		m := make(Record, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = val
		}
		return toVec(m, path)
	case []any:
		if len(t) < 2 || len(t) > 3 {
			break
		}
		var c [3]float64
		for i, e := range t {
			f, err := toFloat64(e)
			if err != nil {
				return geom.Vec{}, fmt.Errorf("%w: %s[%d]: %v", ErrFormat, path, i, err)
			}
			c[i] = f
		}
		return geom.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
	}
	return geom.Vec{}, fmt.Errorf("%w: %s: expected vector, got %T", ErrFormat, path, v)
}

func vecRecord(v geom.Vec) Record {
	return Record{"x": v.X, "y": v.Y, "z": v.Z}
}

func putNonZero(r Record, key string, f float64) {
	if f != 0 {
		r[key] = f
	}
}
