package descriptor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/shapequery/pkg/geom"
)

// ---------------------------------------------------------------------------
// Decode
// ---------------------------------------------------------------------------

func TestDecodeSelectsShape(t *testing.T) {
	tests := []struct {
		name string
		in   Record
		want geom.Kind
	}{
		{"sphere", Record{"radius": 1}, geom.KindSphere},
		{"plane", Record{"normal": Record{"z": 1}}, geom.KindPlane},
		{"line", Record{"dx": 1}, geom.KindPlane},
		{"segment", Record{"x2": 3}, geom.KindPlane},
		{"group", Record{"x": 1}, geom.KindGroup},
		{"empty record", Record{}, geom.KindGroup},
		{"radius wins over normal", Record{"radius": 1, "normal": Record{"z": 1}}, geom.KindSphere},
		{"nil radius is absent", Record{"radius": nil}, geom.KindGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := Decode(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Kind())

			s, err := Build(d)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Kind())
		})
	}
}

func TestDecodeSphere(t *testing.T) {
	d, err := Decode(Record{"x": 1, "y": 2.5, "z": int64(-3), "radius": float32(2)})
	require.NoError(t, err)
	s, err := Build(d)
	require.NoError(t, err)

	sp := s.(*geom.Sphere)
	assert.Equal(t, geom.Vec{X: 1, Y: 2.5, Z: -3}, sp.Center)
	assert.Equal(t, 2.0, sp.Radius)
}

func TestDecodePlaneNormalEncodings(t *testing.T) {
	want := geom.Vec{X: 0, Y: 1, Z: 2}
	for name, normal := range map[string]any{
		"record":  Record{"y": 1, "z": 2},
		"vec":     geom.Vec{Y: 1, Z: 2},
		"list3":   []any{0, 1, 2},
		"anymap":  map[any]any{"y": 1, "z": 2},
		"pointer": &geom.Vec{Y: 1, Z: 2},
	} {
		t.Run(name, func(t *testing.T) {
			d, err := Decode(Record{"normal": normal, "extent": 0.5})
			require.NoError(t, err)
			require.NotNil(t, d.Normal)
			assert.Equal(t, want, *d.Normal)
			assert.Equal(t, 0.5, d.Extent)
		})
	}
}

func TestDecodeLineAndSegment(t *testing.T) {
	d, err := Decode(Record{"x": 1, "y": 1, "dx": 0})
	require.NoError(t, err)
	s, err := Build(d)
	require.NoError(t, err)
	pl := s.(*geom.Plane)
	assert.Equal(t, geom.Vec{}, pl.Normal, "dy defaults to 0")

	d, err = Decode(Record{"x2": 2, "y2": 2})
	require.NoError(t, err)
	s, err = Build(d)
	require.NoError(t, err)
	seg := s.(*geom.Plane)
	assert.Equal(t, geom.Vec{X: 1, Y: 1}, seg.Center)
	assert.InDelta(t, 1.41421356, seg.Extent, 1e-6)
}

func TestDecodeGroupOrder(t *testing.T) {
	d, err := Decode(Record{
		"x": 5,
		"children": []any{
			Record{"radius": 1},
			Record{"normal": Record{"z": 1}},
			Record{"children": []any{Record{"radius": 2}}},
		},
	})
	require.NoError(t, err)
	s, err := Build(d)
	require.NoError(t, err)

	g := s.(*geom.Group)
	assert.Equal(t, geom.Vec{X: 5}, g.Origin)
	require.Len(t, g.Children, 3)
	assert.Equal(t, geom.KindSphere, g.Children[0].Kind())
	assert.Equal(t, geom.KindPlane, g.Children[1].Kind())
	assert.Equal(t, geom.KindGroup, g.Children[2].Kind())
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		pathHas string
	}{
		{"number", 42, "shape"},
		{"nil", nil, "shape"},
		{"list", []any{Record{}}, "shape"},
		{"nil descriptor", (*Descriptor)(nil), "shape"},
		{"child not a record", Record{"children": []any{Record{}, "nope"}}, "shape.children[1]"},
		{"deep child", Record{"children": []any{Record{"children": []any{1}}}}, "shape.children[0].children[0]"},
		{"children not a list", Record{"children": Record{}}, "shape.children"},
		{"radius not a number", Record{"radius": "big"}, "shape.radius"},
		{"bad normal", Record{"normal": 3}, "shape.normal"},
		{"short normal", Record{"normal": []any{1}}, "shape.normal"},
		{"bad coordinate", Record{"x": true, "radius": 1}, "shape.x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrFormat)
			assert.Contains(t, err.Error(), tt.pathHas)
		})
	}
}

func TestDecodePassesDescriptorThrough(t *testing.T) {
	d := Sphere(geom.Vec{}, 1)
	got, err := Decode(d)
	require.NoError(t, err)
	assert.Same(t, d, got)
}

func TestBuildNilChild(t *testing.T) {
	_, err := Build(Group(geom.Vec{}, Sphere(geom.Vec{}, 1), nil))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "shape.children[1]")
}

func TestRecordRoundTrip(t *testing.T) {
	d := Group(geom.Vec{X: 1},
		Sphere(geom.Vec{Y: 2}, 3),
		Plane(geom.Vec{}, geom.Vec{Z: 1}, 0.5),
		Line(geom.Vec{}, 1, 0),
		Segment(geom.Vec{}, 2, 0),
	)
	back, err := Decode(d.Record())
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

const sceneYAML = `
x: 1
children:
  - {radius: 1, z: 2}
  - normal: {z: 1}
    extent: 0.5
  - {x: 0, y: 0, dx: 1, dy: 0}
  - {x: 0, y: 0, x2: 4, y2: 0}
`

func TestLoadYAML(t *testing.T) {
	d, err := LoadYAML(strings.NewReader(sceneYAML))
	require.NoError(t, err)
	assert.Equal(t, 1.0, d.X)
	require.Len(t, d.Children, 4)
	assert.Equal(t, 1.0, *d.Children[0].Radius)
	assert.Equal(t, 2.0, d.Children[0].Z)
	assert.Equal(t, geom.Vec{Z: 1}, *d.Children[1].Normal)
	assert.Equal(t, 4.0, *d.Children[3].X2)
}

func TestLoadJSON(t *testing.T) {
	d, err := LoadJSON(strings.NewReader(`{"children":[{"radius":2},{"normal":[0,0,1]}]}`))
	require.NoError(t, err)
	require.Len(t, d.Children, 2)
	assert.Equal(t, geom.KindSphere, d.Children[0].Kind())
	assert.Equal(t, geom.Vec{Z: 1}, *d.Children[1].Normal)
}

func TestLoadRejectsScalars(t *testing.T) {
	_, err := LoadYAML(strings.NewReader("17\n"))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = LoadJSON(strings.NewReader(`[1,2]`))
	assert.ErrorIs(t, err, ErrFormat)

	_, err = LoadJSON(strings.NewReader(`{`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFormat)
}

func TestMarshalYAMLRoundTrip(t *testing.T) {
	d := Group(geom.Vec{Z: -1}, Sphere(geom.Vec{X: 1}, 2))
	out, err := MarshalYAML(d)
	require.NoError(t, err)

	back, err := LoadYAML(strings.NewReader(string(out)))
	require.NoError(t, err)
	assert.Equal(t, d, back)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile("does/not/exist.yaml")
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

func TestValidateClean(t *testing.T) {
	d := Group(geom.Vec{},
		Sphere(geom.Vec{}, 1),
		Plane(geom.Vec{}, geom.Vec{Z: 1}, 0),
		Line(geom.Vec{}, 0, 1),
		Segment(geom.Vec{}, 1, 0),
	)
	assert.Empty(t, Validate(d))
}

func TestValidateWarnings(t *testing.T) {
	tests := []struct {
		name string
		d    *Descriptor
		code string
	}{
		{"zero radius", Sphere(geom.Vec{}, 0), CodeNonPositiveRadius},
		{"zero normal", Plane(geom.Vec{}, geom.Vec{}, 0), CodeZeroNormal},
		{"long normal", Plane(geom.Vec{}, geom.Vec{Z: 2}, 0), CodeNonUnitNormal},
		{"negative extent", Plane(geom.Vec{}, geom.Vec{Z: 1}, -1), CodeNegativeExtent},
		{"zero line", Line(geom.Vec{}, 0, 0), CodeZeroDirection},
		{"scaled line", Line(geom.Vec{}, 3, 4), CodeNonUnitNormal},
		{"zero segment", Segment(geom.Vec{X: 1, Y: 1}, 1, 1), CodeZeroSegment},
		{"empty group", Group(geom.Vec{}), CodeEmptyGroup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ws := Validate(tt.d)
			require.Len(t, ws, 1)
			assert.Equal(t, tt.code, ws[0].Code)
			assert.Equal(t, "shape", ws[0].Path)
			assert.Contains(t, ws[0].String(), tt.code)
		})
	}
}

func TestValidateNestedPath(t *testing.T) {
	d := Group(geom.Vec{}, Sphere(geom.Vec{}, 1), Group(geom.Vec{}, Sphere(geom.Vec{}, -1)))
	ws := Validate(d)
	require.Len(t, ws, 1)
	assert.Equal(t, "shape.children[1].children[0]", ws[0].Path)
}
