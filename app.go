package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/chazu/shapequery/pkg/config"
	"github.com/chazu/shapequery/pkg/descriptor"
	"github.com/chazu/shapequery/pkg/engine"
	"github.com/chazu/shapequery/pkg/geom"
	"github.com/chazu/shapequery/pkg/kernel/sdfx"
	"github.com/chazu/shapequery/pkg/logging"
	"github.com/chazu/shapequery/pkg/query"
	"github.com/chazu/shapequery/pkg/tessellate"
)

// colorPalette assigns distinct preview colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// App ties the query packages, the script engine and the mesh kernel
// together behind JSON-friendly results. The CLI is a thin layer over it.
type App struct {
	cfg    config.Config
	log    *zap.Logger
	engine *engine.Engine
	kernel *sdfx.SdfxKernel
}

// MeshData is the JSON form of a preview mesh.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
}

// ErrorData is a JSON-serializable script error.
type ErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// WarningData is a JSON-serializable validation warning.
type WarningData struct {
	Code    string `json:"code"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// EvalResult is the outcome of running a script.
type EvalResult struct {
	Value  any         `json:"value"`
	Errors []ErrorData `json:"errors"`
}

// RaycastResult holds the hits of every ray, in ray order.
type RaycastResult struct {
	Hits     [][]geom.Hit  `json:"hits"`
	Warnings []WarningData `json:"warnings"`
}

// InsideResult holds the signed distance of every point, in point order.
type InsideResult struct {
	Distances []float64     `json:"distances"`
	Warnings  []WarningData `json:"warnings"`
}

// EdgeResult holds the nearest surface point for every query point.
type EdgeResult struct {
	Points   []geom.Vec    `json:"points"`
	Warnings []WarningData `json:"warnings"`
}

// DistancesResult holds a ranked point set.
type DistancesResult struct {
	Sort   string         `json:"sort"`
	Ranked []query.Ranked `json:"ranked"`
}

// MeshResult holds preview meshes and the leaves that produced none.
type MeshResult struct {
	Meshes   []MeshData        `json:"meshes"`
	Skipped  []tessellate.Skip `json:"skipped"`
	Warnings []WarningData     `json:"warnings"`
}

// NewApp creates an App from cfg. A nil logger discards output.
func NewApp(cfg config.Config, log *zap.Logger) *App {
	log = logging.OrNop(log)
	return &App{
		cfg: cfg,
		log: log,
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.EvalTimeout),
			engine.WithRaycastLimit(cfg.RaycastLimit),
			engine.WithLogger(log.Named("engine")),
		),
		kernel: sdfx.New(cfg.MeshCells),
	}
}

// Evaluate runs a script and returns its final value or its errors.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{Errors: []ErrorData{}}

	res, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		a.log.Error("evaluate fatal error", zap.Error(err))
		result.Errors = append(result.Errors, ErrorData{Message: err.Error()})
		return result
	}
	for _, e := range evalErrs {
		result.Errors = append(result.Errors, ErrorData{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if len(result.Errors) == 0 {
		result.Value = res.Value
	}
	return result
}

// Raycast casts every ray against the shape described by d.
func (a *App) Raycast(ctx context.Context, d *descriptor.Descriptor, rays []query.Ray) (RaycastResult, error) {
	s, warnings, err := a.build(d)
	if err != nil {
		return RaycastResult{}, err
	}
	hits, err := query.RaycastBatch(ctx, rays, s, a.cfg.RaycastLimit, a.cfg.Workers)
	if err != nil {
		return RaycastResult{}, fmt.Errorf("raycast: %w", err)
	}
	for i := range hits {
		if hits[i] == nil {
			hits[i] = []geom.Hit{}
		}
	}
	a.log.Debug("raycast", zap.Int("rays", len(rays)))
	return RaycastResult{Hits: hits, Warnings: warnings}, nil
}

// Inside returns the signed distance from every point to the shape.
func (a *App) Inside(ctx context.Context, d *descriptor.Descriptor, pts []geom.Vec) (InsideResult, error) {
	s, warnings, err := a.build(d)
	if err != nil {
		return InsideResult{}, err
	}
	ds, err := query.InsideBatch(ctx, pts, s, a.cfg.Workers)
	if err != nil {
		return InsideResult{}, fmt.Errorf("inside: %w", err)
	}
	return InsideResult{Distances: ds, Warnings: warnings}, nil
}

// Edge projects every point onto the surface of the shape.
func (a *App) Edge(d *descriptor.Descriptor, pts []geom.Vec) (EdgeResult, error) {
	s, warnings, err := a.build(d)
	if err != nil {
		return EdgeResult{}, err
	}
	out := make([]geom.Vec, len(pts))
	for i, p := range pts {
		out[i] = s.NearestPoint(p)
	}
	return EdgeResult{Points: out, Warnings: warnings}, nil
}

// Distances ranks pts by their distance to ref.
func (a *App) Distances(ref geom.Vec, pts []geom.Vec, mode query.SortMode) DistancesResult {
	return DistancesResult{Sort: mode.String(), Ranked: query.DistanceAll(ref, pts, mode)}
}

// Mesh tessellates the shape into preview meshes: one per sphere, or a
// single union when merged is set.
func (a *App) Mesh(d *descriptor.Descriptor, merged bool) (MeshResult, error) {
	s, warnings, err := a.build(d)
	if err != nil {
		return MeshResult{}, err
	}

	tess := tessellate.Tessellate
	if merged {
		tess = tessellate.Merged
	}
	res, err := tess(s, a.kernel)
	if err != nil {
		a.log.Error("tessellate error", zap.Error(err))
		return MeshResult{}, err
	}

	result := MeshResult{
		Meshes:   []MeshData{},
		Skipped:  res.Skipped,
		Warnings: warnings,
	}
	if result.Skipped == nil {
		result.Skipped = []tessellate.Skip{}
	}
	for i, m := range res.Meshes {
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Name:     m.Name,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}
	a.log.Debug("meshed",
		zap.Int("meshes", len(result.Meshes)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("cells", a.kernel.Cells()))
	return result, nil
}

// build validates d, logs its warnings and builds the shape tree.
func (a *App) build(d *descriptor.Descriptor) (geom.Shape, []WarningData, error) {
	s, err := descriptor.Build(d)
	if err != nil {
		return nil, nil, err
	}
	warnings := []WarningData{}
	for _, w := range descriptor.Validate(d) {
		a.log.Warn("degenerate shape", zap.String("code", w.Code), zap.String("path", w.Path))
		warnings = append(warnings, WarningData{Code: w.Code, Path: w.Path, Message: w.Message})
	}
	return s, warnings, nil
}
