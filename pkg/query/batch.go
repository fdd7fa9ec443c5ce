package query

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/shapequery/pkg/geom"
)

// Ray is an origin and a direction.
type Ray struct {
	Origin geom.Vec `json:"origin"`
	Dir    geom.Vec `json:"dir"`
}

// RaycastBatch casts every ray against s using up to workers goroutines
// (workers <= 0 means no limit). Results are in ray order. Shapes are
// immutable, so the tree is shared by all workers.
func RaycastBatch(ctx context.Context, rays []Ray, s geom.Shape, limit, workers int) ([][]geom.Hit, error) {
	out := make([][]geom.Hit, len(rays))
	err := forEach(ctx, len(rays), workers, func(i int) {
		out[i] = RaycastShape(rays[i].Origin, rays[i].Dir, s, limit)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// InsideBatch returns the signed distance of every point to s, in point
// order.
func InsideBatch(ctx context.Context, pts []geom.Vec, s geom.Shape, workers int) ([]float64, error) {
	out := make([]float64, len(pts))
	err := forEach(ctx, len(pts), workers, func(i int) {
		out[i] = s.SignedDistance(pts[i])
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// forEach runs fn for 0..n-1 on an errgroup, stopping early once ctx is
// done.
func forEach(ctx context.Context, n, workers int, fn func(i int)) error {
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i := 0; i < n; i++ {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	// Cancellation before any goroutine observed it.
	return ctx.Err()
}
