// Package stlexport writes a whole scene as one STL solid in world space.
// STL has no notion of nodes, materials or metadata, so it is only a
// geometry hand-off for slicers and mesh tools.
package stlexport

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/xform"
)

// ErrNoGeometry is returned when no object produced any triangles.
var ErrNoGeometry = errors.New("stlexport: scene has no geometry")

// Triangles realizes every object and returns its triangles moved into
// world space. Objects with blocking validation errors are skipped and
// logged.
func Triangles(objects []cad.Object, r kernel.Realizer, logger *slog.Logger) []*sdf.Triangle3 {
	if logger == nil {
		logger = slog.Default()
	}
	var out []*sdf.Triangle3
	for i, obj := range objects {
		if findings := cad.ValidateObject(obj); cad.HasErrors(findings) {
			logger.Warn("skipping object", "index", i, "id", obj.ID, "name", obj.Name)
			continue
		}
		m := xform.BakeSketchPlane(obj, r.Realize(obj))
		if m.IsEmpty() {
			continue
		}
		out = append(out, worldTriangles(m, xform.World(obj.Transform))...)
	}
	return out
}

func worldTriangles(m *kernel.Mesh, world sdf.M44) []*sdf.Triangle3 {
	pos := m.Positions()
	tris := make([]*sdf.Triangle3, 0, m.TriangleCount())
	for i := 0; i+2 < len(m.Indices); i += 3 {
		var t sdf.Triangle3
		for j := 0; j < 3; j++ {
			p := pos[m.Indices[i+j]]
			t[j] = world.MulPosition(v3.Vec{X: float64(p[0]), Y: float64(p[1]), Z: float64(p[2])})
		}
		tris = append(tris, &t)
	}
	return tris
}

// Save writes the scene to path as binary STL and returns the triangle
// count.
func Save(path string, objects []cad.Object, r kernel.Realizer, logger *slog.Logger) (int, error) {
	tris := Triangles(objects, r, logger)
	if len(tris) == 0 {
		return 0, ErrNoGeometry
	}
	if err := render.SaveSTL(path, tris); err != nil {
		return 0, fmt.Errorf("stlexport: save %s: %w", path, err)
	}
	return len(tris), nil
}
