// Package dxfexport writes sketch outlines to a DXF drawing, one
// LWPOLYLINE per sketch on a layer named after the object. Coordinates are
// the sketch's own 2D frame; plane placement and object transforms are not
// applied since DXF here is a flat drawing of the profile.
package dxfexport

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/entity"

	"github.com/chazu/facet/pkg/cad"
)

// ErrNoSketches is returned when the scene has no drawable sketch.
var ErrNoSketches = errors.New("dxfexport: scene has no sketch with 2 or more points")

// Save writes every sketch in objects to path and returns the number of
// polylines written. Sketches with fewer than 2 points are skipped.
func Save(path string, objects []cad.Object) (int, error) {
	d := dxf.NewDrawing()
	d.Header().LtScale = 1.0

	n := 0
	for _, obj := range objects {
		if obj.Type != cad.Sketch || obj.Metadata.SketchData == nil {
			continue
		}
		pts := finitePoints(obj.Metadata.SketchData.Points)
		if len(pts) < 2 {
			continue
		}

		layer := LayerName(obj)
		if _, err := d.AddLayer(layer, nearestColor(obj.Metadata.ColorOrDefault()), dxf.DefaultLineType, true); err != nil {
			// Objects may share a name; reuse the existing layer.
			if err := d.ChangeLayer(layer); err != nil {
				return 0, fmt.Errorf("dxfexport: layer %q: %w", layer, err)
			}
		}

		lwp := entity.NewLwPolyline(len(pts))
		for j, p := range pts {
			lwp.Vertices[j] = []float64{p.X, p.Y}
		}
		if obj.Metadata.SketchData.Closed {
			lwp.Closed = true
		}
		d.AddEntity(lwp)
		n++
	}
	if n == 0 {
		return 0, ErrNoSketches
	}
	if err := d.SaveAs(path); err != nil {
		return 0, fmt.Errorf("dxfexport: save %s: %w", path, err)
	}
	return n, nil
}

func finitePoints(in []cad.SketchPoint) []cad.SketchPoint {
	out := make([]cad.SketchPoint, 0, len(in))
	for _, p := range in {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// LayerName derives a DXF-safe layer name from the object's name, falling
// back to its ID.
func LayerName(obj cad.Object) string {
	name := obj.Name
	if strings.TrimSpace(name) == "" {
		name = obj.ID
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>/\":;?*|=,`+"`", r) || r < 0x20 {
			return '_'
		}
		return r
	}, name)
}

var aciColors = []struct {
	c       color.ColorNumber
	r, g, b float64
}{
	{color.Red, 1, 0, 0},
	{color.Yellow, 1, 1, 0},
	{color.Green, 0, 1, 0},
	{color.Cyan, 0, 1, 1},
	{color.Blue, 0, 0, 1},
	{color.Magenta, 1, 0, 1},
	{color.White, 1, 1, 1},
}

// nearestColor maps a hex color onto the seven basic AutoCAD colors.
func nearestColor(hex string) color.ColorNumber {
	r, g, b, ok := cad.ParseHexColor(hex)
	if !ok {
		r, g, b, _ = cad.ParseHexColor(cad.DefaultColor)
	}
	best, bestDist := color.White, math.Inf(1)
	for _, a := range aciColors {
		d := (r-a.r)*(r-a.r) + (g-a.g)*(g-a.g) + (b-a.b)*(b-a.b)
		if d < bestDist {
			best, bestDist = a.c, d
		}
	}
	return best
}
