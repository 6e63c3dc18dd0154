// Package sdfx implements kernel.Realizer with the github.com/deadsy/sdfx
// signed-distance-field library. It is the high-fidelity backend: object
// smoothness drives the marching-cubes resolution and tolerance becomes
// the round radius of box and cylinder edges.
package sdfx

import (
	"errors"
	"fmt"
	"math"

	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/tessellate"
)

// Compile-time interface check.
var _ kernel.Realizer = (*Realizer)(nil)

// Default marching cubes resolution, in cells along the longest axis.
const (
	DefaultBaseCells = 64
	DefaultMinCells  = 8
	DefaultMaxCells  = 256

	// DefaultMaxRoundFraction caps the round radius relative to the
	// smallest dimension of the shape.
	DefaultMaxRoundFraction = 0.25
)

// ErrUnsupported is returned by Shape for kinds that have no volume.
var ErrUnsupported = errors.New("sdfx: kind has no solid form")

// Config tunes the SDF realizer.
type Config struct {
	BaseCells        int     `yaml:"base_cells"`
	MinCells         int     `yaml:"min_cells"`
	MaxCells         int     `yaml:"max_cells"`
	MaxRoundFraction float64 `yaml:"max_round_fraction"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		BaseCells:        DefaultBaseCells,
		MinCells:         DefaultMinCells,
		MaxCells:         DefaultMaxCells,
		MaxRoundFraction: DefaultMaxRoundFraction,
	}
}

// Validate rejects configurations that cannot mesh anything.
func (c Config) Validate() error {
	if c.MinCells < 1 {
		return fmt.Errorf("sdfx: min cells must be >= 1, got %d", c.MinCells)
	}
	if c.MaxCells < c.MinCells {
		return fmt.Errorf("sdfx: max cells %d below min cells %d", c.MaxCells, c.MinCells)
	}
	if c.BaseCells < 1 {
		return fmt.Errorf("sdfx: base cells must be >= 1, got %d", c.BaseCells)
	}
	if c.MaxRoundFraction < 0 || c.MaxRoundFraction >= 0.5 {
		return fmt.Errorf("sdfx: max round fraction must be in [0, 0.5), got %g", c.MaxRoundFraction)
	}
	return nil
}

// Realizer meshes solids through marching cubes. Kinds without volume
// (planes, flat sketches) and anything the SDF path rejects are handed to
// the fallback realizer.
type Realizer struct {
	cfg      Config
	fallback kernel.Realizer
}

// New returns a Realizer. An invalid cfg is replaced by DefaultConfig; a
// nil fallback becomes the default tessellator.
func New(cfg Config, fallback kernel.Realizer) *Realizer {
	if cfg.Validate() != nil {
		cfg = DefaultConfig()
	}
	if fallback == nil {
		fallback = tessellate.New(tessellate.DefaultConfig())
	}
	return &Realizer{cfg: cfg, fallback: fallback}
}

// Realize implements kernel.Realizer.
func (r *Realizer) Realize(obj cad.Object) *kernel.Mesh {
	s, err := r.Shape(obj)
	if err != nil {
		return r.fallback.Realize(obj)
	}
	m := toMesh(s, r.Cells(obj))
	if m.IsEmpty() {
		return r.fallback.Realize(obj)
	}
	if obj.Name != "" {
		m.PartName = obj.Name
	} else {
		m.PartName = obj.ID
	}
	return m
}

// Cells returns the marching cubes resolution for obj.
func (r *Realizer) Cells(obj cad.Object) int {
	smooth := cad.DefaultSmoothness
	if s := obj.Metadata.Smoothness; s != nil && *s > 0 && !math.IsInf(*s, 0) {
		smooth = *s
	}
	n := int(math.Round(float64(r.cfg.BaseCells) * smooth))
	return min(max(n, r.cfg.MinCells), r.cfg.MaxCells)
}

// roundRadius returns the edge rounding for a shape whose smallest
// dimension is minDim.
func (r *Realizer) roundRadius(obj cad.Object, minDim float64) float64 {
	tol := obj.Metadata.Tolerance
	if tol == nil || !(*tol > 0) || math.IsInf(*tol, 0) {
		return 0
	}
	return math.Min(*tol, minDim*r.cfg.MaxRoundFraction)
}

// Shape returns the local-space SDF for obj, matching the placement the
// tessellator uses: centered primitives, cylinders along +Y, sketches
// extruded from z=0.
func (r *Realizer) Shape(obj cad.Object) (sdf.SDF3, error) {
	size := obj.Metadata.Dimensions.Resolve()

	switch obj.Type {
	case cad.Box:
		minDim := math.Min(size.Width, math.Min(size.Height, size.Depth))
		return sdf.Box3D(v3.Vec{X: size.Width, Y: size.Height, Z: size.Depth}, r.roundRadius(obj, minDim))
	case cad.Sphere:
		return sdf.Sphere3D(size.Radius)
	case cad.Cylinder:
		round := r.roundRadius(obj, math.Min(size.Radius, size.Length))
		s, err := sdf.Cylinder3D(size.Length, size.Radius, round)
		if err != nil {
			return nil, err
		}
		// sdfx cylinders run along Z.
		return sdf.Transform3D(s, sdf.RotateX(math.Pi/2)), nil
	case cad.Sketch:
		return extrusion(obj.Metadata.SketchData)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, obj.Type)
	}
}

func extrusion(sd *cad.SketchData) (sdf.SDF3, error) {
	h, ok := sd.Extrusion()
	if !ok {
		return nil, fmt.Errorf("%w: flat sketch", ErrUnsupported)
	}
	pts := make([]v2.Vec, 0, len(sd.Points))
	for _, p := range sd.Points {
		pts = append(pts, v2.Vec{X: p.X, Y: p.Y})
	}
	if len(pts) > 1 && pts[0] == pts[len(pts)-1] {
		pts = pts[:len(pts)-1]
	}
	if len(pts) < 3 {
		return nil, fmt.Errorf("%w: %d points", ErrUnsupported, len(pts))
	}
	profile, err := sdf.Polygon2D(pts)
	if err != nil {
		return nil, err
	}
	// Extrude3D is centered on z=0; the prism starts at the sketch plane.
	return sdf.Transform3D(sdf.Extrude3D(profile, h), sdf.Translate3d(v3.Vec{Z: h / 2})), nil
}

// toMesh converts a solid to a triangle mesh using marching cubes. Every
// triangle gets its own three vertices carrying the face normal.
func toMesh(s sdf.SDF3, cells int) *kernel.Mesh {
	renderer := render.NewMarchingCubesUniform(cells)
	triangles := render.ToTriangles(s, renderer)

	numVerts := len(triangles) * 3
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, numVerts*3),
		Normals:  make([]float32, 0, numVerts*3),
		Indices:  make([]uint32, 0, numVerts),
	}
	for _, tri := range triangles {
		n := tri.Normal()
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsNaN(n.Z) {
			// Zero-area sliver.
			continue
		}
		var idx [3]uint32
		for j := 0; j < 3; j++ {
			v := tri[j]
			idx[j] = m.AddVertex(float32(v.X), float32(v.Y), float32(v.Z), float32(n.X), float32(n.Y), float32(n.Z))
		}
		m.AddTriangle(idx[0], idx[1], idx[2])
	}
	return m
}
