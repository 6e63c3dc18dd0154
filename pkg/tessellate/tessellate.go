// Package tessellate is the base geometry realizer. It turns each cad.Object
// into a triangle mesh in local space using fixed, configurable angular
// resolution. One mesh is produced per object; objects are never mutated.
package tessellate

import (
	"fmt"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/kernel"
)

// Default resolution constants.
const (
	DefaultRadialSegments = 32
	DefaultHeightSegments = 32
	DefaultPlaneSize      = 2.0
)

// Config holds the tessellation constants that would otherwise be hidden
// globals. The zero value is not usable; start from DefaultConfig.
type Config struct {
	RadialSegments int     `yaml:"radial_segments"` // longitude segments (sphere, cylinder)
	HeightSegments int     `yaml:"height_segments"` // latitude segments (sphere)
	PlaneSize      float64 `yaml:"plane_size"`      // edge length of the plane primitive
}

// DefaultConfig returns the documented resolution: 32×32 segments and a
// 2×2 plane.
func DefaultConfig() Config {
	return Config{
		RadialSegments: DefaultRadialSegments,
		HeightSegments: DefaultHeightSegments,
		PlaneSize:      DefaultPlaneSize,
	}
}

// Validate rejects resolutions that cannot produce closed surfaces.
func (c Config) Validate() error {
	if c.RadialSegments < 3 {
		return fmt.Errorf("tessellate: radial segments must be >= 3, got %d", c.RadialSegments)
	}
	if c.HeightSegments < 2 {
		return fmt.Errorf("tessellate: height segments must be >= 2, got %d", c.HeightSegments)
	}
	if !(c.PlaneSize > 0) {
		return fmt.Errorf("tessellate: plane size must be positive, got %g", c.PlaneSize)
	}
	return nil
}

// Compile-time interface check.
var _ kernel.Realizer = (*Tessellator)(nil)

// Tessellator implements kernel.Realizer with analytic meshes.
type Tessellator struct {
	cfg Config
}

// New returns a Tessellator. Invalid configs are replaced field by field
// with the defaults so realization never fails.
func New(cfg Config) *Tessellator {
	def := DefaultConfig()
	if cfg.RadialSegments < 3 {
		cfg.RadialSegments = def.RadialSegments
	}
	if cfg.HeightSegments < 2 {
		cfg.HeightSegments = def.HeightSegments
	}
	if !(cfg.PlaneSize > 0) {
		cfg.PlaneSize = def.PlaneSize
	}
	return &Tessellator{cfg: cfg}
}

// Config returns the effective configuration.
func (t *Tessellator) Config() Config {
	return t.cfg
}

// Realize produces the local-space mesh for obj. Unknown kinds and
// degenerate sketches yield an empty mesh.
func (t *Tessellator) Realize(obj cad.Object) *kernel.Mesh {
	var m *kernel.Mesh
	size := obj.Metadata.Dimensions.Resolve()

	switch obj.Type {
	case cad.Box:
		m = box(size.Width, size.Height, size.Depth)
	case cad.Sphere:
		m = sphere(size.Radius, t.cfg.RadialSegments, t.cfg.HeightSegments)
	case cad.Cylinder:
		m = cylinder(size.Radius, size.Length, t.cfg.RadialSegments)
	case cad.Plane:
		m = plane(t.cfg.PlaneSize)
	case cad.Sketch:
		m = sketch(obj.Metadata.SketchData)
	default:
		m = &kernel.Mesh{}
	}

	// Prefer the object's name, fall back to its ID.
	if obj.Name != "" {
		m.PartName = obj.Name
	} else {
		m.PartName = obj.ID
	}
	return m
}
