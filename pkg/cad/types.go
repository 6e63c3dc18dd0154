package cad

import (
	"math"

	"github.com/jinzhu/copier"
)

// PrimitiveType is the closed set of shape categories an object can be.
type PrimitiveType string

const (
	Box      PrimitiveType = "box"
	Sphere   PrimitiveType = "sphere"
	Cylinder PrimitiveType = "cylinder"
	Plane    PrimitiveType = "plane"
	Sketch   PrimitiveType = "sketch"
)

// PrimitiveTypes lists every supported kind in declaration order.
var PrimitiveTypes = []PrimitiveType{Box, Sphere, Cylinder, Plane, Sketch}

// Valid reports whether t is one of the supported kinds.
func (t PrimitiveType) Valid() bool {
	switch t {
	case Box, Sphere, Cylinder, Plane, Sketch:
		return true
	default:
		return false
	}
}

func (t PrimitiveType) String() string {
	return string(t)
}

// Default dimensions used when an object omits a field.
const (
	DefaultWidth  = 1.0
	DefaultHeight = 1.0
	DefaultDepth  = 1.0
	DefaultRadius = 0.5
	DefaultLength = 1.0

	DefaultColor      = "#3b82f6"
	DefaultSmoothness = 1.0
	DefaultTolerance  = 0.01
)

// Vec3 is a position, rotation or scale triple.
type Vec3 [3]float64

// IsFinite reports whether no component is NaN or infinite.
func (v Vec3) IsFinite() bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Transform places an object in the scene. Rotation is stored as Euler
// angles in degrees and converted to radians only when realized.
type Transform struct {
	Position Vec3 `json:"position" yaml:"position"`
	Rotation Vec3 `json:"rotation" yaml:"rotation"`
	Scale    Vec3 `json:"scale" yaml:"scale"`
}

// IdentityTransform returns a transform at the origin, unrotated, unit scale.
func IdentityTransform() Transform {
	return Transform{Scale: Vec3{1, 1, 1}}
}

// Dimensions holds the kind-specific size fields. Any field may be absent.
type Dimensions struct {
	Width  *float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Height *float64 `json:"height,omitempty" yaml:"height,omitempty"`
	Depth  *float64 `json:"depth,omitempty" yaml:"depth,omitempty"`
	Radius *float64 `json:"radius,omitempty" yaml:"radius,omitempty"`
	Length *float64 `json:"length,omitempty" yaml:"length,omitempty"`
}

// Size is a fully resolved set of dimensions with defaults applied.
type Size struct {
	Width, Height, Depth float64
	Radius, Length       float64
}

// Resolve applies the documented defaults to every missing, non-positive or
// non-finite field. A nil receiver resolves to all defaults.
func (d *Dimensions) Resolve() Size {
	if d == nil {
		d = &Dimensions{}
	}
	return Size{
		Width:  orDefault(d.Width, DefaultWidth),
		Height: orDefault(d.Height, DefaultHeight),
		Depth:  orDefault(d.Depth, DefaultDepth),
		Radius: orDefault(d.Radius, DefaultRadius),
		Length: orDefault(d.Length, DefaultLength),
	}
}

func orDefault(v *float64, def float64) float64 {
	if v == nil || !(*v > 0) || math.IsInf(*v, 0) {
		return def
	}
	return *v
}

// SketchPoint is a point in the sketch plane's local 2D frame.
type SketchPoint struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// SketchData describes a 2D outline and the plane it lives in.
type SketchData struct {
	Points        []SketchPoint `json:"points" yaml:"points"`
	Closed        bool          `json:"closed" yaml:"closed"`
	PlanePosition Vec3          `json:"planePosition" yaml:"planePosition"`
	PlaneRotation Vec3          `json:"planeRotation" yaml:"planeRotation"` // degrees
	ExtrudeHeight *float64      `json:"extrudeHeight,omitempty" yaml:"extrudeHeight,omitempty"`
}

// Extrusion returns the extrude height and whether the sketch should be
// swept into a prism: the outline must be closed and the height positive.
func (s *SketchData) Extrusion() (float64, bool) {
	if s == nil || !s.Closed || s.ExtrudeHeight == nil {
		return 0, false
	}
	h := *s.ExtrudeHeight
	if !(h > 0) || math.IsInf(h, 0) {
		return 0, false
	}
	return h, true
}

// Metadata carries the CAD-specific payload of an object. It is exported
// verbatim alongside the realized geometry.
type Metadata struct {
	SketchData *SketchData `json:"sketchData,omitempty" yaml:"sketchData,omitempty"`
	Dimensions *Dimensions `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
	Smoothness *float64    `json:"smoothness,omitempty" yaml:"smoothness,omitempty"`
	Tolerance  *float64    `json:"tolerance,omitempty" yaml:"tolerance,omitempty"`
	Color      string      `json:"color,omitempty" yaml:"color,omitempty"`
}

// ColorOrDefault returns the object's color, or DefaultColor when unset.
func (m Metadata) ColorOrDefault() string {
	if m.Color == "" {
		return DefaultColor
	}
	return m.Color
}

// Object is a single CAD entity. Type is immutable after creation; every
// other field may be edited in place by the owning scene.
type Object struct {
	ID        string        `json:"id" yaml:"id"`
	Type      PrimitiveType `json:"type" yaml:"type"`
	Name      string        `json:"name" yaml:"name"`
	Metadata  Metadata      `json:"metadata" yaml:"metadata"`
	Transform Transform     `json:"transform" yaml:"transform"`
}

// Clone returns a deep copy sharing no pointers or slices with o.
func (o Object) Clone() Object {
	var c Object
	if err := copier.CopyWithOption(&c, &o, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen for
		// identical types.
		panic("cad: clone: " + err.Error())
	}
	return c
}

// CloneAll deep-copies a scene.
func CloneAll(objs []Object) []Object {
	if objs == nil {
		return nil
	}
	out := make([]Object, len(objs))
	for i, o := range objs {
		out[i] = o.Clone()
	}
	return out
}

// Float returns a pointer to v, for populating optional metadata fields.
func Float(v float64) *float64 {
	return &v
}
