package xform

import (
	"math"
	"testing"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/kernel"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

// rotate applies quaternion q to v.
func rotate(q [4]float64, v v3.Vec) v3.Vec {
	x, y, z, w := q[0], q[1], q[2], q[3]
	// t = 2 * cross(q.xyz, v)
	tx := 2 * (y*v.Z - z*v.Y)
	ty := 2 * (z*v.X - x*v.Z)
	tz := 2 * (x*v.Y - y*v.X)
	return v3.Vec{
		X: v.X + w*tx + (y*tz - z*ty),
		Y: v.Y + w*ty + (z*tx - x*tz),
		Z: v.Z + w*tz + (x*ty - y*tx),
	}
}

func TestDegToRad(t *testing.T) {
	tests := []struct {
		deg, want float64
	}{
		{0, 0},
		{90, math.Pi / 2},
		{180, math.Pi},
		{-45, -math.Pi / 4},
	}
	for _, tt := range tests {
		if got := DegToRad(tt.deg); !near(got, tt.want) {
			t.Errorf("DegToRad(%g) = %g, want %g", tt.deg, got, tt.want)
		}
	}
}

func TestQuaternionIdentity(t *testing.T) {
	if got := QuaternionDeg(cad.Vec3{}); got != [4]float64{0, 0, 0, 1} {
		t.Errorf("QuaternionDeg(0) = %v, want [0 0 0 1]", got)
	}
}

func TestQuaternionSingleAxis(t *testing.T) {
	s := math.Sqrt2 / 2
	tests := []struct {
		name string
		deg  cad.Vec3
		want [4]float64
	}{
		{"x90", cad.Vec3{90, 0, 0}, [4]float64{s, 0, 0, s}},
		{"y90", cad.Vec3{0, 90, 0}, [4]float64{0, s, 0, s}},
		{"z90", cad.Vec3{0, 0, 90}, [4]float64{0, 0, s, s}},
		{"x180", cad.Vec3{180, 0, 0}, [4]float64{1, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuaternionDeg(tt.deg)
			for i := range got {
				if !near(got[i], tt.want[i]) {
					t.Fatalf("QuaternionDeg(%v) = %v, want %v", tt.deg, got, tt.want)
				}
			}
		})
	}
}

func TestQuaternionMatchesRotationMatrix(t *testing.T) {
	angles := []cad.Vec3{
		{30, 0, 0},
		{0, 45, 0},
		{10, 20, 30},
		{-75, 120, 15},
		{90, 90, 90},
	}
	probes := []v3.Vec{{X: 1}, {Y: 1}, {Z: 1}, {X: 1, Y: -2, Z: 3}}

	for _, deg := range angles {
		q := QuaternionDeg(deg)
		norm := q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3]
		if !near(norm, 1) {
			t.Errorf("%v: quaternion norm² = %g", deg, norm)
		}
		m := Rotation(deg)
		for _, p := range probes {
			a, b := rotate(q, p), m.MulPosition(p)
			if !near(a.X, b.X) || !near(a.Y, b.Y) || !near(a.Z, b.Z) {
				t.Errorf("%v on %v: quaternion %v, matrix %v", deg, p, a, b)
			}
		}
	}
}

func TestPlacementRotatesThenTranslates(t *testing.T) {
	m := Placement(cad.Vec3{10, 0, 0}, cad.Vec3{0, 0, 90})
	got := m.MulPosition(v3.Vec{X: 1})
	if !near(got.X, 10) || !near(got.Y, 1) || !near(got.Z, 0) {
		t.Errorf("MulPosition = %v, want (10, 1, 0)", got)
	}
}

func TestApply(t *testing.T) {
	src := &kernel.Mesh{PartName: "s"}
	a := src.AddVertex(1, 0, 0, 0, 0, 1)
	b := src.AddVertex(0, 1, 0, 0, 0, 1)
	c := src.AddVertex(0, 0, 0, 0, 0, 1)
	src.AddTriangle(a, b, c)

	// Standing the XY plane up on its edge: +Z normal becomes -Y.
	out := Apply(src, cad.Vec3{0, 0, 5}, cad.Vec3{90, 0, 0})

	if src.Vertices[2] != 0 || src.Normals[2] != 1 {
		t.Fatal("Apply modified its input")
	}
	if out.PartName != "s" || len(out.Indices) != 3 {
		t.Errorf("PartName/Indices not carried over: %+v", out)
	}
	pos := out.Positions()
	if math.Abs(float64(pos[1][2])-6) > 1e-6 || math.Abs(float64(pos[1][1])) > 1e-6 {
		t.Errorf("vertex 1 = %v, want (0, 0, 6)", pos[1])
	}
	n := out.NormalVectors()[0]
	if math.Abs(float64(n[1])+1) > 1e-6 || math.Abs(float64(n[2])) > 1e-6 {
		t.Errorf("normal = %v, want (0, -1, 0)", n)
	}
}

func TestApplyNil(t *testing.T) {
	if Apply(nil, cad.Vec3{1, 2, 3}, cad.Vec3{}) != nil {
		t.Error("Apply(nil) should return nil")
	}
}

func TestIsIdentity(t *testing.T) {
	if !IsIdentity(cad.Vec3{}, cad.Vec3{}) {
		t.Error("zero placement should be identity")
	}
	if IsIdentity(cad.Vec3{0, 0, 1}, cad.Vec3{}) {
		t.Error("translated placement should not be identity")
	}
}

func TestWorldScalesFirst(t *testing.T) {
	w := World(cad.Transform{
		Position: cad.Vec3{0, 0, 1},
		Rotation: cad.Vec3{0, 0, 90},
		Scale:    cad.Vec3{2, 1, 1},
	})
	// (1,0,0) scaled to (2,0,0), rotated to (0,2,0), lifted to z=1.
	got := w.MulPosition(v3.Vec{X: 1})
	if !near(got.X, 0) || !near(got.Y, 2) || !near(got.Z, 1) {
		t.Errorf("MulPosition = %v, want (0, 2, 1)", got)
	}
}

func TestBakeSketchPlane(t *testing.T) {
	m := &kernel.Mesh{}
	a := m.AddVertex(1, 0, 0, 0, 0, 1)
	b := m.AddVertex(0, 1, 0, 0, 0, 1)
	c := m.AddVertex(0, 0, 0, 0, 0, 1)
	m.AddTriangle(a, b, c)

	box := cad.Create(cad.Box, 0)
	if got := BakeSketchPlane(box, m); got != m {
		t.Error("non-sketch mesh should be returned as is")
	}

	sk := cad.Create(cad.Sketch, 0)
	sk.Metadata.SketchData = &cad.SketchData{}
	if got := BakeSketchPlane(sk, m); got != m {
		t.Error("sketch on the default plane should be returned as is")
	}

	sk.Metadata.SketchData.PlanePosition = cad.Vec3{0, 0, 2}
	got := BakeSketchPlane(sk, m)
	if got == m {
		t.Fatal("placed sketch should produce a new mesh")
	}
	if got.Vertices[2] != 2 {
		t.Errorf("z = %g, want 2", got.Vertices[2])
	}
}
