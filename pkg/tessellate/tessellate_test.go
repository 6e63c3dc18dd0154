package tessellate_test

import (
	"math"
	"testing"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/tessellate"
)

func newTessellator() *tessellate.Tessellator {
	return tessellate.New(tessellate.DefaultConfig())
}

func sketchObject(closed bool, extrude *float64, pts ...cad.SketchPoint) cad.Object {
	o := cad.Create(cad.Sketch, 0)
	o.Metadata.SketchData = &cad.SketchData{
		Points:        pts,
		Closed:        closed,
		ExtrudeHeight: extrude,
	}
	return o
}

var unitSquare = []cad.SketchPoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

// checkMesh asserts the structural invariants every realized mesh must hold.
func checkMesh(t *testing.T, m *kernel.Mesh) {
	t.Helper()
	if len(m.Vertices)%3 != 0 {
		t.Errorf("vertex array length %d not a multiple of 3", len(m.Vertices))
	}
	if len(m.Normals) != len(m.Vertices) {
		t.Errorf("normals length %d != vertices length %d", len(m.Normals), len(m.Vertices))
	}
	if len(m.Indices)%3 != 0 {
		t.Errorf("index count %d not a multiple of 3", len(m.Indices))
	}
	n := uint32(m.VertexCount())
	for i, idx := range m.Indices {
		if idx >= n {
			t.Fatalf("index %d at %d out of range (vertex count %d)", idx, i, n)
		}
	}
}

// --- Primitive counts ---

func TestRealizeCounts(t *testing.T) {
	tests := []struct {
		name      string
		obj       cad.Object
		vertices  int
		triangles int
	}{
		{"box", cad.Create(cad.Box, 0), 24, 12},
		{"sphere", cad.Create(cad.Sphere, 0), 33 * 33, 32 * 62},
		{"cylinder", cad.Create(cad.Cylinder, 0), 2*33 + 2*34, 4 * 32},
		{"plane", cad.Create(cad.Plane, 0), 4, 2},
		{"empty sketch", cad.Create(cad.Sketch, 0), 0, 0},
		{"flat square", sketchObject(true, nil, unitSquare...), 4, 2},
		{"open square", sketchObject(false, cad.Float(2), unitSquare...), 4, 2},
		{"extruded square", sketchObject(true, cad.Float(2), unitSquare...), 4 + 4 + 16, 2 + 2 + 8},
	}

	tess := newTessellator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tess.Realize(tt.obj)
			checkMesh(t, m)
			if got := m.VertexCount(); got != tt.vertices {
				t.Errorf("VertexCount() = %d, want %d", got, tt.vertices)
			}
			if got := m.TriangleCount(); got != tt.triangles {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.triangles)
			}
		})
	}
}

func TestRealizeUnknownKindIsEmpty(t *testing.T) {
	o := cad.Create(cad.Box, 0)
	o.Type = "torus"
	if m := newTessellator().Realize(o); !m.IsEmpty() {
		t.Errorf("unknown kind produced %d triangles", m.TriangleCount())
	}
}

func TestRealizePartName(t *testing.T) {
	o := cad.Create(cad.Box, 0)
	if m := newTessellator().Realize(o); m.PartName != "box_1" {
		t.Errorf("PartName = %q, want box_1", m.PartName)
	}
	o.Name = ""
	if m := newTessellator().Realize(o); m.PartName != o.ID {
		t.Errorf("PartName = %q, want ID %q", m.PartName, o.ID)
	}
}

// --- Bounds ---

func TestBoxBounds(t *testing.T) {
	o := cad.Create(cad.Box, 0)
	o.Metadata.Dimensions = &cad.Dimensions{Width: cad.Float(2), Height: cad.Float(4), Depth: cad.Float(6)}

	min, max := newTessellator().Realize(o).Bounds()
	if min != [3]float32{-1, -2, -3} || max != [3]float32{1, 2, 3} {
		t.Errorf("Bounds() = %v, %v", min, max)
	}
}

func TestCylinderAlongY(t *testing.T) {
	o := cad.Create(cad.Cylinder, 0)
	o.Metadata.Dimensions = &cad.Dimensions{Radius: cad.Float(1), Length: cad.Float(4)}

	min, max := newTessellator().Realize(o).Bounds()
	if min[1] != -2 || max[1] != 2 {
		t.Errorf("Y extent = [%g, %g], want [-2, 2]", min[1], max[1])
	}
	if math.Abs(float64(max[0])-1) > 1e-5 || math.Abs(float64(max[2])-1) > 1e-5 {
		t.Errorf("radial extent = %v, want 1", max)
	}
}

func TestSphereVerticesOnRadius(t *testing.T) {
	o := cad.Create(cad.Sphere, 0)
	o.Metadata.Dimensions = &cad.Dimensions{Radius: cad.Float(3)}

	for i, p := range newTessellator().Realize(o).Positions() {
		r := math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2]))
		if math.Abs(r-3) > 1e-4 {
			t.Fatalf("vertex %d at distance %g, want 3", i, r)
		}
	}
}

func TestNonPositiveDimensionsFallBack(t *testing.T) {
	o := cad.Create(cad.Box, 0)
	o.Metadata.Dimensions = &cad.Dimensions{Width: cad.Float(0), Height: cad.Float(-3)}

	min, max := newTessellator().Realize(o).Bounds()
	if min != [3]float32{-0.5, -0.5, -0.5} || max != [3]float32{0.5, 0.5, 0.5} {
		t.Errorf("Bounds() = %v, %v, want unit box", min, max)
	}
}

func TestPlaneSizeFromConfig(t *testing.T) {
	cfg := tessellate.DefaultConfig()
	cfg.PlaneSize = 10
	min, max := tessellate.New(cfg).Realize(cad.Create(cad.Plane, 0)).Bounds()
	if min != [3]float32{-5, -5, 0} || max != [3]float32{5, 5, 0} {
		t.Errorf("Bounds() = %v, %v", min, max)
	}
}

// --- Sketches ---

func TestSketchClockwiseOutlineFacesUp(t *testing.T) {
	cw := []cad.SketchPoint{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 0}}
	m := newTessellator().Realize(sketchObject(true, nil, cw...))
	checkMesh(t, m)

	pos := m.Positions()
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := pos[m.Indices[i]], pos[m.Indices[i+1]], pos[m.Indices[i+2]]
		z := (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
		if z <= 0 {
			t.Errorf("triangle %d winds clockwise (z=%g)", i/3, z)
		}
	}
}

func TestSketchConcaveOutline(t *testing.T) {
	// An L-shape: six corners, area 3.
	l := []cad.SketchPoint{
		{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 1},
		{X: 1, Y: 1}, {X: 1, Y: 2}, {X: 0, Y: 2},
	}
	m := newTessellator().Realize(sketchObject(true, nil, l...))
	checkMesh(t, m)
	if got := m.TriangleCount(); got != 4 {
		t.Fatalf("TriangleCount() = %d, want 4", got)
	}

	var area float64
	for _, a := range triangleAreas(m) {
		area += a
	}
	if math.Abs(area-3) > 1e-6 {
		t.Errorf("triangulated area = %g, want 3", area)
	}
}

// triangleAreas returns the signed area of every triangle in the XY plane.
func triangleAreas(m *kernel.Mesh) []float64 {
	pos := m.Positions()
	areas := make([]float64, 0, m.TriangleCount())
	for i := 0; i < len(m.Indices); i += 3 {
		a, b, c := pos[m.Indices[i]], pos[m.Indices[i+1]], pos[m.Indices[i+2]]
		areas = append(areas, float64((b[0]-a[0])*(c[1]-a[1])-(b[1]-a[1])*(c[0]-a[0]))/2)
	}
	return areas
}

func TestSketchCollinearVertex(t *testing.T) {
	// A midpoint on the bottom edge must not leave a sliver or a hole.
	pts := []cad.SketchPoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	m := newTessellator().Realize(sketchObject(true, nil, pts...))
	checkMesh(t, m)

	var total float64
	for i, a := range triangleAreas(m) {
		if a <= 0 {
			t.Errorf("triangle %d has area %g", i, a)
		}
		total += a
	}
	if math.Abs(total-4) > 1e-6 {
		t.Errorf("triangulated area = %g, want 4", total)
	}
}

func TestSketchSelfIntersecting(t *testing.T) {
	pts := []cad.SketchPoint{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 0, Y: 1}, {X: 1, Y: 3}}
	m := newTessellator().Realize(sketchObject(true, cad.Float(1), pts...))
	checkMesh(t, m)
	if m.IsEmpty() {
		return
	}
	// The cured outline still spans the full extrusion.
	min, max := m.Bounds()
	if min[2] != 0 || max[2] != 1 {
		t.Errorf("Z extent = [%g, %g], want [0, 1]", min[2], max[2])
	}
}

func TestSketchDegenerate(t *testing.T) {
	tests := []struct {
		name string
		pts  []cad.SketchPoint
	}{
		{"no points", nil},
		{"one point", []cad.SketchPoint{{X: 1, Y: 1}}},
		{"two points", []cad.SketchPoint{{X: 0, Y: 0}, {X: 1, Y: 0}}},
		{"closing duplicate", []cad.SketchPoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 0}}},
		{"collinear", []cad.SketchPoint{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}},
	}
	tess := newTessellator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tess.Realize(sketchObject(true, cad.Float(1), tt.pts...))
			if !m.IsEmpty() {
				t.Errorf("degenerate sketch produced %d triangles", m.TriangleCount())
			}
		})
	}
}

func TestSketchNilData(t *testing.T) {
	o := cad.Create(cad.Sketch, 0)
	o.Metadata.SketchData = nil
	if m := newTessellator().Realize(o); !m.IsEmpty() {
		t.Error("nil sketch data should realize to an empty mesh")
	}
}

func TestExtrudedSketchHeight(t *testing.T) {
	m := newTessellator().Realize(sketchObject(true, cad.Float(2.5), unitSquare...))
	min, max := m.Bounds()
	if min != [3]float32{0, 0, 0} || max != [3]float32{1, 1, 2.5} {
		t.Errorf("Bounds() = %v, %v", min, max)
	}
}

// --- Config ---

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*tessellate.Config)
		wantErr bool
	}{
		{"defaults", func(*tessellate.Config) {}, false},
		{"radial too low", func(c *tessellate.Config) { c.RadialSegments = 2 }, true},
		{"height too low", func(c *tessellate.Config) { c.HeightSegments = 1 }, true},
		{"zero plane", func(c *tessellate.Config) { c.PlaneSize = 0 }, true},
		{"nan plane", func(c *tessellate.Config) { c.PlaneSize = math.NaN() }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tessellate.DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewReplacesInvalidFields(t *testing.T) {
	got := tessellate.New(tessellate.Config{RadialSegments: 8}).Config()
	want := tessellate.Config{
		RadialSegments: 8,
		HeightSegments: tessellate.DefaultHeightSegments,
		PlaneSize:      tessellate.DefaultPlaneSize,
	}
	if got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}
}
