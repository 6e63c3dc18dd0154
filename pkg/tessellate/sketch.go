package tessellate

import (
	"math"

	earcut "github.com/rclancey/go-earcut"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/kernel"
)

// areaEpsilon is the smallest |2·area| treated as a real triangle or
// polygon, in sketch units squared.
const areaEpsilon = 1e-12

type point2 [2]float64

// sketch realizes sketch data in its local XY plane. Closed outlines with a
// positive extrude height become prisms along +Z; anything else with at
// least three distinct points becomes a flat filled polygon at z=0.
// Degenerate outlines produce an empty mesh.
func sketch(sd *cad.SketchData) *kernel.Mesh {
	if sd == nil {
		return &kernel.Mesh{}
	}
	pts := outline(sd.Points)
	if len(pts) < 3 {
		return &kernel.Mesh{}
	}

	area := signedArea(pts)
	if math.Abs(area) <= areaEpsilon {
		return &kernel.Mesh{}
	}
	if area < 0 {
		reverse(pts)
	}

	tris := triangulate(pts)
	if len(tris) == 0 {
		return &kernel.Mesh{}
	}
	if h, ok := sd.Extrusion(); ok {
		return prism(pts, tris, h)
	}
	return flat(pts, tris)
}

// outline converts sketch points, dropping consecutive duplicates and a
// closing point that repeats the first one.
func outline(in []cad.SketchPoint) []point2 {
	pts := make([]point2, 0, len(in))
	for _, p := range in {
		q := point2{p.X, p.Y}
		if len(pts) > 0 && pts[len(pts)-1] == q {
			continue
		}
		pts = append(pts, q)
	}
	for len(pts) > 1 && pts[len(pts)-1] == pts[0] {
		pts = pts[:len(pts)-1]
	}
	return pts
}

func flat(pts []point2, tris [][3]int) *kernel.Mesh {
	m := &kernel.Mesh{}
	for _, p := range pts {
		m.AddVertex(float32(p[0]), float32(p[1]), 0, 0, 0, 1)
	}
	for _, t := range tris {
		m.AddTriangle(uint32(t[0]), uint32(t[1]), uint32(t[2]))
	}
	return m
}

// prism extrudes a counter-clockwise outline from z=0 to z=h. Caps and
// walls get separate vertices so every face keeps a flat normal.
func prism(pts []point2, tris [][3]int, h float64) *kernel.Mesh {
	m := &kernel.Mesh{}
	n := len(pts)
	hf := float32(h)

	// Bottom cap faces -Z, so its winding is reversed.
	for _, p := range pts {
		m.AddVertex(float32(p[0]), float32(p[1]), 0, 0, 0, -1)
	}
	for _, t := range tris {
		m.AddTriangle(uint32(t[0]), uint32(t[2]), uint32(t[1]))
	}

	top := uint32(n)
	for _, p := range pts {
		m.AddVertex(float32(p[0]), float32(p[1]), hf, 0, 0, 1)
	}
	for _, t := range tris {
		m.AddTriangle(top+uint32(t[0]), top+uint32(t[1]), top+uint32(t[2]))
	}

	for i := 0; i < n; i++ {
		p, q := pts[i], pts[(i+1)%n]
		dx, dy := q[0]-p[0], q[1]-p[1]
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		nx, ny := float32(dy/l), float32(-dx/l)
		a := m.AddVertex(float32(p[0]), float32(p[1]), 0, nx, ny, 0)
		b := m.AddVertex(float32(q[0]), float32(q[1]), 0, nx, ny, 0)
		c := m.AddVertex(float32(q[0]), float32(q[1]), hf, nx, ny, 0)
		d := m.AddVertex(float32(p[0]), float32(p[1]), hf, nx, ny, 0)
		m.AddTriangle(a, b, c)
		m.AddTriangle(a, c, d)
	}
	return m
}

// signedArea returns the shoelace area; positive for counter-clockwise.
func signedArea(pts []point2) float64 {
	var s float64
	for i := range pts {
		p, q := pts[i], pts[(i+1)%len(pts)]
		s += p[0]*q[1] - q[0]*p[1]
	}
	return s / 2
}

func reverse(pts []point2) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// cross returns the z component of (b-a) × (c-b).
func cross(a, b, c point2) float64 {
	return (b[0]-a[0])*(c[1]-b[1]) - (b[1]-a[1])*(c[0]-b[0])
}

// triangulate ear-clips a counter-clockwise outline and returns triangles
// as indices into pts, each wound counter-clockwise. Slivers with no area
// are dropped.
func triangulate(pts []point2) [][3]int {
	flat := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		flat = append(flat, p[0], p[1])
	}
	idx, err := earcut.Earcut(flat, nil, 2)
	if err != nil {
		return nil
	}

	tris := make([][3]int, 0, len(idx)/3)
	for i := 0; i+2 < len(idx); i += 3 {
		a, b, c := idx[i], idx[i+1], idx[i+2]
		z := cross(pts[a], pts[b], pts[c])
		if math.Abs(z) <= areaEpsilon {
			continue
		}
		if z < 0 {
			b, c = c, b
		}
		tris = append(tris, [3]int{a, b, c})
	}
	return tris
}
