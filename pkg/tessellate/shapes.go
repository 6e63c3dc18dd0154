package tessellate

import (
	"github.com/chewxy/math32"

	"github.com/chazu/facet/pkg/kernel"
)

// boxFace describes one face of an axis-aligned box: its outward normal n
// and two in-plane axes with u × v = n, so (−u,−v) (+u,−v) (+u,+v) (−u,+v)
// winds counter-clockwise seen from outside.
type boxFace struct {
	n, u, v [3]float32
}

var boxFaces = [6]boxFace{
	{n: [3]float32{1, 0, 0}, u: [3]float32{0, 0, -1}, v: [3]float32{0, 1, 0}},
	{n: [3]float32{-1, 0, 0}, u: [3]float32{0, 0, 1}, v: [3]float32{0, 1, 0}},
	{n: [3]float32{0, 1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, -1}},
	{n: [3]float32{0, -1, 0}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 0, 1}},
	{n: [3]float32{0, 0, 1}, u: [3]float32{1, 0, 0}, v: [3]float32{0, 1, 0}},
	{n: [3]float32{0, 0, -1}, u: [3]float32{-1, 0, 0}, v: [3]float32{0, 1, 0}},
}

// box builds an axis-aligned box centered at the origin with full extents
// w (X), h (Y) and d (Z). Each face has its own four vertices so normals
// stay flat: 24 vertices, 12 triangles.
func box(w, h, d float64) *kernel.Mesh {
	half := [3]float32{float32(w / 2), float32(h / 2), float32(d / 2)}
	m := &kernel.Mesh{
		Vertices: make([]float32, 0, 24*3),
		Normals:  make([]float32, 0, 24*3),
		Indices:  make([]uint32, 0, 36),
	}

	corners := [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for _, f := range boxFaces {
		var idx [4]uint32
		for i, c := range corners {
			var p [3]float32
			for k := 0; k < 3; k++ {
				p[k] = (f.n[k] + c[0]*f.u[k] + c[1]*f.v[k]) * half[k]
			}
			idx[i] = m.AddVertex(p[0], p[1], p[2], f.n[0], f.n[1], f.n[2])
		}
		m.AddTriangle(idx[0], idx[1], idx[2])
		m.AddTriangle(idx[0], idx[2], idx[3])
	}
	return m
}

// sphere builds a UV sphere of radius r with widthSegs longitude and
// heightSegs latitude segments. The grid has (widthSegs+1)(heightSegs+1)
// vertices; the degenerate triangles touching the poles are skipped.
func sphere(r float64, widthSegs, heightSegs int) *kernel.Mesh {
	rf := float32(r)
	m := &kernel.Mesh{}

	grid := make([][]uint32, heightSegs+1)
	for iy := 0; iy <= heightSegs; iy++ {
		v := float32(iy) / float32(heightSegs)
		row := make([]uint32, widthSegs+1)
		for ix := 0; ix <= widthSegs; ix++ {
			u := float32(ix) / float32(widthSegs)
			phi := u * 2 * math32.Pi
			theta := v * math32.Pi

			nx := -math32.Cos(phi) * math32.Sin(theta)
			ny := math32.Cos(theta)
			nz := math32.Sin(phi) * math32.Sin(theta)
			row[ix] = m.AddVertex(rf*nx, rf*ny, rf*nz, nx, ny, nz)
		}
		grid[iy] = row
	}

	for iy := 0; iy < heightSegs; iy++ {
		for ix := 0; ix < widthSegs; ix++ {
			a := grid[iy][ix+1]
			b := grid[iy][ix]
			c := grid[iy+1][ix]
			d := grid[iy+1][ix+1]
			if iy != 0 {
				m.AddTriangle(a, b, d)
			}
			if iy != heightSegs-1 {
				m.AddTriangle(b, c, d)
			}
		}
	}
	return m
}

// cylinder builds a capped cylinder of radius r and the given length along
// the local Y axis, centered at the origin.
func cylinder(r, length float64, radialSegs int) *kernel.Mesh {
	rf := float32(r)
	hh := float32(length / 2)
	m := &kernel.Mesh{}

	// Side wall: a top and a bottom ring, with radial normals.
	var rings [2][]uint32
	for row, y := range [2]float32{hh, -hh} {
		rings[row] = make([]uint32, radialSegs+1)
		for x := 0; x <= radialSegs; x++ {
			theta := float32(x) / float32(radialSegs) * 2 * math32.Pi
			s, c := math32.Sin(theta), math32.Cos(theta)
			rings[row][x] = m.AddVertex(rf*s, y, rf*c, s, 0, c)
		}
	}
	for x := 0; x < radialSegs; x++ {
		a := rings[0][x]
		b := rings[1][x]
		c := rings[1][x+1]
		d := rings[0][x+1]
		m.AddTriangle(a, b, d)
		m.AddTriangle(b, c, d)
	}

	addCap := func(y, ny float32) {
		center := m.AddVertex(0, y, 0, 0, ny, 0)
		ring := make([]uint32, radialSegs+1)
		for x := 0; x <= radialSegs; x++ {
			theta := float32(x) / float32(radialSegs) * 2 * math32.Pi
			ring[x] = m.AddVertex(rf*math32.Sin(theta), y, rf*math32.Cos(theta), 0, ny, 0)
		}
		for x := 0; x < radialSegs; x++ {
			if ny > 0 {
				m.AddTriangle(ring[x], ring[x+1], center)
			} else {
				m.AddTriangle(ring[x+1], ring[x], center)
			}
		}
	}
	addCap(hh, 1)
	addCap(-hh, -1)
	return m
}

// plane builds a size×size quad centered at the origin facing +Z.
func plane(size float64) *kernel.Mesh {
	h := float32(size / 2)
	m := &kernel.Mesh{}
	a := m.AddVertex(-h, -h, 0, 0, 0, 1)
	b := m.AddVertex(h, -h, 0, 0, 0, 1)
	c := m.AddVertex(h, h, 0, 0, 0, 1)
	d := m.AddVertex(-h, h, 0, 0, 0, 1)
	m.AddTriangle(a, b, c)
	m.AddTriangle(a, c, d)
	return m
}
