// Package xform converts object transforms into the forms exporters need:
// glTF quaternions from Euler angles, and rigid placement matrices for
// baking a sketch plane into mesh vertices.
//
// Euler angles are intrinsic XYZ, the convention of common web 3D
// runtimes: the rotation matrix is Rx·Ry·Rz.
package xform

import (
	"math"

	"github.com/deadsy/sdfx/sdf"
	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/kernel"
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// Radians converts a degree triple to radians.
func Radians(deg cad.Vec3) cad.Vec3 {
	return cad.Vec3{DegToRad(deg[0]), DegToRad(deg[1]), DegToRad(deg[2])}
}

// Quaternion returns the unit quaternion (x, y, z, w) for XYZ Euler angles
// given in radians.
func Quaternion(rad cad.Vec3) [4]float64 {
	c1, s1 := math.Cos(rad[0]/2), math.Sin(rad[0]/2)
	c2, s2 := math.Cos(rad[1]/2), math.Sin(rad[1]/2)
	c3, s3 := math.Cos(rad[2]/2), math.Sin(rad[2]/2)

	return [4]float64{
		s1*c2*c3 + c1*s2*s3,
		c1*s2*c3 - s1*c2*s3,
		c1*c2*s3 + s1*s2*c3,
		c1*c2*c3 - s1*s2*s3,
	}
}

// QuaternionDeg is Quaternion for angles in degrees.
func QuaternionDeg(deg cad.Vec3) [4]float64 {
	return Quaternion(Radians(deg))
}

// Rotation returns the rotation matrix for XYZ Euler angles in degrees.
func Rotation(deg cad.Vec3) sdf.M44 {
	r := Radians(deg)
	return sdf.RotateX(r[0]).Mul(sdf.RotateY(r[1])).Mul(sdf.RotateZ(r[2]))
}

// Placement returns the rigid transform that rotates by deg and then
// translates by pos.
func Placement(pos, deg cad.Vec3) sdf.M44 {
	return sdf.Translate3d(v3.Vec{X: pos[0], Y: pos[1], Z: pos[2]}).Mul(Rotation(deg))
}

// IsIdentity reports whether a placement would leave geometry unchanged.
func IsIdentity(pos, deg cad.Vec3) bool {
	return pos == cad.Vec3{} && deg == cad.Vec3{}
}

// Apply returns a copy of m with every vertex moved by the placement
// (pos, deg) and every normal rotated by deg. m is not modified.
func Apply(m *kernel.Mesh, pos, deg cad.Vec3) *kernel.Mesh {
	if m == nil {
		return nil
	}
	out := &kernel.Mesh{
		Vertices: make([]float32, len(m.Vertices)),
		Normals:  make([]float32, len(m.Normals)),
		Indices:  append([]uint32(nil), m.Indices...),
		PartName: m.PartName,
	}
	place := Placement(pos, deg)
	rot := Rotation(deg)

	for i := 0; i+2 < len(m.Vertices); i += 3 {
		p := place.MulPosition(v3.Vec{X: float64(m.Vertices[i]), Y: float64(m.Vertices[i+1]), Z: float64(m.Vertices[i+2])})
		out.Vertices[i], out.Vertices[i+1], out.Vertices[i+2] = float32(p.X), float32(p.Y), float32(p.Z)
	}
	for i := 0; i+2 < len(m.Normals); i += 3 {
		n := rot.MulPosition(v3.Vec{X: float64(m.Normals[i]), Y: float64(m.Normals[i+1]), Z: float64(m.Normals[i+2])})
		out.Normals[i], out.Normals[i+1], out.Normals[i+2] = float32(n.X), float32(n.Y), float32(n.Z)
	}
	return out
}

// World returns the full object-to-world matrix T·R·S for a transform.
func World(t cad.Transform) sdf.M44 {
	s := sdf.Scale3d(v3.Vec{X: t.Scale[0], Y: t.Scale[1], Z: t.Scale[2]})
	return Placement(t.Position, t.Rotation).Mul(s)
}

// BakeSketchPlane moves a sketch's realized mesh from its 2D frame onto the
// sketch plane. Meshes of other kinds, and sketches on the default plane,
// are returned unchanged.
func BakeSketchPlane(obj cad.Object, m *kernel.Mesh) *kernel.Mesh {
	if obj.Type != cad.Sketch || obj.Metadata.SketchData == nil || m.IsEmpty() {
		return m
	}
	sd := obj.Metadata.SketchData
	if IsIdentity(sd.PlanePosition, sd.PlaneRotation) {
		return m
	}
	return Apply(m, sd.PlanePosition, sd.PlaneRotation)
}
