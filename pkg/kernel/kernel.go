// Package kernel defines the geometry realization interface. A Realizer
// turns one self-describing cad.Object into a triangle mesh in the object's
// local space. Implementations (tessellate, sdfx) can be swapped without
// changing the exporters.
package kernel

import "github.com/chazu/facet/pkg/cad"

// Realizer converts a single object into mesh geometry. It must never panic
// on object data: unknown kinds and degenerate input realize to an empty
// mesh so callers can continue with the remaining objects.
type Realizer interface {
	Realize(obj cad.Object) *Mesh
}

// RealizerFunc adapts a function to the Realizer interface.
type RealizerFunc func(obj cad.Object) *Mesh

// Realize calls f(obj).
func (f RealizerFunc) Realize(obj cad.Object) *Mesh {
	return f(obj)
}
