package gltfexport

import (
	"math"

	"github.com/qmuntal/gltf"

	"github.com/chazu/facet/pkg/cad"
)

// materialTable hands out one material per distinct normalized color, in
// first-use order.
type materialTable struct {
	doc   *gltf.Document
	index map[string]int
}

func newMaterialTable(doc *gltf.Document) *materialTable {
	return &materialTable{doc: doc, index: make(map[string]int)}
}

// lookup returns the material index for hex, adding it on first use.
// Unparsable colors share the default color's material.
func (t *materialTable) lookup(hex string) int {
	key := cad.NormalizeColor(hex)
	if i, ok := t.index[key]; ok {
		return i
	}
	i := len(t.doc.Materials)
	t.doc.Materials = append(t.doc.Materials, newMaterial(key))
	t.index[key] = i
	return i
}

func newMaterial(hex string) *gltf.Material {
	r, g, b, _ := cad.ParseHexColor(hex)
	factor := [4]float64{srgbToLinear(r), srgbToLinear(g), srgbToLinear(b), 1}
	return &gltf.Material{
		Name: hex,
		PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
			BaseColorFactor: &factor,
			MetallicFactor:  gltf.Float(0),
			RoughnessFactor: gltf.Float(1),
		},
	}
}

// srgbToLinear applies the sRGB electro-optical transfer function, since
// glTF base colors are linear.
func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}
