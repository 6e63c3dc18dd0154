package gltfexport

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/qmuntal/gltf"
)

// NodeRecord is one scene node as read back from a document.
type NodeRecord struct {
	Name        string
	Extras      *NodeExtras // nil when the node carries no CAD annotation
	Translation [3]float64
	Rotation    [4]float64
	Scale       [3]float64
	HasMesh     bool
	Material    string // material name, empty without a mesh
}

// ReadDocument decodes a .gltf or .glb payload and returns the nodes of
// its default scene in order.
func ReadDocument(data []byte) ([]NodeRecord, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("gltfexport: decode: %w", err)
	}

	scene := 0
	if doc.Scene != nil {
		scene = *doc.Scene
	}
	if scene >= len(doc.Scenes) {
		return nil, fmt.Errorf("gltfexport: scene %d not found", scene)
	}

	var out []NodeRecord
	for _, ni := range doc.Scenes[scene].Nodes {
		if ni < 0 || ni >= len(doc.Nodes) {
			return nil, fmt.Errorf("gltfexport: node index %d out of range", ni)
		}
		n := doc.Nodes[ni]
		rec := NodeRecord{
			Name:        n.Name,
			Translation: n.Translation,
			Rotation:    n.Rotation,
			Scale:       n.Scale,
			HasMesh:     n.Mesh != nil,
		}
		if n.Mesh != nil {
			rec.Material = materialName(doc, *n.Mesh)
		}
		extras, err := decodeExtras(n.Extras)
		if err != nil {
			return nil, fmt.Errorf("gltfexport: node %d extras: %w", ni, err)
		}
		rec.Extras = extras
		out = append(out, rec)
	}
	return out, nil
}

func decodeExtras(v any) (*NodeExtras, error) {
	if v == nil {
		return nil, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var e NodeExtras
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func materialName(doc *gltf.Document, mesh int) string {
	if mesh < 0 || mesh >= len(doc.Meshes) {
		return ""
	}
	for _, p := range doc.Meshes[mesh].Primitives {
		if p.Material != nil && *p.Material < len(doc.Materials) {
			return doc.Materials[*p.Material].Name
		}
	}
	return ""
}
