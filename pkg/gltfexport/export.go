package gltfexport

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/samber/lo"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/xform"
)

var (
	// ErrEmptyScene is returned when there is nothing to export.
	ErrEmptyScene = errors.New("gltfexport: scene has no objects")
	// ErrNothingExported is returned when every object was skipped.
	ErrNothingExported = errors.New("gltfexport: no object could be exported")
)

// NodeExtras is the CAD annotation attached to every node. Its JSON shape
// is the compatibility surface other tools read back.
type NodeExtras struct {
	CADType     cad.PrimitiveType `json:"cadType"`
	CADName     string            `json:"cadName"`
	CADMetadata cad.Metadata      `json:"cadMetadata"`
}

// Warning reports one object that was left out of the document.
type Warning struct {
	Index      int    // position in the input slice
	ObjectID   string
	ObjectName string
	Reason     string
}

func (w Warning) String() string {
	return fmt.Sprintf("object %d (%s %q): %s", w.Index, w.ObjectID, w.ObjectName, w.Reason)
}

// Result is the outcome of a successful export.
type Result struct {
	Data      []byte
	Format    Format
	NodeCount int
	Warnings  []Warning
}

// ExportScene realizes every object and serializes the scene. Objects are
// read, never modified. A nil error means Data holds a complete document,
// possibly with some objects skipped; see Warnings.
func ExportScene(objects []cad.Object, opts ...Option) (*Result, error) {
	if len(objects) == 0 {
		return nil, ErrEmptyScene
	}
	o := buildOptions(opts)

	doc := gltf.NewDocument()
	doc.Asset.Generator = o.generator
	materials := newMaterialTable(doc)
	res := &Result{Format: o.format}

	for i, obj := range objects {
		node, err := buildNode(doc, materials, o.realizer, obj)
		if err != nil {
			w := Warning{Index: i, ObjectID: obj.ID, ObjectName: obj.Name, Reason: err.Error()}
			o.logger.Warn("skipping object",
				"index", i, "id", obj.ID, "name", obj.Name, "reason", w.Reason)
			res.Warnings = append(res.Warnings, w)
			continue
		}
		if obj.Transform.Scale == (cad.Vec3{}) {
			// glTF omits an all-zero scale, so readers see the identity.
			o.logger.Warn("zero scale exported as identity",
				"index", i, "id", obj.ID, "name", obj.Name)
		}
		doc.Nodes = append(doc.Nodes, node)
		doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, len(doc.Nodes)-1)
	}

	if len(doc.Nodes) == 0 {
		return nil, fmt.Errorf("%w: %d skipped", ErrNothingExported, len(res.Warnings))
	}
	res.NodeCount = len(doc.Nodes)

	data, err := encode(doc, o)
	if err != nil {
		return nil, err
	}
	res.Data = data
	return res, nil
}

// buildNode appends obj's mesh and material to doc and returns its node.
// Nothing is added to doc when an error is returned.
func buildNode(doc *gltf.Document, materials *materialTable, r kernel.Realizer, obj cad.Object) (*gltf.Node, error) {
	if findings := cad.ValidateObject(obj); cad.HasErrors(findings) {
		first, _ := lo.Find(findings, func(f cad.ValidationError) bool {
			return f.Severity == cad.SeverityError
		})
		return nil, errors.New(first.Message)
	}

	extras, err := json.Marshal(NodeExtras{
		CADType:     obj.Type,
		CADName:     obj.Name,
		CADMetadata: obj.Metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("encode extras: %w", err)
	}

	mesh, err := realize(r, obj)
	if err != nil {
		return nil, err
	}

	node := &gltf.Node{
		Name:        obj.Name,
		Translation: obj.Transform.Position,
		Rotation:    xform.QuaternionDeg(obj.Transform.Rotation),
		Scale:       obj.Transform.Scale,
		Extras:      json.RawMessage(extras),
	}
	if !mesh.IsEmpty() {
		node.Mesh = gltf.Index(addMesh(doc, mesh, obj.Name, materials.lookup(obj.Metadata.Color)))
	}
	return node, nil
}

// realize runs the realizer and, for sketches, bakes the sketch-plane
// placement into the vertices.
func realize(r kernel.Realizer, obj cad.Object) (mesh *kernel.Mesh, err error) {
	defer func() {
		if p := recover(); p != nil {
			mesh, err = nil, fmt.Errorf("realize %s: panic: %v", obj.Type, p)
		}
	}()

	return xform.BakeSketchPlane(obj, r.Realize(obj)), nil
}

func addMesh(doc *gltf.Document, m *kernel.Mesh, name string, material int) int {
	attrs := map[string]int{
		gltf.POSITION: modeler.WritePosition(doc, m.Positions()),
	}
	if len(m.Normals) == len(m.Vertices) {
		attrs[gltf.NORMAL] = modeler.WriteNormal(doc, m.NormalVectors())
	}
	indices := modeler.WriteIndices(doc, m.Indices)

	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: name,
		Primitives: []*gltf.Primitive{{
			Attributes: attrs,
			Indices:    gltf.Index(indices),
			Material:   gltf.Index(material),
		}},
	})
	return len(doc.Meshes) - 1
}

func encode(doc *gltf.Document, o options) ([]byte, error) {
	if o.format == FormatGLTF {
		for _, b := range doc.Buffers {
			b.EmbeddedResource()
		}
	}

	var buf bytes.Buffer
	enc := gltf.NewEncoder(&buf)
	enc.AsBinary = o.format == FormatGLB
	if o.indent && o.format == FormatGLTF {
		enc.SetJSONIndent("", "  ")
	}
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("gltfexport: encode %s: %w", o.format, err)
	}
	return buf.Bytes(), nil
}
