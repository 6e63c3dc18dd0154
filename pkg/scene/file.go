package scene

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chazu/facet/pkg/cad"
)

// FileVersion is written to saved scene files.
const FileVersion = 1

// File is the on-disk scene document. Readers also accept a bare list of
// objects.
type File struct {
	Version int          `json:"version" yaml:"version"`
	Objects []cad.Object `json:"objects" yaml:"objects"`
}

// Load reads a scene file; the format follows the extension (.json,
// .yaml, .yml).
func Load(path string) ([]cad.Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	defer f.Close()

	objs, err := Decode(f, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("scene: %s: %w", path, err)
	}
	return objs, nil
}

// Decode parses a scene in the format named by ext. Objects missing an id
// get a fresh one, and an all-zero scale is read as unit scale since it
// almost always means the field was left out.
func Decode(r io.Reader, ext string) ([]cad.Object, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var objs []cad.Object
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		objs, err = decodeJSON(data)
	case "yaml", "yml":
		objs, err = decodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported scene format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	for i := range objs {
		if objs[i].ID == "" {
			objs[i].ID = cad.NewID()
		}
		if objs[i].Transform.Scale == (cad.Vec3{}) {
			objs[i].Transform.Scale = cad.Vec3{1, 1, 1}
		}
	}
	return objs, nil
}

func decodeJSON(data []byte) ([]cad.Object, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var objs []cad.Object
		if err := json.Unmarshal(data, &objs); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return objs, nil
	}
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	return f.Objects, nil
}

func decodeYAML(data []byte) ([]cad.Object, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(node.Content) == 0 {
		return nil, nil
	}
	root := node.Content[0]
	if root.Kind == yaml.SequenceNode {
		var objs []cad.Object
		if err := root.Decode(&objs); err != nil {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
		return objs, nil
	}
	var f File
	if err := root.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return f.Objects, nil
}

// Encode writes objects as an indented JSON scene file.
func Encode(w io.Writer, objects []cad.Object) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if objects == nil {
		objects = []cad.Object{}
	}
	return enc.Encode(File{Version: FileVersion, Objects: objects})
}

// Save writes objects to path as JSON.
func Save(path string, objects []cad.Object) error {
	var buf bytes.Buffer
	if err := Encode(&buf, objects); err != nil {
		return fmt.Errorf("scene: encode: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("scene: %w", err)
	}
	return nil
}
