package gltfexport

import (
	"fmt"
	"strings"
	"time"
)

// Format selects the serialized container.
type Format int

const (
	// FormatGLTF is JSON with the mesh buffer embedded as a base64 data URI.
	FormatGLTF Format = iota
	// FormatGLB is the binary container with the buffer in a BIN chunk.
	FormatGLB
)

// Ext returns the file extension without the dot.
func (f Format) Ext() string {
	if f == FormatGLB {
		return "glb"
	}
	return "gltf"
}

func (f Format) String() string {
	return f.Ext()
}

// ParseFormat accepts "gltf" or "glb", case-insensitively, with or
// without a leading dot.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "gltf", "":
		return FormatGLTF, nil
	case "glb":
		return FormatGLB, nil
	default:
		return FormatGLTF, fmt.Errorf("gltfexport: unknown format %q", s)
	}
}

// DefaultFilename returns cad_export_<unix millis>.<ext>.
func DefaultFilename(t time.Time, f Format) string {
	return fmt.Sprintf("cad_export_%d.%s", t.UnixMilli(), f.Ext())
}
