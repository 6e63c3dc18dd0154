package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/dxfexport"
	"github.com/chazu/facet/pkg/engine"
	"github.com/chazu/facet/pkg/gltfexport"
	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/scene"
	"github.com/chazu/facet/pkg/stlexport"
)

// scriptExts are evaluated by the engine; anything else is a scene file.
var scriptExts = []string{".facet", ".zy"}

// ErrScript is returned by Load when a script produced errors.
var ErrScript = errors.New("script failed")

// App wires the engine, the configured realizer and the exporters.
type App struct {
	cfg      *config.Config
	engine   *engine.Engine
	realizer kernel.Realizer
	log      *slog.Logger
	now      func() time.Time
}

// MeshData summarizes one realized object.
type MeshData struct {
	PartName  string     `json:"partName"`
	Type      string     `json:"type"`
	Color     string     `json:"color"`
	Vertices  int        `json:"vertices"`
	Triangles int        `json:"triangles"`
	Min       [3]float32 `json:"min"`
	Max       [3]float32 `json:"max"`
}

// Diagnostic is an error or warning tied to a script line or an object.
type Diagnostic struct {
	Line     int    `json:"line,omitempty"`
	Col      int    `json:"col,omitempty"`
	ObjectID string `json:"objectId,omitempty"`
	Message  string `json:"message"`
}

// EvalResult is the outcome of loading a scene.
type EvalResult struct {
	Objects  []cad.Object `json:"-"`
	Meshes   []MeshData   `json:"meshes"`
	Errors   []Diagnostic `json:"errors"`
	Warnings []Diagnostic `json:"warnings"`
}

// NewApp creates an App from cfg. Nil arguments fall back to
// config.Default and slog.Default.
func NewApp(cfg *config.Config, logger *slog.Logger) *App {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		cfg:      cfg,
		engine:   engine.NewEngine(),
		realizer: cfg.Realizer(),
		log:      logger,
		now:      time.Now,
	}
}

// Evaluate runs script source and realizes every object it built.
func (a *App) Evaluate(source string) EvalResult {
	result := EvalResult{
		Meshes:   []MeshData{},
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}

	// Step 1: Evaluate the script into objects.
	res := a.engine.Run(source)
	for _, e := range res.Errors {
		result.Errors = append(result.Errors, Diagnostic{Line: e.Line, Col: e.Col, Message: e.Message})
	}
	if len(result.Errors) > 0 {
		a.log.Debug("evaluate failed", "errors", len(result.Errors))
		return result
	}
	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, Diagnostic{ObjectID: w.ObjectID, Message: w.Message})
	}

	// Step 2: Realize each object for the summary.
	result.Objects = res.Objects
	result.Meshes = a.summarize(res.Objects)
	return result
}

// Load reads a script or scene file. Scene files are validated the same
// way script output is.
func (a *App) Load(path string) (EvalResult, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range scriptExts {
		if ext != s {
			continue
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return EvalResult{}, err
		}
		res := a.Evaluate(string(src))
		if len(res.Errors) > 0 {
			return res, fmt.Errorf("%s: %w: %s", path, ErrScript, res.Errors[0].Message)
		}
		return res, nil
	}

	objs, err := scene.Load(path)
	if err != nil {
		return EvalResult{}, err
	}
	result := EvalResult{
		Objects:  objs,
		Meshes:   a.summarize(objs),
		Errors:   []Diagnostic{},
		Warnings: []Diagnostic{},
	}
	v := cad.Validate(objs)
	for _, f := range append(v.Errors, v.Warnings...) {
		result.Warnings = append(result.Warnings, Diagnostic{ObjectID: f.ObjectID, Message: f.Message})
	}
	return result, nil
}

func (a *App) summarize(objs []cad.Object) []MeshData {
	meshes := make([]MeshData, 0, len(objs))
	for _, o := range objs {
		if !o.Type.Valid() {
			continue
		}
		m := a.realizer.Realize(o)
		min, max := m.Bounds()
		meshes = append(meshes, MeshData{
			PartName:  m.PartName,
			Type:      string(o.Type),
			Color:     cad.NormalizeColor(o.Metadata.Color),
			Vertices:  m.VertexCount(),
			Triangles: m.TriangleCount(),
			Min:       min,
			Max:       max,
		})
	}
	return meshes
}

// Export writes objects in format to out. An empty out places
// cad_export_<millis>.<ext> in the configured output directory. It returns
// the path written.
func (a *App) Export(ctx context.Context, objects []cad.Object, format, out string) (string, error) {
	format = strings.ToLower(strings.TrimPrefix(format, "."))
	if out == "" {
		out = filepath.Join(a.cfg.Export.OutputDir, a.defaultFilename(format))
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}

	switch format {
	case "gltf", "glb":
		f, err := gltfexport.ParseFormat(format)
		if err != nil {
			return "", err
		}
		res, err := gltfexport.ExportContext(ctx, objects,
			gltfexport.WithRealizer(a.realizer),
			gltfexport.WithFormat(f),
			gltfexport.WithIndent(a.cfg.Export.Indent),
			gltfexport.WithGenerator(a.cfg.Export.Generator),
			gltfexport.WithLogger(a.log),
		)
		if err != nil {
			return "", err
		}
		if err := os.WriteFile(out, res.Data, 0o644); err != nil {
			return "", err
		}
		a.log.Info("exported scene", "path", out, "nodes", res.NodeCount, "skipped", len(res.Warnings))

	case "stl":
		n, err := stlexport.Save(out, objects, a.realizer, a.log)
		if err != nil {
			return "", err
		}
		a.log.Info("exported scene", "path", out, "triangles", n)

	case "dxf":
		n, err := dxfexport.Save(out, objects)
		if err != nil {
			return "", err
		}
		a.log.Info("exported sketches", "path", out, "polylines", n)

	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	return out, nil
}

func (a *App) defaultFilename(format string) string {
	t := a.now()
	if f, err := gltfexport.ParseFormat(format); err == nil {
		return gltfexport.DefaultFilename(t, f)
	}
	return fmt.Sprintf("cad_export_%d.%s", t.UnixMilli(), format)
}
