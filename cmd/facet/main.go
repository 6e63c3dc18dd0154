// Command facet loads a scene script or scene file and exports it.
//
//	facet [flags] export <scene>   write glTF, GLB, STL or DXF
//	facet [flags] check <scene>    print a JSON summary of the scene
//	facet [flags] dump <scene>     print the scene as a JSON scene file
//
// Scripts end in .facet; .json, .yaml and .yml are scene files.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/chazu/facet/pkg/config"
	"github.com/chazu/facet/pkg/scene"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("facet", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML config file")
	format := fs.String("format", "", "export format: gltf, glb, stl or dxf (overrides config)")
	out := fs.String("out", "", "output path (default <output_dir>/cad_export_<millis>.<ext>)")
	backend := fs.String("backend", "", "geometry backend: tessellate or sdfx (overrides config)")
	indent := fs.Bool("indent", false, "pretty-print glTF JSON")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: facet [flags] export|check|dump <scene>")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return 2
	}
	cmd, path := fs.Arg(0), fs.Arg(1)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if *format != "" {
		cfg.Export.Format = *format
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *indent {
		cfg.Export.Indent = true
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger := cfg.Logger(stderr)
	app := NewApp(cfg, logger)

	res, err := app.Load(path)
	if err != nil && cmd != "check" {
		logger.Error("load failed", "path", path, "error", err)
		return 1
	}
	for _, w := range res.Warnings {
		logger.Warn("scene warning", "object", w.ObjectID, "message", w.Message)
	}

	switch cmd {
	case "export":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		written, err := app.Export(ctx, res.Objects, cfg.Export.Format, *out)
		if err != nil {
			logger.Error("export failed", "error", err)
			return 1
		}
		fmt.Fprintln(stdout, written)

	case "check":
		if err != nil && !errors.Is(err, ErrScript) {
			logger.Error("load failed", "path", path, "error", err)
			return 1
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			logger.Error("encode failed", "error", err)
			return 1
		}
		if len(res.Errors) > 0 {
			return 1
		}

	case "dump":
		if *out != "" {
			if err := scene.Save(*out, res.Objects); err != nil {
				logger.Error("save failed", "error", err)
				return 1
			}
			fmt.Fprintln(stdout, *out)
			return 0
		}
		if err := scene.Encode(stdout, res.Objects); err != nil {
			logger.Error("encode failed", "error", err)
			return 1
		}

	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}
	return 0
}
