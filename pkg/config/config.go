// Package config loads facet settings. Values are layered: built-in
// defaults, then an optional YAML file, then FACET_* environment variables
// (a .env file in the working directory is loaded first if present).
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/kernel/sdfx"
	"github.com/chazu/facet/pkg/tessellate"
)

// Realizer backends.
const (
	BackendTessellate = "tessellate"
	BackendSDF        = "sdfx"
)

// Export formats understood by the command.
var Formats = []string{"gltf", "glb", "stl", "dxf"}

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FACET_"

type Config struct {
	Backend    string            `yaml:"backend"`
	Tessellate tessellate.Config `yaml:"tessellate"`
	SDF        sdfx.Config       `yaml:"sdf"`
	Export     ExportConfig      `yaml:"export"`
	Log        LogConfig         `yaml:"log"`
}

type ExportConfig struct {
	Format    string `yaml:"format"`
	Indent    bool   `yaml:"indent"`
	Generator string `yaml:"generator"`
	OutputDir string `yaml:"output_dir"`
}

type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Backend:    BackendTessellate,
		Tessellate: tessellate.DefaultConfig(),
		SDF:        sdfx.DefaultConfig(),
		Export: ExportConfig{
			Format:    "gltf",
			Generator: "facet",
			OutputDir: ".",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment.
func Load(path string) (*Config, error) {
	// .env is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config: could not read .env", "error", err)
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		if err := cfg.decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode overlays YAML onto c. Unknown keys are rejected so typos surface.
func (c *Config) decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// applyEnv overlays FACET_* variables. Unparseable numbers are logged and
// ignored.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			slog.Warn("config: invalid integer, keeping previous value", "key", EnvPrefix+key, "value", v)
			return
		}
		*dst = n
	}
	float := func(key string, dst *float64) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			slog.Warn("config: invalid number, keeping previous value", "key", EnvPrefix+key, "value", v)
			return
		}
		*dst = f
	}
	boolean := func(key string, dst *bool) {
		v, ok := lookup(EnvPrefix + key)
		if !ok || v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("config: invalid boolean, keeping previous value", "key", EnvPrefix+key, "value", v)
			return
		}
		*dst = b
	}

	str("BACKEND", &c.Backend)
	integer("RADIAL_SEGMENTS", &c.Tessellate.RadialSegments)
	integer("HEIGHT_SEGMENTS", &c.Tessellate.HeightSegments)
	float("PLANE_SIZE", &c.Tessellate.PlaneSize)
	integer("SDF_BASE_CELLS", &c.SDF.BaseCells)
	integer("SDF_MIN_CELLS", &c.SDF.MinCells)
	integer("SDF_MAX_CELLS", &c.SDF.MaxCells)
	str("FORMAT", &c.Export.Format)
	boolean("INDENT", &c.Export.Indent)
	str("GENERATOR", &c.Export.Generator)
	str("OUTPUT_DIR", &c.Export.OutputDir)
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
}

// Validate checks every section.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendTessellate, BackendSDF:
	default:
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if err := c.Tessellate.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Backend == BackendSDF {
		if err := c.SDF.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if !isFormat(c.Export.Format) {
		return fmt.Errorf("config: unknown export format %q (want one of %s)",
			c.Export.Format, strings.Join(Formats, ", "))
	}
	if c.Export.OutputDir == "" {
		return fmt.Errorf("config: export output_dir is required")
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	return nil
}

func isFormat(s string) bool {
	return lo.Contains(Formats, strings.ToLower(s))
}

// Realizer builds the configured geometry backend.
func (c *Config) Realizer() kernel.Realizer {
	base := tessellate.New(c.Tessellate)
	if c.Backend == BackendSDF {
		return sdfx.New(c.SDF, base)
	}
	return base
}

// Logger builds a slog logger writing to w with the configured level and
// handler format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}
