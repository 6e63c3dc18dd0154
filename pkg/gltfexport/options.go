package gltfexport

import (
	"log/slog"

	"github.com/chazu/facet/pkg/kernel"
	"github.com/chazu/facet/pkg/tessellate"
)

// DefaultGenerator is written to asset.generator.
const DefaultGenerator = "facet"

type options struct {
	realizer  kernel.Realizer
	format    Format
	indent    bool
	generator string
	logger    *slog.Logger
}

// Option configures an export.
type Option func(*options)

// WithRealizer sets the geometry realizer. The default is a tessellator
// with tessellate.DefaultConfig.
func WithRealizer(r kernel.Realizer) Option {
	return func(o *options) {
		if r != nil {
			o.realizer = r
		}
	}
}

// WithFormat selects glTF JSON or GLB output.
func WithFormat(f Format) Option {
	return func(o *options) { o.format = f }
}

// WithIndent pretty-prints JSON output. Ignored for GLB.
func WithIndent(indent bool) Option {
	return func(o *options) { o.indent = indent }
}

// WithGenerator overrides asset.generator.
func WithGenerator(name string) Option {
	return func(o *options) { o.generator = name }
}

// WithLogger sets the logger used for skipped-object warnings.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		format:    FormatGLTF,
		generator: DefaultGenerator,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.realizer == nil {
		o.realizer = tessellate.New(tessellate.DefaultConfig())
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}
