package cad

import (
	"fmt"

	"github.com/google/uuid"
)

// IDPrefix is prepended to every generated object ID.
const IDPrefix = "obj_"

// NewID returns a fresh object ID backed by a random (version 4) UUID, so
// two objects created within the same instant never collide.
func NewID() string {
	return IDPrefix + uuid.NewString()
}

// Factory builds default objects for a requested kind.
type Factory struct {
	newID func() string
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithIDGenerator replaces the ID source. Tests use it for stable IDs; the
// generator must still return unique values.
func WithIDGenerator(fn func() string) FactoryOption {
	return func(f *Factory) {
		if fn != nil {
			f.newID = fn
		}
	}
}

// NewFactory returns a Factory using NewID unless overridden.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{newID: NewID}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create returns a fully populated object of the given kind. existingCount
// only feeds the display name ("box_2" for the second box); it plays no part
// in identity. Passing a kind outside the closed set is a programming error
// and panics.
func (f *Factory) Create(kind PrimitiveType, existingCount int) Object {
	if !kind.Valid() {
		panic(fmt.Sprintf("cad: Create: unknown primitive type %q", kind))
	}
	return Object{
		ID:   f.newID(),
		Type: kind,
		Name: fmt.Sprintf("%s_%d", kind, existingCount+1),
		Metadata: Metadata{
			Dimensions: defaultDimensions(kind),
			Smoothness: Float(DefaultSmoothness),
			Tolerance:  Float(DefaultTolerance),
			Color:      DefaultColor,
		},
		Transform: IdentityTransform(),
	}
}

func defaultDimensions(kind PrimitiveType) *Dimensions {
	switch kind {
	case Box:
		return &Dimensions{
			Width:  Float(DefaultWidth),
			Height: Float(DefaultHeight),
			Depth:  Float(DefaultDepth),
		}
	case Sphere:
		return &Dimensions{Radius: Float(DefaultRadius)}
	case Cylinder:
		return &Dimensions{Radius: Float(DefaultRadius), Length: Float(DefaultLength)}
	default:
		return &Dimensions{}
	}
}

var defaultFactory = NewFactory()

// Create builds an object with the package-level factory.
func Create(kind PrimitiveType, existingCount int) Object {
	return defaultFactory.Create(kind, existingCount)
}
