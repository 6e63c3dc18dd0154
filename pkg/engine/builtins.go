package engine

import (
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"

	"github.com/chazu/facet/pkg/cad"
	"github.com/chazu/facet/pkg/scene"
)

// ---------------------------------------------------------------------------
// Source preprocessing
// ---------------------------------------------------------------------------

// preprocessSource transforms scene script source before passing it to
// zygomys. It performs two transformations:
//
//  1. Keyword conversion: :keyword -> "__kw_keyword" (string literal)
//     This avoids the need to register keyword symbols as globals, which
//     would conflict with user-defined variables of the same name.
//
//  2. Kebab-case to underscore: base-width -> base_width
//     zygomys does not allow hyphens in identifiers (it interprets them
//     as the subtraction operator). This converts kebab-case identifiers
//     to underscore form outside of strings and comments.
//
// Both transformations respect string literal boundaries and line comments.
func preprocessSource(source string) string {
	result := make([]byte, 0, len(source)+len(source)/4)
	b := []byte(source)
	i := 0
	for i < len(b) {
		// Skip double-quoted string literals.
		if b[i] == '"' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '"' {
				if b[i] == '\\' && i+1 < len(b) {
					result = append(result, b[i], b[i+1])
					i += 2
					continue
				}
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Skip backtick-quoted string literals.
		if b[i] == '`' {
			result = append(result, b[i])
			i++
			for i < len(b) && b[i] != '`' {
				result = append(result, b[i])
				i++
			}
			if i < len(b) {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Convert ; line comments to // comments for zygomys.
		// zygomys uses // for line comments, not the traditional Lisp ;.
		if b[i] == ';' {
			result = append(result, '/', '/')
			i++
			// Skip additional ; characters (;; style).
			for i < len(b) && b[i] == ';' {
				i++
			}
			for i < len(b) && b[i] != '\n' {
				result = append(result, b[i])
				i++
			}
			continue
		}
		// Transform :keyword to "__kw_keyword".
		if b[i] == ':' && i+1 < len(b) {
			// Preserve := (assignment operator).
			if b[i+1] == '=' {
				result = append(result, b[i], b[i+1])
				i += 2
				continue
			}
			// Check for keyword: colon followed by a letter.
			if isLetter(b[i+1]) {
				j := i + 1
				for j < len(b) && isKWChar(b[j]) {
					j++
				}
				kwName := string(b[i+1 : j])
				result = append(result, '"')
				result = append(result, []byte(kwPrefix)...)
				result = append(result, []byte(kwName)...)
				result = append(result, '"')
				i = j
				continue
			}
		}
		// Transform kebab-case identifiers: alpha-alpha -> alpha_alpha.
		// Only when hyphen sits between identifier characters (not a minus operator).
		if b[i] == '-' && i > 0 && i+1 < len(b) &&
			isIdentChar(b[i-1]) && isIdentStartChar(b[i+1]) {
			result = append(result, '_')
			i++
			continue
		}
		result = append(result, b[i])
		i++
	}
	return string(result)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '-' || c == '_'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

func isIdentStartChar(c byte) bool {
	return isLetter(c)
}

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a cad.Vec3.
type sexpVec3 struct {
	vec cad.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec[0], v.vec[1], v.vec[2])
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpPoint wraps a sketch point.
type sexpPoint struct {
	pt cad.SketchPoint
}

func (p *sexpPoint) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(pt %g %g)", p.pt.X, p.pt.Y)
}
func (p *sexpPoint) Type() *zygo.RegisteredType { return nil }

// sexpObjectRef is returned by the primitive builtins so scripts can bind
// created objects to names.
type sexpObjectRef struct {
	id   string
	kind cad.PrimitiveType
	name string
}

func (o *sexpObjectRef) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(%s %q)", o.kind, o.name)
}
func (o *sexpObjectRef) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments.
// Keywords are identified by the __kw_ prefix added during preprocessing.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if ok {
			if i+1 < len(args) {
				result.kw[name] = args[i+1]
				i += 2
			} else {
				// Trailing keyword without a value.
				result.kw[name] = zygo.SexpNull
				i++
			}
		} else {
			result.positional = append(result.positional, args[i])
			i++
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toString extracts a string from a Sexp.
func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toBool accepts true/false.
func toBool(s zygo.Sexp) (bool, error) {
	if b, ok := s.(*zygo.SexpBool); ok {
		return b.Val, nil
	}
	return false, fmt.Errorf("expected true or false, got %T (%s)", s, s.SexpString(nil))
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (cad.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return cad.Vec3{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

// toScale accepts a vec3 or a single number for uniform scale.
func toScale(s zygo.Sexp) (cad.Vec3, error) {
	if f, err := toFloat64(s); err == nil {
		return cad.Vec3{f, f, f}, nil
	}
	v, err := toVec3(s)
	if err != nil {
		return cad.Vec3{}, fmt.Errorf("expected number or vec3, got %T (%s)", s, s.SexpString(nil))
	}
	return v, nil
}

// toPoints converts a list or array of (pt x y) values. A vec3 is accepted
// too and contributes its X and Y.
func toPoints(s zygo.Sexp) ([]cad.SketchPoint, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return nil, err
	}
	pts := make([]cad.SketchPoint, 0, len(items))
	for i, item := range items {
		switch v := item.(type) {
		case *sexpPoint:
			pts = append(pts, v.pt)
		case *sexpVec3:
			pts = append(pts, cad.SketchPoint{X: v.vec[0], Y: v.vec[1]})
		default:
			return nil, fmt.Errorf("point %d: expected pt, got %T (%s)", i, item, item.SexpString(nil))
		}
	}
	return pts, nil
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// ---------------------------------------------------------------------------
// Keyword handlers
// ---------------------------------------------------------------------------

// kwHandler applies one keyword argument to the object being built.
type kwHandler func(o *cad.Object, v zygo.Sexp) error

func numberField(set func(o *cad.Object, f float64)) kwHandler {
	return func(o *cad.Object, v zygo.Sexp) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		set(o, f)
		return nil
	}
}

func vecField(set func(o *cad.Object, v cad.Vec3)) kwHandler {
	return func(o *cad.Object, v zygo.Sexp) error {
		vec, err := toVec3(v)
		if err != nil {
			return err
		}
		set(o, vec)
		return nil
	}
}

func dims(o *cad.Object) *cad.Dimensions {
	if o.Metadata.Dimensions == nil {
		o.Metadata.Dimensions = &cad.Dimensions{}
	}
	return o.Metadata.Dimensions
}

func sketchData(o *cad.Object) *cad.SketchData {
	if o.Metadata.SketchData == nil {
		o.Metadata.SketchData = &cad.SketchData{}
	}
	return o.Metadata.SketchData
}

// commonKeywords are accepted by every primitive builtin.
var commonKeywords = map[string]kwHandler{
	"name": func(o *cad.Object, v zygo.Sexp) error {
		s, err := toString(v)
		if err != nil {
			return err
		}
		o.Name = s
		return nil
	},
	"color": func(o *cad.Object, v zygo.Sexp) error {
		s, err := toString(v)
		if err != nil {
			return err
		}
		o.Metadata.Color = s
		return nil
	},
	"at":     vecField(func(o *cad.Object, v cad.Vec3) { o.Transform.Position = v }),
	"rotate": vecField(func(o *cad.Object, v cad.Vec3) { o.Transform.Rotation = v }),
	"scale": func(o *cad.Object, v zygo.Sexp) error {
		s, err := toScale(v)
		if err != nil {
			return err
		}
		o.Transform.Scale = s
		return nil
	},
	"smoothness": numberField(func(o *cad.Object, f float64) { o.Metadata.Smoothness = cad.Float(f) }),
	"tolerance":  numberField(func(o *cad.Object, f float64) { o.Metadata.Tolerance = cad.Float(f) }),
}

// kindKeywords are the dimension keywords of each primitive.
var kindKeywords = map[cad.PrimitiveType]map[string]kwHandler{
	cad.Box: {
		"width":  numberField(func(o *cad.Object, f float64) { dims(o).Width = cad.Float(f) }),
		"height": numberField(func(o *cad.Object, f float64) { dims(o).Height = cad.Float(f) }),
		"depth":  numberField(func(o *cad.Object, f float64) { dims(o).Depth = cad.Float(f) }),
	},
	cad.Sphere: {
		"radius": numberField(func(o *cad.Object, f float64) { dims(o).Radius = cad.Float(f) }),
	},
	cad.Cylinder: {
		"radius": numberField(func(o *cad.Object, f float64) { dims(o).Radius = cad.Float(f) }),
		"length": numberField(func(o *cad.Object, f float64) { dims(o).Length = cad.Float(f) }),
	},
	cad.Plane: {},
	cad.Sketch: {
		"points": func(o *cad.Object, v zygo.Sexp) error {
			pts, err := toPoints(v)
			if err != nil {
				return err
			}
			sketchData(o).Points = pts
			return nil
		},
		"closed": func(o *cad.Object, v zygo.Sexp) error {
			b, err := toBool(v)
			if err != nil {
				return err
			}
			sketchData(o).Closed = b
			return nil
		},
		"extrude":      numberField(func(o *cad.Object, f float64) { sketchData(o).ExtrudeHeight = cad.Float(f) }),
		"plane-at":     vecField(func(o *cad.Object, v cad.Vec3) { sketchData(o).PlanePosition = v }),
		"plane-rotate": vecField(func(o *cad.Object, v cad.Vec3) { sketchData(o).PlaneRotation = v }),
	},
}

// lookupKeyword finds the handler for a keyword of the given kind.
func lookupKeyword(kind cad.PrimitiveType, name string) (kwHandler, bool) {
	if h, ok := commonKeywords[name]; ok {
		return h, true
	}
	h, ok := kindKeywords[kind][name]
	return h, ok
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// registerBuiltins installs the scene DSL builtins into a zygomys
// environment. Primitive builtins append objects to store in call order.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, store *scene.Store) {

	// -----------------------------------------------------------------------
	// (vec3 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec3", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec3 requires exactly 3 arguments, got %d", len(args))
		}

		var v cad.Vec3
		for i, axis := range []string{"x", "y", "z"} {
			f, err := toFloat64(args[i])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec3: %s: %w", axis, err)
			}
			v[i] = f
		}
		return &sexpVec3{vec: v}, nil
	})

	// -----------------------------------------------------------------------
	// (pt 1 2)
	// -----------------------------------------------------------------------
	env.AddFunction("pt", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("pt requires exactly 2 arguments, got %d", len(args))
		}
		x, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: x: %w", err)
		}
		y, err := toFloat64(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("pt: y: %w", err)
		}
		return &sexpPoint{pt: cad.SketchPoint{X: x, Y: y}}, nil
	})

	// -----------------------------------------------------------------------
	// (box :width 2 :at (vec3 0 1 0) :color "#ff0000")
	// (sphere :radius 1) (cylinder :radius 0.5 :length 3) (plane)
	// (sketch :points (list (pt 0 0) (pt 1 0) (pt 1 1)) :closed true :extrude 2)
	// -----------------------------------------------------------------------
	for _, kind := range cad.PrimitiveTypes {
		env.AddFunction(string(kind), primitiveBuiltin(store, kind))
	}
}

// primitiveBuiltin returns the builtin that creates one object of kind.
// Keywords are applied in sorted order so error messages are stable.
func primitiveBuiltin(store *scene.Store, kind cad.PrimitiveType) zygo.ZlispUserFunction {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) > 0 {
			return zygo.SexpNull, fmt.Errorf("%s: unexpected positional argument %s",
				kind, pa.positional[0].SexpString(nil))
		}

		keys := lo.Keys(pa.kw)
		sort.Strings(keys)
		handlers := make([]kwHandler, len(keys))
		for i, k := range keys {
			h, ok := lookupKeyword(kind, k)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("%s: unknown keyword :%s", kind, k)
			}
			handlers[i] = h
		}

		obj, err := createObject(store, kind, func(o *cad.Object) error {
			for i, h := range handlers {
				if err := h(o, pa.kw[keys[i]]); err != nil {
					return fmt.Errorf("%s: %w", keys[i], err)
				}
			}
			return nil
		})
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpObjectRef{id: obj.ID, kind: kind, name: obj.Name}, nil
	}
}

// createObject adds an object of kind to store and edits it with apply.
// If apply or the store rejects the edit, the object is removed again so
// a failed call leaves no trace.
func createObject(store *scene.Store, kind cad.PrimitiveType, apply func(o *cad.Object) error) (cad.Object, error) {
	obj := store.Add(kind)
	var applyErr error
	err := store.Update(obj.ID, func(o *cad.Object) {
		if applyErr = apply(o); applyErr == nil {
			obj = *o
		}
	})
	if applyErr == nil {
		applyErr = err
	}
	if applyErr != nil {
		_ = store.Remove(obj.ID)
		return cad.Object{}, fmt.Errorf("%s: %w", kind, applyErr)
	}
	return obj, nil
}
