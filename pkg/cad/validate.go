package cad

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// ValidationSeverity indicates whether a finding prevents an object from
// being exported or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // object cannot be exported
	SeverityWarning                           // recovered with defaults
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single finding about one object.
type ValidationError struct {
	ObjectID string
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	if e.ObjectID == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] object %s: %s", e.Severity, e.ObjectID, e.Message)
}

// ValidationResult separates blocking errors from advisory warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking findings were produced.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate checks every object plus scene-wide invariants (unique IDs).
// It is read-only.
func Validate(objs []Object) ValidationResult {
	var all []ValidationError
	for _, o := range objs {
		all = append(all, ValidateObject(o)...)
	}
	all = append(all, validateUniqueIDs(objs)...)

	var result ValidationResult
	for _, e := range all {
		if e.Severity == SeverityError {
			result.Errors = append(result.Errors, e)
		} else {
			result.Warnings = append(result.Warnings, e)
		}
	}
	return result
}

// ValidateObject returns the findings for a single object. Error findings
// mark values that cannot be realized or serialized (unknown kind,
// non-finite numbers); warnings mark values that fall back to defaults.
func ValidateObject(o Object) []ValidationError {
	var errs []ValidationError
	add := func(sev ValidationSeverity, format string, args ...any) {
		errs = append(errs, ValidationError{
			ObjectID: o.ID,
			Message:  fmt.Sprintf(format, args...),
			Severity: sev,
		})
	}

	if !o.Type.Valid() {
		add(SeverityError, "unknown primitive type %q", o.Type)
	}

	t := o.Transform
	if !t.Position.IsFinite() {
		add(SeverityError, "position %v is not finite", t.Position)
	}
	if !t.Rotation.IsFinite() {
		add(SeverityError, "rotation %v is not finite", t.Rotation)
	}
	if !t.Scale.IsFinite() {
		add(SeverityError, "scale %v is not finite", t.Scale)
	} else if lo.Contains(t.Scale[:], 0) {
		add(SeverityWarning, "scale %v collapses the object", t.Scale)
	}

	m := o.Metadata
	if !finite(m.Smoothness) {
		add(SeverityError, "smoothness is not finite")
	}
	if !finite(m.Tolerance) {
		add(SeverityError, "tolerance is not finite")
	}
	if m.Color != "" {
		if _, _, _, ok := ParseHexColor(m.Color); !ok {
			add(SeverityWarning, "color %q is not a hex color; %s is used", m.Color, DefaultColor)
		}
	}

	errs = append(errs, validateDimensions(o)...)
	if o.Type == Sketch {
		errs = append(errs, validateSketch(o)...)
	}
	return errs
}

func validateDimensions(o Object) []ValidationError {
	d := o.Metadata.Dimensions
	if d == nil {
		return nil
	}
	fields := []struct {
		name string
		v    *float64
		def  float64
	}{
		{"width", d.Width, DefaultWidth},
		{"height", d.Height, DefaultHeight},
		{"depth", d.Depth, DefaultDepth},
		{"radius", d.Radius, DefaultRadius},
		{"length", d.Length, DefaultLength},
	}

	var errs []ValidationError
	for _, f := range fields {
		if f.v == nil {
			continue
		}
		switch {
		case !finite(f.v):
			errs = append(errs, ValidationError{
				ObjectID: o.ID,
				Message:  fmt.Sprintf("dimension %s is not finite", f.name),
				Severity: SeverityError,
			})
		case *f.v <= 0:
			errs = append(errs, ValidationError{
				ObjectID: o.ID,
				Message:  fmt.Sprintf("dimension %s=%g is not positive; %g is used", f.name, *f.v, f.def),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

func validateSketch(o Object) []ValidationError {
	sd := o.Metadata.SketchData
	warn := func(msg string) ValidationError {
		return ValidationError{ObjectID: o.ID, Message: msg, Severity: SeverityWarning}
	}
	fail := func(msg string) ValidationError {
		return ValidationError{ObjectID: o.ID, Message: msg, Severity: SeverityError}
	}

	if sd == nil || len(sd.Points) < 2 {
		return []ValidationError{warn("sketch has fewer than 2 points and no geometry")}
	}

	var errs []ValidationError
	for i, p := range sd.Points {
		if math.IsNaN(p.X) || math.IsInf(p.X, 0) || math.IsNaN(p.Y) || math.IsInf(p.Y, 0) {
			errs = append(errs, fail(fmt.Sprintf("sketch point %d is not finite", i)))
			break
		}
	}
	if !sd.PlanePosition.IsFinite() || !sd.PlaneRotation.IsFinite() {
		errs = append(errs, fail("sketch plane placement is not finite"))
	}
	if !finite(sd.ExtrudeHeight) {
		errs = append(errs, fail("sketch extrude height is not finite"))
	} else if sd.ExtrudeHeight != nil && *sd.ExtrudeHeight > 0 && !sd.Closed {
		errs = append(errs, warn("open sketch cannot be extruded; realized flat"))
	}
	return errs
}

// validateUniqueIDs flags IDs shared by more than one object. Duplicates do
// not block export since IDs are not written to the document.
func validateUniqueIDs(objs []Object) []ValidationError {
	dups := lo.FindDuplicatesBy(objs, func(o Object) string { return o.ID })
	errs := make([]ValidationError, 0, len(dups))
	for _, d := range dups {
		errs = append(errs, ValidationError{
			ObjectID: d.ID,
			Message:  "duplicate object ID",
			Severity: SeverityWarning,
		})
	}
	return errs
}

// HasErrors reports whether errs contains a blocking finding.
func HasErrors(errs []ValidationError) bool {
	return lo.ContainsBy(errs, func(e ValidationError) bool {
		return e.Severity == SeverityError
	})
}

func finite(v *float64) bool {
	return v == nil || (!math.IsNaN(*v) && !math.IsInf(*v, 0))
}
