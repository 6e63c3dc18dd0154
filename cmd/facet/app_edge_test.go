package main

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// 1. Empty editor: empty string -> 0 meshes, 0 errors.
// ---------------------------------------------------------------------------

func TestE2EEmptySourceExtended(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate("")

	if len(result.Errors) != 0 {
		t.Errorf("expected 0 errors for empty source, got %d", len(result.Errors))
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes for empty source, got %d", len(result.Meshes))
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected 0 warnings for empty source, got %d", len(result.Warnings))
	}
	// Ensure slices are non-nil (JSON should serialize as [] not null).
	if result.Meshes == nil {
		t.Error("Meshes should be non-nil empty slice, got nil")
	}
	if result.Errors == nil {
		t.Error("Errors should be non-nil empty slice, got nil")
	}
	if result.Warnings == nil {
		t.Error("Warnings should be non-nil empty slice, got nil")
	}
}

// ---------------------------------------------------------------------------
// 2. Syntax error mid-expression: unmatched parens -> eval error, 0 meshes.
// ---------------------------------------------------------------------------

func TestE2ESyntaxErrorWithLineInfo(t *testing.T) {
	app := newTestApp(t)

	// Put valid code on line 1, broken code on line 2 so line info is meaningful.
	source := "(+ 1 2)\n(box :name \"test\""
	result := app.Evaluate(source)

	if len(result.Errors) == 0 {
		t.Fatal("expected at least one eval error for unmatched parens")
	}
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes on syntax error, got %d", len(result.Meshes))
	}
	if result.Errors[0].Message == "" {
		t.Error("syntax error should have a non-empty message")
	}
}

func TestE2EUndefinedFunction(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(box) (torus :radius 1)`)

	if len(result.Errors) == 0 {
		t.Fatal("expected an eval error for an undefined builtin")
	}
	// The partial scene is discarded.
	if len(result.Meshes) != 0 {
		t.Errorf("expected 0 meshes, got %d", len(result.Meshes))
	}
}

// ---------------------------------------------------------------------------
// 3. Degenerate dimensions: warnings, geometry from defaults.
// ---------------------------------------------------------------------------

func TestE2EZeroDimensionBox(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(box :name "flat" :width 0 :height 2 :depth 2)`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Fatalf("expected 1 mesh, got %d", len(result.Meshes))
	}
	if result.Meshes[0].Max[0] != 0.5 {
		t.Errorf("zero width should fall back to 1, max x = %g", result.Meshes[0].Max[0])
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0].Message, "width") {
		t.Errorf("warnings = %v", result.Warnings)
	}
}

func TestE2ENegativeDimension(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(cylinder :radius -1 :length -3)`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Warnings) != 2 {
		t.Errorf("expected 2 warnings, got %v", result.Warnings)
	}
	if result.Meshes[0].Triangles == 0 {
		t.Error("negative dimensions should still realize with defaults")
	}
}

func TestE2EDegenerateSketch(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`
(sketch :name "line" :points (list (pt 0 0) (pt 1 0)) :closed true :extrude 1)
(box :name "ok")
`)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 2 {
		t.Fatalf("expected 2 meshes, got %d", len(result.Meshes))
	}
	if result.Meshes[0].Triangles != 0 {
		t.Errorf("two-point sketch produced %d triangles", result.Meshes[0].Triangles)
	}
	if result.Meshes[1].Triangles != 12 {
		t.Errorf("sibling box produced %d triangles", result.Meshes[1].Triangles)
	}
}

// ---------------------------------------------------------------------------
// 4. Rapid sequential evaluation.
// ---------------------------------------------------------------------------

func TestE2ERapidEvaluationAlternating(t *testing.T) {
	// Alternates between valid and invalid sources rapidly.
	// Ensures the engine recovers cleanly between error and success states.
	//
	// Note: we call Evaluate sequentially because zygomys has internal
	// global state that is not safe for concurrent sandbox creation.
	app := newTestApp(t)

	sources := []string{
		`(box :name "ok" :width 100)`,
		`(box :name "broken"`,
		``,
		`(sphere :radius "big")`,
		`(cylinder :name "also-ok" :radius 2 :length 20)`,
		`(+ 1 2)`,
		`(undefined-func 1 2 3)`,
		`(sketch :name "last" :points (list (pt 0 0) (pt 1 0) (pt 0 1)))`,
	}
	wantMeshes := []int{1, 0, 0, 0, 1, 0, 0, 1}

	for i, source := range sources {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("iteration %d panicked on source %q: %v", i, source, r)
				}
			}()
			result := app.Evaluate(source)
			if len(result.Meshes) != wantMeshes[i] {
				t.Errorf("iteration %d: %d meshes, want %d", i, len(result.Meshes), wantMeshes[i])
			}
		}()
	}
}

// ---------------------------------------------------------------------------
// 5. Large and fractional dimensions.
// ---------------------------------------------------------------------------

func TestE2EVeryLargeDimensions(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(box :width 1000000 :height 1000000 :depth 1000000)`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Meshes[0].Max != [3]float32{500000, 500000, 500000} {
		t.Errorf("max = %v", result.Meshes[0].Max)
	}
}

func TestE2EFloatingPointDimensions(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(box :width 2.5 :height 0.75 :depth 1.25)`)

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Meshes[0].Max != [3]float32{1.25, 0.375, 0.625} {
		t.Errorf("max = %v", result.Meshes[0].Max)
	}
}

// ---------------------------------------------------------------------------
// 6. Comments and arithmetic.
// ---------------------------------------------------------------------------

func TestE2ECommentsWithWhitespace(t *testing.T) {
	app := newTestApp(t)
	source := `
;; a comment
   ; another one

(box) ; trailing comment
`
	result := app.Evaluate(source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Meshes) != 1 {
		t.Errorf("expected 1 mesh, got %d", len(result.Meshes))
	}
}

func TestE2ENestedArithmeticDef(t *testing.T) {
	app := newTestApp(t)
	source := `
(def base 10)
(def double (* base 2))
(def half (/ double 4.0))
(box :width double :height half :depth base)
`
	result := app.Evaluate(source)
	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Meshes[0].Max != [3]float32{10, 2.5, 5} {
		t.Errorf("max = %v, want [10 2.5 5]", result.Meshes[0].Max)
	}
}

func TestE2EDefaultColor(t *testing.T) {
	app := newTestApp(t)
	result := app.Evaluate(`(box :color "not-a-color") (sphere :color "#FF0000")`)

	if result.Meshes[0].Color != "#3b82f6" {
		t.Errorf("invalid color should fall back to the default, got %q", result.Meshes[0].Color)
	}
	if result.Meshes[1].Color != "#ff0000" {
		t.Errorf("color = %q, want #ff0000", result.Meshes[1].Color)
	}
}
