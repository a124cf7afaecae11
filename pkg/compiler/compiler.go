// Package compiler is the public entry point: source text in, generated
// component XML and BrightScript out. The pipeline is parse, validate,
// build IR, resolve layout, emit; a fatal diagnostic at any stage
// short-circuits the rest and yields empty artifacts.
package compiler

import (
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
	"github.com/aryamurray/roku-svelte-sub001/internal/emit"
	"github.com/aryamurray/roku-svelte-sub001/internal/ir"
	"github.com/aryamurray/roku-svelte-sub001/internal/layout"
	"github.com/aryamurray/roku-svelte-sub001/internal/parser"
	"github.com/aryamurray/roku-svelte-sub001/internal/validate"
)

// Options configures one compilation.
type Options struct {
	// IsEntry marks the application root component; it extends Scene.
	IsEntry bool
	// RootWidth and RootHeight are the canvas dimensions used for viewport
	// units and top-level percentages. Zero values default to 1920x1080.
	RootWidth  float64
	RootHeight float64
}

// GeneratedComponent is one extra component produced by a compile, such as
// an each-row component.
type GeneratedComponent struct {
	Name         string
	XML          string
	BrightScript string
}

// Result carries the artifacts and diagnostics of one compile. When Errors
// is non-empty every artifact field is empty.
type Result struct {
	XML                  string
	BrightScript         string
	AdditionalComponents []GeneratedComponent

	RequiresRuntime bool
	RequiresStdlib  bool
	Polyfills       []string

	Errors   []*diag.Error
	Warnings []*diag.Warning
}

// Ok reports whether the compile produced artifacts.
func (r Result) Ok() bool { return len(r.Errors) == 0 }

// Compile translates one component source file.
func Compile(source, filename string, opts Options) Result {
	comp, perr := parser.Parse(source, filename)
	if perr != nil {
		return Result{Errors: []*diag.Error{perr}}
	}

	vres := validate.Validate(comp, source, filename)
	warnings := vres.Warnings
	if len(vres.Errors) > 0 {
		return Result{Errors: vres.Errors, Warnings: warnings}
	}

	bres := ir.Build(comp, source, filename, ir.Options{
		IsEntry:      opts.IsEntry,
		CanvasWidth:  opts.RootWidth,
		CanvasHeight: opts.RootHeight,
	})
	warnings = append(warnings, bres.Warnings...)
	if len(bres.Errors) > 0 {
		return Result{Errors: bres.Errors, Warnings: warnings}
	}
	c := bres.Component

	w, h := opts.RootWidth, opts.RootHeight
	if w == 0 {
		w = 1920
	}
	if h == 0 {
		h = 1080
	}
	warnings = append(warnings, layout.Resolve(c, filename, w, h)...)

	res := Result{
		XML:             emit.XML(c),
		BrightScript:    emit.BRS(c),
		RequiresRuntime: c.RequiresRuntime,
		RequiresStdlib:  c.RequiresStdlib,
		Polyfills:       c.Polyfills,
		Warnings:        warnings,
	}
	for _, item := range c.Items {
		res.AdditionalComponents = append(res.AdditionalComponents, GeneratedComponent{
			Name:         item.Name,
			XML:          emit.ItemXML(item),
			BrightScript: emit.ItemBRS(item),
		})
	}
	return res
}
