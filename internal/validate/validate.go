// Package validate checks a parsed component against the capability subset
// of the target platform. Rules are independent and pure: each scans the
// AST (or the raw script text) and returns the fatal errors it found. The
// engine runs the fixed rule list in order and concatenates the results, so
// a user sees every violation in one compile.
package validate

import (
	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
)

// Result carries the accumulated diagnostics of one validation pass.
// Rules never produce warnings; the slice exists so the pipeline can merge
// stage results uniformly.
type Result struct {
	Errors   []*diag.Error
	Warnings []*diag.Warning
}

type rule func(comp *ast.Component, source, filename string) []*diag.Error

// The fixed rule chain. Order is part of the output contract: diagnostics
// appear in rule order, then in traversal order within a rule.
var rules = []rule{
	noAsync,
	noNetwork,
	noTimers,
	noDOMGlobals,
	noAwaitBlocks,
	noGestures,
	allowedImportsOnly,
	noInlineHandlers,
	supportedBlocksOnly,
	supportedTemplateExpressions,
}

// Validate runs every rule over the component. All validation errors are
// fatal; the pipeline never builds IR for a component that fails here.
func Validate(comp *ast.Component, source, filename string) Result {
	var res Result
	for _, r := range rules {
		res.Errors = append(res.Errors, r(comp, source, filename)...)
	}
	return res
}
