package validate

import (
	"regexp"
	"strings"

	"github.com/expr-lang/expr/parser"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
)

// Banned-global rules share one detection style: a word match over the raw
// script text that skips property accesses (`obj.fetch` is a member, not
// the global) so user shadowing stays usable.

var (
	asyncRe   = bannedWordRe("async", "await", "Promise")
	networkRe = bannedWordRe("fetch", "XMLHttpRequest", "WebSocket", "EventSource")
	timersRe  = bannedWordRe("setTimeout", "setInterval", "clearTimeout", "clearInterval",
		"requestAnimationFrame", "cancelAnimationFrame")
	domRe = bannedWordRe("window", "document", "navigator", "localStorage",
		"sessionStorage", "history", "screen", "alert")
)

func bannedWordRe(words ...string) *regexp.Regexp {
	return regexp.MustCompile(`(^|[^.$\w])(` + strings.Join(words, "|") + `)\b`)
}

// scanScript reports one error per banned-word occurrence in the script
// block, pointing at the word itself.
func scanScript(comp *ast.Component, source, filename string, re *regexp.Regexp, code diag.Code, varName string) []*diag.Error {
	if comp.Instance == nil {
		return nil
	}
	var errs []*diag.Error
	for _, m := range re.FindAllStringSubmatchIndex(comp.Instance.Text, -1) {
		wordStart, wordEnd := m[4], m[5]
		word := comp.Instance.Text[wordStart:wordEnd]
		offset := comp.Instance.Offset + wordStart
		errs = append(errs, diag.NewError(code,
			diag.LocationFromOffset(source, offset, filename),
			map[string]string{varName: word}))
	}
	return errs
}

func noAsync(comp *ast.Component, source, filename string) []*diag.Error {
	return scanScript(comp, source, filename, asyncRe, diag.NoAsync, "construct")
}

func noNetwork(comp *ast.Component, source, filename string) []*diag.Error {
	return scanScript(comp, source, filename, networkRe, diag.NoNetwork, "construct")
}

func noTimers(comp *ast.Component, source, filename string) []*diag.Error {
	return scanScript(comp, source, filename, timersRe, diag.NoTimers, "construct")
}

func noDOMGlobals(comp *ast.Component, source, filename string) []*diag.Error {
	return scanScript(comp, source, filename, domRe, diag.NoDOMGlobals, "name")
}

func noAwaitBlocks(comp *ast.Component, source, filename string) []*diag.Error {
	var errs []*diag.Error
	ast.Inspect(comp.Fragment.Nodes, func(n ast.Node) bool {
		if blk, ok := n.(*ast.AwaitBlock); ok {
			errs = append(errs, diag.NewError(diag.NoAwaitBlocks,
				diag.LocationFromOffset(source, blk.Start, filename), nil))
		}
		return true
	})
	return errs
}

// Pointer-class event prefixes. There is no pointer on a set-top box, so
// every binding in this family is unreachable code for the user.
var gesturePrefixes = []string{
	"click", "dbl", "mouse", "pointer", "touch", "drag",
	"wheel", "swipe", "pinch", "hover", "gesture", "contextmenu",
}

func noGestures(comp *ast.Component, source, filename string) []*diag.Error {
	var errs []*diag.Error
	ast.Inspect(comp.Fragment.Nodes, func(n ast.Node) bool {
		elem, ok := n.(*ast.Element)
		if !ok {
			return true
		}
		for _, ev := range elem.Events {
			for _, prefix := range gesturePrefixes {
				if strings.HasPrefix(ev.Event, prefix) {
					errs = append(errs, diag.NewError(diag.NoGestures,
						diag.LocationFromOffset(source, ev.Start, filename),
						map[string]string{"event": ev.Event}))
					break
				}
			}
		}
		return true
	})
	return errs
}

// Only relative component imports are allowed; there is no module system
// on the target to resolve anything else.
func allowedImportsOnly(comp *ast.Component, source, filename string) []*diag.Error {
	if comp.Instance == nil {
		return nil
	}
	var errs []*diag.Error
	for _, imp := range comp.Instance.Imports {
		relative := strings.HasPrefix(imp.Path, "./") || strings.HasPrefix(imp.Path, "../")
		if !relative || !strings.HasSuffix(imp.Path, ".svelte") {
			errs = append(errs, diag.NewError(diag.DisallowedImport,
				diag.LocationFromOffset(source, imp.Start, filename),
				map[string]string{"path": imp.Path}))
		}
	}
	return errs
}

func noInlineHandlers(comp *ast.Component, source, filename string) []*diag.Error {
	var errs []*diag.Error
	ast.Inspect(comp.Fragment.Nodes, func(n ast.Node) bool {
		elem, ok := n.(*ast.Element)
		if !ok {
			return true
		}
		for _, ev := range elem.Events {
			if ev.Inline {
				errs = append(errs, diag.NewError(diag.NoInlineHandlers,
					diag.LocationFromOffset(source, ev.Start, filename),
					map[string]string{"event": ev.Event}))
			}
		}
		return true
	})
	return errs
}

func supportedBlocksOnly(comp *ast.Component, source, filename string) []*diag.Error {
	var errs []*diag.Error
	ast.Inspect(comp.Fragment.Nodes, func(n ast.Node) bool {
		if blk, ok := n.(*ast.UnknownBlock); ok {
			errs = append(errs, diag.NewError(diag.UnsupportedBlock,
				diag.LocationFromOffset(source, blk.Start, filename),
				map[string]string{"name": blk.Name}))
		}
		return true
	})
	return errs
}

// supportedTemplateExpressions runs every template expression through the
// expression parser. Shape restrictions (no calls, no ternaries) are the
// IR builder's concern; this rule only rejects what does not parse at all.
func supportedTemplateExpressions(comp *ast.Component, source, filename string) []*diag.Error {
	var errs []*diag.Error
	check := func(raw *ast.RawExpr) {
		if raw == nil || raw.Text == "" {
			return
		}
		if _, err := parser.Parse(raw.Text); err != nil {
			errs = append(errs, diag.NewError(diag.UnsupportedExpression,
				diag.LocationFromOffset(source, raw.Start, filename),
				map[string]string{"expr": raw.Text}))
		}
	}
	ast.Inspect(comp.Fragment.Nodes, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.Mustache:
			check(node.Expr)
		case *ast.Element:
			for _, attr := range node.Attrs {
				check(attr.Expr)
			}
		}
		return true
	})
	return errs
}
