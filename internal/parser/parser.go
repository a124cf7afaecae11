// Package parser turns one component source file into the typed AST the
// compiler pipeline consumes. The template side rewrites mustache blocks
// into placeholder elements and parses the result with x/net/html; the
// script side is a small statement scanner that captures every embedded
// expression as raw text for the IR builder to parse.
package parser

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
)

var scriptOpenRe = regexp.MustCompile(`(?is)<script[^>]*>`)
var scriptCloseRe = regexp.MustCompile(`(?i)</script>`)

// Parse parses source into a component AST. A failure is reported as a
// single fatal PARSE_ERROR with a best-effort location.
func Parse(source, filename string) (*ast.Component, *diag.Error) {
	comp := &ast.Component{Name: ComponentName(filename)}

	scriptText, scriptStart, fragmentSource := splitScript(source)

	script, perr := parseScript(scriptText, scriptStart, source, filename)
	if perr != nil {
		return nil, perr
	}
	comp.Instance = script

	fragment, perr := parseTemplate(fragmentSource, source, filename)
	if perr != nil {
		return nil, perr
	}
	comp.Fragment = fragment

	return comp, nil
}

// ComponentName derives the generated component name from the source
// filename: "video-row.svelte" becomes "VideoRow".
func ComponentName(filename string) string {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	parts := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == '.' || r == ' '
	})
	var sb strings.Builder
	for _, p := range parts {
		sb.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	if sb.Len() == 0 {
		return "Component"
	}
	return sb.String()
}

// splitScript extracts the <script> body and returns the template source
// with the script region blanked out so every remaining character keeps its
// original offset.
func splitScript(source string) (script string, scriptStart int, fragment string) {
	open := scriptOpenRe.FindStringIndex(source)
	if open == nil {
		return "", 0, source
	}
	rest := source[open[1]:]
	closeIdx := scriptCloseRe.FindStringIndex(rest)
	if closeIdx == nil {
		// Unterminated script block: treat everything after the tag as script.
		return rest, open[1], source[:open[0]] + blank(source[open[0]:])
	}
	bodyStart := open[1]
	bodyEnd := open[1] + closeIdx[0]
	regionEnd := open[1] + closeIdx[1]
	fragment = source[:open[0]] + blank(source[open[0]:regionEnd]) + source[regionEnd:]
	return source[bodyStart:bodyEnd], bodyStart, fragment
}

// blank replaces every non-newline character with a space, preserving line
// structure for offset math.
func blank(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c != '\n' {
			out[i] = ' '
		}
	}
	return string(out)
}
