package diag

import (
	"fmt"
	"strings"
)

// FormatError renders one error as a multi-line, caret-pointing display.
// Purely presentational; compilation results never depend on it.
//
//	ERROR NO_ASYNC at App.svelte:4:3
//	    await load()
//	    ^
//	hint: Remove async control flow ...
//	docs: https://...
func FormatError(e *Error) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ERROR %s at %s:%d:%d\n", e.Code, e.Location.File, e.Location.Line, e.Location.Column)
	sb.WriteString(e.Message)
	sb.WriteByte('\n')
	writeSourceContext(&sb, e.Location)
	if e.Hint != "" {
		sb.WriteString("hint: " + e.Hint + "\n")
	}
	if e.Docs != "" {
		sb.WriteString("docs: " + e.Docs + "\n")
	}
	return sb.String()
}

// FormatWarning renders one warning in the same shape as FormatError,
// minus the hint line.
func FormatWarning(w *Warning) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "WARNING %s at %s:%d:%d\n", w.Code, w.Location.File, w.Location.Line, w.Location.Column)
	sb.WriteString(w.Message)
	sb.WriteByte('\n')
	writeSourceContext(&sb, w.Location)
	if w.Docs != "" {
		sb.WriteString("docs: " + w.Docs + "\n")
	}
	return sb.String()
}

func writeSourceContext(sb *strings.Builder, loc SourceLocation) {
	if loc.LineText == "" {
		return
	}
	sb.WriteString("    " + loc.LineText + "\n")
	col := loc.Column
	if col < 1 {
		col = 1
	}
	if col > len(loc.LineText)+1 {
		col = len(loc.LineText) + 1
	}
	sb.WriteString("    " + strings.Repeat(" ", col-1) + "^\n")
}
