// Package diag provides the diagnostic catalog and source-location machinery
// shared by every stage of the compiler.
//
// Diagnostics are plain values: stages accumulate them in slices and return
// them alongside their results. A fatal error stops the pipeline from
// advancing to the next stage, but never stops the current stage from
// finishing its scan, so the user sees every problem in one pass.
package diag

import (
	"fmt"
	"strings"
)

// Code identifies one entry in the closed diagnostic catalog.
type Code string

// Error codes. Every error in the catalog is fatal.
const (
	ParseError             Code = "PARSE_ERROR"
	NoAsync                Code = "NO_ASYNC"
	NoNetwork              Code = "NO_NETWORK"
	NoTimers               Code = "NO_TIMERS"
	NoDOMGlobals           Code = "NO_DOM_GLOBALS"
	NoAwaitBlocks          Code = "NO_AWAIT_BLOCKS"
	NoGestures             Code = "NO_GESTURES"
	DisallowedImport       Code = "DISALLOWED_IMPORT"
	NoInlineHandlers       Code = "NO_INLINE_HANDLERS"
	UnsupportedExpression  Code = "UNSUPPORTED_EXPRESSION"
	FunctionalInTemplate   Code = "FUNCTIONAL_IN_TEMPLATE"
	UnsupportedBlock       Code = "UNSUPPORTED_BLOCK"
	UnsupportedInitializer Code = "UNSUPPORTED_INITIALIZER"
	UnknownStateRef        Code = "UNKNOWN_STATE_REF"
	UnknownHandlerRef      Code = "UNKNOWN_HANDLER_REF"
	UnsupportedHandlerBody Code = "UNSUPPORTED_HANDLER_BODY"
	EachWithIndex          Code = "EACH_WITH_INDEX"
	EachWithKey            Code = "EACH_WITH_KEY"
	EachNested             Code = "EACH_NESTED"
	EachNotArray           Code = "EACH_NOT_ARRAY"
	UnsupportedStdlib      Code = "UNSUPPORTED_STDLIB_METHOD"
	ReactiveCycle          Code = "REACTIVE_CYCLE"
)

// Warning codes. Warnings never abort compilation.
const (
	UnsupportedCSSProperty Code = "UNSUPPORTED_CSS_PROPERTY"
	UnsupportedTransition  Code = "UNSUPPORTED_TRANSITION"
	UnknownElement         Code = "UNKNOWN_ELEMENT"
	FlexMarginIgnored      Code = "FLEX_MARGIN_IGNORED"
)

// SourceLocation points a diagnostic at a place in the input file.
// Line and Column are 1-based. LineText is the raw source line, kept for
// display; the struct is never mutated after creation.
type SourceLocation struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	LineText string `json:"lineText,omitempty"`
}

// Error is a fatal compile diagnostic.
type Error struct {
	Code     Code           `json:"code"`
	Message  string         `json:"message"`
	Hint     string         `json:"hint,omitempty"`
	Docs     string         `json:"docs,omitempty"`
	Fatal    bool           `json:"fatal"`
	Location SourceLocation `json:"location"`
}

// Warning is a non-fatal compile diagnostic.
type Warning struct {
	Code     Code           `json:"code"`
	Message  string         `json:"message"`
	Docs     string         `json:"docs,omitempty"`
	Location SourceLocation `json:"location"`
}

type catalogEntry struct {
	message string
	hint    string
	warning bool
}

const docsBase = "https://github.com/aryamurray/roku-svelte/blob/main/docs/errors.md#"

// The closed catalog. Message and hint strings interpolate {name}
// placeholders from the vars map handed to NewError/NewWarning.
var catalog = map[Code]catalogEntry{
	ParseError:             {message: "could not parse component: {detail}", hint: "Check the component for unbalanced tags or an unterminated <script> block."},
	NoAsync:                {message: "'{construct}' is not supported: Roku components are fully synchronous", hint: "Remove async control flow; long-running work belongs in a Task node outside compiled components."},
	NoNetwork:              {message: "'{construct}' is not available on the target platform", hint: "Network access must happen in a Task node; compiled components cannot fetch."},
	NoTimers:               {message: "'{construct}' is not available on the target platform", hint: "Use a Timer SceneGraph node wired through component fields instead."},
	NoDOMGlobals:           {message: "'{name}' is a browser global and does not exist on the target platform", hint: "There is no DOM on Roku. Use node properties and fields instead."},
	NoAwaitBlocks:          {message: "{#await} blocks are not supported", hint: "All data must be available at render time; resolve it before handing it to the component."},
	NoGestures:             {message: "'on:{event}' is a pointer gesture and cannot fire on a remote-controlled device", hint: "Use remote events instead: on:select, on:focus, on:blur, on:keydown."},
	DisallowedImport:       {message: "import of '{path}' is not allowed", hint: "Only relative component imports (./Name.svelte) are supported."},
	NoInlineHandlers:       {message: "inline handler on 'on:{event}' is not supported", hint: "Declare a named function in the <script> block and reference it: on:{event}={handlerName}."},
	UnsupportedExpression:  {message: "expression '{expr}' is outside the supported subset", hint: "Only literals, identifiers, member/index access, and unary/binary operators translate to BrightScript."},
	FunctionalInTemplate:   {message: "function call '{expr}' cannot appear in a template expression", hint: "Compute the value in a reactive statement ($:) and bind the derived name instead."},
	UnsupportedBlock:       {message: "{#{name}} blocks are not supported", hint: "Only {#each} is supported in templates."},
	UnsupportedInitializer: {message: "initializer for '{name}' cannot be represented as a static value", hint: "State initializers must be literals or simple constant expressions."},
	UnknownStateRef:        {message: "'{name}' is not a declared state or derived value", hint: "Declare it with 'let {name} = ...' or compute it with '$: {name} = ...'."},
	UnknownHandlerRef:      {message: "handler '{name}' is not a declared function", hint: "Declare 'function {name}() { ... }' in the <script> block."},
	UnsupportedHandlerBody: {message: "statement '{construct}' is not supported in handlers", hint: "Handlers may contain assignments, if/else, while, for..of, return and blocks."},
	EachWithIndex:          {message: "{#each} with an index variable is not supported", hint: "Drop the index binding; row position is available as itemContent.index at runtime."},
	EachWithKey:            {message: "{#each} with a key expression is not supported", hint: "Keyed list reconciliation does not exist on the target; remove the (key)."},
	EachNested:             {message: "{#each} blocks cannot be nested", hint: "Extract the inner list into its own component."},
	EachNotArray:           {message: "{#each} must iterate a declared array state variable, got '{expr}'", hint: "Declare the list with 'let {expr} = [...]' before iterating it."},
	UnsupportedStdlib:      {message: "method '.{name}()' has no BrightScript equivalent", hint: "Supported methods: push, pop, toString, includes; '.length' maps to Count()."},
	ReactiveCycle:          {message: "reactive declarations form a cycle through '{name}'", hint: "Derived values must form an acyclic dependency graph."},

	UnsupportedCSSProperty: {message: "CSS property '{property}' is not supported and was ignored", warning: true},
	UnsupportedTransition:  {message: "transition '{name}' is not supported and was ignored", warning: true},
	UnknownElement:         {message: "unknown element <{tag}>, rendered as a Group", warning: true},
	FlexMarginIgnored:      {message: "margin on a flex item is ignored; use 'gap' on the container instead", warning: true},
}

// NewError builds an Error from the catalog. An unknown code or a warning
// code is a programming defect (a call site out of sync with the catalog)
// and panics rather than returning a malformed diagnostic.
func NewError(code Code, loc SourceLocation, vars map[string]string) *Error {
	entry, ok := catalog[code]
	if !ok {
		panic(fmt.Sprintf("diag: unknown diagnostic code %q", code))
	}
	if entry.warning {
		panic(fmt.Sprintf("diag: %q is a warning code, use NewWarning", code))
	}
	return &Error{
		Code:     code,
		Message:  interpolate(entry.message, vars),
		Hint:     interpolate(entry.hint, vars),
		Docs:     docsBase + strings.ToLower(string(code)),
		Fatal:    true,
		Location: loc,
	}
}

// NewWarning builds a Warning from the catalog, with the same invariant
// policy as NewError.
func NewWarning(code Code, loc SourceLocation, vars map[string]string) *Warning {
	entry, ok := catalog[code]
	if !ok {
		panic(fmt.Sprintf("diag: unknown diagnostic code %q", code))
	}
	if !entry.warning {
		panic(fmt.Sprintf("diag: %q is an error code, use NewError", code))
	}
	return &Warning{
		Code:     code,
		Message:  interpolate(entry.message, vars),
		Docs:     docsBase + strings.ToLower(string(code)),
		Location: loc,
	}
}

// interpolate substitutes every {name} occurrence in template from vars.
// Unknown placeholders are left as-is so a missing var is visible in output.
func interpolate(template string, vars map[string]string) string {
	if len(vars) == 0 {
		return template
	}
	out := template
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// LocationFromOffset maps a 0-based character offset into source to a
// 1-based line/column SourceLocation. Offsets past the end of the source
// clamp to the last line, column 1.
func LocationFromOffset(source string, offset int, filename string) SourceLocation {
	lines := strings.Split(source, "\n")
	if offset < 0 {
		offset = 0
	}
	pos := 0
	for i, line := range lines {
		end := pos + len(line)
		if offset <= end {
			return SourceLocation{
				File:     filename,
				Line:     i + 1,
				Column:   offset - pos + 1,
				LineText: strings.TrimRight(line, "\r"),
			}
		}
		pos = end + 1 // the newline
	}
	last := lines[len(lines)-1]
	return SourceLocation{
		File:     filename,
		Line:     len(lines),
		Column:   1,
		LineText: strings.TrimRight(last, "\r"),
	}
}
