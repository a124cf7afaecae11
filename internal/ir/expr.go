package ir

import (
	"sort"
	"strconv"
	"strings"

	exprast "github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
)

// exprMode selects which expression shapes are accepted. Templates are the
// strictest tier: pure reads only. Handlers additionally admit the method
// allowlist. Initializers admit only literal structure.
type exprMode int

const (
	modeTemplate exprMode = iota
	modeHandler
	modeInitializer
)

// methodMap is the supported stdlib surface on array and scalar values.
// Everything else on the call boundary is rejected, never approximated.
var methodMap = map[string]string{
	"push":     "Push",
	"pop":      "Pop",
	"shift":    "Shift",
	"unshift":  "Unshift",
	"toString": "ToStr",
}

// polyfillMap maps methods with no direct target equivalent to runtime
// library functions shipped alongside the generated code.
var polyfillMap = map[string]string{
	"includes": "rsv_arrayIncludes",
	"indexOf":  "rsv_arrayIndexOf",
	"join":     "rsv_arrayJoin",
}

// translator rewrites one parsed expression into target-language text while
// collecting the state names it reads. A translator is scoped to one
// component build; locals shadow state inside handler bodies and loop
// bodies.
type translator struct {
	state  *StateGraph
	locals map[string]bool
	// stateRef renders a read of a state variable, normally "m.state.<n>".
	stateRef func(name string) string

	polyfills map[string]bool
}

func newTranslator(state *StateGraph) *translator {
	return &translator{
		state:     state,
		locals:    make(map[string]bool),
		stateRef:  func(name string) string { return "m.state." + name },
		polyfills: make(map[string]bool),
	}
}

func (t *translator) pushLocal(name string) { t.locals[name] = true }
func (t *translator) popLocal(name string)  { delete(t.locals, name) }

// translated is the output of one expression translation.
type translated struct {
	Code string
	// Deps holds the distinct state/derived names read, in first-read order.
	Deps []string
}

// translate parses and rewrites raw. All shape violations are reported
// against the expression's source position; the returned code is empty
// whenever errs is non-empty.
func (t *translator) translate(raw *ast.RawExpr, source, filename string, mode exprMode) (translated, []*diag.Error) {
	tree, err := parser.Parse(raw.Text)
	if err != nil {
		return translated{}, []*diag.Error{diag.NewError(diag.UnsupportedExpression,
			diag.LocationFromOffset(source, raw.Start, filename),
			map[string]string{"expr": strings.TrimSpace(raw.Text)})}
	}
	w := &exprWriter{
		t:        t,
		mode:     mode,
		loc:      diag.LocationFromOffset(source, raw.Start, filename),
		raw:      strings.TrimSpace(raw.Text),
		depsSeen: make(map[string]bool),
	}
	code := w.emit(tree.Node)
	if len(w.errs) > 0 {
		return translated{}, w.errs
	}
	return translated{Code: code, Deps: w.deps}, nil
}

// exprWriter walks one parsed expression tree.
type exprWriter struct {
	t    *translator
	mode exprMode
	loc  diag.SourceLocation
	raw  string

	deps     []string
	depsSeen map[string]bool
	errs     []*diag.Error
}

func (w *exprWriter) fail(code diag.Code, vars map[string]string) string {
	w.errs = append(w.errs, diag.NewError(code, w.loc, vars))
	return ""
}

func (w *exprWriter) addDep(name string) {
	if !w.depsSeen[name] {
		w.depsSeen[name] = true
		w.deps = append(w.deps, name)
	}
}

var binaryOps = map[string]string{
	"+":   "+",
	"-":   "-",
	"*":   "*",
	"/":   "/",
	"%":   "mod",
	"==":  "=",
	"!=":  "<>",
	"<":   "<",
	"<=":  "<=",
	">":   ">",
	">=":  ">=",
	"&&":  "and",
	"||":  "or",
	"and": "and",
	"or":  "or",
}

func (w *exprWriter) emit(n exprast.Node) string {
	switch node := n.(type) {
	case *exprast.NilNode:
		return "invalid"
	case *exprast.IdentifierNode:
		return w.emitIdent(node.Value)
	case *exprast.IntegerNode:
		return strconv.Itoa(node.Value)
	case *exprast.FloatNode:
		return strconv.FormatFloat(node.Value, 'g', -1, 64)
	case *exprast.BoolNode:
		if node.Value {
			return "true"
		}
		return "false"
	case *exprast.StringNode:
		return quoteBRS(node.Value)
	case *exprast.UnaryNode:
		return w.emitUnary(node)
	case *exprast.BinaryNode:
		return w.emitBinary(node)
	case *exprast.MemberNode:
		return w.emitMember(node)
	case *exprast.CallNode:
		return w.emitCall(node)
	case *exprast.ArrayNode:
		parts := make([]string, 0, len(node.Nodes))
		for _, el := range node.Nodes {
			parts = append(parts, w.emit(el))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *exprast.MapNode:
		parts := make([]string, 0, len(node.Pairs))
		for _, pair := range node.Pairs {
			parts = append(parts, w.emitPair(pair))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *exprast.ConditionalNode:
		// No expression-position branching on the target.
		return w.fail(diag.UnsupportedExpression, map[string]string{"expr": w.raw})
	default:
		return w.fail(diag.UnsupportedExpression, map[string]string{"expr": w.raw})
	}
}

func (w *exprWriter) emitIdent(name string) string {
	if w.mode == modeInitializer {
		return w.fail(diag.UnsupportedInitializer, map[string]string{"name": name})
	}
	if w.t.locals[name] {
		return name
	}
	if w.t.state.Has(name) {
		w.addDep(name)
		return w.t.stateRef(name)
	}
	return w.fail(diag.UnknownStateRef, map[string]string{"name": name})
}

// Operator binding strength in the output grammar, loosest first. Operands
// that bind looser than their parent keep their parentheses in the output so
// source grouping survives translation.
var brsPrecedence = map[string]int{
	"or":  1,
	"and": 2,
	"=":   3,
	"<>":  3,
	"<":   3,
	"<=":  3,
	">":   3,
	">=":  3,
	"+":   4,
	"-":   4,
	"*":   5,
	"/":   5,
	"mod": 5,
}

const unaryPrecedence = 6

func operandPrecedence(n exprast.Node) int {
	switch node := n.(type) {
	case *exprast.BinaryNode:
		if p, ok := brsPrecedence[binaryOps[node.Operator]]; ok {
			return p
		}
		return 0
	case *exprast.UnaryNode:
		return unaryPrecedence
	}
	return 10
}

// emitOperand renders a sub-expression, parenthesized when it binds looser
// than the surrounding operator requires.
func (w *exprWriter) emitOperand(n exprast.Node, min int) string {
	code := w.emit(n)
	if operandPrecedence(n) < min {
		return "(" + code + ")"
	}
	return code
}

func (w *exprWriter) emitUnary(node *exprast.UnaryNode) string {
	switch node.Operator {
	case "!", "not":
		return "not (" + w.emit(node.Node) + ")"
	case "-":
		return "-" + w.emitOperand(node.Node, unaryPrecedence+1)
	case "+":
		return w.emitOperand(node.Node, unaryPrecedence+1)
	default:
		return w.fail(diag.UnsupportedExpression, map[string]string{"expr": w.raw})
	}
}

func (w *exprWriter) emitBinary(node *exprast.BinaryNode) string {
	op, ok := binaryOps[node.Operator]
	if !ok {
		return w.fail(diag.UnsupportedExpression, map[string]string{"expr": w.raw})
	}
	p := brsPrecedence[op]
	// The right operand of an equal-precedence chain keeps its grouping;
	// these operators associate left.
	return w.emitOperand(node.Left, p) + " " + op + " " + w.emitOperand(node.Right, p+1)
}

func (w *exprWriter) emitMember(node *exprast.MemberNode) string {
	base := w.emitOperand(node.Node, 10)
	if prop, ok := node.Property.(*exprast.StringNode); ok {
		// .length is a property in the dialect but a method on the target.
		if prop.Value == "length" {
			return base + ".Count()"
		}
		if isIdentLike(prop.Value) {
			return base + "." + prop.Value
		}
		return base + "[" + quoteBRS(prop.Value) + "]"
	}
	return base + "[" + w.emit(node.Property) + "]"
}

func (w *exprWriter) emitCall(node *exprast.CallNode) string {
	member, ok := node.Callee.(*exprast.MemberNode)
	if !ok {
		if w.mode == modeTemplate {
			return w.fail(diag.FunctionalInTemplate, map[string]string{"expr": w.raw})
		}
		return w.fail(diag.UnsupportedExpression, map[string]string{"expr": w.raw})
	}
	prop, ok := member.Property.(*exprast.StringNode)
	if !ok {
		return w.fail(diag.UnsupportedExpression, map[string]string{"expr": w.raw})
	}
	if w.mode == modeTemplate {
		return w.fail(diag.FunctionalInTemplate, map[string]string{"expr": w.raw})
	}
	base := w.emitOperand(member.Node, 10)
	args := make([]string, 0, len(node.Arguments))
	for _, a := range node.Arguments {
		args = append(args, w.emit(a))
	}
	if target, ok := methodMap[prop.Value]; ok {
		return base + "." + target + "(" + strings.Join(args, ", ") + ")"
	}
	if fn, ok := polyfillMap[prop.Value]; ok {
		w.t.polyfills[fn] = true
		all := append([]string{base}, args...)
		return fn + "(" + strings.Join(all, ", ") + ")"
	}
	return w.fail(diag.UnsupportedStdlib, map[string]string{"name": prop.Value})
}

func (w *exprWriter) emitPair(n exprast.Node) string {
	pair, ok := n.(*exprast.PairNode)
	if !ok {
		return w.fail(diag.UnsupportedExpression, map[string]string{"expr": w.raw})
	}
	var key string
	switch k := pair.Key.(type) {
	case *exprast.StringNode:
		if isIdentLike(k.Value) {
			key = k.Value
		} else {
			key = quoteBRS(k.Value)
		}
	case *exprast.IdentifierNode:
		key = k.Value
	default:
		return w.fail(diag.UnsupportedExpression, map[string]string{"expr": w.raw})
	}
	return key + ": " + w.emit(pair.Value)
}

// quoteBRS renders a string literal; embedded quotes double per the target
// grammar.
func quoteBRS(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func isIdentLike(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		alpha := r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !alpha && (i == 0 || r < '0' || r > '9') {
			return false
		}
	}
	return true
}

// formatNumber renders a float the way static props are written: integral
// values without a fraction.
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// sortedPolyfills returns the polyfill set in stable order for output.
func (t *translator) sortedPolyfills() []string {
	if len(t.polyfills) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.polyfills))
	for name := range t.polyfills {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// literalType infers the interface-field type for an initial value
// expression. Unparseable or non-literal initializers fall back to the
// generic container type.
func literalType(raw string) string {
	tree, err := parser.Parse(raw)
	if err != nil {
		return "assocarray"
	}
	switch tree.Node.(type) {
	case *exprast.BoolNode:
		return "boolean"
	case *exprast.IntegerNode:
		return "integer"
	case *exprast.FloatNode:
		return "float"
	case *exprast.StringNode:
		return "string"
	case *exprast.ArrayNode:
		return "array"
	default:
		return "assocarray"
	}
}
