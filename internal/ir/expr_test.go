package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
)

func stateWith(names ...string) *StateGraph {
	g := NewStateGraph()
	for _, n := range names {
		g.Order = append(g.Order, n)
		g.Initial[n] = "invalid"
	}
	return g
}

func translateOK(t *testing.T, g *StateGraph, text string, mode exprMode) translated {
	t.Helper()
	tr := newTranslator(g)
	out, errs := tr.translate(&ast.RawExpr{Text: text}, text, "App.svelte", mode)
	require.Empty(t, errs)
	return out
}

func translateErr(t *testing.T, g *StateGraph, text string, mode exprMode) []*diag.Error {
	t.Helper()
	tr := newTranslator(g)
	_, errs := tr.translate(&ast.RawExpr{Text: text}, text, "App.svelte", mode)
	require.NotEmpty(t, errs)
	return errs
}

func TestTranslateStateReadAndDeps(t *testing.T) {
	out := translateOK(t, stateWith("count"), "count + 1", modeTemplate)
	assert.Equal(t, "m.state.count + 1", out.Code)
	assert.Equal(t, []string{"count"}, out.Deps)
}

func TestTranslateOperatorMapping(t *testing.T) {
	g := stateWith("a", "b", "on")
	out := translateOK(t, g, "a == b && !on", modeTemplate)
	assert.Equal(t, "m.state.a = m.state.b and not (m.state.on)", out.Code)

	out = translateOK(t, g, "a != b || on", modeTemplate)
	assert.Equal(t, "m.state.a <> m.state.b or m.state.on", out.Code)

	out = translateOK(t, g, "a % b", modeTemplate)
	assert.Equal(t, "m.state.a mod m.state.b", out.Code)
}

func TestTranslateGroupingSurvives(t *testing.T) {
	g := stateWith("a", "b", "c", "total")
	cases := []struct {
		in   string
		want string
	}{
		{"(a + b) * 2", "(m.state.a + m.state.b) * 2"},
		{"a + b * 2", "m.state.a + m.state.b * 2"},
		{"a * (b + c)", "m.state.a * (m.state.b + m.state.c)"},
		{"a - (b - c)", "m.state.a - (m.state.b - m.state.c)"},
		{"a - b - c", "m.state.a - m.state.b - m.state.c"},
		{"(a + b) / (a - b)", "(m.state.a + m.state.b) / (m.state.a - m.state.b)"},
		{"-(a + b)", "-(m.state.a + m.state.b)"},
		{"(a || b) && c", "(m.state.a or m.state.b) and m.state.c"},
	}
	for _, tc := range cases {
		out := translateOK(t, g, tc.in, modeTemplate)
		assert.Equal(t, tc.want, out.Code, tc.in)
	}
}

func TestTranslateLengthBecomesCount(t *testing.T) {
	out := translateOK(t, stateWith("items"), "items.length", modeTemplate)
	assert.Equal(t, "m.state.items.Count()", out.Code)
	assert.Equal(t, []string{"items"}, out.Deps)
}

func TestTranslateMethodAllowlist(t *testing.T) {
	g := stateWith("items", "n")
	out := translateOK(t, g, "items.push(n)", modeHandler)
	assert.Equal(t, "m.state.items.Push(m.state.n)", out.Code)

	out = translateOK(t, g, "n.toString()", modeHandler)
	assert.Equal(t, "m.state.n.ToStr()", out.Code)
}

func TestTranslateIncludesUsesPolyfill(t *testing.T) {
	g := stateWith("items", "n")
	tr := newTranslator(g)
	out, errs := tr.translate(&ast.RawExpr{Text: "items.includes(n)"}, "items.includes(n)", "App.svelte", modeHandler)
	require.Empty(t, errs)
	assert.Equal(t, "rsv_arrayIncludes(m.state.items, m.state.n)", out.Code)
	assert.Equal(t, []string{"rsv_arrayIncludes"}, tr.sortedPolyfills())
}

func TestTranslateUnknownMethodRejected(t *testing.T) {
	errs := translateErr(t, stateWith("items"), "items.map(x)", modeHandler)
	assert.Equal(t, diag.UnsupportedStdlib, errs[0].Code)
}

func TestTranslateCallInTemplateRejected(t *testing.T) {
	errs := translateErr(t, stateWith("items", "n"), "items.push(n)", modeTemplate)
	assert.Equal(t, diag.FunctionalInTemplate, errs[0].Code)
}

func TestTranslateTernaryRejected(t *testing.T) {
	errs := translateErr(t, stateWith("a"), "a ? 1 : 2", modeTemplate)
	assert.Equal(t, diag.UnsupportedExpression, errs[0].Code)
}

func TestTranslateUnknownIdentifier(t *testing.T) {
	errs := translateErr(t, stateWith("count"), "total + 1", modeTemplate)
	assert.Equal(t, diag.UnknownStateRef, errs[0].Code)
	assert.Contains(t, errs[0].Message, "'total'")
}

func TestTranslateLocalsShadowState(t *testing.T) {
	g := stateWith("x")
	tr := newTranslator(g)
	tr.pushLocal("x")
	out, errs := tr.translate(&ast.RawExpr{Text: "x + 1"}, "x + 1", "App.svelte", modeHandler)
	require.Empty(t, errs)
	assert.Equal(t, "x + 1", out.Code)
	assert.Empty(t, out.Deps)
}

func TestTranslateInitializerRejectsIdentifiers(t *testing.T) {
	errs := translateErr(t, stateWith("count"), "count", modeInitializer)
	assert.Equal(t, diag.UnsupportedInitializer, errs[0].Code)
}

func TestTranslateStringQuoting(t *testing.T) {
	// Embedded quotes double in the output grammar.
	out := translateOK(t, NewStateGraph(), `'say "hi"'`, modeInitializer)
	assert.Equal(t, `"say ""hi"""`, out.Code)
}

func TestTranslateLiterals(t *testing.T) {
	g := NewStateGraph()
	assert.Equal(t, "42", translateOK(t, g, "42", modeInitializer).Code)
	assert.Equal(t, "1.5", translateOK(t, g, "1.5", modeInitializer).Code)
	assert.Equal(t, "true", translateOK(t, g, "true", modeInitializer).Code)
	assert.Equal(t, `"hi"`, translateOK(t, g, `"hi"`, modeInitializer).Code)
	assert.Equal(t, "[1, 2, 3]", translateOK(t, g, "[1, 2, 3]", modeInitializer).Code)
}

func TestLiteralTypeInference(t *testing.T) {
	assert.Equal(t, "integer", literalType("0"))
	assert.Equal(t, "float", literalType("1.5"))
	assert.Equal(t, "boolean", literalType("true"))
	assert.Equal(t, "string", literalType(`"hi"`))
	assert.Equal(t, "array", literalType("[1, 2]"))
	assert.Equal(t, "assocarray", literalType("{a: 1}"))
}
