package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
)

func raw(text string) *ast.RawExpr { return &ast.RawExpr{Text: text} }

func component(script *ast.Script, nodes ...ast.Node) *ast.Component {
	return &ast.Component{
		Name:     "App",
		Instance: script,
		Fragment: &ast.Fragment{Nodes: nodes},
	}
}

func codes(errs []*diag.Error) []diag.Code {
	out := make([]diag.Code, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

func TestBuildStateGraph(t *testing.T) {
	script := &ast.Script{
		Props: []*ast.PropDecl{{Name: "title", Init: raw(`"hello"`)}},
		Vars:  []*ast.VarDecl{{Name: "count", Init: raw("0")}},
		Reactives: []*ast.ReactiveDecl{
			{Target: "doubled", Expr: raw("count * 2")},
			{Target: "quadrupled", Expr: raw("doubled * 2")},
		},
	}
	res := Build(component(script), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	comp := res.Component

	assert.Equal(t, []string{"title", "count", "doubled", "quadrupled"}, comp.State.Order)
	assert.Equal(t, `"hello"`, comp.State.Initial["title"])
	assert.Equal(t, "0", comp.State.Initial["count"])
	assert.True(t, comp.State.IsProp["title"])
	assert.False(t, comp.State.IsProp["count"])

	require.Len(t, comp.Fields, 1)
	assert.Equal(t, "title", comp.Fields[0].Name)
	assert.Equal(t, "string", comp.Fields[0].Type)
	assert.Equal(t, "rsv_onTitleChange", comp.Fields[0].OnChange)

	assert.Equal(t, []string{"doubled", "quadrupled"}, comp.State.DerivedOrder)
	assert.Equal(t, "m.state.count * 2", comp.State.Derived["doubled"].Expr)
	assert.Equal(t, []string{"count"}, comp.State.Derived["doubled"].Deps)
}

func TestBuildDerivedForwardReference(t *testing.T) {
	// A derived value may read a name declared after it.
	script := &ast.Script{
		Reactives: []*ast.ReactiveDecl{
			{Target: "a", Expr: raw("b + 1")},
			{Target: "b", Expr: raw("c * 2")},
		},
		Vars: []*ast.VarDecl{{Name: "c", Init: raw("1")}},
	}
	res := Build(component(script), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	assert.Equal(t, []string{"b", "a"}, res.Component.State.DerivedOrder)
}

func TestBuildReactiveCycle(t *testing.T) {
	script := &ast.Script{
		Reactives: []*ast.ReactiveDecl{
			{Target: "a", Expr: raw("b + 1")},
			{Target: "b", Expr: raw("a + 1")},
		},
	}
	res := Build(component(script), "", "App.svelte", Options{})
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, codes(res.Errors), diag.ReactiveCycle)
	assert.Nil(t, res.Component)
}

func TestDependentsOfIsTransitiveAndOrdered(t *testing.T) {
	script := &ast.Script{
		Vars: []*ast.VarDecl{{Name: "count", Init: raw("0")}},
		Reactives: []*ast.ReactiveDecl{
			{Target: "doubled", Expr: raw("count * 2")},
			{Target: "label", Expr: raw("doubled + 1")},
			{Target: "other", Expr: raw("count - 1")},
		},
	}
	res := Build(component(script), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	g := res.Component.State
	assert.Equal(t, []string{"doubled", "label", "other"}, g.DependentsOf("count"))
	assert.Equal(t, []string{"label"}, g.DependentsOf("doubled"))
	assert.Empty(t, g.DependentsOf("label"))
}

func TestBuildHandlerDirtyTracking(t *testing.T) {
	script := &ast.Script{
		Vars: []*ast.VarDecl{{Name: "count", Init: raw("0")}},
		Functions: []*ast.FuncDecl{{
			Name: "increment",
			Body: []ast.Stmt{
				&ast.AssignStmt{Target: "count", Op: "+=", Value: raw("1")},
			},
		}},
	}
	btn := &ast.Element{
		Tag:    "button",
		Events: []*ast.EventAttr{{Event: "select", Handler: "increment"}},
	}
	res := Build(component(script, btn), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	comp := res.Component

	require.Len(t, comp.Handlers, 1)
	h := comp.Handlers[0]
	assert.Equal(t, "increment", h.Name)
	require.Len(t, h.Body, 1)
	a := h.Body[0].(*Assign)
	assert.Equal(t, "m.state.count", a.Target)
	assert.Equal(t, "count", a.StateVar)
	assert.Equal(t, "m.state.count + (1)", a.Expr)

	require.Len(t, comp.Observers, 1)
	assert.Equal(t, "buttonSelected", comp.Observers[0].Field)
	assert.Equal(t, "increment", comp.Observers[0].Handler)

	require.Len(t, comp.Nodes, 1)
	assert.True(t, comp.Nodes[0].Focusable)
}

func TestBuildUnknownHandlerRef(t *testing.T) {
	btn := &ast.Element{
		Tag:    "button",
		Events: []*ast.EventAttr{{Event: "select", Handler: "missing"}},
	}
	res := Build(component(&ast.Script{}, btn), "", "App.svelte", Options{})
	require.Len(t, res.Errors, 1)
	assert.Equal(t, diag.UnknownHandlerRef, res.Errors[0].Code)
}

func TestBuildDynamicTextBinding(t *testing.T) {
	script := &ast.Script{Vars: []*ast.VarDecl{{Name: "count", Init: raw("0")}}}
	label := &ast.Element{
		Tag: "label",
		Children: []ast.Node{
			&ast.Text{Text: "Count: "},
			&ast.Mustache{Expr: raw("count")},
		},
	}
	res := Build(component(script, label), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	comp := res.Component

	require.Len(t, comp.Bindings, 1)
	b := comp.Bindings[0]
	assert.Equal(t, "text", b.Prop)
	assert.Equal(t, `"Count: " + rsv_str(m.state.count)`, b.Expr)
	assert.Equal(t, []string{"count"}, b.Deps)
	assert.True(t, comp.RequiresRuntime)

	prop, ok := comp.Nodes[0].Props.Get("text")
	require.True(t, ok)
	assert.True(t, prop.Dynamic)
}

func TestBuildEachLowersToMarkupList(t *testing.T) {
	script := &ast.Script{Vars: []*ast.VarDecl{{Name: "items", Init: raw("[1, 2, 3]")}}}
	each := &ast.EachBlock{
		Expr: raw("items"),
		Item: "item",
		Children: []ast.Node{
			&ast.Element{Tag: "label", Children: []ast.Node{&ast.Mustache{Expr: raw("item")}}},
		},
	}
	res := Build(component(script, each), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	comp := res.Component

	require.Len(t, comp.Nodes, 1)
	list := comp.Nodes[0]
	assert.Equal(t, "MarkupList", list.Type)
	name, _ := list.Props.Get("itemComponentName")
	assert.Equal(t, "AppItem1", name.Value)
	assert.True(t, comp.RequiresRuntime)

	require.Len(t, comp.Items, 1)
	item := comp.Items[0]
	assert.Equal(t, "AppItem1", item.Name)
	assert.Equal(t, "item", item.ItemVar)
	assert.Equal(t, "Group", item.Extends)
	require.Len(t, item.Fields, 1)
	assert.Equal(t, "itemContent", item.Fields[0].Name)

	require.Len(t, comp.Bindings, 1)
	assert.Equal(t, "content", comp.Bindings[0].Prop)
	assert.Equal(t, "rsv_contentFromArray(m.state.items)", comp.Bindings[0].Expr)
	assert.Equal(t, []string{"items"}, comp.Bindings[0].Deps)
}

func TestBuildEachMisuseCodes(t *testing.T) {
	script := &ast.Script{Vars: []*ast.VarDecl{{Name: "items", Init: raw("[1]")}}}
	cases := []struct {
		name string
		blk  *ast.EachBlock
		code diag.Code
	}{
		{"index", &ast.EachBlock{Expr: raw("items"), Item: "x", Index: "i"}, diag.EachWithIndex},
		{"key", &ast.EachBlock{Expr: raw("items"), Item: "x", Key: raw("x.id")}, diag.EachWithKey},
		{"not array", &ast.EachBlock{Expr: raw("items.length"), Item: "x"}, diag.EachNotArray},
		{"undeclared", &ast.EachBlock{Expr: raw("missing"), Item: "x"}, diag.EachNotArray},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := Build(component(script, tc.blk), "", "App.svelte", Options{})
			require.NotEmpty(t, res.Errors)
			assert.Contains(t, codes(res.Errors), tc.code)
		})
	}
}

func TestBuildEachNested(t *testing.T) {
	script := &ast.Script{Vars: []*ast.VarDecl{{Name: "items", Init: raw("[1]")}}}
	inner := &ast.EachBlock{Expr: raw("items"), Item: "y"}
	outer := &ast.EachBlock{Expr: raw("items"), Item: "x", Children: []ast.Node{inner}}
	res := Build(component(script, outer), "", "App.svelte", Options{})
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, codes(res.Errors), diag.EachNested)
}

func TestBuildDerivedDiamondOrderIsStable(t *testing.T) {
	// Two siblings unlocked by the same dependency must drain in
	// declaration order on every compile.
	script := func() *ast.Script {
		return &ast.Script{
			Vars: []*ast.VarDecl{{Name: "count", Init: raw("0")}},
			Reactives: []*ast.ReactiveDecl{
				{Target: "a", Expr: raw("count * 1")},
				{Target: "b", Expr: raw("a + 1")},
				{Target: "c", Expr: raw("a + 2")},
			},
		}
	}
	for i := 0; i < 50; i++ {
		res := Build(component(script()), "", "App.svelte", Options{})
		require.Empty(t, res.Errors)
		assert.Equal(t, []string{"a", "b", "c"}, res.Component.State.DerivedOrder)
	}
}

func TestBuildEachRejectsScalarState(t *testing.T) {
	script := &ast.Script{Vars: []*ast.VarDecl{{Name: "count", Init: raw("0")}}}
	each := &ast.EachBlock{Expr: raw("count"), Item: "x"}
	res := Build(component(script, each), "", "App.svelte", Options{})
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, codes(res.Errors), diag.EachNotArray)
}

func TestBuildStyleResolution(t *testing.T) {
	elem := &ast.Element{
		Tag:      "rect",
		StyleRaw: "width: 50%; height: 2rem; background-color: #abc; opacity: 0.5",
	}
	res := Build(component(&ast.Script{}, elem), "", "App.svelte", Options{CanvasWidth: 1920, CanvasHeight: 1080})
	require.Empty(t, res.Errors)
	node := res.Component.Nodes[0]

	w, _ := node.Props.Get("width")
	assert.Equal(t, "960", w.Value)
	h, _ := node.Props.Get("height")
	assert.Equal(t, "32", h.Value)
	c, _ := node.Props.Get("color")
	assert.Equal(t, "0xaabbccff", c.Value)
	o, _ := node.Props.Get("opacity")
	assert.Equal(t, "0.5", o.Value)
}

func TestBuildFlexStylesStashed(t *testing.T) {
	elem := &ast.Element{
		Tag:      "group",
		StyleRaw: "display: flex; flex-direction: row; gap: 50px",
	}
	res := Build(component(&ast.Script{}, elem), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	node := res.Component.Nodes[0]
	assert.True(t, node.IsFlexContainer())
	assert.Equal(t, "row", node.Flex["flex-direction"])
	assert.Equal(t, "50px", node.Flex["gap"])
}

func TestBuildUnsupportedCSSWarns(t *testing.T) {
	elem := &ast.Element{Tag: "group", StyleRaw: "box-shadow: 0 0 4px black"}
	res := Build(component(&ast.Script{}, elem), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, diag.UnsupportedCSSProperty, res.Warnings[0].Code)
	assert.Contains(t, res.Warnings[0].Message, "box-shadow")
}

func TestBuildEntryExtendsScene(t *testing.T) {
	res := Build(component(&ast.Script{}), "", "App.svelte", Options{IsEntry: true})
	require.Empty(t, res.Errors)
	assert.Equal(t, "Scene", res.Component.Extends)

	res = Build(component(&ast.Script{}), "", "App.svelte", Options{})
	assert.Equal(t, "Group", res.Component.Extends)
}

func TestBuildGeneratedIDsAreDeterministic(t *testing.T) {
	nodes := []ast.Node{
		&ast.Element{Tag: "label"},
		&ast.Element{Tag: "label"},
		&ast.Element{Tag: "group", Attrs: []*ast.Attr{{Name: "id", Value: "header"}}},
	}
	res := Build(component(&ast.Script{}, nodes...), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	comp := res.Component
	assert.Equal(t, "label1", comp.Nodes[0].ID)
	assert.Equal(t, "label2", comp.Nodes[1].ID)
	assert.Equal(t, "header", comp.Nodes[2].ID)
}

func TestBuildDuplicateIDsAreSuffixed(t *testing.T) {
	nodes := []ast.Node{
		&ast.Element{Tag: "group", Attrs: []*ast.Attr{{Name: "id", Value: "box"}}},
		&ast.Element{Tag: "group", Attrs: []*ast.Attr{{Name: "id", Value: "box"}}},
		&ast.Element{Tag: "group", Attrs: []*ast.Attr{{Name: "id", Value: "box"}}},
	}
	res := Build(component(&ast.Script{}, nodes...), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	comp := res.Component
	assert.Equal(t, "box", comp.Nodes[0].ID)
	assert.Equal(t, "box2", comp.Nodes[1].ID)
	assert.Equal(t, "box3", comp.Nodes[2].ID)
}

func TestBuildExplicitIDNeverCollidesWithGenerated(t *testing.T) {
	// An explicit id shaped like a generated one claims it; the generator
	// skips past.
	nodes := []ast.Node{
		&ast.Element{Tag: "label", Attrs: []*ast.Attr{{Name: "id", Value: "label1"}}},
		&ast.Element{Tag: "label"},
	}
	res := Build(component(&ast.Script{}, nodes...), "", "App.svelte", Options{})
	require.Empty(t, res.Errors)
	comp := res.Component
	assert.Equal(t, "label1", comp.Nodes[0].ID)
	assert.Equal(t, "label2", comp.Nodes[1].ID)
}
