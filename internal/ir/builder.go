package ir

import (
	"regexp"
	"strings"

	exprast "github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/parser"
	"github.com/spf13/cast"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
	"github.com/aryamurray/roku-svelte-sub001/internal/styles"
)

// Options configures one IR build.
type Options struct {
	// IsEntry marks the application root; it extends Scene instead of Group.
	IsEntry      bool
	CanvasWidth  float64
	CanvasHeight float64
}

// Result is the outcome of one build. Component is nil when Errors is
// non-empty; warnings accompany either outcome.
type Result struct {
	Component *Component
	Errors    []*diag.Error
	Warnings  []*diag.Warning
}

const (
	defaultCanvasWidth  = 1920
	defaultCanvasHeight = 1080
	defaultItemHeight   = 100
)

// Build lowers a validated component AST into the IR. The builder keeps
// going after the first error so one compile reports every problem, but a
// single error voids the component.
func Build(src *ast.Component, source, filename string, opts Options) Result {
	if opts.CanvasWidth == 0 {
		opts.CanvasWidth = defaultCanvasWidth
	}
	if opts.CanvasHeight == 0 {
		opts.CanvasHeight = defaultCanvasHeight
	}
	b := &builder{
		source:   source,
		filename: filename,
		opts:     opts,
		idCounts: make(map[string]int),
		imports:  make(map[string]string),
		funcs:    make(map[string]*ast.FuncDecl),
	}
	extends := "Group"
	if opts.IsEntry {
		extends = "Scene"
	}
	b.comp = &Component{
		Name:      src.Name,
		Extends:   extends,
		ScriptURI: "pkg:/components/" + src.Name + "/" + src.Name + ".brs",
		State:     NewStateGraph(),
	}
	b.tr = newTranslator(b.comp.State)

	if src.Instance != nil {
		b.buildImports(src.Instance)
		b.buildState(src.Instance)
		for _, fn := range src.Instance.Functions {
			b.funcs[fn.Name] = fn
		}
		for _, bad := range src.Instance.Bad {
			b.errorAt(diag.UnsupportedExpression, bad.Start,
				map[string]string{"expr": strings.TrimSpace(bad.Text)})
		}
	}

	rootCtx := styles.LayoutContext{
		ParentWidth:  opts.CanvasWidth,
		ParentHeight: opts.CanvasHeight,
		CanvasWidth:  opts.CanvasWidth,
		CanvasHeight: opts.CanvasHeight,
	}
	b.comp.Nodes = b.buildNodes(src.Fragment.Nodes, rootCtx, false)
	b.buildHandlers()

	b.comp.Polyfills = b.tr.sortedPolyfills()
	b.comp.RequiresStdlib = len(b.comp.Polyfills) > 0

	if len(b.errs) > 0 {
		return Result{Errors: b.errs, Warnings: b.warns}
	}
	return Result{Component: b.comp, Warnings: b.warns}
}

type builder struct {
	source   string
	filename string
	opts     Options

	comp *Component
	tr   *translator

	errs  []*diag.Error
	warns []*diag.Warning

	idCounts map[string]int
	// usedIDs holds every id taken so far; explicit and generated ids share
	// one namespace per component.
	usedIDs map[string]bool
	imports map[string]string
	funcs   map[string]*ast.FuncDecl
	// handlerOrder preserves first-reference order for emitted subs.
	handlerOrder []string
	handlerSeen  map[string]bool
}

func (b *builder) errorAt(code diag.Code, offset int, vars map[string]string) {
	b.errs = append(b.errs, diag.NewError(code,
		diag.LocationFromOffset(b.source, offset, b.filename), vars))
}

func (b *builder) warnAt(code diag.Code, offset int, vars map[string]string) {
	b.warns = append(b.warns, diag.NewWarning(code,
		diag.LocationFromOffset(b.source, offset, b.filename), vars))
}

// translate funnels one expression through the shared translator and folds
// its diagnostics into the build.
func (b *builder) translate(raw *ast.RawExpr, mode exprMode) (translated, bool) {
	out, errs := b.tr.translate(raw, b.source, b.filename, mode)
	if len(errs) > 0 {
		b.errs = append(b.errs, errs...)
		return translated{}, false
	}
	return out, true
}

func (b *builder) buildImports(script *ast.Script) {
	for _, imp := range script.Imports {
		if _, dup := b.imports[imp.Name]; dup {
			continue
		}
		b.imports[imp.Name] = imp.Path
		b.comp.Imports = append(b.comp.Imports, ChildImport{Name: imp.Name, Path: imp.Path})
	}
}

// buildState registers every declared name before translating any
// initializer, so reactive declarations may reference names declared later
// in the script.
func (b *builder) buildState(script *ast.Script) {
	g := b.comp.State
	register := func(name string, isProp bool) {
		if g.Has(name) {
			return
		}
		g.Order = append(g.Order, name)
		g.Initial[name] = "invalid"
		g.IsProp[name] = isProp
	}
	for _, p := range script.Props {
		register(p.Name, true)
	}
	for _, v := range script.Vars {
		register(v.Name, false)
	}
	for _, r := range script.Reactives {
		register(r.Target, false)
	}

	for _, p := range script.Props {
		fieldType := "string"
		if p.Init != nil {
			if out, ok := b.translate(p.Init, modeInitializer); ok {
				g.Initial[p.Name] = out.Code
			}
			fieldType = literalType(p.Init.Text)
		}
		g.Kind[p.Name] = fieldType
		b.comp.Fields = append(b.comp.Fields, InterfaceField{
			Name:     p.Name,
			Type:     fieldType,
			OnChange: "rsv_on" + pascal(p.Name) + "Change",
		})
	}
	for _, v := range script.Vars {
		if v.Init == nil {
			continue
		}
		if out, ok := b.translate(v.Init, modeInitializer); ok {
			g.Initial[v.Name] = out.Code
		}
		g.Kind[v.Name] = literalType(v.Init.Text)
	}
	for _, r := range script.Reactives {
		out, ok := b.translate(r.Expr, modeHandler)
		if !ok {
			continue
		}
		g.Derived[r.Target] = &Derived{Name: r.Target, Expr: out.Code, Deps: out.Deps}
	}
	b.sortDerived(script)
}

// sortDerived computes a topological order over the derived subgraph with
// Kahn's algorithm. Any residue after the drain is a cycle.
func (b *builder) sortDerived(script *ast.Script) {
	g := b.comp.State
	indegree := make(map[string]int, len(g.Derived))
	dependents := make(map[string][]string)
	// Walk declarations, not the map, so adjacency lists and therefore the
	// drain order are identical on every compile.
	visited := make(map[string]bool, len(g.Derived))
	for _, r := range script.Reactives {
		name := r.Target
		d, ok := g.Derived[name]
		if !ok || visited[name] {
			continue
		}
		visited[name] = true
		if _, ok := indegree[name]; !ok {
			indegree[name] = 0
		}
		for _, dep := range d.Deps {
			if _, isDerived := g.Derived[dep]; isDerived {
				indegree[name]++
				dependents[dep] = append(dependents[dep], name)
			}
		}
	}
	// Seed the queue in declaration order so the result is deterministic.
	var queue []string
	for _, r := range script.Reactives {
		if deg, ok := indegree[r.Target]; ok && deg == 0 {
			queue = append(queue, r.Target)
		}
	}
	var order []string
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		order = append(order, name)
		for _, next := range dependents[name] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if len(order) < len(g.Derived) {
		for _, r := range script.Reactives {
			if deg, ok := indegree[r.Target]; ok && deg > 0 {
				b.errorAt(diag.ReactiveCycle, r.Start, map[string]string{"name": r.Target})
				break
			}
		}
		return
	}
	g.DerivedOrder = order
}

// Template tag names and their scene node types.
var tagMap = map[string]string{
	"group":     "Group",
	"div":       "Group",
	"rect":      "Rectangle",
	"rectangle": "Rectangle",
	"label":     "Label",
	"span":      "Label",
	"p":         "Label",
	"text":      "Label",
	"poster":    "Poster",
	"img":       "Poster",
	"image":     "Poster",
	"button":    "Button",
}

// Events mapped onto node fields for observeField wiring.
func fieldForEvent(nodeType, event string) string {
	if event == "select" {
		switch nodeType {
		case "Button":
			return "buttonSelected"
		case "MarkupList":
			return "itemSelected"
		}
	}
	if event == "focus" || event == "blur" {
		return "focusedChild"
	}
	return event
}

func (b *builder) buildNodes(nodes []ast.Node, ctx styles.LayoutContext, inEach bool) []*Node {
	var out []*Node
	for _, n := range nodes {
		switch node := n.(type) {
		case *ast.Element:
			out = append(out, b.buildElement(node, ctx, inEach))
		case *ast.EachBlock:
			if built := b.buildEach(node, ctx, inEach); built != nil {
				out = append(out, built)
			}
		case *ast.Text:
			if strings.TrimSpace(node.Text) == "" {
				continue
			}
			out = append(out, b.textNode(strings.TrimSpace(node.Text)))
		case *ast.Mustache:
			out = append(out, b.mustacheNode(node))
		}
	}
	return out
}

func (b *builder) nodeType(elem *ast.Element) string {
	if t, ok := tagMap[elem.Tag]; ok {
		return t
	}
	first := elem.Tag[:1]
	if first == strings.ToUpper(first) && first != strings.ToLower(first) {
		if _, imported := b.imports[elem.Tag]; !imported {
			b.warnAt(diag.UnknownElement, elem.Start, map[string]string{"tag": elem.Tag})
		}
		return elem.Tag
	}
	b.warnAt(diag.UnknownElement, elem.Start, map[string]string{"tag": elem.Tag})
	return "Group"
}

func (b *builder) genID(nodeType string) string {
	key := strings.ToLower(nodeType)
	for {
		b.idCounts[key]++
		if id := key + cast.ToString(b.idCounts[key]); b.claimID(id) {
			return id
		}
	}
}

// claimID takes an id if free.
func (b *builder) claimID(id string) bool {
	if b.usedIDs == nil {
		b.usedIDs = make(map[string]bool)
	}
	if b.usedIDs[id] {
		return false
	}
	b.usedIDs[id] = true
	return true
}

// uniqueID resolves a user-supplied id, suffixing on collision so node
// lookup keys stay unique within the component.
func (b *builder) uniqueID(id string) string {
	if b.claimID(id) {
		return id
	}
	for n := 2; ; n++ {
		if candidate := id + cast.ToString(n); b.claimID(candidate) {
			return candidate
		}
	}
}

func (b *builder) buildElement(elem *ast.Element, ctx styles.LayoutContext, inEach bool) *Node {
	node := &Node{
		Type:  b.nodeType(elem),
		Props: NewPropList(),
		Loc:   diag.LocationFromOffset(b.source, elem.Start, b.filename),
	}
	for _, attr := range elem.Attrs {
		if attr.Name == "id" && attr.Expr == nil {
			node.ID = b.uniqueID(attr.Value)
			break
		}
	}
	if node.ID == "" {
		node.ID = b.genID(node.Type)
	}

	for _, attr := range elem.Attrs {
		if attr.Name == "id" || attr.Name == "style" {
			continue
		}
		if attr.Expr == nil {
			node.Props.Set(attr.Name, attr.Value, false)
			continue
		}
		if out, ok := b.translate(attr.Expr, modeTemplate); ok {
			node.Props.Set(attr.Name, out.Code, true)
			b.comp.Bindings = append(b.comp.Bindings, &Binding{
				NodeID: node.ID, Prop: attr.Name, Expr: out.Code, Deps: out.Deps,
			})
		}
	}

	for _, ev := range elem.Events {
		if _, declared := b.funcs[ev.Handler]; !declared {
			b.errorAt(diag.UnknownHandlerRef, ev.Start, map[string]string{"name": ev.Handler})
			continue
		}
		node.Focusable = true
		b.comp.Observers = append(b.comp.Observers, &Observer{
			NodeID:  node.ID,
			Field:   fieldForEvent(node.Type, ev.Event),
			Handler: ev.Handler,
		})
		b.needHandler(ev.Handler)
	}

	b.applyStyle(node, elem, ctx)

	childCtx := ctx
	if w, ok := node.Props.Get("width"); ok && !w.Dynamic {
		childCtx.ParentWidth = cast.ToFloat64(w.Value)
	}
	if h, ok := node.Props.Get("height"); ok && !h.Dynamic {
		childCtx.ParentHeight = cast.ToFloat64(h.Value)
	}

	// Text-bearing nodes absorb their text children as the text property;
	// everything else nests.
	if node.Type == "Label" || node.Type == "Button" {
		b.absorbText(node, elem.Children)
	} else {
		node.Children = b.buildNodes(elem.Children, childCtx, inEach)
	}
	return node
}

// absorbText folds text and mustache children of a text-bearing element
// into its text prop. Static pieces concatenate; a single mustache makes
// the whole prop dynamic.
func (b *builder) absorbText(node *Node, children []ast.Node) {
	type piece struct {
		static bool
		text   string
	}
	var pieces []piece
	var deps []string
	seen := make(map[string]bool)
	dynamic := false
	for _, child := range children {
		switch c := child.(type) {
		case *ast.Text:
			t := collapseWS(c.Text)
			if strings.TrimSpace(t) == "" {
				continue
			}
			pieces = append(pieces, piece{static: true, text: t})
		case *ast.Mustache:
			out, ok := b.translate(c.Expr, modeTemplate)
			if !ok {
				continue
			}
			dynamic = true
			pieces = append(pieces, piece{text: "rsv_str(" + out.Code + ")"})
			for _, d := range out.Deps {
				if !seen[d] {
					seen[d] = true
					deps = append(deps, d)
				}
			}
		}
	}
	if len(pieces) == 0 {
		return
	}
	// Outer whitespace is template indentation, not content.
	if pieces[0].static {
		pieces[0].text = strings.TrimLeft(pieces[0].text, " ")
	}
	if last := &pieces[len(pieces)-1]; last.static {
		last.text = strings.TrimRight(last.text, " ")
	}

	if !dynamic {
		var parts []string
		for _, p := range pieces {
			parts = append(parts, p.text)
		}
		node.Props.Set("text", strings.Join(parts, ""), false)
		return
	}
	b.comp.RequiresRuntime = true
	var parts []string
	for _, p := range pieces {
		if p.static {
			parts = append(parts, quoteBRS(p.text))
		} else {
			parts = append(parts, p.text)
		}
	}
	expr := strings.Join(parts, " + ")
	node.Props.Set("text", expr, true)
	b.comp.Bindings = append(b.comp.Bindings, &Binding{
		NodeID: node.ID, Prop: "text", Expr: expr, Deps: deps,
	})
}

var wsRun = regexp.MustCompile(`\s+`)

// collapseWS folds whitespace runs to single spaces, the way template text
// renders.
func collapseWS(s string) string {
	return wsRun.ReplaceAllString(s, " ")
}

// textNode wraps stray template text in an implicit Label.
func (b *builder) textNode(text string) *Node {
	node := &Node{Type: "Label", Props: NewPropList()}
	node.ID = b.genID("Label")
	node.Props.Set("text", text, false)
	return node
}

func (b *builder) mustacheNode(m *ast.Mustache) *Node {
	node := &Node{Type: "Label", Props: NewPropList()}
	node.ID = b.genID("Label")
	if out, ok := b.translate(m.Expr, modeTemplate); ok {
		b.comp.RequiresRuntime = true
		expr := "rsv_str(" + out.Code + ")"
		node.Props.Set("text", expr, true)
		b.comp.Bindings = append(b.comp.Bindings, &Binding{
			NodeID: node.ID, Prop: "text", Expr: expr, Deps: out.Deps,
		})
	}
	return node
}

// buildEach lowers one {#each} site to a MarkupList plus a synthesized item
// component. Restrictions are diagnosed distinctly so the user learns the
// exact unsupported feature.
func (b *builder) buildEach(blk *ast.EachBlock, ctx styles.LayoutContext, inEach bool) *Node {
	bad := false
	if inEach {
		b.errorAt(diag.EachNested, blk.Start, nil)
		bad = true
	}
	if blk.Index != "" {
		b.errorAt(diag.EachWithIndex, blk.Start, nil)
		bad = true
	}
	if blk.Key != nil {
		b.errorAt(diag.EachWithKey, blk.Start, nil)
		bad = true
	}
	iterable, ok := b.eachIterable(blk)
	if !ok {
		bad = true
	}
	if bad {
		return nil
	}

	item := b.buildItemComponent(blk, ctx)
	b.comp.Items = append(b.comp.Items, item)
	b.comp.RequiresRuntime = true

	node := &Node{Type: "MarkupList", Props: NewPropList()}
	node.ID = b.genID("MarkupList")
	node.Props.Set("itemComponentName", item.Name, false)
	node.Props.Set("itemSize", "["+formatNumber(item.Width)+", "+formatNumber(item.Height)+"]", false)
	contentExpr := "rsv_contentFromArray(m.state." + iterable + ")"
	node.Props.Set("content", contentExpr, true)
	b.comp.Bindings = append(b.comp.Bindings, &Binding{
		NodeID: node.ID, Prop: "content", Expr: contentExpr, Deps: []string{iterable},
	})
	return node
}

// eachIterable accepts only a bare identifier naming declared array state.
// Scalar state and derived values are rejected, not iterated.
func (b *builder) eachIterable(blk *ast.EachBlock) (string, bool) {
	raw := strings.TrimSpace(blk.Expr.Text)
	tree, err := parser.Parse(raw)
	if err != nil {
		b.errorAt(diag.EachNotArray, blk.Start, map[string]string{"expr": raw})
		return "", false
	}
	ident, ok := tree.Node.(*exprast.IdentifierNode)
	if !ok || b.comp.State.Kind[ident.Value] != "array" {
		b.errorAt(diag.EachNotArray, blk.Start, map[string]string{"expr": raw})
		return "", false
	}
	return ident.Value, true
}

func (b *builder) buildItemComponent(blk *ast.EachBlock, ctx styles.LayoutContext) *ItemComponent {
	name := b.comp.Name + "Item" + cast.ToString(len(b.comp.Items)+1)
	sub := &builder{
		source:   b.source,
		filename: b.filename,
		opts:     b.opts,
		idCounts: make(map[string]int),
		imports:  b.imports,
		funcs:    b.funcs,
	}
	sub.comp = &Component{
		Name:      name,
		Extends:   "Group",
		ScriptURI: "pkg:/components/" + b.comp.Name + "/" + name + ".brs",
		State:     NewStateGraph(),
	}
	sub.comp.State.Order = []string{blk.Item}
	sub.comp.State.Initial[blk.Item] = "invalid"
	sub.comp.Fields = []InterfaceField{{
		Name:     "itemContent",
		Type:     "assocarray",
		OnChange: "rsv_onItemContentChange",
	}}
	sub.tr = newTranslator(sub.comp.State)

	sub.comp.Nodes = sub.buildNodes(blk.Children, ctx, true)
	sub.buildHandlers()
	sub.comp.Polyfills = sub.tr.sortedPolyfills()
	sub.comp.RequiresStdlib = len(sub.comp.Polyfills) > 0

	b.errs = append(b.errs, sub.errs...)
	b.warns = append(b.warns, sub.warns...)
	for fn := range sub.tr.polyfills {
		b.tr.polyfills[fn] = true
	}

	item := &ItemComponent{Component: sub.comp, ItemVar: blk.Item}
	item.Width, item.Height = b.itemSize(sub.comp)
	return item
}

// itemSize takes the row root's static size when present and falls back to
// a full-width row of fixed height.
func (b *builder) itemSize(comp *Component) (w, h float64) {
	w, h = b.opts.CanvasWidth, defaultItemHeight
	if len(comp.Nodes) == 0 {
		return w, h
	}
	root := comp.Nodes[0]
	if p, ok := root.Props.Get("width"); ok && !p.Dynamic {
		if v, err := cast.ToFloat64E(p.Value); err == nil {
			w = v
		}
	}
	if p, ok := root.Props.Get("height"); ok && !p.Dynamic {
		if v, err := cast.ToFloat64E(p.Value); err == nil {
			h = v
		}
	}
	return w, h
}

// needHandler queues a referenced function for compilation exactly once.
func (b *builder) needHandler(name string) {
	if b.handlerSeen == nil {
		b.handlerSeen = make(map[string]bool)
	}
	if b.handlerSeen[name] {
		return
	}
	b.handlerSeen[name] = true
	b.handlerOrder = append(b.handlerOrder, name)
}

func (b *builder) buildHandlers() {
	for _, name := range b.handlerOrder {
		fn := b.funcs[name]
		for _, p := range fn.Params {
			b.tr.pushLocal(p)
		}
		body := b.buildStmts(fn.Body)
		for _, p := range fn.Params {
			b.tr.popLocal(p)
		}
		b.comp.Handlers = append(b.comp.Handlers, &Handler{
			Name:   name,
			Params: fn.Params,
			Body:   body,
		})
	}
}

func (b *builder) buildStmts(stmts []ast.Stmt) []Stmt {
	var out []Stmt
	for _, s := range stmts {
		switch stmt := s.(type) {
		case *ast.AssignStmt:
			if a := b.buildAssign(stmt); a != nil {
				out = append(out, a)
			}
		case *ast.IfStmt:
			ir := &If{}
			for _, br := range stmt.Branches {
				cond, ok := b.translate(br.Cond, modeHandler)
				if !ok {
					continue
				}
				ir.Branches = append(ir.Branches, IfBranch{
					Cond: cond.Code,
					Body: b.buildStmts(br.Body),
				})
			}
			ir.Else = b.buildStmts(stmt.Else)
			if len(ir.Branches) > 0 {
				out = append(out, ir)
			}
		case *ast.WhileStmt:
			cond, ok := b.translate(stmt.Cond, modeHandler)
			if !ok {
				continue
			}
			out = append(out, &While{Cond: cond.Code, Body: b.buildStmts(stmt.Body)})
		case *ast.ForEachStmt:
			iter, ok := b.translate(stmt.Iterable, modeHandler)
			if !ok {
				continue
			}
			b.tr.pushLocal(stmt.Var)
			body := b.buildStmts(stmt.Body)
			b.tr.popLocal(stmt.Var)
			out = append(out, &ForEach{Var: stmt.Var, Iterable: iter.Code, Body: body})
		case *ast.ReturnStmt:
			ret := &Return{}
			if stmt.Value != nil {
				v, ok := b.translate(stmt.Value, modeHandler)
				if !ok {
					continue
				}
				ret.Expr = v.Code
			}
			out = append(out, ret)
		case *ast.BlockStmt:
			out = append(out, &Block{Body: b.buildStmts(stmt.Body)})
		case *ast.BadStmt:
			b.errorAt(diag.UnsupportedHandlerBody, stmt.Start,
				map[string]string{"construct": strings.TrimSpace(stmt.Text)})
		}
	}
	return out
}

// buildAssign resolves the assignment target against locals and state and
// rewrites compound operators into plain assignments.
func (b *builder) buildAssign(stmt *ast.AssignStmt) Stmt {
	root := stmt.Target
	rest := ""
	if i := strings.IndexAny(stmt.Target, ".["); i >= 0 {
		root, rest = stmt.Target[:i], stmt.Target[i:]
	}

	var lvalue, stateVar string
	switch {
	case b.tr.locals[root]:
		lvalue = stmt.Target
	case b.comp.State.Has(root):
		lvalue = b.tr.stateRef(root) + rest
		stateVar = root
	default:
		b.errorAt(diag.UnknownStateRef, stmt.Start, map[string]string{"name": root})
		return nil
	}

	rhs, ok := b.translate(stmt.Value, modeHandler)
	if !ok {
		return nil
	}
	expr := rhs.Code
	switch stmt.Op {
	case "+=":
		expr = lvalue + " + (" + rhs.Code + ")"
	case "-=":
		expr = lvalue + " - (" + rhs.Code + ")"
	}
	return &Assign{Target: lvalue, StateVar: stateVar, Expr: expr}
}

// pascal upper-cases the first letter for generated sub names.
func pascal(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
