// Package ir defines the compiler's intermediate representation: a tree of
// scene nodes with static and dynamic properties, a reactive-state graph,
// and compiled handlers. The IR is independent of both the input dialect
// and the emitted formats; it is created fresh per compile, mutated in
// place only by the layout resolver, and read-only for the emitters.
package ir

import "github.com/aryamurray/roku-svelte-sub001/internal/diag"

// Component is the root of one compiled file.
type Component struct {
	Name      string
	Extends   string
	ScriptURI string
	Nodes     []*Node

	RequiresRuntime bool
	RequiresStdlib  bool
	Polyfills       []string

	Imports  []ChildImport
	Fields   []InterfaceField
	State    *StateGraph
	Handlers []*Handler
	// Observers wire node events to handler subs in the generated script.
	Observers []*Observer
	// Bindings connect dynamic node properties to state expressions.
	Bindings []*Binding
	Items    []*ItemComponent
}

// ChildImport is one referenced child component, deduplicated by name.
type ChildImport struct {
	Name string
	Path string
}

// InterfaceField is one declarative interface field generated from an
// `export let` declaration.
type InterfaceField struct {
	Name     string
	Type     string
	OnChange string
}

// Node is one scene element. ID is unique within the owning component and
// doubles as the script-side lookup key.
type Node struct {
	ID        string
	Type      string
	Props     *PropList
	Children  []*Node
	Focusable bool
	// Loc points at the source element, for diagnostics raised after build.
	Loc diag.SourceLocation
	// Flex holds layout-relevant style declarations. The layout resolver
	// consumes and deletes it; emitters never see flex semantics.
	Flex map[string]string
}

// IsFlexContainer reports whether this node opted into flex layout.
func (n *Node) IsFlexContainer() bool {
	return n.Flex != nil && n.Flex["display"] == "flex"
}

// Prop is one node property. Static properties are inlined in the
// declarative tree; dynamic ones are set only by generated script code.
type Prop struct {
	Name    string
	Value   string
	Dynamic bool
}

// PropList is an insertion-ordered property map. Order determines
// attribute order in emitted XML, so emission stays deterministic while
// lookups stay constant-time.
type PropList struct {
	names  []string
	byName map[string]*Prop
}

func NewPropList() *PropList {
	return &PropList{byName: make(map[string]*Prop)}
}

// Set inserts or overwrites a property, preserving first-insertion order.
func (pl *PropList) Set(name, value string, dynamic bool) {
	if existing, ok := pl.byName[name]; ok {
		existing.Value = value
		existing.Dynamic = dynamic
		return
	}
	p := &Prop{Name: name, Value: value, Dynamic: dynamic}
	pl.byName[name] = p
	pl.names = append(pl.names, name)
}

func (pl *PropList) Get(name string) (*Prop, bool) {
	p, ok := pl.byName[name]
	return p, ok
}

func (pl *PropList) Has(name string) bool {
	_, ok := pl.byName[name]
	return ok
}

// All returns properties in insertion order.
func (pl *PropList) All() []*Prop {
	out := make([]*Prop, 0, len(pl.names))
	for _, name := range pl.names {
		out = append(out, pl.byName[name])
	}
	return out
}

// StateGraph is the reactive-state graph: declared state with initial
// literals plus derived values with their dependency sets.
type StateGraph struct {
	// Order is declaration order: props, then vars, then derived targets.
	Order []string
	// Initial maps every name to its initial BrightScript literal.
	// Derived names start at their zero placeholder and are computed
	// during init.
	Initial map[string]string
	// IsProp marks names mirrored from interface fields.
	IsProp map[string]bool
	// Kind maps each declared name to the inferred type of its initializer
	// ("array", "integer", ...). Derived names are absent.
	Kind    map[string]string
	Derived map[string]*Derived
	// DerivedOrder is a valid topological order of the derived subgraph.
	DerivedOrder []string
}

func NewStateGraph() *StateGraph {
	return &StateGraph{
		Initial: make(map[string]string),
		IsProp:  make(map[string]bool),
		Kind:    make(map[string]string),
		Derived: make(map[string]*Derived),
	}
}

// Has reports whether name is a declared state or derived value.
func (g *StateGraph) Has(name string) bool {
	_, ok := g.Initial[name]
	return ok
}

// Derived is one `$:` declaration: target name, translated expression and
// the set of state/derived names it reads.
type Derived struct {
	Name string
	Expr string
	Deps []string
}

// DependentsOf returns every derived name that transitively depends on
// name, in topological order, so recomputation never reads a stale value.
func (g *StateGraph) DependentsOf(name string) []string {
	affected := map[string]bool{name: true}
	var out []string
	for _, dn := range g.DerivedOrder {
		d := g.Derived[dn]
		for _, dep := range d.Deps {
			if affected[dep] {
				affected[dn] = true
				out = append(out, dn)
				break
			}
		}
	}
	return out
}

// Handler is one compiled named function.
type Handler struct {
	Name   string
	Params []string
	Body   []Stmt
}

// Observer wires one node field to a handler sub.
type Observer struct {
	NodeID  string
	Field   string
	Handler string
}

// Binding sets one dynamic node property from a state expression whenever
// any of Deps is dirty.
type Binding struct {
	NodeID string
	Prop   string
	Expr   string
	Deps   []string
}

// ItemComponent is the synthesized component for one {#each} site.
type ItemComponent struct {
	*Component
	// ItemVar is the loop variable name; it becomes the row's state entry.
	ItemVar string
	Width   float64
	Height  float64
}

// Stmt is one translated handler statement.
type Stmt interface{ irStmt() }

// Assign writes Expr to Target. StateVar names the mutated state variable
// when Target is state; the script emitter appends the dirty-flag set and
// dependent recomputation after every such assignment.
type Assign struct {
	Target   string
	StateVar string
	Expr     string
}

type IfBranch struct {
	Cond string
	Body []Stmt
}

type If struct {
	Branches []IfBranch
	Else     []Stmt
}

type While struct {
	Cond string
	Body []Stmt
}

type ForEach struct {
	Var      string
	Iterable string
	Body     []Stmt
}

type Return struct {
	Expr string
}

type Block struct {
	Body []Stmt
}

func (*Assign) irStmt()  {}
func (*If) irStmt()      {}
func (*While) irStmt()   {}
func (*ForEach) irStmt() {}
func (*Return) irStmt()  {}
func (*Block) irStmt()   {}
