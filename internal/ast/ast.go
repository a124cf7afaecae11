// Package ast defines the typed syntax tree the parser produces and the
// rest of the pipeline consumes. Node kinds form a closed set; consumers
// switch over concrete types instead of comparing type-name strings.
package ast

// Component is the root of one parsed source file.
type Component struct {
	Name     string
	Instance *Script
	Fragment *Fragment
}

// Script is the parsed <script> block.
type Script struct {
	// Offset is the character offset of the script body in the source.
	Offset int
	// Text is the raw script body; validation rules token-scan it.
	Text      string
	Imports   []*ImportDecl
	Props     []*PropDecl
	Vars      []*VarDecl
	Reactives []*ReactiveDecl
	Functions []*FuncDecl
	// Bad holds top-level statements outside the dialect, kept so the
	// whole file is diagnosed in one pass.
	Bad []*BadStmt
}

// RawExpr is an expression captured as text. Expressions are parsed lazily
// by the IR builder (with expr-lang), so validation can reject whole
// constructs before any expression-level parsing happens.
type RawExpr struct {
	Text  string
	Start int
}

// ImportDecl is `import Name from "path";`.
type ImportDecl struct {
	Name  string
	Path  string
	Start int
}

// PropDecl is `export let name = init;`.
type PropDecl struct {
	Name  string
	Init  *RawExpr // nil when no default is given
	Start int
}

// VarDecl is `let name = init;`.
type VarDecl struct {
	Name  string
	Init  *RawExpr
	Start int
}

// ReactiveDecl is `$: target = expr;`.
type ReactiveDecl struct {
	Target string
	Expr   *RawExpr
	Start  int
}

// FuncDecl is a named `function name(params) { body }`.
type FuncDecl struct {
	Name   string
	Params []string
	Body   []Stmt
	Start  int
}

// Stmt is a statement inside a function body.
type Stmt interface {
	Pos() int
	stmtNode()
}

// AssignStmt is `target = value`, `target += value` or `target -= value`.
// Target is a dotted/indexed access path captured as text.
type AssignStmt struct {
	Target string
	Op     string
	Value  *RawExpr
	Start  int
}

// IfBranch is one `if`/`else if` arm.
type IfBranch struct {
	Cond *RawExpr
	Body []Stmt
}

// IfStmt is an if / else-if chain with an optional else body.
type IfStmt struct {
	Branches []*IfBranch
	Else     []Stmt
	Start    int
}

// WhileStmt is `while (cond) { body }`.
type WhileStmt struct {
	Cond  *RawExpr
	Body  []Stmt
	Start int
}

// ForEachStmt is `for (const v of iterable) { body }`.
type ForEachStmt struct {
	Var      string
	Iterable *RawExpr
	Body     []Stmt
	Start    int
}

// ReturnStmt is `return` with an optional value.
type ReturnStmt struct {
	Value *RawExpr
	Start int
}

// BlockStmt is a bare `{ ... }` scope.
type BlockStmt struct {
	Body  []Stmt
	Start int
}

// BadStmt records a statement the grammar does not cover. The parser keeps
// scanning after one so all problems in a handler surface together; the IR
// builder turns each into an UNSUPPORTED_HANDLER_BODY error.
type BadStmt struct {
	Text  string
	Start int
}

func (s *AssignStmt) Pos() int  { return s.Start }
func (s *IfStmt) Pos() int      { return s.Start }
func (s *WhileStmt) Pos() int   { return s.Start }
func (s *ForEachStmt) Pos() int { return s.Start }
func (s *ReturnStmt) Pos() int  { return s.Start }
func (s *BlockStmt) Pos() int   { return s.Start }
func (s *BadStmt) Pos() int     { return s.Start }

func (*AssignStmt) stmtNode()  {}
func (*IfStmt) stmtNode()      {}
func (*WhileStmt) stmtNode()   {}
func (*ForEachStmt) stmtNode() {}
func (*ReturnStmt) stmtNode()  {}
func (*BlockStmt) stmtNode()   {}
func (*BadStmt) stmtNode()     {}

// Fragment is the parsed template region.
type Fragment struct {
	Nodes []Node
}

// Node is one template node.
type Node interface {
	Pos() int
	fragNode()
}

// Attr is one element attribute. Expr is non-nil for `name={expr}` values.
type Attr struct {
	Name  string
	Value string
	Expr  *RawExpr
	Start int
}

// EventAttr is an `on:event={handler}` directive. Inline marks values that
// are not a bare identifier (arrow functions and the like).
type EventAttr struct {
	Event   string
	Handler string
	Inline  bool
	Start   int
}

// Element is a template element; capitalized tags reference child components.
type Element struct {
	Tag      string
	Attrs    []*Attr
	Events   []*EventAttr
	StyleRaw string
	Children []Node
	Start    int
}

// Text is literal template text.
type Text struct {
	Text  string
	Start int
}

// Mustache is a `{expr}` text interpolation.
type Mustache struct {
	Expr  *RawExpr
	Start int
}

// EachBlock is `{#each expr as item}...{/each}`. Index and Key are captured
// so the IR builder can diagnose them distinctly; supported input has both
// empty.
type EachBlock struct {
	Expr     *RawExpr
	Item     string
	Index    string
	Key      *RawExpr
	Children []Node
	Start    int
}

// AwaitBlock is `{#await ...}`; always rejected by validation.
type AwaitBlock struct {
	Start int
}

// UnknownBlock is any other `{#name ...}` block.
type UnknownBlock struct {
	Name  string
	Start int
}

func (n *Element) Pos() int      { return n.Start }
func (n *Text) Pos() int         { return n.Start }
func (n *Mustache) Pos() int     { return n.Start }
func (n *EachBlock) Pos() int    { return n.Start }
func (n *AwaitBlock) Pos() int   { return n.Start }
func (n *UnknownBlock) Pos() int { return n.Start }

func (*Element) fragNode()      {}
func (*Text) fragNode()         {}
func (*Mustache) fragNode()     {}
func (*EachBlock) fragNode()    {}
func (*AwaitBlock) fragNode()   {}
func (*UnknownBlock) fragNode() {}
