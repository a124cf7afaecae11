package ast

// Visitor visits fragment nodes. Enter returning false skips the node's
// children; Exit always runs for a node whose Enter was called.
type Visitor interface {
	Enter(Node) bool
	Exit(Node)
}

// Walk traverses nodes depth-first in document order.
func Walk(nodes []Node, v Visitor) {
	for _, n := range nodes {
		walkNode(n, v)
	}
}

func walkNode(n Node, v Visitor) {
	descend := v.Enter(n)
	if descend {
		switch node := n.(type) {
		case *Element:
			Walk(node.Children, v)
		case *EachBlock:
			Walk(node.Children, v)
		case *Text, *Mustache, *AwaitBlock, *UnknownBlock:
			// leaves
		}
	}
	v.Exit(n)
}

// WalkStmts traverses statement trees depth-first.
func WalkStmts(stmts []Stmt, fn func(Stmt)) {
	for _, s := range stmts {
		fn(s)
		switch stmt := s.(type) {
		case *IfStmt:
			for _, br := range stmt.Branches {
				WalkStmts(br.Body, fn)
			}
			WalkStmts(stmt.Else, fn)
		case *WhileStmt:
			WalkStmts(stmt.Body, fn)
		case *ForEachStmt:
			WalkStmts(stmt.Body, fn)
		case *BlockStmt:
			WalkStmts(stmt.Body, fn)
		}
	}
}

// Inspect is a function-only convenience over Walk.
func Inspect(nodes []Node, fn func(Node) bool) {
	Walk(nodes, inspector(fn))
}

type inspector func(Node) bool

func (f inspector) Enter(n Node) bool { return f(n) }
func (f inspector) Exit(Node)         {}
