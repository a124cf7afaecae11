package emit

import (
	"strings"

	"github.com/aryamurray/roku-svelte-sub001/internal/ir"
)

// BRS renders the component script: state and dirty-flag setup, node handle
// caching, event wiring, derived computation subs, handlers and the binding
// application sub.
func BRS(comp *ir.Component) string {
	w := &brsWriter{}
	w.writeInit(comp, "")
	for _, name := range comp.State.DerivedOrder {
		w.writeCompute(comp, comp.State.Derived[name])
	}
	for _, h := range comp.Handlers {
		w.writeHandler(comp, h)
	}
	for _, f := range comp.Fields {
		w.writeFieldGlue(comp, f, f.Name)
	}
	w.writeApplyBindings(comp)
	return w.String()
}

// ItemBRS renders the script of one each-row component. The row's single
// state entry mirrors the itemContent field; handlers observed by row nodes
// compile into the row script, same as in a full component.
func ItemBRS(item *ir.ItemComponent) string {
	w := &brsWriter{}
	w.writeInit(item.Component, item.ItemVar)
	for _, name := range item.State.DerivedOrder {
		w.writeCompute(item.Component, item.State.Derived[name])
	}
	for _, h := range item.Handlers {
		w.writeHandler(item.Component, h)
	}
	for _, f := range item.Fields {
		w.writeItemGlue(item, f)
	}
	w.writeApplyBindings(item.Component)
	return w.String()
}

type brsWriter struct {
	b strings.Builder
}

func (w *brsWriter) String() string { return w.b.String() }

func (w *brsWriter) line(depth int, s string) {
	w.b.WriteString(strings.Repeat("    ", depth))
	w.b.WriteString(s)
	w.b.WriteString("\n")
}

func (w *brsWriter) blank() { w.b.WriteString("\n") }

// nodeIDs collects every node referenced by a binding or observer, in
// first-use order, so init caches exactly the handles the script touches.
func nodeIDs(comp *ir.Component) []string {
	var ids []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	for _, bind := range comp.Bindings {
		add(bind.NodeID)
	}
	for _, obs := range comp.Observers {
		add(obs.NodeID)
	}
	return ids
}

func (w *brsWriter) writeInit(comp *ir.Component, itemVar string) {
	w.line(0, "sub init()")
	w.line(1, "m.state = {}")
	for _, name := range comp.State.Order {
		w.line(1, "m.state."+name+" = "+comp.State.Initial[name])
	}
	w.line(1, "m.dirty = {}")
	for _, name := range comp.State.Order {
		w.line(1, "m.dirty."+name+" = false")
	}

	ids := nodeIDs(comp)
	if len(ids) > 0 {
		w.line(1, "m.nodes = {}")
		for _, id := range ids {
			w.line(1, "m.nodes."+id+` = m.top.findNode("`+id+`")`)
		}
	}
	for _, obs := range comp.Observers {
		w.line(1, "m.nodes."+obs.NodeID+`.observeField("`+obs.Field+`", "`+obs.Handler+`")`)
	}
	for _, name := range comp.State.DerivedOrder {
		w.line(1, "rsv_compute_"+name+"()")
	}
	if itemVar == "" && len(comp.Bindings) > 0 {
		// First paint: everything is dirty.
		for _, name := range comp.State.Order {
			w.line(1, "m.dirty."+name+" = true")
		}
		w.line(1, "rsv_applyBindings()")
	}
	w.line(0, "end sub")
}

func (w *brsWriter) writeCompute(comp *ir.Component, d *ir.Derived) {
	w.blank()
	w.line(0, "sub rsv_compute_"+d.Name+"()")
	w.line(1, "m.state."+d.Name+" = "+d.Expr)
	w.line(1, "m.dirty."+d.Name+" = true")
	w.line(0, "end sub")
}

// hasValueReturn decides sub versus function for a handler.
func hasValueReturn(body []ir.Stmt) bool {
	for _, s := range body {
		switch stmt := s.(type) {
		case *ir.Return:
			if stmt.Expr != "" {
				return true
			}
		case *ir.If:
			for _, br := range stmt.Branches {
				if hasValueReturn(br.Body) {
					return true
				}
			}
			if hasValueReturn(stmt.Else) {
				return true
			}
		case *ir.While:
			if hasValueReturn(stmt.Body) {
				return true
			}
		case *ir.ForEach:
			if hasValueReturn(stmt.Body) {
				return true
			}
		case *ir.Block:
			if hasValueReturn(stmt.Body) {
				return true
			}
		}
	}
	return false
}

func (w *brsWriter) writeHandler(comp *ir.Component, h *ir.Handler) {
	w.blank()
	params := strings.Join(h.Params, ", ")
	if hasValueReturn(h.Body) {
		w.line(0, "function "+h.Name+"("+params+") as dynamic")
	} else {
		w.line(0, "sub "+h.Name+"("+params+")")
	}
	w.writeStmts(comp, h.Body, 1)
	w.line(1, "rsv_applyBindings()")
	if hasValueReturn(h.Body) {
		w.line(0, "end function")
	} else {
		w.line(0, "end sub")
	}
}

func (w *brsWriter) writeStmts(comp *ir.Component, stmts []ir.Stmt, depth int) {
	for _, s := range stmts {
		switch stmt := s.(type) {
		case *ir.Assign:
			w.line(depth, stmt.Target+" = "+stmt.Expr)
			if stmt.StateVar != "" {
				w.line(depth, "m.dirty."+stmt.StateVar+" = true")
				for _, dep := range comp.State.DependentsOf(stmt.StateVar) {
					w.line(depth, "rsv_compute_"+dep+"()")
				}
			}
		case *ir.If:
			for i, br := range stmt.Branches {
				if i == 0 {
					w.line(depth, "if "+br.Cond+" then")
				} else {
					w.line(depth, "else if "+br.Cond+" then")
				}
				w.writeStmts(comp, br.Body, depth+1)
			}
			if len(stmt.Else) > 0 {
				w.line(depth, "else")
				w.writeStmts(comp, stmt.Else, depth+1)
			}
			w.line(depth, "end if")
		case *ir.While:
			w.line(depth, "while "+stmt.Cond)
			w.writeStmts(comp, stmt.Body, depth+1)
			w.line(depth, "end while")
		case *ir.ForEach:
			w.line(depth, "for each "+stmt.Var+" in "+stmt.Iterable)
			w.writeStmts(comp, stmt.Body, depth+1)
			w.line(depth, "end for")
		case *ir.Return:
			if stmt.Expr == "" {
				w.line(depth, "return")
			} else {
				w.line(depth, "return "+stmt.Expr)
			}
		case *ir.Block:
			w.writeStmts(comp, stmt.Body, depth)
		}
	}
}

// writeFieldGlue mirrors an interface field into state and re-enters the
// dirty/recompute/apply chain.
func (w *brsWriter) writeFieldGlue(comp *ir.Component, f ir.InterfaceField, stateVar string) {
	w.blank()
	w.line(0, "sub "+f.OnChange+"()")
	w.line(1, "m.state."+stateVar+" = m.top."+f.Name)
	w.line(1, "m.dirty."+stateVar+" = true")
	for _, dep := range comp.State.DependentsOf(stateVar) {
		w.line(1, "rsv_compute_"+dep+"()")
	}
	w.line(1, "rsv_applyBindings()")
	w.line(0, "end sub")
}

// writeItemGlue copies the row value out of the content node.
func (w *brsWriter) writeItemGlue(item *ir.ItemComponent, f ir.InterfaceField) {
	w.blank()
	w.line(0, "sub "+f.OnChange+"()")
	w.line(1, "m.state."+item.ItemVar+" = m.top."+f.Name+".value")
	w.line(1, "m.dirty."+item.ItemVar+" = true")
	for _, dep := range item.State.DependentsOf(item.ItemVar) {
		w.line(1, "rsv_compute_"+dep+"()")
	}
	w.line(1, "rsv_applyBindings()")
	w.line(0, "end sub")
}

// writeApplyBindings copies dirty state into node properties and clears
// every flag.
func (w *brsWriter) writeApplyBindings(comp *ir.Component) {
	if len(comp.Bindings) == 0 && len(comp.Fields) == 0 && len(comp.Handlers) == 0 {
		return
	}
	w.blank()
	w.line(0, "sub rsv_applyBindings()")
	for _, bind := range comp.Bindings {
		guards := make([]string, 0, len(bind.Deps))
		for _, dep := range bind.Deps {
			guards = append(guards, "m.dirty."+dep)
		}
		if len(guards) > 0 {
			w.line(1, "if "+strings.Join(guards, " or ")+" then")
			w.line(2, "m.nodes."+bind.NodeID+"."+bind.Prop+" = "+bind.Expr)
			w.line(1, "end if")
		} else {
			w.line(1, "m.nodes."+bind.NodeID+"."+bind.Prop+" = "+bind.Expr)
		}
	}
	for _, name := range comp.State.Order {
		w.line(1, "m.dirty."+name+" = false")
	}
	w.line(0, "end sub")
}
