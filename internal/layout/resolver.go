// Package layout resolves flex container styles into absolute node
// positions at compile time. The pass mutates the IR in place through a
// two-phase side table: phase one computes placements for every container
// (parents first, so nested containers see the size their parent assigned),
// phase two merges the placements and strips all layout styles from the
// tree. A component without flex containers never touches the engine.
package layout

import (
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/spf13/cast"

	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
	"github.com/aryamurray/roku-svelte-sub001/internal/ir"
	"github.com/aryamurray/roku-svelte-sub001/internal/layout/flexbox"
	"github.com/aryamurray/roku-svelte-sub001/internal/styles"
)

// The engine exists once per process and is created on first use; compiles
// of flex-free components never pay for it.
var (
	engineReady atomic.Bool
	engine      = sync.OnceValue(func() *layoutEngine {
		engineReady.Store(true)
		return &layoutEngine{pool: sync.Pool{New: func() any { return new(flexbox.Node) }}}
	})
)

type layoutEngine struct {
	pool sync.Pool
}

func (e *layoutEngine) get() *flexbox.Node {
	n := e.pool.Get().(*flexbox.Node)
	n.Reset()
	return n
}

func (e *layoutEngine) release(items []*flexbox.Node) {
	for _, n := range items {
		e.pool.Put(n)
	}
}

// placement is one side-table entry: the position and sizes the engine
// assigned to a node.
type placement struct {
	x, y float64
	w, h float64
	setW bool
	setH bool
}

// Resolve runs the layout pass over a component and its item components.
// It returns the warnings the pass produced; the IR is mutated in place.
func Resolve(comp *ir.Component, filename string, canvasW, canvasH float64) []*diag.Warning {
	r := &resolver{
		filename: filename,
		side:     make(map[*ir.Node]*placement),
	}
	r.resolveTree(comp.Nodes, canvasW, canvasH)
	for _, item := range comp.Items {
		r.resolveTree(item.Nodes, item.Width, item.Height)
	}
	return r.warns
}

type resolver struct {
	filename string
	warns    []*diag.Warning
	side     map[*ir.Node]*placement
}

type containerEntry struct {
	node *ir.Node
	// Fallback dims when the container has neither explicit nor assigned
	// size.
	parentW float64
	parentH float64
}

func (r *resolver) resolveTree(nodes []*ir.Node, rootW, rootH float64) {
	var containers []containerEntry
	var collect func(nodes []*ir.Node, pw, ph float64)
	collect = func(nodes []*ir.Node, pw, ph float64) {
		for _, n := range nodes {
			if n.IsFlexContainer() {
				containers = append(containers, containerEntry{node: n, parentW: pw, parentH: ph})
			}
			cw, ch := r.staticSize(n, pw, ph)
			collect(n.Children, cw, ch)
		}
	}
	collect(nodes, rootW, rootH)
	if len(containers) == 0 {
		return
	}

	eng := engine()
	for _, entry := range containers {
		r.layoutContainer(eng, entry)
	}
	r.merge(nodes)
	r.strip(nodes)
}

// staticSize is a node's size as known before layout: explicit props, else
// inherited from the parent.
func (r *resolver) staticSize(n *ir.Node, pw, ph float64) (w, h float64) {
	w, h = pw, ph
	if p, ok := n.Props.Get("width"); ok && !p.Dynamic {
		w = cast.ToFloat64(p.Value)
	}
	if p, ok := n.Props.Get("height"); ok && !p.Dynamic {
		h = cast.ToFloat64(p.Value)
	}
	return w, h
}

// containerSize resolves a container's own dimensions: explicit size, then
// a parent-assigned placement, then percentages, then fill-parent. A size
// assigned by an outer flex container is authoritative over everything but
// an explicit one.
func (r *resolver) containerSize(entry containerEntry) (w, h float64) {
	n := entry.node
	w, h = entry.parentW, entry.parentH
	ctx := styles.LayoutContext{ParentWidth: entry.parentW, ParentHeight: entry.parentH}
	if v := styles.ResolveLength(n.Flex["width"], "width", ctx); v != nil {
		w = *v
	}
	if v := styles.ResolveLength(n.Flex["height"], "height", ctx); v != nil {
		h = *v
	}
	if pl, ok := r.side[n]; ok {
		if pl.setW {
			w = pl.w
		}
		if pl.setH {
			h = pl.h
		}
	}
	if p, ok := n.Props.Get("width"); ok && !p.Dynamic {
		w = cast.ToFloat64(p.Value)
	}
	if p, ok := n.Props.Get("height"); ok && !p.Dynamic {
		h = cast.ToFloat64(p.Value)
	}
	return w, h
}

var justifyMap = map[string]flexbox.Justify{
	"flex-start":    flexbox.JustifyStart,
	"start":         flexbox.JustifyStart,
	"center":        flexbox.JustifyCenter,
	"flex-end":      flexbox.JustifyEnd,
	"end":           flexbox.JustifyEnd,
	"space-between": flexbox.JustifySpaceBetween,
	"space-around":  flexbox.JustifySpaceAround,
}

var alignMap = map[string]flexbox.Align{
	"flex-start": flexbox.AlignStart,
	"start":      flexbox.AlignStart,
	"center":     flexbox.AlignCenter,
	"flex-end":   flexbox.AlignEnd,
	"end":        flexbox.AlignEnd,
	"stretch":    flexbox.AlignStretch,
}

func (r *resolver) layoutContainer(eng *layoutEngine, entry containerEntry) {
	node := entry.node
	w, h := r.containerSize(entry)
	ctx := styles.LayoutContext{ParentWidth: w, ParentHeight: h}

	c := &flexbox.Container{Width: w, Height: h}
	if node.Flex["flex-direction"] == "column" {
		c.Direction = flexbox.Column
	}
	if j, ok := justifyMap[node.Flex["justify-content"]]; ok {
		c.Justify = j
	}
	if a, ok := alignMap[node.Flex["align-items"]]; ok {
		c.Align = a
	}
	c.Gap = r.gap(node, ctx)
	c.PaddingTop, c.PaddingRight, c.PaddingBottom, c.PaddingLeft = r.padding(node, ctx)

	items := make([]*flexbox.Node, 0, len(node.Children))
	for _, child := range node.Children {
		items = append(items, r.flexItem(eng, child, ctx))
	}
	c.Items = items
	c.Layout()

	for i, child := range node.Children {
		item := items[i]
		pl := &placement{x: item.X, y: item.Y, w: item.ResolvedWidth, h: item.ResolvedHeight}
		pl.setW = !child.Props.Has("width") && item.ResolvedWidth > 0
		pl.setH = !child.Props.Has("height") && item.ResolvedHeight > 0
		r.side[child] = pl
	}
	eng.release(items)
}

// gap picks the main-axis gap: the per-axis property wins over the
// shorthand.
func (r *resolver) gap(node *ir.Node, ctx styles.LayoutContext) float64 {
	axisProp := "column-gap"
	if node.Flex["flex-direction"] == "column" {
		axisProp = "row-gap"
	}
	if v := styles.ResolveLength(node.Flex[axisProp], axisProp, ctx); v != nil {
		return *v
	}
	if v := styles.ResolveLength(node.Flex["gap"], "gap", ctx); v != nil {
		return *v
	}
	return 0
}

// padding resolves the shorthand and the per-side properties.
func (r *resolver) padding(node *ir.Node, ctx styles.LayoutContext) (top, right, bottom, left float64) {
	if shorthand, ok := node.Flex["padding"]; ok {
		var vals []float64
		for _, part := range strings.Fields(shorthand) {
			if v := styles.ResolveLength(part, "padding", ctx); v != nil {
				vals = append(vals, *v)
			}
		}
		switch len(vals) {
		case 1:
			top, right, bottom, left = vals[0], vals[0], vals[0], vals[0]
		case 2:
			top, right, bottom, left = vals[0], vals[1], vals[0], vals[1]
		case 4:
			top, right, bottom, left = vals[0], vals[1], vals[2], vals[3]
		}
	}
	sides := []struct {
		prop string
		dst  *float64
	}{
		{"padding-top", &top},
		{"padding-right", &right},
		{"padding-bottom", &bottom},
		{"padding-left", &left},
	}
	for _, s := range sides {
		if v := styles.ResolveLength(node.Flex[s.prop], s.prop, ctx); v != nil {
			*s.dst = *v
		}
	}
	return top, right, bottom, left
}

func (r *resolver) flexItem(eng *layoutEngine, child *ir.Node, ctx styles.LayoutContext) *flexbox.Node {
	item := eng.get()

	if p, ok := child.Props.Get("width"); ok && !p.Dynamic {
		item.Width = cast.ToFloat64(p.Value)
		item.HasWidth = true
	} else if v := styles.ResolveLength(child.Flex["width"], "width", ctx); v != nil {
		item.Width = *v
		item.HasWidth = true
	}
	if p, ok := child.Props.Get("height"); ok && !p.Dynamic {
		item.Height = cast.ToFloat64(p.Value)
		item.HasHeight = true
	} else if v := styles.ResolveLength(child.Flex["height"], "height", ctx); v != nil {
		item.Height = *v
		item.HasHeight = true
	}

	if child.Flex != nil {
		if flex := child.Flex["flex"]; flex != "" {
			item.Grow = cast.ToFloat64(strings.Fields(flex)[0])
		}
		if grow := child.Flex["flex-grow"]; grow != "" {
			item.Grow = cast.ToFloat64(grow)
		}
		if a, ok := alignMap[child.Flex["align-self"]]; ok {
			item.AlignSelf = a
			item.HasSelf = true
		}
		for prop := range child.Flex {
			if strings.HasPrefix(prop, "margin") {
				loc := child.Loc
				if loc.File == "" {
					loc.File = r.filename
				}
				r.warns = append(r.warns, diag.NewWarning(diag.FlexMarginIgnored, loc, nil))
				break
			}
		}
	}
	return item
}

// merge copies every placement into the IR. Position becomes a translation
// prop only when non-zero; sizes are written only where the engine decided
// them.
func (r *resolver) merge(nodes []*ir.Node) {
	for _, n := range nodes {
		if pl, ok := r.side[n]; ok {
			if pl.x != 0 || pl.y != 0 {
				n.Props.Set("translation", vec2(pl.x, pl.y), false)
			}
			if pl.setW {
				n.Props.Set("width", formatNumber(pl.w), false)
			}
			if pl.setH {
				n.Props.Set("height", formatNumber(pl.h), false)
			}
		}
		r.merge(n.Children)
	}
}

func vec2(x, y float64) string {
	return "[" + formatNumber(x) + ", " + formatNumber(y) + "]"
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// strip removes layout styles so emitters never see flex semantics.
func (r *resolver) strip(nodes []*ir.Node) {
	for _, n := range nodes {
		n.Flex = nil
		r.strip(n.Children)
	}
}
