// Package emit renders the resolved IR into the two output artifacts: the
// declarative component XML and the component script. Emitters are pure
// string builders over a read-only IR; running one twice yields identical
// bytes.
package emit

import (
	"strconv"
	"strings"

	"github.com/aryamurray/roku-svelte-sub001/internal/ir"
)

// RuntimeScriptURI is the shared helper library referenced by components
// that need it.
const RuntimeScriptURI = "pkg:/source/rsv-runtime.brs"

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

// XML renders the declarative component file.
func XML(comp *ir.Component) string {
	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"utf-8\"?>\n")
	b.WriteString(`<component name="` + xmlEscaper.Replace(comp.Name) +
		`" extends="` + xmlEscaper.Replace(comp.Extends) + "\">\n")

	if len(comp.Fields) > 0 {
		b.WriteString("  <interface>\n")
		for _, f := range comp.Fields {
			b.WriteString(`    <field id="` + f.Name + `" type="` + f.Type +
				`" onChange="` + f.OnChange + "\" />\n")
		}
		b.WriteString("  </interface>\n")
	}

	b.WriteString(`  <script type="text/brightscript" uri="` + comp.ScriptURI + "\" />\n")
	if comp.RequiresRuntime || comp.RequiresStdlib {
		b.WriteString(`  <script type="text/brightscript" uri="` + RuntimeScriptURI + "\" />\n")
	}

	if len(comp.Nodes) > 0 {
		b.WriteString("  <children>\n")
		for _, n := range comp.Nodes {
			writeNode(&b, n, 2)
		}
		b.WriteString("  </children>\n")
	}
	b.WriteString("</component>\n")
	return b.String()
}

// ItemXML renders one synthesized each-row component. The row markup nests
// under a root wrapper sized to the list's item size, so rows without an
// explicit size still fill their cell.
func ItemXML(item *ir.ItemComponent) string {
	root := &ir.Node{ID: "itemroot", Type: "Group", Props: ir.NewPropList(), Children: item.Nodes}
	if item.Width > 0 {
		root.Props.Set("width", formatSize(item.Width), false)
	}
	if item.Height > 0 {
		root.Props.Set("height", formatSize(item.Height), false)
	}
	wrapped := *item.Component
	wrapped.Nodes = []*ir.Node{root}
	return XML(&wrapped)
}

func formatSize(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeNode(b *strings.Builder, n *ir.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	b.WriteString(indent + "<" + n.Type + ` id="` + xmlEscaper.Replace(n.ID) + `"`)
	for _, p := range n.Props.All() {
		if p.Dynamic {
			continue
		}
		b.WriteString(" " + p.Name + `="` + xmlEscaper.Replace(p.Value) + `"`)
	}
	if n.Focusable {
		b.WriteString(` focusable="true"`)
	}
	if len(n.Children) == 0 {
		b.WriteString(" />\n")
		return
	}
	b.WriteString(">\n")
	for _, child := range n.Children {
		writeNode(b, child, depth+1)
	}
	b.WriteString(indent + "</" + n.Type + ">\n")
}
