package ir

import (
	"strings"

	"github.com/spf13/cast"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
	"github.com/aryamurray/roku-svelte-sub001/internal/diag"
	"github.com/aryamurray/roku-svelte-sub001/internal/styles"
)

// Properties the layout resolver consumes. margin is kept so the resolver
// can warn about it on flex items.
var flexProps = map[string]bool{
	"display":         true,
	"flex-direction":  true,
	"justify-content": true,
	"align-items":     true,
	"align-self":      true,
	"flex":            true,
	"flex-grow":       true,
	"gap":             true,
	"row-gap":         true,
	"column-gap":      true,
	"padding":         true,
	"padding-top":     true,
	"padding-right":   true,
	"padding-bottom":  true,
	"padding-left":    true,
	"margin":          true,
	"margin-top":      true,
	"margin-right":    true,
	"margin-bottom":   true,
	"margin-left":     true,
}

// text-align maps straight onto Label horizontal alignment.
var horizAlign = map[string]string{
	"left":   "left",
	"center": "center",
	"right":  "right",
}

// applyStyle resolves the element's inline style into static node
// properties and the flex side-map. Unsupported declarations degrade to
// warnings; styling never fails a compile.
func (b *builder) applyStyle(node *Node, elem *ast.Element, ctx styles.LayoutContext) {
	raw := strings.TrimSpace(elem.StyleRaw)
	if raw == "" {
		return
	}
	for _, decl := range strings.Split(raw, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		name, value, found := strings.Cut(decl, ":")
		if !found {
			continue
		}
		name = strings.ToLower(strings.TrimSpace(name))
		value = strings.TrimSpace(value)
		b.applyDecl(node, name, value, elem.Start, ctx)
	}
}

func (b *builder) applyDecl(node *Node, name, value string, at int, ctx styles.LayoutContext) {
	if flexProps[name] {
		if name == "display" && value == "none" {
			node.Props.Set("visible", "false", false)
			return
		}
		b.setFlex(node, name, value)
		return
	}
	switch name {
	case "width", "height", "min-width", "min-height", "max-width", "max-height":
		// min/max have no target equivalent outside the flex pass.
		b.setFlex(node, name, value)
		if name == "width" || name == "height" {
			if v := styles.ResolveLength(value, name, ctx); v != nil {
				node.Props.Set(name, formatNumber(*v), false)
			}
		}
	case "top", "left", "x", "y":
		if v := styles.ResolveLength(value, name, ctx); v != nil {
			b.mergeTranslation(node, name == "left" || name == "x", *v)
		} else {
			b.warnAt(diag.UnsupportedCSSProperty, at, map[string]string{"property": name})
		}
	case "background-color", "color":
		hex, ok := styles.CSSColorToRokuHex(value)
		if !ok {
			b.warnAt(diag.UnsupportedCSSProperty, at, map[string]string{"property": name})
			return
		}
		node.Props.Set("color", hex, false)
	case "opacity":
		if v, err := cast.ToFloat64E(value); err == nil {
			node.Props.Set("opacity", formatNumber(v), false)
		} else {
			b.warnAt(diag.UnsupportedCSSProperty, at, map[string]string{"property": name})
		}
	case "visibility":
		if value == "hidden" {
			node.Props.Set("visible", "false", false)
		}
	case "text-align":
		if align, ok := horizAlign[value]; ok && node.Type == "Label" {
			node.Props.Set("horizAlign", align, false)
		} else {
			b.warnAt(diag.UnsupportedCSSProperty, at, map[string]string{"property": name})
		}
	case "font-weight":
		if font, ok := styles.MapFontWeight(value); ok {
			node.Props.Set("font", font, false)
		}
	case "transform":
		b.applyTransform(node, value, at)
	case "transition", "animation":
		b.warnAt(diag.UnsupportedTransition, at, map[string]string{"name": value})
	default:
		b.warnAt(diag.UnsupportedCSSProperty, at, map[string]string{"property": name})
	}
}

func (b *builder) setFlex(node *Node, name, value string) {
	if node.Flex == nil {
		node.Flex = make(map[string]string)
	}
	node.Flex[name] = value
}

// mergeTranslation folds a single-axis offset into the translation prop.
func (b *builder) mergeTranslation(node *Node, isX bool, v float64) {
	x, y := 0.0, 0.0
	if p, ok := node.Props.Get("translation"); ok {
		x, y = parseVec2(p.Value)
	}
	if isX {
		x = v
	} else {
		y = v
	}
	node.Props.Set("translation", vec2(x, y), false)
}

func (b *builder) applyTransform(node *Node, value string, at int) {
	tr, unknown := styles.ParseTransform(value)
	for _, fn := range unknown {
		b.warnAt(diag.UnsupportedCSSProperty, at,
			map[string]string{"property": "transform: " + fn})
	}
	if tr.TranslateX != 0 || tr.TranslateY != 0 {
		node.Props.Set("translation", vec2(tr.TranslateX, tr.TranslateY), false)
	}
	if tr.RotationRad != nil {
		node.Props.Set("rotation", formatNumber(*tr.RotationRad), false)
	}
	if tr.ScaleX != nil || tr.ScaleY != nil {
		sx, sy := 1.0, 1.0
		if tr.ScaleX != nil {
			sx = *tr.ScaleX
		}
		if tr.ScaleY != nil {
			sy = *tr.ScaleY
		}
		node.Props.Set("scale", vec2(sx, sy), false)
	}
}

func vec2(x, y float64) string {
	return "[" + formatNumber(x) + ", " + formatNumber(y) + "]"
}

func parseVec2(s string) (x, y float64) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	parts := strings.Split(s, ",")
	if len(parts) == 2 {
		x = cast.ToFloat64(strings.TrimSpace(parts[0]))
		y = cast.ToFloat64(strings.TrimSpace(parts[1]))
	}
	return x, y
}
