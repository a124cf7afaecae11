// Package styles resolves CSS-like declaration values into the target's
// value model: lengths to pixel numbers, colors to 0xRRGGBBAA hex,
// transforms to translation/rotation/scale, font weights to system fonts.
package styles

import (
	"strings"

	"github.com/spf13/cast"
)

// LayoutContext supplies the bases percentage and viewport units resolve
// against. A zero base makes the unit unresolvable.
type LayoutContext struct {
	ParentWidth  float64
	ParentHeight float64
	CanvasWidth  float64
	CanvasHeight float64
}

// Root font size used for rem/em. The target has no font cascade, so both
// units share the fixed browser default.
const remPixels = 16

// ResolveLength resolves a CSS length to pixels. It returns nil for values
// that cannot be resolved statically (auto, calc(), percentages or viewport
// units without a usable base); callers omit the property in that case.
func ResolveLength(value, property string, ctx LayoutContext) *float64 {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" || v == "auto" || strings.Contains(v, "calc(") {
		return nil
	}

	switch {
	case strings.HasSuffix(v, "%"):
		pct, err := cast.ToFloat64E(strings.TrimSuffix(v, "%"))
		if err != nil {
			return nil
		}
		base := percentageBase(property, ctx)
		if base == 0 {
			return nil
		}
		return ptr(base * pct / 100)
	case strings.HasSuffix(v, "px"):
		return numeric(strings.TrimSuffix(v, "px"), 1)
	case strings.HasSuffix(v, "rem"):
		return numeric(strings.TrimSuffix(v, "rem"), remPixels)
	case strings.HasSuffix(v, "em"):
		return numeric(strings.TrimSuffix(v, "em"), remPixels)
	case strings.HasSuffix(v, "vh"):
		if ctx.CanvasHeight == 0 {
			return nil
		}
		return numeric(strings.TrimSuffix(v, "vh"), ctx.CanvasHeight/100)
	case strings.HasSuffix(v, "vw"):
		if ctx.CanvasWidth == 0 {
			return nil
		}
		return numeric(strings.TrimSuffix(v, "vw"), ctx.CanvasWidth/100)
	default:
		return numeric(v, 1)
	}
}

func numeric(s string, scale float64) *float64 {
	n, err := cast.ToFloat64E(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return ptr(n * scale)
}

// percentageBase picks the axis base for a percentage by property name.
func percentageBase(property string, ctx LayoutContext) float64 {
	switch strings.ToLower(property) {
	case "height", "min-height", "max-height", "top", "bottom", "y",
		"row-gap", "padding-top", "padding-bottom":
		return ctx.ParentHeight
	default:
		return ctx.ParentWidth
	}
}

func ptr(f float64) *float64 { return &f }
