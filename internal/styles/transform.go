package styles

import (
	"math"
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

// Transform is the accumulated result of a CSS transform list.
// Translations sum; for rotate and scale the last function wins, matching
// how the fixed-coordinate target can represent them.
type Transform struct {
	TranslateX float64
	TranslateY float64
	// RotationRad is the rotation in radians (SceneGraph convention).
	RotationRad *float64
	ScaleX      *float64
	ScaleY      *float64
}

// HasTranslation reports whether any translate accumulated.
func (t *Transform) HasTranslation() bool {
	return t.TranslateX != 0 || t.TranslateY != 0
}

var transformFuncRe = regexp.MustCompile(`([a-zA-Z]+)\(([^)]*)\)`)

// ParseTransform evaluates a transform function list left to right.
// Unknown functions are skipped and reported back to the caller by name.
func ParseTransform(value string) (*Transform, []string) {
	out := &Transform{}
	var unknown []string
	for _, m := range transformFuncRe.FindAllStringSubmatch(value, -1) {
		name := strings.ToLower(m[1])
		args := splitArgs(m[2])
		switch name {
		case "translate":
			if len(args) >= 1 {
				out.TranslateX += lengthArg(args[0])
			}
			if len(args) >= 2 {
				out.TranslateY += lengthArg(args[1])
			}
		case "translatex":
			if len(args) >= 1 {
				out.TranslateX += lengthArg(args[0])
			}
		case "translatey":
			if len(args) >= 1 {
				out.TranslateY += lengthArg(args[0])
			}
		case "rotate":
			if len(args) >= 1 {
				rad := angleArg(args[0])
				out.RotationRad = &rad
			}
		case "scale":
			if len(args) >= 1 {
				sx := numberArg(args[0])
				sy := sx
				if len(args) >= 2 {
					sy = numberArg(args[1])
				}
				out.ScaleX, out.ScaleY = &sx, &sy
			}
		default:
			unknown = append(unknown, name)
		}
	}
	return out, unknown
}

func splitArgs(s string) []string {
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func lengthArg(s string) float64 {
	if v := ResolveLength(s, "x", LayoutContext{}); v != nil {
		return *v
	}
	return 0
}

func numberArg(s string) float64 {
	n, err := cast.ToFloat64E(s)
	if err != nil {
		return 1
	}
	return n
}

// angleArg converts a CSS angle to radians. Bare numbers are degrees.
func angleArg(s string) float64 {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case strings.HasSuffix(s, "rad"):
		return numberArg(strings.TrimSuffix(s, "rad"))
	case strings.HasSuffix(s, "deg"):
		return numberArg(strings.TrimSuffix(s, "deg")) * math.Pi / 180
	default:
		return numberArg(s) * math.Pi / 180
	}
}
