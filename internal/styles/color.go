package styles

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cast"
)

var rgbFuncRe = regexp.MustCompile(`^rgba?\(\s*([^)]*)\)$`)

// The CSS named colors the dialect supports. Values are RRGGBB.
var namedColors = map[string]string{
	"black":       "000000",
	"silver":      "c0c0c0",
	"gray":        "808080",
	"grey":        "808080",
	"white":       "ffffff",
	"maroon":      "800000",
	"red":         "ff0000",
	"purple":      "800080",
	"fuchsia":     "ff00ff",
	"magenta":     "ff00ff",
	"green":       "008000",
	"lime":        "00ff00",
	"olive":       "808000",
	"yellow":      "ffff00",
	"navy":        "000080",
	"blue":        "0000ff",
	"teal":        "008080",
	"aqua":        "00ffff",
	"cyan":        "00ffff",
	"orange":      "ffa500",
	"transparent": "00000000",
}

// CSSColorToRokuHex converts a CSS color to the target's 0xRRGGBBAA form.
// Channels clamp to [0,255]; alpha clamps to [0,1] before scaling and
// rounds half-up, so rgba(255,0,0,0.5) is 0xff000080.
func CSSColorToRokuHex(value string) (string, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return "", false
	}

	// Already in target form.
	if strings.HasPrefix(v, "0x") {
		hex := v[2:]
		switch len(hex) {
		case 6:
			return "0x" + hex + "ff", validHex(hex)
		case 8:
			return "0x" + hex, validHex(hex)
		}
		return "", false
	}

	if named, ok := namedColors[v]; ok {
		if len(named) == 6 {
			named += "ff"
		}
		return "0x" + named, true
	}

	if strings.HasPrefix(v, "#") {
		return hashColor(v[1:])
	}

	if m := rgbFuncRe.FindStringSubmatch(v); m != nil {
		return rgbFuncColor(m[1])
	}

	return "", false
}

func validHex(s string) bool {
	_, err := strconv.ParseUint(s, 16, 64)
	return err == nil
}

func hashColor(hex string) (string, bool) {
	switch len(hex) {
	case 3, 4: // #rgb / #rgba shorthand doubles each digit
		var expanded strings.Builder
		for _, c := range hex {
			expanded.WriteRune(c)
			expanded.WriteRune(c)
		}
		hex = expanded.String()
	case 6, 8:
	default:
		return "", false
	}
	if !validHex(hex) {
		return "", false
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	return "0x" + hex, true
}

func rgbFuncColor(args string) (string, bool) {
	parts := strings.Split(args, ",")
	if len(parts) != 3 && len(parts) != 4 {
		return "", false
	}
	var channels [3]int
	for i := 0; i < 3; i++ {
		n, err := cast.ToFloat64E(strings.TrimSpace(parts[i]))
		if err != nil {
			return "", false
		}
		channels[i] = clampChannel(n)
	}
	alpha := 255
	if len(parts) == 4 {
		a, err := cast.ToFloat64E(strings.TrimSpace(parts[3]))
		if err != nil {
			return "", false
		}
		a = math.Max(0, math.Min(1, a))
		// Round half-up; 0.5 maps to 128, not banker's 127.
		alpha = int(math.Floor(a*255 + 0.5))
	}
	return fmt.Sprintf("0x%02x%02x%02x%02x", channels[0], channels[1], channels[2], alpha), true
}

func clampChannel(n float64) int {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return int(math.Floor(n + 0.5))
}
