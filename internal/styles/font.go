package styles

import (
	"strings"

	"github.com/spf13/cast"
)

// System font tokens for the three weights the target can express.
const (
	fontBold    = "font:MediumBoldSystemFont"
	fontRegular = "font:MediumSystemFont"
	fontLight   = "font:SmallestSystemFont"
)

// MapFontWeight maps a CSS font-weight to a system font token.
// Weights >= 700 are bold, 400/normal is regular, <= 300 is light;
// anything in between has no mapping and the font is left unresolved.
func MapFontWeight(value string) (string, bool) {
	v := strings.TrimSpace(strings.ToLower(value))
	switch v {
	case "bold", "bolder":
		return fontBold, true
	case "normal":
		return fontRegular, true
	case "light", "lighter":
		return fontLight, true
	}
	weight, err := cast.ToIntE(v)
	if err != nil {
		return "", false
	}
	switch {
	case weight >= 700:
		return fontBold, true
	case weight == 400:
		return fontRegular, true
	case weight <= 300 && weight > 0:
		return fontLight, true
	default:
		return "", false
	}
}
