package styles

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveLengthPercentage(t *testing.T) {
	ctx := LayoutContext{ParentWidth: 200}
	v := ResolveLength("50%", "width", ctx)
	require.NotNil(t, v)
	assert.Equal(t, 100.0, *v)
}

func TestResolveLengthPercentagePicksAxisBase(t *testing.T) {
	ctx := LayoutContext{ParentWidth: 200, ParentHeight: 500}
	v := ResolveLength("10%", "height", ctx)
	require.NotNil(t, v)
	assert.Equal(t, 50.0, *v)
}

func TestResolveLengthRem(t *testing.T) {
	v := ResolveLength("2rem", "width", LayoutContext{})
	require.NotNil(t, v)
	assert.Equal(t, 32.0, *v)
}

func TestResolveLengthUnresolvable(t *testing.T) {
	ctx := LayoutContext{ParentWidth: 200}
	assert.Nil(t, ResolveLength("auto", "width", ctx))
	assert.Nil(t, ResolveLength("calc(100% - 20px)", "width", ctx))
	// vh with no canvas height has no base.
	assert.Nil(t, ResolveLength("10vh", "height", LayoutContext{CanvasHeight: 0}))
	// percentage with a zero parent has no base.
	assert.Nil(t, ResolveLength("50%", "width", LayoutContext{}))
}

func TestResolveLengthViewportUnits(t *testing.T) {
	ctx := LayoutContext{CanvasWidth: 1920, CanvasHeight: 1080}
	v := ResolveLength("10vh", "height", ctx)
	require.NotNil(t, v)
	assert.Equal(t, 108.0, *v)
	v = ResolveLength("50vw", "width", ctx)
	require.NotNil(t, v)
	assert.Equal(t, 960.0, *v)
}

func TestResolveLengthBareNumberAndPx(t *testing.T) {
	v := ResolveLength("42", "width", LayoutContext{})
	require.NotNil(t, v)
	assert.Equal(t, 42.0, *v)
	v = ResolveLength("42px", "width", LayoutContext{})
	require.NotNil(t, v)
	assert.Equal(t, 42.0, *v)
}

func TestCSSColorShorthandHex(t *testing.T) {
	out, ok := CSSColorToRokuHex("#abc")
	require.True(t, ok)
	assert.Equal(t, "0xaabbccff", out)
}

func TestCSSColorLongHex(t *testing.T) {
	out, ok := CSSColorToRokuHex("#1A2B3C")
	require.True(t, ok)
	assert.Equal(t, "0x1a2b3cff", out)

	out, ok = CSSColorToRokuHex("#1a2b3c80")
	require.True(t, ok)
	assert.Equal(t, "0x1a2b3c80", out)
}

func TestCSSColorRGBA(t *testing.T) {
	// Alpha rounding is half-up: 0.5 * 255 = 127.5 -> 128 = 0x80.
	out, ok := CSSColorToRokuHex("rgba(255, 0, 0, 0.5)")
	require.True(t, ok)
	assert.Equal(t, "0xff000080", out)
}

func TestCSSColorRGBClampsChannels(t *testing.T) {
	out, ok := CSSColorToRokuHex("rgb(300, -20, 128)")
	require.True(t, ok)
	assert.Equal(t, "0xff0080ff", out)
}

func TestCSSColorNamed(t *testing.T) {
	out, ok := CSSColorToRokuHex("red")
	require.True(t, ok)
	assert.Equal(t, "0xff0000ff", out)
}

func TestCSSColorPassthrough(t *testing.T) {
	out, ok := CSSColorToRokuHex("0xAABBCC")
	require.True(t, ok)
	assert.Equal(t, "0xaabbccff", out)
}

func TestCSSColorRejectsGarbage(t *testing.T) {
	_, ok := CSSColorToRokuHex("not-a-color")
	assert.False(t, ok)
	_, ok = CSSColorToRokuHex("#12")
	assert.False(t, ok)
}

func TestParseTransformTranslationsSum(t *testing.T) {
	tr, unknown := ParseTransform("translate(10px, 20px) translateX(5px)")
	assert.Empty(t, unknown)
	assert.Equal(t, 15.0, tr.TranslateX)
	assert.Equal(t, 20.0, tr.TranslateY)
}

func TestParseTransformLastRotateWins(t *testing.T) {
	tr, _ := ParseTransform("rotate(90deg) rotate(180deg)")
	require.NotNil(t, tr.RotationRad)
	assert.InDelta(t, math.Pi, *tr.RotationRad, 1e-9)
}

func TestParseTransformScale(t *testing.T) {
	tr, _ := ParseTransform("scale(2) scale(3, 4)")
	require.NotNil(t, tr.ScaleX)
	require.NotNil(t, tr.ScaleY)
	assert.Equal(t, 3.0, *tr.ScaleX)
	assert.Equal(t, 4.0, *tr.ScaleY)
}

func TestParseTransformUnknownFunctionReported(t *testing.T) {
	_, unknown := ParseTransform("skew(30deg)")
	assert.Equal(t, []string{"skew"}, unknown)
}

func TestMapFontWeight(t *testing.T) {
	out, ok := MapFontWeight("700")
	require.True(t, ok)
	assert.Equal(t, "font:MediumBoldSystemFont", out)

	out, ok = MapFontWeight("900")
	require.True(t, ok)
	assert.Equal(t, "font:MediumBoldSystemFont", out)

	out, ok = MapFontWeight("normal")
	require.True(t, ok)
	assert.Equal(t, "font:MediumSystemFont", out)

	out, ok = MapFontWeight("300")
	require.True(t, ok)
	assert.Equal(t, "font:SmallestSystemFont", out)

	_, ok = MapFontWeight("500")
	assert.False(t, ok)
}
