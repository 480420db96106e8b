// Package paint provides the color and interpolation helpers shared by the
// layout, transition and drawing stages.
package paint

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an sRGB color with 8-bit channels and a straight alpha in [0, 1].
type Color struct {
	R, G, B uint8
	A       float64
}

// Fallback is returned by ParseHex for input it cannot read.
var Fallback = Color{R: 11, G: 11, B: 11, A: 1}

// Lerp linearly interpolates between start and end.
func Lerp(start, end, progress float64) float64 {
	return start + (end-start)*progress
}

// expandShortHex turns "abc" into "aabbcc" and "abcd" into "aabbccdd".
func expandShortHex(hex string) string {
	if len(hex) != 3 && len(hex) != 4 {
		return hex
	}
	var b strings.Builder
	b.Grow(len(hex) * 2)
	for _, r := range hex {
		b.WriteRune(r)
		b.WriteRune(r)
	}
	return b.String()
}

// ParseHex reads #rgb, #rgba, #rrggbb and #rrggbbaa colors. The leading '#'
// is optional. Anything else yields Fallback.
func ParseHex(s string) Color {
	normalized := expandShortHex(strings.TrimSpace(strings.Replace(s, "#", "", 1)))
	if len(normalized) != 6 && len(normalized) != 8 {
		return Fallback
	}

	c, err := colorful.Hex("#" + normalized[:6])
	if err != nil {
		return Fallback
	}
	r, g, b := c.RGB255()

	alpha := 1.0
	if len(normalized) == 8 {
		a, err := strconv.ParseUint(normalized[6:], 16, 8)
		if err != nil {
			return Fallback
		}
		alpha = float64(a) / 255
	}

	return Color{R: r, G: g, B: b, A: alpha}
}

// ValidHex reports whether s is a color ParseHex understands without falling back.
func ValidHex(s string) bool {
	normalized := expandShortHex(strings.TrimSpace(strings.Replace(s, "#", "", 1)))
	if len(normalized) != 6 && len(normalized) != 8 {
		return false
	}
	_, err := strconv.ParseUint(normalized, 16, 64)
	return err == nil
}

// Blend interpolates two colors channel by channel. RGB is rounded to whole
// values; alpha is interpolated without rounding.
func Blend(from, to Color, progress float64) Color {
	blended := from.colorful().BlendRgb(to.colorful(), progress)
	r, g, b := blended.RGB255()
	return Color{R: r, G: g, B: b, A: Lerp(from.A, to.A, progress)}
}

// WithAlpha returns c with its alpha multiplied by opacity.
func (c Color) WithAlpha(opacity float64) Color {
	c.A = math.Max(0, math.Min(1, c.A*opacity))
	return c
}

// Hex formats the color as #rrggbb, or #rrggbbaa when it is not opaque.
func (c Color) Hex() string {
	if c.A >= 1 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, uint8(math.Round(c.A*255)))
}

// String renders the color in CSS rgba() notation.
func (c Color) String() string {
	return fmt.Sprintf("rgba(%d, %d, %d, %.3f)", c.R, c.G, c.B, c.A)
}

// RGBA returns the channels normalized to [0, 1].
func (c Color) RGBA() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, c.A
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}
