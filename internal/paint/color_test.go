package paint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLerp(t *testing.T) {
	require.Equal(t, 0.0, Lerp(0, 10, 0))
	require.Equal(t, 10.0, Lerp(0, 10, 1))
	require.Equal(t, 5.0, Lerp(0, 10, 0.5))
	require.Equal(t, 7.5, Lerp(10, 5, 0.5))
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Color
	}{
		{name: "long form", input: "#ff8800", want: Color{R: 255, G: 136, B: 0, A: 1}},
		{name: "no hash", input: "0b0b0b", want: Color{R: 11, G: 11, B: 11, A: 1}},
		{name: "short form", input: "#fff", want: Color{R: 255, G: 255, B: 255, A: 1}},
		{name: "short with alpha", input: "#0f08", want: Color{R: 0, G: 255, B: 0, A: 136.0 / 255}},
		{name: "long with alpha", input: "#00000080", want: Color{R: 0, G: 0, B: 0, A: 128.0 / 255}},
		{name: "surrounding space", input: "  #E6E6E6 ", want: Color{R: 230, G: 230, B: 230, A: 1}},
		{name: "bad length", input: "#12345", want: Fallback},
		{name: "not hex", input: "#zzzzzz", want: Fallback},
		{name: "empty", input: "", want: Fallback},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseHex(tt.input)
			require.Equal(t, tt.want.R, got.R)
			require.Equal(t, tt.want.G, got.G)
			require.Equal(t, tt.want.B, got.B)
			require.InDelta(t, tt.want.A, got.A, 1e-9)
		})
	}
}

func TestValidHex(t *testing.T) {
	require.True(t, ValidHex("#abc"))
	require.True(t, ValidHex("#aabbccdd"))
	require.False(t, ValidHex("#abcde"))
	require.False(t, ValidHex("blue"))
}

func TestBlend(t *testing.T) {
	black := Color{A: 1}
	white := Color{R: 255, G: 255, B: 255, A: 0}

	require.Equal(t, black, Blend(black, white, 0))
	require.Equal(t, white, Blend(black, white, 1))

	mid := Blend(black, white, 0.5)
	require.Equal(t, uint8(128), mid.R)
	require.Equal(t, uint8(128), mid.G)
	require.Equal(t, uint8(128), mid.B)
	require.InDelta(t, 0.5, mid.A, 1e-9)
}

func TestColorFormatting(t *testing.T) {
	c := Color{R: 255, G: 0, B: 16, A: 1}
	require.Equal(t, "#ff0010", c.Hex())
	require.Equal(t, "rgba(255, 0, 16, 1.000)", c.String())
	require.Equal(t, "#ff001080", c.WithAlpha(0.5).Hex())
}

func TestWithAlpha_Clamps(t *testing.T) {
	c := Color{A: 0.8}
	require.Equal(t, 0.0, c.WithAlpha(-1).A)
	require.Equal(t, 1.0, c.WithAlpha(5).A)
	require.InDelta(t, 0.4, c.WithAlpha(0.5).A, 1e-9)
}
