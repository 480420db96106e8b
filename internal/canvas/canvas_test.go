package canvas

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/token"
)

func loadFonts(t *testing.T) *Fonts {
	t.Helper()
	fonts, err := LoadFonts(FontFiles{}, 24)
	require.NoError(t, err)
	t.Cleanup(fonts.Close)
	return fonts
}

func pixelAt(c *Canvas, x, y int) [4]byte {
	i := (y*c.Width() + x) * 4
	p := c.Pixels()
	return [4]byte{p[i], p[i+1], p[i+2], p[i+3]}
}

func TestLoadFonts_RejectsNonPositiveSize(t *testing.T) {
	_, err := LoadFonts(FontFiles{}, 0)
	require.ErrorIs(t, err, ErrFontLoad)
}

func TestLoadFonts_MissingFile(t *testing.T) {
	_, err := LoadFonts(FontFiles{Regular: t.TempDir() + "/missing.ttf"}, 24)
	require.ErrorIs(t, err, ErrFontLoad)
}

func TestCanvas_FillRect(t *testing.T) {
	c := New(8, 6, loadFonts(t), nil)
	require.Equal(t, 8, c.Width())
	require.Equal(t, 6, c.Height())
	require.Len(t, c.Pixels(), 8*6*4)

	c.SetColor(paint.ParseHex("#ff0000"))
	require.NoError(t, c.FillRect(0, 0, 8, 6))

	require.Equal(t, [4]byte{255, 0, 0, 255}, pixelAt(c, 4, 3))
}

func TestCanvas_AlphaBlendsOverBackground(t *testing.T) {
	c := New(8, 8, loadFonts(t), nil)
	c.SetColor(paint.ParseHex("#000000"))
	require.NoError(t, c.FillRect(0, 0, 8, 8))

	c.SetAlpha(0.5)
	c.SetColor(paint.ParseHex("#ffffff"))
	require.NoError(t, c.FillRect(0, 0, 8, 8))

	px := pixelAt(c, 4, 4)
	require.InDelta(t, 128, int(px[0]), 2)
	require.Equal(t, byte(255), px[3])
}

func TestCanvas_SaveRestore(t *testing.T) {
	c := New(4, 4, loadFonts(t), nil)
	c.SetAlpha(0.2)
	c.SetColor(paint.ParseHex("#336699"))
	c.SetFontStyle(token.FontStyleBold)

	c.Save()
	c.SetAlpha(1)
	c.SetColor(paint.ParseHex("#ffffff"))
	c.SetFontStyle(token.FontStyleItalic)
	c.Restore()

	require.Equal(t, 0.2, c.state.alpha)
	require.Equal(t, paint.ParseHex("#336699"), c.state.color)
	require.Equal(t, token.FontStyleBold, c.state.style)
	require.Empty(t, c.stack)

	// unbalanced
	c.Restore()
	require.Equal(t, 0.2, c.state.alpha)
}

func TestCanvas_FillTextIsTopAligned(t *testing.T) {
	c := New(64, 64, loadFonts(t), nil)
	c.SetColor(paint.ParseHex("#000000"))
	require.NoError(t, c.FillRect(0, 0, 64, 64))

	c.SetColor(paint.ParseHex("#ffffff"))
	c.FillText("M", 8, 20)

	lit := func(y0, y1 int) bool {
		for y := y0; y < y1; y++ {
			for x := 0; x < 64; x++ {
				if pixelAt(c, x, y)[0] > 64 {
					return true
				}
			}
		}
		return false
	}
	require.False(t, lit(0, 20), "nothing is drawn above the top edge")
	require.True(t, lit(20, 44), "glyph lands below the top edge")
}

func TestCanvas_StrokeLine(t *testing.T) {
	c := New(16, 16, loadFonts(t), nil)
	c.SetColor(paint.ParseHex("#000000"))
	require.NoError(t, c.FillRect(0, 0, 16, 16))

	c.SetColor(paint.ParseHex("#00ff00"))
	require.NoError(t, c.StrokeLine(0, 8, 16, 8, 2))

	require.Greater(t, pixelAt(c, 8, 8)[1], byte(128))
	require.Equal(t, byte(0), pixelAt(c, 8, 2)[1])
}

func TestMeasurer_Monospace(t *testing.T) {
	fonts := loadFonts(t)
	m := NewMeasurer(fonts, nil)

	one := m.MeasureText("a", token.FontStyleNone)
	require.Greater(t, one, 0.0)
	require.InDelta(t, 4*one, m.MeasureText("abcd", token.FontStyleNone), 0.001)
	require.InDelta(t, one, m.MeasureText("a", token.FontStyleBold|token.FontStyleUnderline), 0.001)
	require.Zero(t, m.MeasureText("", token.FontStyleNone))
}

func TestMeasurer_MatchesCanvas(t *testing.T) {
	fonts := loadFonts(t)
	m := NewMeasurer(fonts, nil)
	c := New(4, 4, fonts, nil)

	for _, style := range []token.FontStyle{token.FontStyleNone, token.FontStyleItalic, token.FontStyleBold} {
		require.Equal(t, m.MeasureText("func main()", style), c.MeasureText("func main()", style))
	}
}

func TestWidthCache_SharedAcrossMeasurers(t *testing.T) {
	fonts := loadFonts(t)
	widths := NewWidthCache()
	a := NewMeasurer(fonts, widths)
	b := NewMeasurer(fonts, widths)

	first := a.MeasureText("return", token.FontStyleNone)
	second := b.MeasureText("return", token.FontStyleNone)
	require.Equal(t, first, second)

	b.MeasureText("return", token.FontStyleBold)

	stats := widths.Stats()
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(2), stats.Misses)
}

func TestWidthCache_NilStats(t *testing.T) {
	var widths *WidthCache
	require.Zero(t, widths.Stats())
}
