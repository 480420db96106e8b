package canvas

import (
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/token"
)

type state struct {
	alpha float64
	color paint.Color
	style token.FontStyle
}

var defaultState = state{alpha: 1, color: paint.Color{A: 1}}

// Canvas is a stateful drawing surface backed by a gg pixmap. Alpha, color and
// font style persist across calls until changed or restored. A Canvas is not
// safe for concurrent use.
type Canvas struct {
	dc     *gg.Context
	pixmap *gg.Pixmap
	size   float64
	faces  [variantCount]text.Face
	widths *WidthCache
	state  state
	stack  []state
}

// New creates a width×height canvas drawing with fonts. widths may be nil.
func New(width, height int, fonts *Fonts, widths *WidthCache) *Canvas {
	pm := gg.NewPixmap(width, height)
	c := &Canvas{
		dc:     gg.NewContext(width, height, gg.WithPixmap(pm)),
		pixmap: pm,
		size:   fonts.size,
		faces:  fonts.faces(),
		widths: widths,
		state:  defaultState,
	}
	c.apply()
	return c
}

func (c *Canvas) Width() int  { return c.pixmap.Width() }
func (c *Canvas) Height() int { return c.pixmap.Height() }

// Save pushes the current alpha, color, font style and transform.
func (c *Canvas) Save() {
	c.stack = append(c.stack, c.state)
	c.dc.Push()
}

// Restore pops the state pushed by the matching Save. Unbalanced calls are
// ignored.
func (c *Canvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
	c.dc.Pop()
	c.apply()
}

// SetAlpha sets the global opacity multiplied into every later draw.
func (c *Canvas) SetAlpha(alpha float64) {
	c.state.alpha = math.Max(0, math.Min(1, alpha))
	c.apply()
}

// SetColor sets the fill and stroke color.
func (c *Canvas) SetColor(col paint.Color) {
	c.state.color = col
	c.apply()
}

// SetFontStyle selects the face used by FillText and MeasureText.
func (c *Canvas) SetFontStyle(style token.FontStyle) {
	c.state.style = style
	c.apply()
}

func (c *Canvas) apply() {
	col := c.state.color.WithAlpha(c.state.alpha)
	c.dc.SetColor(color.NRGBA{R: col.R, G: col.G, B: col.B, A: uint8(math.Round(col.A * 255))})
	c.dc.SetFont(c.faces[variantOf(c.state.style)])
}

// FillRect fills a rectangle with the current color.
func (c *Canvas) FillRect(x, y, width, height float64) error {
	c.dc.DrawRectangle(x, y, width, height)
	return c.dc.Fill()
}

// FillText draws s with its top-left corner at (x, y).
func (c *Canvas) FillText(s string, x, y float64) {
	if s == "" {
		return
	}
	face := c.faces[variantOf(c.state.style)]
	c.dc.DrawString(s, x, y+face.Metrics().Ascent)
}

// StrokeLine draws a straight line of the given width.
func (c *Canvas) StrokeLine(x1, y1, x2, y2, width float64) error {
	c.dc.SetLineWidth(width)
	c.dc.DrawLine(x1, y1, x2, y2)
	return c.dc.Stroke()
}

// MeasureText returns the advance width of content in the variant selected by
// style. The current font style is left unchanged.
func (c *Canvas) MeasureText(content string, style token.FontStyle) float64 {
	if content == "" {
		return 0
	}
	v := variantOf(style)
	return c.widths.width(v, c.size, c.faces[v], content)
}

// Pixels returns the RGBA bytes of the surface, row-major with no padding. The
// slice aliases the canvas and is overwritten by the next frame.
func (c *Canvas) Pixels() []byte {
	return c.pixmap.Data()
}
