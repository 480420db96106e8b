// Package testutil builds laid-out scenes for tests without a tokenizer or a
// font rasterizer.
package testutil

import (
	"math"

	"github.com/stretchr/testify/require"

	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/token"
)

// T is the subset of testing.TB the builder needs. Both *testing.T and
// *rapid.T satisfy it.
type T interface {
	require.TestingT
	Helper()
}

// Builder accumulates lines of tokens and lays them out on a fixed-advance grid.
type Builder struct {
	t          T
	advance    float64
	lineHeight float64
	padding    float64
	originX    int
	originY    int
	background string
	lines      [][]TokenData
}

// NewBuilder creates a builder with a 10px advance and 20px line height.
func NewBuilder(t T) *Builder {
	t.Helper()
	return &Builder{
		t:          t,
		advance:    10,
		lineHeight: 20,
		background: "#0b0b0b",
	}
}

// WithAdvance sets the width of every rune.
func (b *Builder) WithAdvance(px float64) *Builder {
	b.advance = px
	return b
}

// WithLineHeight sets the distance between lines.
func (b *Builder) WithLineHeight(px float64) *Builder {
	b.lineHeight = px
	return b
}

// WithPadding sets the block padding.
func (b *Builder) WithPadding(px float64) *Builder {
	b.padding = px
	return b
}

// WithOrigin places the block's top-left corner.
func (b *Builder) WithOrigin(x, y int) *Builder {
	b.originX, b.originY = x, y
	return b
}

// WithBackground sets the scene background.
func (b *Builder) WithBackground(hex string) *Builder {
	b.background = hex
	return b
}

// WithLine adds a line of plain identifier tokens.
func (b *Builder) WithLine(words ...string) *Builder {
	line := make([]TokenData, len(words))
	for i, w := range words {
		line[i] = Tok(w)
	}
	b.lines = append(b.lines, line)
	return b
}

// WithTokens adds a line of configured tokens.
func (b *Builder) WithTokens(tokens ...TokenData) *Builder {
	b.lines = append(b.lines, tokens)
	return b
}

// Measurer returns a scene.Measurer consistent with the builder's advance.
func (b *Builder) Measurer() scene.Measurer {
	return FixedMeasurer{Advance: b.advance}
}

// Scene lays out the accumulated lines.
func (b *Builder) Scene() scene.Scene {
	b.t.Helper()

	measured := scene.Measured{
		Lines:      make([]scene.MeasuredLine, len(b.lines)),
		Background: paint.ParseHex(b.background),
		Foreground: paint.ParseHex("#e6e6e6"),
	}
	layout := make([]scene.Line, len(b.lines))
	for i, line := range b.lines {
		cursor := float64(b.originX) + b.padding
		y := int(math.Round(float64(b.originY) + b.padding + float64(i)*b.lineHeight))
		for _, data := range line {
			require.NotEmpty(b.t, data.content, "layout tokens must have content")
			mt := scene.MeasuredToken{
				Content:   data.content,
				Color:     data.paint(),
				FontStyle: data.fontStyle,
				Category:  data.category,
				Width:     FixedMeasurer{Advance: b.advance}.MeasureText(data.content, data.fontStyle),
			}
			measured.Lines[i].Tokens = append(measured.Lines[i].Tokens, mt)
			measured.Lines[i].Width += mt.Width
			layout[i].Tokens = append(layout[i].Tokens, scene.LayoutToken{
				MeasuredToken: mt,
				X:             int(math.Round(cursor)),
				Y:             y,
			})
			cursor += mt.Width
		}
		measured.ContentWidth = math.Max(measured.ContentWidth, measured.Lines[i].Width)
	}
	measured.ContentHeight = float64(len(b.lines)) * b.lineHeight
	measured.BlockWidth = measured.ContentWidth + 2*b.padding
	measured.BlockHeight = measured.ContentHeight + 2*b.padding

	return scene.Scene{
		Measured: measured,
		BlockX:   b.originX,
		BlockY:   b.originY,
		Layout:   layout,
	}
}

// Build returns the laid-out tokens in reading order.
func (b *Builder) Build() []scene.LayoutToken {
	b.t.Helper()
	return b.Scene().Tokens()
}

// FixedMeasurer measures every rune at the same advance regardless of style.
type FixedMeasurer struct {
	Advance float64
}

// MeasureText implements scene.Measurer.
func (m FixedMeasurer) MeasureText(content string, _ token.FontStyle) float64 {
	return float64(len([]rune(content))) * m.Advance
}
