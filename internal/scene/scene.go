// Package scene measures tokenized code blocks and lays them out as centered,
// pixel-positioned scenes inside a shared frame.
package scene

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/token"
)

// ErrSceneMeasure is returned when a code block cannot be tokenized.
var ErrSceneMeasure = errors.New("scene measure failed")

// CodeBlock is one fenced region of code to animate.
type CodeBlock struct {
	Code     string
	Language string
	// Origin names where the block came from (file path, markdown position,
	// commit) for diagnostics.
	Origin string
}

// Tokenizer turns code into highlighted token lines.
type Tokenizer interface {
	Tokenize(code, language string) (token.Tokenized, error)
}

// Measurer reports the pixel width of text under a font variant. Implementations
// must leave their current font unchanged after each call.
type Measurer interface {
	MeasureText(content string, style token.FontStyle) float64
}

// Options holds the layout settings shared by all scenes.
type Options struct {
	Padding        float64
	LineHeight     float64
	TabReplacement string
	Foreground     paint.Color
	Background     paint.Color
}

// MeasuredToken is a token with its resolved color and measured width.
type MeasuredToken struct {
	Content   string
	Color     paint.Color
	FontStyle token.FontStyle
	Category  token.Category
	Width     float64
}

// MeasuredLine is an ordered run of measured tokens.
type MeasuredLine struct {
	Tokens []MeasuredToken
	Width  float64
}

// Measured is a code block measured independently of the final frame size.
type Measured struct {
	Lines         []MeasuredLine
	ContentWidth  float64
	ContentHeight float64
	BlockWidth    float64
	BlockHeight   float64
	Background    paint.Color
	Foreground    paint.Color
}

// LayoutToken is a measured token placed in frame coordinates.
type LayoutToken struct {
	MeasuredToken
	X int
	Y int
}

// Line is one laid-out line of a scene.
type Line struct {
	Tokens []LayoutToken
}

// Scene is a measured block centered inside a frame.
type Scene struct {
	Measured Measured
	BlockX   int
	BlockY   int
	Layout   []Line
}

// Tokens returns every layout token of the scene in reading order.
func (s Scene) Tokens() []LayoutToken {
	n := 0
	for _, line := range s.Layout {
		n += len(line.Tokens)
	}
	tokens := make([]LayoutToken, 0, n)
	for _, line := range s.Layout {
		tokens = append(tokens, line.Tokens...)
	}
	return tokens
}

// Size is a frame size in pixels.
type Size struct {
	Width  int
	Height int
}

// NormalizeContent expands tabs into the configured replacement.
func NormalizeContent(content, tabReplacement string) string {
	return strings.ReplaceAll(content, "\t", tabReplacement)
}

// Measure tokenizes a code block and measures it.
func Measure(opts Options, tokenizer Tokenizer, block CodeBlock, m Measurer) (Measured, error) {
	tokenized, err := tokenizer.Tokenize(block.Code, block.Language)
	if err != nil {
		return Measured{}, fmt.Errorf("%w: %w", ErrSceneMeasure, err)
	}
	return MeasureTokens(opts, tokenized, m), nil
}

// MeasureTokens measures already tokenized lines. Tokens that are empty after
// tab expansion are dropped.
func MeasureTokens(opts Options, tokenized token.Tokenized, m Measurer) Measured {
	foreground := opts.Foreground
	if tokenized.Foreground != "" {
		foreground = paint.ParseHex(tokenized.Foreground)
	}
	background := opts.Background
	if tokenized.Background != "" {
		background = paint.ParseHex(tokenized.Background)
	}

	lines := make([]MeasuredLine, len(tokenized.Lines))
	contentWidth := 0.0
	for i, lineTokens := range tokenized.Lines {
		line := MeasuredLine{Tokens: make([]MeasuredToken, 0, len(lineTokens))}
		for _, tok := range lineTokens {
			content := NormalizeContent(tok.Content, opts.TabReplacement)
			if content == "" {
				continue
			}

			color := foreground
			if tok.Color != "" {
				color = paint.ParseHex(tok.Color)
			}
			width := m.MeasureText(content, tok.FontStyle)

			line.Tokens = append(line.Tokens, MeasuredToken{
				Content:   content,
				Color:     color,
				FontStyle: tok.FontStyle,
				Category:  tok.Category,
				Width:     width,
			})
			line.Width += width
		}
		lines[i] = line
		contentWidth = math.Max(contentWidth, line.Width)
	}

	contentHeight := float64(len(tokenized.Lines)) * opts.LineHeight
	return Measured{
		Lines:         lines,
		ContentWidth:  contentWidth,
		ContentHeight: contentHeight,
		BlockWidth:    contentWidth + opts.Padding*2,
		BlockHeight:   contentHeight + opts.Padding*2,
		Background:    background,
		Foreground:    foreground,
	}
}

// ResolveFrameSize returns the smallest frame that fits every block, floored
// at the given minimums.
func ResolveFrameSize(scenes []Measured, minWidth, minHeight int) Size {
	size := Size{Width: minWidth, Height: minHeight}
	for _, s := range scenes {
		size.Width = max(size.Width, int(math.Ceil(s.BlockWidth)))
		size.Height = max(size.Height, int(math.Ceil(s.BlockHeight)))
	}
	return size
}

// Layout centers a measured block in the frame and assigns whole-pixel
// positions to every token. A block larger than the frame is pinned to the
// top-left corner.
func Layout(opts Options, measured Measured, frameWidth, frameHeight int) Scene {
	blockX := max(0, int(math.Round((float64(frameWidth)-measured.BlockWidth)/2)))
	blockY := max(0, int(math.Round((float64(frameHeight)-measured.BlockHeight)/2)))

	layout := make([]Line, len(measured.Lines))
	for i, line := range measured.Lines {
		cursorX := float64(blockX) + opts.Padding
		cursorY := float64(blockY) + opts.Padding + float64(i)*opts.LineHeight

		tokens := make([]LayoutToken, len(line.Tokens))
		for j, tok := range line.Tokens {
			// Round at assignment only so drift does not compound along the line.
			tokens[j] = LayoutToken{
				MeasuredToken: tok,
				X:             int(math.Round(cursorX)),
				Y:             int(math.Round(cursorY)),
			}
			cursorX += tok.Width
		}
		layout[i] = Line{Tokens: tokens}
	}

	return Scene{
		Measured: measured,
		BlockX:   blockX,
		BlockY:   blockY,
		Layout:   layout,
	}
}
