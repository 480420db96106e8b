package transition

import (
	"math"

	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/token"
)

// DrawToken is one run of text to paint in a transition frame.
type DrawToken struct {
	Content   string
	Color     paint.Color
	FontStyle token.FontStyle
	Opacity   float64
	Width     float64
	X         float64
	Y         float64
}

// Ease applies the ease-in-out cubic curve to progress clamped to [0, 1].
// It matches gween's ease.InOutCubic computed in float64.
func Ease(progress float64) float64 {
	p := clamp01(progress) * 2
	if p < 1 {
		return p * p * p / 2
	}
	p -= 2
	return (p*p*p + 2) / 2
}

// Synthesize builds the tokens of one transition frame. Removed tokens fade
// out while drifting up, added tokens fade in from below, and matched tokens
// glide between their positions. A match whose text or style changed is drawn
// twice at the shared position: the old token fading out over the new one
// fading in.
func Synthesize(d Diff, progress, drift float64) []DrawToken {
	p := clamp01(progress)
	tokens := make([]DrawToken, 0, len(d.Removed)+len(d.Matched)*2+len(d.Added))

	if opacity := 1 - p; opacity > 0 {
		for _, t := range d.Removed {
			tokens = append(tokens, drawAt(t, opacity, t.Width, float64(t.X), float64(t.Y)-drift*p))
		}
	}

	for _, m := range d.Matched {
		x := paint.Lerp(float64(m.From.X), float64(m.To.X), p)
		y := paint.Lerp(float64(m.From.Y), float64(m.To.Y), p)
		width := paint.Lerp(m.From.Width, m.To.Width, p)

		if m.Identical() {
			tok := drawAt(m.To, 1, width, x, y)
			tok.Color = paint.Blend(m.From.Color, m.To.Color, p)
			tokens = append(tokens, tok)
			continue
		}
		if opacity := 1 - p; opacity > 0 {
			tokens = append(tokens, drawAt(m.From, opacity, width, x, y))
		}
		if p > 0 {
			tokens = append(tokens, drawAt(m.To, p, width, x, y))
		}
	}

	if p > 0 {
		for _, t := range d.Added {
			tokens = append(tokens, drawAt(t, p, t.Width, float64(t.X), float64(t.Y)+drift*(1-p)))
		}
	}

	return tokens
}

func drawAt(t scene.LayoutToken, opacity, width, x, y float64) DrawToken {
	return DrawToken{
		Content:   t.Content,
		Color:     t.Color,
		FontStyle: t.FontStyle,
		Opacity:   opacity,
		Width:     width,
		X:         x,
		Y:         y,
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
