package render

import (
	"fmt"
	"math"

	"github.com/adelrodriguez/sakuga/internal/frames"
	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/token"
)

// Canvas is the drawing surface frames are painted on. Alpha, color and font
// style are mutable state that persists between calls; Save and Restore scope
// it.
type Canvas interface {
	Width() int
	Height() int
	Save()
	Restore()
	SetAlpha(alpha float64)
	SetColor(c paint.Color)
	SetFontStyle(style token.FontStyle)
	FillRect(x, y, width, height float64) error
	// FillText draws s with the top of its line box at y.
	FillText(s string, x, y float64)
	StrokeLine(x1, y1, x2, y2, width float64) error
	MeasureText(content string, style token.FontStyle) float64
	// Pixels returns the surface as straight RGBA bytes.
	Pixels() []byte
}

// PaintFrame clears c to the frame background and draws its tokens. Canvas
// state is restored before returning.
func PaintFrame(c Canvas, frame frames.Frame, fontSize float64) error {
	c.Save()
	defer c.Restore()

	switch f := frame.(type) {
	case frames.SceneFrame:
		if err := fillBackground(c, f.Background); err != nil {
			return err
		}
		return paintScene(c, f, fontSize)
	case frames.TransitionFrame:
		if err := fillBackground(c, f.Background); err != nil {
			return err
		}
		return paintTransition(c, f, fontSize)
	default:
		return fmt.Errorf("unknown frame type %T", frame)
	}
}

func fillBackground(c Canvas, background paint.Color) error {
	c.SetAlpha(1)
	c.SetColor(background)
	return c.FillRect(0, 0, float64(c.Width()), float64(c.Height()))
}

// paintScene draws a steady scene shifted so its block sits at the frame's
// position.
func paintScene(c Canvas, f frames.SceneFrame, fontSize float64) error {
	if f.Scene == nil || f.Opacity <= 0 {
		return nil
	}
	c.SetAlpha(f.Opacity)
	dx := float64(f.PositionX - f.Scene.BlockX)
	dy := float64(f.PositionY - f.Scene.BlockY)
	for _, line := range f.Scene.Layout {
		for _, t := range line.Tokens {
			x, y := float64(t.X)+dx, float64(t.Y)+dy
			if err := paintText(c, t.Content, t.Color, t.FontStyle, t.Width, x, y, fontSize); err != nil {
				return err
			}
		}
	}
	return nil
}

func paintTransition(c Canvas, f frames.TransitionFrame, fontSize float64) error {
	for _, t := range f.Tokens {
		if t.Opacity <= 0 {
			continue
		}
		c.SetAlpha(t.Opacity)
		if err := paintText(c, t.Content, t.Color, t.FontStyle, t.Width, t.X, t.Y, fontSize); err != nil {
			return err
		}
	}
	return nil
}

func paintText(c Canvas, content string, col paint.Color, style token.FontStyle, width, x, y, fontSize float64) error {
	c.SetFontStyle(style)
	c.SetColor(col)
	c.FillText(content, x, y)
	if !style.Underline() || width <= 0 {
		return nil
	}
	underlineY := y + fontSize + 2
	return c.StrokeLine(x, underlineY, x+width, underlineY, UnderlineWidth(fontSize))
}

// UnderlineWidth is the stroke width of underlines at fontSize.
func UnderlineWidth(fontSize float64) float64 {
	return math.Max(1, math.Floor(fontSize/12))
}
