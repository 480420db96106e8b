package render

import (
	"github.com/adelrodriguez/sakuga/internal/paint"
	"github.com/adelrodriguez/sakuga/internal/token"
)

type canvasState struct {
	alpha float64
	color paint.Color
	style token.FontStyle
}

type drawOp struct {
	kind  string // rect, text or line
	text  string
	x, y  float64
	x2    float64
	y2    float64
	width float64
	state canvasState
}

// recordingCanvas records draw calls instead of rasterizing them.
type recordingCanvas struct {
	width, height int
	state         canvasState
	stack         []canvasState
	ops           []drawOp
	pixels        []byte
	maxDepth      int
	fillErr       error
}

var _ Canvas = (*recordingCanvas)(nil)

func newRecordingCanvas(width, height int) *recordingCanvas {
	return &recordingCanvas{
		width:  width,
		height: height,
		state:  canvasState{alpha: 1, color: paint.Color{A: 1}},
		pixels: make([]byte, width*height*4),
	}
}

func (c *recordingCanvas) Width() int  { return c.width }
func (c *recordingCanvas) Height() int { return c.height }

func (c *recordingCanvas) Save() {
	c.stack = append(c.stack, c.state)
	c.maxDepth = max(c.maxDepth, len(c.stack))
}

func (c *recordingCanvas) Restore() {
	if len(c.stack) == 0 {
		return
	}
	c.state = c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]
}

func (c *recordingCanvas) SetAlpha(alpha float64)             { c.state.alpha = alpha }
func (c *recordingCanvas) SetColor(col paint.Color)           { c.state.color = col }
func (c *recordingCanvas) SetFontStyle(style token.FontStyle) { c.state.style = style }

func (c *recordingCanvas) FillRect(x, y, width, height float64) error {
	if c.fillErr != nil {
		return c.fillErr
	}
	c.ops = append(c.ops, drawOp{kind: "rect", x: x, y: y, x2: x + width, y2: y + height, state: c.state})
	return nil
}

func (c *recordingCanvas) FillText(s string, x, y float64) {
	c.ops = append(c.ops, drawOp{kind: "text", text: s, x: x, y: y, state: c.state})
}

func (c *recordingCanvas) StrokeLine(x1, y1, x2, y2, width float64) error {
	c.ops = append(c.ops, drawOp{kind: "line", x: x1, y: y1, x2: x2, y2: y2, width: width, state: c.state})
	return nil
}

func (c *recordingCanvas) MeasureText(content string, _ token.FontStyle) float64 {
	return float64(len(content)) * 10
}

func (c *recordingCanvas) Pixels() []byte { return c.pixels }

func (c *recordingCanvas) count(kind string) int {
	n := 0
	for _, op := range c.ops {
		if op.kind == kind {
			n++
		}
	}
	return n
}

func (c *recordingCanvas) texts() []drawOp {
	var out []drawOp
	for _, op := range c.ops {
		if op.kind == "text" {
			out = append(out, op)
		}
	}
	return out
}
