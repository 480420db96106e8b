package render

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfig indicates options rejected before any work started.
	ErrInvalidConfig = errors.New("invalid render configuration")

	// ErrEncode indicates a frame could not be painted, delivered or
	// finalized.
	ErrEncode = errors.New("encode failed")
)

// Stage names a step of the render pipeline.
type Stage string

const (
	StageValidate Stage = "validate"
	StageMeasure  Stage = "measure"
	StageLayout   Stage = "layout"
	StageEncode   Stage = "encode"
	StageFinalize Stage = "finalize"
)

// Error is a pipeline failure with the context needed for a diagnostic.
// errors.Is matches both Kind and anything Err wraps.
type Error struct {
	Stage Stage
	// Kind is ErrInvalidConfig, scene.ErrSceneMeasure or ErrEncode.
	Kind error
	// Block is the index of the offending code block, or -1.
	Block int
	// Origin describes where the block came from, if known.
	Origin string
	// Frame is the index of the offending frame, or -1.
	Frame int
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Stage))
	if e.Block >= 0 {
		fmt.Fprintf(&b, " block %d", e.Block+1)
		if e.Origin != "" {
			fmt.Fprintf(&b, " (%s)", e.Origin)
		}
	}
	if e.Frame >= 0 {
		fmt.Fprintf(&b, " frame %d", e.Frame)
	}
	b.WriteString(": ")
	if e.Err == nil {
		b.WriteString(e.Kind.Error())
		return b.String()
	}
	if !errors.Is(e.Err, e.Kind) {
		b.WriteString(e.Kind.Error())
		b.WriteString(": ")
	}
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stageError(stage Stage, kind error, err error) *Error {
	return &Error{Stage: stage, Kind: kind, Block: -1, Frame: -1, Err: err}
}
