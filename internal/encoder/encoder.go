// Package encoder turns painted frames into a video container or an image
// sequence.
package encoder

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingFfmpeg indicates the ffmpeg binary could not be found.
	ErrMissingFfmpeg = errors.New("ffmpeg not found in PATH")

	// ErrOutOfOrder indicates a frame arrived with a timestamp not after the
	// previous one.
	ErrOutOfOrder = errors.New("frame timestamp out of order")

	// ErrFrameSize indicates a frame whose dimensions do not match the sink.
	ErrFrameSize = errors.New("frame size mismatch")

	// ErrClosed indicates a write after Finalize or Abort.
	ErrClosed = errors.New("sink is closed")

	// ErrUnsupportedFormat indicates an unknown output format.
	ErrUnsupportedFormat = errors.New("unsupported output format")
)

// Format names an output format.
type Format string

const (
	FormatMP4  Format = "mp4"
	FormatWebM Format = "webm"
	FormatPNG  Format = "png"
)

// Formats lists every supported output format.
var Formats = []Format{FormatMP4, FormatWebM, FormatPNG}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// NeedsEvenDimensions reports whether the format's pixel layout requires an
// even frame width and height.
func (f Format) NeedsEvenDimensions() bool {
	return f == FormatMP4 || f == FormatWebM
}

// Stream describes the frames a sink will receive.
type Stream struct {
	Width  int
	Height int
	FPS    float64
	// FrameDuration is the length of one frame in seconds.
	FrameDuration float64
}

// Sample is one painted frame in straight RGBA, row-major, 4 bytes per pixel.
type Sample struct {
	Pixels    []byte
	Width     int
	Height    int
	Index     int
	Timestamp float64
	Duration  float64
}

// Sink consumes frames in strictly increasing timestamp order.
type Sink interface {
	// WriteFrame blocks until the sink has accepted the sample. The pixel
	// buffer may be reused by the caller once WriteFrame returns.
	WriteFrame(ctx context.Context, s Sample) error
	// Finalize flushes the output and returns its path.
	Finalize(ctx context.Context) (string, error)
	// Abort releases everything the sink holds and removes partial output.
	// It is safe to call after Finalize and more than once.
	Abort()
}

// EvenDimensions rounds width and height up to the next even value.
func EvenDimensions(width, height int) (int, int) {
	return width + width%2, height + height%2
}

// sequence enforces frame ordering and size for a sink.
type sequence struct {
	width, height int
	started       bool
	last          float64
	closed        bool
}

func (s *sequence) accept(sample Sample) error {
	if s.closed {
		return ErrClosed
	}
	if sample.Width != s.width || sample.Height != s.height || len(sample.Pixels) != s.width*s.height*4 {
		return fmt.Errorf("%w: got %dx%d (%d bytes), want %dx%d",
			ErrFrameSize, sample.Width, sample.Height, len(sample.Pixels), s.width, s.height)
	}
	if s.started && sample.Timestamp <= s.last {
		return fmt.Errorf("%w: frame %d at %.4fs after %.4fs", ErrOutOfOrder, sample.Index, sample.Timestamp, s.last)
	}
	s.started = true
	s.last = sample.Timestamp
	return nil
}
