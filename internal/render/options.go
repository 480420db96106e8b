// Package render drives a render from code blocks to an encoded video: it
// measures every block, sizes and lays out the scenes, then paints the frame
// stream one frame at a time into an encoder sink.
package render

import (
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/adelrodriguez/sakuga/internal/frames"
	"github.com/adelrodriguez/sakuga/internal/scene"
)

// Options configures one render. Durations and sizes must be positive.
type Options struct {
	MinWidth  int
	MinHeight int
	FPS       float64
	// BlockDuration is how long each scene is held on screen.
	BlockDuration      time.Duration
	TransitionDuration time.Duration
	// Drift is the vertical slide in pixels of added and removed tokens.
	Drift    float64
	FontSize float64
	// Concurrency bounds parallel scene measurement. Zero picks a default.
	Concurrency int
	Scene       scene.Options
}

// DefaultConcurrency is min(4, NumCPU).
func DefaultConcurrency() int {
	return min(4, runtime.NumCPU())
}

// Validate reports every invalid field at once, wrapped in ErrInvalidConfig.
func (o Options) Validate() error {
	var errs []error
	if o.MinWidth <= 0 {
		errs = append(errs, fmt.Errorf("width must be positive, got %d", o.MinWidth))
	}
	if o.MinHeight <= 0 {
		errs = append(errs, fmt.Errorf("height must be positive, got %d", o.MinHeight))
	}
	if o.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %g", o.FPS))
	}
	if o.BlockDuration <= 0 {
		errs = append(errs, fmt.Errorf("block duration must be positive, got %s", o.BlockDuration))
	}
	if o.TransitionDuration <= 0 {
		errs = append(errs, fmt.Errorf("transition duration must be positive, got %s", o.TransitionDuration))
	}
	if o.Drift < 0 {
		errs = append(errs, fmt.Errorf("drift must not be negative, got %g", o.Drift))
	}
	if o.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("font size must be positive, got %g", o.FontSize))
	}
	if o.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", o.Concurrency))
	}
	if o.Scene.Padding < 0 {
		errs = append(errs, fmt.Errorf("padding must not be negative, got %g", o.Scene.Padding))
	}
	if o.Scene.LineHeight <= 0 {
		errs = append(errs, fmt.Errorf("line height must be positive, got %g", o.Scene.LineHeight))
	}
	if len(errs) == 0 {
		return nil
	}
	return stageError(StageValidate, ErrInvalidConfig, errors.Join(errs...))
}

// Counts converts the durations into frame counts.
func (o Options) Counts() frames.Counts {
	return frames.ComputeCounts(
		float64(o.TransitionDuration)/float64(time.Millisecond),
		o.FPS,
		o.BlockDuration.Seconds(),
	)
}

func (o Options) concurrency() int {
	if o.Concurrency > 0 {
		return o.Concurrency
	}
	return DefaultConcurrency()
}
