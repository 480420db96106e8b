package encoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/adelrodriguez/sakuga/internal/log"
)

// DefaultFilter sharpens and saturates code text that would otherwise look
// soft after chroma subsampling.
const DefaultFilter = "eq=saturation=1.3,unsharp=5:5:1.0:5:5:1.0,cas=0.5"

var codecArgs = map[Format][]string{
	FormatMP4:  {"-c:v", "libx264", "-crf", "12", "-preset", "slow", "-profile:v", "high", "-level:v", "4.1"},
	FormatWebM: {"-c:v", "libvpx-vp9", "-crf", "20", "-b:v", "0"},
}

var containerArgs = map[Format][]string{
	FormatMP4: {"-movflags", "+faststart"},
}

// FfmpegOptions configures an ffmpeg subprocess sink.
type FfmpegOptions struct {
	// Binary is the ffmpeg executable; defaults to "ffmpeg".
	Binary string
	Format Format
	Output string
	Stream Stream
	// Filter is the -vf chain; defaults to DefaultFilter. Use "null" to
	// disable filtering.
	Filter string
}

// BuildArgs returns the ffmpeg arguments for reading raw RGBA frames from
// stdin and writing the given format.
func BuildArgs(opts FfmpegOptions) []string {
	filter := opts.Filter
	if filter == "" {
		filter = DefaultFilter
	}
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", opts.Stream.Width, opts.Stream.Height),
		"-r", strconv.FormatFloat(opts.Stream.FPS, 'f', -1, 64),
		"-i", "pipe:0",
		"-vf", filter,
	}
	args = append(args, codecArgs[opts.Format]...)
	args = append(args, "-pix_fmt", "yuv420p")
	args = append(args, containerArgs[opts.Format]...)
	return append(args, "-y", opts.Output)
}

type sinkState int

const (
	stateOpen sinkState = iota
	stateFinalized
	stateFailed
	stateAborted
)

// Ffmpeg pipes frames into an ffmpeg subprocess. Writes block while the pipe
// is full, which holds the render loop back until ffmpeg catches up. An
// Ffmpeg is owned by a single goroutine.
type Ffmpeg struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stderr bytes.Buffer
	output string
	seq    sequence
	state  sinkState
}

var _ Sink = (*Ffmpeg)(nil)

// NewFfmpeg starts ffmpeg. The process is killed if ctx is cancelled.
func NewFfmpeg(ctx context.Context, opts FfmpegOptions) (*Ffmpeg, error) {
	if !opts.Format.NeedsEvenDimensions() {
		return nil, fmt.Errorf("%w for ffmpeg: %q", ErrUnsupportedFormat, opts.Format)
	}
	if opts.Stream.Width%2 != 0 || opts.Stream.Height%2 != 0 {
		return nil, fmt.Errorf("%w: %s needs even dimensions, got %dx%d",
			ErrFrameSize, opts.Format, opts.Stream.Width, opts.Stream.Height)
	}

	binary := opts.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	path, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingFfmpeg, err)
	}

	f := &Ffmpeg{
		output: opts.Output,
		seq:    sequence{width: opts.Stream.Width, height: opts.Stream.Height},
	}
	args := BuildArgs(opts)
	//nolint:gosec // G204: binary and args come from validated configuration
	f.cmd = exec.CommandContext(ctx, path, args...)
	f.cmd.Stderr = &f.stderr
	f.stdin, err = f.cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open ffmpeg stdin: %w", err)
	}
	if err := f.cmd.Start(); err != nil {
		return nil, fmt.Errorf("start ffmpeg: %w", err)
	}

	log.Debug(log.CatEncode, "Started ffmpeg", "pid", f.cmd.Process.Pid, "args", strings.Join(args, " "))
	return f, nil
}

// WriteFrame implements Sink.
func (f *Ffmpeg) WriteFrame(ctx context.Context, s Sample) error {
	if f.state != stateOpen {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.seq.accept(s); err != nil {
		return err
	}
	if _, err := f.stdin.Write(s.Pixels); err != nil {
		f.stop()
		f.state = stateFailed
		return f.processError(fmt.Sprintf("write frame %d", s.Index), err)
	}
	return nil
}

// stop closes stdin, kills ffmpeg and reaps it. stderr is safe to read
// afterwards.
func (f *Ffmpeg) stop() {
	_ = f.stdin.Close()
	if f.cmd.Process != nil {
		_ = f.cmd.Process.Kill()
	}
	_ = f.cmd.Wait()
}

// Finalize implements Sink. It closes stdin and waits for ffmpeg to exit.
func (f *Ffmpeg) Finalize(ctx context.Context) (string, error) {
	if f.state != stateOpen {
		return "", ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	closeErr := f.stdin.Close()
	waitErr := f.cmd.Wait()
	if err := errors.Join(waitErr, closeErr); err != nil {
		f.state = stateFailed
		return "", f.processError("ffmpeg exited", err)
	}
	f.state = stateFinalized
	log.Debug(log.CatEncode, "Finalized ffmpeg output", "path", f.output)
	return f.output, nil
}

// Abort implements Sink. It kills ffmpeg and removes the partial output.
func (f *Ffmpeg) Abort() {
	switch f.state {
	case stateFinalized, stateAborted:
		return
	case stateOpen:
		f.stop()
	}
	f.state = stateAborted
	if err := os.Remove(f.output); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.ErrorErr(log.CatEncode, "Failed to remove partial output", err, "path", f.output)
	}
	log.Debug(log.CatEncode, "Aborted ffmpeg", "path", f.output)
}

// processError attaches ffmpeg's stderr to err. Only call it once the process
// has been reaped.
func (f *Ffmpeg) processError(action string, err error) error {
	if stderr := strings.TrimSpace(f.stderr.String()); stderr != "" {
		return fmt.Errorf("%s: %s: %w", action, stderr, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}
