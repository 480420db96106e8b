package encoder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/gg"

	"github.com/adelrodriguez/sakuga/internal/log"
)

// PNGSequence writes each frame as frame-000001.png, frame-000002.png, ...
// into a directory.
type PNGSequence struct {
	dir     string
	pixmap  *gg.Pixmap
	seq     sequence
	state   sinkState
	written []string
}

var _ Sink = (*PNGSequence)(nil)

// NewPNGSequence creates dir if needed and returns a sink writing into it.
func NewPNGSequence(dir string, stream Stream) (*PNGSequence, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}
	return &PNGSequence{
		dir:    dir,
		pixmap: gg.NewPixmap(stream.Width, stream.Height),
		seq:    sequence{width: stream.Width, height: stream.Height},
	}, nil
}

// FramePath returns the file a frame index is written to.
func (p *PNGSequence) FramePath(index int) string {
	return filepath.Join(p.dir, fmt.Sprintf("frame-%06d.png", index+1))
}

// WriteFrame implements Sink.
func (p *PNGSequence) WriteFrame(ctx context.Context, s Sample) error {
	if p.state != stateOpen {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.seq.accept(s); err != nil {
		return err
	}

	copy(p.pixmap.Data(), s.Pixels)
	path := p.FramePath(s.Index)
	if err := p.pixmap.SavePNG(path); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	p.written = append(p.written, path)
	return nil
}

// Finalize implements Sink and returns the directory.
func (p *PNGSequence) Finalize(ctx context.Context) (string, error) {
	if p.state != stateOpen {
		return "", ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.state = stateFinalized
	log.Debug(log.CatEncode, "Finalized png sequence", "dir", p.dir, "frames", len(p.written))
	return p.dir, nil
}

// Abort implements Sink. It removes the frames written so far.
func (p *PNGSequence) Abort() {
	if p.state == stateFinalized || p.state == stateAborted {
		return
	}
	p.state = stateAborted
	for _, path := range p.written {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.ErrorErr(log.CatEncode, "Failed to remove frame", err, "path", path)
		}
	}
	p.written = nil
}
