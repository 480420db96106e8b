package encoder

import (
	"context"
	"fmt"
)

// Open creates the sink for opts.Format. For png the output is a directory
// and the ffmpeg settings are ignored.
func Open(ctx context.Context, opts FfmpegOptions) (Sink, error) {
	switch opts.Format {
	case FormatMP4, FormatWebM:
		f, err := NewFfmpeg(ctx, opts)
		if err != nil {
			return nil, err
		}
		return f, nil
	case FormatPNG:
		p, err := NewPNGSequence(opts.Output, opts.Stream)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, opts.Format)
	}
}
