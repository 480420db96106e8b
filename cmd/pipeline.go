package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/adelrodriguez/sakuga/internal/canvas"
	"github.com/adelrodriguez/sakuga/internal/config"
	"github.com/adelrodriguez/sakuga/internal/encoder"
	"github.com/adelrodriguez/sakuga/internal/highlight"
	"github.com/adelrodriguez/sakuga/internal/log"
	"github.com/adelrodriguez/sakuga/internal/pubsub"
	"github.com/adelrodriguez/sakuga/internal/render"
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/source"
	"github.com/adelrodriguez/sakuga/internal/tracing"
	"github.com/adelrodriguez/sakuga/internal/ui/progress"
)

// renderer owns the resources shared by every render of one invocation.
// Watch mode reuses it so fonts and measured widths survive between runs.
type renderer struct {
	cfg         config.Config
	format      encoder.Format
	highlighter *highlight.Chroma
	fonts       *canvas.Fonts
	widths      *canvas.WidthCache
	tracing     *tracing.Provider
}

func newRenderer(cfg config.Config) (*renderer, error) {
	format, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	highlighter, err := highlight.New(cfg.Style.Theme)
	if err != nil {
		return nil, err
	}
	fonts, err := canvas.LoadFonts(cfg.FontFiles(), cfg.Style.FontSize)
	if err != nil {
		return nil, err
	}
	provider, err := tracing.NewProvider(cfg.Tracing)
	if err != nil {
		fonts.Close()
		return nil, fmt.Errorf("initializing tracing: %w", err)
	}
	log.Debug(log.CatRender, "Renderer ready",
		"theme", highlighter.Theme(), "font_size", fonts.Size(), "format", format)
	return &renderer{
		cfg:         cfg,
		format:      format,
		highlighter: highlighter,
		fonts:       fonts,
		widths:      canvas.NewWidthCache(),
		tracing:     provider,
	}, nil
}

// Close flushes traces and releases the fonts.
func (r *renderer) Close(ctx context.Context) {
	if err := r.tracing.Shutdown(ctx); err != nil {
		log.Warn(log.CatTrace, "Tracing shutdown failed", "error", err)
	}
	r.fonts.Close()
	stats := r.widths.Stats()
	log.Debug(log.CatRender, "Width cache", "hits", stats.Hits, "misses", stats.Misses)
}

// languages validates and infers languages against the highlighter.
func languages() source.Languages {
	return source.Languages{
		Check:   highlight.Check,
		ForFile: highlight.LanguageForFile,
	}
}

func (r *renderer) env(events pubsub.Publisher[render.Progress], output string) render.Env {
	return render.Env{
		Tokenizer: r.highlighter,
		NewMeasurer: func() scene.Measurer {
			return canvas.NewMeasurer(r.fonts, r.widths)
		},
		NewCanvas: func(width, height int) (render.Canvas, error) {
			return canvas.New(width, height, r.fonts, r.widths), nil
		},
		NewSink: func(ctx context.Context, stream encoder.Stream) (encoder.Sink, error) {
			return encoder.Open(ctx, r.cfg.FfmpegOptions(output, stream))
		},
		AdjustSize: func(size scene.Size) scene.Size {
			if !r.format.NeedsEvenDimensions() {
				return size
			}
			size.Width, size.Height = encoder.EvenDimensions(size.Width, size.Height)
			return size
		},
		Tracer: r.tracing.Tracer(),
		Events: events,
	}
}

// render runs one pipeline, reporting progress to out. A bubbletea progress
// view is shown when out is a terminal, plain lines otherwise.
func (r *renderer) render(ctx context.Context, blocks []scene.CodeBlock, title, output string, out io.Writer) (render.Result, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	broker := pubsub.NewBroker[render.Progress]()
	defer broker.Close()
	pipeline := render.New(r.cfg.RenderOptions(), r.env(broker, output))

	if !isTerminal(out) {
		events := broker.Subscribe(ctx)
		printed := make(chan struct{})
		go func() {
			defer close(printed)
			progress.Print(ctx, out, title, events)
		}()
		result, err := pipeline.Run(runCtx, blocks)
		broker.Close()
		<-printed
		return result, err
	}

	// The model subscribes in New, so it must exist before the run starts.
	// It listens on ctx rather than runCtx to still see the Failed event
	// that follows a ctrl+c.
	model := progress.New(ctx, broker, title, cancel)
	type outcome struct {
		result render.Result
		err    error
	}
	finished := make(chan outcome, 1)
	go func() {
		result, err := pipeline.Run(runCtx, blocks)
		finished <- outcome{result, err}
	}()

	program := tea.NewProgram(model, tea.WithOutput(out), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		log.Warn(log.CatUI, "Progress view stopped", "error", err)
	}
	if m, ok := final.(progress.Model); !ok || !m.Done() {
		cancel()
	}
	o := <-finished
	return o.result, o.err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// resolveOutput defaults the output to the input's directory and name with the
// format's extension. A png sequence is written into a directory of that name.
func resolveOutput(input, output string, format encoder.Format) string {
	if output != "" {
		return output
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if format == encoder.FormatPNG {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(filepath.Dir(input), base+"."+string(format))
}
