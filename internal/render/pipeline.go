package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adelrodriguez/sakuga/internal/encoder"
	"github.com/adelrodriguez/sakuga/internal/frames"
	"github.com/adelrodriguez/sakuga/internal/log"
	"github.com/adelrodriguez/sakuga/internal/pubsub"
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/tracing"
)

// Env supplies the collaborators a Pipeline renders with. Tokenizer,
// NewMeasurer, NewCanvas and NewSink are required.
type Env struct {
	Tokenizer scene.Tokenizer
	// NewMeasurer is called once per measurement worker.
	NewMeasurer func() scene.Measurer
	NewCanvas   func(width, height int) (Canvas, error)
	NewSink     func(ctx context.Context, stream encoder.Stream) (encoder.Sink, error)
	// AdjustSize may grow the resolved frame size, e.g. to even dimensions.
	AdjustSize func(scene.Size) scene.Size
	Tracer     trace.Tracer
	Events     pubsub.Publisher[Progress]
}

// Progress is the payload of pipeline events.
type Progress struct {
	RunID  string
	Stage  Stage
	Frame  int
	Total  int
	Output string
	Err    error
}

// Result describes a finished render.
type Result struct {
	RunID  string
	Output string
	Size   scene.Size
	Counts frames.Counts
	Frames int
}

// Pipeline renders code blocks into a sink. A Pipeline may be reused for
// several runs but not concurrently.
type Pipeline struct {
	opts Options
	env  Env
}

// New creates a pipeline.
func New(opts Options, env Env) *Pipeline {
	if env.Tracer == nil {
		env.Tracer = noop.NewTracerProvider().Tracer("")
	}
	return &Pipeline{opts: opts, env: env}
}

// Run validates the options, measures every block, sizes and lays out the
// scenes and streams the frames into a new sink. A frame is painted only after
// the previous one was accepted by the sink. Any failure or cancellation stops
// the run and aborts the sink.
func (p *Pipeline) Run(ctx context.Context, blocks []scene.CodeBlock) (Result, error) {
	runID := tracing.NewRunID()
	ctx = tracing.ContextWithRunID(ctx, runID)
	ctx, span := p.env.Tracer.Start(ctx, tracing.SpanRender, trace.WithAttributes(
		attribute.String(tracing.AttrRunID, runID),
		attribute.Int(tracing.AttrBlockCount, len(blocks)),
	))
	defer span.End()

	log.Info(log.CatRender, "Render started", "run_id", runID, "blocks", len(blocks))

	result, err := p.run(ctx, span, runID, blocks)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render failed")
		failed := Progress{RunID: runID, Frame: result.Frames, Err: err}
		var rerr *Error
		if errors.As(err, &rerr) {
			failed.Stage = rerr.Stage
			span.SetAttributes(attribute.String(tracing.AttrErrorStage, string(rerr.Stage)))
		}
		log.ErrorErr(log.CatRender, "Render failed", err, "run_id", runID)
		p.publish(pubsub.FailedEvent, failed)
		return result, err
	}

	span.SetAttributes(attribute.String(tracing.AttrOutput, result.Output))
	log.Info(log.CatRender, "Render finished", "run_id", runID, "output", result.Output, "frames", result.Frames)
	p.publish(pubsub.DoneEvent, Progress{
		RunID:  runID,
		Stage:  StageFinalize,
		Frame:  result.Frames,
		Total:  result.Frames,
		Output: result.Output,
	})
	return result, nil
}

func (p *Pipeline) run(ctx context.Context, span trace.Span, runID string, blocks []scene.CodeBlock) (Result, error) {
	result := Result{RunID: runID}

	if err := p.opts.Validate(); err != nil {
		return result, err
	}
	if len(blocks) == 0 {
		return result, stageError(StageValidate, ErrInvalidConfig, errors.New("no code blocks to render"))
	}

	p.stage(runID, StageMeasure)
	start := time.Now()
	measured, err := MeasureScenes(ctx, p.env.Tracer, p.opts.Scene, p.env.Tokenizer, blocks,
		p.env.NewMeasurer, p.opts.concurrency())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return result, ctxErr
		}
		return result, err
	}
	span.AddEvent(tracing.EventScenesMeasured)
	log.Elapsed(log.CatMeasure, "Measured scenes", start, "run_id", runID, "blocks", len(blocks))

	p.stage(runID, StageLayout)
	size := scene.ResolveFrameSize(measured, p.opts.MinWidth, p.opts.MinHeight)
	if p.env.AdjustSize != nil {
		size = p.env.AdjustSize(size)
	}
	result.Size = size
	span.AddEvent(tracing.EventFrameSized, trace.WithAttributes(
		attribute.Int(tracing.AttrFrameWidth, size.Width),
		attribute.Int(tracing.AttrFrameHeight, size.Height),
	))

	scenes := make([]scene.Scene, len(measured))
	for i, m := range measured {
		scenes[i] = scene.Layout(p.opts.Scene, m, size.Width, size.Height)
		if log.Enabled(log.LevelDebug) {
			log.Debug(log.CatRender, "Scene laid out", "run_id", runID, "scene", i,
				"x", scenes[i].BlockX, "y", scenes[i].BlockY, "background", m.Background.Hex())
		}
	}

	counts := p.opts.Counts()
	result.Counts = counts
	log.Debug(log.CatRender, "Frame plan",
		"width", size.Width, "height", size.Height,
		"block_frames", counts.BlockFrames, "transition_frames", counts.TransitionFrames,
		"total", counts.Total(len(scenes)))

	canvas, err := p.env.NewCanvas(size.Width, size.Height)
	if err != nil {
		return result, stageError(StageLayout, ErrEncode, fmt.Errorf("create canvas: %w", err))
	}

	sink, err := p.env.NewSink(ctx, encoder.Stream{
		Width:         size.Width,
		Height:        size.Height,
		FPS:           p.opts.FPS,
		FrameDuration: counts.FrameDuration,
	})
	if err != nil {
		return result, stageError(StageEncode, ErrEncode, err)
	}
	span.AddEvent(tracing.EventSinkOpened)

	output, delivered, err := p.encode(ctx, runID, canvas, sink, scenes, counts)
	result.Frames = delivered
	if err != nil {
		sink.Abort()
		span.AddEvent(tracing.EventAborted, trace.WithAttributes(attribute.Int(tracing.AttrFrameCount, delivered)))
		log.Warn(log.CatEncode, "Sink aborted", "run_id", runID, "delivered", delivered)
		return result, err
	}
	result.Output = output
	return result, nil
}

// encode is the only stage that touches the canvas and the sink. It returns
// the output path and how many frames the sink accepted.
func (p *Pipeline) encode(
	ctx context.Context,
	runID string,
	canvas Canvas,
	sink encoder.Sink,
	scenes []scene.Scene,
	counts frames.Counts,
) (string, int, error) {
	total := counts.Total(len(scenes))
	ctx, span := p.env.Tracer.Start(ctx, tracing.SpanEncode, trace.WithAttributes(
		attribute.Int(tracing.AttrFrameCount, total),
		attribute.Int(tracing.AttrBlockFrames, counts.BlockFrames),
		attribute.Int(tracing.AttrTransitionFrames, counts.TransitionFrames),
	))
	defer span.End()

	p.stage(runID, StageEncode)
	start := time.Now()
	index := 0
	for frame := range frames.Generate(scenes, counts, p.opts.Drift) {
		if err := ctx.Err(); err != nil {
			return "", index, err
		}
		if err := PaintFrame(canvas, frame, p.opts.FontSize); err != nil {
			return "", index, p.frameError(index, err)
		}
		sample := encoder.Sample{
			Pixels:    canvas.Pixels(),
			Width:     canvas.Width(),
			Height:    canvas.Height(),
			Index:     index,
			Timestamp: counts.Timestamp(index),
			Duration:  counts.FrameDuration,
		}
		if err := sink.WriteFrame(ctx, sample); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", index, ctxErr
			}
			return "", index, p.frameError(index, err)
		}
		index++
		p.publish(pubsub.ProgressEvent, Progress{RunID: runID, Stage: StageEncode, Frame: index, Total: total})
	}

	log.Elapsed(log.CatEncode, "Painted frames", start, "run_id", runID, "frames", index)

	p.stage(runID, StageFinalize)
	fctx, fspan := p.env.Tracer.Start(ctx, tracing.SpanFinalize)
	output, err := sink.Finalize(fctx)
	fspan.End()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", index, ctxErr
		}
		return "", index, stageError(StageFinalize, ErrEncode, err)
	}
	return output, index, nil
}

func (p *Pipeline) frameError(index int, err error) *Error {
	e := stageError(StageEncode, ErrEncode, err)
	e.Frame = index
	return e
}

func (p *Pipeline) stage(runID string, stage Stage) {
	log.Debug(log.CatRender, "Stage", "run_id", runID, "stage", stage)
	p.publish(pubsub.StageEvent, Progress{RunID: runID, Stage: stage})
}

func (p *Pipeline) publish(eventType pubsub.EventType, progress Progress) {
	if p.env.Events != nil {
		p.env.Events.Publish(eventType, progress)
	}
}
