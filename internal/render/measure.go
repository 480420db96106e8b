package render

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/adelrodriguez/sakuga/internal/log"
	"github.com/adelrodriguez/sakuga/internal/scene"
	"github.com/adelrodriguez/sakuga/internal/tracing"
)

// measurerPool hands out at most one measurer per running worker and reuses
// them across blocks.
type measurerPool struct {
	idle  chan scene.Measurer
	newFn func() scene.Measurer
}

func newMeasurerPool(size int, newMeasurer func() scene.Measurer) *measurerPool {
	return &measurerPool{idle: make(chan scene.Measurer, size), newFn: newMeasurer}
}

func (p *measurerPool) get() scene.Measurer {
	select {
	case m := <-p.idle:
		return m
	default:
		return p.newFn()
	}
}

func (p *measurerPool) put(m scene.Measurer) {
	select {
	case p.idle <- m:
	default:
	}
}

// MeasureScenes measures blocks with at most concurrency workers, each using a
// private measurer from newMeasurer. Results keep block order. The first
// failure cancels the remaining blocks and is returned as an *Error.
func MeasureScenes(
	ctx context.Context,
	tracer trace.Tracer,
	opts scene.Options,
	tokenizer scene.Tokenizer,
	blocks []scene.CodeBlock,
	newMeasurer func() scene.Measurer,
	concurrency int,
) ([]scene.Measured, error) {
	concurrency = max(1, concurrency)
	measured := make([]scene.Measured, len(blocks))
	pool := newMeasurerPool(concurrency, newMeasurer)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, block := range blocks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			_, span := tracer.Start(gctx, tracing.SpanMeasure, trace.WithAttributes(
				attribute.Int(tracing.AttrBlockIndex, i),
				attribute.String(tracing.AttrBlockLanguage, block.Language),
				attribute.String(tracing.AttrBlockOrigin, block.Origin),
			))
			defer span.End()

			m := pool.get()
			defer pool.put(m)

			result, err := scene.Measure(opts, tokenizer, block, m)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "measure failed")
				log.ErrorErr(log.CatMeasure, "Block measurement failed", err,
					"block", i, "origin", block.Origin, "language", block.Language)
				return &Error{
					Stage:  StageMeasure,
					Kind:   scene.ErrSceneMeasure,
					Block:  i,
					Origin: block.Origin,
					Frame:  -1,
					Err:    err,
				}
			}

			log.Debug(log.CatMeasure, "Measured block",
				"block", i, "lines", len(result.Lines),
				"width", result.BlockWidth, "height", result.BlockHeight)
			measured[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return measured, nil
}
