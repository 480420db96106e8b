package progress

import (
	"context"
	"fmt"
	"io"

	"github.com/adelrodriguez/sakuga/internal/pubsub"
	"github.com/adelrodriguez/sakuga/internal/render"
)

// Print writes one line per stage and per tenth of the encoded frames until
// the render finishes. It is the fallback when stdout is not a terminal.
func Print(ctx context.Context, w io.Writer, title string, events <-chan pubsub.Event[render.Progress]) {
	lastDecile := -1
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			p := event.Payload
			switch event.Type {
			case pubsub.StageEvent:
				_, _ = fmt.Fprintf(w, "%s: %s\n", title, stageLabel(p.Stage))
			case pubsub.ProgressEvent:
				if p.Total <= 0 {
					continue
				}
				decile := p.Frame * 10 / p.Total
				if decile != lastDecile {
					lastDecile = decile
					_, _ = fmt.Fprintf(w, "%s: %d/%d frames (%d%%)\n", title, p.Frame, p.Total, p.Frame*100/p.Total)
				}
			case pubsub.DoneEvent:
				_, _ = fmt.Fprintf(w, "%s: rendered %s\n", title, p.Output)
				return
			case pubsub.FailedEvent:
				_, _ = fmt.Fprintf(w, "%s: failed during %s: %v\n", title, p.Stage, p.Err)
				return
			}
		}
	}
}
