package progress

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/adelrodriguez/sakuga/internal/pubsub"
	"github.com/adelrodriguez/sakuga/internal/render"
)

// closedMsg reports that the event stream ended before the render finished.
type closedMsg struct{}

// listener feeds render events into the update loop one at a time. The
// subscription closes when ctx ends or the broker is closed.
type listener struct {
	events <-chan pubsub.Event[render.Progress]
}

func subscribe(ctx context.Context, broker pubsub.Subscriber[render.Progress]) listener {
	return listener{events: broker.Subscribe(ctx)}
}

// next waits for the following event. Update must call it again after each
// event it handles.
func (l listener) next() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-l.events
		if !ok {
			return closedMsg{}
		}
		return event
	}
}
