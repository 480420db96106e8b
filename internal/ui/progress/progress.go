// Package progress shows a running render in the terminal: a spinner while
// scenes are measured and a progress bar while frames are encoded.
package progress

import (
	"context"
	"fmt"
	"strings"

	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/adelrodriguez/sakuga/internal/pubsub"
	"github.com/adelrodriguez/sakuga/internal/render"
	"github.com/adelrodriguez/sakuga/internal/ui/styles"
)

const maxBarWidth = 60

// Model is the Bubble Tea model for one render.
type Model struct {
	events listener
	cancel context.CancelFunc

	bar     bar.Model
	spinner spinner.Model
	title   string
	width   int

	stage       render.Stage
	frame       int
	total       int
	output      string
	err         error
	done        bool
	interrupted bool
}

// New creates a model listening to broker until ctx ends or the broker is
// closed. cancel stops the render when the user presses ctrl+c; it may be nil.
// ctx should outlive the render so its Failed event still arrives after
// cancel.
func New(ctx context.Context, broker pubsub.Subscriber[render.Progress], title string, cancel context.CancelFunc) Model {
	return Model{
		events: subscribe(ctx, broker),
		cancel: cancel,
		bar: bar.New(
			bar.WithGradient(styles.ProgressStartColor, styles.ProgressEndColor),
			bar.WithWidth(40),
		),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(styles.MutedStyle),
		),
		title: title,
		stage: render.StageValidate,
	}
}

// Init starts the spinner and the event subscription.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.events.next())
}

// Update handles render events, keys and resizes.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pubsub.Event[render.Progress]:
		return m.handleEvent(msg)

	case closedMsg:
		// The stream ended without a result; the caller stops the render.
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.done {
				return m, tea.Quit
			}
			// Keep listening: the render reports its own cancellation.
			m.interrupted = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = max(10, min(maxBarWidth, msg.Width-24))
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleEvent(event pubsub.Event[render.Progress]) (tea.Model, tea.Cmd) {
	p := event.Payload
	switch event.Type {
	case pubsub.StageEvent:
		m.stage = p.Stage
	case pubsub.ProgressEvent:
		m.stage = p.Stage
		m.frame = p.Frame
		m.total = p.Total
	case pubsub.DoneEvent:
		m.done = true
		m.output = p.Output
		if p.Total > 0 {
			m.frame, m.total = p.Total, p.Total
		}
		return m, tea.Quit
	case pubsub.FailedEvent:
		m.done = true
		m.err = p.Err
		if p.Stage != "" {
			m.stage = p.Stage
		}
		return m, tea.Quit
	}
	return m, m.events.next()
}

// View renders the current state.
func (m Model) View() string {
	var b strings.Builder

	switch {
	case m.err != nil && m.interrupted:
		b.WriteString(styles.WarningStyle.Render("■ Render cancelled"))
		b.WriteString(" " + styles.MutedStyle.Render(m.title))
	case m.err != nil:
		b.WriteString(styles.ErrorStyle.Render("✗ Render failed"))
		b.WriteString(" " + styles.MutedStyle.Render("during "+string(m.stage)))
		msg := m.err.Error()
		if m.width > 0 {
			msg = styles.TruncateString(msg, max(10, m.width-2))
		}
		b.WriteString("\n  " + msg)
	case m.done:
		b.WriteString(styles.SuccessStyle.Render("✓ Rendered"))
		b.WriteString(" " + styles.TitleStyle.Render(m.title))
		if m.output != "" {
			b.WriteString(styles.MutedStyle.Render(" → " + m.truncate(m.output)))
		}
	default:
		b.WriteString(m.spinner.View() + " ")
		b.WriteString(styles.TitleStyle.Render(m.title))
		b.WriteString("\n  " + styles.MutedStyle.Render(fmt.Sprintf("%-9s", stageLabel(m.stage))))
		if m.total > 0 {
			b.WriteString(" " + m.bar.ViewAs(m.Percent()))
			b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("  %d/%d frames", m.frame, m.total)))
		}
	}

	b.WriteString("\n")
	return b.String()
}

func (m Model) truncate(path string) string {
	if m.width <= 0 {
		return path
	}
	return styles.TruncatePath(path, max(12, m.width-lipgloss.Width(m.title)-16))
}

// Percent returns the fraction of frames delivered.
func (m Model) Percent() float64 {
	if m.total <= 0 {
		return 0
	}
	return min(1, float64(m.frame)/float64(m.total))
}

// Result returns the output path of a finished render or the error that
// stopped it.
func (m Model) Result() (string, error) {
	return m.output, m.err
}

// Done reports whether the render finished, successfully or not.
func (m Model) Done() bool {
	return m.done
}

func stageLabel(stage render.Stage) string {
	switch stage {
	case render.StageValidate:
		return "starting"
	case render.StageMeasure:
		return "measuring"
	case render.StageLayout:
		return "layout"
	case render.StageEncode:
		return "encoding"
	case render.StageFinalize:
		return "finishing"
	default:
		return string(stage)
	}
}
