package progress

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/stretchr/testify/require"

	"github.com/adelrodriguez/sakuga/internal/pubsub"
	"github.com/adelrodriguez/sakuga/internal/render"
)

func event(t pubsub.EventType, p render.Progress) pubsub.Event[render.Progress] {
	return pubsub.Event[render.Progress]{Type: t, Payload: p, Timestamp: time.Now()}
}

func newModel(t *testing.T) (Model, *pubsub.Broker[render.Progress], *bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	broker := pubsub.NewBroker[render.Progress]()
	t.Cleanup(broker.Close)

	cancelled := false
	m := New(ctx, broker, "slides.md", func() { cancelled = true })
	return m, broker, &cancelled
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func TestModel_Progress(t *testing.T) {
	m, _, _ := newModel(t)

	m, cmd := update(t, m, event(pubsub.StageEvent, render.Progress{Stage: render.StageMeasure}))
	require.NotNil(t, cmd, "keeps listening")
	require.Contains(t, m.View(), "measuring")
	require.NotContains(t, m.View(), "frames")

	m, _ = update(t, m, event(pubsub.ProgressEvent, render.Progress{Stage: render.StageEncode, Frame: 30, Total: 120}))
	require.InDelta(t, 0.25, m.Percent(), 1e-9)
	view := m.View()
	require.Contains(t, view, "encoding")
	require.Contains(t, view, "30/120 frames")
	require.Contains(t, view, "slides.md")
	require.False(t, m.Done())
}

func TestModel_Done(t *testing.T) {
	m, _, _ := newModel(t)

	m, cmd := update(t, m, event(pubsub.DoneEvent, render.Progress{Stage: render.StageFinalize, Total: 6, Frame: 6, Output: "out/slides.mp4"}))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.True(t, m.Done())
	require.Equal(t, 1.0, m.Percent())

	output, err := m.Result()
	require.NoError(t, err)
	require.Equal(t, "out/slides.mp4", output)
	require.Contains(t, m.View(), "Rendered")
	require.Contains(t, m.View(), "out/slides.mp4")
}

func TestModel_Failed(t *testing.T) {
	m, _, _ := newModel(t)
	boom := errors.New("pipe closed")

	m, cmd := update(t, m, event(pubsub.FailedEvent, render.Progress{Stage: render.StageEncode, Err: boom}))
	require.IsType(t, tea.QuitMsg{}, cmd())

	_, err := m.Result()
	require.ErrorIs(t, err, boom)
	view := m.View()
	require.Contains(t, view, "Render failed")
	require.Contains(t, view, "during encode")
	require.Contains(t, view, "pipe closed")
}

func TestModel_CtrlCCancelsRender(t *testing.T) {
	m, _, cancelled := newModel(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.Nil(t, cmd, "waits for the render to report cancellation")
	require.True(t, *cancelled)

	m, _ = update(t, m, event(pubsub.FailedEvent, render.Progress{Stage: render.StageEncode, Err: context.Canceled}))
	require.Contains(t, m.View(), "Render cancelled")

	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModel_WindowSize(t *testing.T) {
	m, _, _ := newModel(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	require.Equal(t, maxBarWidth, m.bar.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 20, Height: 40})
	require.Equal(t, 10, m.bar.Width)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 40, Height: 40})
	m, _ = update(t, m, event(pubsub.DoneEvent, render.Progress{Output: "/very/long/path/to/the/rendered/output/slides.mp4"}))
	require.Contains(t, m.View(), "slides.mp4")
	require.NotContains(t, m.View(), "/very/long")
}

func TestModel_FailedTruncatesLongErrors(t *testing.T) {
	m, _, _ := newModel(t)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 30, Height: 10})
	long := errors.New("ffmpeg exited: " + strings.Repeat("x", 200))

	m, _ = update(t, m, event(pubsub.FailedEvent, render.Progress{Stage: render.StageFinalize, Err: long}))
	lines := strings.Split(strings.TrimRight(m.View(), "\n"), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasSuffix(lines[1], "..."))
	require.LessOrEqual(t, len(lines[1]), 30)
}

func TestModel_StreamClosed(t *testing.T) {
	m, broker, _ := newModel(t)
	broker.Close()

	msg := m.events.next()()
	require.IsType(t, closedMsg{}, msg)
	m, cmd := update(t, m, msg)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.False(t, m.Done())
}

func TestModel_AttachesMidRun(t *testing.T) {
	broker := pubsub.NewBroker[render.Progress]()
	t.Cleanup(broker.Close)
	broker.Publish(pubsub.StageEvent, render.Progress{Stage: render.StageLayout})

	m := New(context.Background(), broker, "slides.md", nil)
	m, _ = update(t, m, m.events.next()())
	require.Contains(t, m.View(), "layout")
}

func TestModel_Program(t *testing.T) {
	m, broker, _ := newModel(t)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	broker.Publish(pubsub.StageEvent, render.Progress{Stage: render.StageEncode})
	for i := 1; i <= 4; i++ {
		broker.Publish(pubsub.ProgressEvent, render.Progress{Stage: render.StageEncode, Frame: i, Total: 4})
	}
	broker.Publish(pubsub.DoneEvent, render.Progress{Stage: render.StageFinalize, Frame: 4, Total: 4, Output: "slides.mp4"})

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Rendered"))
	}, teatest.WithDuration(3*time.Second))

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.True(t, ok)
	output, err := final.Result()
	require.NoError(t, err)
	require.Equal(t, "slides.mp4", output)
}

func TestPrint(t *testing.T) {
	events := make(chan pubsub.Event[render.Progress], 32)
	events <- event(pubsub.StageEvent, render.Progress{Stage: render.StageMeasure})
	for i := 1; i <= 20; i++ {
		events <- event(pubsub.ProgressEvent, render.Progress{Stage: render.StageEncode, Frame: i, Total: 20})
	}
	events <- event(pubsub.DoneEvent, render.Progress{Output: "slides.mp4"})

	var out bytes.Buffer
	Print(context.Background(), &out, "slides.md", events)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Equal(t, "slides.md: measuring", lines[0])
	require.Equal(t, "slides.md: 1/20 frames (5%)", lines[1])
	require.Equal(t, "slides.md: 20/20 frames (100%)", lines[len(lines)-2])
	require.Equal(t, "slides.md: rendered slides.mp4", lines[len(lines)-1])
	// one line per decile
	require.Len(t, lines, 1+11+1)
}

func TestPrint_Failed(t *testing.T) {
	events := make(chan pubsub.Event[render.Progress], 1)
	events <- event(pubsub.FailedEvent, render.Progress{Stage: render.StageLayout, Err: errors.New("boom")})

	var out bytes.Buffer
	Print(context.Background(), &out, "story.yaml", events)
	require.Equal(t, "story.yaml: failed during layout: boom\n", out.String())
}
