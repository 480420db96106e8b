// Package pubsub provides a generic publish/subscribe event system. The
// renderer publishes its progress through it and the terminal UI listens.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// StageEvent marks the start of a pipeline stage.
	StageEvent EventType = "stage"
	// ProgressEvent reports frames delivered so far.
	ProgressEvent EventType = "progress"
	// DoneEvent carries the finished output.
	DoneEvent EventType = "done"
	// FailedEvent carries the error that stopped a run.
	FailedEvent EventType = "failed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
