package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 64

var (
	_ Publisher[int]  = (*Broker[int])(nil)
	_ Subscriber[int] = (*Broker[int])(nil)
)

// Broker fans published events out to every subscriber.
//
// Publish never blocks the publisher: a subscriber that falls behind loses
// its oldest queued events, so the final Done or Failed event of a render is
// always delivered. The most recent event is replayed to each new subscriber,
// which lets a view attached mid-run start from the current stage.
type Broker[T any] struct {
	mu     sync.Mutex
	subs   map[int]chan Event[T]
	nextID int
	last   *Event[T]
	closed bool
	buffer int
}

// NewBroker creates a broker whose subscribers queue up to 64 events.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker whose subscribers queue up to size
// events. Sizes below one are raised to one.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:   make(map[int]chan Event[T]),
		buffer: max(1, size),
	}
}

// Subscribe returns a channel of events published from now on, preceded by
// the latest event if there is one. The channel is closed when ctx ends or
// the broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event[T], b.buffer)
	if b.closed {
		close(ch)
		return ch
	}
	if b.last != nil {
		ch <- *b.last
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	context.AfterFunc(ctx, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	})
	return ch
}

// Publish stamps and delivers an event to every subscriber. Publishing on a
// closed broker does nothing.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}

	event := Event[T]{Type: eventType, Payload: payload, Timestamp: time.Now()}
	b.last = &event
	for _, sub := range b.subs {
		select {
		case sub <- event:
			continue
		default:
		}
		// Full: discard the oldest queued event. Publish holds the lock, so
		// the slot stays free for the send below.
		select {
		case <-sub:
		default:
		}
		sub <- event
	}
}

// Close closes every subscriber channel. Queued events can still be drained.
// Close is idempotent.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		close(sub)
	}
}

// SubscriberCount returns the number of open subscriptions.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
