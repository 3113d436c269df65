package events

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrBusClosed is returned by Publish after Close.
var ErrBusClosed = errors.New("event bus closed")

// localAttempts bounds redelivery of a failing event on the local bus.
const localAttempts = 3

// LocalBus delivers events to a handler on a background goroutine, for
// single-process deployments. Publish never waits for the handler.
type LocalBus struct {
	handler Handler
	events  chan CleanupEvent
	done    chan struct{}
	backoff time.Duration

	mu     sync.RWMutex
	closed bool
}

// NewLocalBus starts the delivery goroutine. buffer bounds the number of
// pending events before Publish blocks.
func NewLocalBus(handler Handler, buffer int) *LocalBus {
	b := &LocalBus{
		handler: handler,
		events:  make(chan CleanupEvent, buffer),
		done:    make(chan struct{}),
		backoff: 200 * time.Millisecond,
	}
	go b.loop()
	return b
}

func (b *LocalBus) Publish(ctx context.Context, ev CleanupEvent) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBusClosed
	}

	select {
	case b.events <- ev:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting events and waits for pending ones to be handled.
func (b *LocalBus) Close() {
	b.mu.Lock()
	if !b.closed {
		b.closed = true
		close(b.events)
	}
	b.mu.Unlock()
	<-b.done
}

func (b *LocalBus) loop() {
	defer close(b.done)
	for ev := range b.events {
		b.deliver(ev)
	}
}

func (b *LocalBus) deliver(ev CleanupEvent) {
	wait := b.backoff
	for attempt := 1; ; attempt++ {
		err := b.handler(context.Background(), ev)
		if err == nil {
			return
		}
		if attempt == localAttempts {
			slog.Error("dropping cleanup event", "images", ev.Keys(), "attempts", attempt, "error", err)
			return
		}
		slog.Warn("cleanup event failed, retrying", "attempt", attempt, "error", err)
		time.Sleep(wait)
		wait *= 2
	}
}
