package events

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// EventHandler handles a published event.
type EventHandler func(context.Context, Event) error

// Dispatcher interface allows event publication/subscription.
type Dispatcher interface {
	// Publish never blocks; it reports false when the event was dropped.
	Publish(ctx context.Context, event Event) bool
	Subscribe(eventType EventType, handler EventHandler)
}

// AsyncDispatcher queues events on a bounded buffer drained by Run.
type AsyncDispatcher struct {
	mu        sync.RWMutex
	listeners map[EventType][]EventHandler
	queue     chan Event
	dropped   atomic.Int64
	onError   func(Event, error)
}

// NewAsyncDispatcher creates a dispatcher with the given buffer size.
func NewAsyncDispatcher(buffer int, onError func(Event, error)) *AsyncDispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	if onError == nil {
		onError = func(Event, error) {}
	}
	return &AsyncDispatcher{
		listeners: make(map[EventType][]EventHandler),
		queue:     make(chan Event, buffer),
		onError:   onError,
	}
}

// Publish enqueues the event, dropping it when the buffer is full.
func (d *AsyncDispatcher) Publish(_ context.Context, event Event) bool {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	select {
	case d.queue <- event:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// Subscribe registers a handler for the given event type.
func (d *AsyncDispatcher) Subscribe(eventType EventType, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[eventType] = append(d.listeners[eventType], handler)
}

// Dropped reports how many events were discarded because the buffer was full.
func (d *AsyncDispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Run delivers queued events until ctx is done, then drains what is left.
func (d *AsyncDispatcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			d.drain()
			return
		case event := <-d.queue:
			d.deliver(context.WithoutCancel(ctx), event)
		}
	}
}

func (d *AsyncDispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.deliver(context.Background(), event)
		default:
			return
		}
	}
}

func (d *AsyncDispatcher) deliver(ctx context.Context, event Event) {
	d.mu.RLock()
	handlers := append([]EventHandler{}, d.listeners[event.Type]...)
	d.mu.RUnlock()

	for _, handler := range handlers {
		// one failing sink must not starve the others
		if err := handler(ctx, event); err != nil {
			d.onError(event, err)
		}
	}
}

// NopDispatcher discards every event.
type NopDispatcher struct{}

func (NopDispatcher) Publish(context.Context, Event) bool { return true }

func (NopDispatcher) Subscribe(EventType, EventHandler) {}
