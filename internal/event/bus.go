// Package event provides the asynchronous event bus that decouples
// notification delivery from the transactional workflow operations.
// Workflow services publish an event after their write commits; the
// notification dispatcher consumes it outside the transactional boundary,
// so a mail-provider outage can never roll back a state change.
package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobhive/jobhive/internal/logging/logger"
)

// Type defines event types in the application.
type Type string

const (
	// Application workflow events
	TypeApplicationReceived      Type = "application.received"
	TypeApplicationStatusChanged Type = "application.status_changed"

	// Posting lifecycle events
	TypeJobPublished Type = "job.published"

	// Payment workflow events
	TypePaymentFailed Type = "payment.failed"
)

// Event represents a domain event in the system.
type Event struct {
	ID        string         `json:"id"`
	Type      Type           `json:"type"`
	Payload   map[string]any `json:"payload"`
	Timestamp time.Time      `json:"timestamp"`
}

// PayloadString extracts a string payload field, or "" when absent.
func (e *Event) PayloadString(key string) string {
	if v, ok := e.Payload[key].(string); ok {
		return v
	}
	return ""
}

// Handler defines the event handler function type.
type Handler func(ctx context.Context, event *Event) error

// Bus is an in-process asynchronous event bus. Its lifetime is controlled
// by Start and Shutdown; workers keep consuming after the Start context is
// cancelled so that events queued at shutdown still get delivered.
type Bus struct {
	handlers map[Type][]Handler
	buffer   chan *Event
	mu       sync.RWMutex
	logger   *logger.Logger
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// NewBus creates a new event bus.
func NewBus(bufferSize int, log *logger.Logger) *Bus {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &Bus{
		handlers: make(map[Type][]Handler),
		buffer:   make(chan *Event, bufferSize),
		logger:   log,
		stop:     make(chan struct{}),
	}
}

// Subscribe subscribes a handler to an event type.
func (b *Bus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Publish publishes an event to the bus. It never blocks the caller for
// longer than the buffer timeout; a full buffer is reported as an error and
// the triggering operation proceeds regardless.
func (b *Bus) Publish(ctx context.Context, event *Event) error {
	event.Timestamp = time.Now().UTC()
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	select {
	case b.buffer <- event:
		b.logger.Debug(ctx, "event published", "type", event.Type, "id", event.ID)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Second):
		return fmt.Errorf("event buffer full, timeout publishing event %s", event.Type)
	}
}

// Start starts the event bus workers. They run until Shutdown, not until
// ctx is cancelled.
func (b *Bus) Start(ctx context.Context, numWorkers int) {
	if numWorkers <= 0 {
		numWorkers = 2
	}
	for i := 0; i < numWorkers; i++ {
		b.wg.Add(1)
		go b.worker()
	}
	b.logger.Info(ctx, "event bus started", "workers", numWorkers)
}

func (b *Bus) worker() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.buffer:
			b.dispatch(event)
		case <-b.stop:
			// Drain whatever is still queued before exiting.
			for {
				select {
				case event := <-b.buffer:
					b.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

// dispatch runs every subscribed handler. Handler failures are logged and
// swallowed: delivery is best effort by contract. The handler context is
// independent of the Start context so drain-time deliveries still work.
func (b *Bus) dispatch(event *Event) {
	b.mu.RLock()
	handlers := b.handlers[event.Type]
	b.mu.RUnlock()

	for _, handler := range handlers {
		handlerCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := handler(handlerCtx, event); err != nil {
			b.logger.Error(handlerCtx, "event handler failed",
				"type", event.Type, "id", event.ID, "error", err)
		}
		cancel()
	}
}

// Shutdown signals the workers to drain and waits for them, bounded by the
// given context. Safe to call more than once.
func (b *Bus) Shutdown(ctx context.Context) error {
	b.stopOnce.Do(func() { close(b.stop) })

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		if remaining := len(b.buffer); remaining > 0 {
			return fmt.Errorf("shutdown with %d events remaining", remaining)
		}
		return fmt.Errorf("shutdown timed out waiting for handlers: %w", ctx.Err())
	}
}
