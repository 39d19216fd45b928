package publisher

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	audit "github.com/marcelarangelrhellorh/rhelloflow/pkg/platform/audit"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/requestcontext"
)

// Publisher captures structured audit events. It is append-only and uses the
// storage layer for persistence so tests can swap sinks easily.
//
// In sync mode Emit appends before returning. With WithAsyncBuffer events are
// queued to a background goroutine; a full buffer falls back to a synchronous
// append so events are never dropped on the floor.
type Publisher struct {
	store  audit.Store
	sink   audit.Sink
	logger *slog.Logger

	inbox  chan audit.Event
	done   chan struct{}
	closed bool
}

type Option func(p *Publisher)

// WithAsyncBuffer enables buffered background persistence with the given
// queue size.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		p.inbox = make(chan audit.Event, size)
	}
}

// WithSink tees every emitted event to an external sink (e.g. Kafka).
func WithSink(sink audit.Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

// WithLogger sets the logger used to report persistence failures in async mode.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store, done: make(chan struct{})}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.inbox != nil {
		go p.drain()
	} else {
		close(p.done)
	}
	return p
}

// Emit records an audit event. The event ID and timestamp are assigned here
// when unset; timestamps are server-assigned, never taken from callers.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}

	if p.sink != nil {
		if err := p.sink.Publish(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", string(event.Action),
				"error", err,
			)
		}
	}

	if p.inbox != nil && !p.closed {
		select {
		case p.inbox <- event:
			return nil
		default:
			// Buffer full: degrade to a synchronous append.
		}
	}
	return p.store.Append(ctx, event)
}

// List returns the audit history of a resource, oldest first.
func (p *Publisher) List(ctx context.Context, rt domain.ResourceType, resourceID string) ([]audit.Event, error) {
	return p.store.ListByResource(ctx, rt, resourceID)
}

// Close stops the background drain and flushes queued events.
func (p *Publisher) Close() {
	if p.inbox == nil || p.closed {
		return
	}
	p.closed = true
	close(p.inbox)
	<-p.done
}

func (p *Publisher) drain() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.store.Append(context.Background(), event); err != nil {
			p.logger.Warn("async audit append failed",
				"action", string(event.Action),
				"error", err,
			)
		}
	}
}
