package audit

import (
	"context"
	"log/slog"
	"time"
)

// Sink delivers audit events to their destination.
type Sink interface {
	Deliver(ctx context.Context, event Event) error
	Close(ctx context.Context) error
}

// Publisher decouples emitters from the sink with a buffered inbox and a
// single worker goroutine. Emit never blocks the caller: when the inbox is
// full the event is dropped and counted, which is preferable to stalling a
// settlement chain on a slow broker.
type Publisher struct {
	sink   Sink
	inbox  chan Event
	done   chan struct{}
	logger *slog.Logger
}

func NewPublisher(sink Sink, logger *slog.Logger) *Publisher {
	p := &Publisher{
		sink:   sink,
		inbox:  make(chan Event, 256),
		done:   make(chan struct{}),
		logger: logger,
	}
	go p.run()
	return p
}

// Emit queues an event for delivery.
func (p *Publisher) Emit(event Event) {
	if p == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case p.inbox <- event:
	default:
		p.logger.Warn("audit inbox full, dropping event", "action", event.Action, "subject", event.Subject)
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.inbox {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := p.sink.Deliver(ctx, event); err != nil {
			p.logger.Warn("audit delivery failed",
				"action", event.Action, "subject", event.Subject, "error", err)
		}
		cancel()
	}
}

// Close drains the inbox, waits for the worker and closes the sink.
func (p *Publisher) Close(ctx context.Context) error {
	if p == nil {
		return nil
	}
	close(p.inbox)
	select {
	case <-p.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return p.sink.Close(ctx)
}
