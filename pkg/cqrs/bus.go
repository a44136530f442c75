package cqrs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

var (
	// ErrNoHandler is returned when a command type has no registered handler.
	ErrNoHandler = errors.New("no handler registered for command")

	// ErrHandlerConflict is returned when a command type has more than one
	// registered handler.
	ErrHandlerConflict = errors.New("multiple handlers registered for command")

	// ErrUnauthorized is returned when the authorizer refuses a command.
	ErrUnauthorized = errors.New("unauthorized")
)

const (
	// DefaultRetryLimit is the number of extra attempts after a
	// concurrency conflict.
	DefaultRetryLimit = 3

	// DefaultRetryBackoff is the first retry delay; it doubles per attempt.
	DefaultRetryBackoff = time.Millisecond
)

// Bus routes commands to their single handler and fans out domain events to
// their subscribers, all in-process and synchronously.
type Bus struct {
	handlers    map[string][]CommandHandler
	subscribers map[string][]EventHandler
	authorizer  Authorizer
	logger      *slog.Logger
	retryLimit  int
	backoff     time.Duration
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithAuthorizer sets the authorization policy applied before dispatch.
func WithAuthorizer(a Authorizer) BusOption {
	return func(b *Bus) { b.authorizer = a }
}

// WithLogger sets the logger used for publish failures.
func WithLogger(l *slog.Logger) BusOption {
	return func(b *Bus) { b.logger = l }
}

// WithRetry sets the concurrency conflict retry policy: limit extra
// attempts, starting at backoff and doubling each time.
func WithRetry(limit int, backoff time.Duration) BusOption {
	return func(b *Bus) {
		b.retryLimit = limit
		b.backoff = backoff
	}
}

// NewBus creates a bus with no registrations.
func NewBus(opts ...BusOption) *Bus {
	b := &Bus{
		handlers:    make(map[string][]CommandHandler),
		subscribers: make(map[string][]EventHandler),
		authorizer:  AllowAll(),
		logger:      slog.Default(),
		retryLimit:  DefaultRetryLimit,
		backoff:     DefaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RegisterHandler registers a handler for a command type. Registrations are
// not deduplicated; a second registration for the same type makes Send fail
// with ErrHandlerConflict.
func (b *Bus) RegisterHandler(commandType string, handler CommandHandler) {
	b.handlers[commandType] = append(b.handlers[commandType], handler)
}

// Subscribe registers an event handler for an event type.
func (b *Bus) Subscribe(eventType string, handler EventHandler) {
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Send authorizes and dispatches a command to its single handler.
// A handler failing with ErrConcurrencyConflict is retried with doubling
// backoff and jitter up to the configured limit; the last error is returned
// when all attempts conflict.
func (b *Bus) Send(ctx context.Context, cmd Command) error {
	handlers := b.handlers[cmd.CommandType()]
	switch {
	case len(handlers) == 0:
		return fmt.Errorf("%w: %s", ErrNoHandler, cmd.CommandType())
	case len(handlers) > 1:
		return fmt.Errorf("%w: %s", ErrHandlerConflict, cmd.CommandType())
	}

	if err := b.authorizer.Authorize(ctx, cmd); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrUnauthorized, cmd.CommandType(), err)
	}

	handler := handlers[0]
	var err error
	for attempt := 0; ; attempt++ {
		err = handler.Handle(ctx, cmd)
		if err == nil || !errors.Is(err, eventsourcing.ErrConcurrencyConflict) {
			return err
		}
		if attempt == b.retryLimit {
			return err
		}
		delay := b.backoff<<uint(attempt) + time.Duration(rand.Int63n(int64(time.Millisecond)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Publish fans a domain event out to all subscribers of its type, in
// registration order. A failing subscriber is logged and does not prevent
// later subscribers from running.
func (b *Bus) Publish(ctx context.Context, event eventsourcing.Event) {
	for _, sub := range b.subscribers[event.EventType()] {
		if err := sub.Handle(ctx, event); err != nil {
			b.logger.Error("event handler failed",
				"event_type", event.EventType(),
				"event_id", event.EventID(),
				"error", err)
		}
	}
}
