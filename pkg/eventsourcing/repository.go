package eventsourcing

import (
	"context"
	"fmt"
)

// Repository loads and saves one kind of aggregate against an event store.
type Repository[T Aggregate] struct {
	store    EventStore
	streamID func(id string) string
	factory  func() T
}

// NewRepository creates a repository for an aggregate kind.
// streamID maps an aggregate id to its stream id (e.g. "club-<id>"),
// factory creates an empty aggregate instance ready for replay.
func NewRepository[T Aggregate](store EventStore, streamID func(id string) string, factory func() T) *Repository[T] {
	return &Repository[T]{store: store, streamID: streamID, factory: factory}
}

// Get rebuilds an aggregate from its stream.
// Returns ErrAggregateNotFound when the stream is empty.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	events, err := r.store.ReadStream(ctx, r.streamID(id))
	if err != nil {
		return zero, fmt.Errorf("read stream: %w", err)
	}
	if len(events) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrAggregateNotFound, r.streamID(id))
	}
	return r.replay(events)
}

// GetOrNew rebuilds an aggregate from its stream, or returns a fresh
// instance when the stream is empty. Used for singleton aggregates whose
// first command must not require prior creation.
func (r *Repository[T]) GetOrNew(ctx context.Context, id string) (T, error) {
	var zero T
	events, err := r.store.ReadStream(ctx, r.streamID(id))
	if err != nil {
		return zero, fmt.Errorf("read stream: %w", err)
	}
	if len(events) == 0 {
		return r.factory(), nil
	}
	return r.replay(events)
}

// Save appends the aggregate's uncommitted changes to its stream, using the
// aggregate's committed version as the optimistic concurrency check. On
// success the change buffer is cleared; on conflict it is left intact so
// the caller can rebuild and retry.
func (r *Repository[T]) Save(ctx context.Context, agg T) error {
	changes := agg.UncommittedChanges()
	if len(changes) == 0 {
		return nil
	}
	if err := r.store.Append(ctx, r.streamID(agg.ID()), changes, agg.Version()); err != nil {
		return fmt.Errorf("append events: %w", err)
	}
	agg.MarkCommitted()
	return nil
}

func (r *Repository[T]) replay(events []Event) (T, error) {
	var zero T
	agg := r.factory()
	for _, event := range events {
		if err := agg.ApplyEvent(event); err != nil {
			return zero, fmt.Errorf("apply %s: %w", event.EventType(), err)
		}
	}
	agg.setVersion(int64(len(events)) - 1)
	return agg, nil
}
