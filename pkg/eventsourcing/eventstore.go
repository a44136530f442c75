package eventsourcing

import "context"

// RecordedEvent is an event as read back from the global log, enriched with
// its stream id and absolute position.
type RecordedEvent struct {
	// StreamID identifies the stream the event belongs to.
	StreamID string

	// Version is the event's per-stream version.
	Version int64

	// Position is the zero-based index of the event in the global log.
	Position int64

	// Event is the rehydrated domain event.
	Event Event
}

// ExpectedVersionNew is the expected version passed to Append when the
// caller requires the stream to not exist yet.
const ExpectedVersionNew int64 = -1

// EventStore is the persistence port for event streams. Appends are
// protected by optimistic concurrency: the caller states the version it
// believes the stream is at, and a mismatch fails with
// ErrConcurrencyConflict without writing anything.
type EventStore interface {
	// Append atomically appends events to a stream. expectedVersion is the
	// current last version of the stream, or ExpectedVersionNew to create it.
	Append(ctx context.Context, streamID string, events []Event, expectedVersion int64) error

	// ReadStream returns all events of a stream in version order.
	// An unknown stream yields an empty slice, not an error.
	ReadStream(ctx context.Context, streamID string) ([]Event, error)

	// ReadFrom returns up to limit events from the global log starting at
	// the given position (inclusive), in append order.
	ReadFrom(ctx context.Context, position int64, limit int) ([]RecordedEvent, error)

	// LastPosition returns the position of the most recent event in the
	// global log, or -1 when the log is empty.
	LastPosition(ctx context.Context) (int64, error)

	// Close releases the store's resources.
	Close() error
}
