package eventsourcing

// Aggregate defines the interface that all aggregates must implement.
// Concrete aggregates embed AggregateRoot, which satisfies everything but
// ApplyEvent and ID.
type Aggregate interface {
	// ID returns the unique identifier of the aggregate.
	ID() string

	// Version returns the last committed version, or -1 when nothing has
	// been committed yet.
	Version() int64

	// ApplyEvent mutates the aggregate's state with an event.
	// It is called both when recording new events and when replaying history.
	ApplyEvent(event Event) error

	// UncommittedChanges returns events recorded but not yet persisted.
	UncommittedChanges() []Event

	// MarkCommitted acknowledges that the uncommitted changes have been
	// persisted, advancing the version accordingly.
	MarkCommitted()

	// setVersion is used by the repository when replaying history.
	setVersion(version int64)
}

// AggregateRoot provides base functionality for all aggregates.
// Use this as an embedded type in your aggregate implementations.
type AggregateRoot struct {
	version int64
	changes []Event
}

// NewAggregateRoot creates an aggregate root with no committed history.
func NewAggregateRoot() AggregateRoot {
	return AggregateRoot{version: -1}
}

// Version returns the last committed version, -1 for a new aggregate.
func (a *AggregateRoot) Version() int64 {
	return a.version
}

// UncommittedChanges returns events that haven't been persisted yet.
func (a *AggregateRoot) UncommittedChanges() []Event {
	return a.changes
}

// MarkCommitted clears the change buffer and advances the version past the
// events that were just persisted.
func (a *AggregateRoot) MarkCommitted() {
	a.version += int64(len(a.changes))
	a.changes = nil
}

func (a *AggregateRoot) setVersion(version int64) {
	a.version = version
}

func (a *AggregateRoot) record(event Event) {
	a.changes = append(a.changes, event)
}

// Record applies a new event to the aggregate and buffers it as an
// uncommitted change. Domain mutators call this for every event they emit.
func Record(agg Aggregate, event Event) error {
	if err := agg.ApplyEvent(event); err != nil {
		return err
	}
	root, ok := agg.(interface{ record(Event) })
	if !ok {
		panic("aggregate does not embed AggregateRoot")
	}
	root.record(event)
	return nil
}
