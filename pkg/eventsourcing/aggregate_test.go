package eventsourcing_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// counter is a minimal aggregate used to exercise the framework.
type counter struct {
	eventsourcing.AggregateRoot
	id    string
	total int
}

type counterCreated struct {
	eventsourcing.EventModel
	CounterID string `json:"counter_id"`
}

func (counterCreated) EventType() string { return "counterCreated" }

type counterIncremented struct {
	eventsourcing.EventModel
	CounterID string `json:"counter_id"`
	By        int    `json:"by"`
}

func (counterIncremented) EventType() string { return "counterIncremented" }

func newCounter() *counter {
	return &counter{AggregateRoot: eventsourcing.NewAggregateRoot()}
}

func (c *counter) ID() string { return c.id }

func (c *counter) ApplyEvent(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *counterCreated:
		c.id = e.CounterID
	case *counterIncremented:
		c.total += e.By
	default:
		return fmt.Errorf("counter: unexpected event %s", event.EventType())
	}
	return nil
}

func (c *counter) create(id string) error {
	return eventsourcing.Record(c, &counterCreated{
		EventModel: eventsourcing.NewEventModel("tester"),
		CounterID:  id,
	})
}

func (c *counter) increment(by int) error {
	return eventsourcing.Record(c, &counterIncremented{
		EventModel: eventsourcing.NewEventModel("tester"),
		CounterID:  c.id,
		By:         by,
	})
}

// memStore is an in-memory EventStore for repository tests.
type memStore struct {
	streams map[string][]eventsourcing.Event
	log     []eventsourcing.RecordedEvent
}

func newMemStore() *memStore {
	return &memStore{streams: make(map[string][]eventsourcing.Event)}
}

func (s *memStore) Append(_ context.Context, streamID string, events []eventsourcing.Event, expectedVersion int64) error {
	current := int64(len(s.streams[streamID])) - 1
	if current != expectedVersion {
		return fmt.Errorf("%w: stream %s is at version %d, expected %d",
			eventsourcing.ErrConcurrencyConflict, streamID, current, expectedVersion)
	}
	for _, event := range events {
		s.streams[streamID] = append(s.streams[streamID], event)
		s.log = append(s.log, eventsourcing.RecordedEvent{
			StreamID: streamID,
			Version:  int64(len(s.streams[streamID])) - 1,
			Position: int64(len(s.log)),
			Event:    event,
		})
	}
	return nil
}

func (s *memStore) ReadStream(_ context.Context, streamID string) ([]eventsourcing.Event, error) {
	return s.streams[streamID], nil
}

func (s *memStore) ReadFrom(_ context.Context, position int64, limit int) ([]eventsourcing.RecordedEvent, error) {
	var out []eventsourcing.RecordedEvent
	for i := position; i < int64(len(s.log)) && len(out) < limit; i++ {
		out = append(out, s.log[i])
	}
	return out, nil
}

func (s *memStore) LastPosition(context.Context) (int64, error) {
	return int64(len(s.log)) - 1, nil
}

func (s *memStore) Close() error { return nil }

func TestAggregateRootVersioning(t *testing.T) {
	c := newCounter()
	assert.Equal(t, int64(-1), c.Version())

	require.NoError(t, c.create("c1"))
	require.NoError(t, c.increment(2))

	assert.Equal(t, int64(-1), c.Version(), "recording must not advance the committed version")
	assert.Len(t, c.UncommittedChanges(), 2)
	assert.Equal(t, 2, c.total, "events apply immediately")

	c.MarkCommitted()
	assert.Equal(t, int64(1), c.Version())
	assert.Empty(t, c.UncommittedChanges())

	require.NoError(t, c.increment(3))
	c.MarkCommitted()
	assert.Equal(t, int64(2), c.Version())
	assert.Equal(t, 5, c.total)
}

func TestRepositorySaveAndGet(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	repo := eventsourcing.NewRepository(store, func(id string) string { return "counter-" + id }, newCounter)

	c := newCounter()
	require.NoError(t, c.create("c1"))
	require.NoError(t, c.increment(4))
	require.NoError(t, repo.Save(ctx, c))
	assert.Equal(t, int64(1), c.Version())

	loaded, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", loaded.ID())
	assert.Equal(t, 4, loaded.total)
	assert.Equal(t, int64(1), loaded.Version())
	assert.Empty(t, loaded.UncommittedChanges())
}

func TestRepositoryGetUnknownAggregate(t *testing.T) {
	repo := eventsourcing.NewRepository(newMemStore(), func(id string) string { return "counter-" + id }, newCounter)

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, eventsourcing.ErrAggregateNotFound)
}

func TestRepositoryGetOrNew(t *testing.T) {
	ctx := context.Background()
	repo := eventsourcing.NewRepository(newMemStore(), func(id string) string { return id }, newCounter)

	c, err := repo.GetOrNew(ctx, "singleton")
	require.NoError(t, err)
	assert.Equal(t, int64(-1), c.Version())

	require.NoError(t, c.create("singleton"))
	require.NoError(t, repo.Save(ctx, c))

	again, err := repo.GetOrNew(ctx, "singleton")
	require.NoError(t, err)
	assert.Equal(t, int64(0), again.Version())
}

func TestRepositoryConflictKeepsChanges(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	repo := eventsourcing.NewRepository(store, func(id string) string { return "counter-" + id }, newCounter)

	c := newCounter()
	require.NoError(t, c.create("c1"))
	require.NoError(t, repo.Save(ctx, c))

	first, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "c1")
	require.NoError(t, err)

	require.NoError(t, first.increment(1))
	require.NoError(t, repo.Save(ctx, first))

	require.NoError(t, second.increment(10))
	err = repo.Save(ctx, second)
	require.ErrorIs(t, err, eventsourcing.ErrConcurrencyConflict)
	assert.Len(t, second.UncommittedChanges(), 1, "failed save must keep the change buffer")

	// Rebuild and retry, as a command handler would.
	retry, err := repo.Get(ctx, "c1")
	require.NoError(t, err)
	require.NoError(t, retry.increment(10))
	require.NoError(t, repo.Save(ctx, retry))
	assert.Equal(t, 11, retry.total)
}

func TestSaveNothingIsNoop(t *testing.T) {
	store := newMemStore()
	repo := eventsourcing.NewRepository(store, func(id string) string { return id }, newCounter)

	c := newCounter()
	require.NoError(t, repo.Save(context.Background(), c))
	assert.Empty(t, store.log)
}
