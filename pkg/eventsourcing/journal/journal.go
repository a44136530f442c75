// Package journal implements the reference EventStore: a single JSON file
// holding the global event log and a per-stream index. The format is stable
// and must stay readable by every past and future version of the service.
package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// fileImage is the exact on-disk shape of the journal.
type fileImage struct {
	EventList  []eventsourcing.EventDescriptor            `json:"event_list"`
	Aggregates map[string][]eventsourcing.EventDescriptor `json:"aggregates"`
}

// Store is a file-backed event store. All state fits in memory; the file is
// rewritten atomically on every append. A single mutex serializes access,
// which is the intended concurrency model for a single-writer deployment.
type Store struct {
	mu       sync.Mutex
	path     string
	registry *eventsourcing.TypeRegistry
	mode     os.FileMode

	eventList  []eventsourcing.EventDescriptor
	aggregates map[string][]eventsourcing.EventDescriptor
}

// Option configures a Store.
type Option func(*Store)

// WithFileMode sets the permissions used when creating the journal file.
func WithFileMode(mode os.FileMode) Option {
	return func(s *Store) { s.mode = mode }
}

// Open loads the journal at path, creating an empty one in memory if the
// file does not exist yet (it is written on the first append).
func Open(path string, registry *eventsourcing.TypeRegistry, opts ...Option) (*Store, error) {
	s := &Store{
		path:       path,
		registry:   registry,
		mode:       0o644,
		aggregates: make(map[string][]eventsourcing.EventDescriptor),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read journal: %w", err)
	}
	var image fileImage
	if err := json.Unmarshal(data, &image); err != nil {
		return nil, fmt.Errorf("parse journal %s: %w", path, err)
	}
	s.eventList = image.EventList
	if image.Aggregates != nil {
		s.aggregates = image.Aggregates
	}
	return s, nil
}

// Append appends events to a stream under optimistic concurrency.
// expectedVersion must equal the stream's current last version
// (ExpectedVersionNew for a new stream) or the call fails with
// ErrConcurrencyConflict and writes nothing.
func (s *Store) Append(ctx context.Context, streamID string, events []eventsourcing.Event, expectedVersion int64) error {
	if len(events) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := int64(len(s.aggregates[streamID])) - 1
	if current != expectedVersion {
		return fmt.Errorf("%w: stream %s is at version %d, expected %d",
			eventsourcing.ErrConcurrencyConflict, streamID, current, expectedVersion)
	}

	descriptors := make([]eventsourcing.EventDescriptor, 0, len(events))
	version := expectedVersion
	for _, event := range events {
		version++
		desc, err := s.registry.Encode(streamID, event, version)
		if err != nil {
			return err
		}
		descriptors = append(descriptors, desc)
	}

	// Stage in memory, persist, and only keep the staged state on success.
	s.eventList = append(s.eventList, descriptors...)
	s.aggregates[streamID] = append(s.aggregates[streamID], descriptors...)
	if err := s.persist(); err != nil {
		s.eventList = s.eventList[:len(s.eventList)-len(descriptors)]
		s.aggregates[streamID] = s.aggregates[streamID][:len(s.aggregates[streamID])-len(descriptors)]
		return fmt.Errorf("persist journal: %w", err)
	}
	return nil
}

// ReadStream returns the decoded events of a stream in version order.
// An unknown stream yields an empty slice.
func (s *Store) ReadStream(ctx context.Context, streamID string) ([]eventsourcing.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	descriptors := s.aggregates[streamID]
	events := make([]eventsourcing.Event, 0, len(descriptors))
	for _, desc := range descriptors {
		event, err := s.registry.Decode(desc)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// ReadFrom returns up to limit events from the global log starting at
// position (inclusive).
func (s *Store) ReadFrom(ctx context.Context, position int64, limit int) ([]eventsourcing.RecordedEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if position < 0 {
		position = 0
	}
	recorded := make([]eventsourcing.RecordedEvent, 0, limit)
	for i := position; i < int64(len(s.eventList)) && len(recorded) < limit; i++ {
		desc := s.eventList[i]
		event, err := s.registry.Decode(desc)
		if err != nil {
			return nil, err
		}
		recorded = append(recorded, eventsourcing.RecordedEvent{
			StreamID: desc.ID,
			Version:  desc.Version,
			Position: i,
			Event:    event,
		})
	}
	return recorded, nil
}

// LastPosition returns the position of the newest event, -1 when empty.
func (s *Store) LastPosition(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.eventList)) - 1, nil
}

// Close is a no-op: every append already leaves a durable file behind.
func (s *Store) Close() error {
	return nil
}

// persist rewrites the journal file atomically: write a temp file in the
// same directory, fsync, then rename over the old file.
func (s *Store) persist() error {
	image := fileImage{
		EventList:  s.eventList,
		Aggregates: s.aggregates,
	}
	if image.EventList == nil {
		image.EventList = []eventsourcing.EventDescriptor{}
	}
	data, err := json.Marshal(image)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".journal-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), s.mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

var _ eventsourcing.EventStore = (*Store)(nil)
