package eventsourcing

import (
	"encoding/json"
	"fmt"
)

// EventDescriptor is the storage envelope around a serialized event.
// The JSON shape is fixed: existing journals must remain readable.
type EventDescriptor struct {
	// ID is the id of the stream that owns the event.
	ID string `json:"id"`

	// EventType is the stable type tag of the event.
	EventType string `json:"event_type"`

	// EventData is the JSON-encoded payload, stored as a string.
	EventData string `json:"event_data"`

	// Version is the per-stream version of the event, starting at 0.
	Version int64 `json:"version"`
}

// TypeRegistry maps event type tags to concrete event constructors.
// Stores use it to rehydrate typed events from descriptors.
type TypeRegistry struct {
	factories map[string]func() Event
}

// NewTypeRegistry creates an empty registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{factories: make(map[string]func() Event)}
}

// Register registers a factory for a type tag. Registering the same tag
// twice is a programming error.
func (r *TypeRegistry) Register(eventType string, factory func() Event) {
	if _, exists := r.factories[eventType]; exists {
		panic(fmt.Sprintf("event type already registered: %s", eventType))
	}
	r.factories[eventType] = factory
}

// Encode wraps an event into a descriptor for the given stream and version.
func (r *TypeRegistry) Encode(streamID string, event Event, version int64) (EventDescriptor, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return EventDescriptor{}, fmt.Errorf("marshal %s: %w", event.EventType(), err)
	}
	return EventDescriptor{
		ID:        streamID,
		EventType: event.EventType(),
		EventData: string(data),
		Version:   version,
	}, nil
}

// Decode rehydrates the typed event carried by a descriptor.
func (r *TypeRegistry) Decode(desc EventDescriptor) (Event, error) {
	factory, ok := r.factories[desc.EventType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, desc.EventType)
	}
	event := factory()
	if err := json.Unmarshal([]byte(desc.EventData), event); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", desc.EventType, err)
	}
	return event, nil
}
