package eventsourcing

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Event is a domain event: an immutable fact recorded in an aggregate's
// stream. Concrete events embed EventModel and add their own payload fields;
// equality is structural.
type Event interface {
	// EventType returns the stable type tag used for serialization and
	// dispatch (e.g. "ClubCreated").
	EventType() string

	// EventID returns the globally unique identifier of this event.
	EventID() string

	// TriggeredAt returns when the event was created.
	TriggeredAt() time.Time

	// ActorID returns the principal that caused the event.
	ActorID() string
}

// EventModel provides the common identity fields of an event.
// Embed it in every concrete event type.
type EventModel struct {
	ID        string    `json:"event_id"`
	Triggered time.Time `json:"triggered_at"`
	Actor     string    `json:"actor_id"`
}

// NewEventModel creates the common part of a new event, stamped with a
// sortable unique id and the current time.
func NewEventModel(actorID string) EventModel {
	return EventModel{
		ID:        NewEventID(),
		Triggered: Now(),
		Actor:     actorID,
	}
}

func (m EventModel) EventID() string        { return m.ID }
func (m EventModel) TriggeredAt() time.Time { return m.Triggered }
func (m EventModel) ActorID() string        { return m.Actor }

// NewEventID generates a lexicographically sortable unique event id.
func NewEventID() string {
	entropy := rand.New(rand.NewSource(time.Now().UnixNano()))
	return ulid.MustNew(ulid.Timestamp(Now()), entropy).String()
}

// TimeFunc is the clock used when stamping events.
// It can be overridden for deterministic tests.
var TimeFunc = time.Now

// Now returns the current time using the configured TimeFunc.
func Now() time.Time {
	return TimeFunc().UTC()
}
