package domain

import (
	"fmt"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// ClubCreated is emitted when a club is created.
type ClubCreated struct {
	eventsourcing.EventModel
	ClubID             string `json:"club_id"`
	Name               string `json:"name"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	OwnerID            string `json:"owner_id,omitempty"`
}

func (ClubCreated) EventType() string { return "ClubCreated" }

// ClubOwnerChanged is emitted when ownership is transferred.
type ClubOwnerChanged struct {
	eventsourcing.EventModel
	ClubID     string `json:"club_id"`
	NewOwnerID string `json:"new_owner_id"`
}

func (ClubOwnerChanged) EventType() string { return "ClubOwnerChanged" }

// ClubCoachAdded is emitted when a user becomes a coach of the club.
type ClubCoachAdded struct {
	eventsourcing.EventModel
	ClubID string `json:"club_id"`
	UserID string `json:"user_id"`
}

func (ClubCoachAdded) EventType() string { return "ClubCoachAdded" }

// ClubStreamID maps a club id to its stream id.
func ClubStreamID(id string) string { return "club-" + id }

// Club is a sports club: a name, a federation registration number, an owner
// and a set of coaches.
type Club struct {
	eventsourcing.AggregateRoot
	id                 string
	Name               string
	RegistrationNumber string
	OwnerID            string
	Coaches            map[string]struct{}
}

// NewClub creates an empty club ready for replay.
func NewClub() *Club {
	return &Club{
		AggregateRoot: eventsourcing.NewAggregateRoot(),
		Coaches:       make(map[string]struct{}),
	}
}

// CreateClub creates a club owned by ownerID. registrationNumber may be empty.
func CreateClub(actorID, name, registrationNumber, ownerID string) (*Club, error) {
	if name == "" {
		return nil, eventsourcing.NewInvalidOperation("club name is required")
	}
	c := NewClub()
	err := eventsourcing.Record(c, &ClubCreated{
		EventModel:         eventsourcing.NewEventModel(actorID),
		ClubID:             NewID(),
		Name:               name,
		RegistrationNumber: registrationNumber,
		OwnerID:            ownerID,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Club) ID() string { return c.id }

// ChangeOwner transfers ownership to a different user.
func (c *Club) ChangeOwner(actorID, newOwnerID string) error {
	if newOwnerID == c.OwnerID {
		return eventsourcing.NewInvalidOperation("new owner %s is already the owner of club %s", newOwnerID, c.id)
	}
	return eventsourcing.Record(c, &ClubOwnerChanged{
		EventModel: eventsourcing.NewEventModel(actorID),
		ClubID:     c.id,
		NewOwnerID: newOwnerID,
	})
}

// AddCoach adds a user as coach. Adding a user who already coaches the club
// emits nothing.
func (c *Club) AddCoach(actorID, userID string) error {
	if _, ok := c.Coaches[userID]; ok {
		return nil
	}
	return eventsourcing.Record(c, &ClubCoachAdded{
		EventModel: eventsourcing.NewEventModel(actorID),
		ClubID:     c.id,
		UserID:     userID,
	})
}

// ApplyEvent folds an event into the club's state.
func (c *Club) ApplyEvent(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *ClubCreated:
		c.id = e.ClubID
		c.Name = e.Name
		c.RegistrationNumber = e.RegistrationNumber
		c.OwnerID = e.OwnerID
	case *ClubOwnerChanged:
		c.OwnerID = e.NewOwnerID
	case *ClubCoachAdded:
		c.Coaches[e.UserID] = struct{}{}
	default:
		return fmt.Errorf("club: unexpected event %s", event.EventType())
	}
	return nil
}
