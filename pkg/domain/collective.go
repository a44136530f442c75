package domain

import (
	"fmt"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// CollectiveCreated is emitted when a collective (training group) is created.
type CollectiveCreated struct {
	eventsourcing.EventModel
	CollectiveID string `json:"collective_id"`
	ClubID       string `json:"club_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
}

func (CollectiveCreated) EventType() string { return "CollectiveCreated" }

// PlayerAddedToCollective is emitted when a player joins a collective.
type PlayerAddedToCollective struct {
	eventsourcing.EventModel
	CollectiveID string `json:"collective_id"`
	PlayerID     string `json:"player_id"`
}

func (PlayerAddedToCollective) EventType() string { return "PlayerAddedToCollective" }

// PlayerRemovedFromCollective is emitted when a player leaves a collective.
type PlayerRemovedFromCollective struct {
	eventsourcing.EventModel
	CollectiveID string `json:"collective_id"`
	PlayerID     string `json:"player_id"`
}

func (PlayerRemovedFromCollective) EventType() string { return "PlayerRemovedFromCollective" }

// CollectiveStreamID maps a collective id to its stream id.
func CollectiveStreamID(id string) string { return "collective-" + id }

// Collective is a named group of players inside a club.
type Collective struct {
	eventsourcing.AggregateRoot
	id          string
	ClubID      string
	Name        string
	Description string
	Players     map[string]struct{}
}

// NewCollective creates an empty collective ready for replay.
func NewCollective() *Collective {
	return &Collective{
		AggregateRoot: eventsourcing.NewAggregateRoot(),
		Players:       make(map[string]struct{}),
	}
}

// CreateCollective creates a collective inside a club.
func CreateCollective(actorID, clubID, name, description string) (*Collective, error) {
	if name == "" {
		return nil, eventsourcing.NewInvalidOperation("collective name is required")
	}
	c := NewCollective()
	err := eventsourcing.Record(c, &CollectiveCreated{
		EventModel:   eventsourcing.NewEventModel(actorID),
		CollectiveID: NewID(),
		ClubID:       clubID,
		Name:         name,
		Description:  description,
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collective) ID() string { return c.id }

// AddPlayer adds a player to the collective.
func (c *Collective) AddPlayer(actorID, playerID string) error {
	if _, ok := c.Players[playerID]; ok {
		return eventsourcing.NewInvalidOperation("player %s already in collective %s", playerID, c.id)
	}
	return eventsourcing.Record(c, &PlayerAddedToCollective{
		EventModel:   eventsourcing.NewEventModel(actorID),
		CollectiveID: c.id,
		PlayerID:     playerID,
	})
}

// RemovePlayer removes a player from the collective.
func (c *Collective) RemovePlayer(actorID, playerID string) error {
	if _, ok := c.Players[playerID]; !ok {
		return eventsourcing.NewInvalidOperation("player %s not in collective %s", playerID, c.id)
	}
	return eventsourcing.Record(c, &PlayerRemovedFromCollective{
		EventModel:   eventsourcing.NewEventModel(actorID),
		CollectiveID: c.id,
		PlayerID:     playerID,
	})
}

// ApplyEvent folds an event into the collective's state.
func (c *Collective) ApplyEvent(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *CollectiveCreated:
		c.id = e.CollectiveID
		c.ClubID = e.ClubID
		c.Name = e.Name
		c.Description = e.Description
	case *PlayerAddedToCollective:
		c.Players[e.PlayerID] = struct{}{}
	case *PlayerRemovedFromCollective:
		delete(c.Players, e.PlayerID)
	default:
		return fmt.Errorf("collective: unexpected event %s", event.EventType())
	}
	return nil
}
