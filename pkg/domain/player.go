package domain

import (
	"fmt"
	"time"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// DateOfBirthLayout is the wire format of a player's date of birth.
const DateOfBirthLayout = "2006-01-02"

// PlayerRegistered is emitted when a player joins the federation.
type PlayerRegistered struct {
	eventsourcing.EventModel
	PlayerID      string `json:"player_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Gender        Gender `json:"gender"`
	DateOfBirth   string `json:"date_of_birth"`
	LicenseNumber string `json:"license_number,omitempty"`
}

func (PlayerRegistered) EventType() string { return "PlayerRegistered" }

// PlayerRegisteredToClub is emitted when a player registers to a club for a
// season.
type PlayerRegisteredToClub struct {
	eventsourcing.EventModel
	PlayerID    string      `json:"player_id"`
	ClubID      string      `json:"club_id"`
	Season      Season      `json:"season"`
	LicenseType LicenseType `json:"license_type"`
}

func (PlayerRegisteredToClub) EventType() string { return "PlayerRegisteredToClub" }

// PlayerUnregisteredFromClub is emitted when a player leaves a club.
type PlayerUnregisteredFromClub struct {
	eventsourcing.EventModel
	PlayerID string `json:"player_id"`
	ClubID   string `json:"club_id"`
}

func (PlayerUnregisteredFromClub) EventType() string { return "PlayerUnregisteredFromClub" }

// PlayerStreamID maps a player id to its stream id.
func PlayerStreamID(id string) string { return "player-" + id }

// Player is a registered federation player. A player belongs to at most one
// club at a time.
type Player struct {
	eventsourcing.AggregateRoot
	id            string
	FirstName     string
	LastName      string
	Gender        Gender
	DateOfBirth   time.Time
	LicenseNumber string
	ClubID        string
	Season        Season
	LicenseType   LicenseType
}

// NewPlayer creates an empty player ready for replay.
func NewPlayer() *Player {
	return &Player{AggregateRoot: eventsourcing.NewAggregateRoot()}
}

// RegisterPlayer creates a player aggregate.
func RegisterPlayer(actorID, firstName, lastName string, gender Gender, dateOfBirth time.Time, licenseNumber string) (*Player, error) {
	if firstName == "" || lastName == "" {
		return nil, eventsourcing.NewInvalidOperation("player name is required")
	}
	p := NewPlayer()
	err := eventsourcing.Record(p, &PlayerRegistered{
		EventModel:    eventsourcing.NewEventModel(actorID),
		PlayerID:      NewID(),
		FirstName:     firstName,
		LastName:      lastName,
		Gender:        gender,
		DateOfBirth:   dateOfBirth.Format(DateOfBirthLayout),
		LicenseNumber: licenseNumber,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Player) ID() string { return p.id }

// RegisterToClub registers the player to a club for a season. A player
// already registered to a different club is implicitly unregistered first,
// so one call may emit two events.
func (p *Player) RegisterToClub(actorID, clubID string, season Season, licenseType LicenseType) error {
	if p.ClubID != "" && p.ClubID != clubID {
		if err := p.UnregisterFromClub(actorID, p.ClubID); err != nil {
			return err
		}
	}
	return eventsourcing.Record(p, &PlayerRegisteredToClub{
		EventModel:  eventsourcing.NewEventModel(actorID),
		PlayerID:    p.id,
		ClubID:      clubID,
		Season:      season,
		LicenseType: licenseType,
	})
}

// UnregisterFromClub removes the player from a club they belong to.
func (p *Player) UnregisterFromClub(actorID, clubID string) error {
	if p.ClubID != clubID {
		return eventsourcing.NewInvalidOperation("player %s is not registered to club %s", p.id, clubID)
	}
	return eventsourcing.Record(p, &PlayerUnregisteredFromClub{
		EventModel: eventsourcing.NewEventModel(actorID),
		PlayerID:   p.id,
		ClubID:     clubID,
	})
}

// ApplyEvent folds an event into the player's state.
func (p *Player) ApplyEvent(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *PlayerRegistered:
		p.id = e.PlayerID
		p.FirstName = e.FirstName
		p.LastName = e.LastName
		p.Gender = e.Gender
		p.LicenseNumber = e.LicenseNumber
		if e.DateOfBirth != "" {
			dob, err := time.Parse(DateOfBirthLayout, e.DateOfBirth)
			if err != nil {
				return fmt.Errorf("player %s: bad date of birth %q: %w", e.PlayerID, e.DateOfBirth, err)
			}
			p.DateOfBirth = dob
		}
	case *PlayerRegisteredToClub:
		p.ClubID = e.ClubID
		p.Season = e.Season
		p.LicenseType = e.LicenseType
	case *PlayerUnregisteredFromClub:
		p.ClubID = ""
	default:
		return fmt.Errorf("player: unexpected event %s", event.EventType())
	}
	return nil
}
