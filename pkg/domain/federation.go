package domain

import (
	"fmt"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// FederationID is the id of the single federation aggregate. Its stream id
// is the id itself, without a kind prefix.
const FederationID = "FFHB"

// PlayerLicenseRegistered is emitted when a license number is bound to a
// player, federation-wide.
type PlayerLicenseRegistered struct {
	eventsourcing.EventModel
	PlayerID      string      `json:"player_id"`
	LicenseNumber string      `json:"license_number"`
	LicenseType   LicenseType `json:"license_type"`
}

func (PlayerLicenseRegistered) EventType() string { return "PlayerLicenseRegistered" }

// FederationStreamID maps the federation id to its stream id.
func FederationStreamID(id string) string { return id }

// PlayerLicense is one license binding held by the federation.
type PlayerLicense struct {
	PlayerID      string
	LicenseNumber string
	LicenseType   LicenseType
}

// Federation is the singleton aggregate enforcing license uniqueness: a
// license number belongs to at most one player.
type Federation struct {
	eventsourcing.AggregateRoot
	Licenses map[string]PlayerLicense
}

// NewFederation creates an empty federation ready for replay.
func NewFederation() *Federation {
	return &Federation{
		AggregateRoot: eventsourcing.NewAggregateRoot(),
		Licenses:      make(map[string]PlayerLicense),
	}
}

func (f *Federation) ID() string { return FederationID }

// License returns the binding of a license number, if any.
func (f *Federation) License(licenseNumber string) (PlayerLicense, bool) {
	l, ok := f.Licenses[licenseNumber]
	return l, ok
}

// RegisterPlayerLicense binds a license number to a player. Re-registering
// the same license to the same player emits nothing; to a different player
// it fails.
func (f *Federation) RegisterPlayerLicense(actorID, playerID, licenseNumber string, licenseType LicenseType) error {
	if existing, ok := f.Licenses[licenseNumber]; ok {
		if existing.PlayerID != playerID {
			return eventsourcing.NewInvalidOperation("license %s already registered to player %s", licenseNumber, existing.PlayerID)
		}
		return nil
	}
	return eventsourcing.Record(f, &PlayerLicenseRegistered{
		EventModel:    eventsourcing.NewEventModel(actorID),
		PlayerID:      playerID,
		LicenseNumber: licenseNumber,
		LicenseType:   licenseType,
	})
}

// ApplyEvent folds an event into the federation's state.
func (f *Federation) ApplyEvent(event eventsourcing.Event) error {
	switch e := event.(type) {
	case *PlayerLicenseRegistered:
		f.Licenses[e.LicenseNumber] = PlayerLicense{
			PlayerID:      e.PlayerID,
			LicenseNumber: e.LicenseNumber,
			LicenseType:   e.LicenseType,
		}
	default:
		return fmt.Errorf("federation: unexpected event %s", event.EventType())
	}
	return nil
}
