package services

import (
	"context"
	"fmt"

	"github.com/ffhb/clubstore/pkg/cqrs"
	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// PlayerService handles player registration commands. It touches up to
// three aggregates: the club (existence check), the federation (license
// uniqueness) and the player.
type PlayerService struct {
	players    *eventsourcing.Repository[*domain.Player]
	clubs      *eventsourcing.Repository[*domain.Club]
	federation *eventsourcing.Repository[*domain.Federation]
}

// NewPlayerService creates a player command handler.
func NewPlayerService(
	players *eventsourcing.Repository[*domain.Player],
	clubs *eventsourcing.Repository[*domain.Club],
	federation *eventsourcing.Repository[*domain.Federation],
) *PlayerService {
	return &PlayerService{players: players, clubs: clubs, federation: federation}
}

// Register wires the service's commands on the bus.
func (s *PlayerService) Register(bus *cqrs.Bus) {
	bus.RegisterHandler(RegisterPlayer{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(UnregisterPlayerFromClub{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
}

// Handle dispatches a player command.
func (s *PlayerService) Handle(ctx context.Context, cmd cqrs.Command) error {
	switch c := cmd.(type) {
	case *RegisterPlayer:
		_, err := s.RegisterPlayer(ctx, c)
		return err
	case *UnregisterPlayerFromClub:
		return s.UnregisterFromClub(ctx, c)
	default:
		return fmt.Errorf("player service: unexpected command %s", cmd.CommandType())
	}
}

// RegisterPlayer registers a player and returns the new player id.
//
// The federation stream is saved before the player stream and there is no
// transaction spanning both. If the player save fails after the federation
// save succeeded, the license claim stands with no player stream behind it;
// re-issuing the command for the same player id would reclaim it, any other
// registration of that license fails until then.
func (s *PlayerService) RegisterPlayer(ctx context.Context, cmd *RegisterPlayer) (string, error) {
	if _, err := s.clubs.Get(ctx, cmd.ClubID); err != nil {
		return "", err
	}
	federation, err := s.federation.GetOrNew(ctx, domain.FederationID)
	if err != nil {
		return "", err
	}
	if cmd.LicenseNumber != "" {
		if _, taken := federation.License(cmd.LicenseNumber); taken {
			return "", eventsourcing.NewInvalidOperation("license %s already registered", cmd.LicenseNumber)
		}
	}

	player, err := domain.RegisterPlayer(cmd.ActorID(), cmd.FirstName, cmd.LastName, cmd.Gender, cmd.DateOfBirth, cmd.LicenseNumber)
	if err != nil {
		return "", err
	}
	if cmd.LicenseNumber != "" {
		if err := federation.RegisterPlayerLicense(cmd.ActorID(), player.ID(), cmd.LicenseNumber, cmd.LicenseType); err != nil {
			return "", err
		}
	}
	if err := player.RegisterToClub(cmd.ActorID(), cmd.ClubID, cmd.Season, cmd.LicenseType); err != nil {
		return "", err
	}

	if err := s.federation.Save(ctx, federation); err != nil {
		return "", err
	}
	if err := s.players.Save(ctx, player); err != nil {
		return "", err
	}
	return player.ID(), nil
}

// UnregisterFromClub removes a player from a club.
func (s *PlayerService) UnregisterFromClub(ctx context.Context, cmd *UnregisterPlayerFromClub) error {
	player, err := s.players.Get(ctx, cmd.PlayerID)
	if err != nil {
		return err
	}
	if err := player.UnregisterFromClub(cmd.ActorID(), cmd.ClubID); err != nil {
		return err
	}
	return s.players.Save(ctx, player)
}
