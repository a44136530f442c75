package services

import (
	"context"
	"fmt"

	"github.com/ffhb/clubstore/pkg/cqrs"
	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// CollectiveService handles collective commands.
type CollectiveService struct {
	collectives *eventsourcing.Repository[*domain.Collective]
	clubs       *eventsourcing.Repository[*domain.Club]
	players     *eventsourcing.Repository[*domain.Player]
}

// NewCollectiveService creates a collective command handler.
func NewCollectiveService(
	collectives *eventsourcing.Repository[*domain.Collective],
	clubs *eventsourcing.Repository[*domain.Club],
	players *eventsourcing.Repository[*domain.Player],
) *CollectiveService {
	return &CollectiveService{collectives: collectives, clubs: clubs, players: players}
}

// Register wires the service's commands on the bus.
func (s *CollectiveService) Register(bus *cqrs.Bus) {
	bus.RegisterHandler(CreateCollective{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(AddPlayerToCollective{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(RemovePlayerFromCollective{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
}

// Handle dispatches a collective command.
func (s *CollectiveService) Handle(ctx context.Context, cmd cqrs.Command) error {
	switch c := cmd.(type) {
	case *CreateCollective:
		_, err := s.CreateCollective(ctx, c)
		return err
	case *AddPlayerToCollective:
		return s.AddPlayer(ctx, c)
	case *RemovePlayerFromCollective:
		return s.RemovePlayer(ctx, c)
	default:
		return fmt.Errorf("collective service: unexpected command %s", cmd.CommandType())
	}
}

// CreateCollective creates a collective and returns its id.
func (s *CollectiveService) CreateCollective(ctx context.Context, cmd *CreateCollective) (string, error) {
	if _, err := s.clubs.Get(ctx, cmd.ClubID); err != nil {
		return "", err
	}
	collective, err := domain.CreateCollective(cmd.ActorID(), cmd.ClubID, cmd.Name, cmd.Description)
	if err != nil {
		return "", err
	}
	if err := s.collectives.Save(ctx, collective); err != nil {
		return "", err
	}
	return collective.ID(), nil
}

// AddPlayer adds a player to a collective.
func (s *CollectiveService) AddPlayer(ctx context.Context, cmd *AddPlayerToCollective) error {
	if _, err := s.players.Get(ctx, cmd.PlayerID); err != nil {
		return err
	}
	collective, err := s.collectives.Get(ctx, cmd.CollectiveID)
	if err != nil {
		return err
	}
	if err := collective.AddPlayer(cmd.ActorID(), cmd.PlayerID); err != nil {
		return err
	}
	return s.collectives.Save(ctx, collective)
}

// RemovePlayer removes a player from a collective.
func (s *CollectiveService) RemovePlayer(ctx context.Context, cmd *RemovePlayerFromCollective) error {
	collective, err := s.collectives.Get(ctx, cmd.CollectiveID)
	if err != nil {
		return err
	}
	if err := collective.RemovePlayer(cmd.ActorID(), cmd.PlayerID); err != nil {
		return err
	}
	return s.collectives.Save(ctx, collective)
}
