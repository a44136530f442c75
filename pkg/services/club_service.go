package services

import (
	"context"
	"fmt"

	"github.com/ffhb/clubstore/pkg/cqrs"
	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// ClubService handles club commands.
type ClubService struct {
	clubs *eventsourcing.Repository[*domain.Club]
}

// NewClubService creates a club command handler.
func NewClubService(clubs *eventsourcing.Repository[*domain.Club]) *ClubService {
	return &ClubService{clubs: clubs}
}

// Register wires the service's commands on the bus.
func (s *ClubService) Register(bus *cqrs.Bus) {
	bus.RegisterHandler(CreateClub{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(ChangeClubOwner{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(AddClubCoach{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
}

// Handle dispatches a club command.
func (s *ClubService) Handle(ctx context.Context, cmd cqrs.Command) error {
	switch c := cmd.(type) {
	case *CreateClub:
		_, err := s.CreateClub(ctx, c)
		return err
	case *ChangeClubOwner:
		return s.ChangeOwner(ctx, c)
	case *AddClubCoach:
		return s.AddCoach(ctx, c)
	default:
		return fmt.Errorf("club service: unexpected command %s", cmd.CommandType())
	}
}

// CreateClub creates a club and returns its id.
func (s *ClubService) CreateClub(ctx context.Context, cmd *CreateClub) (string, error) {
	club, err := domain.CreateClub(cmd.ActorID(), cmd.Name, cmd.RegistrationNumber, cmd.OwnerID)
	if err != nil {
		return "", err
	}
	if err := s.clubs.Save(ctx, club); err != nil {
		return "", err
	}
	return club.ID(), nil
}

// ChangeOwner transfers club ownership.
func (s *ClubService) ChangeOwner(ctx context.Context, cmd *ChangeClubOwner) error {
	club, err := s.clubs.Get(ctx, cmd.ClubID)
	if err != nil {
		return err
	}
	if err := club.ChangeOwner(cmd.ActorID(), cmd.NewOwnerID); err != nil {
		return err
	}
	return s.clubs.Save(ctx, club)
}

// AddCoach adds a coach to the club.
func (s *ClubService) AddCoach(ctx context.Context, cmd *AddClubCoach) error {
	club, err := s.clubs.Get(ctx, cmd.ClubID)
	if err != nil {
		return err
	}
	if err := club.AddCoach(cmd.ActorID(), cmd.UserID); err != nil {
		return err
	}
	return s.clubs.Save(ctx, club)
}
