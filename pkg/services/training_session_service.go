package services

import (
	"context"
	"fmt"

	"github.com/ffhb/clubstore/pkg/cqrs"
	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// TrainingSessionService handles training session commands.
type TrainingSessionService struct {
	sessions *eventsourcing.Repository[*domain.TrainingSession]
	clubs    *eventsourcing.Repository[*domain.Club]
}

// NewTrainingSessionService creates a training session command handler.
func NewTrainingSessionService(
	sessions *eventsourcing.Repository[*domain.TrainingSession],
	clubs *eventsourcing.Repository[*domain.Club],
) *TrainingSessionService {
	return &TrainingSessionService{sessions: sessions, clubs: clubs}
}

// Register wires the service's commands on the bus.
func (s *TrainingSessionService) Register(bus *cqrs.Bus) {
	bus.RegisterHandler(CreateTrainingSession{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(CancelTrainingSession{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(RemovePlayerFromTrainingSession{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(ChangeTrainingSessionPlayerStatus{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
}

// Handle dispatches a training session command.
func (s *TrainingSessionService) Handle(ctx context.Context, cmd cqrs.Command) error {
	switch c := cmd.(type) {
	case *CreateTrainingSession:
		_, err := s.CreateSession(ctx, c)
		return err
	case *CancelTrainingSession:
		return s.CancelSession(ctx, c)
	case *RemovePlayerFromTrainingSession:
		return s.RemovePlayer(ctx, c)
	case *ChangeTrainingSessionPlayerStatus:
		return s.ChangePlayerStatus(ctx, c)
	default:
		return fmt.Errorf("training session service: unexpected command %s", cmd.CommandType())
	}
}

// CreateSession schedules a session and returns its id.
func (s *TrainingSessionService) CreateSession(ctx context.Context, cmd *CreateTrainingSession) (string, error) {
	if _, err := s.clubs.Get(ctx, cmd.ClubID); err != nil {
		return "", err
	}
	session, err := domain.CreateTrainingSession(cmd.ActorID(), cmd.ClubID, cmd.StartTime, cmd.EndTime)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return "", err
	}
	return session.ID(), nil
}

// CancelSession cancels a session.
func (s *TrainingSessionService) CancelSession(ctx context.Context, cmd *CancelTrainingSession) error {
	session, err := s.sessions.Get(ctx, cmd.TrainingSessionID)
	if err != nil {
		return err
	}
	if err := session.Cancel(cmd.ActorID()); err != nil {
		return err
	}
	return s.sessions.Save(ctx, session)
}

// RemovePlayer takes a player off a session's attendance list.
func (s *TrainingSessionService) RemovePlayer(ctx context.Context, cmd *RemovePlayerFromTrainingSession) error {
	session, err := s.sessions.Get(ctx, cmd.TrainingSessionID)
	if err != nil {
		return err
	}
	if err := session.RemovePlayer(cmd.ActorID(), cmd.PlayerID); err != nil {
		return err
	}
	return s.sessions.Save(ctx, session)
}

// ChangePlayerStatus sets a player's attendance status.
func (s *TrainingSessionService) ChangePlayerStatus(ctx context.Context, cmd *ChangeTrainingSessionPlayerStatus) error {
	session, err := s.sessions.Get(ctx, cmd.TrainingSessionID)
	if err != nil {
		return err
	}
	change := domain.StatusChange{
		Reason:      cmd.Reason,
		WithReason:  cmd.WithReason,
		ArrivalTime: cmd.ArrivalTime,
	}
	if err := session.ChangePlayerStatus(cmd.ActorID(), cmd.PlayerID, cmd.Status, change); err != nil {
		return err
	}
	return s.sessions.Save(ctx, session)
}
