package services

import (
	"context"
	"fmt"

	"github.com/ffhb/clubstore/pkg/cqrs"
	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// UserService handles user account commands.
type UserService struct {
	users *eventsourcing.Repository[*domain.User]
}

// NewUserService creates a user command handler.
func NewUserService(users *eventsourcing.Repository[*domain.User]) *UserService {
	return &UserService{users: users}
}

// Register wires the service's commands on the bus.
func (s *UserService) Register(bus *cqrs.Bus) {
	bus.RegisterHandler(SignUpUser{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(UpdateUserName{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
	bus.RegisterHandler(UpdateUserEmail{}.CommandType(), cqrs.CommandHandlerFunc(s.Handle))
}

// Handle dispatches a user command.
func (s *UserService) Handle(ctx context.Context, cmd cqrs.Command) error {
	switch c := cmd.(type) {
	case *SignUpUser:
		return s.SignUp(ctx, c)
	case *UpdateUserName:
		return s.UpdateName(ctx, c)
	case *UpdateUserEmail:
		return s.UpdateEmail(ctx, c)
	default:
		return fmt.Errorf("user service: unexpected command %s", cmd.CommandType())
	}
}

// SignUp records a user account.
func (s *UserService) SignUp(ctx context.Context, cmd *SignUpUser) error {
	user, err := domain.SignUpUser(cmd.ActorID(), cmd.UserID, cmd.Name, cmd.FirstName, cmd.LastName, cmd.Email)
	if err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

// UpdateName updates a user's names.
func (s *UserService) UpdateName(ctx context.Context, cmd *UpdateUserName) error {
	user, err := s.users.Get(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if err := user.UpdateName(cmd.ActorID(), cmd.FirstName, cmd.LastName, cmd.Name); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}

// UpdateEmail updates a user's email address.
func (s *UserService) UpdateEmail(ctx context.Context, cmd *UpdateUserEmail) error {
	user, err := s.users.Get(ctx, cmd.UserID)
	if err != nil {
		return err
	}
	if err := user.UpdateEmail(cmd.ActorID(), cmd.Email); err != nil {
		return err
	}
	return s.users.Save(ctx, user)
}
