// Package cqrs provides the in-process command and event dispatch bus.
package cqrs

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

// Command is a request to change the system. Commands are routed to exactly
// one handler by their type tag.
type Command interface {
	// CommandType returns the stable type tag used for routing
	// (e.g. "CreateClub").
	CommandType() string

	// CommandID returns the unique identifier of this command instance.
	CommandID() string

	// ActorID returns the principal issuing the command.
	ActorID() string

	// IssuedAt returns when the command was created.
	IssuedAt() time.Time
}

// CommandModel provides the common identity fields of a command.
// Embed it in every concrete command type.
type CommandModel struct {
	ID     string    `json:"command_id"`
	Actor  string    `json:"actor_id"`
	Issued time.Time `json:"date"`
}

// NewCommandModel creates the common part of a new command.
func NewCommandModel(actorID string) CommandModel {
	return CommandModel{
		ID:     uuid.NewString(),
		Actor:  actorID,
		Issued: eventsourcing.Now(),
	}
}

func (m CommandModel) CommandID() string   { return m.ID }
func (m CommandModel) ActorID() string     { return m.Actor }
func (m CommandModel) IssuedAt() time.Time { return m.Issued }

// CommandHandler executes one kind of command.
type CommandHandler interface {
	Handle(ctx context.Context, cmd Command) error
}

// CommandHandlerFunc adapts a function to the CommandHandler interface.
type CommandHandlerFunc func(ctx context.Context, cmd Command) error

func (f CommandHandlerFunc) Handle(ctx context.Context, cmd Command) error {
	return f(ctx, cmd)
}

// EventHandler reacts to a published domain event.
type EventHandler interface {
	Handle(ctx context.Context, event eventsourcing.Event) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, event eventsourcing.Event) error

func (f EventHandlerFunc) Handle(ctx context.Context, event eventsourcing.Event) error {
	return f(ctx, event)
}
