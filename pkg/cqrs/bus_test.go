package cqrs_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffhb/clubstore/pkg/cqrs"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

type testCommand struct {
	cqrs.CommandModel
	Value string
}

func (testCommand) CommandType() string { return "testCommand" }

type testEvent struct {
	eventsourcing.EventModel
	Value string
}

func (testEvent) EventType() string { return "testEvent" }

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendRoutesToSingleHandler(t *testing.T) {
	bus := cqrs.NewBus(cqrs.WithLogger(quietLogger()))

	var got cqrs.Command
	bus.RegisterHandler("testCommand", cqrs.CommandHandlerFunc(func(_ context.Context, cmd cqrs.Command) error {
		got = cmd
		return nil
	}))

	cmd := &testCommand{CommandModel: cqrs.NewCommandModel("u1"), Value: "hello"}
	require.NoError(t, bus.Send(context.Background(), cmd))
	require.NotNil(t, got)
	assert.Equal(t, "hello", got.(*testCommand).Value)
	assert.Equal(t, "u1", got.ActorID())
	assert.NotEmpty(t, got.CommandID())
}

func TestSendNoHandler(t *testing.T) {
	bus := cqrs.NewBus(cqrs.WithLogger(quietLogger()))
	err := bus.Send(context.Background(), &testCommand{CommandModel: cqrs.NewCommandModel("u1")})
	assert.ErrorIs(t, err, cqrs.ErrNoHandler)
}

func TestSendHandlerConflict(t *testing.T) {
	bus := cqrs.NewBus(cqrs.WithLogger(quietLogger()))
	handler := cqrs.CommandHandlerFunc(func(context.Context, cqrs.Command) error { return nil })
	bus.RegisterHandler("testCommand", handler)
	bus.RegisterHandler("testCommand", handler)

	err := bus.Send(context.Background(), &testCommand{CommandModel: cqrs.NewCommandModel("u1")})
	assert.ErrorIs(t, err, cqrs.ErrHandlerConflict)
}

func TestSendUnauthorized(t *testing.T) {
	bus := cqrs.NewBus(
		cqrs.WithLogger(quietLogger()),
		cqrs.WithAuthorizer(cqrs.AuthorizerFunc(func(_ context.Context, cmd cqrs.Command) error {
			if cmd.ActorID() != "admin" {
				return errors.New("actor is not admin")
			}
			return nil
		})),
	)

	calls := 0
	bus.RegisterHandler("testCommand", cqrs.CommandHandlerFunc(func(context.Context, cqrs.Command) error {
		calls++
		return nil
	}))

	err := bus.Send(context.Background(), &testCommand{CommandModel: cqrs.NewCommandModel("u1")})
	assert.ErrorIs(t, err, cqrs.ErrUnauthorized)
	assert.Zero(t, calls, "refused command must not reach the handler")

	require.NoError(t, bus.Send(context.Background(), &testCommand{CommandModel: cqrs.NewCommandModel("admin")}))
	assert.Equal(t, 1, calls)
}

func TestSendRetriesConcurrencyConflict(t *testing.T) {
	bus := cqrs.NewBus(
		cqrs.WithLogger(quietLogger()),
		cqrs.WithRetry(3, time.Millisecond),
	)

	attempts := 0
	bus.RegisterHandler("testCommand", cqrs.CommandHandlerFunc(func(context.Context, cqrs.Command) error {
		attempts++
		if attempts < 3 {
			return eventsourcing.ErrConcurrencyConflict
		}
		return nil
	}))

	require.NoError(t, bus.Send(context.Background(), &testCommand{CommandModel: cqrs.NewCommandModel("u1")}))
	assert.Equal(t, 3, attempts)
}

func TestSendRetryLimitExhausted(t *testing.T) {
	bus := cqrs.NewBus(
		cqrs.WithLogger(quietLogger()),
		cqrs.WithRetry(2, time.Millisecond),
	)

	attempts := 0
	bus.RegisterHandler("testCommand", cqrs.CommandHandlerFunc(func(context.Context, cqrs.Command) error {
		attempts++
		return eventsourcing.ErrConcurrencyConflict
	}))

	err := bus.Send(context.Background(), &testCommand{CommandModel: cqrs.NewCommandModel("u1")})
	assert.ErrorIs(t, err, eventsourcing.ErrConcurrencyConflict)
	assert.Equal(t, 3, attempts, "initial attempt plus two retries")
}

func TestSendDoesNotRetryDomainErrors(t *testing.T) {
	bus := cqrs.NewBus(
		cqrs.WithLogger(quietLogger()),
		cqrs.WithRetry(3, time.Millisecond),
	)

	attempts := 0
	bus.RegisterHandler("testCommand", cqrs.CommandHandlerFunc(func(context.Context, cqrs.Command) error {
		attempts++
		return eventsourcing.NewInvalidOperation("nope")
	}))

	err := bus.Send(context.Background(), &testCommand{CommandModel: cqrs.NewCommandModel("u1")})
	assert.ErrorIs(t, err, eventsourcing.ErrInvalidOperation)
	assert.Equal(t, 1, attempts)
}

func TestPublishFansOutInOrder(t *testing.T) {
	bus := cqrs.NewBus(cqrs.WithLogger(quietLogger()))

	var order []string
	bus.Subscribe("testEvent", cqrs.EventHandlerFunc(func(context.Context, eventsourcing.Event) error {
		order = append(order, "first")
		return nil
	}))
	bus.Subscribe("testEvent", cqrs.EventHandlerFunc(func(context.Context, eventsourcing.Event) error {
		order = append(order, "second")
		return nil
	}))

	bus.Publish(context.Background(), &testEvent{EventModel: eventsourcing.NewEventModel("u1")})
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPublishContinuesAfterHandlerError(t *testing.T) {
	bus := cqrs.NewBus(cqrs.WithLogger(quietLogger()))

	var order []string
	bus.Subscribe("testEvent", cqrs.EventHandlerFunc(func(context.Context, eventsourcing.Event) error {
		order = append(order, "failing")
		return errors.New("boom")
	}))
	bus.Subscribe("testEvent", cqrs.EventHandlerFunc(func(context.Context, eventsourcing.Event) error {
		order = append(order, "still runs")
		return nil
	}))

	bus.Publish(context.Background(), &testEvent{EventModel: eventsourcing.NewEventModel("u1")})
	assert.Equal(t, []string{"failing", "still runs"}, order)
}

func TestPublishNoSubscribersIsNoop(t *testing.T) {
	bus := cqrs.NewBus(cqrs.WithLogger(quietLogger()))
	bus.Publish(context.Background(), &testEvent{EventModel: eventsourcing.NewEventModel("u1")})
}
