// Command clubstore runs the event-sourced club backend: the journal event
// store, the command bus with its handlers, the projection worker and the
// per-club WebSocket notification endpoint.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ffhb/clubstore/pkg/config"
	"github.com/ffhb/clubstore/pkg/cqrs"
	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
	"github.com/ffhb/clubstore/pkg/eventsourcing/journal"
	"github.com/ffhb/clubstore/pkg/readmodel"
	"github.com/ffhb/clubstore/pkg/runner"
	"github.com/ffhb/clubstore/pkg/services"
	"github.com/ffhb/clubstore/pkg/ws"
)

// app bundles the wired backend. The HTTP command/query API mounts on top
// of Bus and the facades; this binary only serves the notification socket.
type app struct {
	Bus          *cqrs.Bus
	ClubFacade   *readmodel.ClubReadFacade
	PublicFacade *readmodel.PublicReadFacade
	Hub          *ws.Hub
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger); err != nil {
		logger.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, err := journal.Open(cfg.EventJournalPath, domain.NewEventRegistry())
	if err != nil {
		return err
	}
	defer store.Close()

	db, err := readmodel.OpenDB(readmodel.WithDSN(cfg.ReadModelURL))
	if err != nil {
		return err
	}
	defer db.Close()

	hub := ws.NewHub(logger)
	a := &app{
		Bus:          newBus(cfg, logger, store),
		ClubFacade:   readmodel.NewClubReadFacade(db),
		PublicFacade: readmodel.NewPublicReadFacade(db),
		Hub:          hub,
	}

	worker := readmodel.NewWorker(store, db, logger,
		readmodel.WithPollInterval(cfg.WorkerPollInterval),
		readmodel.WithBatchSize(cfg.ProjectionBatchSize),
		readmodel.WithResetOnBoot(cfg.ResetReadModelOnBoot),
		readmodel.WithNotifier(hub),
	)

	r := runner.New(
		[]runner.Service{worker, newSocketServer(cfg.ListenAddr, a, logger)},
		runner.WithLogger(logger),
	)
	return r.Run(ctx)
}

// newBus wires every command handler onto a fresh bus.
func newBus(cfg *config.Config, logger *slog.Logger, store eventsourcing.EventStore) *cqrs.Bus {
	bus := cqrs.NewBus(
		cqrs.WithLogger(logger),
		cqrs.WithRetry(cfg.CommandRetryLimit, cfg.CommandRetryBackoff),
	)

	clubs := eventsourcing.NewRepository(store, domain.ClubStreamID, domain.NewClub)
	users := eventsourcing.NewRepository(store, domain.UserStreamID, domain.NewUser)
	players := eventsourcing.NewRepository(store, domain.PlayerStreamID, domain.NewPlayer)
	federation := eventsourcing.NewRepository(store, domain.FederationStreamID, domain.NewFederation)
	collectives := eventsourcing.NewRepository(store, domain.CollectiveStreamID, domain.NewCollective)
	sessions := eventsourcing.NewRepository(store, domain.TrainingSessionStreamID, domain.NewTrainingSession)

	services.NewClubService(clubs).Register(bus)
	services.NewUserService(users).Register(bus)
	services.NewPlayerService(players, clubs, federation).Register(bus)
	services.NewCollectiveService(collectives, clubs, players).Register(bus)
	services.NewTrainingSessionService(sessions, clubs).Register(bus)

	return bus
}
