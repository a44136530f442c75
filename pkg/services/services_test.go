package services_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffhb/clubstore/pkg/cqrs"
	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
	"github.com/ffhb/clubstore/pkg/eventsourcing/journal"
	"github.com/ffhb/clubstore/pkg/services"
)

// fixture wires every service onto a bus backed by a journal store in a
// temporary directory, the same way the binary does.
type fixture struct {
	bus      *cqrs.Bus
	store    *journal.Store
	club     *services.ClubService
	user     *services.UserService
	player   *services.PlayerService
	coll     *services.CollectiveService
	sessions *services.TrainingSessionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := journal.Open(filepath.Join(t.TempDir(), "journal.json"), domain.NewEventRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	bus := cqrs.NewBus(cqrs.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))

	clubs := eventsourcing.NewRepository[*domain.Club](store, domain.ClubStreamID, domain.NewClub)
	users := eventsourcing.NewRepository[*domain.User](store, domain.UserStreamID, domain.NewUser)
	players := eventsourcing.NewRepository[*domain.Player](store, domain.PlayerStreamID, domain.NewPlayer)
	federation := eventsourcing.NewRepository[*domain.Federation](store, domain.FederationStreamID, domain.NewFederation)
	collectives := eventsourcing.NewRepository[*domain.Collective](store, domain.CollectiveStreamID, domain.NewCollective)
	sessions := eventsourcing.NewRepository[*domain.TrainingSession](store, domain.TrainingSessionStreamID, domain.NewTrainingSession)

	f := &fixture{
		bus:      bus,
		store:    store,
		club:     services.NewClubService(clubs),
		user:     services.NewUserService(users),
		player:   services.NewPlayerService(players, clubs, federation),
		coll:     services.NewCollectiveService(collectives, clubs, players),
		sessions: services.NewTrainingSessionService(sessions, clubs),
	}
	f.club.Register(bus)
	f.user.Register(bus)
	f.player.Register(bus)
	f.coll.Register(bus)
	f.sessions.Register(bus)
	return f
}

func (f *fixture) createClub(t *testing.T, name string) string {
	t.Helper()
	clubID, err := f.club.CreateClub(context.Background(), &services.CreateClub{
		CommandModel: cqrs.NewCommandModel("u1"),
		Name:         name,
		OwnerID:      "owner-1",
	})
	require.NoError(t, err)
	return clubID
}

func (f *fixture) registerPlayer(t *testing.T, clubID, firstName, license string) string {
	t.Helper()
	playerID, err := f.player.RegisterPlayer(context.Background(), &services.RegisterPlayer{
		CommandModel:  cqrs.NewCommandModel("u1"),
		ClubID:        clubID,
		FirstName:     firstName,
		LastName:      "Testeur",
		Gender:        domain.GenderMale,
		DateOfBirth:   time.Date(2005, 1, 15, 0, 0, 0, 0, time.UTC),
		Season:        "2025/2026",
		LicenseNumber: license,
		LicenseType:   domain.LicenseTypeA,
	})
	require.NoError(t, err)
	return playerID
}

func TestClubCommandsThroughBus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	clubID := f.createClub(t, "Rennes HB")

	require.NoError(t, f.bus.Send(ctx, &services.ChangeClubOwner{
		CommandModel: cqrs.NewCommandModel("u1"),
		ClubID:       clubID,
		NewOwnerID:   "owner-2",
	}))
	require.NoError(t, f.bus.Send(ctx, &services.AddClubCoach{
		CommandModel: cqrs.NewCommandModel("u1"),
		ClubID:       clubID,
		UserID:       "coach-1",
	}))

	events, err := f.store.ReadStream(ctx, domain.ClubStreamID(clubID))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "owner-2", events[1].(*domain.ClubOwnerChanged).NewOwnerID)
	assert.Equal(t, "coach-1", events[2].(*domain.ClubCoachAdded).UserID)
}

func TestUserCommands(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.bus.Send(ctx, &services.SignUpUser{
		CommandModel: cqrs.NewCommandModel("auth0|abc"),
		UserID:       "auth0|abc",
		Name:         "Jean Dupont",
		Email:        "jean@example.org",
	}))
	require.NoError(t, f.bus.Send(ctx, &services.UpdateUserEmail{
		CommandModel: cqrs.NewCommandModel("auth0|abc"),
		UserID:       "auth0|abc",
		Email:        "jean.dupont@example.org",
	}))

	events, err := f.store.ReadStream(ctx, domain.UserStreamID("auth0|abc"))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "jean.dupont@example.org", events[1].(*domain.UserEmailUpdated).Email)
}

func TestRegisterPlayerWritesFederationThenPlayer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	clubID := f.createClub(t, "Rennes HB")

	playerID := f.registerPlayer(t, clubID, "Nikola", "LIC-1")

	// The federation claim lands in the global log before the player events.
	recorded, err := f.store.ReadFrom(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, recorded, 4)
	assert.Equal(t, "FFHB", recorded[1].StreamID)
	license := recorded[1].Event.(*domain.PlayerLicenseRegistered)
	assert.Equal(t, playerID, license.PlayerID)
	assert.Equal(t, domain.PlayerStreamID(playerID), recorded[2].StreamID)
	assert.IsType(t, &domain.PlayerRegistered{}, recorded[2].Event)
	assert.IsType(t, &domain.PlayerRegisteredToClub{}, recorded[3].Event)
}

func TestRegisterPlayerUnknownClub(t *testing.T) {
	f := newFixture(t)
	_, err := f.player.RegisterPlayer(context.Background(), &services.RegisterPlayer{
		CommandModel: cqrs.NewCommandModel("u1"),
		ClubID:       "missing",
		FirstName:    "Nikola",
		LastName:     "Testeur",
		Gender:       domain.GenderMale,
		DateOfBirth:  time.Date(2005, 1, 15, 0, 0, 0, 0, time.UTC),
		Season:       "2025/2026",
	})
	assert.ErrorIs(t, err, eventsourcing.ErrAggregateNotFound)
}

func TestRegisterPlayerDuplicateLicense(t *testing.T) {
	f := newFixture(t)
	clubID := f.createClub(t, "Rennes HB")
	f.registerPlayer(t, clubID, "Nikola", "LIC-1")

	_, err := f.player.RegisterPlayer(context.Background(), &services.RegisterPlayer{
		CommandModel:  cqrs.NewCommandModel("u1"),
		ClubID:        clubID,
		FirstName:     "Luka",
		LastName:      "Testeur",
		Gender:        domain.GenderMale,
		DateOfBirth:   time.Date(2006, 3, 2, 0, 0, 0, 0, time.UTC),
		Season:        "2025/2026",
		LicenseNumber: "LIC-1",
		LicenseType:   domain.LicenseTypeA,
	})
	assert.ErrorIs(t, err, eventsourcing.ErrInvalidOperation)
}

func TestUnregisterPlayerFromClub(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	clubID := f.createClub(t, "Rennes HB")
	playerID := f.registerPlayer(t, clubID, "Nikola", "LIC-1")

	require.NoError(t, f.bus.Send(ctx, &services.UnregisterPlayerFromClub{
		CommandModel: cqrs.NewCommandModel("u1"),
		PlayerID:     playerID,
		ClubID:       clubID,
	}))

	// A second unregistration is refused.
	err := f.bus.Send(ctx, &services.UnregisterPlayerFromClub{
		CommandModel: cqrs.NewCommandModel("u1"),
		PlayerID:     playerID,
		ClubID:       clubID,
	})
	assert.ErrorIs(t, err, eventsourcing.ErrInvalidOperation)
}

func TestCollectiveCommands(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	clubID := f.createClub(t, "Rennes HB")
	playerID := f.registerPlayer(t, clubID, "Nikola", "LIC-1")

	collID, err := f.coll.CreateCollective(ctx, &services.CreateCollective{
		CommandModel: cqrs.NewCommandModel("u1"),
		ClubID:       clubID,
		Name:         "Seniors M",
	})
	require.NoError(t, err)

	// Membership requires an existing player.
	err = f.bus.Send(ctx, &services.AddPlayerToCollective{
		CommandModel: cqrs.NewCommandModel("u1"),
		CollectiveID: collID,
		PlayerID:     "ghost",
	})
	assert.ErrorIs(t, err, eventsourcing.ErrAggregateNotFound)

	require.NoError(t, f.bus.Send(ctx, &services.AddPlayerToCollective{
		CommandModel: cqrs.NewCommandModel("u1"),
		CollectiveID: collID,
		PlayerID:     playerID,
	}))
	require.NoError(t, f.bus.Send(ctx, &services.RemovePlayerFromCollective{
		CommandModel: cqrs.NewCommandModel("u1"),
		CollectiveID: collID,
		PlayerID:     playerID,
	}))

	events, err := f.store.ReadStream(ctx, domain.CollectiveStreamID(collID))
	require.NoError(t, err)
	require.Len(t, events, 3)
}

func TestCollectiveRequiresClub(t *testing.T) {
	f := newFixture(t)
	_, err := f.coll.CreateCollective(context.Background(), &services.CreateCollective{
		CommandModel: cqrs.NewCommandModel("u1"),
		ClubID:       "missing",
		Name:         "Seniors M",
	})
	assert.ErrorIs(t, err, eventsourcing.ErrAggregateNotFound)
}

func TestTrainingSessionAttendanceThroughBus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	clubID := f.createClub(t, "Rennes HB")
	playerID := f.registerPlayer(t, clubID, "Nikola", "LIC-1")

	start := time.Date(2025, 9, 3, 18, 30, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	sessionID, err := f.sessions.CreateSession(ctx, &services.CreateTrainingSession{
		CommandModel: cqrs.NewCommandModel("u1"),
		ClubID:       clubID,
		StartTime:    start,
		EndTime:      end,
	})
	require.NoError(t, err)

	require.NoError(t, f.bus.Send(ctx, &services.ChangeTrainingSessionPlayerStatus{
		CommandModel:      cqrs.NewCommandModel("u1"),
		TrainingSessionID: sessionID,
		PlayerID:          playerID,
		Status:            domain.StatusPresent,
	}))
	require.NoError(t, f.bus.Send(ctx, &services.ChangeTrainingSessionPlayerStatus{
		CommandModel:      cqrs.NewCommandModel("u1"),
		TrainingSessionID: sessionID,
		PlayerID:          playerID,
		Status:            domain.StatusLate,
		ArrivalTime:       start.Add(10 * time.Minute),
		Reason:            "traffic",
		WithReason:        true,
	}))
	require.NoError(t, f.bus.Send(ctx, &services.RemovePlayerFromTrainingSession{
		CommandModel:      cqrs.NewCommandModel("u1"),
		TrainingSessionID: sessionID,
		PlayerID:          playerID,
	}))
	require.NoError(t, f.bus.Send(ctx, &services.CancelTrainingSession{
		CommandModel:      cqrs.NewCommandModel("u1"),
		TrainingSessionID: sessionID,
	}))

	// Cancelled sessions reject further attendance changes.
	err = f.bus.Send(ctx, &services.ChangeTrainingSessionPlayerStatus{
		CommandModel:      cqrs.NewCommandModel("u1"),
		TrainingSessionID: sessionID,
		PlayerID:          playerID,
		Status:            domain.StatusPresent,
	})
	assert.ErrorIs(t, err, eventsourcing.ErrInvalidOperation)

	events, err := f.store.ReadStream(ctx, domain.TrainingSessionStreamID(sessionID))
	require.NoError(t, err)
	require.Len(t, events, 5)
	assert.IsType(t, &domain.TrainingSessionCanceled{}, events[4])
}

func TestTrainingSessionRequiresClub(t *testing.T) {
	f := newFixture(t)
	_, err := f.sessions.CreateSession(context.Background(), &services.CreateTrainingSession{
		CommandModel: cqrs.NewCommandModel("u1"),
		ClubID:       "missing",
		StartTime:    time.Now(),
		EndTime:      time.Now().Add(time.Hour),
	})
	assert.ErrorIs(t, err, eventsourcing.ErrAggregateNotFound)
}
