package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

func replay[T eventsourcing.Aggregate](t *testing.T, agg T, fresh T) T {
	t.Helper()
	for _, event := range agg.UncommittedChanges() {
		require.NoError(t, fresh.ApplyEvent(event))
	}
	return fresh
}

func TestCreateClub(t *testing.T) {
	club, err := domain.CreateClub("u1", "Rennes HB", "RN-35", "owner-1")
	require.NoError(t, err)

	assert.NotEmpty(t, club.ID())
	assert.Equal(t, "Rennes HB", club.Name)
	assert.Equal(t, "owner-1", club.OwnerID)
	require.Len(t, club.UncommittedChanges(), 1)

	created := club.UncommittedChanges()[0].(*domain.ClubCreated)
	assert.Equal(t, club.ID(), created.ClubID)
	assert.Equal(t, "u1", created.ActorID())
}

func TestCreateClubRequiresName(t *testing.T) {
	_, err := domain.CreateClub("u1", "", "", "owner-1")
	assert.ErrorIs(t, err, eventsourcing.ErrInvalidOperation)
}

func TestChangeOwner(t *testing.T) {
	club, err := domain.CreateClub("u1", "Rennes HB", "", "owner-1")
	require.NoError(t, err)

	require.NoError(t, club.ChangeOwner("u1", "owner-2"))
	assert.Equal(t, "owner-2", club.OwnerID)

	err = club.ChangeOwner("u1", "owner-2")
	assert.ErrorIs(t, err, eventsourcing.ErrInvalidOperation, "handing the club to its current owner is refused")
}

func TestAddCoachIsIdempotent(t *testing.T) {
	club, err := domain.CreateClub("u1", "Rennes HB", "", "owner-1")
	require.NoError(t, err)

	require.NoError(t, club.AddCoach("u1", "coach-1"))
	require.NoError(t, club.AddCoach("u1", "coach-1"))
	assert.Len(t, club.UncommittedChanges(), 2, "second add emits nothing")

	require.NoError(t, club.AddCoach("u1", "coach-2"))
	assert.Len(t, club.Coaches, 2)
}

func TestClubReplay(t *testing.T) {
	club, err := domain.CreateClub("u1", "Rennes HB", "RN-35", "owner-1")
	require.NoError(t, err)
	require.NoError(t, club.ChangeOwner("u1", "owner-2"))
	require.NoError(t, club.AddCoach("u1", "coach-1"))

	rebuilt := replay(t, club, domain.NewClub())
	assert.Equal(t, club.ID(), rebuilt.ID())
	assert.Equal(t, "Rennes HB", rebuilt.Name)
	assert.Equal(t, "RN-35", rebuilt.RegistrationNumber)
	assert.Equal(t, "owner-2", rebuilt.OwnerID)
	assert.Contains(t, rebuilt.Coaches, "coach-1")
}
