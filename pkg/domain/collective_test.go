package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ffhb/clubstore/pkg/domain"
	"github.com/ffhb/clubstore/pkg/eventsourcing"
)

func TestCreateCollective(t *testing.T) {
	coll, err := domain.CreateCollective("u1", "club-1", "Seniors M", "first team")
	require.NoError(t, err)

	assert.NotEmpty(t, coll.ID())
	assert.Equal(t, "club-1", coll.ClubID)
	assert.Equal(t, "Seniors M", coll.Name)

	_, err = domain.CreateCollective("u1", "club-1", "", "")
	assert.ErrorIs(t, err, eventsourcing.ErrInvalidOperation)
}

func TestCollectiveMembership(t *testing.T) {
	coll, err := domain.CreateCollective("u1", "club-1", "Seniors M", "")
	require.NoError(t, err)

	require.NoError(t, coll.AddPlayer("u1", "p1"))
	err = coll.AddPlayer("u1", "p1")
	assert.ErrorIs(t, err, eventsourcing.ErrInvalidOperation, "a player joins a collective once")

	err = coll.RemovePlayer("u1", "p2")
	assert.ErrorIs(t, err, eventsourcing.ErrInvalidOperation)

	require.NoError(t, coll.RemovePlayer("u1", "p1"))
	assert.Empty(t, coll.Players)
}

func TestCollectiveReplay(t *testing.T) {
	coll, err := domain.CreateCollective("u1", "club-1", "Seniors M", "first team")
	require.NoError(t, err)
	require.NoError(t, coll.AddPlayer("u1", "p1"))
	require.NoError(t, coll.AddPlayer("u1", "p2"))
	require.NoError(t, coll.RemovePlayer("u1", "p1"))

	rebuilt := replay(t, coll, domain.NewCollective())
	assert.Equal(t, coll.ID(), rebuilt.ID())
	assert.Equal(t, "first team", rebuilt.Description)
	assert.Len(t, rebuilt.Players, 1)
	assert.Contains(t, rebuilt.Players, "p2")
}
