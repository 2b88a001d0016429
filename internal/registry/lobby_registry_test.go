package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodleparty/server/internal/clock"
	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/lobby"
)

func TestLobbyRegistry_CreateGetRemove(t *testing.T) {
	clk := clock.NewManual(time.Now())
	r := NewLobbyRegistry(clk, func() int64 { return 1 })

	l := r.Create(lobby.DefaultSettings())
	got, ok := r.Get(l.ID())
	require.True(t, ok)
	assert.Equal(t, l, got)

	r.Remove(l.ID())
	_, ok = r.Get(l.ID())
	assert.False(t, ok)
}

func TestLobbyRegistry_RemoveUnknownIsNoop(t *testing.T) {
	clk := clock.NewManual(time.Now())
	r := NewLobbyRegistry(clk, func() int64 { return 1 })
	assert.NotPanics(t, func() { r.Remove(identity.New()) })
}

func TestLobbyRegistry_ListJoinableOnlyIncludesWaitingLobbies(t *testing.T) {
	clk := clock.NewManual(time.Now())
	r := NewLobbyRegistry(clk, func() int64 { return 1 })

	waiting := r.Create(lobby.DefaultSettings())

	started := r.Create(lobby.DefaultSettings())
	hostID := identity.New()
	_, _, err := started.AddParticipant(hostID, "host")
	require.NoError(t, err)
	bobID := identity.New()
	_, _, err = started.AddParticipant(bobID, "bob")
	require.NoError(t, err)
	_, err = started.SetReady(hostID, true)
	require.NoError(t, err)
	_, err = started.SetReady(bobID, true)
	require.NoError(t, err)
	_, err = started.StartGame(hostID)
	require.NoError(t, err)

	summaries := r.ListJoinable()
	require.Len(t, summaries, 1)
	assert.Equal(t, waiting.ID(), summaries[0].ID)
}
