package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodleparty/server/internal/clock"
	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/lobby"
)

// recorder captures every effect batch handed to an EffectHandler.
type recorder struct {
	mu    sync.Mutex
	calls []struct {
		lobbyID identity.LobbyID
		effects []lobby.Effect
	}
}

func (r *recorder) handle(lobbyID identity.LobbyID, effects []lobby.Effect) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, struct {
		lobbyID identity.LobbyID
		effects []lobby.Effect
	}{lobbyID, effects})
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newReadyLobby(t *testing.T, clk clock.Clock) *lobby.Lobby {
	t.Helper()
	settings := lobby.DefaultSettings()
	settings.MinParticipants = 2
	l := lobby.New(identity.New(), settings, clk, 1)
	host := identity.New()
	bob := identity.New()
	_, _, err := l.AddParticipant(host, "host")
	require.NoError(t, err)
	_, _, err = l.AddParticipant(bob, "bob")
	require.NoError(t, err)
	_, err = l.SetReady(host, true)
	require.NoError(t, err)
	_, err = l.SetReady(bob, true)
	require.NoError(t, err)
	_, err = l.StartGame(host)
	require.NoError(t, err)
	return l
}

func TestScheduler_FiresDeadlineAndAdvancesPhase(t *testing.T) {
	clk := clock.NewManual(time.Now())
	l := newReadyLobby(t, clk)
	rec := &recorder{}

	s := New(clk, func(id identity.LobbyID) (*lobby.Lobby, bool) {
		if id == l.ID() {
			return l, true
		}
		return nil, false
	}, rec.handle)

	s.Arm(l.ID(), clk.Now().Add(30*time.Second))
	assert.Equal(t, lobby.StatusThemeVoting, l.Status())

	clk.Advance(30 * time.Second)

	assert.Equal(t, lobby.StatusDrawing, l.Status())
}

func TestScheduler_DisarmStopsFutureFiring(t *testing.T) {
	clk := clock.NewManual(time.Now())
	l := newReadyLobby(t, clk)
	rec := &recorder{}

	s := New(clk, func(id identity.LobbyID) (*lobby.Lobby, bool) {
		return l, true
	}, rec.handle)

	s.Arm(l.ID(), clk.Now().Add(30*time.Second))
	s.Disarm(l.ID())

	clk.Advance(time.Hour)
	assert.Equal(t, lobby.StatusThemeVoting, l.Status())
}

func TestScheduler_CadenceTicksOnceASecondDuringThemeVoting(t *testing.T) {
	clk := clock.NewManual(time.Now())
	l := newReadyLobby(t, clk)
	rec := &recorder{}

	s := New(clk, func(id identity.LobbyID) (*lobby.Lobby, bool) {
		return l, true
	}, rec.handle)

	s.Arm(l.ID(), clk.Now().Add(30*time.Second))

	before := rec.count()
	for i := 0; i < 3; i++ {
		clk.Advance(time.Second)
	}
	after := rec.count()

	assert.GreaterOrEqual(t, after-before, 3)
}
