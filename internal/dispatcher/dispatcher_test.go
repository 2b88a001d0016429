package dispatcher

import (
	"encoding/json"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodleparty/server/internal/clock"
	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/protocol"
	"github.com/doodleparty/server/internal/registry"
	"github.com/doodleparty/server/internal/scheduler"
)

// fakeOutbound captures every frame sent to it, standing in for a live
// transport connection the way the teacher's mockBroadcaster stands in for
// a live websocket.
type fakeOutbound struct {
	mu     sync.Mutex
	frames []protocol.Frame
	fail   bool
}

func (f *fakeOutbound) Send(frame protocol.Frame) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return false
	}
	f.frames = append(f.frames, frame)
	return true
}

func (f *fakeOutbound) last() protocol.Frame {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frames[len(f.frames)-1]
}

func (f *fakeOutbound) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func newTestDispatcher() (*Dispatcher, *registry.ConnectionRegistry, *registry.LobbyRegistry) {
	clk := clock.NewManual(time.Now())
	lobbies := registry.NewLobbyRegistry(clk, func() int64 { return 1 })
	conns := registry.NewConnectionRegistry()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	d := New(lobbies, conns, nil, logger)
	sched := scheduler.New(clk, lobbies.Get, d.ApplyEffects)
	d.SetScheduler(sched)
	return d, conns, lobbies
}

func mustJSON(t *testing.T, v interface{}) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return raw
}

func sendAction(d *Dispatcher, connID identity.ConnectionID, action string, data interface{}) {
	frame := struct {
		Action string      `json:"action"`
		Data   interface{} `json:"data"`
	}{Action: action, Data: data}
	raw, _ := json.Marshal(frame)
	d.Handle(connID, raw)
}

func TestDispatcher_CreateAndJoinLobby(t *testing.T) {
	d, _, lobbies := newTestDispatcher()

	host := &fakeOutbound{}
	hostConn := d.Connect(host)
	sendAction(d, hostConn.ID, protocol.ActionCreateLobby, map[string]interface{}{"player_name": "alice"})

	// connection_ack, lobby_joined unicast, and the join's own broadcast snapshot.
	require.Equal(t, 3, host.count())
	assert.Equal(t, protocol.TypeLobbyUpdate, host.last().Type)

	require.Len(t, lobbies.ListJoinable(), 1)
	lobbyID := lobbies.ListJoinable()[0].ID

	guest := &fakeOutbound{}
	guestConn := d.Connect(guest)
	sendAction(d, guestConn.ID, protocol.ActionJoinLobby, map[string]interface{}{
		"lobby_id":    lobbyID,
		"player_name": "bob",
	})

	assert.Equal(t, protocol.TypeLobbyUpdate, guest.last().Type)
	// The host should also have received a broadcast snapshot about the new joiner.
	assert.Equal(t, 4, host.count())
}

func TestDispatcher_CreateLobbyRejectsOutOfBoundsMaxParticipants(t *testing.T) {
	d, _, lobbies := newTestDispatcher()

	host := &fakeOutbound{}
	hostConn := d.Connect(host)
	sendAction(d, hostConn.ID, protocol.ActionCreateLobby, map[string]interface{}{
		"player_name": "alice",
		"settings":    map[string]interface{}{"max_participants": 50},
	})

	assert.Equal(t, protocol.TypeError, host.last().Type)
	assert.Equal(t, identity.Nil, hostConn.LobbyID())
	assert.Empty(t, lobbies.ListJoinable())
}

func TestDispatcher_UnknownActionReturnsError(t *testing.T) {
	d, _, _ := newTestDispatcher()
	conn := &fakeOutbound{}
	c := d.Connect(conn)

	sendAction(d, c.ID, "not_a_real_action", nil)

	assert.Equal(t, protocol.TypeError, conn.last().Type)
}

func TestDispatcher_ActionWithoutLobbyMembershipErrors(t *testing.T) {
	d, _, _ := newTestDispatcher()
	conn := &fakeOutbound{}
	c := d.Connect(conn)

	sendAction(d, c.ID, protocol.ActionStartGame, nil)

	assert.Equal(t, protocol.TypeError, conn.last().Type)
}

func TestDispatcher_DisconnectRemovesParticipantFromLobby(t *testing.T) {
	d, conns, lobbies := newTestDispatcher()

	host := &fakeOutbound{}
	hostConn := d.Connect(host)
	sendAction(d, hostConn.ID, protocol.ActionCreateLobby, map[string]interface{}{"player_name": "alice"})

	lobbyID := lobbies.ListJoinable()[0].ID
	l, ok := lobbies.Get(lobbyID)
	require.True(t, ok)

	d.Disconnect(hostConn.ID)

	_, stillThere := conns.Get(hostConn.ID)
	assert.False(t, stillThere)
	assert.Empty(t, l.Summary().PlayerCount)
}

func TestDispatcher_KickClearsTargetConnectionLobby(t *testing.T) {
	d, _, lobbies := newTestDispatcher()

	host := &fakeOutbound{}
	hostConn := d.Connect(host)
	sendAction(d, hostConn.ID, protocol.ActionCreateLobby, map[string]interface{}{"player_name": "alice"})
	lobbyID := lobbies.ListJoinable()[0].ID

	target := &fakeOutbound{}
	targetConn := d.Connect(target)
	sendAction(d, targetConn.ID, protocol.ActionJoinLobby, map[string]interface{}{
		"lobby_id":    lobbyID,
		"player_name": "bob",
	})

	sendAction(d, hostConn.ID, protocol.ActionKickPlayer, map[string]interface{}{
		"target_player_id": targetConn.ParticipantID,
	})

	assert.Equal(t, protocol.TypeKickedFromLobby, target.last().Type)
	assert.Equal(t, identity.Nil, targetConn.LobbyID())
}
