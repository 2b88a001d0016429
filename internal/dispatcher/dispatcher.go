// Package dispatcher decodes inbound frames, routes them to the
// appropriate internal/lobby operation under that lobby's own
// serialisation point, and turns the effects that operation emits into
// outbound frames via the registries — the message dispatcher of
// spec.md §2 component 6.
package dispatcher

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/lobby"
	"github.com/doodleparty/server/internal/protocol"
	"github.com/doodleparty/server/internal/registry"
	"github.com/doodleparty/server/internal/scheduler"
)

// Dispatcher wires the registries and scheduler together and is the single
// place inbound frames and timer expiries both flow through.
type Dispatcher struct {
	lobbies   *registry.LobbyRegistry
	conns     *registry.ConnectionRegistry
	scheduler *scheduler.Scheduler
	log       *logrus.Logger
}

// New builds a Dispatcher. sched may be nil at construction time and
// filled in afterward with SetScheduler — the scheduler and dispatcher
// depend on each other (the scheduler needs d.ApplyEffects as its
// EffectHandler), so cmd/server builds the dispatcher first, builds the
// scheduler around d.ApplyEffects, then binds it back.
func New(lobbies *registry.LobbyRegistry, conns *registry.ConnectionRegistry, sched *scheduler.Scheduler, log *logrus.Logger) *Dispatcher {
	return &Dispatcher{lobbies: lobbies, conns: conns, scheduler: sched, log: log}
}

// SetScheduler binds the scheduler this dispatcher arms and disarms
// lobby timers through. See New for why this is separate from
// construction.
func (d *Dispatcher) SetScheduler(sched *scheduler.Scheduler) {
	d.scheduler = sched
}

// Connect registers a freshly accepted transport connection and sends it
// the connection_ack frame carrying its new participant identifier
// (spec.md §4.3).
func (d *Dispatcher) Connect(out registry.Outbound) *registry.Connection {
	conn := d.conns.Add(out)
	conn.Outbound.Send(protocol.Frame{
		Type: protocol.TypeConnectionAck,
		Data: map[string]interface{}{"participant_id": conn.ParticipantID},
	})
	return conn
}

// Disconnect runs the connection-loss path (spec.md §7 Transport error /
// §4.1 remove_participant): if the connection was in a lobby, it is
// removed as a participant before the connection itself is forgotten.
func (d *Dispatcher) Disconnect(connID identity.ConnectionID) {
	conn, ok := d.conns.Get(connID)
	if !ok {
		return
	}
	if lobbyID := conn.LobbyID(); lobbyID != identity.Nil {
		d.leaveCurrentLobby(conn, lobbyID)
	}
	d.conns.Remove(connID)
}

// Handle decodes and routes one inbound message from connID.
func (d *Dispatcher) Handle(connID identity.ConnectionID, raw []byte) {
	conn, ok := d.conns.Get(connID)
	if !ok {
		return
	}

	var frame protocol.InboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		d.sendError(conn, "Malformed message")
		return
	}

	action := frame.ActionName()
	switch action {
	case protocol.ActionCreateLobby:
		d.handleCreateLobby(conn, frame.Data)
	case protocol.ActionJoinLobby:
		d.handleJoinLobby(conn, frame.Data, false)
	case protocol.ActionJoinLobbyWithPassword:
		d.handleJoinLobby(conn, frame.Data, true)
	case protocol.ActionLeaveLobby:
		d.handleLeaveLobby(conn)
	case protocol.ActionGetLobbyList:
		d.handleGetLobbyList(conn)
	case protocol.ActionSetReady, protocol.ActionPlayerReady:
		d.handleSetReady(conn, frame.Data)
	case protocol.ActionStartGame:
		d.handleStartGame(conn)
	case protocol.ActionVoteTheme:
		d.handleVoteTheme(conn, frame.Data)
	case protocol.ActionSubmitDrawing:
		d.handleSubmitDrawing(conn, frame.Data)
	case protocol.ActionVoteDrawing, protocol.ActionVoteForDrawing:
		d.handleVoteDrawing(conn, frame.Data)
	case protocol.ActionKickPlayer:
		d.handleKick(conn, frame.Data)
	case protocol.ActionBanPlayer:
		d.handleBan(conn, frame.Data)
	case protocol.ActionTransferHost:
		d.handleTransferHost(conn, frame.Data)
	case protocol.ActionUpdateLobbySettings:
		d.handleUpdateSettings(conn, frame.Data)
	default:
		d.sendError(conn, "Unknown action: "+action)
	}
}

// currentLobby resolves the lobby a connection believes it's in. It reports
// false both when the connection has no lobby and when its lobby no longer
// exists; callers answer either case with the same "Not in a lobby" error.
func (d *Dispatcher) currentLobby(conn *registry.Connection) (*lobby.Lobby, bool) {
	lobbyID := conn.LobbyID()
	if lobbyID == identity.Nil {
		return nil, false
	}
	l, ok := d.lobbies.Get(lobbyID)
	if !ok {
		// The lobby was removed (e.g. emptied out) without this
		// connection's membership having been explicitly cleared yet.
		conn.SetLobbyID(identity.Nil)
		return nil, false
	}
	return l, true
}

func (d *Dispatcher) sendError(conn *registry.Connection, message string) {
	conn.Outbound.Send(protocol.Frame{
		Type: protocol.TypeError,
		Data: protocol.ErrorData{Message: message},
	})
}

// runOp applies the standard error-to-error-frame and effects-to-sends
// handling shared by nearly every handler: run op, and on success apply
// its effects against lobbyID; on failure (protocol, precondition, or
// not-found per spec.md §7) send the operation's message back to conn
// alone. An error that is not an ActionError is logged as internal.
func (d *Dispatcher) runOp(conn *registry.Connection, lobbyID identity.LobbyID, op func() ([]lobby.Effect, error)) {
	effects, err := op()
	if err != nil {
		if _, ok := err.(*lobby.ActionError); !ok {
			d.log.WithError(err).WithField("lobby_id", lobbyID).Error("dispatcher: internal error")
		}
		d.sendError(conn, errorMessage(err))
		return
	}
	d.ApplyEffects(lobbyID, effects)
}

func errorMessage(err error) string {
	if ae, ok := err.(*lobby.ActionError); ok {
		return ae.Error()
	}
	return "Internal error"
}

func (d *Dispatcher) leaveCurrentLobby(conn *registry.Connection, lobbyID identity.LobbyID) {
	conn.SetLobbyID(identity.Nil)
	l, ok := d.lobbies.Get(lobbyID)
	if !ok {
		return
	}
	d.ApplyEffects(lobbyID, l.RemoveParticipant(conn.ParticipantID))
}
