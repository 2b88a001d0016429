package dispatcher

import (
	"encoding/json"

	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/lobby"
	"github.com/doodleparty/server/internal/protocol"
	"github.com/doodleparty/server/internal/registry"
)

func (d *Dispatcher) handleCreateLobby(conn *registry.Connection, raw json.RawMessage) {
	var payload createLobbyPayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed create_lobby payload")
		return
	}
	if conn.LobbyID() != identity.Nil {
		d.sendError(conn, "Already in a lobby")
		return
	}

	settings, err := lobby.NewLobbySettings(payload.Settings)
	if err != nil {
		d.sendError(conn, errorMessage(err))
		return
	}
	l := d.lobbies.Create(settings)

	_, effects, err := l.AddParticipant(conn.ParticipantID, payload.PlayerName)
	if err != nil {
		d.lobbies.Remove(l.ID())
		d.sendError(conn, errorMessage(err))
		return
	}
	conn.SetLobbyID(l.ID())
	d.ApplyEffects(l.ID(), effects)
}

func (d *Dispatcher) handleJoinLobby(conn *registry.Connection, raw json.RawMessage, withPassword bool) {
	var payload joinLobbyPayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed join payload")
		return
	}
	if conn.LobbyID() != identity.Nil {
		d.sendError(conn, "Already in a lobby")
		return
	}

	l, ok := d.lobbies.Get(payload.LobbyID)
	if !ok {
		d.sendError(conn, "Lobby not found")
		return
	}

	if !withPassword && l.IsPrivate() {
		d.sendError(conn, lobby.ErrPrivateLobby.Error())
		return
	}
	if withPassword {
		if err := l.CheckPassword(payload.Password); err != nil {
			d.sendError(conn, errorMessage(err))
			return
		}
	}

	_, effects, err := l.AddParticipant(conn.ParticipantID, payload.PlayerName)
	if err != nil {
		d.sendError(conn, errorMessage(err))
		return
	}
	conn.SetLobbyID(l.ID())
	d.ApplyEffects(l.ID(), effects)
}

func (d *Dispatcher) handleLeaveLobby(conn *registry.Connection) {
	lobbyID := conn.LobbyID()
	if lobbyID == identity.Nil {
		d.sendError(conn, "Not in a lobby")
		return
	}
	d.leaveCurrentLobby(conn, lobbyID)
}

func (d *Dispatcher) handleGetLobbyList(conn *registry.Connection) {
	conn.Outbound.Send(protocol.Frame{
		Type: protocol.TypeLobbyList,
		Data: d.lobbies.ListJoinable(),
	})
}
