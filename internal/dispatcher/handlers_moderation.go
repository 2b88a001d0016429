package dispatcher

import (
	"encoding/json"

	"github.com/doodleparty/server/internal/lobby"
	"github.com/doodleparty/server/internal/registry"
)

func (d *Dispatcher) handleKick(conn *registry.Connection, raw json.RawMessage) {
	l, ok := d.currentLobby(conn)
	if !ok {
		d.sendError(conn, "Not in a lobby")
		return
	}
	var payload targetPlayerPayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed kick_player payload")
		return
	}
	d.runOp(conn, l.ID(), func() ([]lobby.Effect, error) {
		return l.Kick(conn.ParticipantID, payload.TargetPlayerID)
	})
}

func (d *Dispatcher) handleBan(conn *registry.Connection, raw json.RawMessage) {
	l, ok := d.currentLobby(conn)
	if !ok {
		d.sendError(conn, "Not in a lobby")
		return
	}
	var payload targetPlayerPayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed ban_player payload")
		return
	}
	d.runOp(conn, l.ID(), func() ([]lobby.Effect, error) {
		return l.Ban(conn.ParticipantID, payload.TargetPlayerID)
	})
}

func (d *Dispatcher) handleTransferHost(conn *registry.Connection, raw json.RawMessage) {
	l, ok := d.currentLobby(conn)
	if !ok {
		d.sendError(conn, "Not in a lobby")
		return
	}
	var payload targetPlayerPayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed transfer_host payload")
		return
	}
	d.runOp(conn, l.ID(), func() ([]lobby.Effect, error) {
		return l.TransferHost(conn.ParticipantID, payload.TargetPlayerID)
	})
}

func (d *Dispatcher) handleUpdateSettings(conn *registry.Connection, raw json.RawMessage) {
	l, ok := d.currentLobby(conn)
	if !ok {
		d.sendError(conn, "Not in a lobby")
		return
	}
	var payload updateSettingsPayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed update_lobby_settings payload")
		return
	}
	d.runOp(conn, l.ID(), func() ([]lobby.Effect, error) {
		return l.UpdateSettings(conn.ParticipantID, payload.Settings)
	})
}
