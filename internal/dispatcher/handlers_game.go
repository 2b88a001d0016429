package dispatcher

import (
	"encoding/json"

	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/lobby"
	"github.com/doodleparty/server/internal/registry"
)

func (d *Dispatcher) handleSetReady(conn *registry.Connection, raw json.RawMessage) {
	l, ok := d.currentLobby(conn)
	if !ok {
		d.sendError(conn, "Not in a lobby")
		return
	}
	var payload setReadyPayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed set_ready payload")
		return
	}
	d.runOp(conn, l.ID(), func() ([]lobby.Effect, error) {
		return l.SetReady(conn.ParticipantID, payload.IsReady)
	})
}

func (d *Dispatcher) handleStartGame(conn *registry.Connection) {
	l, ok := d.currentLobby(conn)
	if !ok {
		d.sendError(conn, "Not in a lobby")
		return
	}
	d.runOp(conn, l.ID(), func() ([]lobby.Effect, error) {
		return l.StartGame(conn.ParticipantID)
	})
}

func (d *Dispatcher) handleVoteTheme(conn *registry.Connection, raw json.RawMessage) {
	l, ok := d.currentLobby(conn)
	if !ok {
		d.sendError(conn, "Not in a lobby")
		return
	}
	var payload voteThemePayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed vote_theme payload")
		return
	}
	d.runOp(conn, l.ID(), func() ([]lobby.Effect, error) {
		return l.CastThemeVote(conn.ParticipantID, payload.Theme)
	})
}

func (d *Dispatcher) handleSubmitDrawing(conn *registry.Connection, raw json.RawMessage) {
	l, ok := d.currentLobby(conn)
	if !ok {
		d.sendError(conn, "Not in a lobby")
		return
	}
	var payload submitDrawingPayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed submit_drawing payload")
		return
	}
	d.runOp(conn, l.ID(), func() ([]lobby.Effect, error) {
		return l.SubmitDrawing(conn.ParticipantID, payload.Drawing)
	})
}

// handleVoteDrawing resolves drawing_id from player_id when the caller
// didn't supply a drawing_id directly (spec.md §6).
func (d *Dispatcher) handleVoteDrawing(conn *registry.Connection, raw json.RawMessage) {
	l, ok := d.currentLobby(conn)
	if !ok {
		d.sendError(conn, "Not in a lobby")
		return
	}
	var payload voteDrawingPayload
	if err := decode(raw, &payload); err != nil {
		d.sendError(conn, "Malformed vote_drawing payload")
		return
	}

	drawingID := payload.DrawingID
	if drawingID == identity.Nil {
		resolved, found := l.DrawingByAuthor(payload.PlayerID)
		if !found {
			d.sendError(conn, lobby.ErrUnknownDrawing.Error())
			return
		}
		drawingID = resolved
	}

	d.runOp(conn, l.ID(), func() ([]lobby.Effect, error) {
		return l.CastDrawingVote(conn.ParticipantID, drawingID)
	})
}
