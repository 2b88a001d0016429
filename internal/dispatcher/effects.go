package dispatcher

import (
	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/lobby"
	"github.com/doodleparty/server/internal/protocol"
)

// ApplyEffects carries out the effects a lobby operation or timer expiry
// emitted, entirely outside that lobby's lock (spec.md §5). It is also the
// scheduler.EffectHandler passed into scheduler.New, so timer-driven
// transitions flow through exactly the same delivery code as
// action-driven ones.
func (d *Dispatcher) ApplyEffects(lobbyID identity.LobbyID, effects []lobby.Effect) {
	for _, effect := range effects {
		switch e := effect.(type) {
		case lobby.BroadcastSnapshot:
			d.broadcast(lobbyID, protocol.Frame{Type: protocol.TypeLobbyUpdate, Data: e.Snapshot})

		case lobby.Broadcast:
			d.broadcast(lobbyID, protocol.Frame{Type: e.Type, Data: e.Data})

		case lobby.Unicast:
			if conn, ok := d.conns.ByParticipant(e.ParticipantID); ok {
				// A kick/ban removes the target from the lobby core on the
				// kicker's connection; the target's own connection context
				// has to be told separately that it's no longer a member
				// (spec.md §8 scenario 6: "current_lobby is cleared").
				if e.Type == protocol.TypeKickedFromLobby || e.Type == protocol.TypeBannedFromLobby {
					conn.SetLobbyID(identity.Nil)
				}
				if !conn.Outbound.Send(protocol.Frame{Type: e.Type, Data: e.Data}) {
					d.Disconnect(conn.ID)
				}
			}

		case lobby.ScheduleDeadline:
			d.scheduler.Arm(lobbyID, e.At)

		case lobby.CancelDeadline:
			d.scheduler.Disarm(lobbyID)

		case lobby.RemoveLobby:
			d.scheduler.Remove(lobbyID)
			d.lobbies.Remove(lobbyID)

		default:
			d.log.WithField("lobby_id", lobbyID).Warn("dispatcher: unhandled effect type")
		}
	}
}

// broadcast sends frame to every connection currently in lobbyID. A send
// failure is treated as a disconnect (spec.md §5 OUTBOUND BACKPRESSURE);
// other recipients are unaffected.
func (d *Dispatcher) broadcast(lobbyID identity.LobbyID, frame protocol.Frame) {
	for _, conn := range d.conns.InLobby(lobbyID) {
		if !conn.Outbound.Send(frame) {
			d.Disconnect(conn.ID)
		}
	}
}
