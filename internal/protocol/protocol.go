// Package protocol defines the wire shape of frames exchanged with
// clients, per spec.md §4.3 and §6: a JSON object carrying a discriminator
// (either "action" or "type") and a data payload.
package protocol

import "encoding/json"

// Frame is the outbound envelope: every server-to-client message is one of
// these, JSON-encoded.
type Frame struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// InboundFrame is the decoded shape of a client-sent message. The server
// accepts either "action" or "type" as the discriminator (spec.md §6).
type InboundFrame struct {
	Action string          `json:"action"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// ActionName returns whichever discriminator field was populated,
// preferring "action" when both are present.
func (f InboundFrame) ActionName() string {
	if f.Action != "" {
		return f.Action
	}
	return f.Type
}

// Inbound action names recognised by the dispatcher, per spec.md §4.3.
const (
	ActionCreateLobby          = "create_lobby"
	ActionJoinLobby            = "join_lobby"
	ActionJoinLobbyWithPassword = "join_lobby_with_password"
	ActionLeaveLobby           = "leave_lobby"
	ActionGetLobbyList         = "get_lobby_list"
	ActionSetReady             = "set_ready"
	ActionPlayerReady          = "player_ready" // alias of ActionSetReady
	ActionStartGame            = "start_game"
	ActionVoteTheme            = "vote_theme"
	ActionSubmitDrawing        = "submit_drawing"
	ActionVoteDrawing          = "vote_drawing"
	ActionVoteForDrawing       = "vote_for_drawing" // alias of ActionVoteDrawing
	ActionKickPlayer           = "kick_player"
	ActionBanPlayer            = "ban_player"
	ActionTransferHost         = "transfer_host"
	ActionUpdateLobbySettings  = "update_lobby_settings"
)

// Outbound frame type tags, per spec.md §4.3.
const (
	TypeConnectionAck    = "connection_ack"
	TypeLobbyJoined      = "lobby_joined"
	TypeLobbyUpdate      = "lobby_update"
	TypeLobbyList        = "lobby_list"
	TypeDrawingSubmitted = "drawing_submitted"
	TypePlayerKicked     = "player_kicked"
	TypePlayerBanned     = "player_banned"
	TypeKickedFromLobby  = "kicked_from_lobby"
	TypeBannedFromLobby  = "banned_from_lobby"
	TypeHostTransferred  = "host_transferred"
	TypeSettingsUpdated  = "settings_updated"
	TypeError            = "error"
)

// ErrorData is the payload of an "error" outbound frame (spec.md §6:
// "error.data.message is a short human-readable string").
type ErrorData struct {
	Message string `json:"message"`
}
