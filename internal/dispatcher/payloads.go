package dispatcher

import (
	"encoding/json"

	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/lobby"
)

type createLobbyPayload struct {
	PlayerName string              `json:"player_name"`
	Settings   lobby.SettingsPatch `json:"settings"`
}

type joinLobbyPayload struct {
	LobbyID    identity.LobbyID `json:"lobby_id"`
	PlayerName string           `json:"player_name"`
	Password   string           `json:"password"`
}

type setReadyPayload struct {
	IsReady bool `json:"is_ready"`
}

type voteThemePayload struct {
	Theme string `json:"theme"`
}

type submitDrawingPayload struct {
	Drawing string `json:"drawing"`
}

type voteDrawingPayload struct {
	DrawingID identity.DrawingID     `json:"drawing_id"`
	PlayerID  identity.ParticipantID `json:"player_id"`
}

type targetPlayerPayload struct {
	TargetPlayerID identity.ParticipantID `json:"target_player_id"`
}

type updateSettingsPayload struct {
	Settings lobby.SettingsPatch `json:"settings"`
}

// decode unmarshals raw JSON data into v, treating "no data at all" as a
// valid zero-value payload rather than a protocol error, so a frame that
// omits its data field leaves v at its zero value.
func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}
