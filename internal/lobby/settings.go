package lobby

// Bounds on Settings fields, per spec.md §3's Settings row and §8's boundary
// behaviors ("drawing_time = 10 accepted; 9 rejected"). Mirrors the bounds
// enforced by original_source/minigame/models.py's
// LobbySettings.update_from_dict.
const (
	MinMaxParticipants = 2
	MaxMaxParticipants = 20

	MinVotingPhaseSeconds = 10
	MaxVotingPhaseSeconds = 300

	MinDrawingSeconds = 10
	MaxDrawingSeconds = 259200

	MinShowcaseSeconds = 3
	MaxShowcaseSeconds = 30
)

// Settings holds the host-configurable parameters of a lobby's game. It is
// created with the lobby and may only be mutated by the host while the
// lobby is WAITING_FOR_PLAYERS.
type Settings struct {
	MaxParticipants    int
	MinParticipants    int
	ThemeVotingSeconds int
	DrawingSeconds     int
	VotingSeconds      int
	ShowcaseSeconds    int
	AllowSpectators    bool
	Private            bool
	Password           string
	CustomPrompts      []string
	ChatEnabled        bool
	AutoStart          bool
	WinnerTakesAll     bool
}

// DefaultSettings returns the settings a freshly created lobby starts with,
// matching original_source/minigame/models.py's LobbySettings defaults.
func DefaultSettings() Settings {
	return Settings{
		MaxParticipants:    4,
		MinParticipants:    2,
		ThemeVotingSeconds: 30,
		DrawingSeconds:     300,
		VotingSeconds:      10,
		ShowcaseSeconds:    10,
		AllowSpectators:    true,
		ChatEnabled:        true,
	}
}

// NewLobbySettings builds the Settings for a brand new lobby from
// create_lobby's optional data.settings. Unlike UpdateSettings' patch
// semantics (spec.md §6: out-of-bounds fields are dropped silently),
// max_participants and min_participants are hard-validated up front and
// the whole request is rejected on violation, matching
// original_source/minigame/websocket_server.py's create_lobby: it checks
// max_players (2-20) and min_players (2..max_players) before the Lobby is
// ever constructed and calls send_error instead of coercing to defaults.
func NewLobbySettings(patch SettingsPatch) (Settings, error) {
	maxParticipants := DefaultSettings().MaxParticipants
	if patch.MaxParticipants != nil {
		maxParticipants = *patch.MaxParticipants
	}
	if !validMaxParticipants(maxParticipants) {
		return Settings{}, ErrInvalidMaxParticipants
	}

	minParticipants := DefaultSettings().MinParticipants
	if patch.MinParticipants != nil {
		minParticipants = *patch.MinParticipants
	}
	if !validMinParticipants(minParticipants, maxParticipants) {
		return Settings{}, ErrInvalidMinParticipants
	}

	s := DefaultSettings()
	s.apply(patch)
	return s, nil
}

func validMaxParticipants(v int) bool { return v >= MinMaxParticipants && v <= MaxMaxParticipants }
func validMinParticipants(v, max int) bool { return v >= MinMaxParticipants && v <= max }
func validVotingPhaseSeconds(v int) bool {
	return v >= MinVotingPhaseSeconds && v <= MaxVotingPhaseSeconds
}
func validDrawingSeconds(v int) bool { return v >= MinDrawingSeconds && v <= MaxDrawingSeconds }
func validShowcaseSeconds(v int) bool {
	return v >= MinShowcaseSeconds && v <= MaxShowcaseSeconds
}

// SettingsPatch is a partial update to Settings, decoded directly from an
// inbound update_lobby_settings (or create_lobby) frame. A nil field means
// "leave unchanged"; CustomPrompts is a pointer to a slice so that an
// explicit empty list ("clear my custom prompts") is distinguishable from
// "field omitted".
type SettingsPatch struct {
	MaxParticipants    *int      `json:"max_participants"`
	MinParticipants    *int      `json:"min_participants"`
	ThemeVotingSeconds *int      `json:"theme_voting_seconds"`
	DrawingSeconds     *int      `json:"drawing_seconds"`
	VotingSeconds      *int      `json:"voting_seconds"`
	ShowcaseSeconds    *int      `json:"showcase_seconds"`
	AllowSpectators    *bool     `json:"allow_spectators"`
	Private            *bool     `json:"private"`
	Password           *string   `json:"password"`
	CustomPrompts      *[]string `json:"custom_prompts"`
	ChatEnabled        *bool     `json:"chat_enabled"`
	AutoStart          *bool     `json:"auto_start"`
	WinnerTakesAll     *bool     `json:"winner_takes_all"`
}

// apply mutates s in place with the fields of p that fall within their
// permitted bounds, per spec.md §6: "fields outside the permitted bounds
// are ignored silently, not rejected as a whole." It returns whether
// anything changed. The structural checks (max below current participant
// count, min above max) are the caller's responsibility — they reject the
// whole patch rather than being silently dropped, since they protect
// invariants rather than just bounding a single field.
func (s *Settings) apply(p SettingsPatch) bool {
	changed := false

	if p.MaxParticipants != nil && validMaxParticipants(*p.MaxParticipants) && *p.MaxParticipants != s.MaxParticipants {
		s.MaxParticipants = *p.MaxParticipants
		changed = true
	}
	if p.MinParticipants != nil && validMinParticipants(*p.MinParticipants, s.MaxParticipants) && *p.MinParticipants != s.MinParticipants {
		s.MinParticipants = *p.MinParticipants
		changed = true
	}
	if p.ThemeVotingSeconds != nil && validVotingPhaseSeconds(*p.ThemeVotingSeconds) && *p.ThemeVotingSeconds != s.ThemeVotingSeconds {
		s.ThemeVotingSeconds = *p.ThemeVotingSeconds
		changed = true
	}
	if p.DrawingSeconds != nil && validDrawingSeconds(*p.DrawingSeconds) && *p.DrawingSeconds != s.DrawingSeconds {
		s.DrawingSeconds = *p.DrawingSeconds
		changed = true
	}
	if p.VotingSeconds != nil && validVotingPhaseSeconds(*p.VotingSeconds) && *p.VotingSeconds != s.VotingSeconds {
		s.VotingSeconds = *p.VotingSeconds
		changed = true
	}
	if p.ShowcaseSeconds != nil && validShowcaseSeconds(*p.ShowcaseSeconds) && *p.ShowcaseSeconds != s.ShowcaseSeconds {
		s.ShowcaseSeconds = *p.ShowcaseSeconds
		changed = true
	}
	if p.AllowSpectators != nil && *p.AllowSpectators != s.AllowSpectators {
		s.AllowSpectators = *p.AllowSpectators
		changed = true
	}
	if p.Private != nil && *p.Private != s.Private {
		s.Private = *p.Private
		changed = true
	}
	if p.Password != nil && *p.Password != s.Password {
		s.Password = *p.Password
		changed = true
	}
	if p.CustomPrompts != nil {
		s.CustomPrompts = *p.CustomPrompts
		changed = true
	}
	if p.ChatEnabled != nil && *p.ChatEnabled != s.ChatEnabled {
		s.ChatEnabled = *p.ChatEnabled
		changed = true
	}
	if p.AutoStart != nil && *p.AutoStart != s.AutoStart {
		s.AutoStart = *p.AutoStart
		changed = true
	}
	if p.WinnerTakesAll != nil && *p.WinnerTakesAll != s.WinnerTakesAll {
		s.WinnerTakesAll = *p.WinnerTakesAll
		changed = true
	}

	return changed
}
