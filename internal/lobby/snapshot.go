package lobby

import (
	"time"

	"github.com/doodleparty/server/internal/identity"
)

// ParticipantView is a participant as exposed in a Snapshot. It never
// carries the participant's drawing payload or vote target directly — those
// are surfaced through the snapshot's DrawingVoteByParticipant /
// ThemeVoteByParticipant maps so a reader doesn't need two lookups.
type ParticipantView struct {
	ID              identity.ParticipantID `json:"id"`
	DisplayName     string                 `json:"display_name"`
	Ready           bool                   `json:"ready"`
	Host            bool                   `json:"host"`
	Score           int                    `json:"score"`
	HasSubmitted    bool                   `json:"has_submitted"`
}

// SpectatorView is a spectator as exposed in a Snapshot.
type SpectatorView struct {
	ID          identity.ParticipantID `json:"id"`
	DisplayName string                 `json:"display_name"`
}

// SettingsView mirrors Settings with Password replaced by HasPassword, per
// spec.md §4.5: "Password is never emitted."
type SettingsView struct {
	MaxParticipants    int      `json:"max_participants"`
	MinParticipants    int      `json:"min_participants"`
	ThemeVotingSeconds int      `json:"theme_voting_seconds"`
	DrawingSeconds     int      `json:"drawing_seconds"`
	VotingSeconds      int      `json:"voting_seconds"`
	ShowcaseSeconds    int      `json:"showcase_seconds"`
	AllowSpectators    bool     `json:"allow_spectators"`
	Private            bool     `json:"private"`
	HasPassword        bool     `json:"has_password"`
	CustomPrompts      []string `json:"custom_prompts"`
	ChatEnabled        bool     `json:"chat_enabled"`
	AutoStart          bool     `json:"auto_start"`
	WinnerTakesAll     bool     `json:"winner_takes_all"`
}

func settingsView(s Settings) SettingsView {
	return SettingsView{
		MaxParticipants:    s.MaxParticipants,
		MinParticipants:    s.MinParticipants,
		ThemeVotingSeconds: s.ThemeVotingSeconds,
		DrawingSeconds:     s.DrawingSeconds,
		VotingSeconds:      s.VotingSeconds,
		ShowcaseSeconds:    s.ShowcaseSeconds,
		AllowSpectators:    s.AllowSpectators,
		Private:            s.Private,
		HasPassword:        s.Password != "",
		CustomPrompts:      s.CustomPrompts,
		ChatEnabled:        s.ChatEnabled,
		AutoStart:          s.AutoStart,
		WinnerTakesAll:     s.WinnerTakesAll,
	}
}

// DrawingView is a drawing as exposed in a Snapshot.
type DrawingView struct {
	ID       identity.DrawingID     `json:"id"`
	AuthorID identity.ParticipantID `json:"author_id"`
	Payload  string                 `json:"payload"`
	Prompt   string                 `json:"prompt"`
	Votes    int                    `json:"votes"`
}

// CurrentVotingView describes the drawing currently displayed during
// VOTING_FOR_DRAWINGS, including who has live votes cast for it.
type CurrentVotingView struct {
	DrawingID       identity.DrawingID       `json:"drawing_id"`
	AuthorID        identity.ParticipantID   `json:"author_id"`
	LiveVoters      []identity.ParticipantID `json:"live_voters"`
	RemainingSeconds int                     `json:"remaining_seconds"`
}

// Snapshot is the complete, self-consistent description of a lobby at one
// instant, per spec.md §4.5. It is what every lobby_update / lobby_joined
// frame carries.
type Snapshot struct {
	LobbyID     identity.LobbyID       `json:"lobby_id"`
	HostID      identity.ParticipantID `json:"host_id"`
	Status      Status                 `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`

	Participants []ParticipantView `json:"participants"`
	Spectators   []SpectatorView   `json:"spectators"`
	Settings     SettingsView      `json:"settings"`

	RemainingSeconds int `json:"remaining_seconds"`

	Prompt      string `json:"prompt,omitempty"`
	ColorTheme  string `json:"color_theme,omitempty"`

	ColorThemeOptions []string       `json:"color_theme_options,omitempty"`
	ColorThemeTally   map[string]int `json:"color_theme_tally,omitempty"`

	ThemeVoteByParticipant map[identity.ParticipantID]string             `json:"theme_vote_by_participant,omitempty"`
	Drawings               []DrawingView                                 `json:"drawings,omitempty"`
	DrawingVoteByParticipant map[identity.ParticipantID]identity.DrawingID `json:"drawing_vote_by_participant,omitempty"`

	CurrentVoting *CurrentVotingView `json:"current_voting,omitempty"`
	ShowcaseIndex *int               `json:"showcase_index,omitempty"`
}

// Summary is the joinable-lobby listing row described by spec.md §6.
type Summary struct {
	ID          identity.LobbyID       `json:"id"`
	HostID      identity.ParticipantID `json:"host_id"`
	PlayerCount int                    `json:"player_count"`
	MaxPlayers  int                    `json:"max_players"`
	Status      Status                 `json:"status"`
	CreatedAt   time.Time              `json:"created_at"`
	Private     bool                   `json:"private_lobby"`
	HasPassword bool                   `json:"has_password"`
}

// snapshotLocked builds a Snapshot from the current state. The caller must
// already hold l.mu.
func (l *Lobby) snapshotLocked() Snapshot {
	s := Snapshot{
		LobbyID:    l.id,
		HostID:     l.hostID,
		Status:     l.status,
		CreatedAt:  l.createdAt,
		Settings:   settingsView(l.settings),
		Prompt:     l.prompt,
		ColorTheme: l.colorTheme,
	}

	s.RemainingSeconds = l.remainingSecondsLocked()

	s.Participants = make([]ParticipantView, 0, len(l.participants))
	for _, p := range l.participants {
		s.Participants = append(s.Participants, ParticipantView{
			ID:           p.ID,
			DisplayName:  p.DisplayName,
			Ready:        p.Ready,
			Host:         p.Host,
			Score:        p.Score,
			HasSubmitted: p.Drawing != identity.Nil,
		})
	}

	s.Spectators = make([]SpectatorView, 0, len(l.spectators))
	for _, p := range l.spectators {
		s.Spectators = append(s.Spectators, SpectatorView{ID: p.ID, DisplayName: p.DisplayName})
	}

	if l.status == StatusThemeVoting {
		s.ColorThemeOptions = l.themeOptions
		tally := make(map[string]int, len(l.themeTally))
		for k, v := range l.themeTally {
			tally[k] = v
		}
		s.ColorThemeTally = tally

		votes := make(map[identity.ParticipantID]string)
		for _, p := range l.participants {
			if p.ThemeVote != "" {
				votes[p.ID] = p.ThemeVote
			}
		}
		s.ThemeVoteByParticipant = votes
	}

	if l.status == StatusVotingForDrawings || l.status == StatusShowcasingResults {
		s.Drawings = make([]DrawingView, 0, len(l.drawings))
		for _, d := range l.drawings {
			s.Drawings = append(s.Drawings, DrawingView{
				ID:       d.ID,
				AuthorID: d.AuthorID,
				Payload:  d.Payload,
				Prompt:   d.Prompt,
				Votes:    d.Votes,
			})
		}

		votes := make(map[identity.ParticipantID]identity.DrawingID)
		for _, p := range l.participants {
			if p.DrawingVote != identity.Nil {
				votes[p.ID] = p.DrawingVote
			}
		}
		s.DrawingVoteByParticipant = votes
	}

	if l.status == StatusVotingForDrawings {
		if d := l.currentVotingDrawingLocked(); d != nil {
			voters := make([]identity.ParticipantID, 0, len(d.liveVoters))
			for id := range d.liveVoters {
				voters = append(voters, id)
			}
			s.CurrentVoting = &CurrentVotingView{
				DrawingID:        d.ID,
				AuthorID:         d.AuthorID,
				LiveVoters:       voters,
				RemainingSeconds: s.RemainingSeconds,
			}
		}
	}

	if l.status == StatusShowcasingResults {
		idx := l.showcaseIndex
		s.ShowcaseIndex = &idx
	}

	return s
}

// remainingSecondsLocked returns the seconds left until l.deadline, clamped
// to zero. Returns 0 if there is no active deadline.
func (l *Lobby) remainingSecondsLocked() int {
	if l.deadline == nil {
		return 0
	}
	remaining := l.deadline.Sub(l.clock.Now())
	if remaining <= 0 {
		return 0
	}
	seconds := int(remaining / time.Second)
	if remaining%time.Second != 0 {
		seconds++
	}
	return seconds
}

// summaryLocked builds a Summary from the current state. The caller must
// already hold l.mu.
func (l *Lobby) summaryLocked() Summary {
	return Summary{
		ID:          l.id,
		HostID:      l.hostID,
		PlayerCount: len(l.participants),
		MaxPlayers:  l.settings.MaxParticipants,
		Status:      l.status,
		CreatedAt:   l.createdAt,
		Private:     l.settings.Private,
		HasPassword: l.settings.Password != "",
	}
}

// Summary returns a joinable-lobby listing row for this lobby. Safe to call
// at any time; it is not tied to a specific state transition the way
// snapshotLocked's callers are.
func (l *Lobby) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.summaryLocked()
}

// PeekSnapshot returns the current snapshot along with whether a phase
// deadline is currently armed, without mutating anything. The scheduler
// uses this to decide whether a cadence tick (spec.md §4.4) is due; it is
// not an Effect-producing operation because it never changes lobby state.
func (l *Lobby) PeekSnapshot() (snap Snapshot, hasDeadline bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked(), l.deadline != nil
}

// Status returns the lobby's current phase tag.
func (l *Lobby) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// ID returns the lobby's identifier.
func (l *Lobby) ID() identity.LobbyID {
	return l.id
}
