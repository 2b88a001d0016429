// Package lobby implements the per-lobby game state machine described by
// the drawing-and-voting party game: a pure core that, given the current
// state and an event (a participant action or a timer tick), computes the
// next state and emits a slice of Effect values for the caller to carry
// out once it has released the lock. No lobby method performs I/O.
package lobby

import (
	"math/rand"
	"sync"
	"time"

	"github.com/doodleparty/server/internal/clock"
	"github.com/doodleparty/server/internal/identity"
)

// Lobby is a single game session: its participants, its settings, and
// whatever round is currently in progress. All mutation goes through an
// exported method, each of which locks mu, mutates, and returns the
// effects the caller must apply after unlocking.
type Lobby struct {
	mu sync.Mutex

	id        identity.LobbyID
	createdAt time.Time
	clock     clock.Clock
	rng       *rand.Rand

	hostID       identity.ParticipantID
	participants []*Participant
	spectators   []*Participant
	banned       map[identity.ParticipantID]struct{}

	status   Status
	settings Settings

	colorTheme   string
	themeOptions []string
	themeTally   map[string]int

	prompt string

	drawings           []*Drawing
	currentVotingIndex int // index into drawings; -1 when not voting
	showcaseIndex      int

	deadline *time.Time
}

// New creates a lobby in WAITING_FOR_PLAYERS with the given settings. rngSeed
// seeds the lobby's private random source (tie-breaks, prompt selection);
// callers that want determinism in tests should pass a fixed seed.
func New(id identity.LobbyID, settings Settings, clk clock.Clock, rngSeed int64) *Lobby {
	return &Lobby{
		id:                 id,
		createdAt:          clk.Now(),
		clock:              clk,
		rng:                rand.New(rand.NewSource(rngSeed)),
		banned:             make(map[identity.ParticipantID]struct{}),
		status:             StatusWaitingForPlayers,
		settings:           settings,
		themeTally:         make(map[string]int),
		currentVotingIndex: -1,
	}
}

// JoinResult tells the caller how AddParticipant placed the new arrival.
type JoinResult struct {
	Spectator bool
}

// AddParticipant admits id/name into the lobby, per spec.md §4.1's
// add_participant. Join attempts are refused outright (no spectator
// fallback) once the game has left WAITING_FOR_PLAYERS.
func (l *Lobby) AddParticipant(id identity.ParticipantID, name string) (JoinResult, []Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, banned := l.banned[id]; banned {
		return JoinResult{}, nil, ErrBanned
	}
	if l.status != StatusWaitingForPlayers {
		return JoinResult{}, nil, ErrGameInProgress
	}

	if len(l.participants) >= l.settings.MaxParticipants {
		if !l.settings.AllowSpectators {
			return JoinResult{}, nil, ErrLobbyFull
		}
		spectator := newParticipant(id, name)
		l.spectators = append(l.spectators, spectator)
		snap := l.snapshotLocked()
		return JoinResult{Spectator: true}, []Effect{
			Unicast{ParticipantID: id, Type: "lobby_joined", Data: snap},
			BroadcastSnapshot{Snapshot: snap},
		}, nil
	}

	p := newParticipant(id, name)
	l.participants = append(l.participants, p)
	if l.hostID == identity.Nil {
		l.hostID = id
		p.Host = true
	}

	snap := l.snapshotLocked()
	return JoinResult{}, []Effect{
		Unicast{ParticipantID: id, Type: "lobby_joined", Data: snap},
		BroadcastSnapshot{Snapshot: snap},
	}, nil
}

// CheckPassword validates a private lobby's password for join_lobby /
// join_lobby_with_password (spec.md §6). A non-private lobby always
// succeeds; join_lobby on a private lobby is expected to have already been
// refused by the caller before password checking is attempted.
func (l *Lobby) CheckPassword(password string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.settings.Private {
		return nil
	}
	if l.settings.Password == "" {
		return nil
	}
	if password != l.settings.Password {
		return ErrWrongPassword
	}
	return nil
}

// IsPrivate reports whether join_lobby (without a password) should be
// refused for this lobby.
func (l *Lobby) IsPrivate() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.settings.Private && l.settings.Password != ""
}

// RemoveParticipant removes id unconditionally — from the participant list
// or the spectator list, whichever holds them — per spec.md §4.1's
// remove_participant. It is also the disconnect/leave path.
func (l *Lobby) RemoveParticipant(id identity.ParticipantID) []Effect {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.removeParticipantLocked(id)
}

// removeParticipantLocked is RemoveParticipant's body, factored out so
// Kick and Ban can fold the removal into their own single critical section
// along with the kick/ban-specific effects.
func (l *Lobby) removeParticipantLocked(id identity.ParticipantID) []Effect {
	if l.removeSpectatorLocked(id) {
		if len(l.participants)+len(l.spectators) == 0 {
			return []Effect{RemoveLobby{}, CancelDeadline{}}
		}
		return []Effect{BroadcastSnapshot{Snapshot: l.snapshotLocked()}}
	}

	idx := l.participantIndexLocked(id)
	if idx == -1 {
		return nil
	}

	wasHost := l.participants[idx].ID == l.hostID
	l.revokeVotesByLocked(id)
	l.participants = append(l.participants[:idx], l.participants[idx+1:]...)

	var effects []Effect

	if wasHost {
		if len(l.participants) > 0 {
			l.hostID = l.participants[0].ID
			l.participants[0].Host = true
			effects = append(effects, Broadcast{Type: "host_transferred", Data: map[string]interface{}{
				"new_host_id": l.hostID,
			}})
		} else {
			l.hostID = identity.Nil
		}
	}

	// During DRAWING, a participant's unfinished round is withdrawn along
	// with them. During VOTING_FOR_DRAWINGS and SHOWCASING_RESULTS their
	// drawing persists per spec.md §3's invariant, so its tally and the
	// voting display are left untouched (votes the participant cast were
	// already revoked above).
	if l.status == StatusDrawing {
		l.removeDrawingByAuthorLocked(id)
	}

	if len(l.participants)+len(l.spectators) == 0 {
		effects = append(effects, RemoveLobby{}, CancelDeadline{})
		return effects
	}

	l.maybePromoteSpectatorLocked()

	if l.status == StatusDrawing {
		if transEffects := l.maybeAdvanceFromDrawingLocked(); transEffects != nil {
			return append(effects, transEffects...)
		}
	}

	return append(effects, BroadcastSnapshot{Snapshot: l.snapshotLocked()})
}

func (l *Lobby) removeSpectatorLocked(id identity.ParticipantID) bool {
	for i, s := range l.spectators {
		if s.ID == id {
			l.spectators = append(l.spectators[:i], l.spectators[i+1:]...)
			return true
		}
	}
	return false
}

func (l *Lobby) participantIndexLocked(id identity.ParticipantID) int {
	for i, p := range l.participants {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (l *Lobby) findParticipantLocked(id identity.ParticipantID) *Participant {
	if idx := l.participantIndexLocked(id); idx != -1 {
		return l.participants[idx]
	}
	return nil
}

// revokeVotesByLocked undoes any theme or drawing vote cast by id, per
// spec.md §4.1: "Votes cast by the removed participant are revoked."
func (l *Lobby) revokeVotesByLocked(id identity.ParticipantID) {
	p := l.findParticipantLocked(id)
	if p == nil {
		return
	}
	if p.ThemeVote != "" {
		l.themeTally[p.ThemeVote]--
		p.ThemeVote = ""
	}
	if p.DrawingVote != identity.Nil {
		if d := l.findDrawingLocked(p.DrawingVote); d != nil {
			d.removeVoter(id)
		}
		p.DrawingVote = identity.Nil
	}
}

func (l *Lobby) findDrawingLocked(id identity.DrawingID) *Drawing {
	for _, d := range l.drawings {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (l *Lobby) removeDrawingByAuthorLocked(author identity.ParticipantID) {
	for i, d := range l.drawings {
		if d.AuthorID == author {
			l.drawings = append(l.drawings[:i], l.drawings[i+1:]...)
			return
		}
	}
}

// maybePromoteSpectatorLocked moves the longest-waiting spectator into an
// opened participant slot, per SPEC_FULL §12's spectator auto-promotion.
// Only applies in WAITING_FOR_PLAYERS.
func (l *Lobby) maybePromoteSpectatorLocked() {
	if l.status != StatusWaitingForPlayers {
		return
	}
	if len(l.spectators) == 0 || len(l.participants) >= l.settings.MaxParticipants {
		return
	}
	promoted := l.spectators[0]
	l.spectators = l.spectators[1:]
	l.participants = append(l.participants, promoted)
	if l.hostID == identity.Nil {
		l.hostID = promoted.ID
		promoted.Host = true
	}
}

// SetReady sets id's ready flag. A no-op outside WAITING_FOR_PLAYERS.
func (l *Lobby) SetReady(id identity.ParticipantID, ready bool) ([]Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != StatusWaitingForPlayers {
		return nil, nil
	}
	p := l.findParticipantLocked(id)
	if p == nil {
		return nil, ErrUnknownParticipant
	}
	if p.Ready == ready {
		return nil, nil
	}
	p.Ready = ready
	return []Effect{BroadcastSnapshot{Snapshot: l.snapshotLocked()}}, nil
}

func (l *Lobby) allReadyLocked() bool {
	if len(l.participants) == 0 {
		return false
	}
	for _, p := range l.participants {
		if !p.Ready {
			return false
		}
	}
	return true
}

// StartGame transitions WAITING_FOR_PLAYERS → THEME_VOTING. Host-only.
func (l *Lobby) StartGame(hostID identity.ParticipantID) ([]Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if hostID != l.hostID {
		return nil, ErrNotHost
	}
	if l.status != StatusWaitingForPlayers {
		return nil, ErrGameInProgress
	}
	if len(l.participants) < l.settings.MinParticipants {
		return nil, ErrNotEnoughPlayers
	}
	if !l.allReadyLocked() {
		return nil, ErrNotAllReady
	}

	l.enterThemeVotingLocked()
	return []Effect{
		ScheduleDeadline{At: *l.deadline},
		BroadcastSnapshot{Snapshot: l.snapshotLocked()},
	}, nil
}

func (l *Lobby) enterThemeVotingLocked() {
	l.status = StatusThemeVoting
	l.themeOptions = l.themeOptionsLocked()
	l.themeTally = make(map[string]int, len(l.themeOptions))
	for _, t := range l.themeOptions {
		l.themeTally[t] = 0
	}
	deadline := l.clock.Now().Add(time.Duration(l.settings.ThemeVotingSeconds) * time.Second)
	l.deadline = &deadline
}

func (l *Lobby) themeOptionsLocked() []string {
	options := make([]string, len(DefaultColorThemes))
	copy(options, DefaultColorThemes)
	return options
}
