package lobby

import (
	"sort"
	"time"

	"github.com/doodleparty/server/internal/identity"
)

// ExpireDeadline is the scheduler's phase-expiry event, per spec.md §4.4: it
// is enqueued into the lobby's serialisation point whenever the armed timer
// reaches its deadline. What it does depends entirely on the lobby's
// current status.
func (l *Lobby) ExpireDeadline() []Effect {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.status {
	case StatusThemeVoting:
		return l.finishThemeVotingLocked()
	case StatusDrawing:
		return l.finishDrawingPhaseLocked()
	case StatusVotingForDrawings:
		return l.advanceVotingDisplayLocked()
	case StatusShowcasingResults:
		return l.advanceShowcaseLocked()
	case StatusEnded:
		return l.resetToWaitingLocked()
	default:
		return nil
	}
}

// maybeAdvanceFromDrawingLocked checks whether every participant has
// submitted, and if so ends DRAWING early (spec.md §4.1: "DRAWING →
// VOTING_FOR_DRAWINGS ... OR when every participant has submitted a
// drawing"). Returns nil if the phase shouldn't end yet.
func (l *Lobby) maybeAdvanceFromDrawingLocked() []Effect {
	if l.status != StatusDrawing || len(l.participants) == 0 {
		return nil
	}
	for _, p := range l.participants {
		if p.Drawing == identity.Nil {
			return nil
		}
	}
	effects := []Effect{CancelDeadline{}}
	return append(effects, l.finishDrawingPhaseLocked()...)
}

// finishDrawingPhaseLocked ends DRAWING, whether triggered by deadline
// expiry or by every participant having submitted. With zero drawings on
// the table the round ends early (spec.md §4.1: "DRAWING → ENDED (early)").
func (l *Lobby) finishDrawingPhaseLocked() []Effect {
	if len(l.drawings) == 0 {
		l.enterEndedLocked()
	} else {
		l.enterVotingForDrawingsLocked()
	}
	return []Effect{ScheduleDeadline{At: *l.deadline}, BroadcastSnapshot{Snapshot: l.snapshotLocked()}}
}

func (l *Lobby) finishThemeVotingLocked() []Effect {
	l.colorTheme = l.pickWinningThemeLocked()
	l.prompt = l.pickPromptLocked()
	for _, p := range l.participants {
		p.Drawing = identity.Nil
		p.DrawingVote = identity.Nil
	}
	l.drawings = nil

	l.status = StatusDrawing
	deadline := l.clock.Now().Add(time.Duration(l.settings.DrawingSeconds) * time.Second)
	l.deadline = &deadline

	return []Effect{ScheduleDeadline{At: deadline}, BroadcastSnapshot{Snapshot: l.snapshotLocked()}}
}

// pickWinningThemeLocked applies TIE-BREAKS (spec.md §4.1): plurality among
// l.themeOptions, ties (including the all-zero tie when nobody voted)
// broken by uniform random choice.
func (l *Lobby) pickWinningThemeLocked() string {
	maxVotes := -1
	for _, t := range l.themeOptions {
		if v := l.themeTally[t]; v > maxVotes {
			maxVotes = v
		}
	}
	var tied []string
	for _, t := range l.themeOptions {
		if l.themeTally[t] == maxVotes {
			tied = append(tied, t)
		}
	}
	return tied[l.rng.Intn(len(tied))]
}

// pickPromptLocked chooses uniformly from the union of custom prompts and
// the default pool (spec.md §4.1: "custom prompts ∪ default prompts
// (default non-empty)").
func (l *Lobby) pickPromptLocked() string {
	pool := make([]string, 0, len(l.settings.CustomPrompts)+len(DefaultPrompts))
	pool = append(pool, l.settings.CustomPrompts...)
	pool = append(pool, DefaultPrompts...)
	return pool[l.rng.Intn(len(pool))]
}

func (l *Lobby) enterVotingForDrawingsLocked() {
	l.status = StatusVotingForDrawings
	l.currentVotingIndex = 0
	l.armPerDrawingDeadlineLocked()
}

func (l *Lobby) armPerDrawingDeadlineLocked() {
	deadline := l.clock.Now().Add(time.Duration(l.settings.VotingSeconds) * time.Second)
	l.deadline = &deadline
}

func (l *Lobby) currentVotingDrawingLocked() *Drawing {
	if l.currentVotingIndex < 0 || l.currentVotingIndex >= len(l.drawings) {
		return nil
	}
	return l.drawings[l.currentVotingIndex]
}

func (l *Lobby) advanceVotingDisplayLocked() []Effect {
	l.currentVotingIndex++
	if l.currentVotingIndex >= len(l.drawings) {
		l.enterShowcasingLocked()
	} else {
		l.armPerDrawingDeadlineLocked()
	}
	return []Effect{ScheduleDeadline{At: *l.deadline}, BroadcastSnapshot{Snapshot: l.snapshotLocked()}}
}

func (l *Lobby) enterShowcasingLocked() {
	l.status = StatusShowcasingResults
	l.currentVotingIndex = -1
	sort.SliceStable(l.drawings, func(i, j int) bool { return l.drawings[i].Votes > l.drawings[j].Votes })
	l.showcaseIndex = 0
	deadline := l.clock.Now().Add(time.Duration(l.settings.ShowcaseSeconds) * time.Second)
	l.deadline = &deadline
}

func (l *Lobby) advanceShowcaseLocked() []Effect {
	l.showcaseIndex++
	if l.showcaseIndex >= len(l.drawings) {
		l.enterEndedLocked()
	} else {
		deadline := l.clock.Now().Add(time.Duration(l.settings.ShowcaseSeconds) * time.Second)
		l.deadline = &deadline
	}
	return []Effect{ScheduleDeadline{At: *l.deadline}, BroadcastSnapshot{Snapshot: l.snapshotLocked()}}
}

// enterEndedLocked arms the settle interval before the automatic reset to
// WAITING_FOR_PLAYERS, bounded by the showcase timer (spec.md §4.1).
func (l *Lobby) enterEndedLocked() {
	l.status = StatusEnded
	deadline := l.clock.Now().Add(time.Duration(l.settings.ShowcaseSeconds) * time.Second)
	l.deadline = &deadline
}

// resetToWaitingLocked clears per-round state and returns the lobby to
// WAITING_FOR_PLAYERS, preserving scores (spec.md §4.1).
func (l *Lobby) resetToWaitingLocked() []Effect {
	l.status = StatusWaitingForPlayers
	l.colorTheme = ""
	l.prompt = ""
	l.themeOptions = nil
	l.themeTally = make(map[string]int)
	l.drawings = nil
	l.currentVotingIndex = -1
	l.showcaseIndex = 0
	l.deadline = nil

	for _, p := range l.participants {
		p.resetRound()
	}

	return []Effect{CancelDeadline{}, BroadcastSnapshot{Snapshot: l.snapshotLocked()}}
}
