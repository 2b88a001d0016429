// Package scheduler arms and fires the per-lobby phase timer described by
// spec.md §4.4 and §5: a deadline timer that enqueues a phase-expiry event
// into the lobby's own serialisation point, plus a secondary cadence
// ticker that drives the countdown broadcasts clients rely on.
package scheduler

import (
	"sync"
	"time"

	"github.com/doodleparty/server/internal/clock"
	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/lobby"
)

// EffectHandler applies the effects a lobby operation or timer expiry
// produced. The scheduler never touches transport or registries directly;
// it only knows how to turn time into lobby.Effect values for the handler
// to carry out.
type EffectHandler func(lobbyID identity.LobbyID, effects []lobby.Effect)

// LobbyLookup resolves a lobby identifier to its live Lobby. A lookup miss
// means the lobby was already removed — per spec.md §5, "a scheduled timer
// whose lobby no longer exists is a no-op."
type LobbyLookup func(identity.LobbyID) (*lobby.Lobby, bool)

// Scheduler owns every lobby's phase-deadline timer and cadence ticker.
type Scheduler struct {
	clock  clock.Clock
	lookup LobbyLookup
	handle EffectHandler

	mu        sync.Mutex
	deadlines map[identity.LobbyID]clock.Timer
	tickers   map[identity.LobbyID]*ticker
}

type ticker struct {
	timer clock.Timer
}

// New builds a Scheduler. lookup resolves lobby IDs to live lobbies; handle
// applies the effects of a fired deadline or cadence tick.
func New(clk clock.Clock, lookup LobbyLookup, handle EffectHandler) *Scheduler {
	return &Scheduler{
		clock:     clk,
		lookup:    lookup,
		handle:    handle,
		deadlines: make(map[identity.LobbyID]clock.Timer),
		tickers:   make(map[identity.LobbyID]*ticker),
	}
}

// Arm (re)schedules the phase-expiry timer for lobbyID to fire at "at".
// Scheduling is idempotent (spec.md §4.4): any existing timer for this
// lobby is replaced outright. Also ensures the cadence ticker is running so
// countdown broadcasts resume for the new phase.
func (s *Scheduler) Arm(lobbyID identity.LobbyID, at time.Time) {
	s.mu.Lock()
	if old, ok := s.deadlines[lobbyID]; ok {
		old.Stop()
	}
	d := at.Sub(s.clock.Now())
	if d < 0 {
		d = 0
	}
	var timer clock.Timer
	timer = s.clock.AfterFunc(d, func() { s.fireDeadline(lobbyID, &timer) })
	s.deadlines[lobbyID] = timer
	s.mu.Unlock()

	s.ensureTicking(lobbyID)
}

// Disarm cancels lobbyID's phase-expiry timer and cadence ticker without
// replacing them. Used when a lobby transitions to a state with no
// deadline, or is removed entirely.
func (s *Scheduler) Disarm(lobbyID identity.LobbyID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked(lobbyID)
}

func (s *Scheduler) disarmLocked(lobbyID identity.LobbyID) {
	if old, ok := s.deadlines[lobbyID]; ok {
		old.Stop()
		delete(s.deadlines, lobbyID)
	}
	if t, ok := s.tickers[lobbyID]; ok {
		if t.timer != nil {
			t.timer.Stop()
		}
		delete(s.tickers, lobbyID)
	}
}

// Remove is Disarm under the name the registry-removal path reads more
// naturally as.
func (s *Scheduler) Remove(lobbyID identity.LobbyID) {
	s.Disarm(lobbyID)
}

func (s *Scheduler) fireDeadline(lobbyID identity.LobbyID, self *clock.Timer) {
	s.mu.Lock()
	// Stale-timer guard: only clear our own entry, matching the teacher's
	// "if lobby.CountdownTimer == timer" pattern — a fired timer that has
	// already been superseded by Arm/Disarm must not clobber the new one,
	// and does nothing.
	if cur, ok := s.deadlines[lobbyID]; !ok || cur != *self {
		s.mu.Unlock()
		return
	}
	delete(s.deadlines, lobbyID)
	s.mu.Unlock()

	l, ok := s.lookup(lobbyID)
	if !ok {
		return
	}
	s.handle(lobbyID, l.ExpireDeadline())
}

// ensureTicking starts the recurring 1-second cadence ticker for lobbyID if
// one isn't already running. The ticker self-reschedules until Disarm
// stops it or the lobby stops carrying a deadline.
func (s *Scheduler) ensureTicking(lobbyID identity.LobbyID) {
	s.mu.Lock()
	if _, exists := s.tickers[lobbyID]; exists {
		s.mu.Unlock()
		return
	}
	t := &ticker{}
	s.tickers[lobbyID] = t
	s.mu.Unlock()

	s.armNextTick(lobbyID, t, time.Time{})
}

func (s *Scheduler) armNextTick(lobbyID identity.LobbyID, t *ticker, lastBroadcast time.Time) {
	timer := s.clock.AfterFunc(time.Second, func() { s.fireTick(lobbyID, t, lastBroadcast) })

	s.mu.Lock()
	if cur, ok := s.tickers[lobbyID]; ok && cur == t {
		t.timer = timer
	} else {
		// Superseded or disarmed between scheduling and now; don't leak.
		timer.Stop()
	}
	s.mu.Unlock()
}

func (s *Scheduler) fireTick(lobbyID identity.LobbyID, t *ticker, lastBroadcast time.Time) {
	s.mu.Lock()
	cur, active := s.tickers[lobbyID]
	s.mu.Unlock()
	if !active || cur != t {
		return
	}

	l, ok := s.lookup(lobbyID)
	if !ok {
		s.Disarm(lobbyID)
		return
	}

	snap, hasDeadline := l.PeekSnapshot()
	if !hasDeadline {
		s.Disarm(lobbyID)
		return
	}

	now := s.clock.Now()
	if shouldBroadcastTick(snap.Status, snap.RemainingSeconds, lastBroadcast, now) {
		s.handle(lobbyID, []lobby.Effect{lobby.BroadcastSnapshot{Snapshot: snap}})
		lastBroadcast = now
	}

	s.armNextTick(lobbyID, t, lastBroadcast)
}

// shouldBroadcastTick implements the cadence contract of spec.md §4.4:
// every second during THEME_VOTING, every two seconds inside the final 30
// seconds of any other phase, every five seconds otherwise. The first tick
// after the cadence ticker starts (on the first Arm following a Disarm)
// always broadcasts; the ticker keeps running across a timer-driven phase
// change, so the first tick of such a phase follows the cadence.
func shouldBroadcastTick(status lobby.Status, remainingSeconds int, lastBroadcast, now time.Time) bool {
	if lastBroadcast.IsZero() {
		return true
	}
	interval := 5 * time.Second
	switch {
	case status == lobby.StatusThemeVoting:
		interval = time.Second
	case remainingSeconds <= 30:
		interval = 2 * time.Second
	}
	return now.Sub(lastBroadcast) >= interval
}
