// Package registry holds the two process-wide maps the dispatcher needs:
// lobby identifier → live Lobby, and connection identifier → connection
// context. Both replace the source's global mutable dicts (spec.md §9)
// with explicit, lifecycle-owning components injected into the dispatcher.
package registry

import (
	"sync"

	"github.com/doodleparty/server/internal/clock"
	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/lobby"
)

// LobbyRegistry is the process-wide mapping from lobby identifier to live
// lobby, per spec.md §4.2.
type LobbyRegistry struct {
	mu      sync.RWMutex
	lobbies map[identity.LobbyID]*lobby.Lobby
	clock   clock.Clock
	seed    func() int64
}

// NewLobbyRegistry builds an empty registry. seed is called once per
// created lobby to seed its private RNG; tests typically supply a fixed
// sequence for determinism.
func NewLobbyRegistry(clk clock.Clock, seed func() int64) *LobbyRegistry {
	return &LobbyRegistry{
		lobbies: make(map[identity.LobbyID]*lobby.Lobby),
		clock:   clk,
		seed:    seed,
	}
}

// Create allocates a new lobby with the given settings and registers it.
func (r *LobbyRegistry) Create(settings lobby.Settings) *lobby.Lobby {
	id := identity.New()
	l := lobby.New(id, settings, r.clock, r.seed())

	r.mu.Lock()
	r.lobbies[id] = l
	r.mu.Unlock()

	return l
}

// Get looks up a lobby by identifier.
func (r *LobbyRegistry) Get(id identity.LobbyID) (*lobby.Lobby, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.lobbies[id]
	return l, ok
}

// Remove drops a lobby from the registry. A remove of an already-absent
// lobby is a no-op, matching spec.md §5's "a scheduled timer whose lobby no
// longer exists is a no-op."
func (r *LobbyRegistry) Remove(id identity.LobbyID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.lobbies, id)
}

// ListJoinable returns a Summary for every lobby currently
// WAITING_FOR_PLAYERS. The result is built over a consistent snapshot of
// the registry (spec.md §4.2): the slice of lobbies considered is fixed
// before any per-lobby Summary() call, so a concurrent Remove cannot drop
// an entry mid-iteration out from under the reader, and a concurrent
// Create is simply not yet visible — either way every lobby that appears
// in the result existed throughout the response's construction.
func (r *LobbyRegistry) ListJoinable() []lobby.Summary {
	r.mu.RLock()
	lobbies := make([]*lobby.Lobby, 0, len(r.lobbies))
	for _, l := range r.lobbies {
		lobbies = append(lobbies, l)
	}
	r.mu.RUnlock()

	summaries := make([]lobby.Summary, 0, len(lobbies))
	for _, l := range lobbies {
		if l.Status() != lobby.StatusWaitingForPlayers {
			continue
		}
		summaries = append(summaries, l.Summary())
	}
	return summaries
}
