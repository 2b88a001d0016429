package registry

import (
	"sync"

	"github.com/doodleparty/server/internal/identity"
	"github.com/doodleparty/server/internal/protocol"
)

// Outbound is the minimal send capability a transport connection exposes to
// the rest of the server. Implementations own their own bounded queue
// (spec.md §5 OUTBOUND BACKPRESSURE) and report a failed send by returning
// false — the caller treats that exactly like a disconnect.
type Outbound interface {
	Send(frame protocol.Frame) bool
}

// Connection is a single client's connection context: its immutable
// identity pair (spec.md §4.3) plus the one lobby it currently belongs to,
// if any.
type Connection struct {
	ID            identity.ConnectionID
	ParticipantID identity.ParticipantID
	Outbound      Outbound

	mu      sync.Mutex
	lobbyID identity.LobbyID
}

// LobbyID returns the lobby this connection currently belongs to, or
// identity.Nil if it isn't in one.
func (c *Connection) LobbyID() identity.LobbyID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lobbyID
}

// SetLobbyID records which lobby this connection belongs to. A connection
// holds at most one lobby membership at a time (spec.md §4.3).
func (c *Connection) SetLobbyID(id identity.LobbyID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lobbyID = id
}

// ConnectionRegistry is the process-wide mapping from connection
// identifier to connection context, per spec.md §2 component 5. It also
// indexes connections by participant identifier and lists them by current
// lobby (by scanning every connection), so the dispatcher can turn a lobby.Unicast/Broadcast effect (which only
// knows participant and lobby identifiers) into an actual send.
type ConnectionRegistry struct {
	mu            sync.RWMutex
	conns         map[identity.ConnectionID]*Connection
	byParticipant map[identity.ParticipantID]*Connection
}

// NewConnectionRegistry builds an empty registry.
func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		conns:         make(map[identity.ConnectionID]*Connection),
		byParticipant: make(map[identity.ParticipantID]*Connection),
	}
}

// Add registers a newly accepted connection, minting it a participant
// identifier immediately (spec.md §4.3: "the pair is immutable for the
// connection's lifetime").
func (r *ConnectionRegistry) Add(out Outbound) *Connection {
	c := &Connection{
		ID:            identity.New(),
		ParticipantID: identity.New(),
		Outbound:      out,
		lobbyID:       identity.Nil,
	}
	r.mu.Lock()
	r.conns[c.ID] = c
	r.byParticipant[c.ParticipantID] = c
	r.mu.Unlock()
	return c
}

// Get looks up a connection by connection identifier.
func (r *ConnectionRegistry) Get(id identity.ConnectionID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.conns[id]
	return c, ok
}

// ByParticipant looks up a connection by participant identifier.
func (r *ConnectionRegistry) ByParticipant(id identity.ParticipantID) (*Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byParticipant[id]
	return c, ok
}

// InLobby returns every connection currently a member of lobbyID, for
// broadcast delivery.
func (r *ConnectionRegistry) InLobby(lobbyID identity.LobbyID) []*Connection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Connection
	for _, c := range r.conns {
		if c.LobbyID() == lobbyID {
			out = append(out, c)
		}
	}
	return out
}

// Remove drops a connection from the registry.
func (r *ConnectionRegistry) Remove(id identity.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conns[id]; ok {
		delete(r.byParticipant, c.ParticipantID)
	}
	delete(r.conns, id)
}
