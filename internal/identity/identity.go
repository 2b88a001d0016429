// Package identity mints the opaque identifiers used for connections,
// participants, lobbies, and drawings.
package identity

import "github.com/google/uuid"

// ConnectionID identifies a single live connection for its lifetime.
type ConnectionID = uuid.UUID

// ParticipantID identifies a player within a lobby.
type ParticipantID = uuid.UUID

// LobbyID identifies a lobby.
type LobbyID = uuid.UUID

// DrawingID identifies a submitted drawing.
type DrawingID = uuid.UUID

// New mints a fresh random identifier.
func New() uuid.UUID {
	return uuid.New()
}

// Nil is the zero-value identifier, used to mean "no host" / "no target".
var Nil = uuid.Nil
