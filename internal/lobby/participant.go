package lobby

import "github.com/doodleparty/server/internal/identity"

// Participant is a connected player within a lobby. It is owned
// exclusively by the Lobby that holds it (spec.md §3 OWNERSHIP) — callers
// never hold a Participant pointer across a lock release.
type Participant struct {
	ID          identity.ParticipantID
	DisplayName string
	Ready       bool
	Host        bool
	Score       int

	ThemeVote   string                // "" = no vote cast
	DrawingVote identity.DrawingID    // identity.Nil = no vote cast
	Drawing     identity.DrawingID    // identity.Nil = nothing submitted this round
}

func newParticipant(id identity.ParticipantID, name string) *Participant {
	return &Participant{ID: id, DisplayName: name}
}

// resetRound clears everything that does not survive an ENDED → WAITING
// reset, per spec.md §4.1: "ready flags cleared, drawing references
// cleared, theme votes cleared, drawing votes cleared, scores preserved."
func (p *Participant) resetRound() {
	p.Ready = false
	p.ThemeVote = ""
	p.DrawingVote = identity.Nil
	p.Drawing = identity.Nil
}
