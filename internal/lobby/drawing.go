package lobby

import "github.com/doodleparty/server/internal/identity"

// Drawing is a single submission, opaque to the server beyond its author,
// prompt, and tally. The payload is never interpreted (spec.md §1).
type Drawing struct {
	ID       identity.DrawingID
	AuthorID identity.ParticipantID
	Payload  string
	Prompt   string
	Votes    int

	// liveVoters is the set of participants who currently have a vote cast
	// for this drawing. Only meaningful while the drawing is the current
	// voting target; carried into the snapshot per SPEC_FULL §12.
	liveVoters map[identity.ParticipantID]struct{}
}

func newDrawing(id identity.DrawingID, author identity.ParticipantID, payload, prompt string) *Drawing {
	return &Drawing{
		ID:         id,
		AuthorID:   author,
		Payload:    payload,
		Prompt:     prompt,
		liveVoters: make(map[identity.ParticipantID]struct{}),
	}
}

func (d *Drawing) addVoter(id identity.ParticipantID) {
	d.liveVoters[id] = struct{}{}
	d.Votes++
}

func (d *Drawing) removeVoter(id identity.ParticipantID) {
	if _, ok := d.liveVoters[id]; !ok {
		return
	}
	delete(d.liveVoters, id)
	d.Votes--
}
