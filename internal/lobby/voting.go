package lobby

import "github.com/doodleparty/server/internal/identity"

// CastThemeVote records id's vote for theme during THEME_VOTING, per
// spec.md §4.1's cast_theme_vote.
func (l *Lobby) CastThemeVote(id identity.ParticipantID, theme string) ([]Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != StatusThemeVoting {
		return nil, ErrWrongPhase
	}
	p := l.findParticipantLocked(id)
	if p == nil {
		return nil, ErrUnknownParticipant
	}

	valid := false
	for _, t := range l.themeOptions {
		if t == theme {
			valid = true
			break
		}
	}
	if !valid {
		return nil, ErrInvalidTheme
	}

	if p.ThemeVote != "" {
		l.themeTally[p.ThemeVote]--
	}
	p.ThemeVote = theme
	l.themeTally[theme]++

	return []Effect{BroadcastSnapshot{Snapshot: l.snapshotLocked()}}, nil
}

// SubmitDrawing attaches payload as id's drawing for the round, per
// spec.md §4.1's submit_drawing. Triggers the early DRAWING →
// VOTING_FOR_DRAWINGS transition if this was the last outstanding
// submission.
func (l *Lobby) SubmitDrawing(id identity.ParticipantID, payload string) ([]Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != StatusDrawing {
		return nil, ErrWrongPhase
	}
	p := l.findParticipantLocked(id)
	if p == nil {
		return nil, ErrUnknownParticipant
	}
	if p.Drawing != identity.Nil {
		return nil, ErrAlreadySubmitted
	}

	d := newDrawing(identity.New(), id, payload, l.prompt)
	l.drawings = append(l.drawings, d)
	p.Drawing = d.ID

	effects := []Effect{Unicast{
		ParticipantID: id,
		Type:          "drawing_submitted",
		Data:          map[string]interface{}{"drawing_id": d.ID},
	}}

	if more := l.maybeAdvanceFromDrawingLocked(); more != nil {
		return append(effects, more...), nil
	}
	return append(effects, BroadcastSnapshot{Snapshot: l.snapshotLocked()}), nil
}

// DrawingByAuthor resolves a drawing by its author, for inbound frames that
// identify a vote target by player_id instead of drawing_id (spec.md §6).
func (l *Lobby) DrawingByAuthor(authorID identity.ParticipantID) (identity.DrawingID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.drawings {
		if d.AuthorID == authorID {
			return d.ID, true
		}
	}
	return identity.Nil, false
}

// CastDrawingVote records voterID's vote for drawingID during
// VOTING_FOR_DRAWINGS, per spec.md §4.1's cast_drawing_vote. Only the
// currently displayed drawing is a valid target (the auto-advance voting
// model adopted per spec.md §9).
func (l *Lobby) CastDrawingVote(voterID identity.ParticipantID, drawingID identity.DrawingID) ([]Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.status != StatusVotingForDrawings {
		return nil, ErrWrongPhase
	}
	voter := l.findParticipantLocked(voterID)
	if voter == nil {
		return nil, ErrUnknownParticipant
	}
	current := l.currentVotingDrawingLocked()
	if current == nil || current.ID != drawingID {
		return nil, ErrDrawingNotDisplayed
	}
	if current.AuthorID == voterID {
		return nil, ErrSelfTarget
	}
	if voter.DrawingVote == drawingID {
		return nil, ErrAlreadyVotedDrawing
	}

	if voter.DrawingVote != identity.Nil {
		if prior := l.findDrawingLocked(voter.DrawingVote); prior != nil {
			prior.removeVoter(voterID)
		}
	}
	current.addVoter(voterID)
	voter.DrawingVote = drawingID

	return []Effect{BroadcastSnapshot{Snapshot: l.snapshotLocked()}}, nil
}
