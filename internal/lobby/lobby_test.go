package lobby

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodleparty/server/internal/clock"
	"github.com/doodleparty/server/internal/identity"
)

func newTestLobby(clk clock.Clock) *Lobby {
	settings := DefaultSettings()
	settings.MinParticipants = 2
	return New(identity.New(), settings, clk, 1)
}

func join(t *testing.T, l *Lobby, name string) identity.ParticipantID {
	t.Helper()
	id := identity.New()
	_, _, err := l.AddParticipant(id, name)
	require.NoError(t, err)
	return id
}

func TestAddParticipant_FirstJoinerBecomesHost(t *testing.T) {
	l := newTestLobby(clock.NewManual(time.Now()))
	p1 := join(t, l, "alice")

	snap := l.snapshotForTest()
	assert.Equal(t, p1, snap.HostID)
}

func TestAddParticipant_FullLobbyWithoutSpectatorsIsRejected(t *testing.T) {
	clk := clock.NewManual(time.Now())
	settings := DefaultSettings()
	settings.MaxParticipants = 2
	settings.MinParticipants = 2
	settings.AllowSpectators = false
	l := New(identity.New(), settings, clk, 1)

	join(t, l, "alice")
	join(t, l, "bob")

	_, _, err := l.AddParticipant(identity.New(), "carol")
	assert.ErrorIs(t, err, ErrLobbyFull)
}

func TestAddParticipant_FullLobbyWithSpectatorsBecomesSpectator(t *testing.T) {
	clk := clock.NewManual(time.Now())
	settings := DefaultSettings()
	settings.MaxParticipants = 2
	settings.MinParticipants = 2
	settings.AllowSpectators = true
	l := New(identity.New(), settings, clk, 1)

	join(t, l, "alice")
	join(t, l, "bob")

	result, _, err := l.AddParticipant(identity.New(), "carol")
	require.NoError(t, err)
	assert.True(t, result.Spectator)

	snap := l.snapshotForTest()
	assert.Len(t, snap.Participants, 2)
	assert.Len(t, snap.Spectators, 1)
}

func TestStartGame_RequiresQuorumAndAllReady(t *testing.T) {
	clk := clock.NewManual(time.Now())
	l := newTestLobby(clk)
	host := join(t, l, "alice")

	_, err := l.StartGame(host)
	assert.ErrorIs(t, err, ErrNotEnoughPlayers)

	bob := join(t, l, "bob")
	_, err = l.StartGame(host)
	assert.ErrorIs(t, err, ErrNotAllReady)

	_, err = l.SetReady(host, true)
	require.NoError(t, err)
	_, err = l.SetReady(bob, true)
	require.NoError(t, err)

	effects, err := l.StartGame(host)
	require.NoError(t, err)
	assertHasScheduleDeadline(t, effects)
	assert.Equal(t, StatusThemeVoting, l.Status())
}

func TestStartGame_OnlyHostMayStart(t *testing.T) {
	clk := clock.NewManual(time.Now())
	l := newTestLobby(clk)
	host := join(t, l, "alice")
	bob := join(t, l, "bob")
	l.SetReady(host, true)
	l.SetReady(bob, true)

	_, err := l.StartGame(bob)
	assert.ErrorIs(t, err, ErrNotHost)
}

func TestThemeVoting_TieResolvesToOneOfTheTiedThemes(t *testing.T) {
	clk := clock.NewManual(time.Now())
	l := newTestLobby(clk)
	host := join(t, l, "alice")
	bob := join(t, l, "bob")
	l.SetReady(host, true)
	l.SetReady(bob, true)
	_, err := l.StartGame(host)
	require.NoError(t, err)

	options := l.snapshotForTest().ColorThemeOptions
	require.Len(t, options, len(DefaultColorThemes))

	_, err = l.CastThemeVote(host, options[0])
	require.NoError(t, err)
	_, err = l.CastThemeVote(bob, options[1])
	require.NoError(t, err)

	effects := l.ExpireDeadline()
	assert.Equal(t, StatusDrawing, l.Status())

	snap := l.snapshotForTest()
	assert.Contains(t, []string{options[0], options[1]}, snap.ColorTheme)
	assertHasScheduleDeadline(t, effects)
}

func TestDrawingPhase_EndsEarlyWhenAllSubmit(t *testing.T) {
	l, host, bob := startedThroughDrawing(t)

	effects, err := l.SubmitDrawing(host, "host-payload")
	require.NoError(t, err)
	assert.Empty(t, effectsOfType[CancelDeadline](effects))

	effects, err = l.SubmitDrawing(bob, "bob-payload")
	require.NoError(t, err)
	assert.NotEmpty(t, effectsOfType[CancelDeadline](effects))
	assert.Equal(t, StatusVotingForDrawings, l.Status())
}

func TestDrawingVote_ConstrainedToCurrentlyDisplayedDrawing(t *testing.T) {
	l, host, bob := startedThroughDrawing(t)
	l.SubmitDrawing(host, "host-payload")
	l.SubmitDrawing(bob, "bob-payload")
	require.Equal(t, StatusVotingForDrawings, l.Status())

	snap := l.snapshotForTest()
	require.NotNil(t, snap.CurrentVoting)
	shown := snap.CurrentVoting.DrawingID
	var other identity.DrawingID
	for _, d := range snap.Drawings {
		if d.ID != shown {
			other = d.ID
		}
	}
	require.NotEqual(t, identity.Nil, other)

	_, err := l.CastDrawingVote(host, other)
	assert.ErrorIs(t, err, ErrDrawingNotDisplayed)
}

func TestDrawingVote_NoSelfVoteNoDoubleVote(t *testing.T) {
	l, host, bob := startedThroughDrawing(t)
	l.SubmitDrawing(host, "host-payload")
	l.SubmitDrawing(bob, "bob-payload")

	snap := l.snapshotForTest()
	shown := snap.CurrentVoting.DrawingID
	var shownAuthor identity.ParticipantID
	for _, d := range snap.Drawings {
		if d.ID == shown {
			shownAuthor = d.AuthorID
		}
	}

	_, err := l.CastDrawingVote(shownAuthor, shown)
	assert.ErrorIs(t, err, ErrSelfTarget)

	voter := host
	if shownAuthor == host {
		voter = bob
	}
	_, err = l.CastDrawingVote(voter, shown)
	require.NoError(t, err)

	_, err = l.CastDrawingVote(voter, shown)
	assert.ErrorIs(t, err, ErrAlreadyVotedDrawing)
}

func TestRemoveParticipant_DrawingDroppedOnlyDuringDrawingPhase(t *testing.T) {
	l, host, bob := startedThroughDrawing(t)
	l.SubmitDrawing(host, "host-payload")
	l.SubmitDrawing(bob, "bob-payload")
	require.Equal(t, StatusVotingForDrawings, l.Status())

	beforeCount := len(l.snapshotForTest().Drawings)
	l.RemoveParticipant(bob)
	assert.Len(t, l.snapshotForTest().Drawings, beforeCount)
}

func TestKick_ClearsTargetFromLobby(t *testing.T) {
	clk := clock.NewManual(time.Now())
	l := newTestLobby(clk)
	host := join(t, l, "alice")
	bob := join(t, l, "bob")

	effects, err := l.Kick(host, bob)
	require.NoError(t, err)
	assert.NotEmpty(t, effectsOfType[Unicast](effects))

	snap := l.snapshotForTest()
	assert.Len(t, snap.Participants, 1)
}

func TestBan_BlocksRejoin(t *testing.T) {
	clk := clock.NewManual(time.Now())
	l := newTestLobby(clk)
	host := join(t, l, "alice")
	bob := join(t, l, "bob")

	_, err := l.Ban(host, bob)
	require.NoError(t, err)

	_, _, err = l.AddParticipant(bob, "bob")
	assert.ErrorIs(t, err, ErrBanned)
}

// startedThroughDrawing advances a fresh two-player lobby through theme
// voting into the DRAWING phase and returns the lobby plus both
// participant IDs, host first.
func startedThroughDrawing(t *testing.T) (*Lobby, identity.ParticipantID, identity.ParticipantID) {
	t.Helper()
	clk := clock.NewManual(time.Now())
	l := newTestLobby(clk)
	host := join(t, l, "alice")
	bob := join(t, l, "bob")
	l.SetReady(host, true)
	l.SetReady(bob, true)
	_, err := l.StartGame(host)
	require.NoError(t, err)
	require.Equal(t, StatusThemeVoting, l.Status())

	l.ExpireDeadline()
	require.Equal(t, StatusDrawing, l.Status())
	return l, host, bob
}

func assertHasScheduleDeadline(t *testing.T, effects []Effect) {
	t.Helper()
	assert.NotEmpty(t, effectsOfType[ScheduleDeadline](effects))
}

func effectsOfType[T Effect](effects []Effect) []T {
	var out []T
	for _, e := range effects {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

// snapshotForTest exposes the locked snapshot builder to tests in this
// package without adding another exported method purely for testing.
func (l *Lobby) snapshotForTest() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}
