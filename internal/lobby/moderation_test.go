package lobby

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doodleparty/server/internal/clock"
)

func TestUpdateSettings_DropsOutOfBoundsFieldsSilently(t *testing.T) {
	l := newTestLobby(clock.NewManual(time.Now()))
	host := join(t, l, "alice")

	tooShort := 5
	_, err := l.UpdateSettings(host, SettingsPatch{DrawingSeconds: &tooShort})
	require.NoError(t, err)

	assert.Equal(t, DefaultSettings().DrawingSeconds, l.snapshotForTest().Settings.DrawingSeconds)
}

func TestUpdateSettings_RejectsMaxBelowCurrentParticipantCount(t *testing.T) {
	l := newTestLobby(clock.NewManual(time.Now()))
	host := join(t, l, "alice")
	join(t, l, "bob")
	join(t, l, "carol")

	tooSmall := 2
	_, err := l.UpdateSettings(host, SettingsPatch{MaxParticipants: &tooSmall})
	assert.ErrorIs(t, err, ErrInvalidSettingsPatch)
}

func TestUpdateSettings_OnlyHostAllowedAndOnlyWhileWaiting(t *testing.T) {
	l := newTestLobby(clock.NewManual(time.Now()))
	host := join(t, l, "alice")
	bob := join(t, l, "bob")

	newMax := 6
	_, err := l.UpdateSettings(bob, SettingsPatch{MaxParticipants: &newMax})
	assert.ErrorIs(t, err, ErrNotHost)

	l.SetReady(host, true)
	l.SetReady(bob, true)
	_, err = l.StartGame(host)
	require.NoError(t, err)

	_, err = l.UpdateSettings(host, SettingsPatch{MaxParticipants: &newMax})
	assert.ErrorIs(t, err, ErrCannotChangeSettings)
}

func TestTransferHost_MovesHostFlag(t *testing.T) {
	l := newTestLobby(clock.NewManual(time.Now()))
	host := join(t, l, "alice")
	bob := join(t, l, "bob")

	_, err := l.TransferHost(host, bob)
	require.NoError(t, err)

	snap := l.snapshotForTest()
	assert.Equal(t, bob, snap.HostID)

	_, err = l.TransferHost(host, bob)
	assert.ErrorIs(t, err, ErrNotHost)
}

func TestTransferHost_CannotTargetSelf(t *testing.T) {
	l := newTestLobby(clock.NewManual(time.Now()))
	host := join(t, l, "alice")

	_, err := l.TransferHost(host, host)
	assert.ErrorIs(t, err, ErrSelfTarget)
}
