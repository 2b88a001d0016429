package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLobbySettings_DefaultsWhenPatchEmpty(t *testing.T) {
	s, err := NewLobbySettings(SettingsPatch{})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestNewLobbySettings_RejectsMaxParticipantsOutOfBounds(t *testing.T) {
	tooFew := 1
	_, err := NewLobbySettings(SettingsPatch{MaxParticipants: &tooFew})
	assert.ErrorIs(t, err, ErrInvalidMaxParticipants)

	tooMany := 21
	_, err = NewLobbySettings(SettingsPatch{MaxParticipants: &tooMany})
	assert.ErrorIs(t, err, ErrInvalidMaxParticipants)
}

func TestNewLobbySettings_RejectsMinParticipantsAboveMax(t *testing.T) {
	max := 4
	min := 5
	_, err := NewLobbySettings(SettingsPatch{MaxParticipants: &max, MinParticipants: &min})
	assert.ErrorIs(t, err, ErrInvalidMinParticipants)
}

func TestNewLobbySettings_RejectsMinParticipantsBelowTwo(t *testing.T) {
	min := 1
	_, err := NewLobbySettings(SettingsPatch{MinParticipants: &min})
	assert.ErrorIs(t, err, ErrInvalidMinParticipants)
}

func TestNewLobbySettings_AcceptsValidBoundsAndStillAppliesOtherFields(t *testing.T) {
	max := 10
	min := 3
	drawing := 60
	s, err := NewLobbySettings(SettingsPatch{MaxParticipants: &max, MinParticipants: &min, DrawingSeconds: &drawing})
	require.NoError(t, err)
	assert.Equal(t, 10, s.MaxParticipants)
	assert.Equal(t, 3, s.MinParticipants)
	assert.Equal(t, 60, s.DrawingSeconds)
}
