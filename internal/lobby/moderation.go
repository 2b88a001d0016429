package lobby

import "github.com/doodleparty/server/internal/identity"

// Kick removes targetID from the lobby at hostID's request, per spec.md
// §4.1's kick(host_id, target_id).
func (l *Lobby) Kick(hostID, targetID identity.ParticipantID) ([]Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if hostID != l.hostID {
		return nil, ErrNotHost
	}
	if hostID == targetID {
		return nil, ErrSelfTarget
	}
	if l.findParticipantLocked(targetID) == nil {
		return nil, ErrUnknownParticipant
	}

	effects := []Effect{
		Unicast{ParticipantID: targetID, Type: "kicked_from_lobby", Data: nil},
		Broadcast{Type: "player_kicked", Data: map[string]interface{}{"participant_id": targetID}},
	}
	return append(effects, l.removeParticipantLocked(targetID)...), nil
}

// Ban removes targetID and records them so they can never rejoin this
// lobby, per spec.md §4.1's ban(host_id, target_id).
func (l *Lobby) Ban(hostID, targetID identity.ParticipantID) ([]Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if hostID != l.hostID {
		return nil, ErrNotHost
	}
	if hostID == targetID {
		return nil, ErrSelfTarget
	}
	if l.findParticipantLocked(targetID) == nil {
		return nil, ErrUnknownParticipant
	}

	l.banned[targetID] = struct{}{}

	effects := []Effect{
		Unicast{ParticipantID: targetID, Type: "banned_from_lobby", Data: nil},
		Broadcast{Type: "player_banned", Data: map[string]interface{}{"participant_id": targetID}},
	}
	return append(effects, l.removeParticipantLocked(targetID)...), nil
}

// TransferHost hands the host role to newHostID, per spec.md §4.1's
// transfer_host(host_id, new_host_id).
func (l *Lobby) TransferHost(hostID, newHostID identity.ParticipantID) ([]Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if hostID != l.hostID {
		return nil, ErrNotHost
	}
	if hostID == newHostID {
		return nil, ErrSelfTarget
	}
	target := l.findParticipantLocked(newHostID)
	if target == nil {
		return nil, ErrUnknownParticipant
	}

	if old := l.findParticipantLocked(l.hostID); old != nil {
		old.Host = false
	}
	l.hostID = newHostID
	target.Host = true

	return []Effect{
		Broadcast{Type: "host_transferred", Data: map[string]interface{}{"new_host_id": newHostID}},
		BroadcastSnapshot{Snapshot: l.snapshotLocked()},
	}, nil
}

// UpdateSettings applies a partial settings patch at hostID's request, per
// spec.md §4.1's update_settings. Structural violations (max below the
// current participant count, min above max) reject the whole patch;
// individual out-of-bounds fields are dropped silently (spec.md §6).
func (l *Lobby) UpdateSettings(hostID identity.ParticipantID, patch SettingsPatch) ([]Effect, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if hostID != l.hostID {
		return nil, ErrNotHost
	}
	if l.status != StatusWaitingForPlayers {
		return nil, ErrCannotChangeSettings
	}

	if patch.MaxParticipants != nil && *patch.MaxParticipants < len(l.participants) {
		return nil, ErrInvalidSettingsPatch
	}
	effectiveMax := l.settings.MaxParticipants
	if patch.MaxParticipants != nil {
		effectiveMax = *patch.MaxParticipants
	}
	if patch.MinParticipants != nil && *patch.MinParticipants > effectiveMax {
		return nil, ErrInvalidSettingsPatch
	}

	l.settings.apply(patch)

	return []Effect{
		Unicast{ParticipantID: hostID, Type: "settings_updated", Data: settingsView(l.settings)},
		BroadcastSnapshot{Snapshot: l.snapshotLocked()},
	}, nil
}
