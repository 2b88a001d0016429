package lobby

import (
	"time"

	"github.com/doodleparty/server/internal/identity"
)

// Effect is something a Lobby operation wants done after the lock is
// released. Lobby methods never perform I/O themselves (spec.md §5); they
// return a slice of Effect values for the dispatcher or scheduler to carry
// out once outside the critical section.
type Effect interface {
	isEffect()
}

// BroadcastSnapshot asks the caller to send Snapshot to every participant
// and spectator as a lobby_update frame. The snapshot is captured while the
// lobby's lock was still held by the operation that produced this effect,
// so that broadcasts stay totally ordered with the state transitions that
// produced them (spec.md §5 ORDERING GUARANTEES) — nothing else can mutate
// the lobby between the instant the snapshot was taken and when it is sent.
type BroadcastSnapshot struct {
	Snapshot Snapshot
}

func (BroadcastSnapshot) isEffect() {}

// Broadcast asks the caller to send a one-off typed frame (not a full
// snapshot) to every participant, e.g. player_kicked or host_transferred.
type Broadcast struct {
	Type string
	Data interface{}
}

func (Broadcast) isEffect() {}

// Unicast asks the caller to send a typed frame to exactly one participant,
// e.g. kicked_from_lobby or a settings_updated acknowledgement.
type Unicast struct {
	ParticipantID identity.ParticipantID
	Type          string
	Data          interface{}
}

func (Unicast) isEffect() {}

// ScheduleDeadline asks the scheduler to arm (replacing any existing timer
// for this lobby) a phase-expiry event for the given instant. Scheduling is
// idempotent per spec.md §4.4: a new ScheduleDeadline supersedes the prior
// one outright.
type ScheduleDeadline struct {
	At time.Time
}

func (ScheduleDeadline) isEffect() {}

// CancelDeadline asks the scheduler to disarm any pending timer for this
// lobby without arming a replacement.
type CancelDeadline struct{}

func (CancelDeadline) isEffect() {}

// RemoveLobby asks the registry to drop this lobby: it has become empty.
type RemoveLobby struct{}

func (RemoveLobby) isEffect() {}
