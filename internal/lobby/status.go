package lobby

// Status is the lobby's current phase tag, per spec.md §4.1.
type Status string

const (
	StatusWaitingForPlayers Status = "WAITING_FOR_PLAYERS"
	StatusThemeVoting       Status = "THEME_VOTING"
	StatusDrawing           Status = "DRAWING"
	StatusVotingForDrawings Status = "VOTING_FOR_DRAWINGS"
	StatusShowcasingResults Status = "SHOWCASING_RESULTS"
	StatusEnded             Status = "ENDED"
)
