package models

// Phase represents the current stage of a room
type Phase string

const (
	// PhaseLobby indicates the room is waiting for players to join
	PhaseLobby Phase = "lobby"

	// PhaseNight indicates concealed night actions are being collected
	PhaseNight Phase = "night"

	// PhaseDay indicates open discussion after the night result
	PhaseDay Phase = "day"

	// PhaseVoting indicates players are voting on an elimination
	PhaseVoting Phase = "voting"

	// PhaseGameOver indicates a winner has been declared
	PhaseGameOver Phase = "game_over"
)

// Fixed phase lengths in seconds
const (
	NightSeconds  = 45
	DaySeconds    = 60
	VotingSeconds = 30
)

// Duration returns the countdown length for a timed phase, 0 otherwise
func (p Phase) Duration() int {
	switch p {
	case PhaseNight:
		return NightSeconds
	case PhaseDay:
		return DaySeconds
	case PhaseVoting:
		return VotingSeconds
	default:
		return 0
	}
}

// IsTimed reports whether the phase runs a countdown
func (p Phase) IsTimed() bool {
	return p.Duration() > 0
}

// IsTerminal reports whether the room has finished
func (p Phase) IsTerminal() bool {
	return p == PhaseGameOver
}

// Next returns the phase that follows p when no winner is declared
func (p Phase) Next() Phase {
	switch p {
	case PhaseLobby:
		return PhaseNight
	case PhaseNight:
		return PhaseDay
	case PhaseDay:
		return PhaseVoting
	case PhaseVoting:
		return PhaseNight
	default:
		return PhaseGameOver
	}
}
