package game

import (
	"time"

	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/rules"
)

// NarrativeNoExecution is stored when a voting phase ends without an elimination
const NarrativeNoExecution = "NO EXECUTION - TOWN UNDECIDED"

// transition builds the patch that ends the room's current timed phase.
// Night and Voting resolve their ledger and check for a winner. A resolved
// night ledger is cleared with the resolution; the vote ledger is cleared
// as the next Voting or Night opens.
func transition(room *models.Room, now time.Time) *models.RoomPatch {
	patch := &models.RoomPatch{UpdatedAt: now}

	switch room.Phase {
	case models.PhaseNight:
		outcome := rules.ResolveNight(room.Players, room.NightActions, room.Round)
		patch.Players = outcome.Players
		patch.LastNightResult = &outcome.Narrative
		patch.Inspections = outcome.Inspections
		patch.ClearNightActions = true

		if !declareWinner(patch, outcome.Players) {
			openPhase(patch, room.Phase.Next())
		}

	case models.PhaseDay:
		openPhase(patch, room.Phase.Next())

	case models.PhaseVoting:
		outcome := rules.ResolveVotes(room.Players, room.Votes)
		narrative := outcome.Narrative
		if narrative == "" {
			narrative = NarrativeNoExecution
		}
		patch.Players = outcome.Players
		patch.LastVoteResult = &narrative

		if !declareWinner(patch, outcome.Players) {
			round := room.Round + 1
			patch.Round = &round
			openPhase(patch, room.Phase.Next())
		}

	default:
		return nil
	}

	return patch
}

// openPhase moves to next with a full timer and an empty ledger
func openPhase(patch *models.RoomPatch, next models.Phase) {
	timer := next.Duration()
	patch.Phase = &next
	patch.TimerSeconds = &timer

	switch next {
	case models.PhaseNight:
		patch.ClearNightActions = true
		patch.ClearVotes = true
	case models.PhaseVoting:
		patch.ClearVotes = true
	}
}

// declareWinner ends the game when players has a winner
func declareWinner(patch *models.RoomPatch, players []*models.Player) bool {
	winner := rules.EvaluateWinner(players)
	if winner == "" {
		return false
	}

	phase := models.PhaseGameOver
	patch.Phase = &phase
	patch.Winner = &winner
	patch.ClearTimer = true
	return true
}

// inputsComplete reports whether the open phase has every entry it needs
func inputsComplete(room *models.Room) bool {
	switch room.Phase {
	case models.PhaseNight:
		return rules.NightComplete(room.Players, room.NightActions)
	case models.PhaseVoting:
		return rules.VotingComplete(room.Players, room.Votes)
	default:
		return false
	}
}
