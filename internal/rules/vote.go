package rules

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/mafia/internal/models"
)

// VoteOutcome is the result of resolving one voting ledger
type VoteOutcome struct {
	// Players is a copy of the input with the eliminated player marked dead
	Players []*models.Player

	// EliminatedID is empty when nobody was voted out
	EliminatedID string

	// Tally counts valid votes per target
	Tally map[string]int

	// Narrative is empty when nobody was voted out
	Narrative string
}

// ResolveVotes eliminates the most-voted living player. Votes from dead
// or unknown voters and votes for dead or unknown targets are ignored.
// The input slice is not modified.
func ResolveVotes(players []*models.Player, votes map[string]*models.Vote) *VoteOutcome {
	living := livingSeats(players)
	outcome := &VoteOutcome{
		Tally: map[string]int{},
	}

	for voterID, vote := range votes {
		if vote == nil {
			continue
		}
		if _, ok := living[voterID]; !ok {
			continue
		}
		if _, ok := living[vote.TargetID]; !ok {
			continue
		}
		outcome.Tally[vote.TargetID]++
	}

	outcome.EliminatedID = plurality(players, outcome.Tally)
	if outcome.EliminatedID == "" {
		outcome.Players = models.ClonePlayers(players)
		return outcome
	}

	victim := living[outcome.EliminatedID]
	outcome.Players = markDead(players, victim.ID)
	outcome.Narrative = ExecutionNarrative(victim)
	return outcome
}

// ExecutionNarrative announces a voted-out player and their role
func ExecutionNarrative(p *models.Player) string {
	roleName := "UNKNOWN"
	if role := p.RoleDefinition(); role != nil {
		roleName = role.Name
	}
	return fmt.Sprintf("%s EXECUTED - %s", strings.ToUpper(p.Username), strings.ToUpper(roleName))
}
