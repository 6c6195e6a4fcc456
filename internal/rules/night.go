package rules

import (
	"fmt"
	"strings"

	"github.com/KirkDiggler/mafia/internal/models"
)

// NarrativeNobodyKilled is announced when the night ends without a death
const NarrativeNobodyKilled = "NOBODY KILLED - DOCTOR INTERVENED"

// NightOutcome is the result of resolving one night's ledger
type NightOutcome struct {
	// Players is a copy of the input with the victim, if any, marked dead
	Players []*models.Player

	// CandidateID is the mafia's plurality target, empty if none
	CandidateID string

	// VictimID is set when the kill went through
	VictimID string

	// Saved is true when a doctor cancelled the kill
	Saved bool

	Narrative string

	// Inspections are keyed by inspector id
	Inspections map[string][]*models.Inspection
}

// ResolveNight applies the night ledger to the players. Only mafia votes
// and doctor saves change state; investigative actions produce private
// inspections. Entries from dead or unknown actors, entries whose kind
// does not match the actor's role, and entries aimed at dead or unknown
// targets are ignored. The input slice is not modified.
func ResolveNight(players []*models.Player, actions map[string]*models.NightAction, round int) *NightOutcome {
	living := livingSeats(players)
	outcome := &NightOutcome{
		Inspections: map[string][]*models.Inspection{},
	}

	kills := make(map[string]int)
	saves := make(map[string]bool)

	// walk actors in seat order so inspections come out deterministic
	for _, actor := range players {
		action, ok := actions[actor.ID]
		if !ok || action == nil || !actor.Alive() {
			continue
		}
		role := actor.RoleDefinition()
		if !role.HasAction() || role.Action != action.Action {
			continue
		}
		target, ok := living[action.TargetID]
		if !ok {
			continue
		}

		switch {
		case action.Action == models.ActionMafiaVote:
			kills[target.ID]++
		case action.Action == models.ActionDoctorSave:
			saves[target.ID] = true
		case action.Action.IsInvestigative():
			outcome.Inspections[actor.ID] = append(outcome.Inspections[actor.ID], &models.Inspection{
				Round:    round,
				TargetID: target.ID,
				Team:     apparentTeam(target),
			})
		}
	}

	outcome.CandidateID = plurality(players, kills)
	switch {
	case outcome.CandidateID == "":
		outcome.Players = models.ClonePlayers(players)
		outcome.Narrative = NarrativeNobodyKilled
	case saves[outcome.CandidateID]:
		outcome.Players = models.ClonePlayers(players)
		outcome.Saved = true
		outcome.Narrative = NarrativeNobodyKilled
	default:
		victim := living[outcome.CandidateID]
		outcome.VictimID = victim.ID
		outcome.Players = markDead(players, victim.ID)
		outcome.Narrative = fmt.Sprintf("%s FOUND DEAD", strings.ToUpper(victim.Username))
	}

	return outcome
}

// apparentTeam is what an investigator learns about target
func apparentTeam(target *models.Player) models.Team {
	role := target.RoleDefinition()
	if role == nil {
		return models.TeamVillage
	}
	if role.Immune {
		return models.TeamVillage
	}
	return role.Team
}
