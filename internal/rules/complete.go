package rules

import "github.com/KirkDiggler/mafia/internal/models"

// NightComplete reports whether every living player with a night action
// has submitted one
func NightComplete(players []*models.Player, actions map[string]*models.NightAction) bool {
	for _, p := range players {
		if !p.Alive() || !p.RoleDefinition().HasAction() {
			continue
		}
		if _, ok := actions[p.ID]; !ok {
			return false
		}
	}
	return true
}

// VotingComplete reports whether every living player has voted
func VotingComplete(players []*models.Player, votes map[string]*models.Vote) bool {
	for _, p := range players {
		if !p.Alive() {
			continue
		}
		if _, ok := votes[p.ID]; !ok {
			return false
		}
	}
	return true
}
