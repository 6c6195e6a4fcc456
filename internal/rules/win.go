package rules

import "github.com/KirkDiggler/mafia/internal/models"

// EvaluateWinner returns the winning team, or "" while the game goes on.
// Neutral survivors count for neither side.
func EvaluateWinner(players []*models.Player) models.Team {
	mafiaAlive := 0
	villageAlive := 0
	for _, p := range players {
		if !p.Alive() {
			continue
		}
		switch p.Team() {
		case models.TeamMafia:
			mafiaAlive++
		case models.TeamVillage:
			villageAlive++
		}
	}

	if mafiaAlive == 0 {
		return models.TeamVillage
	}
	if mafiaAlive >= villageAlive {
		return models.TeamMafia
	}
	return ""
}
