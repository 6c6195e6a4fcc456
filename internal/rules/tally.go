package rules

import "github.com/KirkDiggler/mafia/internal/models"

// seats indexes the living players by id
type seats map[string]*models.Player

func livingSeats(players []*models.Player) seats {
	living := make(seats, len(players))
	for _, p := range players {
		if p.Alive() {
			living[p.ID] = p
		}
	}
	return living
}

// plurality returns the most-counted target id. Ties go to the target
// seated earliest, so the result never depends on map iteration order.
func plurality(players []*models.Player, counts map[string]int) string {
	best := ""
	bestCount := 0
	for _, p := range players {
		if c := counts[p.ID]; c > bestCount {
			best = p.ID
			bestCount = c
		}
	}
	return best
}

// markDead returns a copy of players with id marked dead
func markDead(players []*models.Player, id string) []*models.Player {
	out := models.ClonePlayers(players)
	for _, p := range out {
		if p.ID == id {
			p.IsDead = true
		}
	}
	return out
}
