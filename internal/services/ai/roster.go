package ai

import (
	"fmt"

	"github.com/KirkDiggler/mafia/internal/common/uuid"
	"github.com/KirkDiggler/mafia/internal/models"
)

// DefaultSeats is how many AI seats a room created "with AI" gets
const DefaultSeats = 5

// IDPrefix marks synthetic player ids
const IDPrefix = "ai"

var roster = []string{
	"THOMPSON",
	"O'BRIEN",
	"MCCARTHY",
	"SULLIVAN",
	"DOYLE",
	"MURPHY",
	"KENNEDY",
	"RYAN",
}

// NewSeats builds n AI players. Names come from the roster in order and
// get a numeric suffix once it runs out.
func NewSeats(gen uuid.UUID, n int) []*models.Player {
	seats := make([]*models.Player, 0, n)
	for i := 0; i < n; i++ {
		name := roster[i%len(roster)]
		if lap := i / len(roster); lap > 0 {
			name = fmt.Sprintf("%s %d", name, lap+1)
		}
		seats = append(seats, &models.Player{
			ID:       uuid.PrefixedID(gen, IDPrefix),
			Username: name,
			IsAI:     true,
		})
	}
	return seats
}
