package ai

//go:generate mockgen -package=mocks -destination=mocks/mock_driver.go github.com/KirkDiggler/mafia/internal/services/ai Driver

import "context"

// Driver plays the synthetic seats of a room
type Driver interface {
	// Act fills the ledger slot of every living AI seat for the room's current phase
	Act(ctx context.Context, input *ActInput) (*ActOutput, error)
}
