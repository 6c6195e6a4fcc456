package ai

import (
	"github.com/KirkDiggler/mafia/internal/common/clock"
	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/random"
	"github.com/KirkDiggler/mafia/internal/repositories/room"
)

// Config holds configuration for the synthetic actor driver
type Config struct {
	Repo   room.Repository
	Random random.Source
	Clock  clock.Clock
}

// ActInput contains the room to act in
type ActInput struct {
	// Room is the state right after the phase opened
	Room *models.Room
}

// ActOutput contains the entries written on behalf of AI seats
type ActOutput struct {
	NightActions map[string]*models.NightAction
	Votes        map[string]*models.Vote
}
