package game

import (
	"time"

	"github.com/KirkDiggler/mafia/internal/common/clock"
	"github.com/KirkDiggler/mafia/internal/common/uuid"
	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/random"
	"github.com/KirkDiggler/mafia/internal/services/ai"
	roomRepo "github.com/KirkDiggler/mafia/internal/repositories/room"
)

const (
	// DefaultMaxPlayers caps a lobby when Config.MaxPlayers is unset
	DefaultMaxPlayers = 16

	// MaxMessageLength is the longest chat entry accepted, in characters
	MaxMessageLength = 280

	// CodeLength is the number of characters in a room code
	CodeLength = 6

	// CodeAlphabet leaves out characters that are easy to misread
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// maxCodeAttempts bounds code regeneration on collisions
	maxCodeAttempts = 5

	defaultRetryInterval = 50 * time.Millisecond
)

// Config holds configuration for the game service
type Config struct {
	// Maximum number of players per room
	MaxPlayers int

	// AdvanceEarly ends Night and Voting as soon as every required entry is in
	AdvanceEarly bool

	// ActorDelay postpones AI seats' entries after a phase opens; zero acts inline
	ActorDelay time.Duration

	// RetryInterval is the first backoff interval for storage retries
	RetryInterval time.Duration

	// Repository dependencies
	RoomRepo roomRepo.Repository

	// Service dependencies
	Actors        ai.Driver
	Random        random.Source
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
}

// CreateRoomInput contains parameters for creating a room
type CreateRoomInput struct {
	// CreatorID is optional; a new id is generated when empty
	CreatorID string

	// Username is trimmed and upper-cased
	Username string

	// AISeats adds this many synthetic players to the lobby
	AISeats int
}

// CreateRoomOutput contains the result of creating a room
type CreateRoomOutput struct {
	Room     *models.Room
	PlayerID string
}

// JoinRoomInput contains parameters for joining a room
type JoinRoomInput struct {
	Code string

	// PlayerID is optional; a new id is generated when empty
	PlayerID string

	Username string
}

// JoinRoomOutput contains the result of joining a room
type JoinRoomOutput struct {
	Room     *models.Room
	PlayerID string

	// AlreadyJoined is true when the player was already seated
	AlreadyJoined bool
}

// StartGameInput contains parameters for starting a game
type StartGameInput struct {
	Code     string
	PlayerID string
}

// StartGameOutput contains the result of starting a game
type StartGameOutput struct {
	Room *models.Room
}

// SubmitNightActionInput contains parameters for a night action
type SubmitNightActionInput struct {
	Code     string
	PlayerID string
	TargetID string
}

// SubmitNightActionOutput contains the recorded action
type SubmitNightActionOutput struct {
	Action *models.NightAction
}

// SubmitVoteInput contains parameters for a vote
type SubmitVoteInput struct {
	Code     string
	VoterID  string
	TargetID string
}

// SubmitVoteOutput contains the recorded vote
type SubmitVoteOutput struct {
	Vote *models.Vote
}

// SendMessageInput contains parameters for a chat entry
type SendMessageInput struct {
	Code     string
	PlayerID string
	Text     string
}

// SendMessageOutput contains the stored chat entry
type SendMessageOutput struct {
	Message *models.Message
}

// GetRoomInput contains parameters for reading a room
type GetRoomInput struct {
	Code string

	// PlayerID selects the redacted view; empty returns the full room
	PlayerID string
}

// GetRoomOutput contains the room
type GetRoomOutput struct {
	Room *models.Room
}

// SubscribeInput contains parameters for streaming a room
type SubscribeInput struct {
	Code     string
	PlayerID string
	Callback func(room *models.Room)
}

// SubscribeOutput contains the handle to stop streaming
type SubscribeOutput struct {
	Unsubscribe func()
}

// TickInput contains parameters for a timer tick
type TickInput struct {
	Code string

	// PlayerID must be the host
	PlayerID string
}

// TickOutput contains the result of a timer tick
type TickOutput struct {
	Room *models.Room

	// Active is false once the room is outside a timed phase
	Active bool

	// Transitioned is true when this tick ended the phase
	Transitioned bool
}

// AdvancePhaseInput contains parameters for forcing a phase to end
type AdvancePhaseInput struct {
	Code     string
	PlayerID string
}

// AdvancePhaseOutput contains the result of forcing a phase to end
type AdvancePhaseOutput struct {
	Room         *models.Room
	Transitioned bool
}
