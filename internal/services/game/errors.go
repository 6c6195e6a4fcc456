package game

// GameError is a custom error type for game-related errors
type GameError string

// Error implements the error interface
func (e GameError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrInvalidPlayerCount GameError = "at least 4 players are required"
	ErrRoomNotFound       GameError = "room not found"
	ErrPhaseConflict      GameError = "operation not allowed in the current phase"
	ErrStorageFailure     GameError = "room storage failure"
	ErrRoomExists         GameError = "could not allocate a unique room code"
	ErrRoomFull           GameError = "room is at maximum capacity"
	ErrNotHost            GameError = "only the host can do that"
	ErrPlayerNotFound     GameError = "player not in room"
	ErrPlayerDead         GameError = "player is dead"
	ErrNoNightAction      GameError = "role has no night action"
	ErrInvalidTarget      GameError = "invalid target"
	ErrEmptyMessage       GameError = "message must be 1-280 characters"
	ErrInvalidUsername    GameError = "username cannot be empty"
	ErrNilConfig          GameError = "config cannot be nil"
	ErrNilRoomRepo        GameError = "room repository cannot be nil"
	ErrNilRandom          GameError = "random source cannot be nil"
	ErrNilClock           GameError = "clock cannot be nil"
	ErrNilUUIDGenerator   GameError = "UUID generator cannot be nil"
)
