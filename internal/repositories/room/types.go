package room

import (
	"errors"

	"github.com/KirkDiggler/mafia/internal/models"
)

var (
	// ErrRoomNotFound is returned when no room exists for a code
	ErrRoomNotFound = errors.New("room not found")

	// ErrRoomExists is returned when creating a room whose code is taken
	ErrRoomExists = errors.New("room already exists")

	// ErrConflict is returned when an update keeps losing to concurrent writers
	ErrConflict = errors.New("room update conflict")
)

type CreateRoomInput struct {
	Room *models.Room
}

type GetRoomInput struct {
	Code string
}

type PatchRoomInput struct {
	Code  string
	Patch *models.RoomPatch
}

// UpdateFunc receives a private copy of the current room and returns the
// patch to apply. A nil patch leaves the room untouched; an error aborts
// the update and is returned unchanged.
type UpdateFunc func(room *models.Room) (*models.RoomPatch, error)

type UpdateRoomInput struct {
	Code   string
	Update UpdateFunc
}

type PutNightActionInput struct {
	Code     string
	PlayerID string
	Action   *models.NightAction
}

type PutVoteInput struct {
	Code    string
	VoterID string
	Vote    *models.Vote
}

type AppendMessageInput struct {
	Code    string
	Message *models.Message
}

// Callback receives a copy of the room it may keep
type Callback func(room *models.Room)

type SubscribeInput struct {
	Code     string
	Callback Callback
}

type SubscribeOutput struct {
	// Unsubscribe stops deliveries; it is safe to call more than once
	Unsubscribe func()
}

func validateCode(code string) error {
	if code == "" {
		return errors.New("room code cannot be empty")
	}
	return nil
}
