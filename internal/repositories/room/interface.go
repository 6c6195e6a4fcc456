package room

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go github.com/KirkDiggler/mafia/internal/repositories/room Repository

import (
	"context"

	"github.com/KirkDiggler/mafia/internal/models"
)

// Repository is the room storage collaborator: get, patch and subscribe
// semantics over one authoritative room per code
type Repository interface {
	// CreateRoom stores a new room, failing with ErrRoomExists on a code collision
	CreateRoom(ctx context.Context, input *CreateRoomInput) error

	// GetRoom retrieves a room by code
	GetRoom(ctx context.Context, input *GetRoomInput) (*models.Room, error)

	// PatchRoom shallow-merges top-level fields into the stored room
	PatchRoom(ctx context.Context, input *PatchRoomInput) error

	// UpdateRoom atomically reads the room, asks Update for a patch and applies it
	UpdateRoom(ctx context.Context, input *UpdateRoomInput) (*models.Room, error)

	// PutNightAction writes one player's slot of the night ledger
	PutNightAction(ctx context.Context, input *PutNightActionInput) error

	// PutVote writes one voter's slot of the voting ledger
	PutVote(ctx context.Context, input *PutVoteInput) error

	// AppendMessage adds a chat entry, keeping the most recent models.MaxMessages
	AppendMessage(ctx context.Context, input *AppendMessageInput) error

	// Subscribe delivers the current room immediately and again after every change
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)
}
