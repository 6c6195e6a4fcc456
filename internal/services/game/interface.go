package game

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/mafia/internal/services/game Service

import "context"

// Service defines the interface for room and phase operations
type Service interface {
	// CreateRoom opens a lobby with the creator as host
	CreateRoom(ctx context.Context, input *CreateRoomInput) (*CreateRoomOutput, error)

	// JoinRoom adds a player to a lobby
	JoinRoom(ctx context.Context, input *JoinRoomInput) (*JoinRoomOutput, error)

	// StartGame deals roles and opens the first night
	StartGame(ctx context.Context, input *StartGameInput) (*StartGameOutput, error)

	// SubmitNightAction records the actor's concealed night action
	SubmitNightAction(ctx context.Context, input *SubmitNightActionInput) (*SubmitNightActionOutput, error)

	// SubmitVote records the voter's choice for this voting phase
	SubmitVote(ctx context.Context, input *SubmitVoteInput) (*SubmitVoteOutput, error)

	// SendMessage appends a chat entry
	SendMessage(ctx context.Context, input *SendMessageInput) (*SendMessageOutput, error)

	// GetRoom returns the room, redacted for the viewer when one is given
	GetRoom(ctx context.Context, input *GetRoomInput) (*GetRoomOutput, error)

	// Subscribe streams the room, redacted for the viewer, after every change
	Subscribe(ctx context.Context, input *SubscribeInput) (*SubscribeOutput, error)

	// Tick counts the phase timer down by one second, transitioning on expiry
	Tick(ctx context.Context, input *TickInput) (*TickOutput, error)

	// AdvancePhase expires the current phase immediately
	AdvancePhase(ctx context.Context, input *AdvancePhaseInput) (*AdvancePhaseOutput, error)
}
