package messaging

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go github.com/KirkDiggler/mafia/internal/services/messaging Service

import "context"

// Service turns game events into player-facing notifications
type Service interface {
	// GetJoinMessage returns the notice shown after creating or joining a room
	GetJoinMessage(ctx context.Context, input *GetJoinMessageInput) (*GetJoinMessageOutput, error)

	// GetErrorMessage returns the advisory for a failed operation
	GetErrorMessage(ctx context.Context, input *GetErrorMessageInput) (*GetErrorMessageOutput, error)

	// GetSubmissionMessage confirms a night action or vote
	GetSubmissionMessage(ctx context.Context, input *GetSubmissionMessageInput) (*GetSubmissionMessageOutput, error)

	// GetPhaseMessage announces the room's current phase
	GetPhaseMessage(ctx context.Context, input *GetPhaseMessageInput) (*GetPhaseMessageOutput, error)
}
