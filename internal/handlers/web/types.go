package web

import (
	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/KirkDiggler/mafia/internal/services/messaging"
	"github.com/KirkDiggler/mafia/internal/services/scheduler"
)

// Config holds the dependencies of the HTTP transport
type Config struct {
	GameService game.Service
	Scheduler   scheduler.Scheduler
	Messaging   messaging.Service

	// PublicURL is the address players open to join, encoded in QR codes
	PublicURL string
}

// Notice is an advisory shown to the player
type Notice struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type createRoomRequest struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
	AISeats  int    `json:"ai_seats"`
}

type joinRoomRequest struct {
	PlayerID string `json:"player_id"`
	Username string `json:"username"`
}

type playerRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
}

type targetRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	TargetID string `json:"target_id" binding:"required"`
}

type messageRequest struct {
	PlayerID string `json:"player_id" binding:"required"`
	Text     string `json:"text"`
}

type roomResponse struct {
	Room          *models.Room `json:"room"`
	PlayerID      string       `json:"player_id,omitempty"`
	AlreadyJoined bool         `json:"already_joined,omitempty"`
	Notice        *Notice      `json:"notice,omitempty"`
}

type actionResponse struct {
	Action *models.NightAction `json:"action"`
	Notice *Notice             `json:"notice,omitempty"`
}

type voteResponse struct {
	Vote   *models.Vote `json:"vote"`
	Notice *Notice      `json:"notice,omitempty"`
}

type messageResponse struct {
	Message *models.Message `json:"message"`
}

type roleListResponse struct {
	Roles []*models.Role `json:"roles"`
}

type errorResponse struct {
	Error  string  `json:"error"`
	Notice *Notice `json:"notice,omitempty"`
}

// streamEvent is one frame on the room websocket
type streamEvent struct {
	Type string       `json:"type"`
	Room *models.Room `json:"room"`

	// Notice is set when the frame opens a new phase
	Notice *Notice `json:"notice,omitempty"`
}
