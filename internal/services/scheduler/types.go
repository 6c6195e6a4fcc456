package scheduler

import (
	"time"

	"github.com/KirkDiggler/mafia/internal/common/clock"
	"github.com/KirkDiggler/mafia/internal/services/game"
)

// DefaultInterval is one timer second
const DefaultInterval = time.Second

// SchedulerError is a custom error type for scheduler errors
type SchedulerError string

// Error implements the error interface
func (e SchedulerError) Error() string {
	return string(e)
}

const (
	ErrNilConfig      = SchedulerError("config cannot be nil")
	ErrNilGameService = SchedulerError("game service cannot be nil")
	ErrNilClock       = SchedulerError("clock cannot be nil")
	ErrMissingRoom    = SchedulerError("room code and host id are required")
	ErrStopped        = SchedulerError("scheduler has been stopped")
)

// Config holds configuration for the scheduler
type Config struct {
	GameService game.Service
	Clock       clock.Clock

	// Interval between ticks; defaults to one second
	Interval time.Duration
}

// StartInput identifies the room and the host the loop ticks for
type StartInput struct {
	Code   string
	HostID string
}

// StartOutput reports whether a loop was already running
type StartOutput struct {
	AlreadyRunning bool
}
