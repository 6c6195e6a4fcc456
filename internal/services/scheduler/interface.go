package scheduler

//go:generate mockgen -package=mocks -destination=mocks/mock_scheduler.go github.com/KirkDiggler/mafia/internal/services/scheduler Scheduler

// Scheduler runs one timer loop per room on behalf of its host
type Scheduler interface {
	// Start launches the room's loop unless one is already running
	Start(input *StartInput) (*StartOutput, error)

	// Stop cancels the room's loop and waits for it to exit
	Stop(code string)

	// Running reports whether the room has a live loop
	Running(code string) bool

	// StopAll cancels every loop, used on shutdown
	StopAll()
}
