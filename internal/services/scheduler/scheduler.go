package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/KirkDiggler/mafia/internal/common/clock"
	"github.com/KirkDiggler/mafia/internal/services/game"
	"k8s.io/klog/v2"
)

type loop struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// scheduler implements the Scheduler interface. There is no failover: a
// room whose loop stops stays where it is until the host starts a new one.
type scheduler struct {
	game     game.Service
	clock    clock.Clock
	interval time.Duration

	root   context.Context
	cancel context.CancelFunc

	mu    sync.Mutex
	loops map[string]*loop
}

// New creates a new scheduler
func New(cfg *Config) (*scheduler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	if cfg.GameService == nil {
		return nil, ErrNilGameService
	}
	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	root, cancel := context.WithCancel(context.Background())
	return &scheduler{
		game:     cfg.GameService,
		clock:    cfg.Clock,
		interval: interval,
		root:     root,
		cancel:   cancel,
		loops:    make(map[string]*loop),
	}, nil
}

// Start launches the room's tick loop
func (s *scheduler) Start(input *StartInput) (*StartOutput, error) {
	if input == nil || input.Code == "" || input.HostID == "" {
		return nil, ErrMissingRoom
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.root.Err() != nil {
		return nil, ErrStopped
	}
	if _, ok := s.loops[input.Code]; ok {
		return &StartOutput{AlreadyRunning: true}, nil
	}

	ctx, cancel := context.WithCancel(s.root)
	l := &loop{cancel: cancel, done: make(chan struct{})}
	s.loops[input.Code] = l

	go s.run(ctx, l, input.Code, input.HostID)

	klog.Infof("room %s: timer loop started for host %s", input.Code, input.HostID)
	return &StartOutput{}, nil
}

// Stop cancels the room's loop and waits for it to exit
func (s *scheduler) Stop(code string) {
	s.mu.Lock()
	l, ok := s.loops[code]
	s.mu.Unlock()
	if !ok {
		return
	}

	l.cancel()
	<-l.done
}

// Running reports whether the room has a live loop
func (s *scheduler) Running(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loops[code]
	return ok
}

// StopAll cancels every loop and refuses new ones
func (s *scheduler) StopAll() {
	s.mu.Lock()
	s.cancel()
	loops := make([]*loop, 0, len(s.loops))
	for _, l := range s.loops {
		loops = append(loops, l)
	}
	s.mu.Unlock()

	for _, l := range loops {
		<-l.done
	}
}

// run ticks the room once per interval until the room leaves its timed
// phases, the host check fails, the room disappears or ctx is cancelled.
// Other tick errors are logged and the loop keeps going.
func (s *scheduler) run(ctx context.Context, l *loop, code, hostID string) {
	defer func() {
		s.mu.Lock()
		if s.loops[code] == l {
			delete(s.loops, code)
		}
		s.mu.Unlock()
		l.cancel()
		close(l.done)
	}()

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			klog.V(1).Infof("room %s: timer loop cancelled", code)
			return
		case <-ticker.C():
		}

		out, err := s.game.Tick(ctx, &game.TickInput{Code: code, PlayerID: hostID})
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if errors.Is(err, game.ErrNotHost) || errors.Is(err, game.ErrRoomNotFound) {
				klog.Warningf("room %s: timer loop stopping: %v", code, err)
				return
			}
			klog.Errorf("room %s: tick failed: %v", code, err)
			continue
		}

		if out.Transitioned {
			klog.V(1).Infof("room %s: now %s", code, out.Room.Phase)
		}
		if !out.Active {
			klog.Infof("room %s: timer loop finished in phase %s", code, out.Room.Phase)
			return
		}
	}
}
