package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirkDiggler/mafia/internal/common/clock"
	"github.com/KirkDiggler/mafia/internal/common/uuid"
	"github.com/KirkDiggler/mafia/internal/config"
	"github.com/KirkDiggler/mafia/internal/random"
	roomRepo "github.com/KirkDiggler/mafia/internal/repositories/room"
	"github.com/KirkDiggler/mafia/internal/services/ai"
	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/KirkDiggler/mafia/internal/services/messaging"
	"github.com/KirkDiggler/mafia/internal/services/scheduler"
	"github.com/redis/go-redis/v9"
	"k8s.io/klog/v2"
)

// App holds the services shared by every transport
type App struct {
	Game      game.Service
	Scheduler scheduler.Scheduler
	Messaging messaging.Service

	redisClient *redis.Client
}

// New wires the repository and services described by cfg
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	a := &App{}
	repo, err := a.newRepository(ctx, cfg)
	if err != nil {
		return nil, err
	}

	sysClock := clock.New()
	source := random.New(nil)

	actors, err := ai.New(&ai.Config{
		Repo:   repo,
		Random: source,
		Clock:  sysClock,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ai driver: %w", err)
	}

	gameSvc, err := game.New(&game.Config{
		MaxPlayers:    cfg.MaxPlayers,
		AdvanceEarly:  cfg.AdvanceEarly,
		ActorDelay:    cfg.ActorDelay,
		RoomRepo:      repo,
		Actors:        actors,
		Random:        source,
		Clock:         sysClock,
		UUIDGenerator: uuid.New(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game service: %w", err)
	}

	sched, err := scheduler.New(&scheduler.Config{
		GameService: gameSvc,
		Clock:       sysClock,
		Interval:    cfg.TickInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	notices, err := messaging.New(&messaging.Config{Random: source})
	if err != nil {
		return nil, fmt.Errorf("failed to create messaging service: %w", err)
	}

	a.Game = gameSvc
	a.Scheduler = sched
	a.Messaging = notices
	return a, nil
}

func (a *App) newRepository(ctx context.Context, cfg *config.Config) (roomRepo.Repository, error) {
	if cfg.Storage == config.StorageMemory {
		klog.Info("Using in-memory room storage")
		return roomRepo.NewMemory(), nil
	}

	a.redisClient = redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := a.redisClient.Ping(pingCtx).Err(); err != nil {
		_ = a.redisClient.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	repo, err := roomRepo.NewRedis(&roomRepo.Config{
		RedisClient: a.redisClient,
		TTL:         cfg.RoomTTL,
	})
	if err != nil {
		_ = a.redisClient.Close()
		return nil, fmt.Errorf("failed to create room repository: %w", err)
	}

	klog.Infof("Using Redis room storage at %s", cfg.RedisAddr)
	return repo, nil
}

// Close stops every room timer and releases the storage connection
func (a *App) Close() error {
	if a.Scheduler != nil {
		a.Scheduler.StopAll()
	}
	if a.redisClient != nil {
		return a.redisClient.Close()
	}
	return nil
}
