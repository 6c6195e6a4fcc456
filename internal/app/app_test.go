package app

import (
	"context"
	"testing"
	"time"

	"github.com/KirkDiggler/mafia/internal/config"
	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/KirkDiggler/mafia/internal/services/scheduler"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/suite"
)

type AppTestSuite struct {
	suite.Suite
	ctx context.Context
	cfg *config.Config
}

func (s *AppTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.cfg = &config.Config{
		Storage:      config.StorageMemory,
		MaxPlayers:   16,
		TickInterval: time.Second,
		RoomTTL:      time.Hour,
	}
}

func TestAppTestSuite(t *testing.T) {
	suite.Run(t, new(AppTestSuite))
}

// playLobby creates a room with AI seats and starts it
func (s *AppTestSuite) playLobby(a *App) *models.Room {
	created, err := a.Game.CreateRoom(s.ctx, &game.CreateRoomInput{Username: "tony", AISeats: 5})
	s.Require().NoError(err)

	started, err := a.Game.StartGame(s.ctx, &game.StartGameInput{Code: created.Room.Code, PlayerID: created.PlayerID})
	s.Require().NoError(err)
	return started.Room
}

func (s *AppTestSuite) TestNilConfig() {
	_, err := New(s.ctx, nil)
	s.Error(err)
}

func (s *AppTestSuite) TestMemoryStorage() {
	a, err := New(s.ctx, s.cfg)
	s.Require().NoError(err)
	defer a.Close()

	room := s.playLobby(a)

	s.Equal(models.PhaseNight, room.Phase)
	s.Len(room.Players, 6)
}

func (s *AppTestSuite) TestRedisStorage() {
	mr := miniredis.RunT(s.T())
	s.cfg.Storage = config.StorageRedis
	s.cfg.RedisAddr = mr.Addr()

	a, err := New(s.ctx, s.cfg)
	s.Require().NoError(err)
	defer a.Close()

	room := s.playLobby(a)

	s.Equal(models.PhaseNight, room.Phase)
	s.True(mr.Exists("room:" + room.Code))
	s.Greater(mr.TTL("room:"+room.Code), time.Duration(0))
}

func (s *AppTestSuite) TestRedisUnavailable() {
	s.cfg.Storage = config.StorageRedis
	s.cfg.RedisAddr = "127.0.0.1:1"

	_, err := New(s.ctx, s.cfg)

	s.Error(err)
}

func (s *AppTestSuite) TestCloseStopsTimers() {
	a, err := New(s.ctx, s.cfg)
	s.Require().NoError(err)
	room := s.playLobby(a)

	_, err = a.Scheduler.Start(&scheduler.StartInput{Code: room.Code, HostID: room.HostID})
	s.Require().NoError(err)
	s.True(a.Scheduler.Running(room.Code))

	s.NoError(a.Close())
	s.False(a.Scheduler.Running(room.Code))
}
