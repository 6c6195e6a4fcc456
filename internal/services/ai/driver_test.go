package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/mafia/internal/common/clock/mocks"
	uuidMocks "github.com/KirkDiggler/mafia/internal/common/uuid/mocks"
	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/random"
	"github.com/KirkDiggler/mafia/internal/repositories/room"
	roomMocks "github.com/KirkDiggler/mafia/internal/repositories/room/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type DriverTestSuite struct {
	suite.Suite
	mockCtrl  *gomock.Controller
	mockClock *clockMocks.MockClock
	repo      room.Repository
	driver    Driver
	ctx       context.Context
	testTime  time.Time
	testRoom  *models.Room
}

func (s *DriverTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.ctx = context.Background()
	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()

	s.repo = room.NewMemory()

	driver, err := New(&Config{
		Repo:   s.repo,
		Random: random.New(&random.Config{Seed: 7}),
		Clock:  s.mockClock,
	})
	s.Require().NoError(err)
	s.driver = driver

	s.testRoom = models.NewRoom("ABCDEF", &models.Player{ID: "human", Username: "ZED", Role: models.RoleVillager}, s.testTime)
	s.testRoom.Players = append(s.testRoom.Players,
		&models.Player{ID: "ai_mafia", Username: "THOMPSON", IsAI: true, Role: models.RoleMafia},
		&models.Player{ID: "ai_doctor", Username: "DOYLE", IsAI: true, Role: models.RoleDoctor},
		&models.Player{ID: "ai_villager", Username: "RYAN", IsAI: true, Role: models.RoleVillager},
		&models.Player{ID: "ai_dead", Username: "MURPHY", IsAI: true, IsDead: true, Role: models.RoleDetective},
	)
	s.Require().NoError(s.repo.CreateRoom(s.ctx, &room.CreateRoomInput{Room: s.testRoom}))
}

func (s *DriverTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestDriverTestSuite(t *testing.T) {
	suite.Run(t, new(DriverTestSuite))
}

func (s *DriverTestSuite) TestNewValidatesConfig() {
	_, err := New(nil)
	s.ErrorIs(err, ErrNilConfig)

	_, err = New(&Config{Random: random.New(nil), Clock: s.mockClock})
	s.ErrorIs(err, ErrNilRepo)

	_, err = New(&Config{Repo: s.repo, Clock: s.mockClock})
	s.ErrorIs(err, ErrNilRandom)

	_, err = New(&Config{Repo: s.repo, Random: random.New(nil)})
	s.ErrorIs(err, ErrNilClock)
}

func (s *DriverTestSuite) TestNightOnlyActionRolesAct() {
	s.testRoom.Phase = models.PhaseNight

	for i := 0; i < 25; i++ {
		out, err := s.driver.Act(s.ctx, &ActInput{Room: s.testRoom})
		s.Require().NoError(err)

		s.Len(out.NightActions, 2)
		s.Empty(out.Votes)

		mafia := out.NightActions["ai_mafia"]
		s.Require().NotNil(mafia)
		s.Equal(models.ActionMafiaVote, mafia.Action)
		s.NotEqual("ai_mafia", mafia.TargetID)
		s.NotEqual("ai_dead", mafia.TargetID)
		s.Equal(s.testTime, mafia.SubmittedAt)

		doctor := out.NightActions["ai_doctor"]
		s.Require().NotNil(doctor)
		s.Equal(models.ActionDoctorSave, doctor.Action)
		s.NotEqual("ai_doctor", doctor.TargetID)
	}

	stored, err := s.repo.GetRoom(s.ctx, &room.GetRoomInput{Code: "ABCDEF"})
	s.Require().NoError(err)
	s.Len(stored.NightActions, 2)
	s.NotContains(stored.NightActions, "human")
}

func (s *DriverTestSuite) TestVotingEveryLivingAISeatVotes() {
	s.testRoom.Phase = models.PhaseVoting

	out, err := s.driver.Act(s.ctx, &ActInput{Room: s.testRoom})
	s.Require().NoError(err)

	s.Len(out.Votes, 3)
	s.NotContains(out.Votes, "ai_dead")
	s.NotContains(out.Votes, "human")
	for voter, vote := range out.Votes {
		s.NotEqual(voter, vote.TargetID)
		s.NotEqual("ai_dead", vote.TargetID)
	}

	stored, err := s.repo.GetRoom(s.ctx, &room.GetRoomInput{Code: "ABCDEF"})
	s.Require().NoError(err)
	s.Len(stored.Votes, 3)
}

func (s *DriverTestSuite) TestOtherPhasesDoNothing() {
	for _, phase := range []models.Phase{models.PhaseLobby, models.PhaseDay, models.PhaseGameOver} {
		s.testRoom.Phase = phase
		out, err := s.driver.Act(s.ctx, &ActInput{Room: s.testRoom})
		s.Require().NoError(err)
		s.Empty(out.NightActions)
		s.Empty(out.Votes)
	}
}

func (s *DriverTestSuite) TestTargetsAreRoughlyUniform() {
	s.testRoom.Phase = models.PhaseVoting
	counts := map[string]int{}

	const runs = 3000
	for i := 0; i < runs; i++ {
		out, err := s.driver.Act(s.ctx, &ActInput{Room: s.testRoom})
		s.Require().NoError(err)
		counts[out.Votes["ai_villager"].TargetID]++
	}

	// human, ai_mafia and ai_doctor are the only valid targets
	s.Len(counts, 3)
	for target, count := range counts {
		s.InDeltaf(runs/3, count, runs/30, "target %s picked %d times", target, count)
	}
}

func (s *DriverTestSuite) TestRepositoryFailureSurfaces() {
	mockRepo := roomMocks.NewMockRepository(s.mockCtrl)
	driver, err := New(&Config{Repo: mockRepo, Random: random.New(nil), Clock: s.mockClock})
	s.Require().NoError(err)

	mockRepo.EXPECT().PutVote(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

	s.testRoom.Phase = models.PhaseVoting
	_, err = driver.Act(s.ctx, &ActInput{Room: s.testRoom})
	s.Error(err)
}

func (s *DriverTestSuite) TestNewSeats() {
	mockUUID := uuidMocks.NewMockUUID(s.mockCtrl)
	mockUUID.EXPECT().NewUUID().Return("1234").Times(10)

	seats := NewSeats(mockUUID, 10)
	s.Require().Len(seats, 10)
	s.Equal("THOMPSON", seats[0].Username)
	s.Equal("O'BRIEN", seats[1].Username)
	s.Equal("THOMPSON 2", seats[8].Username)
	for _, seat := range seats {
		s.True(seat.IsAI)
		s.Equal("ai_1234", seat.ID)
		s.Empty(seat.Role)
	}
}
