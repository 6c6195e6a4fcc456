package discord

import (
	"context"
	"strings"
	"testing"
	"time"

	clockMocks "github.com/KirkDiggler/mafia/internal/common/clock/mocks"
	"github.com/KirkDiggler/mafia/internal/common/uuid"
	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/KirkDiggler/mafia/internal/random"
	randomMocks "github.com/KirkDiggler/mafia/internal/random/mocks"
	roomRepo "github.com/KirkDiggler/mafia/internal/repositories/room"
	"github.com/KirkDiggler/mafia/internal/services/game"
	"github.com/KirkDiggler/mafia/internal/services/messaging"
	"github.com/KirkDiggler/mafia/internal/services/scheduler"
	schedulerMocks "github.com/KirkDiggler/mafia/internal/services/scheduler/mocks"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type MafiaCommandTestSuite struct {
	suite.Suite
	mockCtrl      *gomock.Controller
	mockClock     *clockMocks.MockClock
	mockRandom    *randomMocks.MockSource
	mockScheduler *schedulerMocks.MockScheduler
	game          game.Service
	cmd           *MafiaCommand
	watched       map[string]string
	ctx           context.Context
	testTime      time.Time
	channelID     string
}

func (s *MafiaCommandTestSuite) SetupTest() {
	s.mockCtrl = gomock.NewController(s.T())
	s.mockClock = clockMocks.NewMockClock(s.mockCtrl)
	s.mockRandom = randomMocks.NewMockSource(s.mockCtrl)
	s.mockScheduler = schedulerMocks.NewMockScheduler(s.mockCtrl)
	s.ctx = context.Background()
	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.channelID = "channel-1"
	s.watched = map[string]string{}

	s.mockClock.EXPECT().Now().Return(s.testTime).AnyTimes()
	s.mockRandom.EXPECT().Intn(gomock.Any()).Return(0).AnyTimes()

	svc, err := game.New(&game.Config{
		RoomRepo:      roomRepo.NewMemory(),
		Random:        random.New(&random.Config{Seed: 9}),
		Clock:         s.mockClock,
		UUIDGenerator: uuid.New(),
	})
	s.Require().NoError(err)
	s.game = svc

	notices, err := messaging.New(&messaging.Config{Random: s.mockRandom})
	s.Require().NoError(err)

	s.cmd = NewMafiaCommand(svc, s.mockScheduler, notices, func(channelID, code string) {
		s.watched[channelID] = code
	})
}

func (s *MafiaCommandTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestMafiaCommandTestSuite(t *testing.T) {
	suite.Run(t, new(MafiaCommandTestSuite))
}

func (s *MafiaCommandTestSuite) run(userID, username, sub string, options map[string]any) *reply {
	return s.cmd.run(s.ctx, &commandRequest{
		ChannelID:  s.channelID,
		UserID:     userID,
		Username:   username,
		Subcommand: sub,
		Options:    options,
	})
}

// table opens a room in the channel with the host and three guests
func (s *MafiaCommandTestSuite) table() string {
	r := s.run("u-host", "tony", SubcommandCreate, nil)
	s.Require().False(r.Error, r.Message)
	for _, guest := range []string{"vito", "alice", "bob"} {
		r := s.run("u-"+guest, guest, SubcommandJoin, nil)
		s.Require().False(r.Error, r.Message)
	}
	return s.cmd.roomFor(s.channelID)
}

func (s *MafiaCommandTestSuite) startedTable() (string, *models.Room) {
	code := s.table()
	s.mockScheduler.EXPECT().
		Start(&scheduler.StartInput{Code: code, HostID: "u-host"}).
		Return(&scheduler.StartOutput{}, nil)

	r := s.run("u-host", "tony", SubcommandStart, nil)
	s.Require().False(r.Error, r.Message)

	out, err := s.game.GetRoom(s.ctx, &game.GetRoomInput{Code: code})
	s.Require().NoError(err)
	return code, out.Room
}

func (s *MafiaCommandTestSuite) TestCreateBindsChannel() {
	r := s.run("u-host", "tony", SubcommandCreate, map[string]any{"ai": float64(2)})

	s.False(r.Error)
	s.Equal(messaging.TitleRoomCreated, r.Title)
	code := s.cmd.roomFor(s.channelID)
	s.Len(code, game.CodeLength)
	s.Equal(code, s.watched[s.channelID])

	out, err := s.game.GetRoom(s.ctx, &game.GetRoomInput{Code: code})
	s.Require().NoError(err)
	s.Len(out.Room.Players, 3)
	s.Equal("u-host", out.Room.HostID)
}

func (s *MafiaCommandTestSuite) TestJoinWithoutRoom() {
	r := s.run("u-vito", "vito", SubcommandJoin, nil)

	s.True(r.Error)
	s.True(r.Ephemeral)
	s.Equal(messaging.TitleRoomNotFound, r.Title)
}

func (s *MafiaCommandTestSuite) TestJoinByCodeFromAnotherChannel() {
	s.run("u-host", "tony", SubcommandCreate, nil)
	code := s.cmd.roomFor(s.channelID)

	s.channelID = "channel-2"
	r := s.run("u-vito", "vito", SubcommandJoin, map[string]any{"code": " " + code + " "})

	s.False(r.Error, r.Message)
	s.Equal(messaging.TitleJoined, r.Title)
	s.Equal(code, s.cmd.roomFor("channel-2"))
}

func (s *MafiaCommandTestSuite) TestRejoinIsIdempotent() {
	code := s.table()

	r := s.run("u-vito", "vito", SubcommandJoin, nil)

	s.False(r.Error)
	s.Equal("You're already inside, VITO. Nobody saw you leave.", r.Message)
	out, err := s.game.GetRoom(s.ctx, &game.GetRoomInput{Code: code})
	s.Require().NoError(err)
	s.Len(out.Room.Players, 4)
}

func (s *MafiaCommandTestSuite) TestStartNeedsFour() {
	s.run("u-host", "tony", SubcommandCreate, nil)

	r := s.run("u-host", "tony", SubcommandStart, nil)

	s.True(r.Error)
	s.Equal(messaging.TitleNeedMore, r.Title)
}

func (s *MafiaCommandTestSuite) TestStartHostOnly() {
	s.table()

	r := s.run("u-vito", "vito", SubcommandStart, nil)

	s.True(r.Error)
	s.Equal(messaging.TitleNotHost, r.Title)
}

func (s *MafiaCommandTestSuite) TestStartRunsTimer() {
	_, room := s.startedTable()

	s.Equal(models.PhaseNight, room.Phase)
	for _, p := range room.Players {
		s.NotEmpty(p.Role)
	}
}

func (s *MafiaCommandTestSuite) TestStatusShowsOwnRoleOnly() {
	_, room := s.startedTable()
	vito := room.FindPlayer("u-vito")

	r := s.run("u-vito", "vito", SubcommandStatus, nil)

	s.False(r.Error)
	s.True(r.Ephemeral)
	s.Contains(r.Message, strings.ToUpper(vito.RoleDefinition().Name))
	s.NotEmpty(r.Fields)
}

func (s *MafiaCommandTestSuite) TestActByUsernameAndMention() {
	_, room := s.startedTable()

	var mafia, victim *models.Player
	for _, p := range room.Players {
		if p.Role == models.RoleMafia {
			mafia = p
		} else if victim == nil {
			victim = p
		}
	}
	s.Require().NotNil(mafia)

	r := s.run(mafia.ID, mafia.Username, SubcommandAct, map[string]any{"target": victim.Username})
	s.False(r.Error, r.Message)
	s.True(r.Ephemeral)
	s.Equal(messaging.TitleOrderConfirmed, r.Title)

	r = s.run(mafia.ID, mafia.Username, SubcommandAct, map[string]any{"target": "<@" + victim.ID + ">"})
	s.False(r.Error, r.Message)
}

func (s *MafiaCommandTestSuite) TestActUnknownTarget() {
	_, room := s.startedTable()

	r := s.run(room.Players[0].ID, "tony", SubcommandAct, map[string]any{"target": "nobody"})

	s.True(r.Error)
	s.Equal(messaging.TitleInvalidOrder, r.Title)
}

func (s *MafiaCommandTestSuite) TestVoteOutsideVoting() {
	s.startedTable()

	r := s.run("u-host", "tony", SubcommandVote, map[string]any{"target": "vito"})

	s.True(r.Error)
	s.Equal(messaging.TitleGameInProgress, r.Title)
}

func (s *MafiaCommandTestSuite) TestAdvanceThenVote() {
	code, _ := s.startedTable()
	s.mockScheduler.EXPECT().Start(gomock.Any()).Return(&scheduler.StartOutput{AlreadyRunning: true}, nil).Times(2)

	// no night actions, so nobody dies and day follows
	s.False(s.run("u-host", "tony", SubcommandAdvance, nil).Error)
	s.False(s.run("u-host", "tony", SubcommandAdvance, nil).Error)

	out, err := s.game.GetRoom(s.ctx, &game.GetRoomInput{Code: code})
	s.Require().NoError(err)
	s.Require().Equal(models.PhaseVoting, out.Room.Phase)

	r := s.run("u-alice", "alice", SubcommandVote, map[string]any{"target": "VITO"})

	s.False(r.Error, r.Message)
	s.Equal(messaging.TitleVoteRecorded, r.Title)
	s.Contains(r.Message, "VITO")
}

func (s *MafiaCommandTestSuite) TestSay() {
	s.table()

	r := s.run("u-alice", "alice", SubcommandSay, map[string]any{"text": "it was vito"})

	s.False(r.Error)
	s.Equal("ALICE", r.Title)
	s.Equal("it was vito", r.Message)

	r = s.run("u-alice", "alice", SubcommandSay, map[string]any{"text": ""})
	s.True(r.Error)
	s.Equal(messaging.TitleBadMessage, r.Title)
}

func (s *MafiaCommandTestSuite) TestUnknownSubcommand() {
	r := s.run("u-host", "tony", "bribe", nil)

	s.True(r.Error)
}
