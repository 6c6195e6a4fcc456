package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type RoomTestSuite struct {
	suite.Suite
	testTime time.Time
	room     *Room
}

func (s *RoomTestSuite) SetupTest() {
	s.testTime = time.Date(2025, 4, 19, 12, 0, 0, 0, time.UTC)
	s.room = NewRoom("ABCDEF", &Player{ID: "host", Username: "TONY", Role: RoleVillager}, s.testTime)
	s.room.Players = append(s.room.Players,
		&Player{ID: "vito", Username: "VITO", Role: RoleMafia},
		&Player{ID: "doc", Username: "DOC", Role: RoleDoctor},
		&Player{ID: "dick", Username: "DICK", Role: RoleDetective, IsDead: true},
	)
	s.room.Phase = PhaseNight
	s.room.Round = 1
	s.room.NightActions["vito"] = &NightAction{Action: ActionMafiaVote, TargetID: "host"}
	s.room.NightActions["doc"] = &NightAction{Action: ActionDoctorSave, TargetID: "doc"}
	s.room.Inspections["dick"] = []*Inspection{{Round: 1, TargetID: "vito", Team: TeamMafia}}
}

func TestRoomTestSuite(t *testing.T) {
	suite.Run(t, new(RoomTestSuite))
}

func (s *RoomTestSuite) TestNewRoom() {
	s.True(s.room.Players[0].IsHost)
	s.Equal("host", s.room.HostID)
	s.Equal(s.testTime, s.room.CreatedAt)
	s.Nil(NewRoom("X", &Player{ID: "h"}, s.testTime).TimerSeconds)
}

func (s *RoomTestSuite) TestTimerFallsBackToPhaseDuration() {
	s.Equal(NightSeconds, s.room.Timer())

	remaining := 7
	s.room.TimerSeconds = &remaining
	s.Equal(7, s.room.Timer())
}

func (s *RoomTestSuite) TestLivingPlayersKeepsSeatOrder() {
	living := s.room.LivingPlayers()

	s.Require().Len(living, 3)
	s.Equal("host", living[0].ID)
	s.Equal("vito", living[1].ID)
	s.Equal("doc", living[2].ID)
}

func (s *RoomTestSuite) TestCloneIsDeep() {
	c := s.room.Clone()
	c.Players[0].IsDead = true
	c.NightActions["vito"].TargetID = "doc"
	c.Inspections["dick"][0].Team = TeamVillage

	s.False(s.room.Players[0].IsDead)
	s.Equal("host", s.room.NightActions["vito"].TargetID)
	s.Equal(TeamMafia, s.room.Inspections["dick"][0].Team)
}

func (s *RoomTestSuite) TestViewForHidesOtherRoles() {
	view := s.room.ViewFor("doc")

	s.Equal(RoleDoctor, view.FindPlayer("doc").Role)
	s.Empty(view.FindPlayer("vito").Role)
	s.Empty(view.FindPlayer("host").Role)

	// the dead are revealed
	s.Equal(RoleDetective, view.FindPlayer("dick").Role)

	s.Len(view.NightActions, 1)
	s.Contains(view.NightActions, "doc")
	s.Empty(view.Inspections)

	// the original is untouched
	s.Equal(RoleMafia, s.room.FindPlayer("vito").Role)
}

func (s *RoomTestSuite) TestViewForRevealsAllAtGameOver() {
	s.room.Phase = PhaseGameOver

	view := s.room.ViewFor("doc")

	for _, p := range view.Players {
		s.NotEmpty(p.Role, p.ID)
	}
}

func (s *RoomTestSuite) TestApply() {
	phase := PhaseDay
	timer := DaySeconds
	narrative := "TONY WAS ELIMINATED"
	later := s.testTime.Add(time.Minute)

	s.room.Apply(&RoomPatch{
		Phase:             &phase,
		TimerSeconds:      &timer,
		LastNightResult:   &narrative,
		ClearNightActions: true,
		Inspections: map[string][]*Inspection{
			"dick": {{Round: 2, TargetID: "doc", Team: TeamVillage}},
		},
		UpdatedAt: later,
	})

	s.Equal(PhaseDay, s.room.Phase)
	s.Equal(DaySeconds, *s.room.TimerSeconds)
	s.Equal(narrative, s.room.LastNightResult)
	s.Empty(s.room.NightActions)
	s.Len(s.room.Inspections["dick"], 2)
	s.Equal(later, s.room.UpdatedAt)
	s.Equal(1, s.room.Round)
}

func (s *RoomTestSuite) TestApplyClearTimerWins() {
	timer := 10
	s.room.TimerSeconds = &timer

	s.room.Apply(&RoomPatch{ClearTimer: true, TimerSeconds: &timer})

	s.Nil(s.room.TimerSeconds)
}

func (s *RoomTestSuite) TestApplyWinnerIsSetOnce() {
	mafia := TeamMafia
	village := TeamVillage

	s.room.Apply(&RoomPatch{Winner: &mafia})
	s.room.Apply(&RoomPatch{Winner: &village})

	s.Equal(TeamMafia, s.room.Winner)
}

func (s *RoomTestSuite) TestApplyEmptyPatch() {
	before := s.room.Clone()

	s.room.Apply(nil)
	s.room.Apply(&RoomPatch{UpdatedAt: s.testTime.Add(time.Hour)})

	s.Equal(before, s.room)
}

func (s *RoomTestSuite) TestCapMessages() {
	var messages []*Message
	for i := 0; i < MaxMessages+5; i++ {
		messages = append(messages, &Message{ID: string(rune('a' + i%26)), Text: "hi"})
	}

	capped := CapMessages(messages)

	s.Len(capped, MaxMessages)
	s.Same(messages[5], capped[0])
	s.Same(messages[len(messages)-1], capped[len(capped)-1])
	s.Len(CapMessages(messages[:3]), 3)
}

func (s *RoomTestSuite) TestPhaseCycle() {
	s.Equal(PhaseNight, PhaseLobby.Next())
	s.Equal(PhaseDay, PhaseNight.Next())
	s.Equal(PhaseVoting, PhaseDay.Next())
	s.Equal(PhaseNight, PhaseVoting.Next())
	s.False(PhaseLobby.IsTimed())
	s.False(PhaseGameOver.IsTimed())
	s.True(PhaseGameOver.IsTerminal())
}
