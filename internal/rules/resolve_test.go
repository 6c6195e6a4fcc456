package rules

import (
	"testing"

	"github.com/KirkDiggler/mafia/internal/models"
	"github.com/stretchr/testify/suite"
)

type ResolveTestSuite struct {
	suite.Suite

	// seats in join order: mafia, mafia2, doctor, detective, alice, bob, godfather
	players []*models.Player
}

func (s *ResolveTestSuite) SetupTest() {
	s.players = []*models.Player{
		{ID: "mafia", Username: "Vito", Role: models.RoleMafia},
		{ID: "mafia2", Username: "Sonny", Role: models.RoleMafia},
		{ID: "doctor", Username: "Doc", Role: models.RoleDoctor},
		{ID: "detective", Username: "Dick", Role: models.RoleDetective},
		{ID: "alice", Username: "Alice", Role: models.RoleVillager},
		{ID: "bob", Username: "bob", Role: models.RoleVillager},
		{ID: "godfather", Username: "Don", Role: models.RoleGodfather},
	}
}

func TestResolveTestSuite(t *testing.T) {
	suite.Run(t, new(ResolveTestSuite))
}

func (s *ResolveTestSuite) find(players []*models.Player, id string) *models.Player {
	for _, p := range players {
		if p.ID == id {
			return p
		}
	}
	s.FailNow("player not found", id)
	return nil
}

func (s *ResolveTestSuite) TestNight_MafiaConsensusKills() {
	actions := map[string]*models.NightAction{
		"mafia":  {Action: models.ActionMafiaVote, TargetID: "bob"},
		"mafia2": {Action: models.ActionMafiaVote, TargetID: "bob"},
	}

	outcome := ResolveNight(s.players, actions, 1)

	s.Equal("bob", outcome.VictimID)
	s.False(outcome.Saved)
	s.Equal("BOB FOUND DEAD", outcome.Narrative)
	s.True(s.find(outcome.Players, "bob").IsDead)
	s.False(s.find(s.players, "bob").IsDead, "input must not be modified")
}

func (s *ResolveTestSuite) TestNight_DoctorSaves() {
	actions := map[string]*models.NightAction{
		"mafia":  {Action: models.ActionMafiaVote, TargetID: "alice"},
		"doctor": {Action: models.ActionDoctorSave, TargetID: "alice"},
	}

	outcome := ResolveNight(s.players, actions, 1)

	s.Equal("alice", outcome.CandidateID)
	s.Empty(outcome.VictimID)
	s.True(outcome.Saved)
	s.Equal(NarrativeNobodyKilled, outcome.Narrative)
	s.False(s.find(outcome.Players, "alice").IsDead)
}

func (s *ResolveTestSuite) TestNight_DoctorSavesSomeoneElse() {
	actions := map[string]*models.NightAction{
		"mafia":  {Action: models.ActionMafiaVote, TargetID: "alice"},
		"doctor": {Action: models.ActionDoctorSave, TargetID: "doctor"},
	}

	outcome := ResolveNight(s.players, actions, 1)

	s.Equal("alice", outcome.VictimID)
	s.Equal("ALICE FOUND DEAD", outcome.Narrative)
}

func (s *ResolveTestSuite) TestNight_EmptyLedger() {
	outcome := ResolveNight(s.players, map[string]*models.NightAction{}, 1)

	s.Empty(outcome.CandidateID)
	s.Empty(outcome.VictimID)
	s.Equal(NarrativeNobodyKilled, outcome.Narrative)
	for _, p := range outcome.Players {
		s.False(p.IsDead)
	}
}

func (s *ResolveTestSuite) TestNight_TieGoesToEarliestSeat() {
	// alice sits before bob, so a 1-1 split kills alice
	actions := map[string]*models.NightAction{
		"mafia":  {Action: models.ActionMafiaVote, TargetID: "bob"},
		"mafia2": {Action: models.ActionMafiaVote, TargetID: "alice"},
	}

	for i := 0; i < 20; i++ {
		outcome := ResolveNight(s.players, actions, 1)
		s.Equal("alice", outcome.VictimID)
	}
}

func (s *ResolveTestSuite) TestNight_IgnoresInvalidEntries() {
	s.players[4].IsDead = true // alice already dead

	actions := map[string]*models.NightAction{
		// dead target
		"mafia": {Action: models.ActionMafiaVote, TargetID: "alice"},
		// villager claiming a mafia vote
		"bob": {Action: models.ActionMafiaVote, TargetID: "doctor"},
		// unknown target
		"mafia2": {Action: models.ActionMafiaVote, TargetID: "ghost"},
	}

	outcome := ResolveNight(s.players, actions, 1)

	s.Empty(outcome.VictimID)
	s.Equal(NarrativeNobodyKilled, outcome.Narrative)
	s.True(s.find(outcome.Players, "alice").IsDead)
	s.False(s.find(outcome.Players, "doctor").IsDead)
}

func (s *ResolveTestSuite) TestNight_AtMostOneDeath() {
	actions := map[string]*models.NightAction{
		"mafia":     {Action: models.ActionMafiaVote, TargetID: "alice"},
		"mafia2":    {Action: models.ActionMafiaVote, TargetID: "bob"},
		"godfather": {Action: models.ActionMafiaVote, TargetID: "doctor"},
	}

	outcome := ResolveNight(s.players, actions, 1)

	dead := 0
	for _, p := range outcome.Players {
		if p.IsDead {
			dead++
		}
	}
	s.Equal(1, dead)
	s.Equal("doctor", outcome.VictimID)
}

func (s *ResolveTestSuite) TestNight_Inspections() {
	actions := map[string]*models.NightAction{
		"detective": {Action: models.ActionDetectiveInspect, TargetID: "godfather"},
	}

	outcome := ResolveNight(s.players, actions, 3)
	s.Require().Len(outcome.Inspections["detective"], 1)
	inspection := outcome.Inspections["detective"][0]
	s.Equal("godfather", inspection.TargetID)
	s.Equal(models.TeamVillage, inspection.Team, "immune roles look like village")
	s.Equal(3, inspection.Round)

	actions["detective"].TargetID = "mafia"
	outcome = ResolveNight(s.players, actions, 3)
	s.Equal(models.TeamMafia, outcome.Inspections["detective"][0].Team)
}

func (s *ResolveTestSuite) TestVotes_PluralityEliminated() {
	votes := map[string]*models.Vote{
		"mafia":  {TargetID: "alice"},
		"mafia2": {TargetID: "alice"},
		"doctor": {TargetID: "bob"},
	}

	outcome := ResolveVotes(s.players, votes)

	s.Equal("alice", outcome.EliminatedID)
	s.Equal("ALICE EXECUTED - VILLAGER", outcome.Narrative)
	s.True(s.find(outcome.Players, "alice").IsDead)
	s.False(s.find(outcome.Players, "bob").IsDead)
	s.Equal(2, outcome.Tally["alice"])
	s.Equal(1, outcome.Tally["bob"])
}

func (s *ResolveTestSuite) TestVotes_EmptyLedger() {
	outcome := ResolveVotes(s.players, nil)

	s.Empty(outcome.EliminatedID)
	s.Empty(outcome.Narrative)
	for _, p := range outcome.Players {
		s.False(p.IsDead)
	}
}

func (s *ResolveTestSuite) TestVotes_TieGoesToEarliestSeat() {
	votes := map[string]*models.Vote{
		"alice": {TargetID: "godfather"},
		"bob":   {TargetID: "mafia2"},
	}

	outcome := ResolveVotes(s.players, votes)
	s.Equal("mafia2", outcome.EliminatedID)
	s.Equal("SONNY EXECUTED - MAFIA", outcome.Narrative)
}

func (s *ResolveTestSuite) TestVotes_DeadPlayersDoNotCount() {
	s.players[0].IsDead = true // mafia

	votes := map[string]*models.Vote{
		"mafia":  {TargetID: "bob"},   // dead voter
		"alice":  {TargetID: "mafia"}, // dead target
		"doctor": {TargetID: "mafia2"},
	}

	outcome := ResolveVotes(s.players, votes)
	s.Equal("mafia2", outcome.EliminatedID)
	s.Zero(outcome.Tally["bob"])
	s.Zero(outcome.Tally["mafia"])
}

func (s *ResolveTestSuite) TestVotes_AlreadyResolvedLedgerDoesNotDoubleEliminate() {
	votes := map[string]*models.Vote{
		"mafia": {TargetID: "alice"},
	}

	first := ResolveVotes(s.players, votes)
	s.Equal("alice", first.EliminatedID)

	second := ResolveVotes(first.Players, votes)
	s.Empty(second.EliminatedID)
}

func (s *ResolveTestSuite) TestWinner() {
	testCases := []struct {
		name    string
		players []*models.Player
		want    models.Team
	}{
		{
			name: "one mafia one villager",
			players: []*models.Player{
				{ID: "m", Role: models.RoleMafia},
				{ID: "v", Role: models.RoleVillager},
			},
			want: models.TeamMafia,
		},
		{
			name: "no mafia left",
			players: []*models.Player{
				{ID: "m", Role: models.RoleMafia, IsDead: true},
				{ID: "v", Role: models.RoleVillager},
			},
			want: models.TeamVillage,
		},
		{
			name: "two mafia three village",
			players: []*models.Player{
				{ID: "m1", Role: models.RoleMafia},
				{ID: "m2", Role: models.RoleGodfather},
				{ID: "v1", Role: models.RoleVillager},
				{ID: "v2", Role: models.RoleDoctor},
				{ID: "v3", Role: models.RoleSheriff},
			},
			want: "",
		},
		{
			name: "jester does not block mafia",
			players: []*models.Player{
				{ID: "m", Role: models.RoleMafia},
				{ID: "v", Role: models.RoleVillager},
				{ID: "j", Role: models.RoleJester},
			},
			want: models.TeamMafia,
		},
		{
			name: "dead village do not count",
			players: []*models.Player{
				{ID: "m", Role: models.RoleMafia},
				{ID: "v1", Role: models.RoleVillager},
				{ID: "v2", Role: models.RoleVillager, IsDead: true},
			},
			want: models.TeamMafia,
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			before := models.ClonePlayers(tc.players)

			s.Equal(tc.want, EvaluateWinner(tc.players))
			s.Equal(tc.want, EvaluateWinner(tc.players))
			s.Equal(before, tc.players)
		})
	}
}

func (s *ResolveTestSuite) TestCompleteness() {
	actions := map[string]*models.NightAction{
		"mafia":     {Action: models.ActionMafiaVote, TargetID: "bob"},
		"mafia2":    {Action: models.ActionMafiaVote, TargetID: "bob"},
		"doctor":    {Action: models.ActionDoctorSave, TargetID: "bob"},
		"detective": {Action: models.ActionDetectiveInspect, TargetID: "bob"},
	}
	s.False(NightComplete(s.players, actions), "godfather has not acted")

	actions["godfather"] = &models.NightAction{Action: models.ActionMafiaVote, TargetID: "bob"}
	s.True(NightComplete(s.players, actions), "villagers have nothing to submit")

	votes := map[string]*models.Vote{}
	for _, p := range s.players {
		votes[p.ID] = &models.Vote{TargetID: "bob"}
	}
	s.True(VotingComplete(s.players, votes))
	delete(votes, "alice")
	s.False(VotingComplete(s.players, votes))
}
