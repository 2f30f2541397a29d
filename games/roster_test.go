package games

import (
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/maps"
	"github.com/stretchr/testify/suite"
	"math/rand"
	"testing"
)

// RosterTestSuite tests Roster.
type RosterTestSuite struct {
	suite.Suite
	roster  *Roster
	updates []RosterUpdate
}

func (suite *RosterTestSuite) SetupTest() {
	suite.updates = nil
	suite.roster = NewRosterForPlayType(PlayType{Teams: 4, PerTeam: 2}, func(update RosterUpdate) {
		suite.updates = append(suite.updates, update)
	})
	suite.updates = nil
}

// assertCapacityInvariant assures that alive is a subset of members and members
// do not exceed capacity for all teams.
func (suite *RosterTestSuite) assertCapacityInvariant() {
	for _, team := range append(suite.roster.AllTeams(), suite.roster.teams[SpectatorTeam]) {
		suite.LessOrEqual(team.Size(), team.Capacity, "members should not exceed capacity")
		suite.LessOrEqual(team.AliveCount(), team.Size(), "alive should not exceed members")
		for _, alive := range team.Alive() {
			suite.True(team.HasMember(alive), "alive should be member")
		}
	}
}

func (suite *RosterTestSuite) TestTeamsCreated() {
	teams := suite.roster.AllTeams()
	suite.Require().Len(teams, 4, "should create teams for play type")
	suite.Equal(TeamKey("red"), teams[0].Key)
	suite.Equal(TeamKey("green"), teams[3].Key)
	suite.Equal(Color("RED"), teams[0].Color)
	suite.Equal(2, teams[0].Capacity)
	for _, team := range teams {
		suite.True(team.BedDestroyed, "bed should initially be destroyed")
	}
	_, ok := suite.roster.Team(SpectatorTeam)
	suite.True(ok, "should have spectator team")
}

func (suite *RosterTestSuite) TestTeamKeyTruncated() {
	team := suite.roster.CreateTeam("averyveryverylongteamname", "Long", "WHITE", 1)
	suite.Equal(TeamKey("averyveryverylon"), team.Key)
}

func (suite *RosterTestSuite) TestAddPlayer() {
	player := uuid.New()
	suite.Require().NoError(suite.roster.AddPlayer("red", player))
	team, ok := suite.roster.TeamOf(player)
	suite.Require().True(ok, "should find team")
	suite.Equal(TeamKey("red"), team.Key)
	suite.Equal([]RosterUpdate{{Kind: RosterUpdateJoined, Team: "red", Player: player}}, suite.updates)
	suite.assertCapacityInvariant()
}

func (suite *RosterTestSuite) TestAddPlayerSwitchesTeam() {
	player := uuid.New()
	suite.Require().NoError(suite.roster.AddPlayer("red", player))
	suite.Require().NoError(suite.roster.AddPlayer("blue", player))
	red, _ := suite.roster.Team("red")
	suite.False(red.HasMember(player), "should be removed from old team")
	team, _ := suite.roster.TeamOf(player)
	suite.Equal(TeamKey("blue"), team.Key)
	suite.assertCapacityInvariant()
}

func (suite *RosterTestSuite) TestAddPlayerFull() {
	suite.Require().NoError(suite.roster.AddPlayer("red", uuid.New()))
	suite.Require().NoError(suite.roster.AddPlayer("red", uuid.New()))
	player := uuid.New()
	suite.Require().NoError(suite.roster.AddPlayer("blue", player))
	err := suite.roster.AddPlayer("red", player)
	suite.Require().Error(err, "should fail")
	suite.True(errors.Is(err, errors.KindTeamFull), "should be team full")
	team, _ := suite.roster.TeamOf(player)
	suite.Equal(TeamKey("blue"), team.Key, "should keep old team")
	suite.assertCapacityInvariant()
}

func (suite *RosterTestSuite) TestAddPlayerUnknownTeam() {
	err := suite.roster.AddPlayer("cats", uuid.New())
	suite.True(errors.Is(err, errors.KindUnknownTeam), "should be unknown team")
}

func (suite *RosterTestSuite) TestRemovePlayer() {
	player := uuid.New()
	suite.Require().NoError(suite.roster.AddPlayer("red", player))
	suite.roster.MarkAlive(player)
	key, ok := suite.roster.RemovePlayer(player)
	suite.True(ok, "should remove")
	suite.Equal(TeamKey("red"), key)
	red, _ := suite.roster.Team("red")
	suite.Zero(red.Size())
	suite.Zero(red.AliveCount())
	_, ok = suite.roster.RemovePlayer(player)
	suite.False(ok, "should not remove twice")
}

func (suite *RosterTestSuite) TestDistributeUnassigned() {
	players := make([]uuid.UUID, 0)
	for i := 0; i < 6; i++ {
		players = append(players, uuid.New())
	}
	leftovers := suite.roster.DistributeUnassigned(players, rand.New(rand.NewSource(1)))
	suite.Empty(leftovers, "should place all")
	for _, team := range suite.roster.AllTeams() {
		suite.GreaterOrEqual(team.Size(), 1, "should use round-robin")
	}
	for _, player := range players {
		_, ok := suite.roster.TeamOf(player)
		suite.True(ok, "should assign every player")
	}
	suite.assertCapacityInvariant()
}

func (suite *RosterTestSuite) TestDistributeUnassignedSkipsFull() {
	suite.Require().NoError(suite.roster.AddPlayer("red", uuid.New()))
	suite.Require().NoError(suite.roster.AddPlayer("red", uuid.New()))
	players := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	leftovers := suite.roster.DistributeUnassigned(players, rand.New(rand.NewSource(1)))
	suite.Empty(leftovers)
	red, _ := suite.roster.Team("red")
	suite.Equal(2, red.Size(), "should not exceed capacity")
	suite.assertCapacityInvariant()
}

func (suite *RosterTestSuite) TestDistributeUnassignedLeftovers() {
	players := make([]uuid.UUID, 0)
	for i := 0; i < 10; i++ {
		players = append(players, uuid.New())
	}
	leftovers := suite.roster.DistributeUnassigned(players, rand.New(rand.NewSource(1)))
	suite.Len(leftovers, 2, "should report players that could not be placed")
	for _, team := range suite.roster.AllTeams() {
		suite.True(team.IsFull(), "all teams should be full")
	}
	suite.assertCapacityInvariant()
}

func (suite *RosterTestSuite) TestRemainingTeams() {
	a, b := uuid.New(), uuid.New()
	suite.Require().NoError(suite.roster.AddPlayer("red", a))
	suite.Require().NoError(suite.roster.AddPlayer("blue", b))
	suite.Empty(suite.roster.RemainingTeams(), "should only count alive members")
	suite.roster.MarkAlive(a)
	suite.roster.MarkAlive(b)
	suite.Len(suite.roster.RemainingTeams(), 2)
	team, died := suite.roster.MarkDead(a)
	suite.True(died)
	suite.Equal(TeamKey("red"), team.Key)
	suite.True(team.HasMember(a), "should keep membership")
	remaining := suite.roster.RemainingTeams()
	suite.Require().Len(remaining, 1)
	suite.Equal(TeamKey("blue"), remaining[0].Key)
	suite.assertCapacityInvariant()
}

func (suite *RosterTestSuite) TestSpectatorsExcluded() {
	player := uuid.New()
	suite.Require().NoError(suite.roster.AddPlayer(SpectatorTeam, player))
	suite.roster.MarkAlive(player)
	for _, team := range suite.roster.AllTeams() {
		suite.NotEqual(SpectatorTeam, team.Key)
	}
	suite.Empty(suite.roster.RemainingTeams())
}

func (suite *RosterTestSuite) TestApplyMapAndBedAt() {
	top := maps.Location{World: "w", X: 1, Y: 64, Z: 1}
	bottom := maps.Location{World: "w", X: 2, Y: 64, Z: 1}
	spawn := maps.Location{World: "w", X: 5, Y: 64, Z: 5}
	suite.roster.ApplyMap(maps.Map{
		Name: "Sky",
		Teams: map[string]maps.TeamSlot{
			"red": {Spawn: &spawn, Bed: &maps.Bed{Top: &top, Bottom: &bottom}},
		},
	})
	red, _ := suite.roster.Team("red")
	suite.Equal(&spawn, red.Spawn)
	suite.Len(red.BedLocations(), 2)
	team, ok := suite.roster.BedAt(maps.Location{World: "w", X: 2.5, Y: 64.3, Z: 1.9})
	suite.Require().True(ok, "should find bed")
	suite.Equal(TeamKey("red"), team.Key)
	_, ok = suite.roster.BedAt(maps.Location{World: "w", X: 9, Y: 64, Z: 9})
	suite.False(ok, "should not find bed")
}

func (suite *RosterTestSuite) TestBedAndElimination() {
	suite.roster.SetBedDestroyed("red", false)
	suite.roster.SetBedDestroyed("red", false)
	red, _ := suite.roster.Team("red")
	suite.False(red.BedDestroyed)
	suite.roster.Eliminate("red")
	suite.roster.Eliminate("red")
	suite.True(red.Eliminated)
	suite.Equal([]RosterUpdate{
		{Kind: RosterUpdateBed, Team: "red"},
		{Kind: RosterUpdateEliminated, Team: "red"},
	}, suite.updates, "should only notify on changes")
}

func (suite *RosterTestSuite) TestTeardown() {
	player := uuid.New()
	suite.Require().NoError(suite.roster.AddPlayer("red", player))
	suite.roster.MarkAlive(player)
	suite.roster.Teardown()
	_, ok := suite.roster.TeamOf(player)
	suite.False(ok, "should clear membership")
	for _, team := range suite.roster.AllTeams() {
		suite.Zero(team.Size())
	}
}

func TestRoster(t *testing.T) {
	suite.Run(t, new(RosterTestSuite))
}
