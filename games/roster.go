package games

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/errors"
	"github.com/lefinal/bedwars-server/maps"
	"math/rand"
	"sort"
)

// RosterUpdateKind describes what changed in a RosterUpdate.
type RosterUpdateKind string

const (
	RosterUpdateJoined       RosterUpdateKind = "joined"
	RosterUpdateLeft         RosterUpdateKind = "left"
	RosterUpdateRevived      RosterUpdateKind = "revived"
	RosterUpdateDied         RosterUpdateKind = "died"
	RosterUpdateBed          RosterUpdateKind = "bed"
	RosterUpdateEliminated   RosterUpdateKind = "eliminated"
	RosterUpdateTeamsChanged RosterUpdateKind = "teams-changed"
)

// RosterUpdate is passed to the observer of a Roster after each mutation.
type RosterUpdate struct {
	Kind RosterUpdateKind
	// Team is the affected team. It is empty for RosterUpdateTeamsChanged.
	Team TeamKey
	// Player is the affected player if any.
	Player uuid.UUID
}

// Roster holds team definitions and membership. It is not safe for concurrent
// use and must only be used from the simulation thread.
type Roster struct {
	teams map[TeamKey]*Team
	// playerTeams is the reverse lookup for team membership.
	playerTeams map[uuid.UUID]TeamKey
	// observer is an optional callback that is called after each mutation.
	observer func(update RosterUpdate)
}

// NewRoster creates a new Roster with the spectator team. The passed observer
// is optional.
func NewRoster(observer func(update RosterUpdate)) *Roster {
	r := &Roster{
		teams:       make(map[TeamKey]*Team),
		playerTeams: make(map[uuid.UUID]TeamKey),
		observer:    observer,
	}
	r.teams[SpectatorTeam] = newTeam(SpectatorTeam, "Spectator", "GRAY", spectatorCapacity, 999)
	return r
}

// NewRosterForPlayType creates a Roster with all teams of the given PlayType.
func NewRosterForPlayType(playType PlayType, observer func(update RosterUpdate)) *Roster {
	r := NewRoster(observer)
	for _, name := range playType.TeamNames() {
		r.CreateTeam(NewTeamKey(name), LabelFor(name), ColorFor(name), playType.PerTeam)
	}
	return r
}

// Observe sets the observer that is called after each mutation.
func (r *Roster) Observe(observer func(update RosterUpdate)) {
	r.observer = observer
}

func (r *Roster) notify(update RosterUpdate) {
	if r.observer != nil {
		r.observer(update)
	}
}

// CreateTeam creates a team with the given properties. Existing teams with the
// same key are replaced and their members become unassigned.
func (r *Roster) CreateTeam(key TeamKey, label string, color Color, capacity int) *Team {
	key = NewTeamKey(string(key))
	rank := len(r.teams) - 1
	if old, ok := r.teams[key]; ok {
		rank = old.Rank
		for member := range old.members {
			delete(r.playerTeams, member)
		}
	}
	team := newTeam(key, label, color, capacity, rank)
	r.teams[key] = team
	r.notify(RosterUpdate{Kind: RosterUpdateTeamsChanged})
	return team
}

// Team returns the team with the given key.
func (r *Roster) Team(key TeamKey) (*Team, bool) {
	team, ok := r.teams[key]
	return team, ok
}

// TeamOf returns the team of the given player.
func (r *Roster) TeamOf(player uuid.UUID) (*Team, bool) {
	key, ok := r.playerTeams[player]
	if !ok {
		return nil, false
	}
	return r.teams[key], true
}

// AddPlayer adds the player to the team with the given key. If the player is
// member of another team, it is removed from it first. If the team is full, an
// errors.KindTeamFull rejection is returned and nothing changes.
func (r *Roster) AddPlayer(key TeamKey, player uuid.UUID) error {
	team, ok := r.teams[key]
	if !ok {
		return errors.NewRejectionError(errors.KindUnknownTeam, fmt.Sprintf("unknown team %s", key),
			errors.Details{"team": key})
	}
	if team.HasMember(player) {
		return nil
	}
	if team.IsFull() {
		return errors.NewRejectionError(errors.KindTeamFull, fmt.Sprintf("team %s is full", key),
			errors.Details{"team": key, "capacity": team.Capacity})
	}
	r.RemovePlayer(player)
	team.members[player] = struct{}{}
	r.playerTeams[player] = key
	r.notify(RosterUpdate{Kind: RosterUpdateJoined, Team: key, Player: player})
	return nil
}

// RemovePlayer removes the player from its team. It returns the key of the team
// the player was removed from and false if the player had no team.
func (r *Roster) RemovePlayer(player uuid.UUID) (TeamKey, bool) {
	key, ok := r.playerTeams[player]
	if !ok {
		return "", false
	}
	team := r.teams[key]
	delete(team.members, player)
	delete(team.alive, player)
	delete(r.playerTeams, player)
	r.notify(RosterUpdate{Kind: RosterUpdateLeft, Team: key, Player: player})
	return key, true
}

// DistributeUnassigned shuffles the given players and assigns them round-robin
// to teams that are not full. Full teams are skipped. Players that could not be
// placed because all teams are full are returned.
func (r *Roster) DistributeUnassigned(players []uuid.UUID, rng *rand.Rand) []uuid.UUID {
	shuffled := make([]uuid.UUID, len(players))
	copy(shuffled, players)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	teams := r.AllTeams()
	leftovers := make([]uuid.UUID, 0)
	teamIndex := 0
	for _, player := range shuffled {
		placed := false
		for tries := 0; tries < len(teams); tries++ {
			team := teams[teamIndex]
			teamIndex = (teamIndex + 1) % len(teams)
			if team.IsFull() {
				continue
			}
			if err := r.AddPlayer(team.Key, player); err == nil {
				placed = true
				break
			}
		}
		if !placed {
			leftovers = append(leftovers, player)
		}
	}
	return leftovers
}

// AllTeams returns all competing teams ordered by rank. The spectator team is
// excluded.
func (r *Roster) AllTeams() []*Team {
	out := make([]*Team, 0, len(r.teams))
	for key, team := range r.teams {
		if key == SpectatorTeam {
			continue
		}
		out = append(out, team)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Rank < out[j].Rank
	})
	return out
}

// RemainingTeams returns all competing teams with at least one alive member.
func (r *Roster) RemainingTeams() []*Team {
	out := make([]*Team, 0)
	for _, team := range r.AllTeams() {
		if team.AliveCount() > 0 {
			out = append(out, team)
		}
	}
	return out
}

// MarkAlive marks the given member as alive.
func (r *Roster) MarkAlive(player uuid.UUID) bool {
	team, ok := r.TeamOf(player)
	if !ok {
		return false
	}
	team.alive[player] = struct{}{}
	r.notify(RosterUpdate{Kind: RosterUpdateRevived, Team: team.Key, Player: player})
	return true
}

// MarkDead removes the given player from the alive members of its team while
// keeping the membership.
func (r *Roster) MarkDead(player uuid.UUID) (*Team, bool) {
	team, ok := r.TeamOf(player)
	if !ok || !team.IsAlive(player) {
		return team, false
	}
	delete(team.alive, player)
	r.notify(RosterUpdate{Kind: RosterUpdateDied, Team: team.Key, Player: player})
	return team, true
}

// SetBedDestroyed sets the bed state of the team with the given key.
func (r *Roster) SetBedDestroyed(key TeamKey, destroyed bool) {
	team, ok := r.teams[key]
	if !ok || team.BedDestroyed == destroyed {
		return
	}
	team.BedDestroyed = destroyed
	r.notify(RosterUpdate{Kind: RosterUpdateBed, Team: key})
}

// Eliminate marks the team with the given key as eliminated.
func (r *Roster) Eliminate(key TeamKey) {
	team, ok := r.teams[key]
	if !ok || team.Eliminated {
		return
	}
	team.Eliminated = true
	r.notify(RosterUpdate{Kind: RosterUpdateEliminated, Team: key})
}

// ApplyMap sets spawn and bed locations of all teams from the given map.
// Teams without slot keep their locations unset.
func (r *Roster) ApplyMap(m maps.Map) {
	for key, team := range r.teams {
		slot, ok := m.Teams[string(key)]
		if !ok {
			continue
		}
		team.Spawn = slot.Spawn
		if slot.Bed != nil {
			team.BedTop = slot.Bed.Top
			team.BedBottom = slot.Bed.Bottom
		}
	}
	r.notify(RosterUpdate{Kind: RosterUpdateTeamsChanged})
}

// BedAt returns the team whose bed occupies the given block.
func (r *Roster) BedAt(location maps.Location) (*Team, bool) {
	for _, team := range r.AllTeams() {
		for _, bedLocation := range team.BedLocations() {
			if bedLocation.SameBlock(location) {
				return team, true
			}
		}
	}
	return nil, false
}

// Views returns TeamView for all teams including the spectator team.
func (r *Roster) Views() []TeamView {
	views := make([]TeamView, 0, len(r.teams))
	for _, team := range r.AllTeams() {
		views = append(views, team.View())
	}
	views = append(views, r.teams[SpectatorTeam].View())
	return views
}

// Teardown clears all members of all teams.
func (r *Roster) Teardown() {
	for _, team := range r.teams {
		team.members = make(map[uuid.UUID]struct{})
		team.alive = make(map[uuid.UUID]struct{})
	}
	r.playerTeams = make(map[uuid.UUID]TeamKey)
	r.notify(RosterUpdate{Kind: RosterUpdateTeamsChanged})
}
