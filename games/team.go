package games

import (
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/maps"
	"sort"
	"strings"
)

// TeamKey is the stable identifier of a team.
type TeamKey string

// SpectatorTeam is the reserved non-competing team.
const SpectatorTeam TeamKey = "999spectator"

const (
	// maxTeamKeyLength is the maximum length of a TeamKey.
	maxTeamKeyLength = 16
	// spectatorCapacity is the capacity of the SpectatorTeam.
	spectatorCapacity = 50
)

// Color is a color tag used by the game host for rendering team names.
type Color string

// teamColors maps team names to color tags.
var teamColors = map[string]Color{
	"red":    "RED",
	"blue":   "BLUE",
	"green":  "GREEN",
	"yellow": "YELLOW",
	"orange": "GOLD",
	"purple": "DARK_PURPLE",
	"pink":   "LIGHT_PURPLE",
	"white":  "WHITE",
	"black":  "BLACK",
	"gray":   "GRAY",
	"grey":   "GRAY",
	"aqua":   "AQUA",
	"lime":   "GREEN",
}

// teamLabels maps team names to display labels.
var teamLabels = map[string]string{
	"red":    "Red",
	"blue":   "Blue",
	"green":  "Green",
	"yellow": "Yellow",
	"orange": "Orange",
	"purple": "Purple",
	"pink":   "Pink",
	"white":  "White",
	"black":  "Black",
	"gray":   "Gray",
	"grey":   "Grey",
	"aqua":   "Aqua",
	"lime":   "Lime",
}

// ColorFor returns the Color for the team with the given name. Unknown names
// are white.
func ColorFor(name string) Color {
	if c, ok := teamColors[strings.ToLower(name)]; ok {
		return c
	}
	return "WHITE"
}

// LabelFor returns the display label for the team with the given name.
func LabelFor(name string) string {
	if l, ok := teamLabels[strings.ToLower(name)]; ok {
		return l
	}
	return name
}

// NewTeamKey creates a TeamKey from the given name, truncated to the maximum
// number of characters.
func NewTeamKey(name string) TeamKey {
	runes := 0
	for i := range name {
		if runes == maxTeamKeyLength {
			return TeamKey(name[:i])
		}
		runes++
	}
	return TeamKey(name)
}

// Team is a team of a match. It is owned by the Roster and must only be mutated
// through it.
type Team struct {
	Key      TeamKey
	Label    string
	Color    Color
	Capacity int
	// Rank is the scoreboard slot.
	Rank int
	// BedDestroyed is true when the team has no bed anymore. It is initially true
	// and reset for teams with members when the game starts.
	BedDestroyed bool
	// Eliminated is set when all members of a team without bed are dead.
	Eliminated bool
	BedTop     *maps.Location
	BedBottom  *maps.Location
	Spawn      *maps.Location
	members    map[uuid.UUID]struct{}
	alive      map[uuid.UUID]struct{}
}

func newTeam(key TeamKey, label string, color Color, capacity int, rank int) *Team {
	return &Team{
		Key:          key,
		Label:        label,
		Color:        color,
		Capacity:     capacity,
		Rank:         rank,
		BedDestroyed: true,
		members:      make(map[uuid.UUID]struct{}),
		alive:        make(map[uuid.UUID]struct{}),
	}
}

// Members returns all members ordered by id.
func (t *Team) Members() []uuid.UUID {
	return sortedIDs(t.members)
}

// Alive returns all members that are still alive ordered by id.
func (t *Team) Alive() []uuid.UUID {
	return sortedIDs(t.alive)
}

// Size is the number of members.
func (t *Team) Size() int {
	return len(t.members)
}

// AliveCount is the number of alive members.
func (t *Team) AliveCount() int {
	return len(t.alive)
}

// IsFull checks whether the team has no free slots.
func (t *Team) IsFull() bool {
	return len(t.members) >= t.Capacity
}

// HasMember checks whether the given player is a member.
func (t *Team) HasMember(player uuid.UUID) bool {
	_, ok := t.members[player]
	return ok
}

// IsAlive checks whether the given player is an alive member.
func (t *Team) IsAlive(player uuid.UUID) bool {
	_, ok := t.alive[player]
	return ok
}

// BedLocations returns the set bed locations.
func (t *Team) BedLocations() []maps.Location {
	locations := make([]maps.Location, 0, 2)
	if t.BedTop != nil {
		locations = append(locations, *t.BedTop)
	}
	if t.BedBottom != nil {
		locations = append(locations, *t.BedBottom)
	}
	return locations
}

// TeamView is a read-only copy of a Team used for presentation.
type TeamView struct {
	Key          TeamKey     `json:"key"`
	Label        string      `json:"label"`
	Color        Color       `json:"color"`
	Capacity     int         `json:"capacity"`
	Rank         int         `json:"rank"`
	BedDestroyed bool        `json:"bed_destroyed"`
	Eliminated   bool        `json:"eliminated"`
	Members      []uuid.UUID `json:"members"`
	Alive        []uuid.UUID `json:"alive"`
}

// View creates a TeamView of the team.
func (t *Team) View() TeamView {
	return TeamView{
		Key:          t.Key,
		Label:        t.Label,
		Color:        t.Color,
		Capacity:     t.Capacity,
		Rank:         t.Rank,
		BedDestroyed: t.BedDestroyed,
		Eliminated:   t.Eliminated,
		Members:      t.Members(),
		Alive:        t.Alive(),
	}
}

func sortedIDs(set map[uuid.UUID]struct{}) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}
