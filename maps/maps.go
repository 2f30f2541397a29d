package maps

import (
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Tier is a resource tier that is spawned at map-defined locations.
type Tier string

const (
	// TierBronze is the fast resource.
	TierBronze Tier = "bronze"
	// TierIron is the medium resource.
	TierIron Tier = "iron"
	// TierGold is the slow resource that is only spawned with the gold modifier.
	TierGold Tier = "gold"
)

// Location is a position in a world of the game host.
type Location struct {
	World string  `json:"world"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Yaw   float32 `json:"yaw"`
	Pitch float32 `json:"pitch"`
}

// Add returns a copy of the Location shifted by the given deltas.
func (l Location) Add(x, y, z float64) Location {
	l.X += x
	l.Y += y
	l.Z += z
	return l
}

// SameBlock checks whether both locations address the same block.
func (l Location) SameBlock(other Location) bool {
	return l.World == other.World &&
		int(math.Floor(l.X)) == int(math.Floor(other.X)) &&
		int(math.Floor(l.Y)) == int(math.Floor(other.Y)) &&
		int(math.Floor(l.Z)) == int(math.Floor(other.Z))
}

func (l Location) String() string {
	return fmt.Sprintf("%s(%.1f, %.1f, %.1f)", l.World, l.X, l.Y, l.Z)
}

// Bed holds both blocks of a team bed.
type Bed struct {
	Top    *Location `json:"top"`
	Bottom *Location `json:"bottom"`
}

// TeamSlot is the map-defined data for a team.
type TeamSlot struct {
	// Spawn is where team members are teleported to at game start and respawn.
	Spawn *Location `json:"spawn"`
	// Bed is the optional bed of the team.
	Bed *Bed `json:"bed"`
}

// Map is an arena that can be played on.
type Map struct {
	// Name is the unique name of the map which also serves as its id.
	Name string
	// PlayType is the mode the map was built for, for example "4x2".
	PlayType string
	// Spectator is where spectators are teleported to.
	Spectator *Location
	// Teams holds the slots by team key.
	Teams map[string]TeamSlot
	// Shops are the locations of shop keepers.
	Shops []Location
	// Spawners holds resource spawn locations by tier.
	Spawners map[Tier][]Location
}

// SpawnersFor returns a copy of the spawn locations for the given Tier.
func (m Map) SpawnersFor(tier Tier) []Location {
	locations := m.Spawners[tier]
	out := make([]Location, len(locations))
	copy(out, locations)
	return out
}

// mapFile is the on-disk JSON representation of a Map. Shops and spawner
// locations are stored as objects with numbered keys.
type mapFile struct {
	Name      string                         `json:"mapname"`
	PlayType  string                         `json:"playType"`
	Spectator *Location                      `json:"spectator"`
	Teams     map[string]TeamSlot            `json:"teams"`
	Shops     map[string]Location            `json:"shops"`
	Spawners  map[string]map[string]Location `json:"spawners"`
}

// toMap converts the mapFile to a Map. The fallback name is used if the file
// does not name the map.
func (f mapFile) toMap(fallbackName string) Map {
	m := Map{
		Name:      f.Name,
		PlayType:  f.PlayType,
		Spectator: f.Spectator,
		Teams:     f.Teams,
		Shops:     numberedLocations(f.Shops),
		Spawners:  make(map[Tier][]Location, len(f.Spawners)),
	}
	if m.Name == "" {
		m.Name = fallbackName
	}
	if m.PlayType == "" {
		m.PlayType = DefaultPlayType
	}
	if m.Teams == nil {
		m.Teams = make(map[string]TeamSlot)
	}
	for tier, locations := range f.Spawners {
		m.Spawners[Tier(tier)] = numberedLocations(locations)
	}
	return m
}

// numberedLocations returns the locations ordered by their numbered keys.
// Non-numeric keys are placed after numeric ones in lexicographic order.
func numberedLocations(byKey map[string]Location) []Location {
	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	out := make([]Location, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}
