package games

import (
	"fmt"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/errors"
	"sync"
)

// VoteTally accumulates map and modifier votes. It is safe for concurrent use as
// votes arrive from connection handlers outside the simulation thread.
type VoteTally struct {
	catalog MapCatalog
	// m locks all following fields.
	m sync.Mutex
	// mapVotes holds the current map vote by player.
	mapVotes map[uuid.UUID]string
	// mapCounts holds the number of votes by map.
	mapCounts map[string]int
	// mapOrder holds the order in which maps first received a vote. It is used
	// for breaking ties.
	mapOrder map[string]int
	// nextOrder is the next value to use for mapOrder.
	nextOrder int
	// modifierVotes holds the modifier vote by player.
	modifierVotes map[uuid.UUID]bool
	// forcedMap is an administrative override that wins over the tally.
	forcedMap string
	// closed is set when votes have been locked in.
	closed bool
}

// NewVoteTally creates an empty VoteTally that validates map votes against the
// given MapCatalog.
func NewVoteTally(catalog MapCatalog) *VoteTally {
	t := &VoteTally{catalog: catalog}
	t.reset()
	return t
}

func (t *VoteTally) reset() {
	t.mapVotes = make(map[uuid.UUID]string)
	t.mapCounts = make(map[string]int)
	t.mapOrder = make(map[string]int)
	t.nextOrder = 0
	t.modifierVotes = make(map[uuid.UUID]bool)
	t.forcedMap = ""
}

// CastMapVote sets the map vote of the given player. An existing vote is
// retracted first. Unknown maps are rejected with errors.KindUnknownMap.
func (t *VoteTally) CastMapVote(player uuid.UUID, mapName string) error {
	if _, ok := t.catalog.Get(mapName); !ok {
		return errors.NewRejectionError(errors.KindUnknownMap, fmt.Sprintf("unknown map %s", mapName),
			errors.Details{"map": mapName})
	}
	t.m.Lock()
	defer t.m.Unlock()
	if t.closed {
		return errors.NewMatchPhaseViolationError("map vote", "voting closed")
	}
	if old, ok := t.mapVotes[player]; ok {
		if old == mapName {
			return nil
		}
		t.retract(old)
	}
	t.mapVotes[player] = mapName
	if _, ok := t.mapOrder[mapName]; !ok {
		t.mapOrder[mapName] = t.nextOrder
		t.nextOrder++
	}
	t.mapCounts[mapName]++
	return nil
}

// retract removes one vote for the given map. Maps without votes lose their
// tie-break order.
func (t *VoteTally) retract(mapName string) {
	t.mapCounts[mapName]--
	if t.mapCounts[mapName] <= 0 {
		delete(t.mapCounts, mapName)
		delete(t.mapOrder, mapName)
	}
}

// CastModifierVote sets the modifier vote of the given player.
func (t *VoteTally) CastModifierVote(player uuid.UUID, enabled bool) error {
	t.m.Lock()
	defer t.m.Unlock()
	if t.closed {
		return errors.NewMatchPhaseViolationError("modifier vote", "voting closed")
	}
	t.modifierVotes[player] = enabled
	return nil
}

// ClearPlayer removes all votes of the given player.
func (t *VoteTally) ClearPlayer(player uuid.UUID) {
	t.m.Lock()
	defer t.m.Unlock()
	if old, ok := t.mapVotes[player]; ok {
		t.retract(old)
		delete(t.mapVotes, player)
	}
	delete(t.modifierVotes, player)
}

// WinningMap returns the forced map if set. Otherwise, the map with the most
// votes is returned. Ties go to the map that first received a vote. If no
// votes were cast, false is returned.
func (t *VoteTally) WinningMap() (string, bool) {
	t.m.Lock()
	defer t.m.Unlock()
	if t.forcedMap != "" {
		return t.forcedMap, true
	}
	winner := ""
	winnerCount := 0
	for mapName, count := range t.mapCounts {
		if count > winnerCount || (count == winnerCount && t.mapOrder[mapName] < t.mapOrder[winner]) {
			winner = mapName
			winnerCount = count
		}
	}
	return winner, winnerCount > 0
}

// WinningModifier returns true if at least as many players voted for the
// modifier as against it.
func (t *VoteTally) WinningModifier() bool {
	t.m.Lock()
	defer t.m.Unlock()
	yes, no := 0, 0
	for _, enabled := range t.modifierVotes {
		if enabled {
			yes++
		} else {
			no++
		}
	}
	return yes >= no
}

// VoteCount returns the number of votes for the given map.
func (t *VoteTally) VoteCount(mapName string) int {
	t.m.Lock()
	defer t.m.Unlock()
	return t.mapCounts[mapName]
}

// ModifierVoteCount returns the number of modifier votes with the given value.
func (t *VoteTally) ModifierVoteCount(enabled bool) int {
	t.m.Lock()
	defer t.m.Unlock()
	count := 0
	for _, vote := range t.modifierVotes {
		if vote == enabled {
			count++
		}
	}
	return count
}

// MapVoteOf returns the current map vote of the given player.
func (t *VoteTally) MapVoteOf(player uuid.UUID) (string, bool) {
	t.m.Lock()
	defer t.m.Unlock()
	mapName, ok := t.mapVotes[player]
	return mapName, ok
}

// ForceMap sets a sticky override that wins over the tally. It fails for
// unknown maps and if a map has already been forced.
func (t *VoteTally) ForceMap(mapName string) error {
	if _, ok := t.catalog.Get(mapName); !ok {
		return errors.NewRejectionError(errors.KindUnknownMap, fmt.Sprintf("unknown map %s", mapName),
			errors.Details{"map": mapName})
	}
	t.m.Lock()
	defer t.m.Unlock()
	if t.closed {
		return errors.NewMatchPhaseViolationError("force map", "voting closed")
	}
	if t.forcedMap != "" {
		return errors.NewRejectionError(errors.KindMapAlreadyForced, "map already forced",
			errors.Details{"forced": t.forcedMap, "requested": mapName})
	}
	t.forcedMap = mapName
	return nil
}

// ForcedMap returns the forced map if set.
func (t *VoteTally) ForcedMap() (string, bool) {
	t.m.Lock()
	defer t.m.Unlock()
	return t.forcedMap, t.forcedMap != ""
}

// Close discards all votes and rejects further ones. It is called when votes
// are locked in.
func (t *VoteTally) Close() {
	t.m.Lock()
	defer t.m.Unlock()
	t.reset()
	t.closed = true
}

// IsClosed checks whether voting is closed.
func (t *VoteTally) IsClosed() bool {
	t.m.Lock()
	defer t.m.Unlock()
	return t.closed
}
