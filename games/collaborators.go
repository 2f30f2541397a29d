package games

import (
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/maps"
)

// MapCatalog provides read-only access to all playable maps.
type MapCatalog interface {
	// ListMapIDs returns the names of all maps.
	ListMapIDs() []string
	// Get returns the map with the given name.
	Get(name string) (maps.Map, bool)
}

// World mutates the world of the game host. Calls must not block.
type World interface {
	// PlaceResource materializes one unit of the given tier at the location.
	PlaceResource(tier maps.Tier, location maps.Location)
	// ClearBlock sets the block at the given location to air.
	ClearBlock(location maps.Location)
	// Teleport moves the player to the given location.
	Teleport(player uuid.UUID, location maps.Location)
	// BlockAt returns the last known material at the given location. If unknown,
	// false is returned.
	BlockAt(location maps.Location) (string, bool)
	// SetSpawnerLabel sets the text of the label above a spawner.
	SetSpawnerLabel(location maps.Location, text string)
}

// StatKind is a player statistic that can be recorded.
type StatKind string

const (
	StatKill          StatKind = "kill"
	StatDeath         StatKind = "death"
	StatWin           StatKind = "win"
	StatGamesPlayed   StatKind = "games-played"
	StatBedsDestroyed StatKind = "beds-destroyed"
)

// StatsRecorder records player statistics. All calls are fire-and-forget.
// Callbacks are called on the simulation thread.
type StatsRecorder interface {
	// RecordEvent adds the delta to the given statistic of the player.
	RecordEvent(player uuid.UUID, kind StatKind, delta int)
	// EnsureProfile creates a default profile for the player if none exists.
	EnsureProfile(player uuid.UUID)
	// PlacementRank looks up the leaderboard placement of the player.
	PlacementRank(player uuid.UUID, done func(rank int, err error))
	// Top looks up the best n players by wins.
	Top(n int, done func(entries []LeaderboardEntry, err error))
}

// LeaderboardEntry is a player with its statistics for leaderboards.
type LeaderboardEntry struct {
	Player        uuid.UUID `json:"player"`
	Kills         int       `json:"kills"`
	Deaths        int       `json:"deaths"`
	Wins          int       `json:"wins"`
	GamesPlayed   int       `json:"games_played"`
	BedsDestroyed int       `json:"beds_destroyed"`
}

// Presenter renders scoreboards and messages. It is a pure observer.
type Presenter interface {
	// RosterChanged is called after each roster mutation.
	RosterChanged(teams []TeamView)
	// PhaseChanged is called after each phase transition.
	PhaseChanged(snapshot Snapshot)
	// Countdown is called each second with the remaining time of the phase.
	Countdown(phase MatchPhase, remaining int, matchID string)
	// Announce is called for messages to the players.
	Announce(announcement Announcement)
	// Leaderboard shows the given entries to the player.
	Leaderboard(player uuid.UUID, entries []LeaderboardEntry)
}

// Terminator ends the process after the shutdown countdown.
type Terminator interface {
	Terminate()
}

// AnnouncementKind is the type of Announcement.
type AnnouncementKind string

const (
	AnnouncementCountdownStarted   AnnouncementKind = "countdown-started"
	AnnouncementCountdown          AnnouncementKind = "countdown"
	AnnouncementCountdownCancelled AnnouncementKind = "countdown-cancelled"
	AnnouncementPlayersNeeded      AnnouncementKind = "players-needed"
	AnnouncementVotingEnds         AnnouncementKind = "voting-ends"
	AnnouncementConfigLocked       AnnouncementKind = "config-locked"
	AnnouncementGameStarted        AnnouncementKind = "game-started"
	AnnouncementRespawn            AnnouncementKind = "respawn"
	AnnouncementPlayerEliminated   AnnouncementKind = "player-eliminated"
	AnnouncementTeamEliminated     AnnouncementKind = "team-eliminated"
	AnnouncementBedDestroyed       AnnouncementKind = "bed-destroyed"
	AnnouncementWinner             AnnouncementKind = "winner"
	AnnouncementNoWinner           AnnouncementKind = "no-winner"
	AnnouncementShutdown           AnnouncementKind = "shutdown"
	AnnouncementPlacement          AnnouncementKind = "placement"
	AnnouncementSpectating         AnnouncementKind = "spectating"
	AnnouncementNotPlaced          AnnouncementKind = "not-placed"
)

// Announcement is a message to be shown to players.
type Announcement struct {
	Kind AnnouncementKind `json:"kind"`
	// Player is the subject or the only recipient, depending on Kind.
	Player uuid.NullUUID `json:"player"`
	Team   TeamKey       `json:"team,omitempty"`
	// Value is a kind specific number like remaining seconds or a reward.
	Value int `json:"value"`
	// Text is a kind specific text like the map name.
	Text string `json:"text,omitempty"`
}
