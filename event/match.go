package event

import (
	"github.com/gobuffalo/nulls"
	"github.com/google/uuid"
	"github.com/lefinal/bedwars-server/games"
	"github.com/lefinal/bedwars-server/maps"
)

// PlayerJoinedEvent is published by the game host when a player connected.
type PlayerJoinedEvent struct {
	// Player is the id of the player.
	Player uuid.UUID `json:"player"`
	// Name is the optional display name of the player. It is only used for
	// logging.
	Name nulls.String `json:"name"`
}

// PlayerQuitEvent is published by the game host when a player disconnected.
type PlayerQuitEvent struct {
	Player uuid.UUID `json:"player"`
}

// PlayerDeathEvent is published by the game host when a player died.
type PlayerDeathEvent struct {
	// Player is the id of the player that died.
	Player uuid.UUID `json:"player"`
	// Killer is the id of the player that is held responsible for the death. If
	// not set, the death is not attributed to anyone.
	Killer uuid.NullUUID `json:"killer"`
}

// BedBreakEvent is published by the game host when a player broke a block that
// is part of a bed.
type BedBreakEvent struct {
	// Player is the breaker.
	Player uuid.UUID `json:"player"`
	// Location is the location of the broken block.
	Location maps.Location `json:"location"`
}

// BedBreakDeniedEvent is the response to a BedBreakEvent that was rejected,
// for example, because the player tried to break the bed of the own team. The
// game host is expected to restore the block.
type BedBreakDeniedEvent struct {
	Player   uuid.UUID     `json:"player"`
	Location maps.Location `json:"location"`
	// Reason is the error that caused the denial.
	Reason ErrorEventPayload `json:"reason"`
}

// TeamSelectEvent is published when a player wants to join a team.
type TeamSelectEvent struct {
	Player uuid.UUID `json:"player"`
	// Team is the key of the team to join.
	Team games.TeamKey `json:"team"`
}

// MapVoteEvent is published when a player votes for a map.
type MapVoteEvent struct {
	Player uuid.UUID `json:"player"`
	// Map is the name of the map.
	Map string `json:"map"`
}

// ModifierVoteEvent is published when a player votes for or against the gold
// modifier.
type ModifierVoteEvent struct {
	Player      uuid.UUID `json:"player"`
	GoldEnabled bool      `json:"gold_enabled"`
}

// BlockStateEvent is published by the game host for reporting the current
// material of a block. It is used for keeping track of bed blocks.
type BlockStateEvent struct {
	Location maps.Location `json:"location"`
	// Material is the material name like RED_BED or AIR.
	Material string `json:"material"`
}

// BlockPlacedEvent is published by the game host when a player places a
// block that only lasts for a limited time, like wool or slime.
type BlockPlacedEvent struct {
	Player   uuid.UUID     `json:"player"`
	Location maps.Location `json:"location"`
	// Material is the optional material name of the placed block.
	Material string `json:"material,omitempty"`
	// LifetimeSeconds is the time after which the block is removed. Zero uses
	// the default lifetime.
	LifetimeSeconds int `json:"lifetime_seconds,omitempty"`
}

// AdminStartEvent is used for requesting the start countdown.
type AdminStartEvent struct {
	// Issuer is the optional player that issued the command.
	Issuer uuid.NullUUID `json:"issuer"`
	// Force starts the countdown regardless of the number of players.
	Force bool `json:"force"`
}

// AdminForceMapEvent is used for overriding the map vote.
type AdminForceMapEvent struct {
	Issuer uuid.NullUUID `json:"issuer"`
	Map    string        `json:"map"`
}

// AdminShortenCountdownEvent is used for shortening the running start
// countdown.
type AdminShortenCountdownEvent struct {
	Issuer uuid.NullUUID `json:"issuer"`
	// Seconds is the new remaining countdown. Only applied if shorter than the
	// current one.
	Seconds int `json:"seconds"`
}

// AdminResetStatsEvent is used for resetting the statistics of a player.
type AdminResetStatsEvent struct {
	Issuer uuid.NullUUID `json:"issuer"`
	Player uuid.UUID     `json:"player"`
}

// StatsResetEvent is the response to AdminResetStatsEvent with the statistics
// before the reset.
type StatsResetEvent struct {
	Issuer   uuid.NullUUID          `json:"issuer"`
	Previous games.LeaderboardEntry `json:"previous"`
}

// PlaceResourceEvent instructs the game host to materialize a resource.
type PlaceResourceEvent struct {
	Tier     maps.Tier     `json:"tier"`
	Location maps.Location `json:"location"`
}

// ClearBlockEvent instructs the game host to set a block to air.
type ClearBlockEvent struct {
	Location maps.Location `json:"location"`
}

// TeleportEvent instructs the game host to teleport a player.
type TeleportEvent struct {
	Player   uuid.UUID     `json:"player"`
	Location maps.Location `json:"location"`
}

// SpawnerLabelEvent instructs the game host to set the label text above a
// spawner.
type SpawnerLabelEvent struct {
	Location maps.Location `json:"location"`
	Text     string        `json:"text"`
}

// RosterEvent is published after each change of teams.
type RosterEvent struct {
	Teams []games.TeamView `json:"teams"`
}

// PhaseEvent is published after each phase transition.
type PhaseEvent struct {
	Snapshot games.Snapshot `json:"snapshot"`
}

// CountdownEvent is published each second with the remaining time of the
// current phase.
type CountdownEvent struct {
	Phase     games.MatchPhase `json:"phase"`
	Remaining int              `json:"remaining"`
	// MatchID is set when the match config is locked.
	MatchID nulls.String `json:"match_id"`
}

// AnnounceEvent is a message to show to players.
type AnnounceEvent struct {
	games.Announcement
}

// LeaderboardEvent shows the best players to a player.
type LeaderboardEvent struct {
	Player  uuid.UUID                `json:"player"`
	Entries []games.LeaderboardEntry `json:"entries"`
}

// RejectionEvent informs about a rejected request of a player or admin.
type RejectionEvent struct {
	// Player is the optional player that issued the request.
	Player uuid.NullUUID `json:"player"`
	// Request is the topic of the request.
	Request string `json:"request"`
	// Reason is the error that caused the rejection.
	Reason ErrorEventPayload `json:"reason"`
}
