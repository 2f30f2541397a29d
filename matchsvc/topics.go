package matchsvc

import "github.com/lefinal/bedwars-server/portal"

// Topics published by the game host. All of them are relative to the base
// topic of the server.
const (
	topicPlayerJoin            portal.Topic = "in/player/join"
	topicPlayerQuit            portal.Topic = "in/player/quit"
	topicPlayerDeath           portal.Topic = "in/player/death"
	topicBedBreak              portal.Topic = "in/bed/break"
	topicBlockState            portal.Topic = "in/block/state"
	topicBlockPlaced           portal.Topic = "in/block/placed"
	topicTeamSelect            portal.Topic = "in/team/select"
	topicVoteMap               portal.Topic = "in/vote/map"
	topicVoteModifier          portal.Topic = "in/vote/modifier"
	topicAdminStart            portal.Topic = "in/admin/start"
	topicAdminForceMap         portal.Topic = "in/admin/force-map"
	topicAdminShortenCountdown portal.Topic = "in/admin/shorten-countdown"
	topicAdminResetStats       portal.Topic = "in/admin/reset-stats"
)

// Topics the server publishes to.
const (
	topicPlaceResource  portal.Topic = "out/world/resource"
	topicClearBlock     portal.Topic = "out/world/clear-block"
	topicTeleport       portal.Topic = "out/world/teleport"
	topicSpawnerLabel   portal.Topic = "out/world/spawner-label"
	topicRoster         portal.Topic = "out/roster"
	topicPhase          portal.Topic = "out/phase"
	topicCountdown      portal.Topic = "out/countdown"
	topicAnnounce       portal.Topic = "out/announce"
	topicLeaderboard    portal.Topic = "out/leaderboard"
	topicRejection      portal.Topic = "out/rejection"
	topicBedBreakDenied portal.Topic = "out/bed/break-denied"
	topicStatsReset     portal.Topic = "out/stats/reset"
)
