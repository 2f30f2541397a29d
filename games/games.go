package games

// MatchPhase is a fixed phase type for being used in matches.
type MatchPhase string

const (
	// MatchPhaseLobby is used while players join, select teams and vote.
	MatchPhaseLobby MatchPhase = "lobby"
	// MatchPhaseCountdown is used while the start countdown is running. Votes are
	// locked in at ConfigLockCheckpoint.
	MatchPhaseCountdown MatchPhase = "countdown"
	// MatchPhaseInGame is used while the match is running and resources are
	// being spawned.
	MatchPhaseInGame MatchPhase = "in-game"
	// MatchPhaseResolving is used when the match has ended and the server shuts
	// down after ShutdownCountdown.
	MatchPhaseResolving MatchPhase = "resolving"
)

// Timing constants in seconds.
const (
	// LobbyCountdown is the initial value of the start countdown.
	LobbyCountdown = 30
	// ConfigLockCheckpoint is the remaining countdown at which votes are locked
	// into the MatchConfig.
	ConfigLockCheckpoint = 10
	// MatchDuration is the time limit of a running match.
	MatchDuration = 1800
	// ShutdownCountdown is the time between match end and termination.
	ShutdownCountdown = 10
)

// GameTicksPerSecond is the number of game ticks the Scheduler advances per
// second.
const GameTicksPerSecond = 20
