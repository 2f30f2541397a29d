package errors

type Code string

const (
	ErrAborted           Code = "aborted"
	ErrBadRequest        Code = "bad-request"
	ErrCommunication     Code = "communication"
	ErrProtocolViolation Code = "protocol-violation"
	ErrFatal             Code = "fatal"
	ErrNotFound          Code = "not-found"
	ErrInternal          Code = "internal"
	ErrUnexpected        Code = "unexpected"
)

type Kind string

const (
	// KindConfigAlreadyLocked is used when the match config is locked a second
	// time.
	KindConfigAlreadyLocked Kind = "config-already-locked"
	// KindInvalidConfig is used for config values that cannot be used for booting.
	KindInvalidConfig Kind = "invalid-config"
	// KindMapAlreadyForced is used when a map override is requested although one
	// is already active.
	KindMapAlreadyForced Kind = "map-already-forced"
	// KindMatchPhaseViolation is used for operations that were performed although
	// not in the expected match phase.
	KindMatchPhaseViolation Kind = "match-phase-violation"
	// KindNotEligible is used when a countdown start is requested without enough
	// players online.
	KindNotEligible Kind = "not-eligible"
	// KindOwnBed is used when a player breaks the bed of the own team.
	KindOwnBed Kind = "own-bed"
	// KindPlayerNotInTeam is used for events regarding a player that has no team.
	KindPlayerNotInTeam Kind = "player-not-in-team"
	// KindReentrantTick is used when a tick is started while another one is
	// running.
	KindReentrantTick    Kind = "reentrant-tick"
	KindResourceNotFound Kind = "resource-not-found"
	// KindTeamFull is used when a player wants to join a team without free slots.
	KindTeamFull Kind = "team-full"
	// KindUnknownMap is used when a map is referenced that the catalog does not
	// know.
	KindUnknownMap Kind = "unknown-map"
	// KindUnknownPlayType is used for play types that cannot be parsed.
	KindUnknownPlayType Kind = "unknown-play-type"
	// KindUnknownTeam is used when an unknown team is being requested.
	KindUnknownTeam Kind = "unknown-team"
)
