package games

import (
	"github.com/lefinal/bedwars-server/errors"
	"math/rand"
)

// matchIDAlphabet holds the characters used in match ids.
const matchIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// matchIDLength is the length of generated match ids.
const matchIDLength = 5

// MatchConfig holds the parameters of a match that are locked in at the
// ConfigLockCheckpoint.
type MatchConfig struct {
	PlayType    string `json:"play_type"`
	MapName     string `json:"map_name"`
	GoldEnabled bool   `json:"gold_enabled"`
	// MatchID is used for display and diagnostics only.
	MatchID string `json:"match_id"`
}

// GenerateMatchID creates a random match id. Collisions are tolerated.
func GenerateMatchID(rng *rand.Rand) string {
	b := make([]byte, matchIDLength)
	for i := range b {
		b[i] = matchIDAlphabet[rng.Intn(len(matchIDAlphabet))]
	}
	return string(b)
}

// configLock guards the MatchConfig of a match so that it is set exactly once.
type configLock struct {
	config *MatchConfig
}

// Lock sets the config. A second call is a bug and panics with an
// errors.ErrFatal error.
func (l *configLock) Lock(config MatchConfig) {
	if l.config != nil {
		panic(errors.Error{
			Code:    errors.ErrFatal,
			Kind:    errors.KindConfigAlreadyLocked,
			Message: "match config already locked",
			Details: errors.Details{
				"locked":    l.config.MatchID,
				"attempted": config.MatchID,
			},
		})
	}
	c := config
	l.config = &c
}

// IsLocked checks whether the config has been locked.
func (l *configLock) IsLocked() bool {
	return l.config != nil
}

// Config returns a copy of the locked config.
func (l *configLock) Config() (MatchConfig, bool) {
	if l.config == nil {
		return MatchConfig{}, false
	}
	return *l.config, true
}
