package games

import (
	"fmt"
	"github.com/lefinal/bedwars-server/errors"
	"strconv"
	"strings"
)

// teamLayouts holds the team names by team count.
var teamLayouts = map[int][]string{
	2: {"red", "blue"},
	4: {"red", "blue", "yellow", "green"},
	8: {"red", "blue", "yellow", "green", "orange", "purple", "pink", "black"},
}

// PlayType is a mode in the form WxY with W teams and up to Y players per team.
type PlayType struct {
	// Teams is the number of competing teams.
	Teams int
	// PerTeam is the maximum number of players per team.
	PerTeam int
}

// ParsePlayType parses the given string in the form WxY. Only team counts with
// a known team layout are supported.
func ParsePlayType(s string) (PlayType, error) {
	parts := strings.SplitN(strings.ToLower(strings.TrimSpace(s)), "x", 2)
	if len(parts) != 2 {
		return PlayType{}, errors.NewRejectionError(errors.KindUnknownPlayType, "play type must be in format WxY",
			errors.Details{"was": s})
	}
	teams, errTeams := strconv.Atoi(parts[0])
	perTeam, errPerTeam := strconv.Atoi(parts[1])
	if errTeams != nil || errPerTeam != nil || teams <= 0 || perTeam <= 0 {
		return PlayType{}, errors.NewRejectionError(errors.KindUnknownPlayType, "invalid play type numbers",
			errors.Details{"was": s})
	}
	if _, ok := teamLayouts[teams]; !ok {
		return PlayType{}, errors.NewRejectionError(errors.KindUnknownPlayType,
			fmt.Sprintf("no team layout for %d teams", teams), errors.Details{"was": s})
	}
	return PlayType{Teams: teams, PerTeam: perTeam}, nil
}

func (pt PlayType) String() string {
	return fmt.Sprintf("%dx%d", pt.Teams, pt.PerTeam)
}

// CanStart checks whether a countdown may start with the given number of
// online players.
func (pt PlayType) CanStart(online int) bool {
	switch pt.PerTeam {
	case 1:
		return online >= 2
	case 2:
		if pt.Teams == 2 {
			return online == 4
		}
		return online >= 4
	case 4:
		return online >= 8
	}
	return false
}

// PlayersNeeded returns the number of players still needed for lobby
// messaging.
func (pt PlayType) PlayersNeeded(online int) int {
	needed := 0
	switch pt.PerTeam {
	case 1:
		return 1
	case 2:
		needed = 4 - online
	case 4:
		needed = 8 - online
	}
	if needed < 0 {
		return 0
	}
	return needed
}

// TeamNames returns the names of the competing teams in rank order.
func (pt PlayType) TeamNames() []string {
	layout := teamLayouts[pt.Teams]
	out := make([]string, len(layout))
	copy(out, layout)
	return out
}
