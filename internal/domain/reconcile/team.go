package reconcile

import (
	"fmt"
	"slices"
)

// FindTeam attributes a player-log row to one side of a match using the squads
// the player appears under in the season aggregates. When both sides match the
// home side is returned with ambiguous set.
func FindTeam(player, home, away string, teamsByPlayer map[string][]string) (team string, ambiguous bool, err error) {
	squads := teamsByPlayer[player]
	inHome := slices.Contains(squads, home)
	inAway := slices.Contains(squads, away)
	switch {
	case inHome && inAway:
		return home, true, nil
	case inHome:
		return home, false, nil
	case inAway:
		return away, false, nil
	default:
		return "", false, fmt.Errorf("%w: player %q in neither %q nor %q", ErrNoConfidentMatch, player, home, away)
	}
}
