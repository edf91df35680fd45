package stats

import "github.com/riskibarqy/football-scraper/internal/domain/dataset"

// MatchPlayerCategories are the per-side player tables of a match report.
var MatchPlayerCategories = []string{"Summary", "Passing", "Pass Types", "Defense", "Possession", "Misc"}

// MatchReport is the parsed content of one FBref match report page.
type MatchReport struct {
	URL    string
	Meta   MatchMeta
	HomeID string
	AwayID string
	// Players holds each side's category tables, keyed by team id.
	Players map[string][]NamedRaw
	Shots   RawTable
}

type PlayerSideLog struct {
	TeamID string
	Table  dataset.Table
}

// PlayerLogs returns the flattened player rows of both sides.
func (r MatchReport) PlayerLogs() []PlayerSideLog {
	out := make([]PlayerSideLog, 0, 2)
	for _, teamID := range []string{r.HomeID, r.AwayID} {
		tables, ok := r.Players[teamID]
		if !ok || len(tables) == 0 {
			continue
		}
		out = append(out, PlayerSideLog{TeamID: teamID, Table: PlayerLog(tables, r.Meta)})
	}
	return out
}

// CategoryPage holds the three tables of one season stats page.
type CategoryPage struct {
	Category Category
	Squad    RawTable
	Opponent RawTable
	Players  RawTable
}
