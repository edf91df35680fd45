package stats

import (
	"slices"
	"strings"
	"time"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

// MatchMeta is attached to every player-log and shot row of a match.
type MatchMeta struct {
	Date      time.Time
	Stage     string
	HomeTeam  string
	AwayTeam  string
	HomeGoals *int
	AwayGoals *int
}

func (m MatchMeta) apply(t *dataset.Table) {
	values := map[string]any{
		"Date":       m.Date,
		"Stage":      m.Stage,
		"Home_Team":  m.HomeTeam,
		"Away_Team":  m.AwayTeam,
		"Home_Goals": intOrNil(m.HomeGoals),
		"Away_Goals": intOrNil(m.AwayGoals),
	}
	for _, col := range []string{"Date", "Stage", "Home_Team", "Away_Team", "Home_Goals", "Away_Goals"} {
		if !t.HasColumn(col) {
			t.Columns = append(t.Columns, col)
		}
		for _, row := range t.Rows {
			row[col] = values[col]
		}
	}
}

// PlayerLog builds one side's player rows for a match: the category tables are
// placed side by side and the trailing totals row is dropped.
func PlayerLog(tables []NamedRaw, meta MatchMeta) dataset.Table {
	flat := make([]dataset.Table, 0, len(tables))
	for _, nt := range tables {
		flat = append(flat, Flatten(nt.Raw, nt.Name))
	}
	out := DropLastRow(HConcat(flat...))
	meta.apply(&out)
	return out
}

// NamedRaw is a raw table labelled with its category, e.g. "Pass Types".
type NamedRaw struct {
	Name string
	Raw  RawTable
}

// ShotLog flattens a match's shots table, dropping blank separator rows.
func ShotLog(raw RawTable, meta MatchMeta) dataset.Table {
	table := Flatten(raw, "").Filter(func(row dataset.Row) bool {
		for _, v := range row {
			if v != nil {
				return true
			}
		}
		return false
	})
	for _, row := range table.Rows {
		if v, ok := row["Minute"]; ok && v != nil {
			row["Minute"] = dataset.String(v)
		}
	}
	meta.apply(&table)
	return table
}

// SquadMatchLog assembles one team's match logs: the category pages side by
// side, joined to the schedule on date, with the totals row removed.
func SquadMatchLog(schedule dataset.Table, categories []dataset.Table, squad string) dataset.Table {
	logs := HConcat(categories...)
	var drop []string
	for _, col := range logs.Columns {
		if strings.Contains(col, "Notes") || strings.Contains(col, "Match_Report") {
			drop = append(drop, col)
		}
	}
	logs = logs.DropColumns(drop...)
	schedule = schedule.DropColumns("Match Report", "Notes", "Match_Report")

	joined := dataset.LeftJoin(logs, schedule, "Shooting_Date", "Date")
	ordered := append([]string{"Squad"}, schedule.Columns...)
	for _, col := range joined.Columns {
		if !slices.Contains(ordered, col) {
			ordered = append(ordered, col)
		}
	}
	joined.Columns = ordered

	for _, row := range joined.Rows {
		row["Squad"] = squad
		for k, v := range row {
			switch v {
			case "Champions Lg":
				row[k] = "Champions League"
			case "Europa Lg":
				row[k] = "Europa League"
			}
		}
	}
	return DropLastRow(joined)
}

// CombineSquadLogs stacks every team's logs, keeps rows with at least
// minFilled non-empty cells, zero-fills the rest and splits penalty scores.
func CombineSquadLogs(tables []dataset.Table, minFilled int) (dataset.Table, error) {
	all := dataset.Concat(tables...)
	columns := all.Columns
	all = all.Filter(func(row dataset.Row) bool {
		filled := 0
		for _, col := range columns {
			if row[col] != nil {
				filled++
			}
		}
		return filled >= minFilled
	})
	for _, row := range all.Rows {
		for _, col := range all.Columns {
			if row[col] == nil {
				row[col] = 0.0
			}
		}
	}

	out, err := all.DropDuplicateColumns()
	if err != nil {
		return dataset.Table{}, err
	}
	out = FixPenalties(out)
	return out.DedupeRows()
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return int64(*v)
}
