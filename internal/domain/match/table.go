package match

import (
	"strings"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

var eventBaseColumns = []string{
	"MatchId", "EventId", "Period", "Minute", "Second", "TeamId", "PlayerId",
	"Type", "OutcomeType", "X", "Y", "Zone", "IsTouch", "Qualifiers", "SatisfiedEventsTypes",
}

func (e Event) Row() dataset.Row {
	row := dataset.Row{
		"MatchId":              e.MatchID,
		"Period":               int64(e.Period),
		"Minute":               int64(e.Minute),
		"TeamId":               e.TeamID,
		"Type":                 e.Type,
		"OutcomeType":          e.Successful,
		"X":                    e.X,
		"Y":                    e.Y,
		"IsTouch":              e.IsTouch,
		"Qualifiers":           nonNilInts(e.Qualifiers),
		"SatisfiedEventsTypes": nonNilInts(e.SatisfiedTypes),
	}
	if e.EventID != nil {
		row["EventId"] = *e.EventID
	}
	if e.Second != nil {
		row["Second"] = int64(*e.Second)
	}
	if e.PlayerID != nil {
		row["PlayerId"] = *e.PlayerID
	}
	if e.Zone != "" {
		row["Zone"] = e.Zone
	}
	for k, v := range e.Extra {
		row[k] = v
	}
	return row
}

// EventTable assembles one league-season table. Boolean Is* columns absent
// from a row read as false and the Foul column is dropped.
func EventTable(events []Event) dataset.Table {
	table := dataset.New(eventBaseColumns...)
	for _, ev := range events {
		table.Append(ev.Row())
	}

	table = table.DropColumns("Foul")
	for _, col := range table.Columns {
		if !strings.HasPrefix(col, "Is") {
			continue
		}
		for _, row := range table.Rows {
			row[col] = boolCell(row[col])
		}
	}
	return table
}

func boolCell(v any) bool {
	switch value := v.(type) {
	case bool:
		return value
	case string:
		return strings.EqualFold(value, "true")
	case float64:
		return value != 0
	}
	return false
}

func nonNilInts(v []int) []int {
	if v == nil {
		return []int{}
	}
	return v
}

// TableName is the warehouse table for a league season, e.g. "La_Liga_2024".
func TableName(league string, year int) string {
	return SanitizeName(league) + "_" + itoa(year)
}

// SanitizeName replaces characters that are not valid in table or file names.
func SanitizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
