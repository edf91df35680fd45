package stats

import (
	"strings"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

// FlattenName joins a two-level header into one name.
func FlattenName(h Header) string {
	outer := strings.TrimSpace(h.Outer)
	inner := strings.TrimSpace(h.Inner)
	switch {
	case outer == "" || strings.Contains(outer, "Unnamed"):
		return inner
	case outer == inner:
		return outer
	default:
		return outer + " " + inner
	}
}

// Flatten converts raw into a table named "<Category> <flat_name>". An empty
// category yields bare underscore-joined names. Duplicate names keep the first
// column.
func Flatten(raw RawTable, category string) dataset.Table {
	names := make([]string, len(raw.Headers))
	for i, h := range raw.Headers {
		name := strings.ReplaceAll(strings.TrimSpace(FlattenName(h)), " ", "_")
		if category != "" {
			name = PythonTitle(category) + " " + name
		}
		names[i] = name
	}
	return buildTable(names, raw.Rows)
}

// MatchLogColumnName names a squad match-log column. Multi-word groups are
// dropped in favour of the inner name.
func MatchLogColumnName(prefix string, h Header) string {
	outer := strings.TrimSpace(h.Outer)
	inner := strings.TrimSpace(h.Inner)
	var name string
	switch {
	case len(strings.Fields(outer)) > 1 || outer == "":
		name = prefix + " " + inner
	case outer == inner:
		name = prefix + " " + outer
	default:
		name = prefix + " " + outer + " " + inner
	}
	return PythonTitle(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// FlattenMatchLog flattens one squad match-log category page.
func FlattenMatchLog(raw RawTable, prefix string) dataset.Table {
	names := make([]string, len(raw.Headers))
	for i, h := range raw.Headers {
		names[i] = MatchLogColumnName(prefix, h)
	}
	return buildTable(names, raw.Rows)
}

func buildTable(names []string, rows []RawRow) dataset.Table {
	var table dataset.Table
	keep := make([]bool, len(names))
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		keep[i] = true
		table.Columns = append(table.Columns, name)
	}

	table.Rows = make([]dataset.Row, 0, len(rows))
	for _, raw := range rows {
		row := make(dataset.Row, len(table.Columns))
		for i, name := range names {
			if !keep[i] {
				continue
			}
			row[name] = nil
			if i >= len(raw.Cells) {
				continue
			}
			if isIdentifierColumn(name) {
				if v := strings.TrimSpace(raw.Cells[i]); v != "" {
					row[name] = v
				}
				continue
			}
			row[name] = ParseCell(raw.Cells[i])
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

// Identifier columns hold FBref hex ids, some of which parse as numbers.
func isIdentifierColumn(name string) bool {
	return strings.HasSuffix(name, "_ID") || strings.HasSuffix(name, "_Link")
}
