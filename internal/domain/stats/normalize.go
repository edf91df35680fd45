package stats

import (
	"errors"
	"fmt"
	"strings"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

var ErrInvalidPossession = errors.New("invalid possession value")

// PossessionAdjust scales a defensive or passing count to a 50% opponent
// possession baseline.
func PossessionAdjust(value, possession float64) (float64, error) {
	opp := 100 - possession
	if opp < 0 {
		return 0, fmt.Errorf("%w: %v", ErrInvalidPossession, possession)
	}
	if opp == 0 {
		return 0, nil
	}
	return value / opp * 50, nil
}

// AdjustableMetric reports whether a player-log column is possession adjusted:
// defensive columns and columns starting with "Passing", except percentages.
func AdjustableMetric(col string) bool {
	if strings.Contains(strings.ToLower(col), "pct") {
		return false
	}
	return strings.Contains(col, "Defense") || strings.HasPrefix(col, "Passing")
}

// AdjustedName is the output column for an adjusted metric.
func AdjustedName(col string) string {
	return "Padj_" + strings.ReplaceAll(col, "Defense", "Defensive")
}

// Per90 adds <col>_Per_90 for every numeric column whose name does not
// mention 90s, percentages or playing time. Rows without minutes get nil.
func Per90(t dataset.Table, minutesColumn string) dataset.Table {
	out := t.Clone()
	var targets []string
	for _, col := range t.Columns {
		lower := strings.ToLower(col)
		if strings.Contains(col, "90") || strings.Contains(lower, "pct") || strings.Contains(lower, "playing_time") {
			continue
		}
		if numericColumn(t, col) {
			targets = append(targets, col)
		}
	}

	for _, col := range targets {
		name := col + "_Per_90"
		out.Columns = append(out.Columns, name)
		for _, row := range out.Rows {
			row[name] = nil
			minutes, ok := dataset.Float(row[minutesColumn])
			if !ok || minutes == 0 {
				continue
			}
			if v, ok := dataset.Float(row[col]); ok {
				row[name] = v / minutes
			}
		}
	}
	return out
}

func numericColumn(t dataset.Table, col string) bool {
	seen := false
	for _, row := range t.Rows {
		switch row[col].(type) {
		case nil:
		case float64, int64, int:
			seen = true
		default:
			return false
		}
	}
	return seen
}

// FixPenalties splits shoot-out scores such as "2 (4)" in GF/GA into the goal
// count and the penfor/penagainst columns.
func FixPenalties(t dataset.Table) dataset.Table {
	out := t.Clone()
	for _, pair := range [][2]string{{"GF", "penfor"}, {"GA", "penagainst"}} {
		goals, pens := pair[0], pair[1]
		if !out.HasColumn(goals) {
			continue
		}
		out.AddColumn(pens, 0.0)
		for _, row := range out.Rows {
			text := dataset.String(row[goals])
			fields := strings.Fields(text)
			if len(fields) > 1 {
				pen := strings.Trim(fields[len(fields)-1], "()")
				row[pens] = ParseCell(pen)
			} else {
				row[pens] = 0.0
			}
			if idx := strings.Index(text, "("); idx >= 0 {
				row[goals] = ParseCell(text[:idx])
			}
		}
	}
	return out
}
