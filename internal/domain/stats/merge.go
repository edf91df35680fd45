package stats

import (
	"fmt"
	"strings"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

var parseColumnReplacer = []struct{ old, new string }{
	{"#", "_No_"},
	{" ", "_"},
	{"(", ""},
	{"-", "_"},
	{")", ""},
	{"%", "_Pct_"},
	{"1/3", "One_Third"},
	{"/", "_per"},
	{"+", "_Plus_"},
	{":", "_"},
	{"__", "_"},
}

var droppedStatColumns = []string{"Standard_Matches", "Standard_Rk", "Standard Matches"}

// Merge left-joins tables on each one's first column. Missing left keys are
// filled with 0 before each join, and columns duplicating an earlier one by
// value are collapsed at the end.
func Merge(tables ...dataset.Table) (dataset.Table, error) {
	if len(tables) == 0 {
		return dataset.Table{}, nil
	}

	merged := tables[0].Clone()
	for _, right := range tables[1:] {
		if len(merged.Columns) == 0 || len(right.Columns) == 0 {
			continue
		}
		leftKey := merged.Columns[0]
		for _, row := range merged.Rows {
			if row[leftKey] == nil {
				row[leftKey] = 0.0
			}
		}
		merged = dataset.LeftJoin(merged, right, leftKey, right.Columns[0])
	}

	out, err := merged.DropDuplicateColumns()
	if err != nil {
		return dataset.Table{}, fmt.Errorf("merge stat tables: %w", err)
	}
	return out, nil
}

// ParseColumnName rewrites a flattened name into a warehouse-safe identifier.
func ParseColumnName(name string) string {
	for _, r := range parseColumnReplacer {
		name = strings.ReplaceAll(name, r.old, r.new)
	}
	return strings.Trim(name, "_")
}

// ParseColumns renames every column with ParseColumnName, collapses
// duplicated columns and rows, and drops the rank and matches link columns.
func ParseColumns(t dataset.Table) (dataset.Table, error) {
	out := t.RenameColumns(ParseColumnName)
	out, err := out.DropDuplicateColumns()
	if err != nil {
		return dataset.Table{}, err
	}
	out, err = out.DedupeRows()
	if err != nil {
		return dataset.Table{}, err
	}
	return out.DropColumns(droppedStatColumns...), nil
}

// CategoryTable pairs a flattened table with the category it came from.
type CategoryTable struct {
	Category Category
	Table    dataset.Table
}

// SplitGoalkeeping merges the outfield and goalkeeping categories separately.
func SplitGoalkeeping(tables []CategoryTable) (outfield, keepers dataset.Table, err error) {
	var field, gk []dataset.Table
	for _, ct := range tables {
		if ct.Category.Goalkeeping {
			gk = append(gk, ct.Table)
		} else {
			field = append(field, ct.Table)
		}
	}
	if outfield, err = Merge(field...); err != nil {
		return dataset.Table{}, dataset.Table{}, err
	}
	if keepers, err = Merge(gk...); err != nil {
		return dataset.Table{}, dataset.Table{}, err
	}
	return outfield, keepers, nil
}

// HConcat places tables side by side, aligning rows by position. Column names
// already taken by an earlier table are skipped.
func HConcat(tables ...dataset.Table) dataset.Table {
	var out dataset.Table
	rows := 0
	for _, t := range tables {
		rows = max(rows, len(t.Rows))
	}
	out.Rows = make([]dataset.Row, rows)
	for i := range out.Rows {
		out.Rows[i] = dataset.Row{}
	}

	for _, t := range tables {
		var added []string
		for _, col := range t.Columns {
			if !out.HasColumn(col) {
				out.Columns = append(out.Columns, col)
				added = append(added, col)
			}
		}
		for i := range out.Rows {
			for _, col := range added {
				if i < len(t.Rows) {
					out.Rows[i][col] = t.Rows[i][col]
				} else {
					out.Rows[i][col] = nil
				}
			}
		}
	}
	return out
}

// DropLastRow removes the totals row FBref appends to match tables.
func DropLastRow(t dataset.Table) dataset.Table {
	if len(t.Rows) == 0 {
		return t
	}
	out := t
	out.Rows = t.Rows[:len(t.Rows)-1]
	return out
}
