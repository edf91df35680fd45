// Package dataset holds the tabular currency shared by the normalizers, the
// warehouse writer and the CSV export: an ordered column list plus rows keyed
// by column name. A column absent from a row reads as nil.
package dataset

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
)

type Row map[string]any

type Table struct {
	Columns []string
	Rows    []Row
}

func New(columns ...string) Table {
	return Table{Columns: append([]string(nil), columns...)}
}

func (t Table) Len() int {
	return len(t.Rows)
}

func (t Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Append adds row, registering any column the table has not seen yet in
// sorted order so the resulting layout is deterministic.
func (t *Table) Append(row Row) {
	var added []string
	for key := range row {
		if !t.HasColumn(key) {
			added = append(added, key)
		}
	}
	sort.Strings(added)
	t.Columns = append(t.Columns, added...)
	t.Rows = append(t.Rows, row)
}

func (t *Table) AddColumn(name string, fill any) {
	if t.HasColumn(name) {
		return
	}
	t.Columns = append(t.Columns, name)
	for _, row := range t.Rows {
		if _, ok := row[name]; !ok {
			row[name] = fill
		}
	}
}

// Column returns the value vector of name, nil-padded for rows without it.
func (t Table) Column(name string) []any {
	out := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[name]
	}
	return out
}

func (t Table) SortedColumns() []string {
	out := append([]string(nil), t.Columns...)
	sort.Strings(out)
	return out
}

func (t Table) Clone() Table {
	out := Table{Columns: append([]string(nil), t.Columns...), Rows: make([]Row, len(t.Rows))}
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Concat stacks tables vertically. Columns are the union in first-seen order.
func Concat(tables ...Table) Table {
	var out Table
	seen := make(map[string]struct{})
	for _, t := range tables {
		for _, col := range t.Columns {
			if _, ok := seen[col]; ok {
				continue
			}
			seen[col] = struct{}{}
			out.Columns = append(out.Columns, col)
		}
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}

func (t Table) DropColumns(names ...string) Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	out := Table{Rows: make([]Row, len(t.Rows))}
	for _, col := range t.Columns {
		if _, ok := drop[col]; !ok {
			out.Columns = append(out.Columns, col)
		}
	}
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			if _, ok := drop[k]; !ok {
				cp[k] = v
			}
		}
		out.Rows[i] = cp
	}
	return out
}

// RenameColumns applies fn to every column name. When two columns map to the
// same name the first one wins.
func (t Table) RenameColumns(fn func(string) string) Table {
	mapping := make(map[string]string, len(t.Columns))
	var out Table
	taken := make(map[string]struct{}, len(t.Columns))
	for _, col := range t.Columns {
		renamed := fn(col)
		if _, ok := taken[renamed]; ok {
			continue
		}
		taken[renamed] = struct{}{}
		mapping[col] = renamed
		out.Columns = append(out.Columns, renamed)
	}
	out.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		cp := make(Row, len(row))
		for k, v := range row {
			if renamed, ok := mapping[k]; ok {
				cp[renamed] = v
			}
		}
		out.Rows[i] = cp
	}
	return out
}

func (t Table) Filter(keep func(Row) bool) Table {
	out := Table{Columns: append([]string(nil), t.Columns...)}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// DedupeRows drops rows whose canonical encoding over all columns was
// already seen, keeping the first occurrence.
func (t Table) DedupeRows() (Table, error) {
	return t.DedupeRowsBy(t.SortedColumns()...)
}

// DedupeRowsBy keeps the first row for each distinct value tuple of columns.
func (t Table) DedupeRowsBy(columns ...string) (Table, error) {
	out := Table{Columns: append([]string(nil), t.Columns...)}
	seen := make(map[string]struct{}, len(t.Rows))
	for i, row := range t.Rows {
		key, err := RowKey(row, columns)
		if err != nil {
			return Table{}, fmt.Errorf("row %d: %w", i, err)
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out.Rows = append(out.Rows, row)
	}
	return out, nil
}

// DropDuplicateColumns removes every column whose value vector equals that of
// an earlier column.
func (t Table) DropDuplicateColumns() (Table, error) {
	seen := make(map[string]string, len(t.Columns))
	var drop []string
	for _, col := range t.Columns {
		key, err := canonical(t.Column(col))
		if err != nil {
			return Table{}, fmt.Errorf("column %s: %w", col, err)
		}
		if _, ok := seen[key]; ok {
			drop = append(drop, col)
			continue
		}
		seen[key] = col
	}
	if len(drop) == 0 {
		return t, nil
	}
	return t.DropColumns(drop...), nil
}

// RowKey is the canonical JSON encoding of row's values over columns. Whole
// floats encode like integers so 3 and 3.0 collide.
func RowKey(row Row, columns []string) (string, error) {
	values := make([]any, len(columns))
	for i, col := range columns {
		values[i] = row[col]
	}
	return canonical(values)
}

func canonical(values []any) (string, error) {
	normalized := make([]any, len(values))
	for i, v := range values {
		normalized[i] = normalizeValue(v)
	}
	raw, err := sonic.ConfigStd.Marshal(normalized)
	if err != nil {
		return "", fmt.Errorf("encode row key: %w", err)
	}
	return string(raw), nil
}

func normalizeValue(v any) any {
	switch value := v.(type) {
	case float64:
		if math.IsNaN(value) {
			return nil
		}
		if value == math.Trunc(value) && math.Abs(value) < 1<<53 {
			return int64(value)
		}
	case float32:
		return normalizeValue(float64(value))
	case int:
		return int64(value)
	case int32:
		return int64(value)
	}
	return v
}

// Float converts a numeric cell to float64. Numeric strings with thousands
// separators are accepted.
func Float(v any) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, !math.IsNaN(value)
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case int32:
		return float64(value), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(value), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String renders a cell for keys and CSV output.
func String(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case []int:
		parts := make([]string, len(value))
		for i, n := range value {
			parts[i] = strconv.Itoa(n)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	return fmt.Sprint(v)
}
