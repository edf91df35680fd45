package dataset

import "strings"

// LeftJoin keeps every left row and attaches the columns of each right row
// whose rightKey equals the row's leftKey. Several right matches multiply the
// left row; none leaves the right columns nil. Right columns already present
// on the left are skipped.
func LeftJoin(left, right Table, leftKey, rightKey string) Table {
	return LeftJoinOn(left, right, []string{leftKey}, []string{rightKey})
}

// LeftJoinOn is LeftJoin over a composite key. leftKeys and rightKeys pair up
// by position.
func LeftJoinOn(left, right Table, leftKeys, rightKeys []string) Table {
	index := make(map[string][]Row, len(right.Rows))
	for _, row := range right.Rows {
		k := compositeKey(row, rightKeys)
		index[k] = append(index[k], row)
	}

	out := Table{Columns: append([]string(nil), left.Columns...)}
	var added []string
	for _, col := range right.Columns {
		if !left.HasColumn(col) {
			added = append(added, col)
			out.Columns = append(out.Columns, col)
		}
	}

	for _, row := range left.Rows {
		matches := index[compositeKey(row, leftKeys)]
		if len(matches) == 0 {
			out.Rows = append(out.Rows, copyRow(row, nil, added))
			continue
		}
		for _, match := range matches {
			out.Rows = append(out.Rows, copyRow(row, match, added))
		}
	}
	return out
}

func copyRow(base, extra Row, extraCols []string) Row {
	out := make(Row, len(base)+len(extraCols))
	for k, v := range base {
		out[k] = v
	}
	for _, col := range extraCols {
		if extra == nil {
			out[col] = nil
			continue
		}
		out[col] = extra[col]
	}
	return out
}

func compositeKey(row Row, keys []string) string {
	if len(keys) == 1 {
		return joinKey(row[keys[0]])
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = joinKey(row[k])
	}
	return strings.Join(parts, "\x1f")
}

func joinKey(v any) string {
	return String(normalizeValue(v))
}
