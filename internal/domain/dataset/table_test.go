package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTable_AppendRegistersColumns(t *testing.T) {
	t.Parallel()

	table := New("MatchId")
	table.Append(Row{"MatchId": 1, "Type": "Pass", "Minute": 3})
	table.Append(Row{"MatchId": 1, "PassEndX": 51.2})

	require.Equal(t, []string{"MatchId", "Minute", "Type", "PassEndX"}, table.Columns)
	require.Nil(t, table.Column("Type")[1])
}

func TestTable_DedupeRowsTreatsWholeFloatsAsIntegers(t *testing.T) {
	t.Parallel()

	table := Table{
		Columns: []string{"id", "name"},
		Rows: []Row{
			{"id": int64(3), "name": "a"},
			{"id": 3.0, "name": "a"},
			{"id": 3.5, "name": "a"},
			{"id": int64(3)},
		},
	}

	deduped, err := table.DedupeRows()
	require.NoError(t, err)
	require.Len(t, deduped.Rows, 3)
}

func TestTable_DropDuplicateColumns(t *testing.T) {
	t.Parallel()

	table := Table{
		Columns: []string{"Player", "Standard_Gls", "Performance_Gls", "Standard_Ast"},
		Rows: []Row{
			{"Player": "A", "Standard_Gls": 1.0, "Performance_Gls": 1.0, "Standard_Ast": 0.0},
			{"Player": "B", "Standard_Gls": 2.0, "Performance_Gls": 2.0, "Standard_Ast": 2.0},
		},
	}

	out, err := table.DropDuplicateColumns()
	require.NoError(t, err)
	require.Equal(t, []string{"Player", "Standard_Gls", "Standard_Ast"}, out.Columns)
	_, ok := out.Rows[0]["Performance_Gls"]
	require.False(t, ok)
}

func TestTable_RenameColumnsFirstWins(t *testing.T) {
	t.Parallel()

	table := Table{
		Columns: []string{"a b", "a_b", "c"},
		Rows:    []Row{{"a b": 1, "a_b": 2, "c": 3}},
	}
	out := table.RenameColumns(func(s string) string {
		if s == "a b" {
			return "a_b"
		}
		return s
	})

	require.Equal(t, []string{"a_b", "c"}, out.Columns)
	require.Equal(t, 1, out.Rows[0]["a_b"])
}

func TestConcatUnionsColumns(t *testing.T) {
	t.Parallel()

	a := Table{Columns: []string{"x", "y"}, Rows: []Row{{"x": 1, "y": 2}}}
	b := Table{Columns: []string{"y", "z"}, Rows: []Row{{"y": 3, "z": 4}}}

	out := Concat(a, b)
	require.Equal(t, []string{"x", "y", "z"}, out.Columns)
	require.Len(t, out.Rows, 2)
}

func TestLeftJoin(t *testing.T) {
	t.Parallel()

	left := Table{Columns: []string{"Squad", "Gls"}, Rows: []Row{
		{"Squad": "Arsenal", "Gls": 3.0},
		{"Squad": "Chelsea", "Gls": 1.0},
	}}
	right := Table{Columns: []string{"Team", "Gls", "Poss"}, Rows: []Row{
		{"Team": "Arsenal", "Gls": 99.0, "Poss": 61.0},
	}}

	out := LeftJoin(left, right, "Squad", "Team")
	require.Equal(t, []string{"Squad", "Gls", "Team", "Poss"}, out.Columns)
	require.Equal(t, 3.0, out.Rows[0]["Gls"])
	require.Equal(t, 61.0, out.Rows[0]["Poss"])
	require.Nil(t, out.Rows[1]["Poss"])
}

func TestLeftJoinOn(t *testing.T) {
	t.Parallel()

	left := Table{Columns: []string{"Player", "ID"}, Rows: []Row{
		{"Player": "Saka", "ID": "bc7dc64d"},
		{"Player": "Saka", "ID": "00000000"},
	}}
	right := Table{Columns: []string{"Name", "PID", "Padj"}, Rows: []Row{
		{"Name": "Saka", "PID": "bc7dc64d", "Padj": 4.5},
	}}

	out := LeftJoinOn(left, right, []string{"Player", "ID"}, []string{"Name", "PID"})
	require.Len(t, out.Rows, 2)
	require.Equal(t, 4.5, out.Rows[0]["Padj"])
	require.Nil(t, out.Rows[1]["Padj"])
}

func TestFloat(t *testing.T) {
	t.Parallel()

	v, ok := Float("1,234.5")
	require.True(t, ok)
	require.Equal(t, 1234.5, v)

	_, ok = Float("n/a")
	require.False(t, ok)
}
