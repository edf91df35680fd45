package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("columns", "row_count").
		From("warehouse_tables").
		Where(Eq("dataset", "Event_Data"), Eq("name", "EPL_2024")).
		OrderBy("name").
		Limit(1).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT columns, row_count FROM warehouse_tables WHERE dataset = $1 AND name = $2 ORDER BY name LIMIT 1"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "Event_Data" || args[1] != "EPL_2024" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_MultiRow(t *testing.T) {
	query, args, err := InsertInto("warehouse_rows").
		Columns("dataset", "row_index").
		Values("Stats", 0).
		Values("Stats", 1).
		Suffix("ON CONFLICT DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO warehouse_rows (dataset, row_index) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[2] != "Stats" || args[3] != 1 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	if _, _, err := DeleteFrom("warehouse_rows").ToSQL(); err == nil {
		t.Fatalf("expected unconditioned delete to be rejected")
	}

	query, args, err := DeleteFrom("warehouse_rows").
		Where(Eq("dataset", "Lookup_Tables"), Eq("name", "Matches")).
		ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	wantQuery := "DELETE FROM warehouse_rows WHERE dataset = $1 AND name = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModels(t *testing.T) {
	type row struct {
		Dataset string `db:"dataset"`
		Index   int    `db:"row_index"`
		skipped string
		Ignored string `db:"-"`
	}

	query, args, err := InsertModels("warehouse_rows", []any{row{Dataset: "a", Index: 0}, &row{Dataset: "a", Index: 1}}, "")
	if err != nil {
		t.Fatalf("build insert models: %v", err)
	}
	wantQuery := "INSERT INTO warehouse_rows (dataset, row_index) VALUES ($1, $2), ($3, $4)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
	_ = row{}.skipped
}
