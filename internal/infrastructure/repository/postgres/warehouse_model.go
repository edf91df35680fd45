package postgres

import (
	"github.com/bytedance/sonic"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

const (
	warehouseTablesTable = "warehouse_tables"
	warehouseRowsTable   = "warehouse_rows"
	rowInsertBatchSize   = 500
)

// Integral JSON numbers decode to int64 so ids survive the round trip.
var payloadJSON = sonic.Config{UseInt64: true}.Froze()

type warehouseTableModel struct {
	ID       int64  `db:"id"`
	Columns  string `db:"columns"`
	RowCount int    `db:"row_count"`
}

type warehouseTableInsertModel struct {
	Dataset  string `db:"dataset"`
	Name     string `db:"name"`
	Columns  string `db:"columns"`
	RowCount int    `db:"row_count"`
}

type warehouseRowInsertModel struct {
	TableID int64  `db:"table_id"`
	Ordinal int    `db:"ordinal"`
	Payload string `db:"payload"`
}

// rowInsertBatches encodes rows into insert models of at most size rows each.
func rowInsertBatches(tableID int64, rows []dataset.Row, size int) ([][]any, error) {
	if size <= 0 {
		size = rowInsertBatchSize
	}
	var batches [][]any
	batch := make([]any, 0, min(size, len(rows)))
	for i, row := range rows {
		payload, err := payloadJSON.Marshal(row)
		if err != nil {
			return nil, err
		}
		batch = append(batch, warehouseRowInsertModel{TableID: tableID, Ordinal: i, Payload: string(payload)})
		if len(batch) == size {
			batches = append(batches, batch)
			batch = make([]any, 0, size)
		}
	}
	if len(batch) > 0 {
		batches = append(batches, batch)
	}
	return batches, nil
}

func decodeRow(payload []byte) (dataset.Row, error) {
	var row dataset.Row
	if err := payloadJSON.Unmarshal(payload, &row); err != nil {
		return nil, err
	}
	return row, nil
}
