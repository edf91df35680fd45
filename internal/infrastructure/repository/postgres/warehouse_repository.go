package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	qb "github.com/riskibarqy/football-scraper/internal/platform/querybuilder"
)

// WarehouseRepository stores tables as a header row plus JSONB payload rows.
type WarehouseRepository struct {
	db *sqlx.DB
}

func NewWarehouseRepository(db *sqlx.DB) *WarehouseRepository {
	return &WarehouseRepository{db: db}
}

var _ warehouse.Repository = (*WarehouseRepository)(nil)

func (r *WarehouseRepository) ReadTable(ctx context.Context, ref warehouse.TableRef) (dataset.Table, bool, error) {
	header, exists, err := r.tableHeader(ctx, ref)
	if err != nil || !exists {
		return dataset.Table{}, false, err
	}

	var columns []string
	if err := payloadJSON.UnmarshalFromString(header.Columns, &columns); err != nil {
		return dataset.Table{}, false, fmt.Errorf("decode columns of %s: %w", ref, err)
	}

	query, args, err := qb.Select("payload").
		From(warehouseRowsTable).
		Where(qb.Eq("table_id", header.ID)).
		OrderBy("ordinal").
		ToSQL()
	if err != nil {
		return dataset.Table{}, false, fmt.Errorf("build read rows query: %w", err)
	}

	var payloads []string
	if err := r.db.SelectContext(ctx, &payloads, query, args...); err != nil {
		return dataset.Table{}, false, fmt.Errorf("read rows of %s: %w", ref, err)
	}

	table := dataset.Table{Columns: columns, Rows: make([]dataset.Row, 0, len(payloads))}
	for i, payload := range payloads {
		row, err := decodeRow([]byte(payload))
		if err != nil {
			return dataset.Table{}, false, fmt.Errorf("decode row %d of %s: %w", i, ref, err)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, true, nil
}

func (r *WarehouseRepository) tableHeader(ctx context.Context, ref warehouse.TableRef) (warehouseTableModel, bool, error) {
	query, args, err := qb.Select("id", "columns", "row_count").
		From(warehouseTablesTable).
		Where(
			qb.Eq("dataset", ref.Dataset),
			qb.Eq("name", ref.Name),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return warehouseTableModel{}, false, fmt.Errorf("build table header query: %w", err)
	}

	var header warehouseTableModel
	err = r.db.GetContext(ctx, &header, query, args...)
	if isRetryableStatementError(err) {
		err = r.db.GetContext(ctx, &header, query, args...)
	}
	if err != nil {
		if isNotFound(err) {
			return warehouseTableModel{}, false, nil
		}
		return warehouseTableModel{}, false, fmt.Errorf("get table header %s: %w", ref, err)
	}
	return header, true, nil
}

// ReplaceTable swaps the stored rows of ref for table in one transaction.
func (r *WarehouseRepository) ReplaceTable(ctx context.Context, ref warehouse.TableRef, table dataset.Table) error {
	columns, err := payloadJSON.MarshalToString(table.Columns)
	if err != nil {
		return fmt.Errorf("encode columns of %s: %w", ref, err)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx replace %s: %w", ref, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query, args, err := qb.InsertModel(warehouseTablesTable, warehouseTableInsertModel{
		Dataset:  ref.Dataset,
		Name:     ref.Name,
		Columns:  columns,
		RowCount: len(table.Rows),
	}, `ON CONFLICT (dataset, name)
DO UPDATE SET
    columns = EXCLUDED.columns,
    row_count = EXCLUDED.row_count,
    updated_at = NOW()
RETURNING id`)
	if err != nil {
		return fmt.Errorf("build upsert table header query: %w", err)
	}

	var tableID int64
	if err := tx.QueryRowxContext(ctx, query, args...).Scan(&tableID); err != nil {
		return fmt.Errorf("upsert table header %s: %w", ref, err)
	}

	query, args, err = qb.DeleteFrom(warehouseRowsTable).Where(qb.Eq("table_id", tableID)).ToSQL()
	if err != nil {
		return fmt.Errorf("build delete rows query: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete rows of %s: %w", ref, err)
	}

	batches, err := rowInsertBatches(tableID, table.Rows, rowInsertBatchSize)
	if err != nil {
		return fmt.Errorf("encode rows of %s: %w", ref, err)
	}
	for i, batch := range batches {
		query, args, err := qb.InsertModels(warehouseRowsTable, batch, "")
		if err != nil {
			return fmt.Errorf("build insert rows query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert rows batch=%d of %s: %w", i, ref, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", ref, err)
	}
	return nil
}

// DatasetSize sums the stored payload bytes of every table in dataset.
func (r *WarehouseRepository) DatasetSize(ctx context.Context, datasetName string) (int64, error) {
	query, args, err := qb.Select("COALESCE(SUM(pg_column_size(r.payload)), 0)").
		From(warehouseRowsTable+" r JOIN "+warehouseTablesTable+" t ON t.id = r.table_id").
		Where(qb.Eq("t.dataset", datasetName)).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build dataset size query: %w", err)
	}

	var size int64
	if err := r.db.GetContext(ctx, &size, query, args...); err != nil {
		return 0, fmt.Errorf("dataset size %s: %w", datasetName, err)
	}
	return size, nil
}
