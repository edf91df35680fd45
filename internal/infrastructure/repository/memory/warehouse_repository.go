package memory

import (
	"context"
	"sync"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
)

// WarehouseRepository keeps tables in process memory. It backs --dry-run and
// tests.
type WarehouseRepository struct {
	mu     sync.RWMutex
	tables map[warehouse.TableRef]dataset.Table
}

func NewWarehouseRepository() *WarehouseRepository {
	return &WarehouseRepository{tables: make(map[warehouse.TableRef]dataset.Table)}
}

var _ warehouse.Repository = (*WarehouseRepository)(nil)

func (r *WarehouseRepository) ReadTable(ctx context.Context, ref warehouse.TableRef) (dataset.Table, bool, error) {
	if err := ctx.Err(); err != nil {
		return dataset.Table{}, false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	table, ok := r.tables[ref]
	if !ok {
		return dataset.Table{}, false, nil
	}
	return table.Clone(), true, nil
}

func (r *WarehouseRepository) ReplaceTable(ctx context.Context, ref warehouse.TableRef, table dataset.Table) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tables[ref] = table.Clone()
	return nil
}

// DatasetSize is the encoded JSON size of every row in the dataset.
func (r *WarehouseRepository) DatasetSize(ctx context.Context, datasetName string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var size int64
	for ref, table := range r.tables {
		if ref.Dataset != datasetName {
			continue
		}
		for _, row := range table.Rows {
			payload, err := sonic.Marshal(row)
			if err != nil {
				return 0, err
			}
			size += int64(len(payload))
		}
	}
	return size, nil
}

// Refs lists stored tables, mainly for dry-run summaries.
func (r *WarehouseRepository) Refs() []warehouse.TableRef {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := make([]warehouse.TableRef, 0, len(r.tables))
	for ref := range r.tables {
		refs = append(refs, ref)
	}
	return refs
}
