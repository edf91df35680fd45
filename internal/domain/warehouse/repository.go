package warehouse

import (
	"context"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

// Repository is the table store behind the warehouse writer.
type Repository interface {
	// ReadTable returns false when the table does not exist.
	ReadTable(ctx context.Context, ref TableRef) (dataset.Table, bool, error)
	// ReplaceTable swaps the table contents atomically.
	ReplaceTable(ctx context.Context, ref TableRef, table dataset.Table) error
	// DatasetSize reports the stored payload bytes of every table in the named dataset.
	DatasetSize(ctx context.Context, name string) (int64, error)
}
