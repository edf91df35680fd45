package usecase

import (
	"context"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
)

// WarehouseWriter applies the append and truncate write policies on top of a
// warehouse.Repository.
type WarehouseWriter struct {
	repo   warehouse.Repository
	logger *logging.Logger
}

func NewWarehouseWriter(repo warehouse.Repository, logger *logging.Logger) *WarehouseWriter {
	if logger == nil {
		logger = logging.Default()
	}
	return &WarehouseWriter{repo: repo, logger: logger.Named("warehouse")}
}

func (w *WarehouseWriter) Write(ctx context.Context, ref warehouse.TableRef, table dataset.Table, mode warehouse.WriteMode) (warehouse.WriteResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.WarehouseWriter.Write")
	defer span.End()
	span.SetAttributes(attribute.String("table", ref.String()), attribute.String("mode", string(mode)))

	if err := ref.Validate(); err != nil {
		return warehouse.WriteResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	result := warehouse.WriteResult{Ref: ref, Mode: mode}

	switch mode {
	case warehouse.WriteTruncate:
		if err := w.repo.ReplaceTable(ctx, ref, table); err != nil {
			return warehouse.WriteResult{}, fmt.Errorf("replace %s: %w", ref, err)
		}
		result.NewRows = table.Len()
		result.TotalRows = table.Len()
	case warehouse.WriteAppend:
		appended, err := w.appendRows(ctx, ref, table)
		if err != nil {
			return warehouse.WriteResult{}, err
		}
		result.NewRows = appended.NewRows
		result.TotalRows = appended.TotalRows
		result.Skipped = appended.Skipped
	default:
		return warehouse.WriteResult{}, fmt.Errorf("%w: %w: %q", ErrInvalidInput, warehouse.ErrInvalidWriteMode, mode)
	}

	if result.Skipped {
		w.logger.InfoContext(ctx, "no new data to append", "table", ref.String())
		return result, nil
	}
	w.logger.InfoContext(ctx, "table written",
		"table", ref.String(),
		"mode", string(mode),
		"new_rows", result.NewRows,
		"total_rows", result.TotalRows,
		"columns", len(table.Columns),
	)
	return result, nil
}

func (w *WarehouseWriter) appendRows(ctx context.Context, ref warehouse.TableRef, table dataset.Table) (warehouse.WriteResult, error) {
	existing, exists, err := w.repo.ReadTable(ctx, ref)
	if err != nil {
		return warehouse.WriteResult{}, fmt.Errorf("read %s: %w", ref, err)
	}
	if !exists {
		deduped, err := table.DedupeRows()
		if err != nil {
			return warehouse.WriteResult{}, fmt.Errorf("dedupe %s: %w", ref, err)
		}
		if err := w.repo.ReplaceTable(ctx, ref, deduped); err != nil {
			return warehouse.WriteResult{}, fmt.Errorf("create %s: %w", ref, err)
		}
		return warehouse.WriteResult{NewRows: deduped.Len(), TotalRows: deduped.Len()}, nil
	}

	if want, got := existing.SortedColumns(), table.SortedColumns(); !slices.Equal(want, got) {
		return warehouse.WriteResult{}, fmt.Errorf("%w: %s has columns %v, got %v", ErrSchemaMismatch, ref, want, got)
	}

	merged, err := dataset.Concat(existing, table).DedupeRows()
	if err != nil {
		return warehouse.WriteResult{}, fmt.Errorf("dedupe %s: %w", ref, err)
	}
	if merged.Len() <= existing.Len() {
		return warehouse.WriteResult{TotalRows: existing.Len(), Skipped: true}, nil
	}

	if err := w.repo.ReplaceTable(ctx, ref, merged); err != nil {
		return warehouse.WriteResult{}, fmt.Errorf("replace %s: %w", ref, err)
	}
	return warehouse.WriteResult{NewRows: merged.Len() - existing.Len(), TotalRows: merged.Len()}, nil
}
