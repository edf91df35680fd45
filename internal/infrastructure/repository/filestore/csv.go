package filestore

import (
	"context"
	"encoding/csv"
	"path/filepath"
	"strconv"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
)

// ExportCSV writes table to <root>/<year>_<name>.csv with a leading index
// column and returns the path.
func (s *Store) ExportCSV(ctx context.Context, year int, name string, table dataset.Table) (string, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	w := csv.NewWriter(buf)
	header := append([]string{""}, table.Columns...)
	if err := w.Write(header); err != nil {
		return "", crerr.Wrap(err, "write csv header")
	}
	record := make([]string, len(header))
	for i, row := range table.Rows {
		record[0] = strconv.Itoa(i)
		for j, col := range table.Columns {
			record[j+1] = dataset.String(row[col])
		}
		if err := w.Write(record); err != nil {
			return "", crerr.Wrapf(err, "write csv row %d", i)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", crerr.Wrap(err, "flush csv")
	}

	path := filepath.Join(s.root, strconv.Itoa(year)+"_"+name+".csv")
	if err := writeAtomic(ctx, path, buf.B); err != nil {
		return "", err
	}
	return path, nil
}
