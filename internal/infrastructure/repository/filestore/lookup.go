package filestore

import (
	"context"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/football-scraper/internal/domain/lookup"
)

var _ lookup.Repository = (*Store)(nil)

func (s *Store) LoadStore(ctx context.Context, store *lookup.Store) error {
	return s.loadJSON(ctx, store.Name(), store)
}

func (s *Store) SaveStore(ctx context.Context, store *lookup.Store) error {
	return s.saveJSON(ctx, store.Name(), store)
}

func (s *Store) LoadDirectory(ctx context.Context, dir *lookup.Directory) error {
	return s.loadJSON(ctx, dir.Name(), dir)
}

func (s *Store) SaveDirectory(ctx context.Context, dir *lookup.Directory) error {
	return s.saveJSON(ctx, dir.Name(), dir)
}

// loadJSON leaves target untouched when no file exists yet.
func (s *Store) loadJSON(ctx context.Context, name string, target any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, ok, err := readOptional(s.lookupPath(name))
	if err != nil || !ok {
		return err
	}
	if err := sonic.Unmarshal(data, target); err != nil {
		return crerr.Wrapf(err, "decode lookup %s", name)
	}
	return nil
}

func (s *Store) saveJSON(ctx context.Context, name string, value any) error {
	data, err := sonic.Marshal(value)
	if err != nil {
		return crerr.Wrapf(err, "encode lookup %s", name)
	}
	return writeAtomic(ctx, s.lookupPath(name), data)
}
