// Package cache decorates repositories with in-process read caches.
package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	basecache "github.com/riskibarqy/football-scraper/internal/platform/cache"
)

type LeagueRepository struct {
	next  league.Repository
	list  *basecache.Store[[]league.League]
	items *basecache.Store[cachedLeague]
}

func NewLeagueRepository(next league.Repository, ttl time.Duration) *LeagueRepository {
	return &LeagueRepository{
		next:  next,
		list:  basecache.NewStore[[]league.League](ttl),
		items: basecache.NewStore[cachedLeague](ttl),
	}
}

var _ league.Repository = (*LeagueRepository)(nil)

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	items, err := r.list.GetOrLoad(ctx, "league:list", func(ctx context.Context) ([]league.League, error) {
		items, err := r.next.List(ctx)
		if err != nil {
			return nil, err
		}
		return append([]league.League(nil), items...), nil
	})
	if err != nil {
		return nil, err
	}
	return append([]league.League(nil), items...), nil
}

func (r *LeagueRepository) GetByName(ctx context.Context, name string) (league.League, bool, error) {
	cached, err := r.items.GetOrLoad(ctx, "league:name:"+name, func(ctx context.Context) (cachedLeague, error) {
		item, exists, err := r.next.GetByName(ctx, name)
		if err != nil {
			return cachedLeague{}, err
		}
		return cachedLeague{value: item, exists: exists}, nil
	})
	if err != nil {
		return league.League{}, false, err
	}
	return cached.value, cached.exists, nil
}

type cachedLeague struct {
	value  league.League
	exists bool
}

// WarehouseRepository caches table reads. The APPEND path reads a table
// before every write, and Lookup_Tables.Matches is appended once per season.
// Writes go through and refresh the cached copy.
type WarehouseRepository struct {
	next   warehouse.Repository
	tables *basecache.Store[cachedTable]
}

func NewWarehouseRepository(next warehouse.Repository, ttl time.Duration) *WarehouseRepository {
	return &WarehouseRepository{
		next:   next,
		tables: basecache.NewStore[cachedTable](ttl),
	}
}

var _ warehouse.Repository = (*WarehouseRepository)(nil)

func (r *WarehouseRepository) ReadTable(ctx context.Context, ref warehouse.TableRef) (dataset.Table, bool, error) {
	cached, err := r.tables.GetOrLoad(ctx, tableKey(ref), func(ctx context.Context) (cachedTable, error) {
		table, exists, err := r.next.ReadTable(ctx, ref)
		if err != nil {
			return cachedTable{}, err
		}
		return cachedTable{value: table, exists: exists}, nil
	})
	if err != nil {
		return dataset.Table{}, false, err
	}
	return cached.value.Clone(), cached.exists, nil
}

func (r *WarehouseRepository) ReplaceTable(ctx context.Context, ref warehouse.TableRef, table dataset.Table) error {
	key := tableKey(ref)
	if err := r.next.ReplaceTable(ctx, ref, table); err != nil {
		r.tables.Delete(ctx, key)
		return err
	}
	r.tables.Set(ctx, key, cachedTable{value: table.Clone(), exists: true})
	return nil
}

func (r *WarehouseRepository) DatasetSize(ctx context.Context, datasetName string) (int64, error) {
	return r.next.DatasetSize(ctx, datasetName)
}

type cachedTable struct {
	value  dataset.Table
	exists bool
}

func tableKey(ref warehouse.TableRef) string {
	return "warehouse:" + ref.String()
}
