package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/match"
)

// LoadSeason reads a season cache file. The boolean is false when none exists.
func (s *Store) LoadSeason(ctx context.Context, lg league.League, year int) (match.Season, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path := s.SeasonPath(lg, year)
	data, ok, err := readOptional(path)
	if err != nil || !ok {
		return nil, false, err
	}

	var season match.Season
	if err := sonic.Unmarshal(data, &season); err != nil {
		return nil, false, crerr.Wrapf(err, "decode %s", path)
	}
	return season, true, nil
}

func (s *Store) SaveSeason(ctx context.Context, lg league.League, year int, season match.Season) error {
	data, err := sonic.Marshal(season)
	if err != nil {
		return crerr.Wrapf(err, "encode season %s %d", lg.Name, year)
	}
	return writeAtomic(ctx, s.SeasonPath(lg, year), data)
}

// DeleteSeason removes the cache once its matches are in the warehouse.
func (s *Store) DeleteSeason(_ context.Context, lg league.League, year int) error {
	err := os.Remove(s.SeasonPath(lg, year))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return crerr.Wrapf(err, "delete season %s %d", lg.Name, year)
	}
	return nil
}
