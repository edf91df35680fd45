// Package filestore keeps the scraper's resumable state on local disk: the
// scraped-links cache, per-season match payloads, lookup dictionaries and
// CSV exports.
package filestore

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
)

const (
	linksFile = "whoscored_links.txt"
	cacheDir  = "cache"
	lookupDir = "lookup"
)

type Store struct {
	root string
}

func New(root string) *Store {
	if strings.TrimSpace(root) == "" {
		root = "data"
	}
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

// SeasonPath is where a league season's match payloads are cached,
// e.g. data/La_Liga_2024_match_data.json.
func (s *Store) SeasonPath(lg league.League, year int) string {
	name := strings.ReplaceAll(lg.Name, " ", "_") + "_" + strconv.Itoa(year) + "_match_data.json"
	return filepath.Join(s.root, name)
}

func (s *Store) linksPath() string {
	return filepath.Join(s.root, cacheDir, linksFile)
}

func (s *Store) lookupPath(name string) string {
	return filepath.Join(s.root, lookupDir, name+".json")
}

// writeAtomic replaces path so readers never observe a partial file.
func writeAtomic(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return crerr.Wrapf(err, "create dir for %s", path)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return crerr.Wrapf(err, "create temp for %s", path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return crerr.Wrapf(err, "write %s", path)
	}
	if err := tmp.Close(); err != nil {
		return crerr.Wrapf(err, "close %s", path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return crerr.Wrapf(err, "rename into %s", path)
	}
	return nil
}

// readOptional returns nil data and false when path does not exist.
func readOptional(path string) ([]byte, bool, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, crerr.Wrapf(err, "read %s", path)
	}
	return data, true, nil
}
