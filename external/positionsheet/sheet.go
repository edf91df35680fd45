// Package positionsheet reads the community player position sheet that maps
// FBref player pages to Transfermarkt positions.
package positionsheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strings"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/football-scraper/internal/platform/logging"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

const (
	fbrefColumn    = "UrlFBref"
	positionColumn = "TmPos"
)

// Fetcher performs GETs. httpfetch.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type Sheet struct {
	fetcher Fetcher
	url     string
	logger  *logging.Logger
}

func New(fetcher Fetcher, url string, logger *logging.Logger) *Sheet {
	if logger == nil {
		logger = logging.Default()
	}
	return &Sheet{fetcher: fetcher, url: strings.TrimSpace(url), logger: logger.Named("positions")}
}

// Positions maps FBref player ids to positions. Malformed lines are skipped.
func (s *Sheet) Positions(ctx context.Context) (map[string]string, error) {
	if s.url == "" {
		return nil, crerr.Wrap(usecase.ErrInvalidInput, "position sheet url is empty")
	}
	body, err := s.fetcher.Get(ctx, s.url)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch position sheet")
	}
	return s.parse(ctx, body)
}

func (s *Sheet) parse(ctx context.Context, body []byte) (map[string]string, error) {
	reader := csv.NewReader(bytes.NewReader(body))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, crerr.Wrapf(usecase.ErrLayoutChanged, "position sheet header: %v", err)
	}
	urlIdx, posIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case fbrefColumn:
			urlIdx = i
		case positionColumn:
			posIdx = i
		}
	}
	if urlIdx < 0 || posIdx < 0 {
		return nil, crerr.Wrapf(usecase.ErrLayoutChanged, "position sheet lacks %s or %s", fbrefColumn, positionColumn)
	}

	out := make(map[string]string)
	skipped := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil || len(record) <= max(urlIdx, posIdx) {
			skipped++
			continue
		}
		playerID := PlayerID(record[urlIdx])
		if playerID == "" {
			skipped++
			continue
		}
		out[playerID] = strings.TrimSpace(record[posIdx])
	}
	s.logger.InfoContext(ctx, "loaded position sheet", "players", len(out), "skipped", skipped)
	return out, nil
}

// PlayerID extracts the id segment following "players/" in an FBref URL.
func PlayerID(fbrefURL string) string {
	_, rest, ok := strings.Cut(fbrefURL, "players/")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "/")
	return strings.TrimSpace(id)
}
