// Package fbref scrapes season stats, match reports and squad match logs
// from fbref.com.
package fbref

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/platform/cache"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

const defaultBaseURL = "https://fbref.com"

var ErrSeasonNotFound = crerr.New("fbref season not found")

// Fetcher performs throttled GETs. httpfetch.Client satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

type ClientConfig struct {
	Fetcher        Fetcher
	BaseURL        string
	SeasonCacheTTL time.Duration
	Logger         *logging.Logger
}

type Client struct {
	fetcher Fetcher
	baseURL string
	logger  *logging.Logger
	seasons *cache.Store[string]
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		fetcher: cfg.Fetcher,
		baseURL: baseURL,
		logger:  logger.Named("fbref"),
		seasons: cache.NewStore[string](cfg.SeasonCacheTTL),
	}
}

// SeasonURL resolves the league's season page from its history page.
// Concurrent callers for the same season share one lookup.
func (c *Client) SeasonURL(ctx context.Context, lg league.League, year int) (string, error) {
	if !lg.HasFBref() {
		return "", fmt.Errorf("%w: league %s has no fbref history page", usecase.ErrInvalidInput, lg.Name)
	}
	return c.seasons.GetOrLoad(ctx, seasonKey(lg, year), func(ctx context.Context) (string, error) {
		return c.resolveSeasonURL(ctx, lg, year)
	})
}

func seasonKey(lg league.League, year int) string {
	return fmt.Sprintf("%s:%d", lg.Name, year)
}

// forgetSeasons drops every memoized season URL of lg.
func (c *Client) forgetSeasons(ctx context.Context, lg league.League) {
	c.seasons.DeletePrefix(ctx, lg.Name+":")
}

func (c *Client) resolveSeasonURL(ctx context.Context, lg league.League, year int) (string, error) {
	doc, err := c.document(ctx, lg.FBrefHistoryURL)
	if err != nil {
		return "", err
	}

	labels := league.FBrefSeasonLabels(year)
	var found string
	doc.Find(`th[data-stat="year"], th[data-stat="year_id"]`).EachWithBreak(func(_ int, th *goquery.Selection) bool {
		href, ok := th.Find("a[href]").First().Attr("href")
		if !ok || !slices.Contains(labels, strings.TrimSpace(th.Text())) {
			return true
		}
		for _, finder := range lg.FBrefFinders {
			if strings.Contains(href, finder) {
				found = c.absolute(href)
				return false
			}
		}
		return true
	})
	if found == "" {
		return "", fmt.Errorf("%w: %s %d", ErrSeasonNotFound, lg.Name, year)
	}
	return found, nil
}

func (c *Client) document(ctx context.Context, url string) (*goquery.Document, error) {
	body, err := c.fetcher.Get(ctx, url)
	if err != nil {
		return nil, crerr.Wrapf(err, "fetch %s", url)
	}
	return parseDocument(body)
}

func (c *Client) absolute(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return c.baseURL + "/" + strings.TrimLeft(href, "/")
}

func layoutChanged(format string, args ...any) error {
	return fmt.Errorf("%w: fbref: %s", usecase.ErrLayoutChanged, fmt.Sprintf(format, args...))
}
