// Package whoscored discovers match links and extracts match centre payloads
// from whoscored.com through a supervised browser session.
package whoscored

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

const (
	defaultBaseURL             = "https://www.whoscored.com"
	defaultPaginationWait      = time.Second
	defaultMaxPaginationCycles = 400
	prevWeekButton             = "#dayChangeBtn-prev"
)

var ErrSeasonNotFound = crerr.New("whoscored season not found")

// Navigator is the part of browser.Session the client drives.
type Navigator interface {
	Get(ctx context.Context, url string) error
	Document(ctx context.Context) (*goquery.Document, error)
	PageSource(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)
	Click(ctx context.Context, selector string) error
}

type ClientConfig struct {
	Session             Navigator
	BaseURL             string
	PaginationWait      time.Duration
	MaxPaginationCycles int
	Logger              *logging.Logger
	Sleep               func(ctx context.Context, d time.Duration) error
}

type Client struct {
	session   Navigator
	baseURL   string
	wait      time.Duration
	maxCycles int
	logger    *logging.Logger
	sleep     func(ctx context.Context, d time.Duration) error
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
	wait := cfg.PaginationWait
	if wait <= 0 {
		wait = defaultPaginationWait
	}
	maxCycles := cfg.MaxPaginationCycles
	if maxCycles <= 0 {
		maxCycles = defaultMaxPaginationCycles
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	return &Client{
		session:   cfg.Session,
		baseURL:   baseURL,
		wait:      wait,
		maxCycles: maxCycles,
		logger:    logger.Named("whoscored"),
		sleep:     sleep,
	}
}

// SeasonURL reads the season dropdown on the league page and returns the
// option matching the league's label for year.
func (c *Client) SeasonURL(ctx context.Context, lg league.League, year int) (string, error) {
	if !lg.HasWhoScored() {
		return "", fmt.Errorf("%w: league %s has no whoscored page", usecase.ErrInvalidInput, lg.Name)
	}
	if err := c.session.Get(ctx, lg.WhoScoredURL); err != nil {
		return "", crerr.Wrapf(err, "open league page %s", lg.Name)
	}
	doc, err := c.session.Document(ctx)
	if err != nil {
		return "", err
	}

	label := lg.SeasonLabel(year)
	var found string
	doc.Find("select#seasons option").EachWithBreak(func(_ int, opt *goquery.Selection) bool {
		if strings.TrimSpace(opt.Text()) != label {
			return true
		}
		if value, ok := opt.Attr("value"); ok && value != "" {
			found = c.absolute(value)
			return false
		}
		return true
	})
	if found == "" {
		return "", fmt.Errorf("%w: %s %s", ErrSeasonNotFound, lg.Name, label)
	}
	return found, nil
}

func (c *Client) absolute(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	return c.baseURL + "/" + strings.TrimLeft(href, "/")
}

func layoutChanged(format string, args ...any) error {
	return fmt.Errorf("%w: whoscored: %s", usecase.ErrLayoutChanged, fmt.Sprintf(format, args...))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
