package browser

import (
	"context"
	"time"

	"github.com/riskibarqy/football-scraper/internal/domain/proxy"
)

// Driver is one live browser instance.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	PageSource(ctx context.Context) (string, error)
	CurrentURL(ctx context.Context) (string, error)
	Click(ctx context.Context, selector string) error
	Close() error
}

type DriverOptions struct {
	// Proxy is empty for a direct connection.
	Proxy           proxy.Proxy
	UserAgent       string
	Headless        bool
	PageLoadTimeout time.Duration
}

// DriverFactory starts a browser. An error means the browser could not be
// launched with the given options.
type DriverFactory func(ctx context.Context, opts DriverOptions) (Driver, error)
