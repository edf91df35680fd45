package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultPageLoadTimeout = 2 * time.Minute

// ChromeDriver drives a headless Chrome through the DevTools protocol.
type ChromeDriver struct {
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	timeout       time.Duration
	exec          runFunc
	closeOnce     sync.Once
}

type runFunc func(ctx context.Context, actions ...chromedp.Action) error

// NewChromeDriver launches Chrome and opens a blank tab. The browser lives
// until Close; ctx and the page load timeout only bound the launch.
func NewChromeDriver(ctx context.Context, opts DriverOptions) (Driver, error) {
	return newChromeDriver(ctx, opts, chromedp.Run)
}

func newChromeDriver(ctx context.Context, opts DriverOptions, exec runFunc) (*ChromeDriver, error) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("incognito", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1920, 1200),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer("http://"+string(opts.Proxy)))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	timeout := opts.PageLoadTimeout
	if timeout <= 0 {
		timeout = defaultPageLoadTimeout
	}
	d := &ChromeDriver{
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
		timeout:       timeout,
		exec:          exec,
	}

	// The first Run starts the browser process and ties it to the context it
	// is given, so it must run on browserCtx itself. The launch is bounded by
	// closing the driver instead.
	timer := time.AfterFunc(timeout, func() { _ = d.Close() })
	stop := context.AfterFunc(ctx, func() { _ = d.Close() })
	err := d.exec(d.browserCtx)
	timedOut := !timer.Stop()
	cancelled := !stop()
	switch {
	case cancelled && ctx.Err() != nil:
		err = ctx.Err()
	case timedOut:
		err = fmt.Errorf("no response within %s", timeout)
	}
	if err != nil {
		_ = d.Close()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}
	return d, nil
}

// runContext bounds a command by the page load timeout and by ctx.
func (d *ChromeDriver) runContext(ctx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithTimeout(d.browserCtx, d.timeout)
	stop := context.AfterFunc(ctx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}

func (d *ChromeDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := d.runContext(ctx)
	defer cancel()
	if err := d.exec(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	return d.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery))
}

func (d *ChromeDriver) PageSource(ctx context.Context) (string, error) {
	var html string
	if err := d.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (d *ChromeDriver) CurrentURL(ctx context.Context) (string, error) {
	var url string
	if err := d.run(ctx, chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (d *ChromeDriver) Click(ctx context.Context, selector string) error {
	return d.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible))
}

func (d *ChromeDriver) Close() error {
	d.closeOnce.Do(func() {
		d.browserCancel()
		d.allocCancel()
	})
	return nil
}
