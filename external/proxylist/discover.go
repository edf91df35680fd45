// Package proxylist scrapes free public proxy lists and keeps the entries
// that actually relay traffic.
package proxylist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/football-scraper/internal/domain/proxy"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

const (
	defaultCheckURL     = "http://httpbin.org/ip"
	defaultWorkers      = 50
	defaultProbeTimeout = 5 * time.Second
	defaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/75.0.3770.142 Safari/537.36"
)

var DefaultSources = []string{
	"https://www.sslproxies.org/",
	"https://free-proxy-list.net/",
}

type Config struct {
	Sources      []string
	CheckURL     string
	Workers      int
	ProbeTimeout time.Duration
	UserAgent    string
	Logger       *logging.Logger
}

type Discoverer struct {
	sources      []string
	checkURL     string
	workers      int
	probeTimeout time.Duration
	userAgent    string
	httpClient   *http.Client
	logger       *logging.Logger
}

func NewDiscoverer(cfg Config) *Discoverer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	sources := cfg.Sources
	if len(sources) == 0 {
		sources = DefaultSources
	}
	checkURL := strings.TrimSpace(cfg.CheckURL)
	if checkURL == "" {
		checkURL = defaultCheckURL
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	timeout := cfg.ProbeTimeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Discoverer{
		sources:      sources,
		checkURL:     checkURL,
		workers:      workers,
		probeTimeout: timeout,
		userAgent:    userAgent,
		httpClient:   &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger.Named("proxylist"),
	}
}

// Discover scrapes every source and returns the candidates that pass a probe.
// A source that cannot be read is skipped; no candidates at all is an error.
func (d *Discoverer) Discover(ctx context.Context) ([]proxy.Proxy, error) {
	seen := make(map[proxy.Proxy]struct{})
	var candidates []proxy.Proxy
	for _, source := range d.sources {
		found, err := d.Scrape(ctx, source)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			d.logger.WarnContext(ctx, "proxy source unavailable", "source", source, "error", err)
			continue
		}
		for _, p := range found {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no proxy candidates from %d sources", usecase.ErrDependencyUnavailable, len(d.sources))
	}

	valid, err := d.Validate(ctx, candidates)
	if err != nil {
		return nil, err
	}
	d.logger.InfoContext(ctx, "proxies validated", "candidates", len(candidates), "valid", len(valid))
	return valid, nil
}

// Scrape reads the ip and port columns of every table row on a source page.
func (d *Discoverer) Scrape(ctx context.Context, source string) ([]proxy.Proxy, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, crerr.Wrapf(err, "build request %s", source)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, crerr.Wrapf(err, "get %s", source)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, crerr.Newf("get %s: status %d", source, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, crerr.Wrapf(err, "parse %s", source)
	}
	return parseRows(doc), nil
}

func parseRows(doc *goquery.Document) []proxy.Proxy {
	var out []proxy.Proxy
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return
		}
		ip := strings.TrimSpace(cells.Eq(0).Text())
		port := strings.TrimSpace(cells.Eq(1).Text())
		if ip == "" || port == "" {
			return
		}
		if p := proxy.Proxy(ip + ":" + port); p.Valid() {
			out = append(out, p)
		}
	})
	return out
}

// Validate probes candidates concurrently and returns the working ones sorted.
func (d *Discoverer) Validate(ctx context.Context, candidates []proxy.Proxy) ([]proxy.Proxy, error) {
	pool, err := ants.NewPool(d.workers)
	if err != nil {
		return nil, fmt.Errorf("create probe pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		valid   []proxy.Proxy
		workers sync.WaitGroup
	)
	for _, candidate := range candidates {
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if !d.probe(ctx, candidate) {
				return
			}
			mu.Lock()
			valid = append(valid, candidate)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit probe: %w", err)
		}
	}
	workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	slices.Sort(valid)
	return valid, nil
}

func (d *Discoverer) probe(ctx context.Context, p proxy.Proxy) bool {
	proxyURL, err := url.Parse("http://" + string(p))
	if err != nil {
		return false
	}
	client := &http.Client{
		Timeout:   d.probeTimeout,
		Transport: otelhttp.NewTransport(&http.Transport{
			Proxy:             http.ProxyURL(proxyURL),
			DisableKeepAlives: true,
		}),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.checkURL, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		d.logger.Debug("proxy probe failed", "proxy", string(p), "error", err)
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return false
	}
	var payload struct {
		Origin string `json:"origin"`
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return false
	}
	return reportsOwnIP(payload.Origin, p.Host())
}

// reportsOwnIP checks the first address of an origin list such as
// "1.2.3.4, 10.0.0.1" against host.
func reportsOwnIP(origin, host string) bool {
	first, _, _ := strings.Cut(origin, ",")
	return host != "" && strings.TrimSpace(first) == host
}
