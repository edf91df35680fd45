// Package httpfetch is a throttled fasthttp GET client with proxy rotation,
// retries and a circuit breaker.
package httpfetch

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpproxy"

	"github.com/riskibarqy/football-scraper/internal/domain/proxy"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
	"github.com/riskibarqy/football-scraper/internal/platform/resilience"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

const maxBodySize = 16 << 20

var ErrTransient = crerr.New("transient fetch failure")

// StatusError is a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status=%d", e.URL, e.StatusCode)
}

type Config struct {
	Name    string
	Timeout time.Duration
	// Wait is the minimum spacing between two requests.
	Wait           time.Duration
	MaxRetries     int
	UserAgent      string
	Proxies        *proxy.Pool
	CircuitBreaker resilience.CircuitBreakerConfig
	Logger         *logging.Logger
	Sleep          func(ctx context.Context, d time.Duration) error
}

type Client struct {
	name           string
	timeout        time.Duration
	wait           time.Duration
	maxRetries     int
	userAgent      string
	proxies        *proxy.Pool
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	sleep          func(ctx context.Context, d time.Duration) error

	mu      sync.Mutex
	next    time.Time
	clients map[proxy.Proxy]*fasthttp.Client
}

func NewClient(cfg Config) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "httpfetch"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = sleepContext
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		name:           name,
		timeout:        timeout,
		wait:           cfg.Wait,
		maxRetries:     max(cfg.MaxRetries, 0),
		userAgent:      cfg.UserAgent,
		proxies:        cfg.Proxies,
		logger:         logger.Named(name),
		breaker:        resilience.NewCircuitBreaker(breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
		sleep:          sleep,
		clients:        make(map[proxy.Proxy]*fasthttp.Client),
	}
}

// Get fetches url and returns a copy of the response body.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	if c.circuitEnabled {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "circuit breaker rejected request", "state", c.breaker.State(), "url", url)
			return nil, fmt.Errorf("%w: %s is temporarily unavailable", usecase.ErrDependencyUnavailable, c.name)
		}
	}

	body, err := c.execute(ctx, url)
	if c.circuitEnabled {
		if err != nil && stderrors.Is(err, ErrTransient) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
	}
	return body, err
}

func (c *Client) execute(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.throttle(ctx); err != nil {
			return nil, err
		}

		p, client, err := c.client()
		if err != nil {
			return nil, err
		}

		body, retryAfter, err := c.do(ctx, client, url)
		if err == nil {
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = err
		if !stderrors.Is(err, ErrTransient) {
			return nil, err
		}
		if p != "" && retryAfter == 0 {
			c.dropProxy(p)
		}
		if attempt == c.maxRetries {
			break
		}

		backoff := time.Duration(attempt+1) * time.Second
		if retryAfter > 0 {
			backoff = retryAfter
		}
		c.logger.DebugContext(ctx, "retrying request", "url", url, "attempt", attempt+1, "backoff", backoff, "error", err)
		if err := c.sleep(ctx, backoff); err != nil {
			return nil, err
		}
	}

	c.logger.WarnContext(ctx, "request failed", "url", url, "error", lastErr)
	return nil, lastErr
}

func (c *Client) do(ctx context.Context, client *fasthttp.Client, url string) ([]byte, time.Duration, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Encoding", "gzip")
	if c.userAgent != "" {
		req.Header.SetUserAgent(c.userAgent)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, 0, context.DeadlineExceeded
	}

	if err := client.DoTimeout(req, resp, timeout); err != nil {
		return nil, 0, fmt.Errorf("%w: GET %s: %v", ErrTransient, url, err)
	}

	status := resp.StatusCode()
	if status < 200 || status >= 300 {
		statusErr := &StatusError{URL: url, StatusCode: status}
		if isRetryableStatus(status) {
			var retryAfter time.Duration
			if status == fasthttp.StatusTooManyRequests {
				retryAfter = parseRetryAfter(string(resp.Header.Peek("Retry-After")), time.Now())
			}
			return nil, retryAfter, fmt.Errorf("%w: %w", ErrTransient, statusErr)
		}
		return nil, 0, statusErr
	}

	body, err := resp.BodyUncompressed()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: decode body of %s: %v", ErrTransient, url, err)
	}
	return bytes.Clone(body), 0, nil
}

// throttle reserves the next request slot and waits for it.
func (c *Client) throttle(ctx context.Context) error {
	if c.wait <= 0 {
		return nil
	}
	c.mu.Lock()
	now := time.Now()
	slot := c.next
	if slot.Before(now) {
		slot = now
	}
	c.next = slot.Add(c.wait)
	c.mu.Unlock()
	return c.sleep(ctx, slot.Sub(now))
}

func (c *Client) client() (proxy.Proxy, *fasthttp.Client, error) {
	var p proxy.Proxy
	if c.proxies != nil {
		next, err := c.proxies.Next()
		if err != nil {
			return "", nil, err
		}
		p = next
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if client, ok := c.clients[p]; ok {
		return p, client, nil
	}
	client := &fasthttp.Client{
		Name:                     c.name,
		ReadTimeout:              c.timeout,
		WriteTimeout:             c.timeout,
		MaxResponseBodySize:      maxBodySize,
		NoDefaultUserAgentHeader: c.userAgent != "",
	}
	if p != "" {
		client.Dial = fasthttpproxy.FasthttpHTTPDialerTimeout(string(p), c.timeout)
	}
	c.clients[p] = client
	return p, client, nil
}

func (c *Client) dropProxy(p proxy.Proxy) {
	c.proxies.Invalidate(p)
	c.mu.Lock()
	delete(c.clients, p)
	c.mu.Unlock()
	c.logger.Debug("proxy invalidated", "proxy", string(p), "remaining", c.proxies.Len())
}

func isRetryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}

// parseRetryAfter reads delta-seconds or an HTTP date. Unparseable values
// give zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		if seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
	}
	return 0
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
