// Package browser keeps one scraping browser alive across navigation
// failures, rotating proxies and user agents on every restart.
package browser

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/football-scraper/internal/domain/proxy"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

var (
	ErrSessionClosed = crerr.New("browser session closed")
	errBlocked       = crerr.New("anti-bot page served")
)

type State int

const (
	StateIdle State = iota
	StateNavigating
	StateFailed
	StateRestarting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateNavigating:
		return "navigating"
	case StateFailed:
		return "failed"
	case StateRestarting:
		return "restarting"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// DefaultDetectionMarkers are page fragments served instead of content when
// the scraper has been flagged.
var DefaultDetectionMarkers = []string{
	"Request unsuccessful. Incapsula incident ID",
	"Access Denied",
	"cf-browser-verification",
	"challenge-platform",
}

type SessionConfig struct {
	Factory DriverFactory
	// Proxies is nil for direct connections.
	Proxies          *proxy.Pool
	UserAgents       []string
	DetectionMarkers []string
	Headless         bool
	PageLoadTimeout  time.Duration
	RestartDelay     time.Duration
	MaxURLAttempts   int
	Logger           *logging.Logger
	// Sleep waits between a restart and the retry; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Session is owned by a single goroutine. State may be read concurrently.
type Session struct {
	cfg    SessionConfig
	logger *logging.Logger

	mu         sync.Mutex
	state      State
	driver     Driver
	proxy      proxy.Proxy
	uaIndex    int
	checkpoint func(ctx context.Context) error
}

func NewSession(cfg SessionConfig) *Session {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Factory == nil {
		cfg.Factory = NewChromeDriver
	}
	if len(cfg.UserAgents) == 0 {
		cfg.UserAgents = DefaultUserAgents
	}
	if cfg.DetectionMarkers == nil {
		cfg.DetectionMarkers = DefaultDetectionMarkers
	}
	if cfg.MaxURLAttempts < 1 {
		cfg.MaxURLAttempts = 10
	}
	if cfg.RestartDelay < 0 {
		cfg.RestartDelay = 0
	}
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}

	return &Session{
		cfg:    cfg,
		logger: logger.Named("session"),
		state:  StateIdle,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// SetCheckpoint registers fn to run on every transition into Restarting.
func (s *Session) SetCheckpoint(fn func(ctx context.Context) error) {
	s.mu.Lock()
	s.checkpoint = fn
	s.mu.Unlock()
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	from := s.state
	s.state = state
	s.mu.Unlock()
	if from != state {
		s.logger.Debug("session state changed", "from", from.String(), "to", state.String())
	}
}

// Get navigates to url, restarting the browser on failures until the page
// loads or the per-URL attempt budget is spent.
func (s *Session) Get(ctx context.Context, url string) error {
	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		switch s.State() {
		case StateClosed:
			return ErrSessionClosed
		case StateFailed:
			if err := s.restart(ctx); err != nil {
				return err
			}
		}
		if s.driver == nil {
			if err := s.start(ctx); err != nil {
				return err
			}
		}

		attempts++
		s.setState(StateNavigating)
		err := s.navigate(ctx, url)
		if err == nil {
			s.setState(StateIdle)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.setState(StateFailed)
			return ctxErr
		}

		s.setState(StateFailed)
		s.logger.WarnContext(ctx, "navigation failed",
			"url", url,
			"attempt", attempts,
			"proxy", string(s.proxy),
			"error", err,
		)
		if s.cfg.Proxies != nil && s.proxy != "" {
			s.cfg.Proxies.Invalidate(s.proxy)
		}
		if attempts >= s.cfg.MaxURLAttempts {
			return fmt.Errorf("%w: %s after %d attempts: %v", usecase.ErrRetriesExhausted, url, attempts, err)
		}
	}
}

func (s *Session) navigate(ctx context.Context, url string) error {
	if err := s.driver.Navigate(ctx, url); err != nil {
		return err
	}
	if len(s.cfg.DetectionMarkers) == 0 {
		return nil
	}
	html, err := s.driver.PageSource(ctx)
	if err != nil {
		return err
	}
	for _, marker := range s.cfg.DetectionMarkers {
		if marker != "" && strings.Contains(html, marker) {
			return fmt.Errorf("%w: %q", errBlocked, marker)
		}
	}
	return nil
}

// restart runs the checkpoint, discards the browser and waits before the
// next driver start.
func (s *Session) restart(ctx context.Context) error {
	s.setState(StateRestarting)

	s.mu.Lock()
	checkpoint := s.checkpoint
	s.mu.Unlock()
	if checkpoint != nil {
		if err := checkpoint(ctx); err != nil {
			return fmt.Errorf("checkpoint before restart: %w", err)
		}
	}

	s.discard()
	if err := s.cfg.Sleep(ctx, s.cfg.RestartDelay); err != nil {
		return err
	}
	return s.start(ctx)
}

// start launches a driver. Proxies that fail to start are invalidated and the
// next one is tried until the pool runs dry.
func (s *Session) start(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var p proxy.Proxy
		if s.cfg.Proxies != nil {
			next, err := s.cfg.Proxies.Next()
			if err != nil {
				return err
			}
			p = next
		}

		opts := DriverOptions{
			Proxy:           p,
			UserAgent:       s.nextUserAgent(),
			Headless:        s.cfg.Headless,
			PageLoadTimeout: s.cfg.PageLoadTimeout,
		}
		driver, err := s.cfg.Factory(ctx, opts)
		if err == nil {
			s.mu.Lock()
			s.driver = driver
			s.proxy = p
			s.mu.Unlock()
			s.logger.DebugContext(ctx, "browser started", "proxy", string(p), "user_agent", opts.UserAgent)
			return nil
		}

		if s.cfg.Proxies == nil {
			return fmt.Errorf("%w: start browser: %v", usecase.ErrDependencyUnavailable, err)
		}
		s.logger.WarnContext(ctx, "browser failed to start through proxy", "proxy", string(p), "error", err)
		s.cfg.Proxies.Invalidate(p)
	}
}

func (s *Session) nextUserAgent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ua := s.cfg.UserAgents[s.uaIndex%len(s.cfg.UserAgents)]
	s.uaIndex++
	return ua
}

func (s *Session) discard() {
	s.mu.Lock()
	driver := s.driver
	s.driver = nil
	s.proxy = ""
	s.mu.Unlock()
	if driver != nil {
		if err := driver.Close(); err != nil {
			s.logger.Warn("close browser failed", "error", err)
		}
	}
}

func (s *Session) PageSource(ctx context.Context) (string, error) {
	driver, err := s.current()
	if err != nil {
		return "", err
	}
	return driver.PageSource(ctx)
}

// Document parses the current page source.
func (s *Session) Document(ctx context.Context) (*goquery.Document, error) {
	html, err := s.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page source: %w", err)
	}
	return doc, nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	driver, err := s.current()
	if err != nil {
		return "", err
	}
	return driver.CurrentURL(ctx)
}

func (s *Session) Click(ctx context.Context, selector string) error {
	driver, err := s.current()
	if err != nil {
		return err
	}
	return driver.Click(ctx, selector)
}

func (s *Session) current() (Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil, ErrSessionClosed
	}
	if s.driver == nil {
		return nil, fmt.Errorf("browser session has no page loaded")
	}
	return s.driver, nil
}

// Close discards the browser. The session cannot be used afterwards.
func (s *Session) Close() error {
	s.discard()
	s.setState(StateClosed)
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
