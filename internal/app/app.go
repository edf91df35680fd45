// Package app wires configuration into the scraping pipelines.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/football-scraper/external/fbref"
	"github.com/riskibarqy/football-scraper/external/positionsheet"
	"github.com/riskibarqy/football-scraper/external/proxylist"
	"github.com/riskibarqy/football-scraper/external/whoscored"
	"github.com/riskibarqy/football-scraper/internal/config"
	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/proxy"
	"github.com/riskibarqy/football-scraper/internal/domain/reconcile"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	"github.com/riskibarqy/football-scraper/internal/infrastructure/browser"
	"github.com/riskibarqy/football-scraper/internal/infrastructure/httpfetch"
	"github.com/riskibarqy/football-scraper/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/football-scraper/internal/infrastructure/repository/filestore"
	"github.com/riskibarqy/football-scraper/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-scraper/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
	"github.com/riskibarqy/football-scraper/internal/platform/resilience"
	"github.com/riskibarqy/football-scraper/internal/usecase"
)

const warehouseCacheTTL = 10 * time.Minute

// App builds the pipelines on demand. Browser sessions and DB handles live
// only for the run that opened them.
type App struct {
	cfg     config.Config
	logger  *logging.Logger
	files   *filestore.Store
	leagues *usecase.LeagueService

	proxyOnce sync.Once
	proxies   *proxy.Pool
	proxyErr  error
}

func New(cfg config.Config, logger *logging.Logger) (*App, error) {
	if logger == nil {
		logger = logging.Default()
	}

	catalog, err := memory.NewLeagueCatalog()
	if err != nil {
		return nil, fmt.Errorf("load league catalog: %w", err)
	}

	return &App{
		cfg:     cfg,
		logger:  logger,
		files:   filestore.New(cfg.DataDir),
		leagues: usecase.NewLeagueService(cache.NewLeagueRepository(catalog, 0)),
	}, nil
}

func (a *App) ListLeagues(ctx context.Context) ([]league.League, error) {
	return a.leagues.ListLeagues(ctx)
}

func (a *App) ResolveLeagues(ctx context.Context, names []string) ([]league.League, error) {
	return a.leagues.ResolveLeagues(ctx, names)
}

func (a *App) RunEvents(ctx context.Context, input usecase.EventRunInput, dryRun bool) (usecase.EventRunResult, error) {
	repo, closeRepo, err := a.openWarehouse(ctx, dryRun)
	if err != nil {
		return usecase.EventRunResult{}, err
	}
	defer closeRepo()

	proxies, err := a.proxyPool(ctx)
	if err != nil {
		return usecase.EventRunResult{}, err
	}

	session := browser.NewSession(browser.SessionConfig{
		Proxies:          proxies,
		UserAgents:       a.cfg.SessionUserAgents,
		DetectionMarkers: nonEmpty(a.cfg.SessionDetectionMarkers),
		Headless:         a.cfg.SessionHeadless,
		PageLoadTimeout:  a.cfg.SessionPageLoadTimeout,
		RestartDelay:     a.cfg.SessionRestartDelay,
		MaxURLAttempts:   a.cfg.SessionMaxURLAttempts,
		Logger:           a.logger,
	})
	defer func() {
		if err := session.Close(); err != nil {
			a.logger.Warn("close browser session failed", "error", err)
		}
	}()

	source := whoscored.NewClient(whoscored.ClientConfig{
		Session:             session,
		BaseURL:             a.cfg.WhoScoredBaseURL,
		PaginationWait:      a.cfg.WhoScoredPaginationWait,
		MaxPaginationCycles: a.cfg.WhoScoredMaxPaginationCycles,
		Logger:              a.logger,
	})

	pipeline := usecase.NewEventPipeline(usecase.EventPipelineConfig{
		Source:      source,
		Checkpoints: session,
		Cache:       a.files,
		Lookups:     a.files,
		Writer:      usecase.NewWarehouseWriter(repo, a.logger),
		Warehouse:   repo,
		Logger:      a.logger,
	})
	return pipeline.Run(ctx, input)
}

func (a *App) RunStats(ctx context.Context, input usecase.StatsRunInput, dryRun bool) (usecase.StatsRunResult, error) {
	repo, closeRepo, err := a.openWarehouse(ctx, dryRun)
	if err != nil {
		return usecase.StatsRunResult{}, err
	}
	defer closeRepo()

	var proxies *proxy.Pool
	if a.cfg.FBrefUseProxy {
		if proxies, err = a.proxyPool(ctx); err != nil {
			return usecase.StatsRunResult{}, err
		}
	}

	fetcher := httpfetch.NewClient(httpfetch.Config{
		Name:       "fbref",
		Timeout:    a.cfg.FBrefTimeout,
		Wait:       a.cfg.FBrefWait,
		MaxRetries: a.cfg.FBrefMaxRetries,
		Proxies:    proxies,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          a.cfg.FBrefCircuitEnabled,
			FailureThreshold: a.cfg.FBrefCircuitFailureCount,
			OpenTimeout:      a.cfg.FBrefCircuitOpenTimeout,
			HalfOpenMaxReq:   a.cfg.FBrefCircuitHalfOpenMaxReq,
		},
		Logger: a.logger,
	})

	var positions usecase.PositionSource
	if a.cfg.PositionSheetURL != "" {
		positions = positionsheet.New(fetcher, a.cfg.PositionSheetURL, a.logger)
	}

	pipeline := usecase.NewStatsPipeline(usecase.StatsPipelineConfig{
		Source: fbref.NewClient(fbref.ClientConfig{
			Fetcher:        fetcher,
			BaseURL:        a.cfg.FBrefBaseURL,
			SeasonCacheTTL: a.cfg.FBrefSeasonCacheTTL,
			Logger:         a.logger,
		}),
		Exporter:  a.files,
		Positions: positions,
		Writer:    usecase.NewWarehouseWriter(repo, a.logger),
		Matcher:   reconcile.NewMatcher(a.cfg.ReconcileMinSimilarity),
		Logger:    a.logger,
	})
	return pipeline.Run(ctx, input)
}

// DiscoverProxies always scrapes the proxy sources, whatever PROXY_ENABLED says.
func (a *App) DiscoverProxies(ctx context.Context) ([]proxy.Proxy, error) {
	return a.discoverer().Discover(ctx)
}

// proxyPool discovers proxies once per process. It returns nil for direct
// connections.
func (a *App) proxyPool(ctx context.Context) (*proxy.Pool, error) {
	if !a.cfg.ProxyEnabled {
		return nil, nil
	}
	a.proxyOnce.Do(func() {
		found, err := a.discoverer().Discover(ctx)
		if err != nil {
			a.proxyErr = fmt.Errorf("discover proxies: %w", err)
			return
		}
		a.proxies = proxy.NewPool(found)
		a.logger.InfoContext(ctx, "proxy pool ready", "proxies", a.proxies.Len())
	})
	return a.proxies, a.proxyErr
}

func (a *App) discoverer() *proxylist.Discoverer {
	return proxylist.NewDiscoverer(proxylist.Config{
		Sources:      a.cfg.ProxySources,
		CheckURL:     a.cfg.ProxyCheckURL,
		Workers:      a.cfg.ProxyProbeWorkers,
		ProbeTimeout: a.cfg.ProxyProbeTimeout,
		Logger:       a.logger,
	})
}

// openWarehouse returns the configured repository behind a read cache.
// Dry runs always write to memory.
func (a *App) openWarehouse(ctx context.Context, dryRun bool) (warehouse.Repository, func(), error) {
	if dryRun || a.cfg.WarehouseBackend == config.BackendMemory {
		a.logger.InfoContext(ctx, "using in-memory warehouse", "dry_run", dryRun)
		return cache.NewWarehouseRepository(memory.NewWarehouseRepository(), warehouseCacheTTL), func() {}, nil
	}

	db, err := openWarehouseDB(ctx, a.cfg.DBURL, a.cfg.DBDisablePreparedBinary)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", usecase.ErrDependencyUnavailable, err)
	}
	closeDB := func() {
		if err := db.Close(); err != nil {
			a.logger.Warn("close warehouse db failed", "error", err)
		}
	}
	return cache.NewWarehouseRepository(postgres.NewWarehouseRepository(db), warehouseCacheTTL), closeDB, nil
}

func nonEmpty(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	return values
}
