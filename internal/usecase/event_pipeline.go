package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/lookup"
	"github.com/riskibarqy/football-scraper/internal/domain/match"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	"github.com/riskibarqy/football-scraper/internal/platform/id"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
)

// lookupTables maps each dictionary to its Lookup_Tables value column.
var lookupTables = map[string]string{
	"Qualifiers": "qualifier",
	"Referees":   "referee",
	"Stadiums":   "stadium",
	"Players":    "player",
	"Teams":      "team",
}

type EventPipelineConfig struct {
	Source      MatchSource
	Checkpoints Checkpointer
	Cache       EventCache
	Lookups     lookup.Repository
	Writer      TableWriter
	Warehouse   warehouse.Repository
	IDs         id.Generator
	Logger      *logging.Logger
}

type EventPipeline struct {
	source      MatchSource
	checkpoints Checkpointer
	cache       EventCache
	lookups     lookup.Repository
	writer      TableWriter
	warehouse   warehouse.Repository
	ids         id.Generator
	logger      *logging.Logger
}

func NewEventPipeline(cfg EventPipelineConfig) *EventPipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ids := cfg.IDs
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	return &EventPipeline{
		source:      cfg.Source,
		checkpoints: cfg.Checkpoints,
		cache:       cfg.Cache,
		lookups:     cfg.Lookups,
		writer:      cfg.Writer,
		warehouse:   cfg.Warehouse,
		ids:         ids,
		logger:      logger.Named("events"),
	}
}

type EventRunInput struct {
	Leagues []league.League
	Years   []int
}

type SeasonSummary struct {
	League  string
	Year    int
	Matches int
	Events  int
	Dropped int
	Skipped bool
}

type EventRunResult struct {
	RunID   string
	Seasons []SeasonSummary
}

// Run scrapes, normalizes and writes every league season in order. Lookups
// are loaded once, threaded through every season and written at the end.
func (p *EventPipeline) Run(ctx context.Context, input EventRunInput) (EventRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventPipeline.Run")
	defer span.End()

	if len(input.Leagues) == 0 || len(input.Years) == 0 {
		return EventRunResult{}, fmt.Errorf("%w: leagues and years are required", ErrInvalidInput)
	}
	runID, err := p.ids.NewID()
	if err != nil {
		return EventRunResult{}, err
	}
	span.SetAttributes(attribute.String("run_id", runID))
	logger := p.logger.With("run_id", runID)

	lookups := lookup.NewSet()
	if err := lookups.Load(ctx, p.lookups); err != nil {
		return EventRunResult{}, fmt.Errorf("load lookups: %w", err)
	}

	result := EventRunResult{RunID: runID}
	for _, lg := range input.Leagues {
		if !lg.HasWhoScored() {
			logger.WarnContext(ctx, "league has no whoscored page, skipping", "league", lg.Name)
			continue
		}
		for _, year := range input.Years {
			summary, err := p.runSeason(ctx, logger, lookups, lg, year)
			if err != nil {
				if saveErr := lookups.Save(context.WithoutCancel(ctx), p.lookups); saveErr != nil {
					logger.ErrorContext(ctx, "persist lookups failed", "error", saveErr)
				}
				return result, fmt.Errorf("%s %d: %w", lg.Name, year, err)
			}
			result.Seasons = append(result.Seasons, summary)
		}
	}

	if err := p.writeLookups(ctx, lookups); err != nil {
		return result, err
	}
	logger.InfoContext(ctx, "event run finished", "seasons", len(result.Seasons))
	return result, nil
}

func (p *EventPipeline) runSeason(ctx context.Context, logger *logging.Logger, lookups *lookup.Set, lg league.League, year int) (SeasonSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.EventPipeline.runSeason")
	defer span.End()
	span.SetAttributes(attribute.String("league", lg.Name), attribute.Int("year", year))

	logger = logger.With("league", lg.Name, "year", year)
	summary := SeasonSummary{League: lg.Name, Year: year}

	season, dropped, err := p.scrapeSeason(ctx, logger, lg, year)
	summary.Dropped = dropped
	if err != nil {
		return summary, err
	}

	scraped := season.Scraped()
	if len(scraped) == 0 {
		logger.InfoContext(ctx, "no matches found")
		summary.Skipped = true
		return summary, p.cache.DeleteSeason(ctx, lg, year)
	}

	raws, err := season.Raws()
	if err != nil {
		return summary, err
	}
	players, teams := match.SeasonDirectory(raws)
	lookups.Players.Merge(players)
	lookups.Teams.Merge(teams)

	normalizer := match.NewNormalizer(lookups.Qualifiers)
	var (
		events []match.Event
		infos  []match.Info
	)
	for _, raw := range raws {
		matchEvents, err := normalizer.Normalize(raw)
		if err != nil {
			return summary, fmt.Errorf("normalize match %d: %w", raw.MatchID, err)
		}
		events = append(events, matchEvents...)

		info, err := match.BuildInfo(raw, lookups.Referees, lookups.Stadiums)
		if err != nil {
			return summary, fmt.Errorf("match info %d: %w", raw.MatchID, err)
		}
		infos = append(infos, info)
	}
	summary.Matches = len(raws)
	summary.Events = len(events)

	eventsRef := warehouse.TableRef{Dataset: warehouse.DatasetEvents, Name: match.TableName(lg.Name, year)}
	if _, err := p.writer.Write(ctx, eventsRef, match.EventTable(events), warehouse.WriteAppend); err != nil {
		return summary, err
	}
	matchesRef := warehouse.TableRef{Dataset: warehouse.DatasetLookups, Name: "Matches"}
	if _, err := p.writer.Write(ctx, matchesRef, match.InfoTable(infos), warehouse.WriteAppend); err != nil {
		return summary, err
	}

	if err := p.cache.MarkScraped(ctx, scraped); err != nil {
		return summary, err
	}
	if err := p.cache.DeleteSeason(ctx, lg, year); err != nil {
		return summary, err
	}
	if err := lookups.Save(ctx, p.lookups); err != nil {
		return summary, fmt.Errorf("save lookups: %w", err)
	}

	if p.warehouse != nil {
		size, err := p.warehouse.DatasetSize(ctx, warehouse.DatasetEvents)
		if err != nil {
			logger.WarnContext(ctx, "dataset size unavailable", "error", err)
		} else {
			logger.InfoContext(ctx, "dataset size", "dataset", warehouse.DatasetEvents, "bytes", size)
		}
	}
	logger.InfoContext(ctx, "season written", "matches", summary.Matches, "events", summary.Events)
	return summary, nil
}

// scrapeSeason fills the season cache until no match is pending. Progress is
// saved before every session restart and on every error exit.
func (p *EventPipeline) scrapeSeason(ctx context.Context, logger *logging.Logger, lg league.League, year int) (match.Season, int, error) {
	season, ok, err := p.cache.LoadSeason(ctx, lg, year)
	if err != nil {
		return nil, 0, err
	}
	if !ok {
		season, err = p.discoverSeason(ctx, logger, lg, year)
		if err != nil {
			return nil, 0, err
		}
	}

	save := func(ctx context.Context) error {
		return p.cache.SaveSeason(ctx, lg, year, season)
	}
	if p.checkpoints != nil {
		p.checkpoints.SetCheckpoint(save)
		defer p.checkpoints.SetCheckpoint(nil)
	}

	pending := season.Pending()
	logger.InfoContext(ctx, "scraping matches", "pending", len(pending), "total", len(season))
	dropped := 0
	for i, url := range pending {
		raw, err := p.source.ScrapeMatch(ctx, url)
		if errors.Is(err, ErrMatchUnavailable) {
			logger.InfoContext(ctx, "match not played yet", "url", url)
			season.Drop(url)
			dropped++
			continue
		}
		if err != nil {
			if saveErr := save(context.WithoutCancel(ctx)); saveErr != nil {
				logger.ErrorContext(ctx, "persist season failed", "error", saveErr)
			}
			return nil, dropped, fmt.Errorf("scrape match %d/%d %s: %w", i+1, len(pending), url, err)
		}
		season.Record(url, raw)
		logger.Debug("match scraped", "url", url, "progress", fmt.Sprintf("%d/%d", i+1, len(pending)))
	}

	if err := save(ctx); err != nil {
		return nil, dropped, err
	}
	return season, dropped, nil
}

func (p *EventPipeline) discoverSeason(ctx context.Context, logger *logging.Logger, lg league.League, year int) (match.Season, error) {
	links, err := p.source.MatchLinks(ctx, lg, year)
	if err != nil {
		return nil, fmt.Errorf("discover match links: %w", err)
	}
	done, err := p.cache.ScrapedLinks(ctx)
	if err != nil {
		return nil, err
	}

	fresh := make([]string, 0, len(links))
	for _, link := range links {
		if _, ok := done[link]; !ok {
			fresh = append(fresh, link)
		}
	}
	logger.InfoContext(ctx, "match links found", "links", len(links), "new", len(fresh))

	season := match.NewSeason(fresh)
	if err := p.cache.SaveSeason(ctx, lg, year, season); err != nil {
		return nil, err
	}
	return season, nil
}

func (p *EventPipeline) writeLookups(ctx context.Context, lookups *lookup.Set) error {
	if err := lookups.Save(ctx, p.lookups); err != nil {
		return fmt.Errorf("save lookups: %w", err)
	}

	tables := make(map[string]dataset.Table, len(lookupTables))
	for _, store := range lookups.Stores() {
		tables[store.Name()] = store.Table(lookupTables[store.Name()])
	}
	for _, dir := range lookups.Directories() {
		tables[dir.Name()] = dir.Table(lookupTables[dir.Name()])
	}
	for _, name := range []string{"Qualifiers", "Referees", "Stadiums", "Players", "Teams"} {
		ref := warehouse.TableRef{Dataset: warehouse.DatasetLookups, Name: name}
		if _, err := p.writer.Write(ctx, ref, tables[name], warehouse.WriteTruncate); err != nil {
			return err
		}
	}
	return nil
}
