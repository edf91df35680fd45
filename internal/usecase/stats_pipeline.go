package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/reconcile"
	"github.com/riskibarqy/football-scraper/internal/domain/stats"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	"github.com/riskibarqy/football-scraper/internal/platform/id"
	"github.com/riskibarqy/football-scraper/internal/platform/logging"
)

// Squad logs need this many filled cells to count as a played match.
const squadLogMinFilled = 35

// Keys of the per-league scrape results, concatenated across leagues.
const (
	resultSquad       = "squad"
	resultSquadGKs    = "squad_gks"
	resultAgainst     = "against"
	resultAgainstGKs  = "against_gks"
	resultPlayerStats = "player_stats"
	resultPlayerGK    = "player_gk"
	resultPlayerLogs  = "player_logs"
	resultShots       = "shots"
	resultSquadLogs   = "squad_logs"
)

var leagueResultKeys = []string{
	resultSquad, resultSquadGKs,
	resultAgainst, resultAgainstGKs,
	resultPlayerStats, resultPlayerGK,
	resultPlayerLogs, resultShots,
}

type StatsPipelineConfig struct {
	Source    StatsSource
	Exporter  CSVExporter
	Positions PositionSource
	Writer    TableWriter
	Matcher   *reconcile.Matcher
	IDs       id.Generator
	Logger    *logging.Logger
}

type StatsPipeline struct {
	source    StatsSource
	exporter  CSVExporter
	positions PositionSource
	writer    TableWriter
	matcher   *reconcile.Matcher
	ids       id.Generator
	logger    *logging.Logger
}

func NewStatsPipeline(cfg StatsPipelineConfig) *StatsPipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ids := cfg.IDs
	if ids == nil {
		ids = id.NewUUIDGenerator()
	}
	matcher := cfg.Matcher
	if matcher == nil {
		matcher = reconcile.NewMatcher(reconcile.DefaultMinSimilarity)
	}
	return &StatsPipeline{
		source:    cfg.Source,
		exporter:  cfg.Exporter,
		positions: cfg.Positions,
		writer:    cfg.Writer,
		matcher:   matcher,
		ids:       ids,
		logger:    logger.Named("stats"),
	}
}

type StatsRunInput struct {
	Leagues []league.League
	Years   []int
	Mode    warehouse.WriteMode
}

type StatsTableSummary struct {
	Name    string
	Rows    int
	CSVPath string
	Write   warehouse.WriteResult
}

type StatsYearSummary struct {
	Year   int
	Tables []StatsTableSummary
}

type StatsRunResult struct {
	RunID string
	Years []StatsYearSummary
}

// Run scrapes every year for all leagues at once, then reconciles, exports
// and writes the year's tables before moving on.
func (p *StatsPipeline) Run(ctx context.Context, input StatsRunInput) (StatsRunResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsPipeline.Run")
	defer span.End()

	if len(input.Years) == 0 {
		return StatsRunResult{}, fmt.Errorf("%w: years are required", ErrInvalidInput)
	}
	if _, err := warehouse.ParseWriteMode(string(input.Mode)); err != nil {
		return StatsRunResult{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	leagues := make([]league.League, 0, len(input.Leagues))
	for _, lg := range input.Leagues {
		if !lg.HasFBref() {
			p.logger.WarnContext(ctx, "league has no fbref history, skipping", "league", lg.Name)
			continue
		}
		leagues = append(leagues, lg)
	}
	if len(leagues) == 0 {
		return StatsRunResult{}, fmt.Errorf("%w: no league with fbref stats", ErrInvalidInput)
	}

	runID, err := p.ids.NewID()
	if err != nil {
		return StatsRunResult{}, err
	}
	span.SetAttributes(attribute.String("run_id", runID))
	logger := p.logger.With("run_id", runID)

	result := StatsRunResult{RunID: runID}
	for _, year := range input.Years {
		summary, err := p.runYear(ctx, logger.With("year", year), leagues, year, input.Mode)
		if err != nil {
			return result, fmt.Errorf("stats %d: %w", year, err)
		}
		result.Years = append(result.Years, summary)
	}
	logger.InfoContext(ctx, "stats run finished", "years", len(result.Years))
	return result, nil
}

func (p *StatsPipeline) runYear(ctx context.Context, logger *logging.Logger, leagues []league.League, year int, mode warehouse.WriteMode) (StatsYearSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.StatsPipeline.runYear")
	defer span.End()
	span.SetAttributes(attribute.Int("year", year))

	results, err := p.scrapeYear(ctx, logger, leagues, year)
	if err != nil {
		return StatsYearSummary{}, err
	}
	tables, err := p.parseResults(ctx, logger, results)
	if err != nil {
		return StatsYearSummary{}, err
	}

	summary := StatsYearSummary{Year: year}
	for _, named := range tables {
		path, err := p.exporter.ExportCSV(ctx, year, named.name, named.table)
		if err != nil {
			return summary, err
		}
		ref := warehouse.TableRef{Dataset: warehouse.DatasetStats, Name: fmt.Sprintf("%d_%s", year, named.name)}
		written, err := p.writer.Write(ctx, ref, named.table, mode)
		if err != nil {
			return summary, err
		}
		summary.Tables = append(summary.Tables, StatsTableSummary{
			Name:    named.name,
			Rows:    named.table.Len(),
			CSVPath: path,
			Write:   written,
		})
	}
	logger.InfoContext(ctx, "stats year written", "tables", len(summary.Tables))
	return summary, nil
}

type leagueStats struct {
	index  int
	tables map[string]dataset.Table
}

// scrapeYear fans out one task per league; the first failure cancels the rest.
func (p *StatsPipeline) scrapeYear(ctx context.Context, logger *logging.Logger, leagues []league.League, year int) (map[string]dataset.Table, error) {
	tasks := pool.NewWithResults[leagueStats]().
		WithContext(ctx).
		WithMaxGoroutines(len(leagues)).
		WithCancelOnError().
		WithFirstError()
	for i, lg := range leagues {
		tasks.Go(func(ctx context.Context) (leagueStats, error) {
			tables, err := p.scrapeLeague(ctx, logger.With("league", lg.Name), lg, year)
			if err != nil {
				return leagueStats{}, fmt.Errorf("%s: %w", lg.Name, err)
			}
			return leagueStats{index: i, tables: tables}, nil
		})
	}
	scraped, err := tasks.Wait()
	if err != nil {
		return nil, err
	}
	slices.SortFunc(scraped, func(a, b leagueStats) int { return a.index - b.index })

	all := make(map[string]dataset.Table, len(leagueResultKeys)+1)
	for _, key := range leagueResultKeys {
		parts := make([]dataset.Table, 0, len(scraped))
		for _, ls := range scraped {
			parts = append(parts, ls.tables[key])
		}
		all[key] = dataset.Concat(parts...)
	}

	squadLogs, err := p.squadLogs(ctx, logger, all[resultSquad], year)
	if err != nil {
		return nil, err
	}
	all[resultSquadLogs] = squadLogs
	return all, nil
}

func (p *StatsPipeline) scrapeLeague(ctx context.Context, logger *logging.Logger, lg league.League, year int) (map[string]dataset.Table, error) {
	var squad, against, players []stats.CategoryTable
	for _, cat := range stats.Categories {
		page, err := p.source.CategoryStats(ctx, lg, year, cat)
		if err != nil {
			return nil, fmt.Errorf("category %s: %w", cat.Name, err)
		}
		squad = append(squad, stats.CategoryTable{Category: cat, Table: stats.Flatten(page.Squad, cat.Name)})
		against = append(against, stats.CategoryTable{Category: cat, Table: stats.Flatten(page.Opponent, cat.Name)})
		players = append(players, stats.CategoryTable{Category: cat, Table: stats.Flatten(page.Players, cat.Name)})
	}

	out := make(map[string]dataset.Table, len(leagueResultKeys))
	for _, split := range []struct {
		tables         []stats.CategoryTable
		field, keepers string
	}{
		{squad, resultSquad, resultSquadGKs},
		{against, resultAgainst, resultAgainstGKs},
		{players, resultPlayerStats, resultPlayerGK},
	} {
		field, keepers, err := stats.SplitGoalkeeping(split.tables)
		if err != nil {
			return nil, err
		}
		field.AddColumn("League", lg.Name)
		keepers.AddColumn("League", lg.Name)
		out[split.field], out[split.keepers] = field, keepers
	}

	links, err := p.source.MatchLinks(ctx, lg, year)
	if err != nil {
		return nil, fmt.Errorf("match links: %w", err)
	}
	logger.InfoContext(ctx, "found completed matches", "matches", len(links))

	var playerLogs, shots []dataset.Table
	for _, link := range links {
		report, err := p.source.ScrapeMatch(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("match %s: %w", link, err)
		}
		for _, side := range report.PlayerLogs() {
			playerLogs = append(playerLogs, side.Table)
		}
		shots = append(shots, stats.ShotLog(report.Shots, report.Meta))
	}
	out[resultPlayerLogs] = dataset.Concat(playerLogs...)
	out[resultShots] = dataset.Concat(shots...)
	return out, nil
}

// squadLogs fetches the all-competition match logs of every squad found in
// the season tables.
func (p *StatsPipeline) squadLogs(ctx context.Context, logger *logging.Logger, squads dataset.Table, year int) (dataset.Table, error) {
	nameCol, idCol := "Standard Squad", "Standard Team_ID"
	ids := make(map[string]string, squads.Len())
	for _, row := range squads.Rows {
		name, teamID := dataset.String(row[nameCol]), dataset.String(row[idCol])
		if name == "" || teamID == "" {
			continue
		}
		ids[name] = teamID
	}
	logger.InfoContext(ctx, "collected team ids", "teams", len(ids))

	names := make([]string, 0, len(ids))
	for name := range ids {
		names = append(names, name)
	}
	slices.Sort(names)

	logs := make([]dataset.Table, 0, len(names))
	for _, name := range names {
		logger.DebugContext(ctx, "scraping squad match logs", "squad", name)
		table, err := p.source.SquadMatchLog(ctx, ids[name], name, year)
		if err != nil {
			return dataset.Table{}, fmt.Errorf("squad logs %s: %w", name, err)
		}
		logs = append(logs, table)
	}
	return stats.CombineSquadLogs(logs, squadLogMinFilled)
}
