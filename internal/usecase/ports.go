package usecase

import (
	"context"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/match"
	"github.com/riskibarqy/football-scraper/internal/domain/stats"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
)

// MatchSource discovers and extracts match centre payloads.
// whoscored.Client satisfies it.
type MatchSource interface {
	MatchLinks(ctx context.Context, lg league.League, year int) ([]string, error)
	ScrapeMatch(ctx context.Context, url string) (match.Raw, error)
}

// Checkpointer runs fn before the browser session restarts.
// browser.Session satisfies it.
type Checkpointer interface {
	SetCheckpoint(fn func(ctx context.Context) error)
}

// EventCache is the resumable on-disk state of the event pipeline.
type EventCache interface {
	ScrapedLinks(ctx context.Context) (map[string]struct{}, error)
	MarkScraped(ctx context.Context, links []string) error
	LoadSeason(ctx context.Context, lg league.League, year int) (match.Season, bool, error)
	SaveSeason(ctx context.Context, lg league.League, year int, season match.Season) error
	DeleteSeason(ctx context.Context, lg league.League, year int) error
}

// StatsSource reads FBref pages. fbref.Client satisfies it.
type StatsSource interface {
	SeasonURL(ctx context.Context, lg league.League, year int) (string, error)
	CategoryStats(ctx context.Context, lg league.League, year int, cat stats.Category) (stats.CategoryPage, error)
	MatchLinks(ctx context.Context, lg league.League, year int) ([]string, error)
	ScrapeMatch(ctx context.Context, url string) (stats.MatchReport, error)
	SquadMatchLog(ctx context.Context, teamID, squad string, year int) (dataset.Table, error)
}

// TableWriter stores a table in the warehouse. WarehouseWriter satisfies it.
type TableWriter interface {
	Write(ctx context.Context, ref warehouse.TableRef, table dataset.Table, mode warehouse.WriteMode) (warehouse.WriteResult, error)
}

// CSVExporter writes per-year stats tables to disk.
type CSVExporter interface {
	ExportCSV(ctx context.Context, year int, name string, table dataset.Table) (string, error)
}

// PositionSource loads the optional player position sheet.
type PositionSource interface {
	Positions(ctx context.Context) (map[string]string, error)
}
