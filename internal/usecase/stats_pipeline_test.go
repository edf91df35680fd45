package usecase

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/reconcile"
	"github.com/riskibarqy/football-scraper/internal/domain/stats"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	"github.com/riskibarqy/football-scraper/internal/infrastructure/repository/filestore"
	"github.com/riskibarqy/football-scraper/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/football-scraper/internal/platform/id"
)

const fbrefMatch = "https://fbref.test/en/matches/0b3ae1a6/Arsenal-Chelsea"

type fakeStatsSource struct {
	mu         sync.Mutex
	homeName   string
	awayName   string
	failCat    string
	squadCalls map[string]string
}

func newFakeStatsSource() *fakeStatsSource {
	return &fakeStatsSource{
		homeName:   "Arsenal FC",
		awayName:   "Chelsea FC",
		squadCalls: make(map[string]string),
	}
}

func rawTable(headers []stats.Header, rows ...[]string) stats.RawTable {
	out := stats.RawTable{Headers: headers}
	for _, cells := range rows {
		out.Rows = append(out.Rows, stats.RawRow{Cells: cells})
	}
	return out
}

func (f *fakeStatsSource) SeasonURL(context.Context, league.League, int) (string, error) {
	return "https://fbref.test/en/comps/9/2023-2024/2023-2024-Premier-League-Stats", nil
}

func (f *fakeStatsSource) CategoryStats(_ context.Context, _ league.League, _ int, cat stats.Category) (stats.CategoryPage, error) {
	if cat.Name == f.failCat {
		return stats.CategoryPage{}, fmt.Errorf("category %s: %w", cat.Name, ErrLayoutChanged)
	}
	squadHeaders := []stats.Header{{Inner: "Squad"}, {Inner: "Poss"}, {Inner: "Team ID"}}
	return stats.CategoryPage{
		Category: cat,
		Squad:    rawTable(squadHeaders, []string{"Arsenal", "55.5", "a1"}, []string{"Chelsea", "48.2", "c1"}),
		Opponent: rawTable(squadHeaders, []string{"vs Arsenal", "44.5", "a1"}, []string{"vs Chelsea", "51.8", "c1"}),
		Players: rawTable(
			[]stats.Header{
				{Inner: "Player"},
				{Inner: "Squad"},
				{Outer: "Playing Time", Inner: "90s"},
				{Outer: "Performance", Inner: "Gls"},
				{Inner: "Player ID"},
			},
			[]string{"Bukayo Saka", "Arsenal", "2", "1", "p1"},
			[]string{"Cole Palmer", "Chelsea", "1", "3", "p2"},
		),
	}, nil
}

func (f *fakeStatsSource) MatchLinks(context.Context, league.League, int) ([]string, error) {
	return []string{fbrefMatch}, nil
}

func summaryTable(player, id, tkl, blocks, interceptions string) stats.RawTable {
	return rawTable(
		[]stats.Header{
			{Inner: "Player"},
			{Outer: "Performance", Inner: "Tkl"},
			{Outer: "Performance", Inner: "Blocks"},
			{Outer: "Performance", Inner: "Int"},
			{Inner: "Player ID"},
		},
		[]string{player, tkl, blocks, interceptions, id},
		[]string{"11 Players", "20", "10", "9", ""},
	)
}

func passingTable(player, cmp string) stats.RawTable {
	return rawTable(
		[]stats.Header{{Inner: "Player"}, {Outer: "Total", Inner: "Cmp"}},
		[]string{player, cmp},
		[]string{"11 Players", "400"},
	)
}

func (f *fakeStatsSource) ScrapeMatch(_ context.Context, url string) (stats.MatchReport, error) {
	home, away := 2, 1
	return stats.MatchReport{
		URL: url,
		Meta: stats.MatchMeta{
			Stage:     "Premier League (Matchweek 1)",
			HomeTeam:  f.homeName,
			AwayTeam:  f.awayName,
			HomeGoals: &home,
			AwayGoals: &away,
		},
		HomeID: "a1",
		AwayID: "c1",
		Players: map[string][]stats.NamedRaw{
			"a1": {
				{Name: "Summary", Raw: summaryTable("Bukayo Saka", "p1", "2", "1", "3")},
				{Name: "Passing", Raw: passingTable("Bukayo Saka", "30")},
			},
			"c1": {
				{Name: "Summary", Raw: summaryTable("Cole Palmer", "p2", "6", "0", "1")},
				{Name: "Passing", Raw: passingTable("Cole Palmer", "24")},
			},
		},
		Shots: rawTable(
			[]stats.Header{{Inner: "Minute"}, {Inner: "Player"}},
			[]string{"26", "Bukayo Saka"},
		),
	}, nil
}

// SquadMatchLog returns one league fixture with enough filled cells to pass
// the played-match threshold.
func (f *fakeStatsSource) SquadMatchLog(_ context.Context, teamID, squad string, _ int) (dataset.Table, error) {
	f.mu.Lock()
	f.squadCalls[squad] = teamID
	f.mu.Unlock()

	row := dataset.Row{"Date": "2023-08-12", "Round": "Matchweek 1", "Squad": squad}
	switch squad {
	case "Arsenal":
		row["Opponent"], row["Poss"], row["GF"], row["GA"] = "Chelsea", 60.0, "2", "1"
	default:
		row["Opponent"], row["Poss"], row["GF"], row["GA"] = "Arsenal", 40.0, "1", "2"
	}
	table := dataset.New("Date", "Round", "Squad", "Opponent", "Poss", "GF", "GA")
	for i := range 30 {
		col := fmt.Sprintf("Shooting_Stat_%d", i)
		table.Columns = append(table.Columns, col)
		row[col] = float64(i + 1)
	}
	table.Rows = append(table.Rows, row)
	return table, nil
}

type fakePositions struct {
	positions map[string]string
	err       error
}

func (f fakePositions) Positions(context.Context) (map[string]string, error) {
	return f.positions, f.err
}

type statsFixture struct {
	store     *filestore.Store
	warehouse *memory.WarehouseRepository
	source    *fakeStatsSource
	pipeline  *StatsPipeline
}

func newStatsFixture(t *testing.T, positions PositionSource) *statsFixture {
	t.Helper()
	f := &statsFixture{
		store:     filestore.New(t.TempDir()),
		warehouse: memory.NewWarehouseRepository(),
		source:    newFakeStatsSource(),
	}
	f.pipeline = NewStatsPipeline(StatsPipelineConfig{
		Source:    f.source,
		Exporter:  f.store,
		Positions: positions,
		Writer:    NewWarehouseWriter(f.warehouse, nil),
		Matcher:   reconcile.NewMatcher(reconcile.DefaultMinSimilarity),
		IDs:       id.Static("stats-run"),
	})
	return f
}

func fbrefLeague() league.League {
	return league.League{
		Name:            "EPL",
		FBrefHistoryURL: "https://fbref.test/en/comps/9/history/Premier-League-Seasons",
		FBrefFinders:    []string{"Premier-League"},
	}
}

func findNamed(t *testing.T, f *statsFixture, name string) dataset.Table {
	t.Helper()
	table, ok, err := f.warehouse.ReadTable(context.Background(), warehouse.TableRef{Dataset: warehouse.DatasetStats, Name: name})
	require.NoError(t, err)
	require.True(t, ok, "missing table %s", name)
	return table
}

func playerRow(t *testing.T, table dataset.Table, name string) dataset.Row {
	t.Helper()
	for _, row := range table.Rows {
		if row["Standard_Player"] == name {
			return row
		}
	}
	t.Fatalf("player %s not found", name)
	return nil
}

func TestStatsPipeline_Run(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, fakePositions{positions: map[string]string{"p1": "RW"}})
	result, err := f.pipeline.Run(context.Background(), StatsRunInput{
		Leagues: []league.League{fbrefLeague()},
		Years:   []int{2024},
		Mode:    warehouse.WriteTruncate,
	})
	require.NoError(t, err)
	require.Equal(t, "stats-run", result.RunID)
	require.Len(t, result.Years, 1)
	require.Len(t, result.Years[0].Tables, 9)
	require.Equal(t, map[string]string{"Arsenal": "a1", "Chelsea": "c1"}, f.source.squadCalls)

	for _, table := range result.Years[0].Tables {
		_, err := os.Stat(table.CSVPath)
		require.NoError(t, err, table.Name)
		require.Equal(t, warehouse.WriteTruncate, table.Write.Mode)
	}

	players := findNamed(t, f, "2024_players")
	saka := playerRow(t, players, "Bukayo Saka")
	require.Equal(t, "EPL", saka["League"])
	require.InDelta(t, 2.5, saka["Padj_Defensive_Tackles_Tkl"], 1e-9)
	require.InDelta(t, 37.5, saka["Padj_Passing_Total_Cmp"], 1e-9)
	require.InDelta(t, 1.25, saka["Padj_Defensive_Tackles_Tkl_Per_90"], 1e-9)
	require.InDelta(t, 0.5, saka["Standard_Performance_Gls_Per_90"], 1e-9)
	require.Equal(t, "RW", saka["Position"])

	palmer := playerRow(t, players, "Cole Palmer")
	require.InDelta(t, 5.0, palmer["Padj_Defensive_Tackles_Tkl"], 1e-9)
	require.InDelta(t, 20.0, palmer["Padj_Passing_Total_Cmp"], 1e-9)
	require.Nil(t, palmer["Position"])

	squadLogs := findNamed(t, f, "2024_squad_logs")
	require.Len(t, squadLogs.Rows, 2)
	require.True(t, squadLogs.HasColumn("penfor"))

	shots := findNamed(t, f, "2024_shots")
	require.Equal(t, "26", shots.Rows[0]["Minute"])
}

func TestStatsPipeline_AppendSkipsUnchangedTables(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, nil)
	input := StatsRunInput{Leagues: []league.League{fbrefLeague()}, Years: []int{2024}, Mode: warehouse.WriteAppend}

	_, err := f.pipeline.Run(context.Background(), input)
	require.NoError(t, err)
	result, err := f.pipeline.Run(context.Background(), input)
	require.NoError(t, err)
	for _, table := range result.Years[0].Tables {
		if table.Rows > 0 {
			require.True(t, table.Write.Skipped, table.Name)
		}
	}
}

func TestStatsPipeline_PositionSheetFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, fakePositions{err: errors.New("sheet offline")})
	_, err := f.pipeline.Run(context.Background(), StatsRunInput{
		Leagues: []league.League{fbrefLeague()},
		Years:   []int{2024},
		Mode:    warehouse.WriteTruncate,
	})
	require.NoError(t, err)
	require.False(t, findNamed(t, f, "2024_players").HasColumn("Position"))
}

func TestStatsPipeline_UnmatchedTeamsAbort(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, nil)
	f.source.homeName = "Qwxz Rovers"
	f.source.awayName = "Jklm United"

	_, err := f.pipeline.Run(context.Background(), StatsRunInput{
		Leagues: []league.League{fbrefLeague()},
		Years:   []int{2024},
		Mode:    warehouse.WriteTruncate,
	})
	require.ErrorIs(t, err, reconcile.ErrNoConfidentMatch)
	require.Empty(t, f.warehouse.Refs())
}

func TestStatsPipeline_LeagueFailureCancelsYear(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, nil)
	f.source.failCat = "passing"

	_, err := f.pipeline.Run(context.Background(), StatsRunInput{
		Leagues: []league.League{fbrefLeague()},
		Years:   []int{2024},
		Mode:    warehouse.WriteTruncate,
	})
	require.ErrorIs(t, err, ErrLayoutChanged)
	require.ErrorContains(t, err, "EPL")
	require.Empty(t, f.warehouse.Refs())
}

func TestStatsPipeline_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	f := newStatsFixture(t, nil)
	ctx := context.Background()

	_, err := f.pipeline.Run(ctx, StatsRunInput{Leagues: []league.League{fbrefLeague()}, Mode: warehouse.WriteTruncate})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.pipeline.Run(ctx, StatsRunInput{Leagues: []league.League{fbrefLeague()}, Years: []int{2024}, Mode: "MERGE"})
	require.ErrorIs(t, err, ErrInvalidInput)

	whoscoredOnly := league.League{Name: "Brasileirao", WhoScoredURL: "https://ws.test/Regions/31"}
	_, err = f.pipeline.Run(ctx, StatsRunInput{Leagues: []league.League{whoscoredOnly}, Years: []int{2024}, Mode: warehouse.WriteTruncate})
	require.ErrorIs(t, err, ErrInvalidInput)
}
