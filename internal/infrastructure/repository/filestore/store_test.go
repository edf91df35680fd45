package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/lookup"
	"github.com/riskibarqy/football-scraper/internal/domain/match"
)

func TestLinks_AppendAndReload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New(t.TempDir())

	links, err := store.ScrapedLinks(ctx)
	require.NoError(t, err)
	require.Empty(t, links)

	require.NoError(t, store.MarkScraped(ctx, []string{"https://ws.test/m/1", "https://ws.test/m/2"}))
	require.NoError(t, store.MarkScraped(ctx, []string{"https://ws.test/m/3"}))

	links, err = store.ScrapedLinks(ctx)
	require.NoError(t, err)
	require.Len(t, links, 3)
	require.Contains(t, links, "https://ws.test/m/3")
}

func TestSeason_SaveLoadDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New(t.TempDir())
	lg := league.League{Name: "La Liga"}

	_, ok, err := store.LoadSeason(ctx, lg, 2024)
	require.NoError(t, err)
	require.False(t, ok)

	payload, err := os.ReadFile(filepath.Join("..", "..", "..", "domain", "match", "testdata", "match_1730.json"))
	require.NoError(t, err)
	raw, err := match.DecodeRaw(payload)
	require.NoError(t, err)

	season := match.NewSeason([]string{"https://ws.test/m/1", "https://ws.test/m/2"})
	season.Record("https://ws.test/m/2", raw)
	require.NoError(t, store.SaveSeason(ctx, lg, 2024, season))
	require.Equal(t, "La_Liga_2024_match_data.json", filepath.Base(store.SeasonPath(lg, 2024)))

	loaded, ok, err := store.LoadSeason(ctx, lg, 2024)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"https://ws.test/m/1"}, loaded.Pending())
	raws, err := loaded.Raws()
	require.NoError(t, err)
	require.EqualValues(t, 1730, raws[0].MatchID)

	require.NoError(t, store.DeleteSeason(ctx, lg, 2024))
	require.NoError(t, store.DeleteSeason(ctx, lg, 2024))
	_, ok, err = store.LoadSeason(ctx, lg, 2024)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestLookup_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := New(t.TempDir())

	set := lookup.NewSet()
	set.Qualifiers.AssignIfAbsent("Head")
	set.Qualifiers.AssignIfAbsent("Foul")
	set.Players.Put("303", "Erling Haaland")
	require.NoError(t, set.Save(ctx, store))

	reloaded := lookup.NewSet()
	require.NoError(t, reloaded.Load(ctx, store))
	code, ok := reloaded.Qualifiers.Code("Foul")
	require.True(t, ok)
	require.Equal(t, 2, code)
	require.Equal(t, 3, reloaded.Qualifiers.AssignIfAbsent("Cross"))
	name, ok := reloaded.Players.Get("303")
	require.True(t, ok)
	require.Equal(t, "Erling Haaland", name)

	_, err := os.Stat(filepath.Join(store.Root(), "lookup", "Qualifiers.json"))
	require.NoError(t, err)
}

func TestExportCSV(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir())
	table := dataset.New("Player", "Goals")
	table.Append(dataset.Row{"Player": "Saka, Bukayo", "Goals": 16.0})
	table.Append(dataset.Row{"Player": "Odegaard"})

	path, err := store.ExportCSV(context.Background(), 2024, "Player_Stats", table)
	require.NoError(t, err)
	require.Equal(t, "2024_Player_Stats.csv", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Equal(t, []string{`,Player,Goals`, `0,"Saka, Bukayo",16`, `1,Odegaard,`}, lines)
}
