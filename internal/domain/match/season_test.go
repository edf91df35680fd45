package match

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/require"
)

func TestSeason_PendingAndScraped(t *testing.T) {
	t.Parallel()

	season := NewSeason([]string{"https://ws.test/m/2", "https://ws.test/m/1", "https://ws.test/m/3"})
	season.Record("https://ws.test/m/2", loadRaw(t, "match_1730.json"))
	season.Drop("https://ws.test/m/3")

	require.Equal(t, []string{"https://ws.test/m/1"}, season.Pending())
	require.Equal(t, []string{"https://ws.test/m/2"}, season.Scraped())

	raws, err := season.Raws()
	require.NoError(t, err)
	require.Len(t, raws, 1)
	require.EqualValues(t, 1730, raws[0].MatchID)
}

func TestSeason_JSONKeepsPlaceholders(t *testing.T) {
	t.Parallel()

	season := NewSeason([]string{"https://ws.test/m/1", "https://ws.test/m/2"})
	season.Record("https://ws.test/m/2", loadRaw(t, "match_1729.json"))

	data, err := sonic.Marshal(season)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, sonic.Unmarshal(data, &decoded))
	require.Equal(t, "", decoded["https://ws.test/m/1"])
	require.IsType(t, map[string]any{}, decoded["https://ws.test/m/2"])

	var back Season
	require.NoError(t, sonic.Unmarshal(data, &back))
	require.Equal(t, season.Pending(), back.Pending())
	require.Equal(t, season.Scraped(), back.Scraped())
}
