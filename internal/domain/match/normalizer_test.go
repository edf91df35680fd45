package match

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/football-scraper/internal/domain/lookup"
)

func loadRaw(t *testing.T, name string) Raw {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	raw, err := DecodeRaw(data)
	if err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
	return raw
}

func TestNormalizer_Normalize(t *testing.T) {
	t.Parallel()

	qualifiers := lookup.NewStore("Qualifiers")
	events, err := NewNormalizer(qualifiers).Normalize(loadRaw(t, "match_1729.json"))
	require.NoError(t, err)
	require.Len(t, events, 3)

	pass := events[0]
	require.Equal(t, int64(1729), pass.MatchID)
	require.Equal(t, PeriodFirstHalf, pass.Period)
	require.Equal(t, "Pass", pass.Type)
	require.True(t, pass.Successful)
	require.Equal(t, "B", pass.Zone)
	require.Equal(t, []int{1, 2}, pass.Qualifiers)
	require.Equal(t, []int{90, 118, 116}, pass.SatisfiedTypes)
	require.Equal(t, 38.2, pass.Extra["PassEndX"])
	require.Equal(t, 12.5, pass.Extra["Length"])
	require.NotContains(t, pass.Extra, "RelatedEventId")
	require.NotContains(t, pass.Extra, "EndX")
	require.NotContains(t, pass.Extra, "ExpandedMinute")
	require.NotContains(t, pass.Extra, "Id")
	require.Equal(t, int64(101), *pass.PlayerID)

	shot := events[1]
	require.False(t, shot.Successful)
	require.Equal(t, "C", shot.Zone)
	require.Equal(t, []int{1, 3}, shot.Qualifiers, "empty value counts as a flag and reuses its code")
	require.Equal(t, int64(57), shot.Extra["OppositeRelatedEvent"])
	require.Equal(t, true, shot.Extra["IsShot"])
	require.NotContains(t, shot.Extra, "CardType")

	start := events[2]
	require.True(t, start.Successful, "leading space outcome still counts as successful")
	require.Equal(t, PeriodSecondHalf, start.Period)
	require.Nil(t, start.PlayerID)
	require.Empty(t, start.Qualifiers)

	code, ok := qualifiers.Code("Head")
	require.True(t, ok)
	require.Equal(t, 3, code)
}

func TestNormalizer_CodesStableAcrossReprocessing(t *testing.T) {
	t.Parallel()

	qualifiers := lookup.NewStore("Qualifiers")
	normalizer := NewNormalizer(qualifiers)
	raw := loadRaw(t, "match_1729.json")

	first, err := normalizer.Normalize(raw)
	require.NoError(t, err)
	second, err := normalizer.Normalize(raw)
	require.NoError(t, err)

	for i := range first {
		require.Equal(t, first[i].Qualifiers, second[i].Qualifiers)
	}
	require.Equal(t, 3, qualifiers.Len())
}

func TestNormalizer_UnknownPeriod(t *testing.T) {
	t.Parallel()

	raw := loadRaw(t, "match_1730.json")
	raw.CentreData.Events[0]["period"] = map[string]any{"displayName": "HalfTimeShow"}

	_, err := NewNormalizer(lookup.NewStore("Qualifiers")).Normalize(raw)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownPeriod))
}

func TestNormalizer_RejectsUnplayedMatch(t *testing.T) {
	t.Parallel()

	_, err := NewNormalizer(lookup.NewStore("Qualifiers")).Normalize(Raw{MatchID: 9})
	require.ErrorIs(t, err, ErrMalformedRaw)
}

func TestEventTable(t *testing.T) {
	t.Parallel()

	normalizer := NewNormalizer(lookup.NewStore("Qualifiers"))
	first, err := normalizer.Normalize(loadRaw(t, "match_1729.json"))
	require.NoError(t, err)
	second, err := normalizer.Normalize(loadRaw(t, "match_1730.json"))
	require.NoError(t, err)

	table := EventTable(append(first, second...))
	require.Len(t, table.Rows, 4)
	require.False(t, table.HasColumn("Foul"))
	require.True(t, table.HasColumn("IsShot"))
	require.Equal(t, false, table.Rows[0]["IsShot"])
	require.Equal(t, true, table.Rows[1]["IsShot"])
	require.Equal(t, int64(0), table.Rows[3]["Period"])
	require.Equal(t, []int{}, table.Rows[2]["Qualifiers"])
}

func TestBuildInfo(t *testing.T) {
	t.Parallel()

	referees := lookup.NewStore("Referees")
	stadiums := lookup.NewStore("Stadiums")

	info, err := BuildInfo(loadRaw(t, "match_1729.json"), referees, stadiums)
	require.NoError(t, err)
	require.Equal(t, int64(1729), info.MatchID)
	require.Equal(t, time.Date(2024, 3, 2, 17, 30, 0, 0, time.UTC), info.Kickoff)
	require.Equal(t, int64(60245), *info.Attendance)
	require.Equal(t, 1, *info.Venue)
	require.Equal(t, 1, *info.Referee)
	require.Equal(t, []FormationSpan{{Formation: 4, End: 75}, {Formation: 8, End: 96}}, info.HomeInfo.Formations)
	require.Equal(t, [4]int{1, 0, 2, 1}, [4]int{info.HomeHTScore, info.AwayHTScore, info.HomeFTScore, info.AwayFTScore})

	info, err = BuildInfo(loadRaw(t, "match_1730.json"), referees, stadiums)
	require.NoError(t, err)
	require.Nil(t, info.Venue)
	require.Nil(t, info.Referee)
	require.Nil(t, info.Attendance)
	require.Zero(t, info.HomeHTScore)
	require.Equal(t, 1, stadiums.Len(), "empty venue must not be assigned a code")

	row := info.Row()
	require.Nil(t, row["Venue"])
	require.Equal(t, int64(167), row["Home"])
}

func TestSeasonDirectory(t *testing.T) {
	t.Parallel()

	players, teams := SeasonDirectory([]Raw{loadRaw(t, "match_1729.json"), loadRaw(t, "match_1730.json"), {MatchID: 1}})
	require.Equal(t, "Erling Haaland", players["303"])
	require.Len(t, players, 3)
	require.Equal(t, map[string]string{"13": "Arsenal", "15": "Chelsea", "167": "Man City"}, teams)
}

func TestTableName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "La_Liga_2024", TableName("La Liga", 2024))
	require.Equal(t, "EFL_Championship_2023", TableName(" EFL Championship", 2023))
}

func TestDecodeRaw_KeepsPayload(t *testing.T) {
	t.Parallel()

	raw := loadRaw(t, "match_1729.json")
	require.NotEmpty(t, raw.Payload)

	again, err := DecodeRaw(raw.Payload)
	require.NoError(t, err)
	require.Equal(t, raw.MatchID, again.MatchID)

	_, err = DecodeRaw([]byte(`{"matchId":`))
	require.True(t, errors.Is(err, ErrMalformedRaw))
}
