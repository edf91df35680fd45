package positionsheet

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/football-scraper/internal/usecase"
)

type fakeFetcher struct {
	body string
	err  error
	urls []string
}

func (f *fakeFetcher) Get(_ context.Context, url string) ([]byte, error) {
	f.urls = append(f.urls, url)
	return []byte(f.body), f.err
}

const sheetCSV = `UrlFBref,UrlTmarkt,TmPos
https://fbref.com/en/players/bc7dc64d/Bukayo-Saka,https://www.transfermarkt.com/bukayo-saka/profil/spieler/433177,Right Winger
https://fbref.com/en/players/dc7f8a28/Cole-Palmer,https://www.transfermarkt.com/cole-palmer/profil/spieler/568177,Attacking Midfield
not a url,,Goalkeeper
"broken,line
`

func TestSheet_Positions(t *testing.T) {
	t.Parallel()

	fetcher := &fakeFetcher{body: sheetCSV}
	sheet := New(fetcher, "https://sheets.test/export?format=csv", nil)

	got, err := sheet.Positions(context.Background())
	require.NoError(t, err)
	require.Equal(t, map[string]string{
		"bc7dc64d": "Right Winger",
		"dc7f8a28": "Attacking Midfield",
	}, got)
	require.Equal(t, []string{"https://sheets.test/export?format=csv"}, fetcher.urls)
}

func TestSheet_MissingColumnsIsLayoutChange(t *testing.T) {
	t.Parallel()

	sheet := New(&fakeFetcher{body: "Name,Position\nSaka,RW\n"}, "https://sheets.test/x", nil)
	_, err := sheet.Positions(context.Background())
	require.ErrorIs(t, err, usecase.ErrLayoutChanged)
}

func TestSheet_FetchFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("offline")
	sheet := New(&fakeFetcher{err: boom}, "https://sheets.test/x", nil)
	_, err := sheet.Positions(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestSheet_EmptyURL(t *testing.T) {
	t.Parallel()

	_, err := New(&fakeFetcher{}, " ", nil).Positions(context.Background())
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestPlayerID(t *testing.T) {
	t.Parallel()

	require.Equal(t, "bc7dc64d", PlayerID("https://fbref.com/en/players/bc7dc64d/Bukayo-Saka"))
	require.Equal(t, "", PlayerID("https://fbref.com/en/squads/18bb7c10"))
}
