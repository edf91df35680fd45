package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/football-scraper/internal/domain/dataset"
	"github.com/riskibarqy/football-scraper/internal/domain/league"
	"github.com/riskibarqy/football-scraper/internal/domain/warehouse"
	leaguemock "github.com/riskibarqy/football-scraper/internal/mocks/domain/league"
	warehousemock "github.com/riskibarqy/football-scraper/internal/mocks/domain/warehouse"
)

func TestLeagueRepository_CachesLookups(t *testing.T) {
	ctx := context.Background()
	next := leaguemock.NewRepository(t)
	epl := league.League{Name: "EPL", WhoScoredURL: "https://ws.test/epl"}

	next.On("List", mock.Anything).Return([]league.League{epl}, nil).Once()
	next.On("GetByName", mock.Anything, "EPL").Return(epl, true, nil).Once()
	next.On("GetByName", mock.Anything, "Nope").Return(league.League{}, false, nil).Once()

	repo := NewLeagueRepository(next, time.Minute)
	for range 3 {
		items, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, items, 1)

		got, ok, err := repo.GetByName(ctx, "EPL")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, epl, got)

		_, ok, err = repo.GetByName(ctx, "Nope")
		require.NoError(t, err)
		require.False(t, ok)
	}
}

func TestWarehouseRepository_ReadThroughAndRefreshOnWrite(t *testing.T) {
	ctx := context.Background()
	next := warehousemock.NewRepository(t)
	ref := warehouse.TableRef{Dataset: warehouse.DatasetLookups, Name: "Matches"}

	existing := dataset.New("matchId")
	existing.Append(dataset.Row{"matchId": int64(1)})
	next.On("ReadTable", mock.Anything, ref).Return(existing, true, nil).Once()

	repo := NewWarehouseRepository(next, 0)
	first, ok, err := repo.ReadTable(ctx, ref)
	require.NoError(t, err)
	require.True(t, ok)
	first.Rows[0]["matchId"] = int64(99)

	second, _, err := repo.ReadTable(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, int64(1), second.Rows[0]["matchId"])

	updated := dataset.New("matchId")
	updated.Append(dataset.Row{"matchId": int64(1)})
	updated.Append(dataset.Row{"matchId": int64(2)})
	next.On("ReplaceTable", mock.Anything, ref, updated).Return(nil).Once()
	require.NoError(t, repo.ReplaceTable(ctx, ref, updated))

	third, _, err := repo.ReadTable(ctx, ref)
	require.NoError(t, err)
	require.Equal(t, 2, third.Len())

	next.On("DatasetSize", mock.Anything, warehouse.DatasetLookups).Return(int64(42), nil).Once()
	size, err := repo.DatasetSize(ctx, warehouse.DatasetLookups)
	require.NoError(t, err)
	require.EqualValues(t, 42, size)
}

func TestWarehouseRepository_FailedWriteEvicts(t *testing.T) {
	ctx := context.Background()
	next := warehousemock.NewRepository(t)
	ref := warehouse.TableRef{Dataset: warehouse.DatasetEvents, Name: "EPL_2024"}

	next.On("ReadTable", mock.Anything, ref).Return(dataset.Table{}, false, nil).Twice()
	next.On("ReplaceTable", mock.Anything, ref, mock.Anything).Return(errors.New("db down")).Once()

	repo := NewWarehouseRepository(next, 0)
	_, ok, err := repo.ReadTable(ctx, ref)
	require.NoError(t, err)
	require.False(t, ok)

	require.Error(t, repo.ReplaceTable(ctx, ref, dataset.New("a")))

	_, _, err = repo.ReadTable(ctx, ref)
	require.NoError(t, err)
}
