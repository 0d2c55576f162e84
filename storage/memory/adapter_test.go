package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paralelo-ve/paralelo/provider/currencies"
	"github.com/paralelo-ve/paralelo/storage/types"
)

func TestStorage_HistoryPoints(t *testing.T) {
	t.Parallel()

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()
		ctx := context.Background()

		points, err := s.HistoryPoints(ctx)
		require.NoError(t, err)
		assert.Empty(t, points)

		latest, err := s.LatestHistoryPoint(ctx)
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	t.Run("same-day upserts merge into one point", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()
		ctx := context.Background()

		require.NoError(t, s.UpsertHistoryPoint(ctx, &types.HistoryPoint{
			Date:  "2026-08-31",
			Rates: map[types.Currency]float64{currencies.USD: 240.00},
		}))

		// Second scrape for the same day updates USD and adds EUR
		require.NoError(t, s.UpsertHistoryPoint(ctx, &types.HistoryPoint{
			Date: "2026-08-31",
			Rates: map[types.Currency]float64{
				currencies.USD: 240.50,
				currencies.EUR: 260.00,
			},
		}))

		points, err := s.HistoryPoints(ctx)
		require.NoError(t, err)

		require.Len(t, points, 1)
		assert.InDelta(t, 240.50, points[0].Rates[currencies.USD], 0.0001)
		assert.InDelta(t, 260.00, points[0].Rates[currencies.EUR], 0.0001)
	})

	t.Run("points sorted ascending, latest is last", func(t *testing.T) {
		t.Parallel()

		s := NewStorage()
		ctx := context.Background()

		for _, date := range []string{"2026-08-31", "2026-08-28", "2026-08-30"} {
			require.NoError(t, s.UpsertHistoryPoint(ctx, &types.HistoryPoint{
				Date:  date,
				Rates: map[types.Currency]float64{currencies.USD: 240},
			}))
		}

		points, err := s.HistoryPoints(ctx)
		require.NoError(t, err)

		require.Len(t, points, 3)
		assert.Equal(t, "2026-08-28", points[0].Date)
		assert.Equal(t, "2026-08-31", points[2].Date)

		latest, err := s.LatestHistoryPoint(ctx)
		require.NoError(t, err)

		require.NotNil(t, latest)
		assert.Equal(t, "2026-08-31", latest.Date)
	})
}

func TestStorage_P2PSnapshots(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	ctx := context.Background()

	now := time.Now()

	require.NoError(t, s.SaveP2PSnapshots(ctx, []*types.P2PSnapshot{
		{
			Marketplace: types.MarketplaceBinance,
			Side:        types.SideBUY,
			Price:       270,
			CreatedAt:   now.Add(-2 * time.Hour),
		},
		{
			Marketplace: types.MarketplaceBybit,
			Side:        types.SideSELL,
			Price:       268,
			CreatedAt:   now,
		},
		{
			Marketplace: types.MarketplaceBinance,
			Side:        types.SideBUY,
			Price:       271,
			CreatedAt:   now.Add(-50 * time.Hour),
		},
	}))

	// Old samples are filtered out, the rest come back ascending
	snapshots, err := s.P2PSnapshotsSince(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)

	require.Len(t, snapshots, 2)
	assert.InDelta(t, 270.0, snapshots[0].Price, 0.0001)
	assert.InDelta(t, 268.0, snapshots[1].Price, 0.0001)
}

func TestStorage_News(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	ctx := context.Background()

	now := time.Now()

	require.NoError(t, s.UpsertNewsItems(ctx, []*types.NewsItem{
		{URL: "https://example.com/a", Title: "first", PublishedAt: now.Add(-time.Hour)},
		{URL: "https://example.com/b", Title: "second", PublishedAt: now},
	}))

	// Re-upserting the same URL replaces the item instead of duplicating
	require.NoError(t, s.UpsertNewsItems(ctx, []*types.NewsItem{
		{URL: "https://example.com/a", Title: "first, updated", PublishedAt: now.Add(-time.Hour)},
	}))

	items, err := s.NewsSince(ctx, now.Add(-24*time.Hour), 10)
	require.NoError(t, err)

	// Newest first
	require.Len(t, items, 2)
	assert.Equal(t, "second", items[0].Title)
	assert.Equal(t, "first, updated", items[1].Title)

	t.Run("limit caps the results", func(t *testing.T) {
		t.Parallel()

		limited, err := s.NewsSince(ctx, now.Add(-24*time.Hour), 1)
		require.NoError(t, err)

		require.Len(t, limited, 1)
		assert.Equal(t, "second", limited[0].Title)
	})
}

func TestStorage_MarketReports(t *testing.T) {
	t.Parallel()

	s := NewStorage()
	ctx := context.Background()

	now := time.Now()

	require.NoError(t, s.SaveMarketReport(ctx, &types.MarketReport{
		Type:      types.ReportTypeDailyBrief,
		Content:   "older brief",
		CreatedAt: now.Add(-time.Hour),
	}))

	require.NoError(t, s.SaveMarketReport(ctx, &types.MarketReport{
		Type:      types.ReportTypeLocalAnalysis,
		Content:   "trends",
		CreatedAt: now.Add(-30 * time.Minute),
	}))

	require.NoError(t, s.SaveMarketReport(ctx, &types.MarketReport{
		Type:      types.ReportTypeDailyBrief,
		Content:   "newer brief",
		CreatedAt: now,
	}))

	t.Run("all types, newest first", func(t *testing.T) {
		t.Parallel()

		reports, err := s.MarketReports(ctx, nil, 10)
		require.NoError(t, err)

		require.Len(t, reports, 3)
		assert.Equal(t, "newer brief", reports[0].Content)
	})

	t.Run("filtered by type", func(t *testing.T) {
		t.Parallel()

		briefType := types.ReportTypeDailyBrief

		reports, err := s.MarketReports(ctx, &briefType, 10)
		require.NoError(t, err)

		require.Len(t, reports, 2)

		for _, report := range reports {
			assert.Equal(t, types.ReportTypeDailyBrief, report.Type)
		}
	})

	t.Run("limit caps the results", func(t *testing.T) {
		t.Parallel()

		reports, err := s.MarketReports(ctx, nil, 1)
		require.NoError(t, err)

		require.Len(t, reports, 1)
		assert.Equal(t, "newer brief", reports[0].Content)
	})
}
