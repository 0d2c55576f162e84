package p2p

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paralelo-ve/paralelo/storage/types"
)

var errMarketplace = errors.New("marketplace unreachable")

func bookFixture(price float64) *types.OrderBook {
	return &types.OrderBook{
		Buy: []*types.OrderBookEntry{
			{Advertiser: "trader-a", Price: price, CompletionRate: 0.98},
		},
		Sell: []*types.OrderBookEntry{
			{Advertiser: "trader-b", Price: price - 2, CompletionRate: 0.95},
		},
	}
}

func TestRanger_RangeScan(t *testing.T) {
	t.Parallel()

	t.Run("probe order and amount conversion", func(t *testing.T) {
		t.Parallel()

		var (
			mu      sync.Mutex
			amounts []float64

			market = &mockMarketplace{
				name: types.MarketplaceBinance,
				bookFn: func(_ context.Context, amountVES float64, _ string) (*types.OrderBook, error) {
					mu.Lock()
					amounts = append(amounts, amountVES)
					mu.Unlock()

					return bookFixture(270), nil
				},
			}
		)

		r := NewRanger([]Marketplace{market})

		result := r.RangeScan(context.Background(), DefaultProbes, 250)
		require.NotNil(t, result)

		assert.False(t, result.Degraded)
		assert.InDelta(t, 250.0, result.RateUsed, 0.0001)

		// Probes run in their fixed sequence
		require.Len(t, result.Ranges, len(DefaultProbes))

		for i, probe := range DefaultProbes {
			assert.Equal(t, probe.ID, result.Ranges[i].ID)
			assert.InDelta(t, probe.AmountUSD*250, result.Ranges[i].AmountVES, 0.0001)
		}

		// Sequential probing means amounts arrive in probe order
		assert.Equal(t, []float64{2500, 15000, 37500}, amounts)
	})

	t.Run("fallback reference rate is flagged", func(t *testing.T) {
		t.Parallel()

		market := &mockMarketplace{name: types.MarketplaceBinance}

		r := NewRanger([]Marketplace{market})

		result := r.RangeScan(context.Background(), DefaultProbes, 0)
		require.NotNil(t, result)

		assert.True(t, result.Degraded)
		assert.InDelta(t, FallbackReferenceRate, result.RateUsed, 0.0001)

		// Probe amounts stay non-zero
		for _, probeResult := range result.Ranges {
			assert.Positive(t, probeResult.AmountVES)
		}
	})

	t.Run("single marketplace failure is isolated", func(t *testing.T) {
		t.Parallel()

		var (
			binance = &mockMarketplace{
				name: types.MarketplaceBinance,
				bookFn: func(_ context.Context, _ float64, _ string) (*types.OrderBook, error) {
					return bookFixture(270), nil
				},
			}

			bybit = &mockMarketplace{
				name: types.MarketplaceBybit,
				bookFn: func(_ context.Context, amountVES float64, _ string) (*types.OrderBook, error) {
					// Fail for the mid probe only
					if amountVES == DefaultProbes[1].AmountUSD*250 {
						return nil, errMarketplace
					}

					return bookFixture(268), nil
				},
			}
		)

		r := NewRanger([]Marketplace{binance, bybit})

		result := r.RangeScan(context.Background(), DefaultProbes, 250)
		require.Len(t, result.Ranges, 3)

		for i, probeResult := range result.Ranges {
			// Binance settles for every probe
			require.Contains(t, probeResult.Books, types.MarketplaceBinance)
			assert.NotEmpty(t, probeResult.Books[types.MarketplaceBinance].Buy)

			// Bybit is empty for mid only, never missing
			require.Contains(t, probeResult.Books, types.MarketplaceBybit)

			bybitBook := probeResult.Books[types.MarketplaceBybit]

			if i == 1 {
				assert.Empty(t, bybitBook.Buy)
				assert.Empty(t, bybitBook.Sell)

				continue
			}

			assert.NotEmpty(t, bybitBook.Buy)
			assert.NotEmpty(t, bybitBook.Sell)
		}
	})

	t.Run("empty book is a valid answer", func(t *testing.T) {
		t.Parallel()

		market := &mockMarketplace{
			name: types.MarketplaceBinance,
			bookFn: func(_ context.Context, _ float64, _ string) (*types.OrderBook, error) {
				return types.NewOrderBook(), nil
			},
		}

		r := NewRanger([]Marketplace{market})

		result := r.RangeScan(context.Background(), DefaultProbes[:1], 250)
		require.Len(t, result.Ranges, 1)

		book := result.Ranges[0].Books[types.MarketplaceBinance]

		require.NotNil(t, book)
		assert.Empty(t, book.Buy)
		assert.Empty(t, book.Sell)
	})
}

func TestRanger_Calculate(t *testing.T) {
	t.Parallel()

	var (
		capturedAmount float64
		capturedMethod string

		market = &mockMarketplace{
			name: types.MarketplaceBinance,
			bookFn: func(_ context.Context, amountVES float64, paymentMethod string) (*types.OrderBook, error) {
				capturedAmount = amountVES
				capturedMethod = paymentMethod

				return bookFixture(271), nil
			},
		}
	)

	r := NewRanger([]Marketplace{market})

	books := r.Calculate(context.Background(), 5000, "Banesco")

	require.Contains(t, books, types.MarketplaceBinance)
	assert.InDelta(t, 5000.0, capturedAmount, 0.0001)
	assert.Equal(t, "Banesco", capturedMethod)
	assert.NotEmpty(t, books[types.MarketplaceBinance].Buy)
}
