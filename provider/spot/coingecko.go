// Package spot fetches global crypto spot-market listings for the
// dashboard's top-coins widget. Listings are served through a
// short-lived cache so bursts of dashboard traffic produce a single
// upstream call.
package spot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/paralelo-ve/paralelo/storage/types"
)

const coinGeckoMarketsURL = "https://api.coingecko.com/api/v3/coins/markets"

// DefaultTopCoins is the number of listings fetched per refresh
const DefaultTopCoins = 10

// DefaultCacheTTL keeps listings fresh enough for a dashboard widget
// without burning through the upstream's unauthenticated rate limit
const DefaultCacheTTL = 5 * time.Minute

//nolint:tagliatelle // CoinGecko API uses snake_case
type coinGeckoMarket struct {
	ID             string  `json:"id"`
	MarketCapRank  int     `json:"market_cap_rank"`
	Name           string  `json:"name"`
	Symbol         string  `json:"symbol"`
	Image          string  `json:"image"`
	CurrentPrice   float64 `json:"current_price"`
	MarketCap      float64 `json:"market_cap"`
	TotalVolume    float64 `json:"total_volume"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
	PriceChange7d  float64 `json:"price_change_percentage_7d_in_currency"`
}

// CoinGeckoProvider fetches USD spot listings from the public
// CoinGecko markets API
type CoinGeckoProvider struct {
	client *http.Client
	url    string
	limit  int

	cache *Cache[[]*types.Coin]
}

// NewCoinGeckoProvider creates a new instance of the CoinGecko provider
func NewCoinGeckoProvider(timeout time.Duration, options ...func(*CoinGeckoProvider)) *CoinGeckoProvider {
	p := &CoinGeckoProvider{
		client: &http.Client{
			Timeout: timeout,
		},
		url:   coinGeckoMarketsURL,
		limit: DefaultTopCoins,
		cache: NewCache[[]*types.Coin](DefaultCacheTTL),
	}

	for _, opt := range options {
		opt(p)
	}

	return p
}

// WithTopCoinsLimit overrides the number of listings fetched
func WithTopCoinsLimit(limit int) func(*CoinGeckoProvider) {
	return func(p *CoinGeckoProvider) {
		p.limit = limit
	}
}

// WithCacheTTL overrides the listing cache lifetime
func WithCacheTTL(ttl time.Duration) func(*CoinGeckoProvider) {
	return func(p *CoinGeckoProvider) {
		p.cache = NewCache[[]*types.Coin](ttl)
	}
}

// TopCoins returns the current top listings by market cap, served from
// the cache when fresh. When the upstream fails and a stale value
// exists, the stale value is returned instead of the error
func (p *CoinGeckoProvider) TopCoins(ctx context.Context) ([]*types.Coin, error) {
	if coins, ok := p.cache.Get(); ok {
		return coins, nil
	}

	coins, err := p.fetch(ctx)
	if err != nil {
		if stale, ok := p.cache.GetStale(); ok {
			return stale, nil
		}

		return nil, err
	}

	p.cache.Set(coins)

	return coins, nil
}

func (p *CoinGeckoProvider) fetch(ctx context.Context) ([]*types.Coin, error) {
	query := url.Values{
		"vs_currency":             {"usd"},
		"order":                   {"market_cap_desc"},
		"per_page":                {fmt.Sprintf("%d", p.limit)},
		"page":                    {"1"},
		"price_change_percentage": {"24h,7d"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("unable to create GET request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute GET request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var markets []coinGeckoMarket
	if err = json.NewDecoder(resp.Body).Decode(&markets); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	coins := make([]*types.Coin, 0, len(markets))

	for _, market := range markets {
		coins = append(coins, &types.Coin{
			ID:        market.ID,
			Rank:      market.MarketCapRank,
			Name:      market.Name,
			Symbol:    market.Symbol,
			Image:     market.Image,
			Price:     market.CurrentPrice,
			MarketCap: market.MarketCap,
			Volume24h: market.TotalVolume,
			Change24h: market.PriceChange24h,
			Change7d:  market.PriceChange7d,
		})
	}

	return coins, nil
}
