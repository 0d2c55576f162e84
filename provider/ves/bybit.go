//nolint:tagliatelle // Bybit API uses its own casing
package ves

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/paralelo-ve/paralelo/storage/types"
)

const bybitOTCURL = "https://api2.bybit.com/fiat/otc/item/online"

// Bybit labels its sides numerically; side "1" is the taker acquiring
// USDT, which maps to the canonical BUY orientation
const (
	bybitSideBuy  = "1"
	bybitSideSell = "0"
)

// bestPriceProbeVES is the nominal amount used when probing Bybit for
// its top-of-book price (roughly a few USD)
const bestPriceProbeVES = 2000

// bybitSearchRequest is the request body for the Bybit OTC API
type bybitSearchRequest struct {
	UserID     string   `json:"userId"`
	TokenID    string   `json:"tokenId"`
	CurrencyID string   `json:"currencyId"`
	Payment    []string `json:"payment"`
	Side       string   `json:"side"`
	Size       string   `json:"size"`
	Page       string   `json:"page"`
	Amount     string   `json:"amount"`
}

// bybitSearchResponse is the response from the Bybit OTC API
type bybitSearchResponse struct {
	Result bybitSearchResult `json:"result"`
}

type bybitSearchResult struct {
	Items []bybitItem `json:"items"`
}

type bybitItem struct {
	NickName          string   `json:"nickName"`
	Price             string   `json:"price"`
	MinAmount         string   `json:"minAmount"`
	MaxAmount         string   `json:"maxAmount"`
	Quantity          string   `json:"quantity"`
	Payments          []string `json:"payments"`
	RecentOrderNum    int      `json:"recentOrderNum"`
	RecentExecuteRate float64  `json:"recentExecuteRate"`
}

// BybitP2P is the Bybit OTC marketplace adapter for USDT/VES
type BybitP2P struct {
	client *http.Client
	url    string
}

// NewBybitP2P creates a new instance of the Bybit P2P adapter
func NewBybitP2P(timeout time.Duration) *BybitP2P {
	return &BybitP2P{
		client: &http.Client{
			Timeout: timeout,
		},
		url: bybitOTCURL,
	}
}

func (p *BybitP2P) Name() types.Marketplace {
	return types.MarketplaceBybit
}

// Rate fetches the top-of-book summary using the best offer per side
func (p *BybitP2P) Rate(ctx context.Context) (*types.MarketRate, error) {
	buyEntries, err := p.fetchSide(ctx, bybitSideBuy, bestPriceProbeVES, "")
	if err != nil {
		return nil, fmt.Errorf("unable to fetch BUY offers: %w", err)
	}

	sellEntries, err := p.fetchSide(ctx, bybitSideSell, bestPriceProbeVES, "")
	if err != nil {
		return nil, fmt.Errorf("unable to fetch SELL offers: %w", err)
	}

	var buy, sell float64

	if len(buyEntries) > 0 {
		buy = buyEntries[0].Price
	}

	if len(sellEntries) > 0 {
		sell = sellEntries[0].Price
	}

	return &types.MarketRate{
		Marketplace: types.MarketplaceBybit,
		Buy:         buy,
		Sell:        sell,
		Average:     (buy + sell) / 2,
	}, nil
}

// Book fetches the top offers for both sides, filtered to the given
// trade amount (in VES) and optional payment method
func (p *BybitP2P) Book(
	ctx context.Context,
	amountVES float64,
	paymentMethod string,
) (*types.OrderBook, error) {
	buyEntries, err := p.fetchSide(ctx, bybitSideBuy, amountVES, paymentMethod)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch BUY offers: %w", err)
	}

	sellEntries, err := p.fetchSide(ctx, bybitSideSell, amountVES, paymentMethod)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch SELL offers: %w", err)
	}

	return &types.OrderBook{
		Buy:  buyEntries,
		Sell: sellEntries,
	}, nil
}

// fetchSide queries one side of the book and normalizes the offers.
// A response with zero offers is a valid empty side, not a failure
func (p *BybitP2P) fetchSide(
	ctx context.Context,
	side string,
	amountVES float64,
	paymentMethod string,
) ([]*types.OrderBookEntry, error) {
	reqBody := bybitSearchRequest{
		TokenID:    "USDT",
		CurrencyID: "VES",
		Payment:    []string{},
		Side:       side,
		Size:       fmt.Sprintf("%d", topOffers),
		Page:       "1",
	}

	if amountVES > 0 {
		reqBody.Amount = fmt.Sprintf("%.0f", amountVES)
	}

	if paymentMethod != "" && paymentMethod != "all" {
		reqBody.Payment = []string{paymentMethod}
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("unable to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("unable to create POST request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to execute POST request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("invalid status code received: %d", resp.StatusCode)
	}

	var apiResp bybitSearchResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	entries := make([]*types.OrderBookEntry, 0, len(apiResp.Result.Items))

	for _, item := range apiResp.Result.Items {
		price, ok := parseFloat(item.Price)
		if !ok || price <= 0 {
			continue
		}

		var (
			minAmount, _ = parseFloat(item.MinAmount)
			maxAmount, _ = parseFloat(item.MaxAmount)
			available, _ = parseFloat(item.Quantity)
		)

		entries = append(entries, &types.OrderBookEntry{
			Advertiser:     item.NickName,
			Price:          price,
			MinAmount:      minAmount,
			MaxAmount:      maxAmount,
			Available:      available,
			PaymentMethods: item.Payments,
			Orders:         item.RecentOrderNum,
			CompletionRate: normalizeCompletionRate(item.RecentExecuteRate),
		})
	}

	return entries, nil
}
