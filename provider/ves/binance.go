//nolint:tagliatelle // Binance API uses its own casing
package ves

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/paralelo-ve/paralelo/provider/currencies"
	"github.com/paralelo-ve/paralelo/storage/types"
)

const binanceP2PURL = "https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search"

// topOffers is the number of offers fetched per side.
// The marketplace returns them pre-sorted best price first
const topOffers = 5

// binanceSearchRequest is the request body for the Binance P2P search API
type binanceSearchRequest struct {
	Asset       types.Currency `json:"asset"`
	Fiat        types.Currency `json:"fiat"`
	TradeType   types.Side     `json:"tradeType"`
	Rows        int            `json:"rows"`
	Page        int            `json:"page"`
	PayTypes    []string       `json:"payTypes"`
	Classifies  []string       `json:"classifies"`
	TransAmount float64        `json:"transAmount,omitempty"`
}

// binanceSearchResponse is the response from the Binance P2P search API
type binanceSearchResponse struct {
	Data []binanceOffer `json:"data"`
}

type binanceOffer struct {
	Adv        binanceAdv        `json:"adv"`
	Advertiser binanceAdvertiser `json:"advertiser"`
}

type binanceAdv struct {
	Price                string               `json:"price"`
	MinSingleTransAmount string               `json:"minSingleTransAmount"`
	MaxSingleTransAmount string               `json:"maxSingleTransAmount"`
	SurplusAmount        string               `json:"surplusAmount"`
	TradableQuantity     string               `json:"tradableQuantity"`
	TradeMethods         []binanceTradeMethod `json:"tradeMethods"`
}

type binanceTradeMethod struct {
	TradeMethodName string `json:"tradeMethodName"`
}

type binanceAdvertiser struct {
	NickName        string  `json:"nickName"`
	MonthOrderCount int     `json:"monthOrderCount"`
	MonthFinishRate float64 `json:"monthFinishRate"`
}

// BinanceP2P is the Binance P2P marketplace adapter for USDT/VES.
// Binance's native trade types already match the canonical taker
// orientation (BUY acquires USDT), so no side remapping is needed
type BinanceP2P struct {
	client *http.Client
	url    string
}

// NewBinanceP2P creates a new instance of the Binance P2P adapter
func NewBinanceP2P(timeout time.Duration) *BinanceP2P {
	return &BinanceP2P{
		client: &http.Client{
			Timeout: timeout,
		},
		url: binanceP2PURL,
	}
}

func (p *BinanceP2P) Name() types.Marketplace {
	return types.MarketplaceBinance
}

// Rate fetches the top-of-book summary, averaging the best offers
// on each side
func (p *BinanceP2P) Rate(ctx context.Context) (*types.MarketRate, error) {
	buyEntries, err := p.fetchSide(ctx, types.SideBUY, 0, "")
	if err != nil {
		return nil, fmt.Errorf("unable to fetch BUY offers: %w", err)
	}

	sellEntries, err := p.fetchSide(ctx, types.SideSELL, 0, "")
	if err != nil {
		return nil, fmt.Errorf("unable to fetch SELL offers: %w", err)
	}

	var (
		buy  = averagePrice(buyEntries)
		sell = averagePrice(sellEntries)
	)

	return &types.MarketRate{
		Marketplace: types.MarketplaceBinance,
		Buy:         buy,
		Sell:        sell,
		Average:     (buy + sell) / 2,
	}, nil
}

// Book fetches the top offers for both sides, filtered to the given
// trade amount (in VES) and optional payment method
func (p *BinanceP2P) Book(
	ctx context.Context,
	amountVES float64,
	paymentMethod string,
) (*types.OrderBook, error) {
	buyEntries, err := p.fetchSide(ctx, types.SideBUY, amountVES, paymentMethod)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch BUY offers: %w", err)
	}

	sellEntries, err := p.fetchSide(ctx, types.SideSELL, amountVES, paymentMethod)
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
func (p *BinanceP2P) fetchSide(
	ctx context.Context,
	side types.Side,
	amountVES float64,
	paymentMethod string,
) ([]*types.OrderBookEntry, error) {
	reqBody := binanceSearchRequest{
		Asset:      currencies.USDT,
		Fiat:       currencies.VES,
		TradeType:  side,
		Rows:       topOffers,
		Page:       1,
		PayTypes:   []string{},
		Classifies: []string{"mass", "profession"},
	}

	if amountVES > 0 {
		reqBody.TransAmount = amountVES
	}

	if paymentMethod != "" && paymentMethod != "all" {
		reqBody.PayTypes = []string{paymentMethod}
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

	var apiResp binanceSearchResponse
	if err = json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("unable to decode response: %w", err)
	}

	entries := make([]*types.OrderBookEntry, 0, len(apiResp.Data))

	for _, offer := range apiResp.Data {
		price, ok := parseFloat(offer.Adv.Price)
		if !ok || price <= 0 {
			continue
		}

		var (
			minAmount, _ = parseFloat(offer.Adv.MinSingleTransAmount)
			maxAmount, _ = parseFloat(offer.Adv.MaxSingleTransAmount)
		)

		available, ok := parseFloat(offer.Adv.SurplusAmount)
		if !ok {
			available, _ = parseFloat(offer.Adv.TradableQuantity)
		}

		methods := make([]string, 0, len(offer.Adv.TradeMethods))
		for _, method := range offer.Adv.TradeMethods {
			if method.TradeMethodName == "" {
				continue
			}

			methods = append(methods, method.TradeMethodName)
		}

		entries = append(entries, &types.OrderBookEntry{
			Advertiser:     offer.Advertiser.NickName,
			Price:          price,
			MinAmount:      minAmount,
			MaxAmount:      maxAmount,
			Available:      available,
			PaymentMethods: methods,
			Orders:         offer.Advertiser.MonthOrderCount,
			CompletionRate: normalizeCompletionRate(offer.Advertiser.MonthFinishRate),
		})
	}

	return entries, nil
}

// averagePrice averages the entry prices, 0 for an empty side
func averagePrice(entries []*types.OrderBookEntry) float64 {
	if len(entries) == 0 {
		return 0
	}

	var total float64
	for _, entry := range entries {
		total += entry.Price
	}

	return total / float64(len(entries))
}

// normalizeCompletionRate ensures the completion rate is 0-1
func normalizeCompletionRate(rate float64) float64 {
	if rate <= 0 {
		return 0
	}

	if rate > 1 {
		return rate / 100
	}

	return rate
}

// parseFloat parses a float string into a value
func parseFloat(value string) (float64, bool) {
	if value == "" {
		return 0, false
	}

	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}

	return parsed, true
}
