package p2p

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/paralelo-ve/paralelo/storage/types"
)

// FallbackReferenceRate substitutes the reference exchange rate when it
// is unavailable, so probe amounts stay non-zero and scans still run.
// Results produced this way are flagged as degraded, never passed off
// as live conversions
const FallbackReferenceRate = 100.0

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// DefaultProbes is the fixed set of representative trade sizes used to
// sample each marketplace's depth curve
var DefaultProbes = []types.ProbeRange{
	{ID: "low", Label: "$1 - $20", AmountUSD: 10},
	{ID: "mid", Label: "$20 - $100", AmountUSD: 60},
	{ID: "high", Label: "$100 - $200", AmountUSD: 150},
}

// ScanResult is a full depth scan across probes and marketplaces
type ScanResult struct {
	RateUsed float64              `json:"rate_used"`
	Degraded bool                 `json:"degraded"`
	Ranges   []*types.ProbeResult `json:"ranges"`
}

// Ranger samples marketplace depth at fixed trade sizes
type Ranger struct {
	markets []Marketplace
	logger  *slog.Logger

	queryTimeout time.Duration
}

type RangerOption func(r *Ranger)

// WithRangerLogger specifies the logger for the ranger
func WithRangerLogger(l *slog.Logger) RangerOption {
	return func(r *Ranger) {
		r.logger = l
	}
}

// WithQueryTimeout bounds every single marketplace query.
// Defaults to 10s
func WithQueryTimeout(d time.Duration) RangerOption {
	return func(r *Ranger) {
		r.queryTimeout = d
	}
}

// NewRanger creates a new ranger over the given marketplaces
func NewRanger(markets []Marketplace, opts ...RangerOption) *Ranger {
	r := &Ranger{
		markets:      markets,
		logger:       noopLogger,
		queryTimeout: time.Second * 10,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// RangeScan runs every probe in order, converting its nominal USD amount
// to VES with the given reference rate. Probes run strictly sequentially
// to bound the upstream request rate; the marketplaces within one probe
// are queried concurrently. A marketplace failure shrinks to an empty
// book for that probe only, it never fails the probe or the scan
func (r *Ranger) RangeScan(
	ctx context.Context,
	probes []types.ProbeRange,
	referenceRate float64,
) *ScanResult {
	result := &ScanResult{
		RateUsed: referenceRate,
		Ranges:   make([]*types.ProbeResult, 0, len(probes)),
	}

	if referenceRate <= 0 {
		result.RateUsed = FallbackReferenceRate
		result.Degraded = true

		r.logger.Warn(
			"reference rate unavailable, substituting fallback",
			"fallback", FallbackReferenceRate,
		)
	}

	for _, probe := range probes {
		select {
		case <-ctx.Done():
			return result
		default:
		}

		amountVES := probe.AmountUSD * result.RateUsed

		probeResult := &types.ProbeResult{
			ProbeRange: probe,
			AmountVES:  amountVES,
			Books:      r.queryMarkets(ctx, amountVES, ""),
		}

		result.Ranges = append(result.Ranges, probeResult)
	}

	return result
}

// Calculate is the single-probe variant for one ad-hoc amount (in VES)
// and optional payment-method filter
func (r *Ranger) Calculate(
	ctx context.Context,
	amountVES float64,
	paymentMethod string,
) map[types.Marketplace]*types.OrderBook {
	return r.queryMarkets(ctx, amountVES, paymentMethod)
}

// queryMarkets queries all marketplaces concurrently and waits for each
// to settle. Failed marketplaces map to empty books
func (r *Ranger) queryMarkets(
	ctx context.Context,
	amountVES float64,
	paymentMethod string,
) map[types.Marketplace]*types.OrderBook {
	var (
		books = make([]*types.OrderBook, len(r.markets))

		wg sync.WaitGroup
	)

	for i, market := range r.markets {
		wg.Add(1)

		go func() {
			defer wg.Done()

			queryCtx, cancelFn := context.WithTimeout(ctx, r.queryTimeout)
			defer cancelFn()

			book, err := market.Book(queryCtx, amountVES, paymentMethod)
			if err != nil {
				r.logger.Error(
					"unable to fetch order book",
					"marketplace", market.Name().String(),
					"amount_ves", amountVES,
					"err", err,
				)

				return
			}

			books[i] = book
		}()
	}

	wg.Wait()

	out := make(map[types.Marketplace]*types.OrderBook, len(r.markets))

	for i, market := range r.markets {
		if books[i] == nil {
			out[market.Name()] = types.NewOrderBook()

			continue
		}

		out[market.Name()] = books[i]
	}

	return out
}
