package rates

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/paralelo-ve/paralelo/provider/currencies"
	"github.com/paralelo-ve/paralelo/storage"
	"github.com/paralelo-ve/paralelo/storage/types"
)

var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// OfficialSource yields the official per-currency rates
type OfficialSource interface {
	// Name returns the human-readable name of the source
	Name() string

	// Fetch scrapes the current official rates
	Fetch(ctx context.Context) (*types.OfficialRates, error)
}

// MarketSource yields a marketplace's top-of-book USDT/VES summary
type MarketSource interface {
	// Name returns the marketplace identifier
	Name() types.Marketplace

	// Rate fetches the current buy / sell summary
	Rate(ctx context.Context) (*types.MarketRate, error)
}

// View is the fully reconciled rate composition served to clients.
// Absent marketplaces are simply omitted from Markets; the official
// fields carry their confidence level instead of hard-failing
type View struct {
	CapturedAt    time.Time                               `json:"captured_at"`
	OfficialUSD   ResolvedRate                            `json:"official_usd"`
	OfficialEUR   ResolvedRate                            `json:"official_eur"`
	EffectiveDate string                                  `json:"effective_date,omitempty"`
	Markets       map[types.Marketplace]*types.MarketRate `json:"markets"`
	SpreadPct     float64                                 `json:"spread_pct"`
	MixAverage    float64                                 `json:"mix_average"`
	MarketAverage float64                                 `json:"market_average"`
	SoftSpreadPct float64                                 `json:"soft_spread_pct"`
}

// Aggregator composes the official source, the marketplaces and the
// history tail into a single best-available view per request
type Aggregator struct {
	official OfficialSource
	markets  []MarketSource
	store    storage.Storage
	logger   *slog.Logger

	fetchTimeout time.Duration
}

type AggregatorOption func(a *Aggregator)

// WithAggregatorLogger specifies the logger for the aggregator
func WithAggregatorLogger(l *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		a.logger = l
	}
}

// WithFetchTimeout bounds every single upstream call.
// Defaults to 10s
func WithFetchTimeout(d time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		a.fetchTimeout = d
	}
}

// NewAggregator creates a new rate aggregator
func NewAggregator(
	official OfficialSource,
	markets []MarketSource,
	store storage.Storage,
	opts ...AggregatorOption,
) *Aggregator {
	a := &Aggregator{
		official:     official,
		markets:      markets,
		store:        store,
		logger:       noopLogger,
		fetchTimeout: time.Second * 10,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Aggregate fetches all sources concurrently, waits for every one to
// settle, and reconciles the results. One slow or broken upstream never
// blocks or blanks out the others; the worst outcome for any field is
// degraded confidence. Aggregate itself never fails
func (a *Aggregator) Aggregate(ctx context.Context) *View {
	var (
		official    *types.OfficialRates
		officialErr error

		tail    *types.HistoryPoint
		tailErr error

		marketRates = make([]*types.MarketRate, len(a.markets))
		marketErrs  = make([]error, len(a.markets))

		wg sync.WaitGroup
	)

	bounded := func(fn func(ctx context.Context)) {
		defer wg.Done()

		fetchCtx, cancelFn := context.WithTimeout(ctx, a.fetchTimeout)
		defer cancelFn()

		fn(fetchCtx)
	}

	wg.Add(2 + len(a.markets))

	go bounded(func(ctx context.Context) {
		official, officialErr = a.official.Fetch(ctx)
	})

	go bounded(func(ctx context.Context) {
		tail, tailErr = a.store.LatestHistoryPoint(ctx)
	})

	for i, market := range a.markets {
		go bounded(func(ctx context.Context) {
			marketRates[i], marketErrs[i] = market.Rate(ctx)
		})
	}

	wg.Wait()

	if officialErr != nil {
		a.logger.Error(
			"unable to fetch official rates",
			"source", a.official.Name(),
			"err", officialErr,
		)
	}

	if tailErr != nil {
		a.logger.Error(
			"unable to fetch history tail",
			"err", tailErr,
		)
	}

	view := &View{
		CapturedAt: time.Now().UTC(),
		Markets:    make(map[types.Marketplace]*types.MarketRate, len(a.markets)),
	}

	// Resolve the official fields independently per currency
	view.OfficialUSD = Resolve(
		officialValue(official, currencies.USD),
		tailValue(tail, currencies.USD),
	)

	view.OfficialEUR = Resolve(
		officialValue(official, currencies.EUR),
		tailValue(tail, currencies.EUR),
	)

	if official != nil {
		view.EffectiveDate = official.EffectiveDate
	}

	for i, market := range a.markets {
		if marketErrs[i] != nil {
			a.logger.Error(
				"unable to fetch marketplace rate",
				"marketplace", market.Name().String(),
				"err", marketErrs[i],
			)

			continue
		}

		if marketRates[i] == nil {
			continue
		}

		view.Markets[market.Name()] = marketRates[i]
	}

	// Derived metrics use resolved values only, never raw inputs
	var (
		usd       = view.OfficialUSD.Value
		marketBuy = a.referenceMarketBuy(view)
	)

	view.MixAverage = MixAverage(usd, view.OfficialEUR.Value)

	// Marketplace-derived metrics stay absent without a marketplace rate
	if marketBuy > 0 {
		view.SpreadPct = SpreadPct(usd, marketBuy)
		view.MarketAverage = MarketAverage(marketBuy, usd)
		view.SoftSpreadPct = SoftSpreadPct(view.MarketAverage, usd)
	}

	// Record a fresh official scrape into day-keyed history
	if officialErr == nil && official != nil && len(official.Rates) > 0 {
		a.recordHistory(ctx, official)
	}

	return view
}

// referenceMarketBuy picks the buy rate of the first registered
// marketplace that settled successfully
func (a *Aggregator) referenceMarketBuy(view *View) float64 {
	for _, market := range a.markets {
		if rate, ok := view.Markets[market.Name()]; ok && rate.Buy > 0 {
			return rate.Buy
		}
	}

	return 0
}

// recordHistory upserts the scraped official rates under their
// effective date. History save failures only degrade future fallbacks,
// they never fail the current view
func (a *Aggregator) recordHistory(ctx context.Context, official *types.OfficialRates) {
	saveCtx, cancelFn := context.WithTimeout(ctx, a.fetchTimeout)
	defer cancelFn()

	point := &types.HistoryPoint{
		Date:  official.EffectiveDate,
		Rates: official.Rates,
	}

	if err := a.store.UpsertHistoryPoint(saveCtx, point); err != nil {
		a.logger.Error(
			"unable to record official rates",
			"date", official.EffectiveDate,
			"err", err,
		)
	}
}

func officialValue(official *types.OfficialRates, currency types.Currency) *float64 {
	if official == nil {
		return nil
	}

	value, ok := official.Rates[currency]
	if !ok {
		return nil
	}

	return &value
}

func tailValue(tail *types.HistoryPoint, currency types.Currency) *float64 {
	if tail == nil {
		return nil
	}

	value, ok := tail.Rates[currency]
	if !ok {
		return nil
	}

	return &value
}
