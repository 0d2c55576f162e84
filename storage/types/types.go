package types

import "time"

type Currency string

func (c Currency) String() string {
	return string(c)
}

// Side is the canonical taker orientation for P2P order books.
// BUY means the taker acquires USDT with VES, SELL means the taker
// converts USDT back into VES. Both marketplace adapters normalize
// their native labeling to this orientation
type Side string

const (
	SideBUY  Side = "BUY"
	SideSELL Side = "SELL"
)

func (s Side) String() string {
	return string(s)
}

type Marketplace string

const (
	MarketplaceBinance Marketplace = "binance"
	MarketplaceBybit   Marketplace = "bybit"
)

func (m Marketplace) String() string {
	return string(m)
}

// OfficialRates is the normalized result of a single official-rate scrape.
// EffectiveDate is the publication ("Fecha Valor") calendar day, and doubles
// as the history upsert key
type OfficialRates struct {
	FetchedAt     time.Time            `json:"fetched_at"`
	Rates         map[Currency]float64 `json:"rates"`
	EffectiveDate string               `json:"effective_date"` // YYYY-MM-DD
}

// MarketRate is a marketplace's top-of-book summary for USDT/VES
type MarketRate struct {
	Marketplace Marketplace `json:"marketplace"`
	Buy         float64     `json:"buy"`
	Sell        float64     `json:"sell"`
	Average     float64     `json:"average"`
}

// OrderBookEntry is a single normalized P2P advertisement.
// Entries within a book are ordered best-price-first, as ranked
// by the marketplace itself
type OrderBookEntry struct {
	Advertiser     string   `json:"advertiser"`
	Price          float64  `json:"price"`
	MinAmount      float64  `json:"min_amount"`
	MaxAmount      float64  `json:"max_amount"`
	Available      float64  `json:"available"`
	PaymentMethods []string `json:"payment_methods"`
	Orders         int      `json:"orders"`
	CompletionRate float64  `json:"completion_rate"` // 0-1
}

// OrderBook holds both sides of a marketplace probe result.
// An empty (non-nil) side is a legitimate "no offers" answer,
// distinct from an upstream failure
type OrderBook struct {
	Buy  []*OrderBookEntry `json:"buy"`
	Sell []*OrderBookEntry `json:"sell"`
}

// NewOrderBook creates an empty order book
func NewOrderBook() *OrderBook {
	return &OrderBook{
		Buy:  make([]*OrderBookEntry, 0),
		Sell: make([]*OrderBookEntry, 0),
	}
}

// ProbeRange is a representative trade size used to sample
// marketplace depth, nominated in USD
type ProbeRange struct {
	ID        string  `json:"id"`
	Label     string  `json:"label"`
	AmountUSD float64 `json:"amount_usd"`
}

// ProbeResult is the per-probe comparison row across marketplaces
type ProbeResult struct {
	ProbeRange

	AmountVES float64                    `json:"amount_ves"`
	Books     map[Marketplace]*OrderBook `json:"books"`
}

// HistoryPoint is a single calendar day of official rates.
// At most one point exists per date; newer scrapes for the same
// day merge into the existing point
type HistoryPoint struct {
	Date  string               `json:"date"` // YYYY-MM-DD, unique key
	Rates map[Currency]float64 `json:"rates"`
}

// P2PSnapshot is one order-book ad sampled by the hourly logger
type P2PSnapshot struct {
	Marketplace Marketplace `json:"marketplace"`
	Side        Side        `json:"side"`
	Price       float64     `json:"price"`
	Advertiser  string      `json:"advertiser"`
	CreatedAt   time.Time   `json:"created_at"`
}

type ReportType string

const (
	ReportTypeDailyBrief    ReportType = "daily_brief"
	ReportTypeLocalAnalysis ReportType = "local_analysis"
)

func (r ReportType) String() string {
	return string(r)
}

// NewsItem is a single scraped news article, deduplicated by URL
type NewsItem struct {
	URL         string    `json:"url"` // unique key
	Title       string    `json:"title"`
	Source      string    `json:"source"`
	Summary     string    `json:"summary"`
	PublishedAt time.Time `json:"published_at"`
}

// MarketReport is a derived narrative artifact, kept separate
// from the rate history under its own type tag
type MarketReport struct {
	Type      ReportType `json:"report_type"`
	Content   string     `json:"content"`
	Sentiment string     `json:"sentiment"`
	CreatedAt time.Time  `json:"created_at"`
}

// Coin is a spot-market listing for the top-coins widget
type Coin struct {
	ID        string  `json:"id"`
	Rank      int     `json:"rank"`
	Name      string  `json:"name"`
	Symbol    string  `json:"symbol"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap"`
	Volume24h float64 `json:"volume_24h"`
	Change24h float64 `json:"change_24h"`
	Change7d  float64 `json:"change_7d"`
}
