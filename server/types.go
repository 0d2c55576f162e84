package server

import "github.com/paralelo-ve/paralelo/storage/types"

type HistoryResponse struct {
	Results []*types.HistoryPoint `json:"results"`

	// Seeded marks the bundled fallback dataset, served when the
	// store holds no history yet
	Seeded bool `json:"seeded"`
}

type CalculateResponse struct {
	AmountVES     float64                                `json:"amount_ves"`
	PaymentMethod string                                 `json:"payment_method,omitempty"`
	Books         map[types.Marketplace]*types.OrderBook `json:"books"`
}

type P2PHistoryResponse struct {
	Days    int                  `json:"days"`
	Results []*types.P2PSnapshot `json:"results"`
}

type NewsResponse struct {
	Results []*types.NewsItem `json:"results"`
}

type AnalysisResponse struct {
	Results []*types.MarketReport `json:"results"`
}

type CoinsResponse struct {
	Results []*types.Coin `json:"results"`
}

type RefreshResponse struct {
	Triggered string `json:"triggered"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
