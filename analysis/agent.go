package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/paralelo-ve/paralelo/rates"
	"github.com/paralelo-ve/paralelo/storage"
	"github.com/paralelo-ve/paralelo/storage/types"
)

// newsWindow is how far back the agent looks for coverage to ground
// a report on
const newsWindow = 24 * time.Hour

// maxNewsInPrompt caps the articles quoted to the model
const maxNewsInPrompt = 10

// ErrNothingToAnalyze is returned when neither market data nor news
// coverage is available to ground a report on
var ErrNothingToAnalyze = errors.New("no market data or news to analyze")

var errInvalidReport = errors.New("invalid report payload received")

// allowedSentiments is the closed set a report's sentiment must fall in
var allowedSentiments = map[string]struct{}{
	"positive": {},
	"negative": {},
	"neutral":  {},
	"mixed":    {},
}

// reportPayload is the JSON shape the model is asked to produce
type reportPayload struct {
	Content   string `json:"content"`
	Sentiment string `json:"sentiment"`
}

// Agent turns the day's rates, P2P activity and news coverage into
// stored narrative reports
type Agent struct {
	generator Generator
	store     storage.Storage
	logger    *slog.Logger
}

// NewAgent creates a new instance of the analysis agent
func NewAgent(generator Generator, store storage.Storage, options ...func(*Agent)) *Agent {
	a := &Agent{
		generator: generator,
		store:     store,
		logger:    noopLogger,
	}

	for _, opt := range options {
		opt(a)
	}

	return a
}

// WithAgentLogger sets the logger for the agent
func WithAgentLogger(logger *slog.Logger) func(*Agent) {
	return func(a *Agent) {
		a.logger = logger
	}
}

// DailyBrief generates and stores the morning market brief from the
// given rate view and the last day of news. Nothing is written when
// generation fails
func (a *Agent) DailyBrief(ctx context.Context, view *rates.View) (*types.MarketReport, error) {
	news, err := a.store.NewsSince(ctx, time.Now().Add(-newsWindow), maxNewsInPrompt)
	if err != nil {
		return nil, fmt.Errorf("unable to load recent news: %w", err)
	}

	if view == nil && len(news) == 0 {
		return nil, ErrNothingToAnalyze
	}

	prompt := dailyBriefPrompt(view, news)

	return a.generate(ctx, types.ReportTypeDailyBrief, prompt)
}

// LocalTrends generates and stores the local P2P trends report from
// the last day of sampled order-book activity
func (a *Agent) LocalTrends(ctx context.Context) (*types.MarketReport, error) {
	snapshots, err := a.store.P2PSnapshotsSince(ctx, time.Now().Add(-newsWindow))
	if err != nil {
		return nil, fmt.Errorf("unable to load P2P snapshots: %w", err)
	}

	if len(snapshots) == 0 {
		return nil, ErrNothingToAnalyze
	}

	prompt := localTrendsPrompt(summarizeSnapshots(snapshots))

	return a.generate(ctx, types.ReportTypeLocalAnalysis, prompt)
}

func (a *Agent) generate(
	ctx context.Context,
	reportType types.ReportType,
	prompt string,
) (*types.MarketReport, error) {
	text, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("unable to generate %s report: %w", reportType, err)
	}

	payload, err := parseReportPayload(text)
	if err != nil {
		return nil, fmt.Errorf("unable to parse %s report: %w", reportType, err)
	}

	report := &types.MarketReport{
		Type:      reportType,
		Content:   payload.Content,
		Sentiment: payload.Sentiment,
		CreatedAt: time.Now(),
	}

	if err = a.store.SaveMarketReport(ctx, report); err != nil {
		return nil, fmt.Errorf("unable to save %s report: %w", reportType, err)
	}

	a.logger.Info("market report generated",
		"type", reportType,
		"sentiment", report.Sentiment,
	)

	return report, nil
}

// parseReportPayload decodes the model output, tolerating the code
// fences chat models like to wrap JSON in
func parseReportPayload(text string) (*reportPayload, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload reportPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("unable to decode payload: %w", err)
	}

	if payload.Content == "" {
		return nil, errInvalidReport
	}

	payload.Sentiment = strings.ToLower(strings.TrimSpace(payload.Sentiment))

	if _, ok := allowedSentiments[payload.Sentiment]; !ok {
		payload.Sentiment = "neutral"
	}

	return &payload, nil
}

func dailyBriefPrompt(view *rates.View, news []*types.NewsItem) string {
	var b strings.Builder

	b.WriteString("Eres un analista del mercado cambiario venezolano. ")
	b.WriteString("Escribe un resumen breve (3-4 oraciones) de la situación del día.\n\n")

	if view != nil {
		b.WriteString("Datos del mercado:\n")

		if view.OfficialUSD.Value > 0 {
			fmt.Fprintf(&b, "- Tasa oficial USD/VES: %.2f (%s)\n",
				view.OfficialUSD.Value, view.OfficialUSD.Confidence)
		}

		for _, market := range view.Markets {
			fmt.Fprintf(&b, "- %s USDT/VES: compra %.2f, venta %.2f\n",
				market.Marketplace, market.Buy, market.Sell)
		}

		if view.SpreadPct != 0 {
			fmt.Fprintf(&b, "- Brecha oficial/paralelo: %.1f%%\n", view.SpreadPct)
		}
	}

	if len(news) > 0 {
		b.WriteString("\nTitulares recientes:\n")

		for _, item := range news {
			fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Source)
		}
	}

	b.WriteString("\nResponde SOLO con JSON: ")
	b.WriteString(`{"content": "...", "sentiment": "positive|negative|neutral|mixed"}`)

	return b.String()
}

func localTrendsPrompt(summary string) string {
	var b strings.Builder

	b.WriteString("Eres un analista del mercado P2P de USDT en Venezuela. ")
	b.WriteString("Describe las tendencias de las últimas 24 horas (3-4 oraciones).\n\n")
	b.WriteString(summary)
	b.WriteString("\nResponde SOLO con JSON: ")
	b.WriteString(`{"content": "...", "sentiment": "positive|negative|neutral|mixed"}`)

	return b.String()
}

// summarizeSnapshots compacts raw snapshot rows into per-marketplace
// price ranges the model can reason about
func summarizeSnapshots(snapshots []*types.P2PSnapshot) string {
	type bucket struct {
		min, max, sum float64
		count         int
	}

	buckets := make(map[string]*bucket)

	for _, snap := range snapshots {
		key := fmt.Sprintf("%s %s", snap.Marketplace, snap.Side)

		agg, ok := buckets[key]
		if !ok {
			agg = &bucket{min: snap.Price, max: snap.Price}
			buckets[key] = agg
		}

		if snap.Price < agg.min {
			agg.min = snap.Price
		}

		if snap.Price > agg.max {
			agg.max = snap.Price
		}

		agg.sum += snap.Price
		agg.count++
	}

	var b strings.Builder

	fmt.Fprintf(&b, "Muestras registradas: %d\n", len(snapshots))

	for key, agg := range buckets {
		fmt.Fprintf(&b, "- %s: min %.2f, max %.2f, promedio %.2f (%d muestras)\n",
			key, agg.min, agg.max, agg.sum/float64(agg.count), agg.count)
	}

	return b.String()
}
