package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paralelo-ve/paralelo/analysis"
	"github.com/paralelo-ve/paralelo/p2p"
	"github.com/paralelo-ve/paralelo/provider/news"
	"github.com/paralelo-ve/paralelo/rates"
	"github.com/paralelo-ve/paralelo/storage"
	"github.com/paralelo-ve/paralelo/storage/types"
)

// Job names double as the manual trigger identifiers
const (
	JobNameRateSnapshot = "rate-snapshot"
	JobNameNewsSync     = "news-sync"
	JobNameDailyBrief   = "daily-brief"
	JobNameLocalTrends  = "local-trends"
)

// snapshotProbeUSD is the representative trade size sampled each hour
const snapshotProbeUSD = 60.0

// snapshotTopEntries caps how many book entries are logged per side
const snapshotTopEntries = 3

// NextHourly schedules at the top of the next hour
func NextHourly(now time.Time) time.Time {
	return now.Truncate(time.Hour).Add(time.Hour)
}

// NextDailyAt schedules at the next occurrence of hh:mm UTC
func NextDailyAt(hour, minute int) func(time.Time) time.Time {
	return func(now time.Time) time.Time {
		next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)

		if !next.After(now) {
			next = next.AddDate(0, 0, 1)
		}

		return next
	}
}

// RateSnapshotJob samples each marketplace's order book once an hour
// and appends compact price rows for trend charting. One unreachable
// marketplace aborts the run with nothing written, so every stored
// sample set is complete
type RateSnapshotJob struct {
	aggregator *rates.Aggregator
	markets    []p2p.Marketplace
	store      storage.Storage
}

// NewRateSnapshotJob creates the hourly order-book sampler
func NewRateSnapshotJob(
	aggregator *rates.Aggregator,
	markets []p2p.Marketplace,
	store storage.Storage,
) *RateSnapshotJob {
	return &RateSnapshotJob{
		aggregator: aggregator,
		markets:    markets,
		store:      store,
	}
}

func (j *RateSnapshotJob) Name() string {
	return JobNameRateSnapshot
}

func (j *RateSnapshotJob) Next(now time.Time) time.Time {
	return NextHourly(now)
}

func (j *RateSnapshotJob) Run(ctx context.Context) error {
	view := j.aggregator.Aggregate(ctx)

	rate := view.OfficialUSD.Value
	if rate <= 0 {
		rate = p2p.FallbackReferenceRate
	}

	var (
		amountVES = snapshotProbeUSD * rate
		now       = time.Now().UTC()

		snapshots []*types.P2PSnapshot
	)

	for _, market := range j.markets {
		book, err := market.Book(ctx, amountVES, "")
		if err != nil {
			return fmt.Errorf("unable to sample %s book: %w", market.Name(), err)
		}

		snapshots = append(snapshots, topEntries(market.Name(), types.SideBUY, book.Buy, now)...)
		snapshots = append(snapshots, topEntries(market.Name(), types.SideSELL, book.Sell, now)...)
	}

	if len(snapshots) == 0 {
		return nil
	}

	if err := j.store.SaveP2PSnapshots(ctx, snapshots); err != nil {
		return fmt.Errorf("unable to save snapshots: %w", err)
	}

	return nil
}

// topEntries converts the best book entries into snapshot rows
func topEntries(
	marketplace types.Marketplace,
	side types.Side,
	entries []*types.OrderBookEntry,
	at time.Time,
) []*types.P2PSnapshot {
	count := min(len(entries), snapshotTopEntries)

	snapshots := make([]*types.P2PSnapshot, 0, count)

	for _, entry := range entries[:count] {
		snapshots = append(snapshots, &types.P2PSnapshot{
			Marketplace: marketplace,
			Side:        side,
			Price:       entry.Price,
			Advertiser:  entry.Advertiser,
			CreatedAt:   at,
		})
	}

	return snapshots
}

// NewsSyncJob pulls the RSS feeds once an hour and upserts the
// relevant articles, deduplicated by URL
type NewsSyncJob struct {
	collector *news.Collector
	store     storage.Storage
}

// NewNewsSyncJob creates the hourly news sync
func NewNewsSyncJob(collector *news.Collector, store storage.Storage) *NewsSyncJob {
	return &NewsSyncJob{
		collector: collector,
		store:     store,
	}
}

func (j *NewsSyncJob) Name() string {
	return JobNameNewsSync
}

func (j *NewsSyncJob) Next(now time.Time) time.Time {
	return NextHourly(now)
}

func (j *NewsSyncJob) Run(ctx context.Context) error {
	items, err := j.collector.Collect(ctx)
	if err != nil {
		return fmt.Errorf("unable to collect news: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	if err := j.store.UpsertNewsItems(ctx, items); err != nil {
		return fmt.Errorf("unable to save news: %w", err)
	}

	return nil
}

// DailyBriefJob generates the morning market brief
type DailyBriefJob struct {
	agent      *analysis.Agent
	aggregator *rates.Aggregator
}

// NewDailyBriefJob creates the daily 08:00 UTC brief job
func NewDailyBriefJob(agent *analysis.Agent, aggregator *rates.Aggregator) *DailyBriefJob {
	return &DailyBriefJob{
		agent:      agent,
		aggregator: aggregator,
	}
}

func (j *DailyBriefJob) Name() string {
	return JobNameDailyBrief
}

func (j *DailyBriefJob) Next(now time.Time) time.Time {
	return NextDailyAt(8, 0)(now)
}

func (j *DailyBriefJob) Run(ctx context.Context) error {
	view := j.aggregator.Aggregate(ctx)

	_, err := j.agent.DailyBrief(ctx, view)
	if errors.Is(err, analysis.ErrNothingToAnalyze) {
		return nil
	}

	return err
}

// LocalTrendsJob generates the daily local P2P trends report
type LocalTrendsJob struct {
	agent *analysis.Agent
}

// NewLocalTrendsJob creates the daily 09:00 UTC trends job
func NewLocalTrendsJob(agent *analysis.Agent) *LocalTrendsJob {
	return &LocalTrendsJob{
		agent: agent,
	}
}

func (j *LocalTrendsJob) Name() string {
	return JobNameLocalTrends
}

func (j *LocalTrendsJob) Next(now time.Time) time.Time {
	return NextDailyAt(9, 0)(now)
}

func (j *LocalTrendsJob) Run(ctx context.Context) error {
	_, err := j.agent.LocalTrends(ctx)
	if errors.Is(err, analysis.ErrNothingToAnalyze) {
		return nil
	}

	return err
}
