package mock

import (
	"context"
	"time"

	"github.com/paralelo-ve/paralelo/storage/types"
)

type (
	UpsertHistoryPointDelegate func(context.Context, *types.HistoryPoint) error
	HistoryPointsDelegate      func(context.Context) ([]*types.HistoryPoint, error)
	LatestHistoryPointDelegate func(context.Context) (*types.HistoryPoint, error)
	SaveP2PSnapshotsDelegate   func(context.Context, []*types.P2PSnapshot) error
	P2PSnapshotsSinceDelegate  func(context.Context, time.Time) ([]*types.P2PSnapshot, error)
	UpsertNewsItemsDelegate    func(context.Context, []*types.NewsItem) error
	NewsSinceDelegate          func(context.Context, time.Time, int) ([]*types.NewsItem, error)
	SaveMarketReportDelegate   func(context.Context, *types.MarketReport) error
	MarketReportsDelegate      func(context.Context, *types.ReportType, int) ([]*types.MarketReport, error)
)

type Storage struct {
	UpsertHistoryPointFn UpsertHistoryPointDelegate
	HistoryPointsFn      HistoryPointsDelegate
	LatestHistoryPointFn LatestHistoryPointDelegate
	SaveP2PSnapshotsFn   SaveP2PSnapshotsDelegate
	P2PSnapshotsSinceFn  P2PSnapshotsSinceDelegate
	UpsertNewsItemsFn    UpsertNewsItemsDelegate
	NewsSinceFn          NewsSinceDelegate
	SaveMarketReportFn   SaveMarketReportDelegate
	MarketReportsFn      MarketReportsDelegate
}

func (m *Storage) UpsertHistoryPoint(ctx context.Context, p *types.HistoryPoint) error {
	if m.UpsertHistoryPointFn != nil {
		return m.UpsertHistoryPointFn(ctx, p)
	}

	return nil
}

func (m *Storage) HistoryPoints(ctx context.Context) ([]*types.HistoryPoint, error) {
	if m.HistoryPointsFn != nil {
		return m.HistoryPointsFn(ctx)
	}

	return nil, nil
}

func (m *Storage) LatestHistoryPoint(ctx context.Context) (*types.HistoryPoint, error) {
	if m.LatestHistoryPointFn != nil {
		return m.LatestHistoryPointFn(ctx)
	}

	return nil, nil
}

func (m *Storage) SaveP2PSnapshots(ctx context.Context, snapshots []*types.P2PSnapshot) error {
	if m.SaveP2PSnapshotsFn != nil {
		return m.SaveP2PSnapshotsFn(ctx, snapshots)
	}

	return nil
}

func (m *Storage) P2PSnapshotsSince(
	ctx context.Context,
	since time.Time,
) ([]*types.P2PSnapshot, error) {
	if m.P2PSnapshotsSinceFn != nil {
		return m.P2PSnapshotsSinceFn(ctx, since)
	}

	return nil, nil
}

func (m *Storage) UpsertNewsItems(ctx context.Context, items []*types.NewsItem) error {
	if m.UpsertNewsItemsFn != nil {
		return m.UpsertNewsItemsFn(ctx, items)
	}

	return nil
}

func (m *Storage) NewsSince(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]*types.NewsItem, error) {
	if m.NewsSinceFn != nil {
		return m.NewsSinceFn(ctx, since, limit)
	}

	return nil, nil
}

func (m *Storage) SaveMarketReport(ctx context.Context, report *types.MarketReport) error {
	if m.SaveMarketReportFn != nil {
		return m.SaveMarketReportFn(ctx, report)
	}

	return nil
}

func (m *Storage) MarketReports(
	ctx context.Context,
	reportType *types.ReportType,
	limit int,
) ([]*types.MarketReport, error) {
	if m.MarketReportsFn != nil {
		return m.MarketReportsFn(ctx, reportType, limit)
	}

	return nil, nil
}
