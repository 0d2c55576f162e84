package storage

import (
	"context"
	"time"

	"github.com/paralelo-ve/paralelo/storage/types"
)

// Storage is an abstraction over the durable dashboard data
type Storage interface {
	// UpsertHistoryPoint merges the given day's official rates into history.
	// Writes are keyed by calendar day; a repeated upsert for the same date
	// must leave exactly one record for that date
	UpsertHistoryPoint(context.Context, *types.HistoryPoint) error

	// HistoryPoints returns all history points, ascending by date
	HistoryPoints(context.Context) ([]*types.HistoryPoint, error)

	// LatestHistoryPoint returns the most recent history point,
	// or nil if history is empty
	LatestHistoryPoint(context.Context) (*types.HistoryPoint, error)

	// SaveP2PSnapshots appends the given order-book snapshots
	SaveP2PSnapshots(context.Context, []*types.P2PSnapshot) error

	// P2PSnapshotsSince returns snapshots created at or after the given time,
	// ascending by creation time
	P2PSnapshotsSince(context.Context, time.Time) ([]*types.P2PSnapshot, error)

	// UpsertNewsItems saves the given news items, deduplicating by URL
	UpsertNewsItems(context.Context, []*types.NewsItem) error

	// NewsSince returns news published at or after the given time,
	// descending by publication time, capped at limit
	NewsSince(context.Context, time.Time, int) ([]*types.NewsItem, error)

	// SaveMarketReport appends the given narrative report
	SaveMarketReport(context.Context, *types.MarketReport) error

	// MarketReports returns the latest reports, descending by creation time,
	// optionally filtered by type, capped at limit
	MarketReports(context.Context, *types.ReportType, int) ([]*types.MarketReport, error)
}
