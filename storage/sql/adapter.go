package sql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/paralelo-ve/paralelo/storage/types"
)

const dateLayout = "2006-01-02"

type Storage struct {
	pool *pgxpool.Pool
}

func NewStorage(pool *pgxpool.Pool) *Storage {
	return &Storage{
		pool: pool,
	}
}

func (s *Storage) UpsertHistoryPoint(ctx context.Context, p *types.HistoryPoint) error {
	rates, err := json.Marshal(p.Rates)
	if err != nil {
		return fmt.Errorf("unable to encode rates: %w", err)
	}

	// jsonb || merges per currency, so a same-day upsert
	// overwrites fields instead of duplicating the row
	_, err = s.pool.Exec(
		ctx,
		`INSERT INTO history_points (date, rates)
		 VALUES ($1, $2)
		 ON CONFLICT (date)
		 DO UPDATE SET rates = history_points.rates || EXCLUDED.rates`,
		p.Date,
		rates,
	)
	if err != nil {
		return fmt.Errorf("unable to upsert history point: %w", err)
	}

	return nil
}

func (s *Storage) HistoryPoints(ctx context.Context) ([]*types.HistoryPoint, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT date, rates FROM history_points ORDER BY date ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch history points: %w", err)
	}
	defer rows.Close()

	out := make([]*types.HistoryPoint, 0)

	for rows.Next() {
		var (
			date  time.Time
			rates []byte
		)

		if err := rows.Scan(&date, &rates); err != nil {
			return nil, fmt.Errorf("unable to scan history point: %w", err)
		}

		point := &types.HistoryPoint{
			Date:  date.Format(dateLayout),
			Rates: make(map[types.Currency]float64),
		}

		if err := json.Unmarshal(rates, &point.Rates); err != nil {
			return nil, fmt.Errorf("unable to decode rates: %w", err)
		}

		out = append(out, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read history points: %w", err)
	}

	return out, nil
}

func (s *Storage) LatestHistoryPoint(ctx context.Context) (*types.HistoryPoint, error) {
	var (
		date  time.Time
		rates []byte
	)

	err := s.pool.QueryRow(
		ctx,
		`SELECT date, rates FROM history_points ORDER BY date DESC LIMIT 1`,
	).Scan(&date, &rates)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil //nolint:nilnil // valid case
		}

		return nil, fmt.Errorf("unable to fetch latest history point: %w", err)
	}

	point := &types.HistoryPoint{
		Date:  date.Format(dateLayout),
		Rates: make(map[types.Currency]float64),
	}

	if err := json.Unmarshal(rates, &point.Rates); err != nil {
		return nil, fmt.Errorf("unable to decode rates: %w", err)
	}

	return point, nil
}

func (s *Storage) SaveP2PSnapshots(ctx context.Context, snapshots []*types.P2PSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	for _, snapshot := range snapshots {
		batch.Queue(
			`INSERT INTO p2p_snapshots (marketplace, side, price, advertiser, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			snapshot.Marketplace.String(),
			snapshot.Side.String(),
			snapshot.Price,
			snapshot.Advertiser,
			snapshot.CreatedAt,
		)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("unable to save p2p snapshots: %w", err)
	}

	return nil
}

func (s *Storage) P2PSnapshotsSince(
	ctx context.Context,
	since time.Time,
) ([]*types.P2PSnapshot, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT marketplace, side, price, advertiser, created_at
		 FROM p2p_snapshots
		 WHERE created_at >= $1
		 ORDER BY created_at ASC`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch p2p snapshots: %w", err)
	}
	defer rows.Close()

	out := make([]*types.P2PSnapshot, 0)

	for rows.Next() {
		var (
			snapshot          types.P2PSnapshot
			marketplace, side string
		)

		err := rows.Scan(
			&marketplace,
			&side,
			&snapshot.Price,
			&snapshot.Advertiser,
			&snapshot.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan p2p snapshot: %w", err)
		}

		snapshot.Marketplace = types.Marketplace(marketplace)
		snapshot.Side = types.Side(side)

		out = append(out, &snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read p2p snapshots: %w", err)
	}

	return out, nil
}

func (s *Storage) UpsertNewsItems(ctx context.Context, items []*types.NewsItem) error {
	if len(items) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	for _, item := range items {
		batch.Queue(
			`INSERT INTO news_items (url, title, source, summary, published_at)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (url)
			 DO UPDATE SET
				title = EXCLUDED.title,
				source = EXCLUDED.source,
				summary = EXCLUDED.summary,
				published_at = EXCLUDED.published_at`,
			item.URL,
			item.Title,
			item.Source,
			item.Summary,
			item.PublishedAt,
		)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("unable to save news items: %w", err)
	}

	return nil
}

func (s *Storage) NewsSince(
	ctx context.Context,
	since time.Time,
	limit int,
) ([]*types.NewsItem, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT url, title, source, summary, published_at
		 FROM news_items
		 WHERE published_at >= $1
		 ORDER BY published_at DESC
		 LIMIT $2`,
		since,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch news items: %w", err)
	}
	defer rows.Close()

	out := make([]*types.NewsItem, 0)

	for rows.Next() {
		var item types.NewsItem

		err := rows.Scan(
			&item.URL,
			&item.Title,
			&item.Source,
			&item.Summary,
			&item.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan news item: %w", err)
		}

		out = append(out, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read news items: %w", err)
	}

	return out, nil
}

func (s *Storage) SaveMarketReport(ctx context.Context, report *types.MarketReport) error {
	_, err := s.pool.Exec(
		ctx,
		`INSERT INTO market_reports (report_type, content, sentiment, created_at)
		 VALUES ($1, $2, $3, $4)`,
		report.Type.String(),
		report.Content,
		report.Sentiment,
		report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("unable to save market report: %w", err)
	}

	return nil
}

func (s *Storage) MarketReports(
	ctx context.Context,
	reportType *types.ReportType,
	limit int,
) ([]*types.MarketReport, error) {
	var (
		rows pgx.Rows
		err  error
	)

	if reportType != nil {
		rows, err = s.pool.Query(
			ctx,
			`SELECT report_type, content, sentiment, created_at
			 FROM market_reports
			 WHERE report_type = $1
			 ORDER BY created_at DESC
			 LIMIT $2`,
			reportType.String(),
			limit,
		)
	} else {
		rows, err = s.pool.Query(
			ctx,
			`SELECT report_type, content, sentiment, created_at
			 FROM market_reports
			 ORDER BY created_at DESC
			 LIMIT $1`,
			limit,
		)
	}

	if err != nil {
		return nil, fmt.Errorf("unable to fetch market reports: %w", err)
	}
	defer rows.Close()

	out := make([]*types.MarketReport, 0)

	for rows.Next() {
		var (
			report     types.MarketReport
			reportKind string
		)

		err := rows.Scan(
			&reportKind,
			&report.Content,
			&report.Sentiment,
			&report.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("unable to scan market report: %w", err)
		}

		report.Type = types.ReportType(reportKind)

		out = append(out, &report)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("unable to read market reports: %w", err)
	}

	return out, nil
}
