package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/paralelo-ve/paralelo/storage/types"
)

type Storage struct {
	history   map[string]map[types.Currency]float64 // date -> rates
	snapshots []types.P2PSnapshot
	news      map[string]types.NewsItem // url -> item
	reports   []types.MarketReport

	mu sync.RWMutex
}

func NewStorage() *Storage {
	return &Storage{
		history: make(map[string]map[types.Currency]float64),
		news:    make(map[string]types.NewsItem),
	}
}

func (s *Storage) UpsertHistoryPoint(_ context.Context, p *types.HistoryPoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rates, ok := s.history[p.Date]
	if !ok {
		rates = make(map[types.Currency]float64, len(p.Rates))
		s.history[p.Date] = rates
	}

	// Same-day upserts merge per currency, they never duplicate the day
	for currency, value := range p.Rates {
		rates[currency] = value
	}

	return nil
}

func (s *Storage) HistoryPoints(_ context.Context) ([]*types.HistoryPoint, error) {
	s.mu.RLock()

	out := make([]*types.HistoryPoint, 0, len(s.history))

	for date, rates := range s.history {
		cp := make(map[types.Currency]float64, len(rates))
		for currency, value := range rates {
			cp[currency] = value
		}

		out = append(out, &types.HistoryPoint{
			Date:  date,
			Rates: cp,
		})
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].Date < out[j].Date
	})

	return out, nil
}

func (s *Storage) LatestHistoryPoint(ctx context.Context) (*types.HistoryPoint, error) {
	points, err := s.HistoryPoints(ctx)
	if err != nil {
		return nil, err
	}

	if len(points) == 0 {
		return nil, nil //nolint:nilnil // valid case
	}

	return points[len(points)-1], nil
}

func (s *Storage) SaveP2PSnapshots(_ context.Context, snapshots []*types.P2PSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snapshot := range snapshots {
		s.snapshots = append(s.snapshots, *snapshot)
	}

	return nil
}

func (s *Storage) P2PSnapshotsSince(
	_ context.Context,
	since time.Time,
) ([]*types.P2PSnapshot, error) {
	s.mu.RLock()

	out := make([]*types.P2PSnapshot, 0, len(s.snapshots))

	for i := range s.snapshots {
		if s.snapshots[i].CreatedAt.Before(since) {
			continue
		}

		cp := s.snapshots[i]
		out = append(out, &cp)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})

	return out, nil
}

func (s *Storage) UpsertNewsItems(_ context.Context, items []*types.NewsItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range items {
		s.news[item.URL] = *item
	}

	return nil
}

func (s *Storage) NewsSince(
	_ context.Context,
	since time.Time,
	limit int,
) ([]*types.NewsItem, error) {
	s.mu.RLock()

	out := make([]*types.NewsItem, 0, len(s.news))

	for url := range s.news {
		item := s.news[url]
		if item.PublishedAt.Before(since) {
			continue
		}

		out = append(out, &item)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (s *Storage) SaveMarketReport(_ context.Context, report *types.MarketReport) error {
	s.mu.Lock()
	s.reports = append(s.reports, *report)
	s.mu.Unlock()

	return nil
}

func (s *Storage) MarketReports(
	_ context.Context,
	reportType *types.ReportType,
	limit int,
) ([]*types.MarketReport, error) {
	s.mu.RLock()

	out := make([]*types.MarketReport, 0, len(s.reports))

	for i := range s.reports {
		if reportType != nil && s.reports[i].Type != *reportType {
			continue
		}

		cp := s.reports[i]
		out = append(out, &cp)
	}

	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}
