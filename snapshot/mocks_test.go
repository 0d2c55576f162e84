package snapshot

import (
	"context"
	"time"

	"github.com/paralelo-ve/paralelo/storage/types"
)

type (
	nameDelegate func() string
	nextDelegate func(time.Time) time.Time
	runDelegate  func(context.Context) error
)

type mockJob struct {
	nameFn nameDelegate
	nextFn nextDelegate
	runFn  runDelegate
}

func (m *mockJob) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return ""
}

func (m *mockJob) Next(now time.Time) time.Time {
	if m.nextFn != nil {
		return m.nextFn(now)
	}

	return now.Add(time.Hour)
}

func (m *mockJob) Run(ctx context.Context) error {
	if m.runFn != nil {
		return m.runFn(ctx)
	}

	return nil
}

type (
	fetchDelegate func(context.Context) (*types.OfficialRates, error)
)

type mockOfficialSource struct {
	fetchFn fetchDelegate
}

func (m *mockOfficialSource) Name() string {
	return "mock-official"
}

func (m *mockOfficialSource) Fetch(ctx context.Context) (*types.OfficialRates, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}

	return nil, nil
}

type (
	bookDelegate func(context.Context, float64, string) (*types.OrderBook, error)
)

type mockMarketplace struct {
	name   types.Marketplace
	bookFn bookDelegate
}

func (m *mockMarketplace) Name() types.Marketplace {
	return m.name
}

func (m *mockMarketplace) Book(
	ctx context.Context,
	amountVES float64,
	paymentMethod string,
) (*types.OrderBook, error) {
	if m.bookFn != nil {
		return m.bookFn(ctx, amountVES, paymentMethod)
	}

	return types.NewOrderBook(), nil
}
