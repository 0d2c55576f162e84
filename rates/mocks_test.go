package rates

import (
	"context"

	"github.com/paralelo-ve/paralelo/storage/types"
)

type (
	officialFetchDelegate func(context.Context) (*types.OfficialRates, error)
	marketRateDelegate    func(context.Context) (*types.MarketRate, error)
)

type mockOfficialSource struct {
	nameFn  func() string
	fetchFn officialFetchDelegate
}

func (m *mockOfficialSource) Name() string {
	if m.nameFn != nil {
		return m.nameFn()
	}

	return "mock-official"
}

func (m *mockOfficialSource) Fetch(ctx context.Context) (*types.OfficialRates, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}

	return nil, nil
}

type mockMarketSource struct {
	name   types.Marketplace
	rateFn marketRateDelegate
}

func (m *mockMarketSource) Name() types.Marketplace {
	return m.name
}

func (m *mockMarketSource) Rate(ctx context.Context) (*types.MarketRate, error) {
	if m.rateFn != nil {
		return m.rateFn(ctx)
	}

	return nil, nil
}
