package p2p

import (
	"context"

	"github.com/paralelo-ve/paralelo/storage/types"
)

type bookDelegate func(context.Context, float64, string) (*types.OrderBook, error)

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
