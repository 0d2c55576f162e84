package server

import (
	"context"

	"github.com/paralelo-ve/paralelo/p2p"
	"github.com/paralelo-ve/paralelo/rates"
	"github.com/paralelo-ve/paralelo/storage/types"
)

type (
	aggregateDelegate func(context.Context) *rates.View
	rangeScanDelegate func(context.Context, []types.ProbeRange, float64) *p2p.ScanResult
	calculateDelegate func(context.Context, float64, string) map[types.Marketplace]*types.OrderBook
	topCoinsDelegate  func(context.Context) ([]*types.Coin, error)
	triggerDelegate   func(context.Context, string) error
)

type mockRateViewer struct {
	aggregateFn aggregateDelegate
}

func (m *mockRateViewer) Aggregate(ctx context.Context) *rates.View {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx)
	}

	return &rates.View{}
}

type mockDepthScanner struct {
	rangeScanFn rangeScanDelegate
	calculateFn calculateDelegate
}

func (m *mockDepthScanner) RangeScan(
	ctx context.Context,
	probes []types.ProbeRange,
	referenceRate float64,
) *p2p.ScanResult {
	if m.rangeScanFn != nil {
		return m.rangeScanFn(ctx, probes, referenceRate)
	}

	return &p2p.ScanResult{}
}

func (m *mockDepthScanner) Calculate(
	ctx context.Context,
	amountVES float64,
	paymentMethod string,
) map[types.Marketplace]*types.OrderBook {
	if m.calculateFn != nil {
		return m.calculateFn(ctx, amountVES, paymentMethod)
	}

	return nil
}

type mockCoinLister struct {
	topCoinsFn topCoinsDelegate
}

func (m *mockCoinLister) TopCoins(ctx context.Context) ([]*types.Coin, error) {
	if m.topCoinsFn != nil {
		return m.topCoinsFn(ctx)
	}

	return nil, nil
}

type mockJobTrigger struct {
	triggerFn triggerDelegate
}

func (m *mockJobTrigger) Trigger(ctx context.Context, name string) error {
	if m.triggerFn != nil {
		return m.triggerFn(ctx, name)
	}

	return nil
}
