package p2p

import (
	"context"

	"github.com/paralelo-ve/paralelo/storage/types"
)

// Marketplace is a single P2P order-book upstream.
// Adapters normalize their native shapes and buy/sell labeling into the
// shared OrderBook form before returning. An empty book is a legitimate
// "no offers" answer; only transport or payload failures return an error
type Marketplace interface {
	// Name returns the marketplace identifier
	Name() types.Marketplace

	// Book fetches the top offers for both sides, filtered to the given
	// trade amount (in VES) and optional payment method
	Book(ctx context.Context, amountVES float64, paymentMethod string) (*types.OrderBook, error)
}
