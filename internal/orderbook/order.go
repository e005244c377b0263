// Package orderbook implements the immutable Order model and the
// OrderFillEvaluator capability the graph builder and leg materializer
// both depend on (spec.md §3, §4.1).
package orderbook

import (
	"fmt"

	"github.com/mExOms/routefinder/internal/feepolicy"
	"github.com/mExOms/routefinder/pkg/money"
)

// Side is the order's posting side.
type Side string

const (
	// SideBuy edges run base -> quote (taker spends base, receives quote).
	SideBuy Side = "BUY"
	// SideSell edges run quote -> base (taker spends quote, receives base).
	SideSell Side = "SELL"
)

// Bounds is a closed interval on the order's base-currency fill size.
type Bounds struct {
	Min money.Money
	Max money.Money
}

// Order is an immutable offer to exchange base for quote (BUY) or quote
// for base (SELL), with fill bounds expressed in base currency.
type Order struct {
	ID         string
	Side       Side
	Pair       money.AssetPair
	Bounds     Bounds
	Rate       money.ExchangeRate
	FeePolicy  feepolicy.FeePolicy // New replaces nil with feepolicy.NoFeePolicy{}
}

// New validates the invariants from spec.md §3: min <= max, both bounds
// in the pair's base currency, and the rate's currencies match the pair.
func New(id string, side Side, pair money.AssetPair, bounds Bounds, rate money.ExchangeRate, policy feepolicy.FeePolicy) (*Order, error) {
	if side != SideBuy && side != SideSell {
		return nil, fmt.Errorf("orderbook: invalid side %q", side)
	}
	if bounds.Min.Currency != pair.Base || bounds.Max.Currency != pair.Base {
		return nil, fmt.Errorf("orderbook: bounds must be denominated in base currency %s", pair.Base)
	}
	cmp, err := bounds.Min.Cmp(bounds.Max)
	if err != nil {
		return nil, err
	}
	if cmp > 0 {
		return nil, fmt.Errorf("orderbook: bounds.min must be <= bounds.max")
	}
	if rate.BaseCurrency != pair.Base || rate.QuoteCurrency != pair.Quote {
		return nil, fmt.Errorf("orderbook: rate currencies must match pair (%s/%s)", pair.Base, pair.Quote)
	}
	if policy == nil {
		policy = feepolicy.NoFeePolicy{}
	}
	return &Order{ID: id, Side: side, Pair: pair, Bounds: bounds, Rate: rate, FeePolicy: policy}, nil
}

// FromCurrency is the edge's spend-side currency for this order
// (spec.md §4.1: BUY -> base, SELL -> quote).
func (o *Order) FromCurrency() string {
	if o.Side == SideBuy {
		return o.Pair.Base
	}
	return o.Pair.Quote
}

// ToCurrency is the edge's receive-side currency for this order.
func (o *Order) ToCurrency() string {
	if o.Side == SideBuy {
		return o.Pair.Quote
	}
	return o.Pair.Base
}
