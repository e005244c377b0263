package orderbook

import (
	"github.com/mExOms/routefinder/internal/feepolicy"
	"github.com/mExOms/routefinder/pkg/money"
)

// Fill is the result of evaluating an order at a given base quantity:
// the net base fill, the raw (pre quote-fee) quote implied by the
// order's rate, the gross base spend (net base plus any base fee), and
// the fee breakdown that produced grossBase.
type Fill struct {
	NetBase   money.Money
	Quote     money.Money
	GrossBase money.Money
	Fees      feepolicy.FeeBreakdown
}

// EffectiveQuote is the quote amount actually exchanged once a SELL
// order's quote-fee is folded in: rawQuote + quoteFee, i.e. the taker
// pays the exchange's cut on top of the raw conversion. Fee semantics
// are additive from the taker's perspective.
func (f Fill) EffectiveQuote() (money.Money, error) {
	if f.Fees.QuoteFee == nil {
		return f.Quote, nil
	}
	return f.Quote.Add(*f.Fees.QuoteFee, -1)
}

// OrderFillEvaluator computes a Fill for a candidate base quantity
// against a specific order. It is the plug-in seam spec.md §9 calls
// out: the graph builder and leg materializer both depend only on this
// interface, never on a concrete fee formula.
type OrderFillEvaluator interface {
	Evaluate(order *Order, baseAmount money.Money) (Fill, error)
}

// DefaultFillEvaluator converts baseAmount through the order's rate and
// applies its fee policy.
type DefaultFillEvaluator struct{}

// Evaluate implements OrderFillEvaluator.
func (DefaultFillEvaluator) Evaluate(order *Order, baseAmount money.Money) (Fill, error) {
	quote, err := order.Rate.Convert(baseAmount, order.Rate.Rate.Scale())
	if err != nil {
		return Fill{}, err
	}

	feeSide := feepolicy.SideBuy
	if order.Side == SideSell {
		feeSide = feepolicy.SideSell
	}
	fees, err := order.FeePolicy.Calculate(feeSide, baseAmount, quote)
	if err != nil {
		return Fill{}, err
	}

	grossBase := baseAmount
	if fees.BaseFee != nil {
		grossBase, err = baseAmount.Add(*fees.BaseFee, -1)
		if err != nil {
			return Fill{}, err
		}
	}

	return Fill{
		NetBase:   baseAmount,
		Quote:     quote,
		GrossBase: grossBase,
		Fees:      fees,
	}, nil
}
