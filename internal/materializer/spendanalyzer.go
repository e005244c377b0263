package materializer

import (
	"fmt"

	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/pkg/money"
)

// FilterBySpendBounds returns the subset of orders reachable as the
// first leg of a route starting with spendCurrency in [spendMin,
// spendMax]: orders whose spend-side currency (FromCurrency) matches
// spendCurrency are kept only if their spend-side interval overlaps the
// window; orders with any other spend currency are kept unconditionally
// since they may still participate as later legs (spec.md §4.4).
func FilterBySpendBounds(orders []*orderbook.Order, spendCurrency string, spendMin, spendMax money.Money) ([]*orderbook.Order, error) {
	out := make([]*orderbook.Order, 0, len(orders))
	for _, order := range orders {
		if order.FromCurrency() != spendCurrency {
			out = append(out, order)
			continue
		}

		lo, hi := order.Bounds.Min, order.Bounds.Max
		if order.Side == orderbook.SideSell {
			var err error
			lo, err = order.Rate.Convert(order.Bounds.Min, spendMin.Scale())
			if err != nil {
				return nil, err
			}
			hi, err = order.Rate.Convert(order.Bounds.Max, spendMax.Scale())
			if err != nil {
				return nil, err
			}
		}

		overlapsLo, err := hi.Cmp(spendMin)
		if err != nil {
			return nil, err
		}
		overlapsHi, err := lo.Cmp(spendMax)
		if err != nil {
			return nil, err
		}
		if overlapsLo < 0 || overlapsHi > 0 {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}

// InitialSeed is the amount the Spend Analyzer derives for the first
// edge of a candidate route: Net is the value Materialize should spend
// into that edge (denominated in edge.From); Ceiling is the gross-spend
// (BUY) or available-quote-budget (SELL) limit the first leg solver
// must respect (spec.md §4.4).
type InitialSeed struct {
	Net     money.Money
	Ceiling money.Money
}

// intersect narrows [aMin, aMax] to its overlap with [bMin, bMax]; all
// four values must share a currency.
func intersect(aMin, aMax, bMin, bMax money.Money) (money.Money, money.Money, error) {
	lo := aMin
	if cmp, err := bMin.Cmp(lo); err != nil {
		return money.Money{}, money.Money{}, err
	} else if cmp > 0 {
		lo = bMin
	}
	hi := aMax
	if cmp, err := bMax.Cmp(hi); err != nil {
		return money.Money{}, money.Money{}, err
	} else if cmp < 0 {
		hi = bMax
	}
	return lo, hi, nil
}

// DeriveInitialSeed computes the first edge's InitialSeed by
// intersecting the user's spend window with that edge's own capacity,
// then validating the intersection is reachable via the same
// §4.3.1/§4.3.2 solvers the rest of the route uses (spec.md §4.4).
func DeriveInitialSeed(evaluator orderbook.OrderFillEvaluator, edge *routegraph.Edge, spendMin, spendMax money.Money, desired *money.Money) (InitialSeed, error) {
	if edge.Side == orderbook.SideBuy {
		return deriveBuySeed(evaluator, edge, spendMin, spendMax, desired)
	}
	return deriveSellSeed(evaluator, edge, spendMin, spendMax, desired)
}

func deriveBuySeed(evaluator orderbook.OrderFillEvaluator, edge *routegraph.Edge, spendMin, spendMax money.Money, desired *money.Money) (InitialSeed, error) {
	order := edge.Order

	lo, hi, err := intersect(spendMin, spendMax, edge.GrossBaseCapacity.Min, edge.GrossBaseCapacity.Max)
	if err != nil {
		return InitialSeed{}, err
	}
	if cmp, err := lo.Cmp(hi); err != nil {
		return InitialSeed{}, err
	} else if cmp > 0 {
		return InitialSeed{}, fmt.Errorf("materializer: spend window does not overlap order %s gross capacity", order.ID)
	}

	targetGross := hi
	if desired != nil {
		desiredInCurrency, err := money.New(hi.Currency, desired.Amount)
		if err != nil {
			return InitialSeed{}, err
		}
		targetGross, err = clampMoney(desiredInCurrency, lo, hi)
		if err != nil {
			return InitialSeed{}, err
		}
	}

	fill, err := resolveBuyLegAmounts(evaluator, order, targetGross, hi)
	if err != nil {
		return InitialSeed{}, err
	}
	if cmp, err := fill.GrossBase.Cmp(lo); err != nil {
		return InitialSeed{}, err
	} else if cmp < 0 {
		return InitialSeed{}, fmt.Errorf("materializer: order %s gross spend %s falls below intersected minimum %s", order.ID, fill.GrossBase.Amount.String(), lo.Amount.String())
	}

	return InitialSeed{Net: fill.NetBase, Ceiling: hi}, nil
}

func deriveSellSeed(evaluator orderbook.OrderFillEvaluator, edge *routegraph.Edge, spendMin, spendMax money.Money, desired *money.Money) (InitialSeed, error) {
	order := edge.Order

	fillAtMin, err := evaluator.Evaluate(order, order.Bounds.Min)
	if err != nil {
		return InitialSeed{}, err
	}
	fillAtMax, err := evaluator.Evaluate(order, order.Bounds.Max)
	if err != nil {
		return InitialSeed{}, err
	}
	effMin, err := fillAtMin.EffectiveQuote()
	if err != nil {
		return InitialSeed{}, err
	}
	effMax, err := fillAtMax.EffectiveQuote()
	if err != nil {
		return InitialSeed{}, err
	}

	lo, hi, err := intersect(spendMin, spendMax, effMin, effMax)
	if err != nil {
		return InitialSeed{}, err
	}
	if cmp, err := lo.Cmp(hi); err != nil {
		return InitialSeed{}, err
	} else if cmp > 0 {
		return InitialSeed{}, fmt.Errorf("materializer: spend window does not overlap order %s effective-quote capacity", order.ID)
	}

	target := hi
	if desired != nil {
		desiredInCurrency, err := money.New(hi.Currency, desired.Amount)
		if err != nil {
			return InitialSeed{}, err
		}
		target, err = clampMoney(desiredInCurrency, lo, hi)
		if err != nil {
			return InitialSeed{}, err
		}
	}

	budget := edge.QuoteCapacity.Max
	fill, err := resolveSellLegAmounts(evaluator, order, target, budget)
	if err != nil {
		return InitialSeed{}, err
	}
	effQuote, err := fill.EffectiveQuote()
	if err != nil {
		return InitialSeed{}, err
	}
	if cmp, err := effQuote.Cmp(lo); err != nil {
		return InitialSeed{}, err
	} else if cmp < 0 {
		return InitialSeed{}, fmt.Errorf("materializer: order %s effective quote %s falls below intersected minimum %s", order.ID, effQuote.Amount.String(), lo.Amount.String())
	}

	return InitialSeed{Net: target, Ceiling: budget}, nil
}
