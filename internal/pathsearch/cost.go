package pathsearch

import (
	"fmt"

	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
)

// effectiveRate computes the edge's realized conversion ratio (spec.md
// §4.2.3). For BUY it is the order's quoted rate; for SELL it is taken
// from the capacity envelope (baseCapacity.max / quoteCapacity.max),
// which DESIGN.md records as the accepted resolution of spec.md §9's
// open question: the evaluator is defined so bounds stay proportional
// to rate net of fees, so the two formulations coincide.
func effectiveRate(edge *routegraph.Edge) (decimal.Decimal, error) {
	if edge.Side == orderbook.SideBuy {
		rate := edge.Order.Rate.Rate
		return rate.Rescale(CostScale)
	}
	if edge.QuoteCapacity.Max.IsZero() {
		return decimal.Zero(CostScale)
	}
	return edge.BaseCapacity.Max.Amount.Div(edge.QuoteCapacity.Max.Amount, CostScale)
}

// inputCapacity returns the capacity envelope that bounds this edge's
// spend-side (input) currency (spec.md §4.2.2).
func inputCapacity(edge *routegraph.Edge) routegraph.Range {
	if edge.Side == orderbook.SideBuy {
		return edge.GrossBaseCapacity
	}
	return edge.QuoteCapacity
}

// edgeSupportsAmount intersects currentRange with edge's input capacity,
// returning the trimmed range or nil if infeasible.
func edgeSupportsAmount(edge *routegraph.Edge, currentRange *SpendRange) (*SpendRange, error) {
	lo, hi := currentRange.Min, currentRange.Max
	if cmp, err := lo.Cmp(hi); err == nil && cmp > 0 {
		lo, hi = hi, lo
	}

	envelope := inputCapacity(edge)
	newMin := lo
	if cmp, err := envelope.Min.Cmp(newMin); err != nil {
		return nil, err
	} else if cmp > 0 {
		newMin = envelope.Min
	}
	newMax := hi
	if cmp, err := envelope.Max.Cmp(newMax); err != nil {
		return nil, err
	} else if cmp < 0 {
		newMax = envelope.Max
	}

	cmp, err := newMin.Cmp(newMax)
	if err != nil {
		return nil, err
	}
	if cmp > 0 {
		return nil, nil
	}
	if newMin.IsZero() && newMax.IsZero() && !envelope.Min.IsZero() {
		return nil, nil
	}

	desired := currentRange.Desired
	if desired != nil {
		clamped := clampMoney(*desired, newMin, newMax)
		desired = &clamped
	}

	return &SpendRange{Min: newMin, Max: newMax, Desired: desired}, nil
}

func clampMoney(m, lo, hi money.Money) money.Money {
	if c, err := m.Cmp(lo); err == nil && c < 0 {
		return lo
	}
	if c, err := m.Cmp(hi); err == nil && c > 0 {
		return hi
	}
	return m
}

// calculateNextRange projects feasibleRange (in edge.From currency)
// through the edge's effective conversion rate into edge.To currency
// (spec.md §4.2.2).
func calculateNextRange(edge *routegraph.Edge, feasibleRange *SpendRange, rate decimal.Decimal) (*SpendRange, error) {
	outScale := outputScale(edge)

	minOut, err := convertThroughRate(edge, feasibleRange.Min, rate, outScale)
	if err != nil {
		return nil, err
	}
	maxOut, err := convertThroughRate(edge, feasibleRange.Max, rate, outScale)
	if err != nil {
		return nil, err
	}
	if cmp, err := minOut.Cmp(maxOut); err == nil && cmp > 0 {
		minOut, maxOut = maxOut, minOut
	} else if err != nil {
		return nil, err
	}

	var desiredOut *money.Money
	if feasibleRange.Desired != nil {
		d, err := convertThroughRate(edge, *feasibleRange.Desired, rate, outScale)
		if err != nil {
			return nil, err
		}
		clamped := clampMoney(d, minOut, maxOut)
		desiredOut = &clamped
	}

	return &SpendRange{Min: minOut, Max: maxOut, Desired: desiredOut}, nil
}

func outputScale(edge *routegraph.Edge) int32 {
	if edge.Side == orderbook.SideBuy {
		return edge.QuoteCapacity.Max.Scale()
	}
	return edge.BaseCapacity.Max.Scale()
}

// convertThroughRate projects amount (denominated in edge.From) into
// edge.To by multiplying through the effective rate: for BUY, rate is
// base->quote directly; for SELL, effectiveRate is already expressed as
// base-per-quote (spec.md §4.2.3), so both directions are a single
// multiply.
func convertThroughRate(edge *routegraph.Edge, amount money.Money, rate decimal.Decimal, outScale int32) (money.Money, error) {
	if amount.Currency != edge.From {
		return money.Money{}, fmt.Errorf("pathsearch: amount currency %s does not match edge.From %s", amount.Currency, edge.From)
	}
	outAmount, err := amount.Amount.Mul(rate, outScale)
	if err != nil {
		return money.Money{}, err
	}
	return money.New(edge.To, outAmount)
}
