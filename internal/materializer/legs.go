// Package materializer resolves a CandidatePath produced by pathsearch
// into a concrete ExecutionPlan of leg-by-leg fills, and filters the
// order book down to the orders a given spend can actually reach
// (spec.md §4.3, §4.4).
package materializer

import (
	"fmt"

	"github.com/mExOms/routefinder/internal/feepolicy"
	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
)

// MaxBuyIterations bounds the BUY leg's net-base convergence loop
// (spec.md §4.3.1).
const MaxBuyIterations = 12

// MaxSellIterations bounds the SELL leg's target-quote convergence loop
// (spec.md §4.3.2).
const MaxSellIterations = 16

// sellCompareScale is the scale SELL-leg internal value compares run at.
const sellCompareScale = 18

// sellRatioScale is the scale SELL-leg convergence ratios are computed at.
const sellRatioScale = 24

// sellToleranceScale is the scale SELL-leg relative-gap tolerance
// compares run at.
const sellToleranceScale = 12

var sellRelativeTolerance = mustTolerance()

func mustTolerance() decimal.Decimal {
	d, err := decimal.NewFromString("0.000001", sellToleranceScale)
	if err != nil {
		panic(err)
	}
	return d
}

// maxScale32 returns the larger of two scales.
func maxScale32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// clampMoney clamps v into [lo, hi], all three sharing a currency.
func clampMoney(v, lo, hi money.Money) (money.Money, error) {
	if cmp, err := v.Cmp(lo); err != nil {
		return money.Money{}, err
	} else if cmp < 0 {
		return lo, nil
	}
	if cmp, err := v.Cmp(hi); err != nil {
		return money.Money{}, err
	} else if cmp > 0 {
		return hi, nil
	}
	return v, nil
}

// verifyBounds rejects v if it falls outside bounds.
func verifyBounds(v money.Money, bounds orderbook.Bounds) error {
	if cmp, err := v.Cmp(bounds.Min); err != nil {
		return err
	} else if cmp < 0 {
		return fmt.Errorf("resolved base amount %s below order minimum %s", v.Amount.String(), bounds.Min.Amount.String())
	}
	if cmp, err := v.Cmp(bounds.Max); err != nil {
		return err
	} else if cmp > 0 {
		return fmt.Errorf("resolved base amount %s above order maximum %s", v.Amount.String(), bounds.Max.Amount.String())
	}
	return nil
}

// relativeGap computes (actual-desired)/desired at the given scale.
func relativeGap(actual, desired decimal.Decimal, scale int32) (decimal.Decimal, error) {
	if desired.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("relative gap against zero desired amount is undefined")
	}
	diff, err := actual.Sub(desired, scale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return diff.Div(desired, scale)
}

// resolveBuyLegAmounts starts from netSeed clamped to the order's
// bounds and shrinks it proportionally until its gross base spend (net
// plus any base fee) does not exceed grossCeiling. A seed that already
// fits is returned as is; it is not grown toward the ceiling
// (spec.md §4.3.1).
func resolveBuyLegAmounts(evaluator orderbook.OrderFillEvaluator, order *orderbook.Order, netSeed money.Money, grossCeiling money.Money) (orderbook.Fill, error) {
	if netSeed.Currency != order.Pair.Base {
		return orderbook.Fill{}, fmt.Errorf("materializer: BUY leg net seed currency %s does not match order base %s", netSeed.Currency, order.Pair.Base)
	}
	if grossCeiling.Currency != order.Pair.Base {
		return orderbook.Fill{}, fmt.Errorf("materializer: BUY leg gross ceiling currency %s does not match order base %s", grossCeiling.Currency, order.Pair.Base)
	}

	netCandidate, err := clampMoney(netSeed, order.Bounds.Min, order.Bounds.Max)
	if err != nil {
		return orderbook.Fill{}, err
	}

	floorFill, err := evaluator.Evaluate(order, order.Bounds.Min)
	if err != nil {
		return orderbook.Fill{}, err
	}
	if cmp, err := floorFill.GrossBase.Cmp(grossCeiling); err != nil {
		return orderbook.Fill{}, err
	} else if cmp > 0 {
		return orderbook.Fill{}, fmt.Errorf("materializer: BUY leg %s: gross spend at bounds.min %s exceeds ceiling %s", order.ID, floorFill.GrossBase.Amount.String(), grossCeiling.Amount.String())
	}

	var last orderbook.Fill
	for i := 0; i < MaxBuyIterations; i++ {
		fill, err := evaluator.Evaluate(order, netCandidate)
		if err != nil {
			return orderbook.Fill{}, err
		}
		last = fill

		cmp, err := fill.GrossBase.Cmp(grossCeiling)
		if err != nil {
			return orderbook.Fill{}, err
		}
		if cmp <= 0 {
			if err := verifyBounds(fill.NetBase, order.Bounds); err != nil {
				return orderbook.Fill{}, fmt.Errorf("materializer: BUY leg %s: %w", order.ID, err)
			}
			return fill, nil
		}

		scale := maxScale32(netCandidate.Scale(), grossCeiling.Scale()) + 4
		ratio, err := grossCeiling.Amount.Div(fill.GrossBase.Amount, scale)
		if err != nil {
			return orderbook.Fill{}, err
		}
		if ratio.Sign() <= 0 {
			return orderbook.Fill{}, fmt.Errorf("materializer: BUY leg %s: non-positive convergence ratio", order.ID)
		}

		nextAmount, err := netCandidate.Amount.Mul(ratio, netCandidate.Scale())
		if err != nil {
			return orderbook.Fill{}, err
		}
		next, err := money.New(order.Pair.Base, nextAmount)
		if err != nil {
			return orderbook.Fill{}, err
		}
		next, err = clampMoney(next, order.Bounds.Min, order.Bounds.Max)
		if err != nil {
			return orderbook.Fill{}, err
		}
		if eq, err := next.Cmp(netCandidate); err != nil {
			return orderbook.Fill{}, err
		} else if eq == 0 {
			return orderbook.Fill{}, fmt.Errorf("materializer: BUY leg %s: convergence stalled at net %s (gross %s > ceiling %s)", order.ID, netCandidate.Amount.String(), fill.GrossBase.Amount.String(), grossCeiling.Amount.String())
		}
		netCandidate = next
	}
	return orderbook.Fill{}, fmt.Errorf("materializer: BUY leg %s: did not converge within %d iterations (last gross %s, ceiling %s)", order.ID, MaxBuyIterations, last.GrossBase.Amount.String(), grossCeiling.Amount.String())
}

// resolveSellLegAmounts finds the base amount whose effective quote
// spend converges to targetEffectiveQuote without the raw quote ever
// exceeding availableQuoteBudget, clamped to the order's bounds
// (spec.md §4.3.2).
func resolveSellLegAmounts(evaluator orderbook.OrderFillEvaluator, order *orderbook.Order, targetEffectiveQuote money.Money, availableQuoteBudget money.Money) (orderbook.Fill, error) {
	if targetEffectiveQuote.Currency != order.Pair.Quote {
		return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg target currency %s does not match order quote %s", targetEffectiveQuote.Currency, order.Pair.Quote)
	}
	if availableQuoteBudget.Currency != order.Pair.Quote {
		return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg budget currency %s does not match order quote %s", availableQuoteBudget.Currency, order.Pair.Quote)
	}

	baseScale := order.Bounds.Max.Scale()
	inverseRate, err := order.Rate.Invert()
	if err != nil {
		return orderbook.Fill{}, err
	}

	if _, noFee := order.FeePolicy.(feepolicy.NoFeePolicy); noFee {
		base, err := inverseRate.Convert(targetEffectiveQuote, baseScale)
		if err != nil {
			return orderbook.Fill{}, err
		}
		if err := verifyBounds(base, order.Bounds); err != nil {
			return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg %s: %w", order.ID, err)
		}
		fill, err := evaluator.Evaluate(order, base)
		if err != nil {
			return orderbook.Fill{}, err
		}
		if cmp, err := fill.Quote.Cmp(availableQuoteBudget); err != nil {
			return orderbook.Fill{}, err
		} else if cmp > 0 {
			return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg %s: quote %s exceeds available budget %s", order.ID, fill.Quote.Amount.String(), availableQuoteBudget.Amount.String())
		}
		return fill, nil
	}

	currentTarget := targetEffectiveQuote
	base, err := inverseRate.Convert(currentTarget, baseScale)
	if err != nil {
		return orderbook.Fill{}, err
	}

	var last orderbook.Fill
	for i := 0; i < MaxSellIterations; i++ {
		fill, err := evaluator.Evaluate(order, base)
		if err != nil {
			return orderbook.Fill{}, err
		}
		last = fill

		if cmp, err := fill.Quote.Cmp(availableQuoteBudget); err != nil {
			return orderbook.Fill{}, err
		} else if cmp > 0 {
			gap, err := relativeGap(fill.Quote.Amount, availableQuoteBudget.Amount, sellToleranceScale)
			if err != nil {
				return orderbook.Fill{}, err
			}
			if gap.Abs().GreaterThan(sellRelativeTolerance) {
				ratio, err := availableQuoteBudget.Amount.Div(fill.Quote.Amount, sellRatioScale)
				if err != nil {
					return orderbook.Fill{}, err
				}
				if ratio.Sign() <= 0 {
					return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg %s: non-positive budget ratio", order.ID)
				}

				nextBaseAmount, err := base.Amount.Mul(ratio, base.Scale())
				if err != nil {
					return orderbook.Fill{}, err
				}
				nextBase, err := money.New(order.Pair.Base, nextBaseAmount)
				if err != nil {
					return orderbook.Fill{}, err
				}
				nextBase, err = clampMoney(nextBase, order.Bounds.Min, order.Bounds.Max)
				if err != nil {
					return orderbook.Fill{}, err
				}
				if eq, err := nextBase.Cmp(base); err != nil {
					return orderbook.Fill{}, err
				} else if eq == 0 {
					return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg %s: convergence stalled against budget %s", order.ID, availableQuoteBudget.Amount.String())
				}
				base = nextBase

				nextTargetAmount, err := currentTarget.Amount.Mul(ratio, currentTarget.Scale())
				if err != nil {
					return orderbook.Fill{}, err
				}
				currentTarget, err = money.New(order.Pair.Quote, nextTargetAmount)
				if err != nil {
					return orderbook.Fill{}, err
				}
				continue
			}
			// within tolerance of the budget: accept it as-is and fall
			// through to the target convergence check below.
		}

		effQuote, err := fill.EffectiveQuote()
		if err != nil {
			return orderbook.Fill{}, err
		}

		gap, err := relativeGap(effQuote.Amount, currentTarget.Amount, sellCompareScale)
		if err != nil {
			return orderbook.Fill{}, err
		}
		if gap.Abs().LessThanOrEqual(sellRelativeTolerance) {
			if err := verifyBounds(fill.NetBase, order.Bounds); err != nil {
				return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg %s: %w", order.ID, err)
			}
			if cmp, err := fill.Quote.Cmp(availableQuoteBudget); err != nil {
				return orderbook.Fill{}, err
			} else if cmp > 0 {
				return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg %s: converged quote %s still exceeds budget %s", order.ID, fill.Quote.Amount.String(), availableQuoteBudget.Amount.String())
			}
			return fill, nil
		}

		ratio, err := currentTarget.Amount.Div(effQuote.Amount, sellRatioScale)
		if err != nil {
			return orderbook.Fill{}, err
		}
		nextBaseAmount, err := base.Amount.Mul(ratio, base.Scale())
		if err != nil {
			return orderbook.Fill{}, err
		}
		nextBase, err := money.New(order.Pair.Base, nextBaseAmount)
		if err != nil {
			return orderbook.Fill{}, err
		}
		nextBase, err = clampMoney(nextBase, order.Bounds.Min, order.Bounds.Max)
		if err != nil {
			return orderbook.Fill{}, err
		}
		if eq, err := nextBase.Cmp(base); err != nil {
			return orderbook.Fill{}, err
		} else if eq == 0 {
			return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg %s: convergence stalled at base %s", order.ID, base.Amount.String())
		}
		base = nextBase
	}

	lastEff, _ := last.EffectiveQuote()
	return orderbook.Fill{}, fmt.Errorf("materializer: SELL leg %s: did not converge to target %s within %d iterations (last effective quote %s)", order.ID, targetEffectiveQuote.Amount.String(), MaxSellIterations, lastEff.Amount.String())
}

// resolveLeg dispatches to the BUY or SELL solver for edge, given the
// amount the route intends to spend on it (denominated in edge.From)
// and the gross-spend / quote-budget ceiling that leg must respect.
func resolveLeg(evaluator orderbook.OrderFillEvaluator, edge *routegraph.Edge, spend money.Money, ceiling money.Money) (orderbook.Fill, error) {
	if edge.Side == orderbook.SideBuy {
		return resolveBuyLegAmounts(evaluator, edge.Order, spend, ceiling)
	}
	return resolveSellLegAmounts(evaluator, edge.Order, spend, ceiling)
}

// legReceiveAmount is the leg's output, denominated in edge.To.
func legReceiveAmount(edge *routegraph.Edge, fill orderbook.Fill) money.Money {
	if edge.Side == orderbook.SideBuy {
		return fill.Quote
	}
	return fill.NetBase
}

// legCeiling returns the gross-spend / quote-budget ceiling the leg at
// index i must respect: the Spend Analyzer's derived ceiling for the
// first leg, or the edge's own fee-aware capacity maximum thereafter
// (spec.md §4.3, §4.4, §8 "Bound respect").
func legCeiling(edge *routegraph.Edge, seed InitialSeed, i int) money.Money {
	if i == 0 {
		return seed.Ceiling
	}
	if edge.Side == orderbook.SideBuy {
		return edge.GrossBaseCapacity.Max
	}
	return edge.QuoteCapacity.Max
}
