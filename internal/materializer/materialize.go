package materializer

import (
	"fmt"

	"github.com/mExOms/routefinder/internal/feepolicy"
	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/internal/tolerance"
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
)

// ExecutionStep is one materialized conversion leg, in the stable wire
// shape the HTTP and CLI wrappers serialize (spec.md §6).
type ExecutionStep struct {
	SequenceNumber int             `json:"sequenceNumber"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	Spent          money.Money     `json:"spent"`
	Received       money.Money     `json:"received"`
	Fees           *money.MoneyMap `json:"fees"`
	Order          string          `json:"order"`

	// Fill and Residual are diagnostics for callers working directly
	// against the Go API; they are not part of the wire contract.
	Fill     orderbook.Fill    `json:"-"`
	Residual *tolerance.Window `json:"-"`
}

// ExecutionPlan is the fully resolved, order-by-order realization of a
// CandidatePath (spec.md §4.3, §6).
type ExecutionPlan struct {
	SourceCurrency    string          `json:"sourceCurrency"`
	TargetCurrency    string          `json:"targetCurrency"`
	TotalSpent        money.Money     `json:"totalSpent"`
	TotalReceived     money.Money     `json:"totalReceived"`
	ResidualTolerance decimal.Decimal `json:"residualTolerance"`
	Steps             []ExecutionStep `json:"steps"`
	FeeBreakdown      *money.MoneyMap `json:"feeBreakdown"`
	Signature         string          `json:"signature"`
}

// Materialize resolves edges leg by leg starting from seed.Net (the
// Spend Analyzer's derived first-leg spend, denominated in
// edges[0].From), enforcing seed.Ceiling on the first leg and each
// edge's own fee-aware capacity thereafter. When desired is non-nil,
// the route's total source-currency spend must fall inside window of
// desired, evaluated once over the whole route (spec.md §4.3 step 5,
// §4.5).
func Materialize(evaluator orderbook.OrderFillEvaluator, edges []*routegraph.Edge, seed InitialSeed, targetCurrency string, desired *money.Money, window tolerance.Window) (ExecutionPlan, error) {
	if len(edges) == 0 {
		return ExecutionPlan{}, fmt.Errorf("materializer: empty route")
	}
	if seed.Net.IsZero() {
		return ExecutionPlan{}, fmt.Errorf("materializer: initial seed spend is zero")
	}

	fees := money.NewMoneyMap()
	steps := make([]ExecutionStep, 0, len(edges))
	currentSpend := seed.Net

	for i, edge := range edges {
		if i > 0 && edges[i-1].To != edge.From {
			return ExecutionPlan{}, fmt.Errorf("materializer: edge %d discontinuous: %s -> %s", i, edges[i-1].To, edge.From)
		}
		if currentSpend.Currency != edge.From {
			return ExecutionPlan{}, fmt.Errorf("materializer: leg %d spend currency %s does not match edge.From %s", i, currentSpend.Currency, edge.From)
		}

		ceiling := legCeiling(edge, seed, i)
		fill, err := resolveLeg(evaluator, edge, currentSpend, ceiling)
		if err != nil {
			return ExecutionPlan{}, fmt.Errorf("materializer: leg %d resolve: %w", i, err)
		}

		step := ExecutionStep{
			SequenceNumber: i + 1,
			From:           edge.From,
			To:             edge.To,
			Spent:          currentSpend,
			Received:       legReceiveAmount(edge, fill),
			Fees:           feeBreakdownMap(fill.Fees),
			Order:          edge.Order.ID,
			Fill:           fill,
		}
		if err := accumulateFees(fees, fill.Fees); err != nil {
			return ExecutionPlan{}, err
		}

		steps = append(steps, step)
		currentSpend = step.Received
	}

	if currentSpend.Currency != targetCurrency {
		return ExecutionPlan{}, fmt.Errorf("materializer: route ended in %s, expected target %s", currentSpend.Currency, targetCurrency)
	}

	totalSpent, err := legGrossSpend(edges[0], steps[0].Fill)
	if err != nil {
		return ExecutionPlan{}, err
	}

	residual, err := decimal.Zero(tolerance.ResidualScale)
	if err != nil {
		return ExecutionPlan{}, err
	}
	if desired != nil {
		var ok bool
		residual, ok, err = tolerance.Evaluate(totalSpent.Amount, desired.Amount, window)
		if err != nil {
			return ExecutionPlan{}, fmt.Errorf("materializer: tolerance: %w", err)
		}
		if !ok {
			return ExecutionPlan{}, fmt.Errorf("materializer: total spend %s outside tolerance window of desired %s (residual %s)", totalSpent.Amount.String(), desired.Amount.String(), residual.String())
		}
		steps[0].Residual = &window
	}

	return ExecutionPlan{
		SourceCurrency:    edges[0].From,
		TargetCurrency:    targetCurrency,
		TotalSpent:        totalSpent,
		TotalReceived:     currentSpend,
		ResidualTolerance: residual,
		Steps:             steps,
		FeeBreakdown:      fees,
	}, nil
}

// legGrossSpend is the amount actually debited from the route's
// source-currency wallet by edge's leg: the gross base spend for a BUY
// edge, the effective (fee-inclusive) quote spend for a SELL edge.
func legGrossSpend(edge *routegraph.Edge, fill orderbook.Fill) (money.Money, error) {
	if edge.Side == orderbook.SideBuy {
		return fill.GrossBase, nil
	}
	return fill.EffectiveQuote()
}

// feeBreakdownMap folds a single leg's fee breakdown into a MoneyMap
// for that step's wire-form fees field.
func feeBreakdownMap(breakdown feepolicy.FeeBreakdown) *money.MoneyMap {
	mm := money.NewMoneyMap()
	if breakdown.BaseFee != nil {
		_ = mm.Add(*breakdown.BaseFee)
	}
	if breakdown.QuoteFee != nil {
		_ = mm.Add(*breakdown.QuoteFee)
	}
	return mm
}

// accumulateFees folds a leg's fee breakdown into the running, per-
// currency fee total for the whole route (spec.md §4.3.3).
func accumulateFees(fees *money.MoneyMap, breakdown feepolicy.FeeBreakdown) error {
	if breakdown.BaseFee != nil {
		if err := fees.Add(*breakdown.BaseFee); err != nil {
			return err
		}
	}
	if breakdown.QuoteFee != nil {
		if err := fees.Add(*breakdown.QuoteFee); err != nil {
			return err
		}
	}
	return nil
}
