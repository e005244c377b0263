package planservice

import (
	"time"

	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/tolerance"
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
)

// Request is the public input to FindBestPlans (spec.md §6, §7).
type Request struct {
	Source string
	Target string

	SpendMin money.Money
	SpendMax money.Money
	Desired  *money.Money

	MinHops int
	MaxHops int

	// Tolerance is the ratio the search's cost-pruning amplifier is
	// computed from (spec.md §4.2.2). The materialized route's total
	// spend is checked against ToleranceWindow, not against Tolerance
	// (spec.md §4.5).
	Tolerance       decimal.Decimal
	ToleranceWindow tolerance.Window

	TopK          int
	MaxIterations int

	MaxExpansions    int
	MaxVisitedStates int
	TimeBudget       *time.Duration

	Orders []*orderbook.Order

	// FeeEvaluator defaults to orderbook.DefaultFillEvaluator when nil.
	FeeEvaluator orderbook.OrderFillEvaluator

	// DisjointPlans selects disjoint mode (one search pass, plans
	// deduplicated by route signature) over reusable-topK mode
	// (explicit false). A nil value means the spec.md §6 default of
	// true.
	DisjointPlans *bool

	// ThrowOnGuardBreach raises GuardLimitExceededError when a search
	// guard flag fires and no plan could be collected; otherwise guard
	// state is returned as SearchOutcome metadata only (spec.md §6, §7).
	ThrowOnGuardBreach bool
}

func (r Request) validate() error {
	if r.Source == "" || r.Target == "" {
		return &InvalidInputError{Reason: "source and target currencies are required"}
	}
	if r.Source == r.Target {
		return &InvalidInputError{Reason: "source and target currencies must differ"}
	}
	if r.SpendMin.Currency != r.Source || r.SpendMax.Currency != r.Source {
		return &InvalidInputError{Reason: "spend bounds must be denominated in the source currency"}
	}
	if cmp, err := r.SpendMin.Cmp(r.SpendMax); err != nil || cmp > 0 {
		return &InvalidInputError{Reason: "spend min must be <= spend max"}
	}
	if r.MinHops < 1 || (r.MaxHops > 0 && r.MinHops > r.MaxHops) {
		return &InvalidInputError{Reason: "min hops must be >= 1 and <= max hops"}
	}
	if r.TopK <= 0 {
		return &InvalidInputError{Reason: "topK must be positive"}
	}
	if len(r.Orders) == 0 {
		return &InvalidInputError{Reason: "orders must be non-empty"}
	}
	return nil
}
