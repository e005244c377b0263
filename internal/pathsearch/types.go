// Package pathsearch implements the best-first branch-and-bound search
// over a compiled routegraph.Graph (spec.md §4.2): priority-queue-based
// exploration with per-node dominance pruning, tolerance amplification,
// cycle avoidance, and guard budgets.
package pathsearch

import (
	"time"

	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
)

// CostScale is the fixed scale cost and product accumulators are kept
// and compared at (spec.md §4.7).
const CostScale = 18

// ToleranceScale is the scale the tolerance amplifier is computed at.
const ToleranceScale = 18

// SpendRange is a [Min, Max] Money interval that may carry a desired
// point value, threaded through the search as the still-feasible spend
// window in the current currency.
type SpendRange struct {
	Min     money.Money
	Max     money.Money
	Desired *money.Money
}

// CandidatePath is a completed route handed to the result callback.
type CandidatePath struct {
	Cost    decimal.Decimal
	Product decimal.Decimal
	Hops    int
	Edges   []*routegraph.Edge
	Range   *SpendRange
}

// GuardLimitStatus records which guard, if any, halted the search.
type GuardLimitStatus struct {
	ExpansionsReached    bool
	VisitedStatesReached bool
	TimeBudgetReached    bool
}

// Breached reports whether any guard fired.
func (s GuardLimitStatus) Breached() bool {
	return s.ExpansionsReached || s.VisitedStatesReached || s.TimeBudgetReached
}

// SearchGuardReport is the observable record of guard counters and
// configured limits for one search (spec.md §4.2.5, §7).
type SearchGuardReport struct {
	Expansions      int
	VisitedStates   int
	ElapsedMs       int64
	Limits          GuardLimitStatus
	MaxExpansions   int
	MaxVisitedStates int
	TimeBudgetMs    *int64
}

// Config configures one Search invocation.
type Config struct {
	Source string
	Target string

	MinHops int
	MaxHops int

	MaxExpansions    int
	MaxVisitedStates int
	TimeBudget       *time.Duration

	// Tolerance is the maximum over-spend tolerance ratio in [0, 1),
	// used to compute the pruning amplifier (spec.md §4.2.2).
	Tolerance decimal.Decimal

	InitialRange SpendRange

	// InsertionBias offsets the global insertion-order counter, used by
	// reusable-top-K (spec.md §4.6). Every state of one search is offset
	// by the same amount, so the bias does not change the relative order
	// in which that search explores states.
	InsertionBias uint64
}

// AcceptFunc is invoked once per completed candidate route; it returns
// whether the candidate was accepted into the caller's result set. The
// search continues regardless of the return value.
type AcceptFunc func(CandidatePath) bool

// Outcome is returned by Search.Run.
type Outcome struct {
	Guard SearchGuardReport
}
