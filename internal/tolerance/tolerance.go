// Package tolerance implements the signed residual-ratio evaluator used
// to decide whether a materialized route's total spend stayed inside
// its configured spend tolerance (spec.md §4.5).
package tolerance

import (
	"fmt"

	"github.com/mExOms/routefinder/pkg/decimal"
)

// ResidualScale is the fixed scale the residual ratio is computed and
// compared at.
const ResidualScale = 18

// epsilonString is the comparison slack added to a configured window's edges
// before a residual is judged out of bounds, absorbing rounding noise
// from upstream fixed-point solvers (spec.md §4.5).
var epsilonString = "0.000001"

// Window is a closed tolerance band expressed as signed ratios, e.g.
// [-0.01, 0.02] permits a 1% shortfall or a 2% overshoot.
type Window struct {
	Min decimal.Decimal
	Max decimal.Decimal
}

// Residual computes the signed residual ratio (actual-desired)/desired
// at ResidualScale.
func Residual(actual, desired decimal.Decimal) (decimal.Decimal, error) {
	if desired.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("tolerance: desired amount is zero, residual ratio undefined")
	}
	diff, err := actual.Sub(desired, ResidualScale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return diff.Div(desired, ResidualScale)
}

// InWindow reports whether residual falls within window, expanded by
// epsilonString on both edges (spec.md §4.5).
func InWindow(residual decimal.Decimal, window Window) (bool, error) {
	epsilon, err := decimal.NewFromString(epsilonString, ResidualScale)
	if err != nil {
		return false, err
	}
	lo, err := window.Min.Sub(epsilon, ResidualScale)
	if err != nil {
		return false, err
	}
	hi, err := window.Max.Add(epsilon, ResidualScale)
	if err != nil {
		return false, err
	}
	return residual.GreaterThanOrEqual(lo) && residual.LessThanOrEqual(hi), nil
}

// Evaluate is the convenience entry point combining Residual and
// InWindow: it reports whether actual, relative to desired, stays
// inside window.
func Evaluate(actual, desired decimal.Decimal, window Window) (residual decimal.Decimal, ok bool, err error) {
	residual, err = Residual(actual, desired)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	ok, err = InWindow(residual, window)
	if err != nil {
		return decimal.Decimal{}, false, err
	}
	return residual, ok, nil
}
