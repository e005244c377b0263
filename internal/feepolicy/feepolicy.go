// Package feepolicy provides the opaque fee-calculation capability an
// Order may carry. The core never knows concrete fee formulas; it only
// calls Calculate and reads back a FeeBreakdown.
package feepolicy

import (
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
)

// Side mirrors the order side a fill is computed for.
type Side string

const (
	// SideBuy charges fees on the base leg.
	SideBuy Side = "BUY"
	// SideSell charges fees on the quote leg.
	SideSell Side = "SELL"
)

// FeeBreakdown is the result of applying a fee policy to a fill.
// Either field may be the zero Money (absent) depending on the policy.
type FeeBreakdown struct {
	BaseFee  *money.Money
	QuoteFee *money.Money
}

// IsZero reports whether both legs of the breakdown are absent or zero.
func (b FeeBreakdown) IsZero() bool {
	if b.BaseFee != nil && !b.BaseFee.IsZero() {
		return false
	}
	if b.QuoteFee != nil && !b.QuoteFee.IsZero() {
		return false
	}
	return true
}

// FeePolicy computes fees for a fill of baseAmount against an order,
// given the raw (pre-fee) quote amount that fill implies.
type FeePolicy interface {
	// Calculate returns the fee breakdown for filling baseAmount base
	// units at the given raw quote notional.
	Calculate(side Side, baseAmount money.Money, rawQuote money.Money) (FeeBreakdown, error)
}

// NoFeePolicy always returns a zero FeeBreakdown. It grounds the
// "may be absent (zero fees)" clause in spec.md §3's Order definition
// as an explicit, testable implementation rather than a nil check
// scattered through the graph builder and materializer.
type NoFeePolicy struct{}

// Calculate implements FeePolicy.
func (NoFeePolicy) Calculate(Side, money.Money, money.Money) (FeeBreakdown, error) {
	return FeeBreakdown{}, nil
}

// PercentageFeePolicy charges a fixed percentage on the base leg for
// BUY fills and on the quote leg for SELL fills, mirroring
// internal/strategies/arbitrage's FeeStructure{MakerFee, TakerFee}.
type PercentageFeePolicy struct {
	// BaseFeeRate is applied to baseAmount on BUY fills (e.g. 0.10 for a
	// 10% base surcharge as in spec.md §8 scenario 6).
	BaseFeeRate decimal.Decimal
	// QuoteFeeRate is applied to rawQuote on SELL fills.
	QuoteFeeRate decimal.Decimal
}

// Calculate implements FeePolicy.
func (p PercentageFeePolicy) Calculate(side Side, baseAmount money.Money, rawQuote money.Money) (FeeBreakdown, error) {
	var breakdown FeeBreakdown
	switch side {
	case SideBuy:
		if p.BaseFeeRate.IsZero() {
			return breakdown, nil
		}
		feeAmount, err := baseAmount.Amount.Mul(p.BaseFeeRate, baseAmount.Scale())
		if err != nil {
			return breakdown, err
		}
		fee, err := money.New(baseAmount.Currency, feeAmount)
		if err != nil {
			return breakdown, err
		}
		breakdown.BaseFee = &fee
	case SideSell:
		if p.QuoteFeeRate.IsZero() {
			return breakdown, nil
		}
		feeAmount, err := rawQuote.Amount.Mul(p.QuoteFeeRate, rawQuote.Scale())
		if err != nil {
			return breakdown, err
		}
		fee, err := money.New(rawQuote.Currency, feeAmount)
		if err != nil {
			return breakdown, err
		}
		breakdown.QuoteFee = &fee
	}
	return breakdown, nil
}
