package feepolicy

import (
	"testing"

	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoFeePolicy_AlwaysZero(t *testing.T) {
	p := NoFeePolicy{}
	base := money.MustNew("USD", decimalFromString(t, "100", 2))
	quote := money.MustNew("EUR", decimalFromString(t, "90", 2))

	breakdown, err := p.Calculate(SideBuy, base, quote)
	require.NoError(t, err)
	assert.True(t, breakdown.IsZero())
}

func TestPercentageFeePolicy_BuyChargesBaseFee(t *testing.T) {
	p := PercentageFeePolicy{BaseFeeRate: decimalFromString(t, "0.10", 2)}
	base := money.MustNew("USD", decimalFromString(t, "100", 2))
	quote := money.MustNew("EUR", decimalFromString(t, "90", 2))

	breakdown, err := p.Calculate(SideBuy, base, quote)
	require.NoError(t, err)
	require.NotNil(t, breakdown.BaseFee)
	assert.Equal(t, "10.00", breakdown.BaseFee.Amount.String())
	assert.Nil(t, breakdown.QuoteFee)
}

func TestPercentageFeePolicy_SellChargesQuoteFee(t *testing.T) {
	p := PercentageFeePolicy{QuoteFeeRate: decimalFromString(t, "0.01", 2)}
	base := money.MustNew("USDT", decimalFromString(t, "100", 2))
	quote := money.MustNew("RUB", decimalFromString(t, "9000", 2))

	breakdown, err := p.Calculate(SideSell, base, quote)
	require.NoError(t, err)
	require.NotNil(t, breakdown.QuoteFee)
	assert.Equal(t, "90.00", breakdown.QuoteFee.Amount.String())
	assert.Nil(t, breakdown.BaseFee)
}

func decimalFromString(t *testing.T, s string, scale int32) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s, scale)
	require.NoError(t, err)
	return d
}
