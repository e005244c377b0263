package money

import (
	"encoding/json"
	"testing"

	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDecimal(t *testing.T, s string, scale int32) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s, scale)
	require.NoError(t, err)
	return d
}

func TestNew_RejectsNegativeAmount(t *testing.T) {
	neg := mustDecimal(t, "-1.00", 2)
	_, err := New("USD", neg)
	assert.Error(t, err)
}

func TestNew_NormalizesCurrency(t *testing.T) {
	m, err := New("usd", mustDecimal(t, "1.00", 2))
	require.NoError(t, err)
	assert.Equal(t, "USD", m.Currency)
}

func TestAdd_RejectsCurrencyMismatch(t *testing.T) {
	usd := MustNew("USD", mustDecimal(t, "1.00", 2))
	eur := MustNew("EUR", mustDecimal(t, "1.00", 2))
	_, err := usd.Add(eur, -1)
	assert.Error(t, err)
}

func TestExchangeRate_ConvertAndInvert(t *testing.T) {
	rate, err := NewExchangeRate("USD", "BTC", mustDecimal(t, "0.00002", 8))
	require.NoError(t, err)

	spend := MustNew("USD", mustDecimal(t, "100", 2))
	received, err := rate.Convert(spend, 8)
	require.NoError(t, err)
	assert.Equal(t, "BTC", received.Currency)
	assert.Equal(t, "0.00200000", received.Amount.String())

	inverted, err := rate.Invert()
	require.NoError(t, err)
	assert.Equal(t, "BTC", inverted.BaseCurrency)
	assert.Equal(t, "USD", inverted.QuoteCurrency)
	assert.Equal(t, "50000.00000000", inverted.Rate.String())
}

func TestNewAssetPair_RejectsIdenticalLegs(t *testing.T) {
	_, err := NewAssetPair("USD", "usd")
	assert.Error(t, err)
}

func TestMoneyMap_AddAndMarshal(t *testing.T) {
	mm := NewMoneyMap()
	require.NoError(t, mm.Add(MustNew("USD", mustDecimal(t, "1.00", 2))))
	require.NoError(t, mm.Add(MustNew("USD", mustDecimal(t, "0.50", 2))))
	require.NoError(t, mm.Add(MustNew("EUR", mustDecimal(t, "2.00", 2))))

	usd, ok := mm.Get("USD")
	require.True(t, ok)
	assert.Equal(t, "1.50", usd.Amount.String())

	assert.Equal(t, []string{"EUR", "USD"}, mm.Currencies())

	data, err := json.Marshal(mm)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"EUR"`)
	assert.Contains(t, string(data), `"USD"`)
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := MustNew("USD", mustDecimal(t, "100.00", 2))
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Amount.Equal(m.Amount))
	assert.Equal(t, m.Currency, decoded.Currency)
}
