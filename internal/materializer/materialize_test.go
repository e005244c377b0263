package materializer

import (
	"testing"

	"github.com/mExOms/routefinder/internal/feepolicy"
	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/internal/tolerance"
	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDec(t *testing.T, s string, scale int32) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s, scale)
	require.NoError(t, err)
	return d
}

func mustMoney(t *testing.T, currency, amount string, scale int32) money.Money {
	t.Helper()
	m, err := money.New(currency, mustDec(t, amount, scale))
	require.NoError(t, err)
	return m
}

func buyOrder(t *testing.T, base, quote, rate, min, max string, policy feepolicy.FeePolicy) *orderbook.Order {
	t.Helper()
	pair, err := money.NewAssetPair(base, quote)
	require.NoError(t, err)
	r, err := money.NewExchangeRate(base, quote, mustDec(t, rate, 8))
	require.NoError(t, err)
	bounds := orderbook.Bounds{Min: mustMoney(t, base, min, 2), Max: mustMoney(t, base, max, 2)}
	o, err := orderbook.New("buy1", orderbook.SideBuy, pair, bounds, r, policy)
	require.NoError(t, err)
	return o
}

func sellOrder(t *testing.T, base, quote, rate, min, max string, policy feepolicy.FeePolicy) *orderbook.Order {
	t.Helper()
	pair, err := money.NewAssetPair(base, quote)
	require.NoError(t, err)
	r, err := money.NewExchangeRate(base, quote, mustDec(t, rate, 8))
	require.NoError(t, err)
	bounds := orderbook.Bounds{Min: mustMoney(t, base, min, 2), Max: mustMoney(t, base, max, 2)}
	o, err := orderbook.New("sell1", orderbook.SideSell, pair, bounds, r, policy)
	require.NoError(t, err)
	return o
}

func TestResolveBuyLegAmounts_NoFees(t *testing.T) {
	order := buyOrder(t, "USD", "BTC", "0.00002", "10", "1000", nil)
	target := mustMoney(t, "USD", "100.00", 2)
	ceiling := mustMoney(t, "USD", "1000.00", 2)

	fill, err := resolveBuyLegAmounts(orderbook.DefaultFillEvaluator{}, order, target, ceiling)
	require.NoError(t, err)
	assert.Equal(t, "100.00", fill.GrossBase.Amount.String())
	assert.Equal(t, "100.00", fill.NetBase.Amount.String())
}

func TestResolveBuyLegAmounts_WithBaseFee_ConvergesToGrossCeiling(t *testing.T) {
	order := buyOrder(t, "USD", "BTC", "0.00002", "10", "1000", feepolicy.PercentageFeePolicy{
		BaseFeeRate: mustDec(t, "0.10", 2),
	})
	target := mustMoney(t, "USD", "110.00", 2)
	ceiling := mustMoney(t, "USD", "110.00", 2)

	fill, err := resolveBuyLegAmounts(orderbook.DefaultFillEvaluator{}, order, target, ceiling)
	require.NoError(t, err)
	assert.Equal(t, "110.00", fill.GrossBase.Amount.String())
}

func TestResolveBuyLegAmounts_RejectsWhenFloorExceedsCeiling(t *testing.T) {
	order := buyOrder(t, "USD", "BTC", "0.00002", "10", "1000", feepolicy.PercentageFeePolicy{
		BaseFeeRate: mustDec(t, "0.10", 2),
	})
	target := mustMoney(t, "USD", "100.00", 2)
	ceiling := mustMoney(t, "USD", "5.00", 2)

	_, err := resolveBuyLegAmounts(orderbook.DefaultFillEvaluator{}, order, target, ceiling)
	assert.Error(t, err)
}

func TestResolveSellLegAmounts_NoFees(t *testing.T) {
	order := sellOrder(t, "BTC", "USD", "50000", "0.01", "10", nil)
	target := mustMoney(t, "USD", "5000.00", 2)
	budget := mustMoney(t, "USD", "400000.00", 2)

	fill, err := resolveSellLegAmounts(orderbook.DefaultFillEvaluator{}, order, target, budget)
	require.NoError(t, err)
	effQuote, err := fill.EffectiveQuote()
	require.NoError(t, err)
	assert.Equal(t, "5000.00000000", effQuote.Amount.String())
}

func TestResolveSellLegAmounts_WithQuoteFee_ConvergesToTarget(t *testing.T) {
	order := sellOrder(t, "BTC", "USD", "50000", "0.01", "10", feepolicy.PercentageFeePolicy{
		QuoteFeeRate: mustDec(t, "0.01", 4),
	})
	target := mustMoney(t, "USD", "5050.00", 2)
	budget := mustMoney(t, "USD", "400000.00", 2)

	fill, err := resolveSellLegAmounts(orderbook.DefaultFillEvaluator{}, order, target, budget)
	require.NoError(t, err)
	effQuote, err := fill.EffectiveQuote()
	require.NoError(t, err)
	gap, err := relativeGap(effQuote.Amount, target.Amount, sellToleranceScale)
	require.NoError(t, err)
	assert.True(t, gap.Abs().LessThanOrEqual(sellRelativeTolerance))
}

func TestMaterialize_TwoLegRoute(t *testing.T) {
	buy := buyOrder(t, "USD", "BTC", "0.00002", "10", "1000", nil)
	sell := sellOrder(t, "EUR", "BTC", "0.000025", "10", "100000", nil)

	edgeBuy := &routegraph.Edge{
		From: "USD", To: "BTC", Side: orderbook.SideBuy, Order: buy,
		BaseCapacity:      routegraph.Range{Min: mustMoney(t, "USD", "10", 2), Max: mustMoney(t, "USD", "1000", 2)},
		QuoteCapacity:     routegraph.Range{Min: mustMoney(t, "BTC", "0.0002", 8), Max: mustMoney(t, "BTC", "0.02", 8)},
		GrossBaseCapacity: routegraph.Range{Min: mustMoney(t, "USD", "10", 2), Max: mustMoney(t, "USD", "1000", 2)},
	}
	edgeSell := &routegraph.Edge{
		From: "BTC", To: "EUR", Side: orderbook.SideSell, Order: sell,
		BaseCapacity:      routegraph.Range{Min: mustMoney(t, "EUR", "10", 2), Max: mustMoney(t, "EUR", "100000", 2)},
		QuoteCapacity:     routegraph.Range{Min: mustMoney(t, "BTC", "0.00025", 8), Max: mustMoney(t, "BTC", "2.5", 8)},
		GrossBaseCapacity: routegraph.Range{Min: mustMoney(t, "EUR", "10", 2), Max: mustMoney(t, "EUR", "100000", 2)},
	}

	start := mustMoney(t, "USD", "100.00", 2)
	window := tolerance.Window{Min: mustDec(t, "-0.01", tolerance.ResidualScale), Max: mustDec(t, "0.01", tolerance.ResidualScale)}
	seed := InitialSeed{Net: start, Ceiling: edgeBuy.GrossBaseCapacity.Max}

	plan, err := Materialize(orderbook.DefaultFillEvaluator{}, []*routegraph.Edge{edgeBuy, edgeSell}, seed, "EUR", &start, window)
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, "EUR", plan.TargetCurrency)
	assert.Equal(t, "EUR", plan.TotalReceived.Currency)
	assert.Equal(t, "BTC", plan.Steps[1].Spent.Currency)
}

func TestMaterialize_CurrencyMismatchRejected(t *testing.T) {
	buy := buyOrder(t, "USD", "BTC", "0.00002", "10", "1000", nil)
	edge := &routegraph.Edge{
		From: "USD", To: "BTC", Side: orderbook.SideBuy, Order: buy,
		GrossBaseCapacity: routegraph.Range{Min: mustMoney(t, "USD", "10", 2), Max: mustMoney(t, "USD", "1000", 2)},
	}
	badStart := mustMoney(t, "EUR", "100.00", 2)
	seed := InitialSeed{Net: badStart, Ceiling: edge.GrossBaseCapacity.Max}

	_, err := Materialize(orderbook.DefaultFillEvaluator{}, []*routegraph.Edge{edge}, seed, "BTC", nil, tolerance.Window{})
	assert.Error(t, err)
}
