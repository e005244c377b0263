package routegraph

import (
	"testing"

	"github.com/mExOms/routefinder/internal/feepolicy"
	"github.com/mExOms/routefinder/internal/orderbook"
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

func buyOrder(t *testing.T, base, quote string, rate string, min, max string) *orderbook.Order {
	t.Helper()
	pair, err := money.NewAssetPair(base, quote)
	require.NoError(t, err)
	r, err := money.NewExchangeRate(base, quote, mustDec(t, rate, 8))
	require.NoError(t, err)
	bounds := orderbook.Bounds{Min: mustMoney(t, base, min, 2), Max: mustMoney(t, base, max, 2)}
	o, err := orderbook.New("o1", orderbook.SideBuy, pair, bounds, r, nil)
	require.NoError(t, err)
	return o
}

func TestBuild_NoFees_NoSegments(t *testing.T) {
	order := buyOrder(t, "USD", "BTC", "0.00002", "10", "1000")
	g, err := NewBuilder(nil).Build([]*orderbook.Order{order})
	require.NoError(t, err)

	node, ok := g.Node("USD")
	require.True(t, ok)
	require.Len(t, node.Edges, 1)
	edge := node.Edges[0]
	assert.Equal(t, "BTC", edge.To)
	assert.Empty(t, edge.Segments)
	assert.Equal(t, "10.00", edge.BaseCapacity.Min.Amount.String())
	assert.Equal(t, "1000.00", edge.BaseCapacity.Max.Amount.String())
}

func TestBuild_WithFees_EmitsSegments(t *testing.T) {
	pair, err := money.NewAssetPair("USD", "EUR")
	require.NoError(t, err)
	rate, err := money.NewExchangeRate("USD", "EUR", mustDec(t, "0.9", 4))
	require.NoError(t, err)
	bounds := orderbook.Bounds{Min: mustMoney(t, "USD", "50", 2), Max: mustMoney(t, "USD", "200", 2)}
	order, err := orderbook.New("o1", orderbook.SideBuy, pair, bounds, rate, feepolicy.PercentageFeePolicy{
		BaseFeeRate: mustDec(t, "0.10", 2),
	})
	require.NoError(t, err)

	g, err := NewBuilder(nil).Build([]*orderbook.Order{order})
	require.NoError(t, err)
	node, ok := g.Node("USD")
	require.True(t, ok)
	edge := node.Edges[0]
	require.Len(t, edge.Segments, 2)
	assert.True(t, edge.Segments[0].Mandatory)
	assert.Equal(t, "50.00", edge.Segments[0].Base.Min.Amount.String())
	assert.False(t, edge.Segments[1].Mandatory)
	assert.Equal(t, "150.00", edge.Segments[1].Base.Max.Amount.String())
}

// flatFeePolicy always charges a fixed base fee regardless of fill
// size, exercising the case where bounds collapse to zero width but
// the policy still reports a non-zero fee.
type flatFeePolicy struct {
	fee money.Money
}

func (p flatFeePolicy) Calculate(feepolicy.Side, money.Money, money.Money) (feepolicy.FeeBreakdown, error) {
	fee := p.fee
	return feepolicy.FeeBreakdown{BaseFee: &fee}, nil
}

func TestBuild_ZeroWidthBounds_SingleZeroSegment(t *testing.T) {
	pair, err := money.NewAssetPair("USD", "EUR")
	require.NoError(t, err)
	rate, err := money.NewExchangeRate("USD", "EUR", mustDec(t, "0.9", 4))
	require.NoError(t, err)
	bounds := orderbook.Bounds{Min: mustMoney(t, "USD", "0", 2), Max: mustMoney(t, "USD", "0", 2)}
	order, err := orderbook.New("o1", orderbook.SideBuy, pair, bounds, rate, flatFeePolicy{
		fee: mustMoney(t, "USD", "1.00", 2),
	})
	require.NoError(t, err)

	g, err := NewBuilder(nil).Build([]*orderbook.Order{order})
	require.NoError(t, err)
	edge := g.nodes["USD"].Edges[0]
	require.Len(t, edge.Segments, 1)
	assert.False(t, edge.Segments[0].Mandatory)
	assert.True(t, edge.Segments[0].Base.Max.IsZero())
}
