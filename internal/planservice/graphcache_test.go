package planservice

import (
	"testing"

	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGraphCached_ReusesCompiledGraph(t *testing.T) {
	orders := []*orderbook.Order{
		buyOrder(t, "usd-btc", "USD", "BTC", "0.00002", "10", "1000"),
	}

	first, err := buildGraphCached(orderbook.DefaultFillEvaluator{}, orders)
	require.NoError(t, err)

	second, err := buildGraphCached(orderbook.DefaultFillEvaluator{}, orders)
	require.NoError(t, err)

	assert.Same(t, first, second)
}

func TestBuildGraphCached_DistinctOrderBooksMiss(t *testing.T) {
	orders1 := []*orderbook.Order{
		buyOrder(t, "usd-btc", "USD", "BTC", "0.00002", "10", "1000"),
	}
	orders2 := []*orderbook.Order{
		buyOrder(t, "usd-btc", "USD", "BTC", "0.00003", "10", "1000"),
	}

	g1, err := buildGraphCached(orderbook.DefaultFillEvaluator{}, orders1)
	require.NoError(t, err)
	g2, err := buildGraphCached(orderbook.DefaultFillEvaluator{}, orders2)
	require.NoError(t, err)

	assert.NotSame(t, g1, g2)
}
