package planservice

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/pkg/cache"
)

// graphCacheTTL bounds how long a compiled Graph may be reused for an
// identical order book before FindBestPlans recompiles it.
const graphCacheTTL = 5 * time.Minute

// graphCache memoizes routegraph.Graph compilation across requests that
// submit the same order book, keyed by a content hash of the orders
// (spec.md §4.1 treats compilation as pure given the order list).
var graphCache = cache.NewMemoryCache()

func buildGraphCached(evaluator orderbook.OrderFillEvaluator, orders []*orderbook.Order) (*routegraph.Graph, error) {
	key := orderBookKey(orders)
	if cached, ok := graphCache.Get(key); ok {
		return cached.(*routegraph.Graph), nil
	}

	graph, err := routegraph.NewBuilder(evaluator).Build(orders)
	if err != nil {
		return nil, err
	}
	graphCache.Set(key, graph, graphCacheTTL)
	return graph, nil
}

// orderBookKey hashes the fields that affect graph compilation (ID,
// side, pair, bounds, rate, fee policy) so two requests against an
// unchanged order book share a cached Graph regardless of slice
// identity.
func orderBookKey(orders []*orderbook.Order) string {
	var b strings.Builder
	for _, o := range orders {
		b.WriteString(o.ID)
		b.WriteByte('|')
		b.WriteString(string(o.Side))
		b.WriteByte('|')
		b.WriteString(o.Pair.Base)
		b.WriteByte('/')
		b.WriteString(o.Pair.Quote)
		b.WriteByte('|')
		b.WriteString(o.Bounds.Min.Amount.String())
		b.WriteByte('-')
		b.WriteString(o.Bounds.Max.Amount.String())
		b.WriteByte('|')
		b.WriteString(o.Rate.Rate.String())
		b.WriteByte('|')
		fmt.Fprintf(&b, "%T%v", o.FeePolicy, o.FeePolicy)
		b.WriteByte(';')
	}
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}
