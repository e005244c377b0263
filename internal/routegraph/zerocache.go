package routegraph

import (
	"sync"

	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/mExOms/routefinder/pkg/money"
)

// zeroMoneyCache caches the zero Money value per (currency, scale) so
// graph construction doesn't allocate a fresh zero Decimal for every
// segment remainder it builds. Adapted from pkg/cache.MemoryCache's
// sync.Map-backed get-or-set shape, specialized to a (currency, scale)
// key instead of a TTL-bearing generic cache, since zero-Money values
// never expire and never change shape.
type zeroMoneyCache struct {
	items sync.Map // key -> money.Money
}

type zeroMoneyKey struct {
	currency string
	scale    int32
}

func newZeroMoneyCache() *zeroMoneyCache {
	return &zeroMoneyCache{}
}

// Get returns the cached zero Money for (currency, scale), building and
// storing it on first use.
func (c *zeroMoneyCache) Get(currency string, scale int32) (money.Money, error) {
	key := zeroMoneyKey{currency: currency, scale: scale}
	if v, ok := c.items.Load(key); ok {
		return v.(money.Money), nil
	}
	zero, err := decimal.Zero(scale)
	if err != nil {
		return money.Money{}, err
	}
	m, err := money.New(currency, zero)
	if err != nil {
		return money.Money{}, err
	}
	c.items.Store(key, m)
	return m, nil
}
