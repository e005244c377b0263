package resultset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectReusableTopK_StopsOnConsecutiveDuplicates(t *testing.T) {
	calls := 0
	iterate := func(bias uint64) ([]Entry, error) {
		calls++
		if calls == 1 {
			return []Entry{entry(t, "1.0", "A->B", bias)}, nil
		}
		return []Entry{entry(t, "1.0", "A->B", bias)}, nil // always a duplicate of what's already held
	}

	rs, err := CollectReusableTopK(5, 100, iterate)
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, 1+ConsecutiveDuplicateCeiling, calls)
}

func TestCollectReusableTopK_AggregatesIterationErrors(t *testing.T) {
	iterate := func(bias uint64) ([]Entry, error) {
		return nil, fmt.Errorf("iteration failed at bias %d", bias)
	}

	rs, err := CollectReusableTopK(5, 10, iterate)
	require.Error(t, err)
	assert.Equal(t, 0, rs.Len())
}

func TestCollectReusableTopK_KeepsGoingWhileFindingNewRoutes(t *testing.T) {
	routes := []string{"A->B", "A->C", "A->D"}
	calls := 0
	iterate := func(bias uint64) ([]Entry, error) {
		if calls >= len(routes) {
			return nil, nil
		}
		e := entry(t, "1.0", routes[calls], bias)
		calls++
		return []Entry{e}, nil
	}

	rs, err := CollectReusableTopK(5, 10, iterate)
	require.NoError(t, err)
	assert.Equal(t, 3, rs.Len())
}
