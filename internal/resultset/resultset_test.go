package resultset

import (
	"testing"

	"github.com/mExOms/routefinder/pkg/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCost(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s, 18)
	require.NoError(t, err)
	return d
}

func entry(t *testing.T, cost string, routeSig string, insertion uint64) Entry {
	return Entry{Cost: mustCost(t, cost), Hops: 1, RouteSig: routeSig, InsertionOrder: insertion}
}

func TestResultSet_AcceptsUpToK(t *testing.T) {
	rs := New(2)
	assert.True(t, rs.Insert(entry(t, "1.0", "A->B", 1)))
	assert.True(t, rs.Insert(entry(t, "2.0", "A->C", 2)))
	assert.Equal(t, 2, rs.Len())
}

func TestResultSet_EvictsWorstWhenBetterArrives(t *testing.T) {
	rs := New(2)
	rs.Insert(entry(t, "1.0", "A->B", 1))
	rs.Insert(entry(t, "2.0", "A->C", 2))

	accepted := rs.Insert(entry(t, "0.5", "A->D", 3))
	assert.True(t, accepted)

	drained := rs.Drain()
	require.Len(t, drained, 2)
	assert.Equal(t, "0.500000000000000000", drained[0].Cost.String())
	assert.Equal(t, "1.000000000000000000", drained[1].Cost.String())
}

func TestResultSet_RejectsWorseThanFullSet(t *testing.T) {
	rs := New(2)
	rs.Insert(entry(t, "1.0", "A->B", 1))
	rs.Insert(entry(t, "2.0", "A->C", 2))

	accepted := rs.Insert(entry(t, "5.0", "A->D", 3))
	assert.False(t, accepted)
	assert.Equal(t, 2, rs.Len())
}

func TestResultSet_RejectsDuplicateRouteSignature(t *testing.T) {
	rs := New(3)
	rs.Insert(entry(t, "1.0", "A->B", 1))
	accepted := rs.Insert(entry(t, "1.0", "A->B", 2))
	assert.False(t, accepted)
	assert.Equal(t, 1, rs.Len())
}

func TestResultSet_DrainIsCostAscending(t *testing.T) {
	rs := New(5)
	rs.Insert(entry(t, "3.0", "A->B", 1))
	rs.Insert(entry(t, "1.0", "A->C", 2))
	rs.Insert(entry(t, "2.0", "A->D", 3))

	drained := rs.Drain()
	require.Len(t, drained, 3)
	assert.Equal(t, "1.000000000000000000", drained[0].Cost.String())
	assert.Equal(t, "2.000000000000000000", drained[1].Cost.String())
	assert.Equal(t, "3.000000000000000000", drained[2].Cost.String())
	assert.Equal(t, 0, rs.Len())
}
