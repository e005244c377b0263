package pathsearch

import (
	"container/heap"

	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/pkg/decimal"
)

// frontierState is one entry on the search frontier (spec.md §4.2.1).
type frontierState struct {
	node           string
	cost           decimal.Decimal
	product        decimal.Decimal
	hops           int
	edges          []*routegraph.Edge
	rng            *SpendRange
	visited        map[string]bool
	routeSig       string
	insertionOrder uint64
}

// lessState implements the total order shared by the frontier and the
// results heap (spec.md §4.2.1): cost asc, then hops asc, then route
// signature asc, then insertion order asc.
func lessState(a, b *frontierState) bool {
	if c := a.cost.Cmp(b.cost); c != 0 {
		return c < 0
	}
	if a.hops != b.hops {
		return a.hops < b.hops
	}
	if a.routeSig != b.routeSig {
		return a.routeSig < b.routeSig
	}
	return a.insertionOrder < b.insertionOrder
}

// frontierHeap is a min-heap over frontierState by lessState.
type frontierHeap []*frontierState

func (h frontierHeap) Len() int            { return len(h) }
func (h frontierHeap) Less(i, j int) bool  { return lessState(h[i], h[j]) }
func (h frontierHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x interface{}) { *h = append(*h, x.(*frontierState)) }
func (h *frontierHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*frontierHeap)(nil)
