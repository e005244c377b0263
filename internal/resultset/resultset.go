// Package resultset implements the bounded top-K collection, disjoint
// route dedup, and reusable-top-K iteration used to turn a stream of
// pathsearch candidates into the ranked route list a caller sees
// (spec.md §4.6).
package resultset

import (
	"container/heap"

	"github.com/mExOms/routefinder/internal/pathsearch"
	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/pkg/decimal"
)

// Entry is one candidate route tracked by a ResultSet.
type Entry struct {
	Cost           decimal.Decimal
	Hops           int
	Edges          []*routegraph.Edge
	Range          *pathsearch.SpendRange
	RouteSig       string
	InsertionOrder uint64
}

// fromCandidate builds an Entry from a pathsearch.CandidatePath.
func fromCandidate(source string, c pathsearch.CandidatePath, insertionOrder uint64) Entry {
	return Entry{
		Cost:           c.Cost,
		Hops:           c.Hops,
		Edges:          c.Edges,
		Range:          c.Range,
		RouteSig:       pathsearch.RouteSignature(source, c.Edges),
		InsertionOrder: insertionOrder,
	}
}

// isWorse reports whether a ranks worse than b under the shared total
// order (cost asc, hops asc, route signature asc, insertion order asc
// is "better"; this is its inverse).
func isWorse(a, b Entry) bool {
	if cmp := a.Cost.Cmp(b.Cost); cmp != 0 {
		return cmp > 0
	}
	if a.Hops != b.Hops {
		return a.Hops > b.Hops
	}
	if a.RouteSig != b.RouteSig {
		return a.RouteSig > b.RouteSig
	}
	return a.InsertionOrder > b.InsertionOrder
}

// worstOnTopHeap is a max-heap (by isWorse) so the worst-ranked entry
// sits at index 0, ready for O(log K) eviction (spec.md §4.6).
type worstOnTopHeap []Entry

func (h worstOnTopHeap) Len() int            { return len(h) }
func (h worstOnTopHeap) Less(i, j int) bool  { return isWorse(h[i], h[j]) }
func (h worstOnTopHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *worstOnTopHeap) Push(x interface{}) { *h = append(*h, x.(Entry)) }
func (h *worstOnTopHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

var _ heap.Interface = (*worstOnTopHeap)(nil)

// ResultSet is a bounded top-K collector with disjoint-by-route-
// signature dedup (spec.md §4.6).
type ResultSet struct {
	k     int
	items worstOnTopHeap
	seen  map[string]bool
}

// New returns an empty ResultSet bounded to k entries.
func New(k int) *ResultSet {
	return &ResultSet{k: k, seen: make(map[string]bool)}
}

// Insert offers entry to the set. It is rejected outright if its route
// signature duplicates an already-held entry (disjoint dedup), or if
// the set is full and entry is no better than the current worst.
// Returns whether entry was accepted.
func (rs *ResultSet) Insert(entry Entry) bool {
	if rs.seen[entry.RouteSig] {
		return false
	}
	if len(rs.items) < rs.k {
		heap.Push(&rs.items, entry)
		rs.seen[entry.RouteSig] = true
		return true
	}
	worst := rs.items[0]
	if !isWorse(worst, entry) {
		return false
	}
	heap.Pop(&rs.items)
	delete(rs.seen, worst.RouteSig)
	heap.Push(&rs.items, entry)
	rs.seen[entry.RouteSig] = true
	return true
}

// Len reports how many entries the set currently holds.
func (rs *ResultSet) Len() int { return len(rs.items) }

// Drain empties the set and returns its entries in cost-ascending
// (best-first) order.
func (rs *ResultSet) Drain() []Entry {
	n := len(rs.items)
	out := make([]Entry, n)
	for i := n - 1; i >= 0; i-- {
		out[i] = heap.Pop(&rs.items).(Entry)
	}
	rs.seen = make(map[string]bool)
	return out
}
