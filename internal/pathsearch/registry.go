package pathsearch

import "github.com/mExOms/routefinder/pkg/decimal"

// record is a (cost, hops) pair stored for dominance comparisons,
// tagged implicitly by its (node, signature) bucket.
type record struct {
	cost decimal.Decimal
	hops int
}

// dominates reports whether r dominates other: both scalars <=, with
// at least one strictly less (spec.md GLOSSARY: Dominance).
func (r record) dominates(other record) bool {
	costLE := r.cost.LessThanOrEqual(other.cost)
	hopsLE := r.hops <= other.hops
	if !costLE || !hopsLE {
		return false
	}
	return r.cost.LessThan(other.cost) || r.hops < other.hops
}

// registry is the per-node, per-signature dominance store (spec.md §9:
// "per-node store is map<Signature, list<Record>>").
type registry struct {
	byNode map[string]map[string][]record
}

func newRegistry() *registry {
	return &registry{byNode: make(map[string]map[string][]record)}
}

// insert registers (cost, hops) for (node, signature). It returns
// accepted=false if an existing record already dominates the
// candidate (the candidate must be pruned). When accepted, isFirst
// reports whether this is the first record ever stored for this exact
// (node, signature) pair — the only case that increments visitedStates
// (spec.md §4.2.2, §9).
func (r *registry) insert(node, signature string, cost decimal.Decimal, hops int) (accepted bool, isFirst bool) {
	sigMap, ok := r.byNode[node]
	if !ok {
		sigMap = make(map[string][]record)
		r.byNode[node] = sigMap
	}
	existing := sigMap[signature]
	isFirst = len(existing) == 0

	candidate := record{cost: cost, hops: hops}
	for _, e := range existing {
		if e.dominates(candidate) {
			return false, isFirst
		}
	}

	kept := existing[:0:0]
	for _, e := range existing {
		if !candidate.dominates(e) {
			kept = append(kept, e)
		}
	}
	kept = append(kept, candidate)
	sigMap[signature] = kept
	return true, isFirst
}
