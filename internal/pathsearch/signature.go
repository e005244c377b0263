package pathsearch

import (
	"fmt"

	"github.com/mExOms/routefinder/internal/routegraph"
)

// RouteSignature renders the deterministic node-sequence signature for
// a completed CandidatePath's edge chain (spec.md GLOSSARY: Route
// signature), for callers outside this package that need to dedup
// candidates by route (internal/resultset).
func RouteSignature(source string, edges []*routegraph.Edge) string {
	nodes := make([]string, 0, len(edges)+1)
	nodes = append(nodes, source)
	for _, e := range edges {
		nodes = append(nodes, e.To)
	}
	return routeSignature(nodes)
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// stateSignature renders the canonical, deterministic signature for a
// search state's (range, desired) pair (spec.md §4.2.4).
func stateSignature(r *SpendRange) string {
	rangeStr := "null"
	desiredStr := "null"
	if r != nil {
		scale := maxInt32(r.Min.Scale(), r.Max.Scale())
		minAmount, _ := r.Min.Amount.Rescale(scale)
		maxAmount, _ := r.Max.Amount.Rescale(scale)
		rangeStr = fmt.Sprintf("%s:%s:%s:%d", r.Min.Currency, minAmount.String(), maxAmount.String(), scale)
		if r.Desired != nil {
			desiredStr = fmt.Sprintf("%s:%s:%d", r.Desired.Currency, r.Desired.Amount.String(), r.Desired.Scale())
		}
	}
	return "range:" + rangeStr + "|desired:" + desiredStr
}

// routeSignature renders the deterministic N0->N1->...->Nk string for a
// node sequence (spec.md GLOSSARY: Route signature).
func routeSignature(nodes []string) string {
	out := ""
	for i, n := range nodes {
		if i > 0 {
			out += "->"
		}
		out += n
	}
	return out
}
