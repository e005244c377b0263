package resultset

import (
	"github.com/hashicorp/go-multierror"
)

// IterationFunc runs one pathsearch pass biased by insertionOrder and
// returns the candidate entries it produced, ready for Insert.
type IterationFunc func(insertionBias uint64) ([]Entry, error)

// ConsecutiveDuplicateCeiling is the default number of consecutive
// iterations that contribute nothing new before CollectReusableTopK
// gives up (spec.md §4.6 "reusable top-K").
const ConsecutiveDuplicateCeiling = 3

// CollectReusableTopK repeatedly invokes iterate, each time offering
// its entries to a bounded top-K set, and raises the insertion-order
// bias passed to iterate after each pass. The bias offsets a whole
// pass's insertion orders by the same amount, so it does not change
// which candidates a pass produces; on ties in the set, entries from
// earlier passes rank ahead of later ones. It stops after maxIterations passes or after
// ConsecutiveDuplicateCeiling consecutive passes contribute no newly
// accepted entry, whichever comes first. Per-iteration errors are
// aggregated rather than aborting the whole collection, since a later
// iteration may still find useful routes.
func CollectReusableTopK(k int, maxIterations int, iterate IterationFunc) (*ResultSet, error) {
	rs := New(k)
	var errs *multierror.Error
	var bias uint64
	consecutiveDuplicates := 0

	for i := 0; i < maxIterations; i++ {
		entries, err := iterate(bias)
		if err != nil {
			errs = multierror.Append(errs, err)
			consecutiveDuplicates++
			if consecutiveDuplicates >= ConsecutiveDuplicateCeiling {
				break
			}
			continue
		}

		acceptedAny := false
		for _, e := range entries {
			if rs.Insert(e) {
				acceptedAny = true
			}
		}

		if acceptedAny {
			consecutiveDuplicates = 0
		} else {
			consecutiveDuplicates++
			if consecutiveDuplicates >= ConsecutiveDuplicateCeiling {
				break
			}
		}

		bias += uint64(len(entries)) + 1
	}

	return rs, errs.ErrorOrNil()
}
