package planservice

import "fmt"

// InvalidInputError reports a request that fails validation before any
// search work begins (spec.md §7).
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("planservice: invalid input: %s", e.Reason)
}

// ContractViolationError reports an internal invariant break discovered
// while filtering the order book, compiling the graph, or running the
// search — a bug in this service rather than a caller mistake
// (spec.md §7). Routes that fail materialization are dropped, not
// reported with this error.
type ContractViolationError struct {
	Reason string
}

func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("planservice: contract violation: %s", e.Reason)
}

// GuardLimitExceededError reports that every search pass exhausted its
// guard budget before producing any usable plan (spec.md §4.2.5, §7).
type GuardLimitExceededError struct {
	Reason string
}

func (e *GuardLimitExceededError) Error() string {
	return fmt.Sprintf("planservice: guard limit exceeded: %s", e.Reason)
}
