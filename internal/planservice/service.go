// Package planservice wires the spend analyzer, graph builder, path
// search, materializer, and result set into the single public entry
// point spec.md §6 and §7 describe: FindBestPlans.
package planservice

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mExOms/routefinder/internal/materializer"
	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/internal/pathsearch"
	"github.com/mExOms/routefinder/internal/resultset"
)

// DefaultMaxIterations bounds how many reusable-top-K search passes
// FindBestPlans runs before giving up (spec.md §4.6).
const DefaultMaxIterations = 8

// Plan is one fully materialized, ranked candidate route.
type Plan struct {
	Cost      string
	Hops      int
	Execution materializer.ExecutionPlan
}

// SearchOutcome is FindBestPlans's return value.
type SearchOutcome struct {
	RequestID string
	Plans     []Plan
	Guard     pathsearch.SearchGuardReport
}

// FindBestPlans validates request, compiles the reachable order book
// into a graph, runs the best-first search with reusable top-K
// collection, materializes each accepted route leg by leg, and returns
// the ranked plan list (spec.md §6, §7).
func FindBestPlans(request Request) (SearchOutcome, error) {
	requestID := uuid.New().String()
	logger := logrus.WithFields(logrus.Fields{
		"component":  "planservice",
		"request_id": requestID,
		"source":     request.Source,
		"target":     request.Target,
	})

	if err := request.validate(); err != nil {
		logger.WithError(err).Warn("rejected invalid plan request")
		return SearchOutcome{}, err
	}

	evaluator := request.FeeEvaluator
	if evaluator == nil {
		evaluator = orderbook.DefaultFillEvaluator{}
	}

	reachable, err := materializer.FilterBySpendBounds(request.Orders, request.Source, request.SpendMin, request.SpendMax)
	if err != nil {
		return SearchOutcome{}, &ContractViolationError{Reason: fmt.Sprintf("spend-bounds filter: %v", err)}
	}
	logger.WithField("reachable_orders", len(reachable)).Debug("filtered order book by spend bounds")

	graph, err := buildGraphCached(evaluator, reachable)
	if err != nil {
		return SearchOutcome{}, &ContractViolationError{Reason: fmt.Sprintf("graph build: %v", err)}
	}

	disjoint := true
	if request.DisjointPlans != nil {
		disjoint = *request.DisjointPlans
	}

	maxIterations := request.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}
	if disjoint {
		maxIterations = 1
	}

	var lastGuard pathsearch.SearchGuardReport
	anyRunSucceeded := false

	iterate := func(bias uint64) ([]resultset.Entry, error) {
		cfg := pathsearch.Config{
			Source:           request.Source,
			Target:           request.Target,
			MinHops:          request.MinHops,
			MaxHops:          request.MaxHops,
			MaxExpansions:    request.MaxExpansions,
			MaxVisitedStates: request.MaxVisitedStates,
			TimeBudget:       request.TimeBudget,
			Tolerance:        request.Tolerance,
			InitialRange:     pathsearch.SpendRange{Min: request.SpendMin, Max: request.SpendMax, Desired: request.Desired},
			InsertionBias:    bias,
		}

		var candidates []pathsearch.CandidatePath
		accept := func(c pathsearch.CandidatePath) bool {
			candidates = append(candidates, c)
			return true
		}

		search, err := pathsearch.NewSearch(graph, cfg, accept)
		if err != nil {
			return nil, err
		}
		outcome, err := search.Run()
		if err != nil {
			return nil, err
		}
		lastGuard = outcome.Guard
		anyRunSucceeded = true

		entries := make([]resultset.Entry, 0, len(candidates))
		for i, c := range candidates {
			entries = append(entries, resultset.Entry{
				Cost:           c.Cost,
				Hops:           c.Hops,
				Edges:          c.Edges,
				Range:          c.Range,
				RouteSig:       pathsearch.RouteSignature(request.Source, c.Edges),
				InsertionOrder: bias + uint64(i),
			})
		}
		return entries, nil
	}

	rs, err := resultset.CollectReusableTopK(request.TopK, maxIterations, iterate)
	if err != nil {
		logger.WithError(err).Warn("one or more search iterations failed")
	}
	if !anyRunSucceeded {
		return SearchOutcome{}, &ContractViolationError{Reason: fmt.Sprintf("no search iteration completed successfully: %v", err)}
	}
	if rs.Len() == 0 && lastGuard.Limits.Breached() && request.ThrowOnGuardBreach {
		return SearchOutcome{}, &GuardLimitExceededError{Reason: "search guard budget exhausted before any route reached the target"}
	}

	drained := rs.Drain()
	plans := make([]Plan, 0, len(drained))
	for _, entry := range drained {
		seed, err := materializer.DeriveInitialSeed(evaluator, entry.Edges[0], request.SpendMin, request.SpendMax, request.Desired)
		if err != nil {
			logger.WithError(err).WithField("route", entry.RouteSig).Warn("dropping route that failed seed derivation")
			continue
		}
		exec, err := materializer.Materialize(evaluator, entry.Edges, seed, request.Target, request.Desired, request.ToleranceWindow)
		if err != nil {
			logger.WithError(err).WithField("route", entry.RouteSig).Warn("dropping route that failed materialization")
			continue
		}
		exec.Signature = entry.RouteSig
		plans = append(plans, Plan{Cost: entry.Cost.String(), Hops: entry.Hops, Execution: exec})
	}

	logger.WithField("plan_count", len(plans)).Info("plan search complete")
	return SearchOutcome{RequestID: requestID, Plans: plans, Guard: lastGuard}, nil
}
