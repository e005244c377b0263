package pathsearch

import (
	"container/heap"
	"fmt"
	"time"

	"github.com/mExOms/routefinder/internal/routegraph"
	"github.com/mExOms/routefinder/pkg/decimal"
)

// Search runs one best-first branch-and-bound exploration of a compiled
// graph (spec.md §4.2). A Search is single-use: construct with NewSearch
// and call Run exactly once.
type Search struct {
	graph  *routegraph.Graph
	cfg    Config
	accept AcceptFunc

	reg              *registry
	insertionCounter uint64
	amplifier        decimal.Decimal

	// bestTargetCost is the lowest cost seen among accepted candidates
	// that have reached cfg.Target so far, used to amplify-and-prune the
	// frontier (spec.md §4.2.2 "tolerance amplification").
	bestTargetCost *decimal.Decimal
}

// NewSearch builds a Search ready to run over graph, bounded by cfg, and
// invoking accept once per completed candidate route.
func NewSearch(graph *routegraph.Graph, cfg Config, accept AcceptFunc) (*Search, error) {
	amplifier, err := toleranceAmplifier(cfg.Tolerance)
	if err != nil {
		return nil, fmt.Errorf("pathsearch: computing tolerance amplifier: %w", err)
	}
	return &Search{
		graph:     graph,
		cfg:       cfg,
		accept:    accept,
		reg:       newRegistry(),
		amplifier: amplifier,
	}, nil
}

// toleranceAmplifier computes 1/(1-tolerance) at ToleranceScale, with
// tolerance clamped to [0, 1-1e-18] so the amplifier never divides by
// zero (spec.md §4.2.2).
func toleranceAmplifier(tolerance decimal.Decimal) (decimal.Decimal, error) {
	one, err := decimal.NewFromInt(1, ToleranceScale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	epsilon, err := decimal.NewFromString("0.000000000000000001", ToleranceScale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	ceiling, err := one.Sub(epsilon, ToleranceScale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	t := tolerance
	if t.IsNegative() {
		t, err = decimal.Zero(ToleranceScale)
		if err != nil {
			return decimal.Decimal{}, err
		}
	}
	if t.GreaterThan(ceiling) {
		t = ceiling
	}
	denom, err := one.Sub(t, ToleranceScale)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return one.Div(denom, ToleranceScale)
}

// Run executes the search to completion or until a guard limit fires.
func (s *Search) Run() (Outcome, error) {
	start := time.Now()

	frontier := &frontierHeap{}
	heap.Init(frontier)

	one, err := decimal.NewFromInt(1, CostScale)
	if err != nil {
		return Outcome{}, err
	}

	initRange := s.cfg.InitialRange
	root := &frontierState{
		node:           s.cfg.Source,
		cost:           one,
		product:        one,
		hops:           0,
		edges:          nil,
		rng:            &initRange,
		visited:        map[string]bool{s.cfg.Source: true},
		routeSig:       routeSignature([]string{s.cfg.Source}),
		insertionOrder: s.nextInsertionOrder(),
	}

	guard := SearchGuardReport{
		MaxExpansions:    s.cfg.MaxExpansions,
		MaxVisitedStates: s.cfg.MaxVisitedStates,
	}
	if s.cfg.TimeBudget != nil {
		ms := s.cfg.TimeBudget.Milliseconds()
		guard.TimeBudgetMs = &ms
	}

	if accepted, isFirst := s.reg.insert(root.node, stateSignature(root.rng), root.cost, root.hops); accepted {
		if isFirst {
			guard.VisitedStates++
		}
		heap.Push(frontier, root)
	}

	for frontier.Len() > 0 {
		if s.cfg.MaxExpansions > 0 && guard.Expansions >= s.cfg.MaxExpansions {
			guard.Limits.ExpansionsReached = true
			break
		}
		if s.cfg.MaxVisitedStates > 0 && guard.VisitedStates > s.cfg.MaxVisitedStates {
			guard.Limits.VisitedStatesReached = true
			break
		}
		if s.cfg.TimeBudget != nil && time.Since(start) > *s.cfg.TimeBudget {
			guard.Limits.TimeBudgetReached = true
			break
		}

		state := heap.Pop(frontier).(*frontierState)
		guard.Expansions++

		if s.bestTargetCost != nil {
			bound, err := s.bestTargetCost.Mul(s.amplifier, CostScale)
			if err != nil {
				return Outcome{}, err
			}
			if state.cost.GreaterThan(bound) {
				continue
			}
		}

		if state.node == s.cfg.Target && state.hops >= s.cfg.MinHops && state.hops > 0 {
			candidate := CandidatePath{
				Cost:    state.cost,
				Product: state.product,
				Hops:    state.hops,
				Edges:   append([]*routegraph.Edge(nil), state.edges...),
				Range:   state.rng,
			}
			if s.accept(candidate) && (s.bestTargetCost == nil || state.cost.LessThan(*s.bestTargetCost)) {
				best := state.cost
				s.bestTargetCost = &best
			}
		}

		if s.cfg.MaxHops > 0 && state.hops >= s.cfg.MaxHops {
			continue
		}

		node, ok := s.graph.Node(state.node)
		if !ok {
			continue
		}

		for _, edge := range node.Edges {
			if state.visited[edge.To] {
				continue
			}

			trimmed, err := edgeSupportsAmount(edge, state.rng)
			if err != nil {
				return Outcome{}, err
			}
			if trimmed == nil {
				continue
			}

			rate, err := effectiveRate(edge)
			if err != nil {
				return Outcome{}, err
			}

			nextRange, err := calculateNextRange(edge, trimmed, rate)
			if err != nil {
				return Outcome{}, err
			}

			nextProduct, err := state.product.Mul(rate, CostScale)
			if err != nil {
				return Outcome{}, err
			}
			if nextProduct.IsZero() {
				// A zero product means this edge yields nothing for any
				// feasible spend; it can never lead to a useful route.
				continue
			}
			nextCost, err := one.Div(nextProduct, CostScale)
			if err != nil {
				return Outcome{}, err
			}

			nextVisited := make(map[string]bool, len(state.visited)+1)
			for k := range state.visited {
				nextVisited[k] = true
			}
			nextVisited[edge.To] = true

			nextEdges := append(append([]*routegraph.Edge(nil), state.edges...), edge)
			nextNodes := make([]string, 0, len(nextEdges)+1)
			nextNodes = append(nextNodes, s.cfg.Source)
			for _, e := range nextEdges {
				nextNodes = append(nextNodes, e.To)
			}

			next := &frontierState{
				node:           edge.To,
				cost:           nextCost,
				product:        nextProduct,
				hops:           state.hops + 1,
				edges:          nextEdges,
				rng:            nextRange,
				visited:        nextVisited,
				routeSig:       routeSignature(nextNodes),
				insertionOrder: s.nextInsertionOrder(),
			}

			accepted, isFirst := s.reg.insert(next.node, stateSignature(next.rng), next.cost, next.hops)
			if !accepted {
				continue
			}
			if isFirst {
				guard.VisitedStates++
			}
			heap.Push(frontier, next)
		}
	}

	guard.ElapsedMs = time.Since(start).Milliseconds()
	return Outcome{Guard: guard}, nil
}

func (s *Search) nextInsertionOrder() uint64 {
	s.insertionCounter++
	return s.cfg.InsertionBias + s.insertionCounter
}
