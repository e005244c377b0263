// Graph builder (spec.md §4.1): compiles a filtered order list into a
// directed multigraph of from->to edges annotated with capacity
// envelopes and fee-aware segments.
package routegraph

import (
	"fmt"

	"github.com/mExOms/routefinder/internal/orderbook"
)

// Builder compiles Orders into a Graph via an OrderFillEvaluator.
type Builder struct {
	evaluator orderbook.OrderFillEvaluator
	zeroCache *zeroMoneyCache
}

// NewBuilder constructs a Builder around the given evaluator.
func NewBuilder(evaluator orderbook.OrderFillEvaluator) *Builder {
	if evaluator == nil {
		evaluator = orderbook.DefaultFillEvaluator{}
	}
	return &Builder{evaluator: evaluator, zeroCache: newZeroMoneyCache()}
}

// Build compiles orders into a Graph.
func (b *Builder) Build(orders []*orderbook.Order) (*Graph, error) {
	g := New()
	for _, order := range orders {
		edge, err := b.compileEdge(order)
		if err != nil {
			return nil, fmt.Errorf("routegraph: compiling order %s: %w", order.ID, err)
		}
		g.EnsureNode(order.ToCurrency())
		g.AddEdge(edge)
	}
	return g, nil
}

func (b *Builder) compileEdge(order *orderbook.Order) (*Edge, error) {
	evalMin, err := b.evaluator.Evaluate(order, order.Bounds.Min)
	if err != nil {
		return nil, err
	}
	evalMax, err := b.evaluator.Evaluate(order, order.Bounds.Max)
	if err != nil {
		return nil, err
	}

	segments, err := b.buildSegments(order, evalMin, evalMax)
	if err != nil {
		return nil, err
	}

	return &Edge{
		From:              order.FromCurrency(),
		To:                order.ToCurrency(),
		Side:              order.Side,
		Order:             order,
		BaseCapacity:      Range{Min: evalMin.NetBase, Max: evalMax.NetBase},
		QuoteCapacity:     Range{Min: evalMin.Quote, Max: evalMax.Quote},
		GrossBaseCapacity: Range{Min: evalMin.GrossBase, Max: evalMax.GrossBase},
		Segments:          segments,
	}, nil
}

func (b *Builder) buildSegments(order *orderbook.Order, evalMin, evalMax orderbook.Fill) ([]Segment, error) {
	if evalMin.Fees.IsZero() && evalMax.Fees.IsZero() {
		return nil, nil
	}

	remainderBase, err := evalMax.NetBase.Sub(evalMin.NetBase, -1)
	if err != nil {
		return nil, err
	}
	remainderQuote, err := evalMax.Quote.Sub(evalMin.Quote, -1)
	if err != nil {
		return nil, err
	}
	remainderGross, err := evalMax.GrossBase.Sub(evalMin.GrossBase, -1)
	if err != nil {
		return nil, err
	}

	var segments []Segment

	if !evalMin.NetBase.IsZero() {
		segments = append(segments, Segment{
			Mandatory: true,
			Base:      Range{Min: evalMin.NetBase, Max: evalMin.NetBase},
			Quote:     Range{Min: evalMin.Quote, Max: evalMin.Quote},
			GrossBase: Range{Min: evalMin.GrossBase, Max: evalMin.GrossBase},
		})
	}

	if !remainderBase.IsZero() {
		zeroBase, err := b.zeroCache.Get(order.Pair.Base, remainderBase.Scale())
		if err != nil {
			return nil, err
		}
		zeroQuote, err := b.zeroCache.Get(order.Pair.Quote, remainderQuote.Scale())
		if err != nil {
			return nil, err
		}
		segments = append(segments, Segment{
			Mandatory: false,
			Base:      Range{Min: zeroBase, Max: remainderBase},
			Quote:     Range{Min: zeroQuote, Max: remainderQuote},
			GrossBase: Range{Min: zeroBase, Max: remainderGross},
		})
	}

	if len(segments) == 0 {
		zeroBase, err := b.zeroCache.Get(order.Pair.Base, evalMin.NetBase.Scale())
		if err != nil {
			return nil, err
		}
		zeroQuote, err := b.zeroCache.Get(order.Pair.Quote, evalMin.Quote.Scale())
		if err != nil {
			return nil, err
		}
		segments = append(segments, Segment{
			Mandatory: false,
			Base:      Range{Min: zeroBase, Max: zeroBase},
			Quote:     Range{Min: zeroQuote, Max: zeroQuote},
			GrossBase: Range{Min: zeroBase, Max: zeroBase},
		})
	}

	return segments, nil
}
