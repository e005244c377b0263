package routegraph

import (
	"github.com/mExOms/routefinder/internal/orderbook"
	"github.com/mExOms/routefinder/pkg/money"
)

// Node is a currency vertex in the compiled graph.
type Node struct {
	Currency string
	Edges    []*Edge
}

// Graph maps currency to its node. An edge's From must equal its
// owning node's currency (spec.md §3).
type Graph struct {
	nodes map[string]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// EnsureNode returns the node for currency, creating it with no edges
// if it does not yet exist.
func (g *Graph) EnsureNode(currency string) *Node {
	node, ok := g.nodes[currency]
	if !ok {
		node = &Node{Currency: currency}
		g.nodes[currency] = node
	}
	return node
}

// Node returns the node for currency, or nil if absent.
func (g *Graph) Node(currency string) (*Node, bool) {
	node, ok := g.nodes[currency]
	return node, ok
}

// AddEdge appends edge to its From node, creating the node if needed.
func (g *Graph) AddEdge(edge *Edge) {
	node := g.EnsureNode(edge.From)
	node.Edges = append(node.Edges, edge)
}

// Currencies returns every node currency the graph knows about.
func (g *Graph) Currencies() []string {
	out := make([]string, 0, len(g.nodes))
	for c := range g.nodes {
		out = append(out, c)
	}
	return out
}

// Range is a closed [Min, Max] interval of Money in one currency.
type Range struct {
	Min money.Money
	Max money.Money
}

// Segment splits an edge's capacity into a mandatory sub-range (the
// order's minimum fill) and an optional remainder, so the search can
// reason about fee-aware step-by-step feasibility (spec.md §4.1).
type Segment struct {
	Mandatory bool
	Base      Range
	Quote     Range
	GrossBase Range
}

// Edge is a directed conversion step compiled from one Order.
type Edge struct {
	From              string
	To                string
	Side              orderbook.Side
	Order             *orderbook.Order
	BaseCapacity      Range
	QuoteCapacity     Range
	GrossBaseCapacity Range
	Segments          []Segment
}
