package game

import (
	"fmt"
	"math"
)

// Edge is an undirected link between two nodes with static game attributes.
type Edge struct {
	U           NodeID  // First endpoint, as added
	V           NodeID  // Second endpoint, as added
	Value       float64 // Asset worth if the edge is compromised
	AttackCost  float64 // Cost for the attacker to strike the edge
	DefenseCost float64 // Spend that fully protects the edge for one round
}

func (e Edge) Key() EdgeKey {
	return NewEdgeKey(e.U, e.V)
}

// Topology is the static network the game is played on. Edges keep their
// insertion order, which is the canonical order used to break ranking ties.
type Topology struct {
	edges []Edge
	index map[EdgeKey]int
	nodes []NodeID
	seen  map[NodeID]bool
}

// NewTopology creates an empty topology.
func NewTopology() *Topology {
	return &Topology{
		index: make(map[EdgeKey]int),
		seen:  make(map[NodeID]bool),
	}
}

// AddEdge adds an undirected edge between u and v. Duplicate pairs and
// negative, infinite or NaN attributes are rejected.
func (t *Topology) AddEdge(u, v NodeID, value, attackCost, defenseCost float64) error {
	key := NewEdgeKey(u, v)
	if _, ok := t.index[key]; ok {
		return fmt.Errorf("%w: duplicate edge %s", ErrInvalidTopology, key)
	}
	attrs := []struct {
		name string
		val  float64
	}{{"value", value}, {"attack cost", attackCost}, {"defense cost", defenseCost}}
	for _, attr := range attrs {
		if math.IsNaN(attr.val) || math.IsInf(attr.val, 0) || attr.val < 0 {
			return fmt.Errorf("%w: edge %s has invalid %s %v", ErrInvalidTopology, key, attr.name, attr.val)
		}
	}

	t.index[key] = len(t.edges)
	t.edges = append(t.edges, Edge{U: u, V: v, Value: value, AttackCost: attackCost, DefenseCost: defenseCost})
	t.addNode(u)
	t.addNode(v)
	return nil
}

func (t *Topology) addNode(id NodeID) {
	if !t.seen[id] {
		t.seen[id] = true
		t.nodes = append(t.nodes, id)
	}
}

// Edges returns a copy of the edges in canonical order.
func (t *Topology) Edges() []Edge {
	edges := make([]Edge, len(t.edges))
	copy(edges, t.edges)
	return edges
}

// Nodes returns the node IDs in the order they were first seen.
func (t *Topology) Nodes() []NodeID {
	nodes := make([]NodeID, len(t.nodes))
	copy(nodes, t.nodes)
	return nodes
}

// Edge looks up an edge by key.
func (t *Topology) Edge(key EdgeKey) (Edge, bool) {
	i, ok := t.index[key]
	if !ok {
		return Edge{}, false
	}
	return t.edges[i], true
}

// Clone returns a deep copy of the topology.
func (t *Topology) Clone() *Topology {
	c := NewTopology()
	c.edges = append(c.edges, t.edges...)
	c.nodes = append(c.nodes, t.nodes...)
	for key, i := range t.index {
		c.index[key] = i
	}
	for id := range t.seen {
		c.seen[id] = true
	}
	return c
}

func (t *Topology) Len() int {
	return len(t.edges)
}

// Validate checks that the game can be played on the topology.
func (t *Topology) Validate() error {
	if t == nil || len(t.edges) == 0 {
		return fmt.Errorf("%w: no edges", ErrInvalidTopology)
	}
	return nil
}

// CreateNetwork builds the reference network used when no topology is given.
func CreateNetwork() *Topology {
	t := NewTopology()
	for _, e := range referenceEdges {
		if err := t.AddEdge(e.U, e.V, e.Value, e.AttackCost, e.DefenseCost); err != nil {
			panic(fmt.Sprintf("reference network: %v", err))
		}
	}
	return t
}

var referenceEdges = []Edge{
	{U: 1, V: 2, Value: 10, AttackCost: 3, DefenseCost: 2},
	{U: 1, V: 3, Value: 20, AttackCost: 6, DefenseCost: 4},
	{U: 2, V: 4, Value: 15, AttackCost: 5, DefenseCost: 3},
	{U: 3, V: 5, Value: 12, AttackCost: 4, DefenseCost: 3},
	{U: 4, V: 5, Value: 25, AttackCost: 8, DefenseCost: 5},
	{U: 4, V: 6, Value: 30, AttackCost: 10, DefenseCost: 6},
	{U: 5, V: 7, Value: 18, AttackCost: 7, DefenseCost: 4},
	{U: 6, V: 8, Value: 22, AttackCost: 9, DefenseCost: 5},
	{U: 7, V: 9, Value: 35, AttackCost: 12, DefenseCost: 7},
	{U: 8, V: 10, Value: 40, AttackCost: 15, DefenseCost: 10},
}
