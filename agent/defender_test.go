package agent

import (
	"testing"

	"netgame/game"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"
)

// twoEdgeTopology is e1{10,3,2}, e2{5,1,1}.
func twoEdgeTopology(t *testing.T) *game.Topology {
	t.Helper()
	topo := game.NewTopology()
	require.NoError(t, topo.AddEdge(1, 2, 10, 3, 2))
	require.NoError(t, topo.AddEdge(2, 3, 5, 1, 1))
	return topo
}

// chainTopology builds a path 0-1-2-... with one edge per defense cost.
func chainTopology(costs []float64) *game.Topology {
	topo := game.NewTopology()
	for i, cost := range costs {
		_ = topo.AddEdge(game.NodeID(i), game.NodeID(i+1), 2*cost+1, cost/2, cost)
	}
	return topo
}

func TestAllocate(t *testing.T) {
	e1, e2 := game.NewEdgeKey(1, 2), game.NewEdgeKey(2, 3)

	t.Run("tied priorities follow edge order", func(t *testing.T) {
		got := Allocate(twoEdgeTopology(t), 2, game.NewHistory())

		require.Equal(t, game.Allocation{e1: 2}, got, "First edge should take the whole budget")
	})

	t.Run("zero budget", func(t *testing.T) {
		got := Allocate(twoEdgeTopology(t), 0, game.NewHistory())

		require.Empty(t, got, "No edge should be recorded")
	})

	t.Run("negative budget", func(t *testing.T) {
		got := Allocate(twoEdgeTopology(t), -5, game.NewHistory())

		require.Empty(t, got, "Negative budget should spend nothing")
	})

	t.Run("budget equal to first edge cost stops after that edge", func(t *testing.T) {
		history := game.NewHistory()
		history.Record([]game.EdgeKey{e2})

		got := Allocate(twoEdgeTopology(t), 1, history)

		require.Equal(t, game.Allocation{e2: 1}, got, "Attacked edge should be ranked first and exhaust the budget")
	})

	t.Run("partial spend on the exhausting edge", func(t *testing.T) {
		got := Allocate(twoEdgeTopology(t), 2.5, game.NewHistory())

		require.Equal(t, game.Allocation{e1: 2, e2: 0.5}, got)
	})

	t.Run("budget larger than all costs", func(t *testing.T) {
		got := Allocate(twoEdgeTopology(t), 100, game.NewHistory())

		require.Equal(t, game.Allocation{e1: 2, e2: 1}, got, "Every edge should be fully defended")
	})

	t.Run("history times value drives priority", func(t *testing.T) {
		history := game.NewHistory()
		history.Record([]game.EdgeKey{e1, e2})
		history.Record([]game.EdgeKey{e2})
		history.Record([]game.EdgeKey{e2})

		// e1 scores 1*10, e2 scores 3*5
		got := Allocate(twoEdgeTopology(t), 2, history)

		require.Equal(t, game.Allocation{e2: 1, e1: 1}, got)
	})

	t.Run("free edges are skipped", func(t *testing.T) {
		topo := game.NewTopology()
		require.NoError(t, topo.AddEdge(1, 2, 10, 3, 0))
		require.NoError(t, topo.AddEdge(2, 3, 5, 1, 1))

		got := Allocate(topo, 1, game.NewHistory())

		require.Equal(t, game.Allocation{e2: 1}, got, "Zero spend should not be recorded")
	})

	t.Run("greedy defender", func(t *testing.T) {
		got := NewGreedyDefender().Allocate(twoEdgeTopology(t), 2, game.NewHistory())

		require.Equal(t, game.Allocation{e1: 2}, got)
	})
}

func TestAllocateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("total spend never exceeds budget", prop.ForAll(
		func(budget float64, costs []float64) bool {
			allocation := Allocate(chainTopology(costs), budget, game.NewHistory())
			return allocation.Total() <= max(budget, 0)+1e-9
		},
		gen.Float64Range(-10, 100),
		gen.SliceOf(gen.Float64Range(0, 20)),
	))

	properties.Property("spend never exceeds an edge's defense cost", prop.ForAll(
		func(budget float64, costs []float64) bool {
			topo := chainTopology(costs)
			for key, spend := range Allocate(topo, budget, game.NewHistory()) {
				edge, _ := topo.Edge(key)
				if spend <= 0 || spend > edge.DefenseCost {
					return false
				}
			}
			return true
		},
		gen.Float64Range(-10, 100),
		gen.SliceOf(gen.Float64Range(0, 20)),
	))

	properties.Property("same inputs give same allocation", prop.ForAll(
		func(budget float64, costs []float64) bool {
			topo := chainTopology(costs)
			a := Allocate(topo, budget, game.NewHistory())
			b := Allocate(topo, budget, game.NewHistory())
			if len(a) != len(b) {
				return false
			}
			for key, spend := range a {
				if b[key] != spend {
					return false
				}
			}
			return true
		},
		gen.Float64Range(0, 100),
		gen.SliceOf(gen.Float64Range(0, 20)),
	))

	properties.TestingRun(t)
}
