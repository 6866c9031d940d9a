package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestTopology(t *testing.T) *Topology {
	t.Helper()
	topo := NewTopology()
	require.NoError(t, topo.AddEdge(1, 2, 10, 3, 2))
	require.NoError(t, topo.AddEdge(2, 3, 5, 1, 1))
	require.NoError(t, topo.AddEdge(3, 4, 2, 6, 4))
	return topo
}

func TestStandardRulesSettle(t *testing.T) {
	rules := NewStandardRules()
	e12, e23, e34 := NewEdgeKey(1, 2), NewEdgeKey(2, 3), NewEdgeKey(3, 4)

	t.Run("fully defended target", func(t *testing.T) {
		payoff, err := rules.Settle(newTestTopology(t), []EdgeKey{e12}, Allocation{e12: 2})

		require.NoError(t, err)
		require.Equal(t, 0.0, payoff.AttackerProfit, "Defended strike should earn nothing")
		require.Equal(t, 2.0, payoff.DefenderLoss, "Defender should lose the spend")
		require.Equal(t, []Strike{{Edge: e12, Spent: 2}}, payoff.Strikes)
	})

	t.Run("under-defended target", func(t *testing.T) {
		payoff, err := rules.Settle(newTestTopology(t), []EdgeKey{e12}, Allocation{e12: 1.5})

		require.NoError(t, err)
		require.Equal(t, 7.0, payoff.AttackerProfit, "Strike should earn value minus attack cost")
		require.Equal(t, 1.5, payoff.DefenderLoss, "Defender should lose the partial spend")
		require.True(t, payoff.Strikes[0].Succeeded)
	})

	t.Run("undefended targets", func(t *testing.T) {
		payoff, err := rules.Settle(newTestTopology(t), []EdgeKey{e23, e12}, Allocation{})

		require.NoError(t, err)
		require.Equal(t, 11.0, payoff.AttackerProfit)
		require.Equal(t, 0.0, payoff.DefenderLoss, "Nothing spent means no loss")
		require.Equal(t, e23, payoff.Strikes[0].Edge, "Strikes should follow target order")
	})

	t.Run("keeping negative profit", func(t *testing.T) {
		payoff, err := rules.Settle(newTestTopology(t), []EdgeKey{e34, e23}, Allocation{e23: 1})

		require.NoError(t, err)
		require.Equal(t, -4.0, payoff.AttackerProfit, "Losing strike should not be clamped")
		require.Equal(t, 1.0, payoff.DefenderLoss)
	})

	t.Run("spend on untargeted edges is not a loss", func(t *testing.T) {
		payoff, err := rules.Settle(newTestTopology(t), []EdgeKey{e23}, Allocation{e12: 2, e34: 4})

		require.NoError(t, err)
		require.Equal(t, 4.0, payoff.AttackerProfit)
		require.Equal(t, 0.0, payoff.DefenderLoss)
	})

	t.Run("unknown target", func(t *testing.T) {
		_, err := rules.Settle(newTestTopology(t), []EdgeKey{NewEdgeKey(1, 4)}, Allocation{})

		require.ErrorIs(t, err, ErrInvalidTopology)
	})
}

func TestHistory(t *testing.T) {
	e12, e23 := NewEdgeKey(1, 2), NewEdgeKey(2, 3)

	t.Run("counting targets", func(t *testing.T) {
		h := NewHistory()
		h.Record([]EdgeKey{e12, e23})
		h.Record([]EdgeKey{e12})

		require.Equal(t, 2, h.Count(e12))
		require.Equal(t, 1, h.Count(e23))
		require.Equal(t, 0, h.Count(NewEdgeKey(3, 4)), "Unseen edge should count 0")
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		h := NewHistory()
		h.Record([]EdgeKey{e12})

		snapshot := h.Snapshot()
		snapshot[e12] = 10

		require.Equal(t, 1, h.Count(e12))
	})

	t.Run("nil history counts zero", func(t *testing.T) {
		var h *History
		require.Equal(t, 0, h.Count(e12))
	})
}

func TestSeriesAppend(t *testing.T) {
	var s Series
	s.Append(Payoff{AttackerProfit: -3, DefenderLoss: 2})
	s.Append(Payoff{AttackerProfit: 7, DefenderLoss: 0})

	require.Equal(t, 2, s.Len())
	require.Equal(t, []float64{-3, 7}, s.AttackerProfits)
	require.Equal(t, []float64{2, 0}, s.DefenderLosses)
}

func TestAllocationString(t *testing.T) {
	a := Allocation{NewEdgeKey(4, 6): 6, NewEdgeKey(2, 1): 2, NewEdgeKey(1, 3): 0.5}

	require.Equal(t, "1-2:2 1-3:0.5 4-6:6", a.String())
	require.Equal(t, 8.5, a.Total())
	require.Equal(t, "", Allocation{}.String())
}

func TestJoinKeys(t *testing.T) {
	require.Equal(t, "4-6 1-2", JoinKeys([]EdgeKey{NewEdgeKey(6, 4), NewEdgeKey(1, 2)}))
	require.Equal(t, "", JoinKeys(nil))
}
