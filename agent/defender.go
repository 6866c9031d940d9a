package agent

import (
	"netgame/game"
	"netgame/utils"
)

type greedyDefender struct{}

// NewGreedyDefender returns a defender that protects the most damaging
// edges of past rounds first.
func NewGreedyDefender() Defender {
	return greedyDefender{}
}

func (greedyDefender) Allocate(t *game.Topology, budget float64, history *game.History) game.Allocation {
	return Allocate(t, budget, history)
}

// Allocate ranks edges by times attacked times value and spends up to each
// edge's defense cost in that order until the budget runs out. Ties keep the
// topology's edge order. Edges that receive no spend are left out, so a
// budget of zero or less yields an empty allocation.
func Allocate(t *game.Topology, budget float64, history *game.History) game.Allocation {
	allocation := game.Allocation{}
	if budget <= 0 {
		return allocation
	}

	ranked := utils.RankDesc(t.Edges(), func(e game.Edge) float64 {
		return float64(history.Count(e.Key())) * e.Value
	})

	remaining := budget
	for _, edge := range ranked {
		spend := min(remaining, edge.DefenseCost)
		if spend > 0 {
			allocation[edge.Key()] = spend
		}
		remaining -= spend
		if remaining <= 0 {
			break
		}
	}
	return allocation
}
