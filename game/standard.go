package game

import "fmt"

type StandardRules struct{}

func NewStandardRules() *StandardRules {
	return &StandardRules{}
}

// Settle computes the attacker's profit and the defender's loss for a round.
// A strike succeeds when the spend on the edge is below its defense cost and
// then earns value minus attack cost, which may be negative. The defender
// loses whatever was spent on every targeted edge, hit or not.
func (sr *StandardRules) Settle(t *Topology, targets []EdgeKey, allocation Allocation) (Payoff, error) {
	payoff := Payoff{Strikes: make([]Strike, 0, len(targets))}
	for _, key := range targets {
		edge, ok := t.Edge(key)
		if !ok {
			return Payoff{}, fmt.Errorf("%w: target %s is not an edge", ErrInvalidTopology, key)
		}

		strike := Strike{Edge: key, Spent: allocation.Spent(key)}
		if strike.Spent < edge.DefenseCost {
			strike.Succeeded = true
			strike.Profit = edge.Value - edge.AttackCost
		}

		payoff.AttackerProfit += strike.Profit
		payoff.DefenderLoss += strike.Spent
		payoff.Strikes = append(payoff.Strikes, strike)
	}
	return payoff, nil
}
