package game

// Rules settles the outcome of a round's strikes.
type Rules interface {
	Settle(t *Topology, targets []EdgeKey, allocation Allocation) (Payoff, error)
}
