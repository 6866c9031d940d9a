package agent

import "netgame/game"

// Defender decides how to spread a budget over the network each round.
type Defender interface {
	// Allocate returns the round's spend per edge. The total never exceeds budget.
	Allocate(t *game.Topology, budget float64, history *game.History) game.Allocation
}

// Attacker picks the edges to strike given the defender's allocation.
type Attacker interface {
	// SelectTargets returns the edges to strike in the order they were drawn.
	SelectTargets(t *game.Topology, allocation game.Allocation, rng Rand) []game.EdgeKey
}

// Rand is the source of randomness consumed by attackers.
type Rand interface {
	Intn(n int) int
}
