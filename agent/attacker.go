package agent

import (
	"math"

	"netgame/game"
	"netgame/utils"
)

type diverseAttacker struct {
	numPaths         int
	randomnessFactor float64
}

// NewDiverseAttacker returns an attacker that samples its targets from the
// numPaths most profitable edges. randomnessFactor scales how many of them
// are struck each round.
func NewDiverseAttacker(numPaths int, randomnessFactor float64) Attacker {
	return diverseAttacker{numPaths: numPaths, randomnessFactor: randomnessFactor}
}

func (a diverseAttacker) SelectTargets(t *game.Topology, allocation game.Allocation, rng Rand) []game.EdgeKey {
	return SelectTargets(t, allocation, a.numPaths, a.randomnessFactor, rng)
}

// SelectTargets ranks edges by value minus attack cost minus defensive spend,
// keeps the top min(numPaths, edges) as a candidate pool and draws
// max(1, round(numPaths*randomnessFactor)) of them without replacement,
// never more than the pool holds.
func SelectTargets(t *game.Topology, allocation game.Allocation, numPaths int, randomnessFactor float64, rng Rand) []game.EdgeKey {
	ranked := utils.RankDesc(t.Edges(), func(e game.Edge) float64 {
		return e.Value - e.AttackCost - allocation.Spent(e.Key())
	})

	pool := make([]game.EdgeKey, min(max(numPaths, 0), len(ranked)))
	for i := range pool {
		pool[i] = ranked[i].Key()
	}

	return sample(pool, SampleSize(numPaths, randomnessFactor, len(pool)), rng)
}

// SampleSize is the number of targets struck per round for a pool of
// poolSize candidates. Halves round to even.
func SampleSize(numPaths int, randomnessFactor float64, poolSize int) int {
	k := max(1, int(math.RoundToEven(float64(numPaths)*randomnessFactor)))
	return min(k, poolSize)
}

// sample draws k items without replacement with a partial Fisher-Yates
// shuffle of a copy of pool.
func sample(pool []game.EdgeKey, k int, rng Rand) []game.EdgeKey {
	candidates := make([]game.EdgeKey, len(pool))
	copy(candidates, pool)

	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(candidates)-i)
		candidates[i], candidates[j] = candidates[j], candidates[i]
	}
	return candidates[:k]
}
