// meta/meta.go
package meta

// DEFENSE_BUDGET is the defender's spend per round.
const DEFENSE_BUDGET = 20.0

// ROUNDS is the number of rounds in a game.
const ROUNDS = 5

// NUM_PATHS is the size of the attacker's candidate pool.
const NUM_PATHS = 3

// RANDOMNESS_FACTOR is the share of the pool struck each round.
const RANDOMNESS_FACTOR = 0.5

// SEED seeds the attacker's random draws.
const SEED = 1
