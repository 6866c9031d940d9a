package engine

import (
	"errors"

	"netgame/experiments/metrics"
	"netgame/game"
)

// ErrGameOver is returned when stepping an engine that played all its rounds.
var ErrGameOver = errors.New("game is over")

type Engine interface {
	// Run plays every remaining round and returns the per-round payoffs
	Run() (series game.Series, runMetric metrics.RunMetric, err error)
}

// Observer receives the game as it is played, e.g. to visualize it.
type Observer interface {
	ObserveRound(t *game.Topology, round game.Round)
	ObserveCompletion(series game.Series)
}
