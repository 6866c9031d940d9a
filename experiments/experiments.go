package experiments

import (
	"fmt"
	"time"

	"netgame/config"
	"netgame/engine"
	"netgame/experiments/metrics"
	"netgame/game"

	"github.com/rs/zerolog/log"
)

const (
	NumSeeds   = 30 // Per config
	Goroutines = 4
)

// ObserverFactory builds the observers of one game of a sweep. config is the
// 1-based index of the game's config.
type ObserverFactory func(config int, seed uint64) []engine.Observer

func (f ObserverFactory) build(config int, seed uint64) []engine.Observer {
	if f == nil {
		return nil
	}
	return f(config, seed)
}

// RandomnessConfigs varies the attacker's randomness factor of base.
func RandomnessConfigs(base config.Game) []config.Game {
	configs := []config.Game{}
	for _, factor := range []float64{0, 0.25, 0.5, 0.75, 1} {
		cfg := base
		cfg.RandomnessFactor = factor
		configs = append(configs, cfg)
	}
	return configs
}

// BudgetConfigs varies the defender's budget of base from nothing to twice
// the base budget.
func BudgetConfigs(base config.Game) []config.Game {
	configs := []config.Game{}
	for _, scale := range []float64{0, 0.25, 0.5, 1, 2} {
		cfg := base
		cfg.DefenseBudget = base.DefenseBudget * scale
		configs = append(configs, cfg)
	}
	return configs
}

// RunRandomnessExperiment sweeps the attacker's randomness factor.
func RunRandomnessExperiment(root string, t *game.Topology, base config.Game, seeds []uint64, goroutines int, observe ObserverFactory) (string, error) {
	return RunExperiment(root, "randomness", t, RandomnessConfigs(base), seeds, goroutines, observe)
}

// RunBudgetExperiment sweeps the defender's budget.
func RunBudgetExperiment(root string, t *game.Topology, base config.Game, seeds []uint64, goroutines int, observe ObserverFactory) (string, error) {
	return RunExperiment(root, "budget", t, BudgetConfigs(base), seeds, goroutines, observe)
}

// Seeds returns the seeds 1..n.
func Seeds(n int) []uint64 {
	seeds := make([]uint64, n)
	for i := range seeds {
		seeds[i] = uint64(i + 1)
	}
	return seeds
}

type Result struct {
	Configs []metrics.ConfigRecord
	Runs    []metrics.RunRecord
	Rounds  []metrics.RoundRecord
}

// Sweep plays one game per config and seed, in order.
func Sweep(t *game.Topology, configs []config.Game, seeds []uint64, observe ObserverFactory) (Result, error) {
	result := Result{}
	count := 0

	for ci, cfg := range configs {
		configID := ci + 1
		result.Configs = append(result.Configs, metrics.ConfigRecord{ID: configID, Game: cfg})

		log.Info().Msgf("starting config %d of %d: %+v", configID, len(configs), cfg)

		for _, seed := range seeds {
			cfg.Seed = seed
			e, err := engine.NewLocalEngine(t, cfg, engine.WithMetrics(), engine.WithObservers(observe.build(configID, seed)...))
			if err != nil {
				return Result{}, fmt.Errorf("config %d: %w", configID, err)
			}

			_, runMetric, err := e.Run()
			if err != nil {
				return Result{}, fmt.Errorf("config %d seed %d: %w", configID, seed, err)
			}

			count++
			result.Runs = append(result.Runs, metrics.RunRecord{
				ID:        count,
				Config:    configID,
				Seed:      seed,
				RunMetric: runMetric,
			})
			for _, round := range e.Rounds() {
				result.Rounds = append(result.Rounds, metrics.RoundRecord{Run: count, Round: round})
			}
		}
		log.Info().Msgf("completed config %d of %d", configID, len(configs))
	}
	return result, nil
}

// RunExperiment sweeps configs and seeds and stores the results under
// root/name. More than one goroutine runs the games in parallel. It returns
// the output directory.
func RunExperiment(root, name string, t *game.Topology, configs []config.Game, seeds []uint64, goroutines int, observe ObserverFactory) (string, error) {
	log.Info().Msgf("starting %s experiment...", name)
	start := time.Now()

	var result Result
	var err error
	if goroutines > 1 {
		result, err = ParallelSweep(t, configs, seeds, goroutines, observe)
	} else {
		result, err = Sweep(t, configs, seeds, observe)
	}
	if err != nil {
		return "", fmt.Errorf("%s experiment: %w", name, err)
	}

	end := time.Now()
	log.Info().Msgf("completed %s experiment", name)

	writer, err := metrics.NewWriter(root, name)
	if err != nil {
		return "", fmt.Errorf("failed to create experiment writer: %w", err)
	}

	err = writer.WriteSetup(metrics.Setup{
		Name:      name,
		Configs:   configs,
		Seeds:     seeds,
		Edges:     t.Len(),
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	})
	if err != nil {
		return "", err
	}
	log.Info().Msg("stored experiment setup")

	if err := writer.WriteConfigs(result.Configs); err != nil {
		return "", err
	}
	log.Info().Msg("stored configs")

	if err := writer.WriteRuns(result.Runs); err != nil {
		return "", err
	}
	log.Info().Msg("stored run records")

	if err := writer.WriteRounds(result.Rounds); err != nil {
		return "", err
	}
	log.Info().Msg("stored round records")

	return writer.Dir(), nil
}
