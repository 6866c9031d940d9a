package experiments

import (
	"fmt"
	"sync"
	"time"

	"netgame/config"
	"netgame/engine"
	"netgame/experiments/metrics"
	"netgame/game"

	"github.com/rs/zerolog/log"
)

type job struct {
	index  int
	config int
	cfg    config.Game
}

type outcome struct {
	run    metrics.RunRecord
	rounds []game.Round
	err    error
}

// ParallelSweep plays the same games as Sweep across a number of goroutines.
// Every game owns its engine and random source, so the result is identical
// to Sweep's regardless of scheduling. Observers built by observe must be
// safe to use alongside those of other games.
func ParallelSweep(t *game.Topology, configs []config.Game, seeds []uint64, goroutines int, observe ObserverFactory) (Result, error) {
	if goroutines < 1 {
		goroutines = 1
	}

	result := Result{}
	jobs := []job{}
	for ci, cfg := range configs {
		result.Configs = append(result.Configs, metrics.ConfigRecord{ID: ci + 1, Game: cfg})
		for _, seed := range seeds {
			cfg.Seed = seed
			jobs = append(jobs, job{index: len(jobs), config: ci + 1, cfg: cfg})
		}
	}

	log.Info().Msgf("starting %d games on %d goroutines...", len(jobs), goroutines)
	start := time.Now()

	outcomes := make([]outcome, len(jobs))
	queue := make(chan job)
	var wg sync.WaitGroup
	for range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range queue {
				outcomes[j.index] = play(t, j, observe)
			}
		}()
	}
	for _, j := range jobs {
		queue <- j
	}
	close(queue)
	wg.Wait()

	for i, o := range outcomes {
		if o.err != nil {
			return Result{}, o.err
		}
		o.run.ID = i + 1
		result.Runs = append(result.Runs, o.run)
		for _, round := range o.rounds {
			result.Rounds = append(result.Rounds, metrics.RoundRecord{Run: i + 1, Round: round})
		}
	}

	elapsed := time.Since(start)
	log.Info().Msgf("completed %d games in %s (%.1f games/s)", len(jobs), elapsed, float64(len(jobs))/elapsed.Seconds())
	return result, nil
}

func play(t *game.Topology, j job, observe ObserverFactory) outcome {
	e, err := engine.NewLocalEngine(t, j.cfg, engine.WithMetrics(), engine.WithObservers(observe.build(j.config, j.cfg.Seed)...))
	if err != nil {
		return outcome{err: fmt.Errorf("config %d: %w", j.config, err)}
	}
	_, runMetric, err := e.Run()
	if err != nil {
		return outcome{err: fmt.Errorf("config %d seed %d: %w", j.config, j.cfg.Seed, err)}
	}
	return outcome{
		run:    metrics.RunRecord{Config: j.config, Seed: j.cfg.Seed, RunMetric: runMetric},
		rounds: e.Rounds(),
	}
}
