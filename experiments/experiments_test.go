package experiments

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"netgame/config"
	"netgame/engine"
	"netgame/experiments/metrics"
	"netgame/game"
	"netgame/hook"

	"github.com/stretchr/testify/require"
)

func sweepConfigs() []config.Game {
	low, high := config.Default(), config.Default()
	low.DefenseBudget = 5
	high.RandomnessFactor = 1
	return []config.Game{low, high}
}

// stripTimes drops wall clock fields so runs can be compared.
func stripTimes(runs []metrics.RunRecord) []metrics.RunRecord {
	stripped := make([]metrics.RunRecord, len(runs))
	for i, run := range runs {
		stripped[i] = metrics.RunRecord{
			ID:     run.ID,
			Config: run.Config,
			Seed:   run.Seed,
			RunMetric: metrics.RunMetric{
				Rounds:            run.Rounds,
				Strikes:           run.Strikes,
				SuccessfulStrikes: run.SuccessfulStrikes,
				TotalProfit:       run.TotalProfit,
				TotalLoss:         run.TotalLoss,
			},
		}
	}
	return stripped
}

func TestSeeds(t *testing.T) {
	require.Equal(t, []uint64{1, 2, 3}, Seeds(3))
	require.Empty(t, Seeds(0))
}

func TestSweep(t *testing.T) {
	t.Run("one run per config and seed", func(t *testing.T) {
		result, err := Sweep(game.CreateNetwork(), sweepConfigs(), Seeds(3), nil)
		require.NoError(t, err)

		require.Len(t, result.Configs, 2)
		require.Len(t, result.Runs, 6)
		require.Len(t, result.Rounds, 6*5, "Five rounds per run")

		for i, run := range result.Runs {
			require.Equal(t, i+1, run.ID)
			require.Equal(t, i/3+1, run.Config)
			require.Equal(t, uint64(i%3+1), run.Seed)
			require.Equal(t, 5, run.Rounds)
		}
		require.Equal(t, 1, result.Rounds[0].Run)
		require.Equal(t, 1, result.Rounds[0].Number)
		require.Equal(t, 6, result.Rounds[len(result.Rounds)-1].Run)
	})

	t.Run("rejecting an invalid config", func(t *testing.T) {
		configs := sweepConfigs()
		configs[1].Rounds = 0

		_, err := Sweep(game.CreateNetwork(), configs, Seeds(2), nil)

		require.ErrorIs(t, err, config.ErrInvalidConfiguration)
	})
}

func TestParallelSweep(t *testing.T) {
	sequential, err := Sweep(game.CreateNetwork(), sweepConfigs(), Seeds(5), nil)
	require.NoError(t, err)

	for _, goroutines := range []int{0, 1, 3, 16} {
		parallel, err := ParallelSweep(game.CreateNetwork(), sweepConfigs(), Seeds(5), goroutines, nil)
		require.NoError(t, err)

		require.Equal(t, sequential.Configs, parallel.Configs)
		require.Equal(t, stripTimes(sequential.Runs), stripTimes(parallel.Runs), "Scheduling should not change results")
		require.Equal(t, sequential.Rounds, parallel.Rounds)
	}
}

func TestRunExperiment(t *testing.T) {
	root := t.TempDir()

	dir, err := RunExperiment(root, "budget", game.CreateNetwork(), sweepConfigs(), Seeds(2), 2, nil)
	require.NoError(t, err)

	rel, err := filepath.Rel(root, dir)
	require.NoError(t, err)
	require.Equal(t, "budget", filepath.Dir(rel))
	for _, name := range []string{"setup.json", "configs.csv", "runs.csv", "rounds.csv"} {
		_, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, "Missing %s", name)
	}
}

func TestExperimentConfigs(t *testing.T) {
	base := config.Default()

	t.Run("budget configs scale the base budget", func(t *testing.T) {
		configs := BudgetConfigs(base)

		budgets := []float64{}
		for _, cfg := range configs {
			budgets = append(budgets, cfg.DefenseBudget)
			require.Equal(t, base.RandomnessFactor, cfg.RandomnessFactor)
		}
		require.Equal(t, []float64{0, 5, 10, 20, 40}, budgets)
	})

	t.Run("randomness configs span the unit interval", func(t *testing.T) {
		configs := RandomnessConfigs(base)

		factors := []float64{}
		for _, cfg := range configs {
			factors = append(factors, cfg.RandomnessFactor)
			require.Equal(t, base.DefenseBudget, cfg.DefenseBudget)
			require.NoError(t, cfg.Validate())
		}
		require.Equal(t, []float64{0, 0.25, 0.5, 0.75, 1}, factors)
	})
}

func runsInDir(t *testing.T, dir string) int {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, "runs.csv"))
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(f)
	require.NoError(t, err)
	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	return lines - 1
}

func TestCannedExperiments(t *testing.T) {
	base := config.Default()
	base.Rounds = 2

	t.Run("budget experiment", func(t *testing.T) {
		root := t.TempDir()

		dir, err := RunBudgetExperiment(root, game.CreateNetwork(), base, Seeds(2), 1, nil)

		require.NoError(t, err)
		require.Equal(t, filepath.Join(root, "budget"), filepath.Dir(dir))
		require.Equal(t, 5*2, runsInDir(t, dir))
	})

	t.Run("randomness experiment", func(t *testing.T) {
		root := t.TempDir()

		dir, err := RunRandomnessExperiment(root, game.CreateNetwork(), base, Seeds(3), 2, nil)

		require.NoError(t, err)
		require.Equal(t, filepath.Join(root, "randomness"), filepath.Dir(dir))
		require.Equal(t, 5*3, runsInDir(t, dir))
	})
}

func TestSweepObserversPerGame(t *testing.T) {
	var mu sync.Mutex
	summaries := []hook.Summary{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload hook.Summary
		if err := json.NewDecoder(r.Body).Decode(&payload); err == nil && payload.Kind == hook.KindSummary {
			mu.Lock()
			summaries = append(summaries, payload)
			mu.Unlock()
		}
	}))
	defer server.Close()

	h := hook.NewHTTPObserver(server.URL)
	registry := metrics.NewRegistry()
	observe := func(config int, seed uint64) []engine.Observer {
		return []engine.Observer{registry.ForGame(metrics.GameLabel(config, seed)), h.ForGame(config, seed)}
	}

	result, err := ParallelSweep(game.CreateNetwork(), sweepConfigs(), Seeds(3), 4, observe)
	require.NoError(t, err)

	require.Len(t, summaries, 6)
	runIDs := map[string]bool{}
	games := map[hook.GameID]bool{}
	for _, s := range summaries {
		require.NotNil(t, s.Game)
		runIDs[s.RunID] = true
		games[*s.Game] = true
	}
	require.Len(t, runIDs, 6, "Every game should have its own run id")
	for _, run := range result.Runs {
		require.True(t, games[hook.GameID{Config: run.Config, Seed: run.Seed}], "Missing summary for config %d seed %d", run.Config, run.Seed)
	}
	require.Zero(t, h.Failures())
}
