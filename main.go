package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"netgame/config"
	"netgame/engine"
	"netgame/experiments"
	"netgame/experiments/metrics"
	"netgame/game"
	"netgame/hook"
	"netgame/report"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type options struct {
	configPath  string
	budget      float64
	rounds      int
	paths       int
	randomness  float64
	seed        uint64
	hookURL     string
	sweep       string
	out         string
	goroutines  int
	metricsAddr string
	logLevel    string
}

func main() {
	defaults := config.Default()
	opts := options{}
	flag.StringVar(&opts.configPath, "config", "", "YAML file with game parameters and network")
	flag.Float64Var(&opts.budget, "budget", defaults.DefenseBudget, "Defense budget per round")
	flag.IntVar(&opts.rounds, "rounds", defaults.Rounds, "Number of rounds")
	flag.IntVar(&opts.paths, "paths", defaults.NumPaths, "Attacker candidate pool size")
	flag.Float64Var(&opts.randomness, "randomness", defaults.RandomnessFactor, "Attacker randomness factor in [0, 1]")
	flag.Uint64Var(&opts.seed, "seed", defaults.Seed, "Random seed")
	flag.StringVar(&opts.hookURL, "hook", "", "Visualizer URL, e.g. "+hook.DefaultURL)
	flag.StringVar(&opts.sweep, "sweep", "", "Run an experiment instead of a single game: budget or randomness")
	flag.StringVar(&opts.out, "out", "results", "Output directory for experiments")
	flag.IntVar(&opts.goroutines, "goroutines", experiments.Goroutines, "Parallel games during an experiment")
	flag.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	flag.StringVar(&opts.logLevel, "log-level", "info", "Log level")
	flag.Parse()

	level, err := zerolog.ParseLevel(opts.logLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log level %q\n", opts.logLevel)
		os.Exit(2)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly})

	if err := run(opts); err != nil {
		log.Error().Err(err).Msg("netgame failed")
		os.Exit(1)
	}
}

func run(opts options) error {
	file := &config.File{Game: config.Default()}
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		file = loaded
	}
	applyFlags(&file.Game, opts)
	if err := file.Game.Validate(); err != nil {
		return err
	}

	topo, err := file.Topology()
	if err != nil {
		return err
	}

	registry := metrics.NewRegistry()
	var h *hook.HTTPObserver
	if opts.hookURL != "" {
		h = hook.NewHTTPObserver(opts.hookURL)
	}

	var server *http.Server
	var serveErrs <-chan error
	if opts.metricsAddr != "" {
		var ln net.Listener
		server, ln, serveErrs, err = startMetrics(opts.metricsAddr, registry)
		if err != nil {
			return err
		}
		log.Info().Msgf("serving metrics on %s/metrics", ln.Addr())
	}

	if opts.sweep != "" {
		err = runSweep(opts, topo, file.Game, sweepObservers(registry, h))
	} else {
		observers := []engine.Observer{registry}
		if h != nil {
			log.Info().Msgf("pushing rounds of run %s to %s", h.RunID(), opts.hookURL)
			observers = append(observers, h)
		}
		err = runGame(topo, file.Game, observers)
	}
	if err != nil {
		if server != nil {
			server.Close()
		}
		return err
	}

	if server != nil {
		return waitMetrics(server, serveErrs)
	}
	return nil
}

// sweepObservers gives every game of a sweep its own round gauges and, with a
// hook, its own visualizer run.
func sweepObservers(registry *metrics.Registry, h *hook.HTTPObserver) experiments.ObserverFactory {
	return func(config int, seed uint64) []engine.Observer {
		observers := []engine.Observer{registry.ForGame(metrics.GameLabel(config, seed))}
		if h != nil {
			observers = append(observers, h.ForGame(config, seed))
		}
		return observers
	}
}

// applyFlags overrides the file values with the flags given on the command line.
func applyFlags(cfg *config.Game, opts options) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "budget":
			cfg.DefenseBudget = opts.budget
		case "rounds":
			cfg.Rounds = opts.rounds
		case "paths":
			cfg.NumPaths = opts.paths
		case "randomness":
			cfg.RandomnessFactor = opts.randomness
		case "seed":
			cfg.Seed = opts.seed
		}
	})
}

func runGame(topo *game.Topology, cfg config.Game, observers []engine.Observer) error {
	e, err := engine.NewLocalEngine(topo, cfg, engine.WithObservers(observers...), engine.WithMetrics())
	if err != nil {
		return err
	}

	series, runMetric, err := e.Run()
	if err != nil {
		return err
	}
	log.Info().Msgf("%d of %d strikes succeeded in %s", runMetric.SuccessfulStrikes, runMetric.Strikes, runMetric.Duration)

	fmt.Println(report.Edges(topo, e.History()))
	fmt.Println(report.Rounds(e.Rounds()))
	fmt.Println(report.Series(series))
	return nil
}

func runSweep(opts options, topo *game.Topology, base config.Game, observe experiments.ObserverFactory) error {
	seeds := experiments.Seeds(experiments.NumSeeds)

	var dir string
	var err error
	switch opts.sweep {
	case "budget":
		dir, err = experiments.RunBudgetExperiment(opts.out, topo, base, seeds, opts.goroutines, observe)
	case "randomness":
		dir, err = experiments.RunRandomnessExperiment(opts.out, topo, base, seeds, opts.goroutines, observe)
	default:
		return fmt.Errorf("unknown sweep %q", opts.sweep)
	}
	if err != nil {
		return err
	}
	log.Info().Msgf("stored %s experiment in %s", opts.sweep, dir)
	return nil
}

// startMetrics serves /metrics in the background so games can be scraped
// while they run.
func startMetrics(addr string, registry *metrics.Registry) (*http.Server, net.Listener, <-chan error, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to listen for metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", registry.Handler())
	server := &http.Server{Handler: mux}

	errs := make(chan error, 1)
	go func() {
		errs <- server.Serve(ln)
	}()
	return server, ln, errs, nil
}

// waitMetrics keeps serving until interrupted.
func waitMetrics(server *http.Server, errs <-chan error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info().Msg("done playing, interrupt to stop serving metrics")
	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve metrics: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdown)
}
