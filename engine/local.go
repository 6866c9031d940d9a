package engine

import (
	"fmt"

	"netgame/agent"
	"netgame/config"
	"netgame/experiments/metrics"
	"netgame/game"

	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// budgetTolerance absorbs float rounding when summing an allocation.
const budgetTolerance = 1e-9

var _ Engine = (*LocalEngine)(nil)

type Option func(e *LocalEngine)

// WithSeed seeds the engine's random source, overriding the config seed.
func WithSeed(seed uint64) Option {
	return func(e *LocalEngine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand replaces the engine's random source.
func WithRand(rng agent.Rand) Option {
	return func(e *LocalEngine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

func WithDefender(defender agent.Defender) Option {
	return func(e *LocalEngine) {
		if defender != nil {
			e.defender = defender
		}
	}
}

func WithAttacker(attacker agent.Attacker) Option {
	return func(e *LocalEngine) {
		if attacker != nil {
			e.attacker = attacker
		}
	}
}

func WithRules(rules game.Rules) Option {
	return func(e *LocalEngine) {
		if rules != nil {
			e.rules = rules
		}
	}
}

func WithObservers(observers ...Observer) Option {
	return func(e *LocalEngine) {
		e.observers = append(e.observers, observers...)
	}
}

func WithMetrics() Option {
	return func(e *LocalEngine) {
		e.metrics = metrics.NewCollector()
	}
}

// LocalEngine plays a game round by round in the calling goroutine. It is
// not safe for concurrent use.
type LocalEngine struct {
	topology *game.Topology
	cfg      config.Game

	defender  agent.Defender
	attacker  agent.Attacker
	rules     game.Rules
	rng       agent.Rand
	observers []Observer
	metrics   metrics.Collector

	history *game.History
	rounds  []game.Round
	series  game.Series
	err     error
}

// NewLocalEngine validates the topology and the config and prepares a game on
// a copy of t, so later changes to t do not reach the game. Nothing is played
// until Step or Run is called.
func NewLocalEngine(t *game.Topology, cfg config.Game, options ...Option) (*LocalEngine, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &LocalEngine{ // Default values
		topology: t.Clone(),
		cfg:      cfg,
		defender: agent.NewGreedyDefender(),
		attacker: agent.NewDiverseAttacker(cfg.NumPaths, cfg.RandomnessFactor),
		rules:    game.NewStandardRules(),
		rng:      rand.New(rand.NewSource(cfg.Seed)),
		metrics:  metrics.NewDummyCollector(),
		history:  game.NewHistory(),
	}
	for _, option := range options {
		option(e)
	}
	return e, nil
}

// Run plays all remaining rounds. Any failing round aborts the game and no
// results are returned.
func (e *LocalEngine) Run() (game.Series, metrics.RunMetric, error) {
	log.Info().Msgf("starting game of %d rounds on %d edges", e.cfg.Rounds, e.topology.Len())

	for !e.Done() {
		if _, err := e.Step(); err != nil {
			return game.Series{}, metrics.RunMetric{}, err
		}
	}
	runMetric := e.metrics.Complete()

	series := e.Series()
	for _, observer := range e.observers {
		observer.ObserveCompletion(series)
	}

	log.Info().Msgf("completed game of %d rounds", series.Len())
	return series, runMetric, nil
}

// Step plays the next round: allocate, select, record history, settle.
func (e *LocalEngine) Step() (game.Round, error) {
	if e.err != nil {
		return game.Round{}, e.err
	}
	if e.Done() {
		return game.Round{}, ErrGameOver
	}

	number := len(e.rounds) + 1
	if number == 1 {
		e.metrics.Start()
	}

	allocation := e.defender.Allocate(e.topology, e.cfg.DefenseBudget, e.history)
	if total := allocation.Total(); total > e.cfg.DefenseBudget+budgetTolerance {
		e.err = fmt.Errorf("round %d: defender spent %v over budget %v", number, total, e.cfg.DefenseBudget)
		return game.Round{}, e.err
	}

	targets := e.attacker.SelectTargets(e.topology, allocation, e.rng)
	e.history.Record(targets)

	payoff, err := e.rules.Settle(e.topology, targets, allocation)
	if err != nil {
		e.err = fmt.Errorf("round %d: %w", number, err)
		return game.Round{}, e.err
	}

	round := game.Round{
		Number:     number,
		Allocation: allocation,
		Targets:    targets,
		Payoff:     payoff,
	}
	e.rounds = append(e.rounds, round)
	e.series.Append(payoff)
	e.metrics.AddRound(payoff)

	logRound(round)
	for _, observer := range e.observers {
		observer.ObserveRound(e.topology, round)
	}
	return round, nil
}

// Topology returns a copy of the network the game is played on.
func (e *LocalEngine) Topology() *game.Topology {
	return e.topology.Clone()
}

// Config returns the game parameters.
func (e *LocalEngine) Config() config.Game {
	return e.cfg
}

// Done reports whether all rounds were played.
func (e *LocalEngine) Done() bool {
	return len(e.rounds) >= e.cfg.Rounds
}

// History returns a copy of the attack counters so far.
func (e *LocalEngine) History() map[game.EdgeKey]int {
	return e.history.Snapshot()
}

// Rounds returns the rounds played so far.
func (e *LocalEngine) Rounds() []game.Round {
	rounds := make([]game.Round, len(e.rounds))
	copy(rounds, e.rounds)
	return rounds
}

// Series returns the payoffs of the rounds played so far.
func (e *LocalEngine) Series() game.Series {
	return game.Series{
		AttackerProfits: append([]float64(nil), e.series.AttackerProfits...),
		DefenderLosses:  append([]float64(nil), e.series.DefenderLosses...),
	}
}

func logRound(round game.Round) {
	log.Info().
		Int("round", round.Number).
		Stringer("allocation", round.Allocation).
		Str("targets", game.JoinKeys(round.Targets)).
		Float64("attackerProfit", round.AttackerProfit).
		Float64("defenderLoss", round.DefenderLoss).
		Msgf("round %d settled", round.Number)

	for _, strike := range round.Strikes {
		if strike.Profit < 0 {
			log.Warn().
				Int("round", round.Number).
				Stringer("edge", strike.Edge).
				Float64("profit", strike.Profit).
				Msg("strike yields negative profit")
		}
	}
}
