package metrics

import (
	"fmt"
	"net/http"

	"netgame/game"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry exports game progress as Prometheus metrics. It observes an
// engine round by round.
type Registry struct {
	RoundsTotal       prometheus.Counter
	StrikesTotal      *prometheus.CounterVec
	EdgeAttacksTotal  *prometheus.CounterVec
	RoundProfit       *prometheus.GaugeVec
	RoundLoss         *prometheus.GaugeVec
	TotalProfit       prometheus.Gauge
	TotalLoss         prometheus.Gauge
	DefenseSpendRound prometheus.Histogram

	registry *prometheus.Registry
}

func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		RoundsTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "netgame_rounds_total",
			Help: "Total number of rounds played",
		}),
		StrikesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netgame_strikes_total",
			Help: "Total number of strikes by outcome",
		}, []string{"outcome"}),
		EdgeAttacksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "netgame_edge_attacks_total",
			Help: "Total number of times each edge was targeted",
		}, []string{"edge"}),
		RoundProfit: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netgame_round_attacker_profit",
			Help: "Attacker profit of the latest round per game",
		}, []string{"game"}),
		RoundLoss: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netgame_round_defender_loss",
			Help: "Defender loss of the latest round per game",
		}, []string{"game"}),
		TotalProfit: factory.NewGauge(prometheus.GaugeOpts{
			Name: "netgame_attacker_profit_total",
			Help: "Attacker profit accumulated over completed games",
		}),
		TotalLoss: factory.NewGauge(prometheus.GaugeOpts{
			Name: "netgame_defender_loss_total",
			Help: "Defender loss accumulated over completed games",
		}),
		DefenseSpendRound: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "netgame_defense_spend",
			Help:    "Total defensive spend per round",
			Buckets: []float64{1, 5, 10, 20, 50, 100},
		}),
		registry: reg,
	}
}

// SingleGame labels the per-game gauges when the registry observes a game
// directly.
const SingleGame = "single"

// GameLabel names one game of a sweep.
func GameLabel(config int, seed uint64) string {
	return fmt.Sprintf("c%d-s%d", config, seed)
}

// GameObserver feeds the registry from one game. Games of a sweep share the
// counters and get their own round gauges.
type GameObserver struct {
	r    *Registry
	game string
}

func (r *Registry) ForGame(label string) *GameObserver {
	return &GameObserver{r: r, game: label}
}

func (r *Registry) ObserveRound(t *game.Topology, round game.Round) {
	r.ForGame(SingleGame).ObserveRound(t, round)
}

func (r *Registry) ObserveCompletion(series game.Series) {
	r.ForGame(SingleGame).ObserveCompletion(series)
}

func (g *GameObserver) ObserveRound(_ *game.Topology, round game.Round) {
	r := g.r
	r.RoundsTotal.Inc()
	r.RoundProfit.WithLabelValues(g.game).Set(round.AttackerProfit)
	r.RoundLoss.WithLabelValues(g.game).Set(round.DefenderLoss)
	r.DefenseSpendRound.Observe(round.Allocation.Total())

	for _, strike := range round.Strikes {
		outcome := "blocked"
		if strike.Succeeded {
			outcome = "hit"
		}
		r.StrikesTotal.WithLabelValues(outcome).Inc()
		r.EdgeAttacksTotal.WithLabelValues(strike.Edge.String()).Inc()
	}
}

func (g *GameObserver) ObserveCompletion(series game.Series) {
	for i := range series.AttackerProfits {
		g.r.TotalProfit.Add(series.AttackerProfits[i])
		g.r.TotalLoss.Add(series.DefenderLosses[i])
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
