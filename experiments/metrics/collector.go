package metrics

import (
	"sync/atomic"
	"time"

	"netgame/game"
)

type RunMetric struct {
	Rounds            int
	Strikes           int
	SuccessfulStrikes int
	TotalProfit       float64 // Attacker profit over all rounds
	TotalLoss         float64 // Defender loss over all rounds
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

type Collector interface {
	Start()
	AddRound(payoff game.Payoff)
	Complete() RunMetric
}

type collector struct {
	startTime         time.Time
	rounds            atomic.Int32
	strikes           atomic.Int32
	successfulStrikes atomic.Int32
	totalProfit       float64
	totalLoss         float64
}

func NewCollector() Collector {
	return &collector{}
}

func (m *collector) Start() {
	m.startTime = time.Now()
}

func (m *collector) AddRound(payoff game.Payoff) {
	m.rounds.Add(1)
	for _, strike := range payoff.Strikes {
		m.strikes.Add(1)
		if strike.Succeeded {
			m.successfulStrikes.Add(1)
		}
	}
	m.totalProfit += payoff.AttackerProfit
	m.totalLoss += payoff.DefenderLoss
}

func (m *collector) Complete() RunMetric {
	end := time.Now()
	return RunMetric{
		Rounds:            int(m.rounds.Load()),
		Strikes:           int(m.strikes.Load()),
		SuccessfulStrikes: int(m.successfulStrikes.Load()),
		TotalProfit:       m.totalProfit,
		TotalLoss:         m.totalLoss,
		StartTime:         m.startTime,
		EndTime:           end,
		Duration:          end.Sub(m.startTime),
	}
}

type dummyCollector struct{}

func NewDummyCollector() Collector {
	return &dummyCollector{}
}

func (m *dummyCollector) Start()               {}
func (m *dummyCollector) AddRound(game.Payoff) {}
func (m *dummyCollector) Complete() RunMetric  { return RunMetric{} }
