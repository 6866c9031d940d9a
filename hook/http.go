package hook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"netgame/game"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultURL is where the visualizer web app listens.
const DefaultURL = "http://localhost:5000/visualhook"

const (
	KindRound   = "round"
	KindSummary = "summary"
)

// EdgeState is an edge as the visualizer draws it in a given round.
type EdgeState struct {
	Key         game.EdgeKey `json:"key"`
	Value       float64      `json:"value"`
	AttackCost  float64      `json:"attackCost"`
	DefenseCost float64      `json:"defenseCost"`
	Spent       float64      `json:"spent"`
	Targeted    bool         `json:"targeted"`
}

// GameID locates a game within a sweep.
type GameID struct {
	Config int    `json:"config"`
	Seed   uint64 `json:"seed"`
}

type RoundUpdate struct {
	Kind  string      `json:"kind"`
	RunID string      `json:"runId"`
	Game  *GameID     `json:"game,omitempty"`
	Edges []EdgeState `json:"edges"`
	game.Round
}

type Summary struct {
	Kind        string  `json:"kind"`
	RunID       string  `json:"runId"`
	Game        *GameID `json:"game,omitempty"`
	TotalProfit float64 `json:"totalProfit"`
	TotalLoss   float64 `json:"totalLoss"`
	game.Series
}

type Option func(h *HTTPObserver)

func WithClient(client *http.Client) Option {
	return func(h *HTTPObserver) {
		if client != nil {
			h.client = client
		}
	}
}

// WithRunID tags every payload with id instead of a random one.
func WithRunID(id string) Option {
	return func(h *HTTPObserver) {
		h.runID = id
	}
}

// HTTPObserver pushes every settled round and the final series of one game
// to a visualizer as JSON. A failing push is logged and the game goes on.
type HTTPObserver struct {
	url      string
	client   *http.Client
	runID    string
	game     *GameID
	failures *atomic.Int64
}

func NewHTTPObserver(url string, options ...Option) *HTTPObserver {
	h := &HTTPObserver{
		url:      url,
		client:   &http.Client{Timeout: 2 * time.Second},
		runID:    uuid.NewString(),
		failures: new(atomic.Int64),
	}
	for _, option := range options {
		option(h)
	}
	return h
}

// ForGame returns an observer for one game of a sweep. It has its own run ID,
// tags its payloads with config and seed, and shares the client and the
// failure count with h.
func (h *HTTPObserver) ForGame(config int, seed uint64) *HTTPObserver {
	return &HTTPObserver{
		url:      h.url,
		client:   h.client,
		runID:    uuid.NewString(),
		game:     &GameID{Config: config, Seed: seed},
		failures: h.failures,
	}
}

func (h *HTTPObserver) RunID() string {
	return h.runID
}

// Failures returns the number of pushes that did not reach the visualizer.
func (h *HTTPObserver) Failures() int {
	return int(h.failures.Load())
}

func (h *HTTPObserver) ObserveRound(t *game.Topology, round game.Round) {
	targeted := make(map[game.EdgeKey]bool, len(round.Targets))
	for _, target := range round.Targets {
		targeted[target] = true
	}

	edges := []EdgeState{}
	for _, e := range t.Edges() {
		edges = append(edges, EdgeState{
			Key:         e.Key(),
			Value:       e.Value,
			AttackCost:  e.AttackCost,
			DefenseCost: e.DefenseCost,
			Spent:       round.Allocation.Spent(e.Key()),
			Targeted:    targeted[e.Key()],
		})
	}

	h.push(RoundUpdate{Kind: KindRound, RunID: h.runID, Game: h.game, Edges: edges, Round: round})
}

func (h *HTTPObserver) ObserveCompletion(series game.Series) {
	summary := Summary{Kind: KindSummary, RunID: h.runID, Game: h.game, Series: series}
	for i := range series.AttackerProfits {
		summary.TotalProfit += series.AttackerProfits[i]
		summary.TotalLoss += series.DefenderLosses[i]
	}
	h.push(summary)
}

func (h *HTTPObserver) push(payload any) {
	if err := h.post(payload); err != nil {
		h.failures.Add(1)
		log.Warn().Err(err).Str("url", h.url).Msg("failed to push to visual hook")
	}
}

func (h *HTTPObserver) post(payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	resp, err := h.client.Post(h.url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		out, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("visualizer returned status %d: %s", resp.StatusCode, out)
	}
	return nil
}
