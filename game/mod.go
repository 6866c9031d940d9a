package game

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// NodeID identifies a node of the network. The engine treats it as opaque.
type NodeID int

// EdgeKey identifies an undirected edge. Use NewEdgeKey so that (u, v) and
// (v, u) map to the same key.
type EdgeKey struct {
	A NodeID
	B NodeID
}

func NewEdgeKey(u, v NodeID) EdgeKey {
	if v < u {
		u, v = v, u
	}
	return EdgeKey{A: u, B: v}
}

func (k EdgeKey) String() string {
	return fmt.Sprintf("%d-%d", k.A, k.B)
}

// MarshalText encodes the key as "a-b" so keys can be used in JSON objects.
func (k EdgeKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *EdgeKey) UnmarshalText(text []byte) error {
	s := string(text)
	// Skip a leading sign so negative IDs survive the round trip.
	i := strings.Index(s[min(1, len(s)):], "-") + 1
	if i <= 0 {
		return fmt.Errorf("malformed edge key %q", text)
	}
	u, v := s[:i], s[i+1:]
	a, err := strconv.Atoi(u)
	if err != nil {
		return fmt.Errorf("malformed edge key %q: %w", text, err)
	}
	b, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("malformed edge key %q: %w", text, err)
	}
	*k = NewEdgeKey(NodeID(a), NodeID(b))
	return nil
}

// Allocation maps an edge to the defensive spend placed on it for a single
// round. Edges without spend are absent.
type Allocation map[EdgeKey]float64

// Spent returns the spend on key, 0 if absent.
func (a Allocation) Spent(key EdgeKey) float64 {
	return a[key]
}

// Total returns the sum of all spends.
func (a Allocation) Total() float64 {
	total := 0.0
	for _, spend := range a {
		total += spend
	}
	return total
}

// String lists the spends ordered by edge key, e.g. "1-2:2 4-6:6".
func (a Allocation) String() string {
	keys := make([]EdgeKey, 0, len(a))
	for key := range a {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(x, y EdgeKey) int {
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	})

	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key.String() + ":" + strconv.FormatFloat(a[key], 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}

// JoinKeys formats keys space separated, keeping their order.
func JoinKeys(keys []EdgeKey) string {
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = key.String()
	}
	return strings.Join(parts, " ")
}

// Strike is the outcome of attacking a single edge in a round.
type Strike struct {
	Edge      EdgeKey `json:"edge"`
	Spent     float64 `json:"spent"`     // Defensive spend on the edge
	Succeeded bool    `json:"succeeded"` // Spend was below the edge's defense cost
	Profit    float64 `json:"profit"`    // Attacker profit contribution, may be negative
}

// Payoff is the settled result of one round.
type Payoff struct {
	AttackerProfit float64  `json:"attackerProfit"`
	DefenderLoss   float64  `json:"defenderLoss"`
	Strikes        []Strike `json:"strikes"`
}

// Round records everything that happened in one round of the game.
type Round struct {
	Number     int        `json:"number"`
	Allocation Allocation `json:"allocation"`
	Targets    []EdgeKey  `json:"targets"`
	Payoff
}

// Series holds the per-round payoffs of a game, indexed by round-1.
type Series struct {
	AttackerProfits []float64 `json:"attackerProfits"`
	DefenderLosses  []float64 `json:"defenderLosses"`
}

func (s *Series) Append(p Payoff) {
	s.AttackerProfits = append(s.AttackerProfits, p.AttackerProfit)
	s.DefenderLosses = append(s.DefenderLosses, p.DefenderLoss)
}

func (s Series) Len() int {
	return len(s.AttackerProfits)
}
