package game

// History counts how many times each edge has been targeted across all
// rounds played so far. Counters only ever grow.
type History struct {
	counts map[EdgeKey]int
}

func NewHistory() *History {
	return &History{counts: make(map[EdgeKey]int)}
}

// Count returns how often key has been targeted, 0 if never. Safe on a nil
// History.
func (h *History) Count(key EdgeKey) int {
	if h == nil {
		return 0
	}
	return h.counts[key]
}

// Record increments the counter of every target by one.
func (h *History) Record(targets []EdgeKey) {
	for _, key := range targets {
		h.counts[key]++
	}
}

// Snapshot returns a copy of the counters.
func (h *History) Snapshot() map[EdgeKey]int {
	snapshot := make(map[EdgeKey]int, len(h.counts))
	for key, count := range h.counts {
		snapshot[key] = count
	}
	return snapshot
}
