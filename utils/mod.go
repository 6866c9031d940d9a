package utils

import "slices"

// RankDesc returns a copy of items ordered by descending score. Items with
// equal scores keep their relative order.
func RankDesc[T any](items []T, score func(T) float64) []T {
	type scored struct {
		item  T
		score float64
	}
	ranked := make([]scored, len(items))
	for i, item := range items {
		ranked[i] = scored{item: item, score: score(item)}
	}
	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		}
		return 0
	})

	out := make([]T, len(ranked))
	for i, r := range ranked {
		out[i] = r.item
	}
	return out
}
