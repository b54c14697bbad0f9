package report

import "slices"

// Ranked is an item with its score and 1-based rank.
type Ranked[T any] struct {
	Rank  int
	Item  T
	Score float64
}

// TopN scores every item, sorts by descending score and keeps the first n.
// Items with equal scores keep their input order. n <= 0 keeps all items.
// The input slice is not modified and the result is never nil.
func TopN[T any](items []T, score func(T) float64, n int) []Ranked[T] {
	ranked := make([]Ranked[T], len(items))
	for i, item := range items {
		ranked[i] = Ranked[T]{Item: item, Score: score(item)}
	}

	slices.SortStableFunc(ranked, func(a, b Ranked[T]) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
