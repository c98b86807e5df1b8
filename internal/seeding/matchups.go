package seeding

import (
	"fmt"

	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
)

// Pair pairs seed i with seed N-1-i and lays the pairs out in bracket order so
// the top two seeds can only meet in the final. Matchup j belongs in the j-th
// first-round slot.
func Pair(order []competitor.Competitor) ([]Matchup, error) {
	n := len(order)
	if n < 2 || !bracket.IsPowerOfTwo(n) {
		return nil, fmt.Errorf("%w: cannot pair %d entries", bracket.ErrInvalidSize, n)
	}

	pairs := make([]Matchup, n/2)
	for i := range pairs {
		pairs[i] = Matchup{Left: order[i], Right: order[n-1-i]}
	}

	placed := make([]Matchup, 0, len(pairs))
	for _, seed := range seedOrder(len(pairs)) {
		placed = append(placed, pairs[seed-1])
	}
	return placed, nil
}

// seedOrder returns the standard placement of seeds 1..n (n a power of two)
// from top to bottom of a bracket, e.g. 1,8,4,5,2,7,3,6.
func seedOrder(n int) []int {
	order := []int{1}
	for len(order) < n {
		size := 2 * len(order)
		next := make([]int, 0, size)
		for _, s := range order {
			next = append(next, s, size+1-s)
		}
		order = next
	}
	return order
}
