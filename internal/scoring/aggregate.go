// Package scoring reduces the judges' scores for a qualifying lap into a single
// lap score.
package scoring

import "math"

// Aggregate reduces the per-judge scores of one lap. A lap with fewer scores
// than judgeCount is incomplete: it scores 0 and complete is false. Penalty is
// signed and is added after the formula is applied.
func Aggregate(scores []float64, judgeCount int, formula Formula, penalty float64) (score float64, complete bool) {
	if judgeCount <= 0 || len(scores) < judgeCount {
		return 0, false
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}

	switch formula {
	case Cumulative:
		return sum + penalty, true
	default:
		// Rounded up so a fractional average never costs a driver a point.
		return math.Ceil(sum/float64(judgeCount)) + penalty, true
	}
}
