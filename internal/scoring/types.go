package scoring

// Formula selects how per-judge lap scores are reduced to one lap score.
type Formula string

const (
	// Cumulative sums judge scores.
	Cumulative Formula = "CUMULATIVE"
	// Averaged divides the sum by the judge count and rounds up.
	Averaged Formula = "AVERAGED"
)

// Valid reports whether f is a known formula.
func (f Formula) Valid() bool {
	return f == Cumulative || f == Averaged
}
