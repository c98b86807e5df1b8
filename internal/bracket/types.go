package bracket

import "errors"

// Format is the competition format of a tournament.
type Format string

const (
	Standard          Format = "STANDARD"
	DoubleElimination Format = "DOUBLE_ELIMINATION"
	Wildcard          Format = "WILDCARD"
	BattleTree        Format = "BATTLE_TREE"
	DriftWars         Format = "DRIFT_WARS"
)

// Valid reports whether f is a known format.
func (f Format) Valid() bool {
	switch f {
	case Standard, DoubleElimination, Wildcard, BattleTree, DriftWars:
		return true
	}
	return false
}

// Side is the half of a bracket a slot belongs to. Lower only exists in double
// elimination.
type Side string

const (
	Upper Side = "UPPER"
	Lower Side = "LOWER"
)

// Reserved round numbers for the finals.
const (
	RoundUpperFinal = 1000
	RoundLowerFinal = 1001
	RoundGrandFinal = 1002
)

// None marks a missing successor.
const None = -1

var (
	// ErrInvalidSize is returned for bracket sizes that are not a power of two
	// or are too small for the format.
	ErrInvalidSize = errors.New("invalid bracket size")

	// ErrBrokenTopology is returned by Validate when a slot is wired
	// inconsistently.
	ErrBrokenTopology = errors.New("broken bracket topology")
)

// Slot is one battle of the bracket. Successors are indexes into
// Topology.Slots, or None.
type Slot struct {
	Round      int  `json:"round"`
	Side       Side `json:"side"`
	WinnerNext int  `json:"winner_next"`
	LoserNext  int  `json:"loser_next"`
}

// Topology is the full slot graph of a bracket in play order.
type Topology struct {
	Size        int    `json:"size"`
	Format      Format `json:"format"`
	TotalRounds int    `json:"total_rounds"`
	Slots       []Slot `json:"slots"`
}
