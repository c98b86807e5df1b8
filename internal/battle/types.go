package battle

import (
	"errors"

	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
)

// NoBattle marks a missing successor.
const NoBattle int64 = 0

var (
	ErrUnknownBattle  = errors.New("unknown battle")
	ErrAlreadyDecided = errors.New("battle already decided")
	ErrNotReady       = errors.New("battle is missing a driver")
	ErrNotInBattle    = errors.New("competitor is not in this battle")
	ErrSlotFull       = errors.New("battle has no free side")
)

// Battle is one slot of a live bracket.
type Battle struct {
	ID         int64                 `json:"id"`
	Position   int                   `json:"position"`
	Round      int                   `json:"round"`
	Side       bracket.Side          `json:"side"`
	Left       competitor.Competitor `json:"left,omitempty"`
	Right      competitor.Competitor `json:"right,omitempty"`
	Winner     competitor.Competitor `json:"winner,omitempty"`
	WinnerNext int64                 `json:"winner_next,omitempty"`
	LoserNext  int64                 `json:"loser_next,omitempty"`
}

// State is where a battle is in its lifecycle.
type State string

const (
	StatePending  State = "PENDING"
	StateAwaiting State = "AWAITING_VOTES"
	StateDecided  State = "DECIDED"
)

// State reports the lifecycle state of b.
func (b *Battle) State() State {
	switch {
	case b.Winner != nil:
		return StateDecided
	case b.Left == nil || b.Right == nil:
		return StatePending
	default:
		return StateAwaiting
	}
}

// Loser returns the side that did not win, or nil while undecided.
func (b *Battle) Loser() competitor.Competitor {
	switch {
	case b.Winner == nil:
		return nil
	case competitor.Same(b.Winner, b.Left):
		return b.Right
	default:
		return b.Left
	}
}

// Has reports whether c is on either side of b.
func (b *Battle) Has(c competitor.Competitor) bool {
	if c == nil {
		return false
	}
	return (b.Left != nil && competitor.Same(b.Left, c)) || (b.Right != nil && competitor.Same(b.Right, c))
}

// Vote is one judge's call on a battle. WinnerEntry is 0 while the judge has
// not picked a side.
type Vote struct {
	JudgeID     int64 `json:"judge_id"`
	WinnerEntry int64 `json:"winner_entry,omitempty"`
	OMT         bool  `json:"omt"`
}

// Verdict is the result of tallying the votes of a battle.
type Verdict string

const (
	Undecided   Verdict = "UNDECIDED"
	Decided     Verdict = "DECIDED"
	OneMoreTime Verdict = "ONE_MORE_TIME"
)

// Outcome is a tallied battle.
type Outcome struct {
	Verdict   Verdict               `json:"verdict"`
	Winner    competitor.Competitor `json:"winner,omitempty"`
	Left      int                   `json:"left"`
	Right     int                   `json:"right"`
	OMT       int                   `json:"omt"`
	Cast      int                   `json:"cast"`
	Threshold int                   `json:"threshold"`
}
