// Package battle resolves head-to-head battles from judge votes and moves
// winners and losers through a live bracket.
package battle

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/competitor"
)

// Bracket is the live state of every battle of one tournament.
type Bracket struct {
	byID    map[int64]*Battle
	ordered []*Battle
}

// NewBracket indexes battles and orders them by position.
func NewBracket(battles []*Battle) *Bracket {
	b := &Bracket{byID: make(map[int64]*Battle, len(battles))}
	for _, bt := range battles {
		b.byID[bt.ID] = bt
		b.ordered = append(b.ordered, bt)
	}
	sort.SliceStable(b.ordered, func(i, j int) bool {
		return b.ordered[i].Position < b.ordered[j].Position
	})
	return b
}

// Battles returns the battles in play order.
func (b *Bracket) Battles() []*Battle {
	return b.ordered
}

// Get returns the battle with the given id.
func (b *Bracket) Get(id int64) (*Battle, bool) {
	bt, ok := b.byID[id]
	return bt, ok
}

// Last returns the battle played last, or nil for an empty bracket.
func (b *Bracket) Last() *Battle {
	if len(b.ordered) == 0 {
		return nil
	}
	return b.ordered[len(b.ordered)-1]
}

// Complete reports whether every battle has a winner.
func (b *Bracket) Complete() bool {
	if len(b.ordered) == 0 {
		return false
	}
	for _, bt := range b.ordered {
		if bt.Winner == nil {
			return false
		}
	}
	return true
}

// Next returns the first battle in play order that has both drivers and no
// winner yet, or nil when nothing can be judged.
func (b *Bracket) Next() *Battle {
	for _, bt := range b.ordered {
		if bt.State() == StateAwaiting {
			return bt
		}
	}
	return nil
}

// Decide records winner for battle id, moves both drivers on and auto-advances
// any battle that ends up facing a bye. It returns every battle it changed, in
// play order.
func (b *Bracket) Decide(id int64, winner competitor.Competitor) ([]*Battle, error) {
	bt, ok := b.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownBattle, id)
	}
	switch bt.State() {
	case StateDecided:
		return nil, fmt.Errorf("%w: %d", ErrAlreadyDecided, id)
	case StatePending:
		return nil, fmt.Errorf("%w: %d", ErrNotReady, id)
	}
	if !bt.Has(winner) {
		return nil, fmt.Errorf("%w: battle %d", ErrNotInBattle, id)
	}

	changed := make(map[int64]*Battle)
	if err := b.resolve(bt, winner, changed); err != nil {
		return nil, err
	}
	return b.sorted(changed), nil
}

// Settle auto-advances every battle that already faces a bye, as happens
// right after seeding. It returns the battles it changed, in play order.
func (b *Bracket) Settle() ([]*Battle, error) {
	changed := make(map[int64]*Battle)
	for _, bt := range b.ordered {
		if w := byeWinner(bt); w != nil {
			if err := b.resolve(bt, w, changed); err != nil {
				return nil, err
			}
		}
	}
	return b.sorted(changed), nil
}

// resolve writes the winner, places both drivers into their successors and
// keeps resolving successors that end up facing a bye.
func (b *Bracket) resolve(first *Battle, winner competitor.Competitor, changed map[int64]*Battle) error {
	type step struct {
		battle *Battle
		winner competitor.Competitor
	}
	queue := []step{{first, winner}}

	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]

		bt := s.battle
		bt.Winner = s.winner
		changed[bt.ID] = bt
		if competitor.IsBye(bt.Left) || competitor.IsBye(bt.Right) {
			log.Debug("Auto-advanced bye battle", "battle_id", bt.ID, "winner", s.winner)
		}

		for _, move := range []struct {
			next int64
			who  competitor.Competitor
		}{{bt.WinnerNext, s.winner}, {bt.LoserNext, bt.Loser()}} {
			if move.next == NoBattle {
				continue
			}
			next, ok := b.byID[move.next]
			if !ok {
				return fmt.Errorf("%w: %d (successor of %d)", ErrUnknownBattle, move.next, bt.ID)
			}
			if err := place(next, move.who); err != nil {
				return err
			}
			changed[next.ID] = next
			if w := byeWinner(next); w != nil {
				queue = append(queue, step{next, w})
			}
		}
	}
	return nil
}

func place(bt *Battle, c competitor.Competitor) error {
	switch {
	case bt.Left == nil:
		bt.Left = c
	case bt.Right == nil:
		bt.Right = c
	default:
		return fmt.Errorf("%w: %d", ErrSlotFull, bt.ID)
	}
	return nil
}

// byeWinner returns who wins an undecided, fully populated battle against a
// bye without a vote, or nil when the battle needs judging. Bye against bye
// goes to the left bye.
func byeWinner(bt *Battle) competitor.Competitor {
	if bt.State() != StateAwaiting {
		return nil
	}
	leftBye, rightBye := competitor.IsBye(bt.Left), competitor.IsBye(bt.Right)
	switch {
	case leftBye && rightBye:
		return bt.Left
	case leftBye:
		return bt.Right
	case rightBye:
		return bt.Left
	}
	return nil
}

func (b *Bracket) sorted(changed map[int64]*Battle) []*Battle {
	out := make([]*Battle, 0, len(changed))
	for _, bt := range changed {
		out = append(out, bt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}
