// Package bracket builds the slot graph of an elimination bracket: which battle
// a winner moves on to and where a loser drops.
package bracket

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
)

type stage int

const (
	stageUpper stage = iota
	stageConsolation
	stageDropIn
	stageConsolidation
)

// workItem asks for one level of slots whose winners feed targets.
type workItem struct {
	side    Side
	stage   stage
	round   int // upper round the level belongs to
	targets []int
}

type node struct {
	Slot
	major, minor int
	seq          int
}

type builder struct {
	nodes []*node
}

func (b *builder) add(round int, side Side, major, minor int) int {
	b.nodes = append(b.nodes, &node{
		Slot:  Slot{Round: round, Side: side, WinnerNext: None, LoserNext: None},
		major: major,
		minor: minor,
		seq:   len(b.nodes),
	})
	return len(b.nodes) - 1
}

// Build returns the topology of a bracket of the given size. Size must be a
// power of two >= 2, and >= 4 for double elimination.
func Build(size int, format Format) (*Topology, error) {
	if !IsPowerOfTwo(size) || size < 2 {
		return nil, fmt.Errorf("%w: %d is not a power of two >= 2", ErrInvalidSize, size)
	}
	if format == DoubleElimination && size < 4 {
		return nil, fmt.Errorf("%w: double elimination needs at least 4 slots, got %d", ErrInvalidSize, size)
	}

	totalRounds := Log2(size) - 1
	finals := totalRounds + 1
	b := &builder{}

	var playOff = None
	if format == Standard && totalRounds >= 1 {
		playOff = b.add(totalRounds+1, Upper, finals, 0)
	}
	upperFinal := b.add(RoundUpperFinal, Upper, finals, 1)

	var queue []workItem
	if format == DoubleElimination {
		lowerFinal := b.add(RoundLowerFinal, Lower, finals, 2)
		grandFinal := b.add(RoundGrandFinal, Upper, finals, 3)
		b.nodes[upperFinal].WinnerNext = grandFinal
		b.nodes[upperFinal].LoserNext = lowerFinal
		b.nodes[lowerFinal].WinnerNext = grandFinal

		first := workItem{side: Lower, stage: stageConsolidation, round: totalRounds, targets: []int{lowerFinal}}
		if totalRounds == 1 {
			first.stage = stageConsolation
		}
		queue = append(queue, first)
	}
	if totalRounds >= 1 {
		queue = append(queue, workItem{side: Upper, stage: stageUpper, round: totalRounds, targets: []int{upperFinal}})
	}

	upperLevels := make(map[int][]int)
	lowerEntry := make(map[int][]int)

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		switch item.stage {
		case stageUpper:
			level := b.level(item.targets, 2, item.round, Upper, item.round, 0)
			upperLevels[item.round] = level
			if item.round > 1 {
				queue = append(queue, workItem{side: Upper, stage: stageUpper, round: item.round - 1, targets: level})
			}

		case stageConsolidation:
			level := b.level(item.targets, 1, 2*(item.round-1)+1, Lower, item.round, 2)
			queue = append(queue, workItem{side: Lower, stage: stageDropIn, round: item.round, targets: level})

		case stageDropIn:
			level := b.level(item.targets, 2, 2*(item.round-1), Lower, item.round, 1)
			lowerEntry[item.round] = level
			next := workItem{side: Lower, stage: stageConsolidation, round: item.round - 1, targets: level}
			if item.round-1 == 1 {
				next.stage = stageConsolation
			}
			queue = append(queue, next)

		case stageConsolation:
			level := b.level(item.targets, 1, 1, Lower, 1, 1)
			lowerEntry[1] = level
		}
	}

	// Loser paths.
	for round, level := range upperLevels {
		for i, idx := range level {
			switch {
			case format == DoubleElimination && round == 1:
				b.nodes[idx].LoserNext = lowerEntry[1][i/2]
			case format == DoubleElimination:
				entry := lowerEntry[round]
				b.nodes[idx].LoserNext = entry[len(entry)-1-i]
			case playOff != None && round == totalRounds:
				b.nodes[idx].LoserNext = playOff
			}
		}
	}

	t := b.topology(size, format, totalRounds)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	log.Debug("Built bracket topology", "size", size, "format", format, "slots", len(t.Slots))
	return t, nil
}

// level creates perTarget slots for every target, left to right, each feeding
// its target with its winner.
func (b *builder) level(targets []int, perTarget, round int, side Side, major, minor int) []int {
	level := make([]int, 0, len(targets)*perTarget)
	for _, target := range targets {
		for i := 0; i < perTarget; i++ {
			idx := b.add(round, side, major, minor)
			b.nodes[idx].WinnerNext = target
			level = append(level, idx)
		}
	}
	return level
}

// topology sorts the nodes into play order and rewrites successor indexes.
func (b *builder) topology(size int, format Format, totalRounds int) *Topology {
	ordered := make([]*node, len(b.nodes))
	copy(ordered, b.nodes)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].major != ordered[j].major {
			return ordered[i].major < ordered[j].major
		}
		if ordered[i].minor != ordered[j].minor {
			return ordered[i].minor < ordered[j].minor
		}
		return ordered[i].seq < ordered[j].seq
	})

	remap := make(map[int]int, len(ordered))
	for pos, n := range ordered {
		remap[n.seq] = pos
	}
	slots := make([]Slot, len(ordered))
	for pos, n := range ordered {
		s := n.Slot
		if s.WinnerNext != None {
			s.WinnerNext = remap[s.WinnerNext]
		}
		if s.LoserNext != None {
			s.LoserNext = remap[s.LoserNext]
		}
		slots[pos] = s
	}
	return &Topology{Size: size, Format: format, TotalRounds: totalRounds, Slots: slots}
}

// FirstRound returns the indexes of the slots seeding fills, in bracket order.
// Adjacent pairs feed the same next-round slot.
func (t *Topology) FirstRound() []int {
	var first []int
	for i, s := range t.Slots {
		if s.Side != Upper {
			continue
		}
		if (t.TotalRounds == 0 && s.Round == RoundUpperFinal) || (t.TotalRounds > 0 && s.Round == 1) {
			first = append(first, i)
		}
	}
	return first
}

// Find returns the index of the first slot on round, or None.
func (t *Topology) Find(round int) int {
	for i, s := range t.Slots {
		if s.Round == round {
			return i
		}
	}
	return None
}

// Validate checks the structure of the graph: every slot except
// the terminal ones has a winner path, double-elimination upper slots have a
// loser path, and every slot outside the first round is fed exactly twice.
func (t *Topology) Validate() error {
	terminal := func(s Slot) bool {
		switch {
		case t.Format == DoubleElimination:
			return s.Round == RoundGrandFinal
		case s.Round == RoundUpperFinal:
			return true
		default:
			return t.Format == Standard && s.Round == t.TotalRounds+1 && t.TotalRounds >= 1
		}
	}

	feeds := make([]int, len(t.Slots))
	for i, s := range t.Slots {
		if s.WinnerNext == None && !terminal(s) {
			return fmt.Errorf("%w: slot %d (round %d %s) has no winner path", ErrBrokenTopology, i, s.Round, s.Side)
		}
		if s.WinnerNext != None && terminal(s) {
			return fmt.Errorf("%w: terminal slot %d has a winner path", ErrBrokenTopology, i)
		}
		if t.Format == DoubleElimination {
			if s.Side == Upper && s.Round != RoundGrandFinal && s.LoserNext == None {
				return fmt.Errorf("%w: upper slot %d (round %d) has no lower path", ErrBrokenTopology, i, s.Round)
			}
			if s.Side == Lower && s.LoserNext != None {
				return fmt.Errorf("%w: lower slot %d (round %d) has a loser path", ErrBrokenTopology, i, s.Round)
			}
		}
		for _, next := range []int{s.WinnerNext, s.LoserNext} {
			if next == None {
				continue
			}
			if next <= i || next >= len(t.Slots) {
				return fmt.Errorf("%w: slot %d feeds slot %d out of play order", ErrBrokenTopology, i, next)
			}
			feeds[next]++
		}
	}

	first := make(map[int]bool)
	for _, i := range t.FirstRound() {
		first[i] = true
	}
	for i, n := range feeds {
		want := 2
		if first[i] {
			want = 0
		}
		if n != want {
			return fmt.Errorf("%w: slot %d is fed %d times, want %d", ErrBrokenTopology, i, n, want)
		}
	}
	return nil
}
