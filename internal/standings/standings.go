// Package standings derives final finishing positions from a bracket, or from
// qualifying when a tournament runs without battles.
package standings

import (
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/battle"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
	"github.com/mauv0809/drift-bracket/internal/seeding"
)

// Entry is a real driver of the tournament.
type Entry struct {
	Driver             competitor.Driver
	QualifyingPosition *int
	// Laps are the aggregated lap scores, indexed by round - 1.
	Laps []float64
}

// Input is everything Derive looks at.
type Input struct {
	Format            bracket.Format
	BattlesEnabled    bool
	QualifyingEnabled bool
	Entries           []Entry
	Battles           []*battle.Battle
}

// Standing is one row of the final standings.
type Standing struct {
	Position           int               `json:"position"`
	Driver             competitor.Driver `json:"driver"`
	Played             int               `json:"played"`
	Won                int               `json:"won"`
	QualifyingPosition *int              `json:"qualifying_position,omitempty"`
	// EliminatedRound is 0 for a driver never knocked out.
	EliminatedRound int          `json:"eliminated_round,omitempty"`
	EliminatedSide  bracket.Side `json:"eliminated_side,omitempty"`
}

// Derive returns the finishing order of every entry. It is a pure function of
// its input, so deriving twice yields the same positions.
func Derive(in Input) []Standing {
	var rows []Standing
	switch {
	case in.BattlesEnabled && len(in.Battles) > 0:
		rows = fromBattles(in)
	case in.QualifyingEnabled:
		rows = fromQualifying(in.Entries)
	default:
		rows = byNumber(in.Entries)
	}
	for i := range rows {
		rows[i].Position = i + 1
	}
	log.Debug("Derived standings", "format", in.Format, "rows", len(rows))
	return rows
}

type tally struct {
	row  Standing
	elim *battle.Battle
}

func fromBattles(in Input) []Standing {
	byEntry := make(map[int64]*tally, len(in.Entries))
	for _, e := range in.Entries {
		byEntry[e.Driver.Entry] = &tally{row: Standing{Driver: e.Driver, QualifyingPosition: e.QualifyingPosition}}
	}

	br := battle.NewBracket(in.Battles)
	entered := make(map[int64]bool, len(in.Entries))
	for _, b := range br.Battles() {
		for _, c := range []competitor.Competitor{b.Left, b.Right} {
			if c != nil {
				entered[c.EntryID()] = true
			}
		}
		if b.Winner == nil || competitor.IsBye(b.Left) || competitor.IsBye(b.Right) {
			continue
		}
		for _, c := range []competitor.Competitor{b.Left, b.Right} {
			if t, ok := byEntry[c.EntryID()]; ok {
				t.row.Played++
			}
		}
		if t, ok := byEntry[b.Winner.EntryID()]; ok {
			t.row.Won++
		}
		if b.LoserNext == battle.NoBattle {
			if t, ok := byEntry[b.Loser().EntryID()]; ok {
				t.elim = b
			}
		}
	}
	for _, t := range byEntry {
		if t.elim != nil {
			t.row.EliminatedRound = t.elim.Round
			t.row.EliminatedSide = t.elim.Side
		}
	}

	var rows []Standing
	placed := make(map[int64]bool)
	podium := func(c competitor.Competitor) {
		if c == nil || competitor.IsBye(c) || placed[c.EntryID()] {
			return
		}
		if t, ok := byEntry[c.EntryID()]; ok {
			rows = append(rows, t.row)
			placed[c.EntryID()] = true
		}
	}

	last := br.Last()
	if last.Winner != nil {
		podium(last.Winner)
		podium(last.Loser())

		switch in.Format {
		case bracket.DoubleElimination:
			if lf := find(br, func(b *battle.Battle) bool { return b.Round == bracket.RoundLowerFinal }); lf != nil && lf.Winner != nil {
				podium(lf.Winner)
				podium(lf.Loser())
				feeder := find(br, func(b *battle.Battle) bool {
					return b.Side == bracket.Lower && b.WinnerNext == lf.ID
				})
				if feeder != nil && feeder.Winner != nil {
					podium(feeder.Loser())
				}
			}
		case bracket.Standard:
			playOff := find(br, func(b *battle.Battle) bool {
				return b.ID != last.ID && b.WinnerNext == battle.NoBattle && b.LoserNext == battle.NoBattle
			})
			if playOff != nil && playOff.Winner != nil {
				podium(playOff.Winner)
				podium(playOff.Loser())
			}
		}
	}

	var rest []Standing
	for _, e := range in.Entries {
		if !placed[e.Driver.Entry] {
			rest = append(rest, byEntry[e.Driver.Entry].row)
		}
	}
	de := in.Format == bracket.DoubleElimination
	sort.SliceStable(rest, func(i, j int) bool {
		a, b := rest[i], rest[j]
		// Drivers cut before the bracket rank below everyone who raced it.
		if ea, eb := entered[a.Driver.Entry], entered[b.Driver.Entry]; ea != eb {
			return ea
		}
		if de {
			ra, rb := elimRound(a), elimRound(b)
			if ra != rb {
				return ra > rb
			}
			if a.EliminatedSide != b.EliminatedSide {
				return a.EliminatedSide == bracket.Upper
			}
		}
		if a.Won != b.Won {
			return a.Won > b.Won
		}
		if qa, qb := qualifying(a.QualifyingPosition), qualifying(b.QualifyingPosition); qa != qb {
			return qa < qb
		}
		return a.Driver.Entry < b.Driver.Entry
	})
	return append(rows, rest...)
}

// elimRound ranks drivers still in the bracket above every eliminated one.
func elimRound(s Standing) int {
	if s.EliminatedRound == 0 {
		return math.MaxInt
	}
	return s.EliminatedRound
}

func qualifying(p *int) int {
	if p == nil {
		return math.MaxInt
	}
	return *p
}

func find(br *battle.Bracket, match func(*battle.Battle) bool) *battle.Battle {
	for _, b := range br.Battles() {
		if match(b) {
			return b
		}
	}
	return nil
}

func fromQualifying(entries []Entry) []Standing {
	var scored bool
	for _, e := range entries {
		if len(e.Laps) > 0 {
			scored = true
			break
		}
	}
	if !scored {
		rows := byNumber(entries)
		sort.SliceStable(rows, func(i, j int) bool {
			return qualifying(rows[i].QualifyingPosition) < qualifying(rows[j].QualifyingPosition)
		})
		return rows
	}

	byEntry := make(map[int64]Entry, len(entries))
	entrants := make([]seeding.Entrant, 0, len(entries))
	for _, e := range entries {
		byEntry[e.Driver.Entry] = e
		entrants = append(entrants, seeding.Entrant{Driver: e.Driver, Laps: e.Laps})
	}
	rows := make([]Standing, 0, len(entries))
	for _, e := range seeding.RankBest(entrants) {
		rows = append(rows, Standing{Driver: e.Driver, QualifyingPosition: byEntry[e.Driver.Entry].QualifyingPosition})
	}
	return rows
}

func byNumber(entries []Entry) []Standing {
	rows := make([]Standing, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, Standing{Driver: e.Driver, QualifyingPosition: e.QualifyingPosition})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Driver.Number < rows[j].Driver.Number })
	return rows
}
