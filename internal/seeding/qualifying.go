// Package seeding orders qualified drivers and assigns them to first-round
// bracket slots.
package seeding

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
)

const tiers = 3

// Qualify orders the field under the configured procedure, drops or keeps
// non-scoring drivers, and pads the result with byes to the bracket size.
func Qualify(in Input) (Result, error) {
	keepZero := in.FullInclusion || in.Format == bracket.BattleTree

	var field []Entrant
	var dropped []competitor.Driver
	for _, e := range in.Entrants {
		if !keepZero && zeroScorer(e) {
			dropped = append(dropped, e.Driver)
			continue
		}
		field = append(field, e)
	}

	var ordered, ranked []Entrant
	switch in.Procedure {
	case Waves:
		promoted, rest := promoteWaves(field, in.Format, in.WaveFractions)
		ranked = append(append(make([]Entrant, 0, len(field)), promoted...), RankBest(rest)...)
		if in.FullInclusion {
			ordered = ranked
		} else {
			ordered = promoted
			for _, e := range ranked[len(promoted):] {
				dropped = append(dropped, e.Driver)
			}
		}
	default:
		ordered = RankBest(field)
		ranked = ordered
	}

	res, err := fit(in, ordered, dropped)
	if err != nil {
		return Result{}, err
	}
	for _, e := range ranked {
		res.Ranked = append(res.Ranked, e.Driver)
	}
	return res, nil
}

// Roster seeds the field in running-number order without looking at lap
// scores, for tournaments that skip qualifying.
func Roster(in Input) (Result, error) {
	ordered := append([]Entrant(nil), in.Entrants...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Driver.Number < ordered[j].Driver.Number
	})
	return fit(in, ordered, nil)
}

// fit sizes the bracket for ordered, cuts whoever does not fit and pads the
// rest with byes.
func fit(in Input, ordered []Entrant, dropped []competitor.Driver) (Result, error) {
	if len(ordered) < 2 {
		return Result{}, fmt.Errorf("%w: %d", ErrNotEnoughDrivers, len(ordered))
	}

	size := bracket.NextPowerOfTwo(len(ordered))
	if !in.FullInclusion && bracket.IsPowerOfTwo(in.BracketSize) && in.BracketSize >= 2 && in.BracketSize < size {
		size = in.BracketSize
	}
	if in.Format == bracket.DoubleElimination && size < 4 {
		size = 4
	}
	if len(ordered) > size {
		for _, e := range ordered[size:] {
			dropped = append(dropped, e.Driver)
		}
		ordered = ordered[:size]
	}

	res := Result{Size: size, Dropped: dropped}
	for _, e := range ordered {
		res.Order = append(res.Order, e.Driver)
		res.Qualified = append(res.Qualified, e.Driver)
	}
	for len(res.Order) < size {
		res.Order = append(res.Order, competitor.Bye{})
	}

	log.Debug("Seeded field", "procedure", in.Procedure, "qualified", len(res.Qualified), "size", size, "dropped", len(dropped))
	return res, nil
}

func zeroScorer(e Entrant) bool {
	for _, l := range e.Laps {
		if l > 0 {
			return false
		}
	}
	return true
}

// bestTiers returns the driver's top three laps, highest first, with -1 for
// missing laps so they rank below a real 0.
func bestTiers(laps []float64) [tiers]float64 {
	sorted := make([]float64, len(laps))
	copy(sorted, laps)
	sort.Sort(sort.Reverse(sort.Float64Slice(sorted)))

	var out [tiers]float64
	for i := range out {
		out[i] = -1
		if i < len(sorted) {
			out[i] = sorted[i]
		}
	}
	return out
}

// RankBest orders entrants by best, second best and third best lap, ties
// broken by running number.
func RankBest(entrants []Entrant) []Entrant {
	ranked := make([]Entrant, len(entrants))
	copy(ranked, entrants)

	keys := make(map[int64][tiers]float64, len(ranked))
	for _, e := range ranked {
		keys[e.Driver.Entry] = bestTiers(e.Laps)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := keys[ranked[i].Driver.Entry], keys[ranked[j].Driver.Entry]
		for t := 0; t < tiers; t++ {
			if a[t] != b[t] {
				return a[t] > b[t]
			}
		}
		return ranked[i].Driver.Number < ranked[j].Driver.Number
	})
	return ranked
}

// promoteWaves runs the waves procedure: after each round the best
// not-yet-promoted drivers of that round fill the wave up to its size.
func promoteWaves(field []Entrant, format bracket.Format, fractions []float64) (promoted, rest []Entrant) {
	rounds := 0
	for _, e := range field {
		rounds = max(rounds, len(e.Laps))
	}
	base := bracket.PowerOfTwoFloor(len(field))

	done := make(map[int64]bool, len(field))
	for r := 1; r <= rounds; r++ {
		fraction := float64(r) / float64(rounds)
		if r-1 < len(fractions) {
			fraction = fractions[r-1]
		}
		wave := int(float64(base) * fraction)
		if format == bracket.Wildcard && r == rounds {
			wave--
		}

		var candidates []Entrant
		for _, e := range field {
			if !done[e.Driver.Entry] {
				candidates = append(candidates, e)
			}
		}
		sort.SliceStable(candidates, func(i, j int) bool {
			a, b := lapScore(candidates[i], r), lapScore(candidates[j], r)
			if a != b {
				return a > b
			}
			return candidates[i].Driver.DriverID < candidates[j].Driver.DriverID
		})

		for _, e := range candidates {
			if len(promoted) >= wave {
				break
			}
			promoted = append(promoted, e)
			done[e.Driver.Entry] = true
		}
	}

	for _, e := range field {
		if !done[e.Driver.Entry] {
			rest = append(rest, e)
		}
	}
	return promoted, rest
}

func lapScore(e Entrant, round int) float64 {
	if round-1 < len(e.Laps) {
		return e.Laps[round-1]
	}
	return 0
}
