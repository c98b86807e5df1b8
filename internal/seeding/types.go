package seeding

import (
	"errors"

	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
)

// Procedure is the qualifying procedure used to order drivers.
type Procedure string

const (
	// Best ranks drivers by their top lap scores.
	Best Procedure = "BEST"
	// Waves promotes a growing share of the field after every round.
	Waves Procedure = "WAVES"
)

// Valid reports whether p is a known procedure.
func (p Procedure) Valid() bool {
	return p == Best || p == Waves
}

// ErrNotEnoughDrivers is returned when fewer than two drivers qualify.
var ErrNotEnoughDrivers = errors.New("not enough qualified drivers")

// Entrant is a driver with its aggregated lap scores, indexed by round - 1.
// Incomplete laps score 0.
type Entrant struct {
	Driver competitor.Driver
	Laps   []float64
}

// Input describes one seeding run.
type Input struct {
	Format        bracket.Format
	Procedure     Procedure
	Entrants      []Entrant
	BracketSize   int
	FullInclusion bool
	// WaveFractions overrides the share of the field promoted after each
	// round. Defaults to round/rounds.
	WaveFractions []float64
}

// Result is the seeded field.
type Result struct {
	// Size is the bracket size, a power of two.
	Size int
	// Order is the seeded field padded with byes to Size.
	Order []competitor.Competitor
	// Qualified are the real drivers in Order.
	Qualified []competitor.Driver
	// Ranked is the qualifying order of every scoring driver, including those
	// cut from the bracket; position is index + 1. Empty for Roster.
	Ranked []competitor.Driver
	// Dropped are drivers that did not make the bracket.
	Dropped []competitor.Driver
}

// Matchup is a first-round pairing. Left is the higher seed.
type Matchup struct {
	Left  competitor.Competitor
	Right competitor.Competitor
}
