// Package rating computes decayed driver ratings and Elo exchanges after a
// battle.
package rating

import (
	"math"
	"time"
)

const (
	// Initial is the rating of a driver with no battle history.
	Initial = 1000.0
	// DefaultKFactor is the Elo K-factor used when none is configured.
	DefaultKFactor = 32.0
	// DefaultTrack is the rating track used when none is configured.
	DefaultTrack = "global"

	yearLength = 365.25 * 24 * time.Hour
	// decayPerYear is lost for every year of inactivity after the first.
	decayPerYear = 100.0
)

// Effective returns the rating as displayed at now: the stored rating minus
// the inactivity penalty since lastBattle. The stored value is never decayed in
// place. penalty is zero or negative.
func Effective(stored float64, lastBattle *time.Time, now time.Time) (value, penalty float64) {
	if lastBattle == nil {
		return stored, 0
	}
	years := float64(now.Sub(*lastBattle)) / float64(yearLength)
	if years < 1 {
		return stored, 0
	}
	penalty = math.Floor((years - 1) * -decayPerYear)
	return stored + penalty, penalty
}

// Expected is the logistic probability that a rated driver beats b.
func Expected(a, b float64) float64 {
	return 1 / (1 + math.Pow(10, (b-a)/400))
}

// Exchange returns the new ratings of a and b after a battle between them.
func Exchange(a, b float64, aWon bool, k float64) (newA, newB float64) {
	if k <= 0 {
		k = DefaultKFactor
	}
	score := 0.0
	if aWon {
		score = 1
	}
	delta := k * (score - Expected(a, b))
	return a + delta, b - delta
}
