package rating_test

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/drift-bracket/internal/rating"
	"github.com/stretchr/testify/assert"
)

func TestEffective(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	year := time.Duration(365.25 * 24 * float64(time.Hour))
	ago := func(d time.Duration) *time.Time {
		at := clock.Now().Add(-d)
		return &at
	}

	tests := []struct {
		name        string
		last        *time.Time
		wantValue   float64
		wantPenalty float64
	}{
		{"no history", nil, 1000, 0},
		{"last week", ago(7 * 24 * time.Hour), 1000, 0},
		{"just under a year", ago(year - time.Minute), 1000, 0},
		{"exactly one year", ago(year), 1000, 0},
		{"eighteen months", ago(year + year/2), 950, -50},
		{"exactly two years", ago(2 * year), 900, -100},
		{"a day past a year floors down", ago(year + 24*time.Hour), 999, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, penalty := rating.Effective(1000, tt.last, clock.Now())
			assert.Equal(t, tt.wantValue, value)
			assert.Equal(t, tt.wantPenalty, penalty)
		})
	}
}

func TestEffective_DecaysContinuously(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	last := clock.Now().AddDate(-3, 0, 0)

	today, _ := rating.Effective(1500, &last, clock.Now())
	clock.Advance(30 * 24 * time.Hour)
	nextMonth, _ := rating.Effective(1500, &last, clock.Now())
	assert.Less(t, nextMonth, today)
}

func TestExchange(t *testing.T) {
	a, b := rating.Exchange(1000, 1000, true, 32)
	assert.InDelta(t, 1016, a, 1e-9)
	assert.InDelta(t, 984, b, 1e-9)

	// Points are conserved.
	a, b = rating.Exchange(1200, 900, false, 24)
	assert.InDelta(t, 2100, a+b, 1e-9)
	assert.Less(t, a, 1200.0)

	// An upset moves more points than an expected win.
	upset, _ := rating.Exchange(900, 1200, true, 32)
	expected, _ := rating.Exchange(1200, 900, true, 32)
	assert.Greater(t, upset-900, expected-1200)

	a, _ = rating.Exchange(1000, 1000, true, 0)
	assert.InDelta(t, 1000+rating.DefaultKFactor/2, a, 1e-9)
}

func TestExpected(t *testing.T) {
	assert.InDelta(t, 0.5, rating.Expected(1000, 1000), 1e-9)
	assert.InDelta(t, 1, rating.Expected(1400, 1000)+rating.Expected(1000, 1400), 1e-9)
	assert.InDelta(t, 10.0/11.0, rating.Expected(1400, 1000), 1e-9)
}
