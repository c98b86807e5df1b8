package standings_test

import (
	"testing"

	"github.com/mauv0809/drift-bracket/internal/battle"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
	"github.com/mauv0809/drift-bracket/internal/seeding"
	"github.com/mauv0809/drift-bracket/internal/standings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

// playedBracket seeds a bracket, lets the left side win every battle and
// returns the entries and battles.
func playedBracket(t *testing.T, format bracket.Format, drivers, size int) ([]standings.Entry, []*battle.Battle) {
	t.Helper()

	var entries []standings.Entry
	order := make([]competitor.Competitor, 0, size)
	for i := 1; i <= drivers; i++ {
		d := competitor.Driver{Entry: int64(i), DriverID: int64(100 + i), Number: i}
		entries = append(entries, standings.Entry{Driver: d, QualifyingPosition: intPtr(i)})
		order = append(order, d)
	}
	for i := len(order); i < size; i++ {
		order = append(order, competitor.Bye{Entry: int64(1000 + i)})
	}

	topo, err := bracket.Build(size, format)
	require.NoError(t, err)
	battles := make([]*battle.Battle, len(topo.Slots))
	for i, s := range topo.Slots {
		b := &battle.Battle{ID: int64(i + 1), Position: i, Round: s.Round, Side: s.Side}
		if s.WinnerNext != bracket.None {
			b.WinnerNext = int64(s.WinnerNext + 1)
		}
		if s.LoserNext != bracket.None {
			b.LoserNext = int64(s.LoserNext + 1)
		}
		battles[i] = b
	}
	matchups, err := seeding.Pair(order)
	require.NoError(t, err)
	for j, idx := range topo.FirstRound() {
		battles[idx].Left, battles[idx].Right = matchups[j].Left, matchups[j].Right
	}

	br := battle.NewBracket(battles)
	_, err = br.Settle()
	require.NoError(t, err)
	for next := br.Next(); next != nil; next = br.Next() {
		_, err := br.Decide(next.ID, next.Left)
		require.NoError(t, err)
	}
	require.True(t, br.Complete())
	return entries, battles
}

func entryOrder(rows []standings.Standing) []int64 {
	out := make([]int64, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Driver.Entry)
	}
	return out
}

func TestDerive_DoubleElimination(t *testing.T) {
	entries, battles := playedBracket(t, bracket.DoubleElimination, 8, 8)

	rows := standings.Derive(standings.Input{
		Format:         bracket.DoubleElimination,
		BattlesEnabled: true,
		Entries:        entries,
		Battles:        battles,
	})

	// Grand final 1 over 8, lower final loser 2, consolidation loser 7, then
	// the drop-in losers ahead of the consolation losers.
	assert.Equal(t, []int64{1, 8, 2, 7, 3, 4, 5, 6}, entryOrder(rows))
	for i, r := range rows {
		assert.Equal(t, i+1, r.Position)
	}
	assert.Equal(t, 4, rows[0].Played)
	assert.Equal(t, 4, rows[0].Won)
	assert.Zero(t, rows[0].EliminatedRound)
	assert.Equal(t, bracket.RoundGrandFinal, rows[1].EliminatedRound)
	assert.Equal(t, bracket.Lower, rows[7].EliminatedSide)
}

func TestDerive_StandardPlayOff(t *testing.T) {
	entries, battles := playedBracket(t, bracket.Standard, 4, 4)

	rows := standings.Derive(standings.Input{Format: bracket.Standard, BattlesEnabled: true, Entries: entries, Battles: battles})
	assert.Equal(t, []int64{1, 2, 4, 3}, entryOrder(rows))
}

func TestDerive_ByesAreNotCounted(t *testing.T) {
	entries, battles := playedBracket(t, bracket.Standard, 3, 4)

	rows := standings.Derive(standings.Input{Format: bracket.Standard, BattlesEnabled: true, Entries: entries, Battles: battles})
	require.Len(t, rows, 3)
	assert.Equal(t, []int64{1, 2, 3}, entryOrder(rows))
	assert.Equal(t, 1, rows[0].Played, "the bye battle is not a battle")
	assert.Equal(t, 1, rows[0].Won)
	assert.Equal(t, 1, rows[2].Played, "beating a bye in the play-off is not a battle")
	assert.Zero(t, rows[2].Won)
}

func TestDerive_Idempotent(t *testing.T) {
	entries, battles := playedBracket(t, bracket.DoubleElimination, 6, 8)
	in := standings.Input{Format: bracket.DoubleElimination, BattlesEnabled: true, Entries: entries, Battles: battles}

	first := standings.Derive(in)
	second := standings.Derive(in)
	assert.Equal(t, first, second)
	assert.Len(t, first, 6)
}

func TestDerive_WithoutBattles(t *testing.T) {
	d := func(entry int64, number int) competitor.Driver {
		return competitor.Driver{Entry: entry, DriverID: entry * 10, Number: number}
	}

	t.Run("qualifying laps", func(t *testing.T) {
		rows := standings.Derive(standings.Input{
			Format:            bracket.Standard,
			QualifyingEnabled: true,
			Entries: []standings.Entry{
				{Driver: d(1, 1), Laps: []float64{70, 60}},
				{Driver: d(2, 2), Laps: []float64{80}},
				{Driver: d(3, 3), Laps: []float64{70, 65}},
			},
		})
		assert.Equal(t, []int64{2, 3, 1}, entryOrder(rows))
	})

	t.Run("stored qualifying positions", func(t *testing.T) {
		rows := standings.Derive(standings.Input{
			Format:            bracket.Standard,
			QualifyingEnabled: true,
			Entries: []standings.Entry{
				{Driver: d(1, 1), QualifyingPosition: intPtr(2)},
				{Driver: d(2, 2)},
				{Driver: d(3, 3), QualifyingPosition: intPtr(1)},
			},
		})
		assert.Equal(t, []int64{3, 1, 2}, entryOrder(rows))
	})

	t.Run("running order", func(t *testing.T) {
		rows := standings.Derive(standings.Input{
			Format:  bracket.Standard,
			Entries: []standings.Entry{{Driver: d(1, 2)}, {Driver: d(2, 1)}},
		})
		assert.Equal(t, []int64{2, 1}, entryOrder(rows))
	})
}

func TestDerive_CutDriversRankLast(t *testing.T) {
	entries, battles := playedBracket(t, bracket.DoubleElimination, 4, 4)
	entries = append(entries, standings.Entry{Driver: competitor.Driver{Entry: 5, DriverID: 105, Number: 5}})

	rows := standings.Derive(standings.Input{Format: bracket.DoubleElimination, BattlesEnabled: true, Entries: entries, Battles: battles})
	require.Len(t, rows, 5)
	assert.Equal(t, int64(5), rows[4].Driver.Entry)
	assert.Zero(t, rows[4].Played)
}
