package tournament_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/drift-bracket/internal/battle"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/database"
	"github.com/mauv0809/drift-bracket/internal/rating"
	"github.com/mauv0809/drift-bracket/internal/tournament"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB creates an in-memory SQLite database with the schema applied.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTournament(t *testing.T, s tournament.Store) *tournament.Tournament {
	t.Helper()
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	tr := &tournament.Tournament{
		Settings:  tournament.DefaultSettings("Store Cup"),
		State:     tournament.StateStart,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, s.CreateTournament(context.Background(), tr))
	return tr
}

func TestStore_TournamentRoundTrip(t *testing.T) {
	s := tournament.NewStore(setupTestDB(t))
	ctx := context.Background()

	created := newTournament(t, s)
	require.NotZero(t, created.ID)

	got, err := s.Tournament(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Settings, got.Settings)
	assert.Equal(t, tournament.StateStart, got.State)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	got.State = tournament.StateQualifying
	got.BracketSize = 8
	require.NoError(t, s.UpdateTournament(ctx, got))
	again, err := s.Tournament(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, tournament.StateQualifying, again.State)
	assert.Equal(t, 8, again.BracketSize)

	_, err = s.Tournament(ctx, 999)
	assert.ErrorIs(t, err, tournament.ErrNotFound)
}

func TestStore_EntriesListDriversBeforeByes(t *testing.T) {
	s := tournament.NewStore(setupTestDB(t))
	ctx := context.Background()
	tr := newTournament(t, s)

	for _, e := range []*tournament.Entry{
		{TournamentID: tr.ID, Bye: true},
		{TournamentID: tr.ID, DriverID: 12, Number: 2},
		{TournamentID: tr.ID, DriverID: 11, Number: 1},
		{TournamentID: tr.ID, Bye: true},
	} {
		require.NoError(t, s.AddEntry(ctx, e))
	}

	entries, err := s.Entries(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, int64(11), entries[0].DriverID)
	assert.Equal(t, int64(12), entries[1].DriverID)
	assert.True(t, entries[2].Bye)
	assert.True(t, entries[3].Bye)

	err = s.AddEntry(ctx, &tournament.Entry{TournamentID: tr.ID, DriverID: 11, Number: 3})
	assert.Error(t, err, "a driver is entered once")

	require.NoError(t, s.DeleteByes(ctx, tr.ID))
	entries, err = s.Entries(ctx, tr.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStore_LapScoresUpsert(t *testing.T) {
	s := tournament.NewStore(setupTestDB(t))
	ctx := context.Background()
	tr := newTournament(t, s)

	entry := &tournament.Entry{TournamentID: tr.ID, DriverID: 5, Number: 1}
	require.NoError(t, s.AddEntry(ctx, entry))
	judge := &tournament.Judge{TournamentID: tr.ID, DriverID: 900, Points: 1}
	require.NoError(t, s.AddJudge(ctx, judge))
	lap := &tournament.Lap{EntryID: entry.ID, Round: 1}
	require.NoError(t, s.AddLap(ctx, lap))

	require.NoError(t, s.UpsertLapScore(ctx, lap.ID, judge.ID, 70))
	require.NoError(t, s.UpsertLapScore(ctx, lap.ID, judge.ID, 75))
	require.NoError(t, s.SetLapPenalty(ctx, lap.ID, -5))

	got, err := s.Lap(ctx, lap.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int64]float64{judge.ID: 75}, got.Scores)
	assert.Equal(t, -5.0, got.Penalty)

	laps, err := s.Laps(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, laps, 1)
	assert.Equal(t, got.Scores, laps[0].Scores)

	owner, err := s.LapTournament(ctx, lap.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, owner)
}

func TestStore_CreateBracketLinksSuccessors(t *testing.T) {
	s := tournament.NewStore(setupTestDB(t))
	ctx := context.Background()
	tr := newTournament(t, s)

	topo, err := bracket.Build(4, bracket.DoubleElimination)
	require.NoError(t, err)
	created, err := s.CreateBracket(ctx, tr.ID, topo)
	require.NoError(t, err)
	require.Len(t, created, len(topo.Slots))

	stored, err := s.Battles(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, stored, len(topo.Slots))
	for i, slot := range topo.Slots {
		b := stored[i]
		assert.Equal(t, i, b.Position)
		assert.Equal(t, slot.Round, b.Round)
		assert.Equal(t, slot.Side, b.Side)
		if slot.WinnerNext == bracket.None {
			assert.Equal(t, battle.NoBattle, b.WinnerNext)
		} else {
			assert.Equal(t, stored[slot.WinnerNext].ID, b.WinnerNext)
		}
		if slot.LoserNext == bracket.None {
			assert.Equal(t, battle.NoBattle, b.LoserNext)
		} else {
			assert.Equal(t, stored[slot.LoserNext].ID, b.LoserNext)
		}
	}

	require.NoError(t, s.DeleteBracket(ctx, tr.ID))
	stored, err = s.Battles(ctx, tr.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestStore_VotesLastWriteWins(t *testing.T) {
	s := tournament.NewStore(setupTestDB(t))
	ctx := context.Background()
	tr := newTournament(t, s)

	left := &tournament.Entry{TournamentID: tr.ID, DriverID: 1, Number: 1}
	right := &tournament.Entry{TournamentID: tr.ID, DriverID: 2, Number: 2}
	require.NoError(t, s.AddEntry(ctx, left))
	require.NoError(t, s.AddEntry(ctx, right))
	judge := &tournament.Judge{TournamentID: tr.ID, DriverID: 900}
	require.NoError(t, s.AddJudge(ctx, judge))

	topo, err := bracket.Build(2, bracket.Standard)
	require.NoError(t, err)
	battles, err := s.CreateBracket(ctx, tr.ID, topo)
	require.NoError(t, err)
	b := battles[0]
	b.Left, b.Right = left.Competitor(), right.Competitor()
	require.NoError(t, s.UpdateBattle(ctx, b))

	at := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.UpsertVote(ctx, b.ID, battle.Vote{JudgeID: judge.ID, OMT: true}, at))
	require.NoError(t, s.UpsertVote(ctx, b.ID, battle.Vote{JudgeID: judge.ID, WinnerEntry: right.ID}, at))

	votes, err := s.Votes(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, []battle.Vote{{JudgeID: judge.ID, WinnerEntry: right.ID}}, votes)

	n, err := s.CountVotes(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := s.Battles(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, left.Competitor(), stored[0].Left)
	assert.Equal(t, right.Competitor(), stored[0].Right)
	assert.Nil(t, stored[0].Winner)
}

func TestStore_RatingDefaultsAndHistory(t *testing.T) {
	s := tournament.NewStore(setupTestDB(t))
	ctx := context.Background()

	fresh, err := s.Rating(ctx, 7, rating.DefaultTrack)
	require.NoError(t, err)
	assert.Equal(t, rating.Initial, fresh.Elo)
	assert.Nil(t, fresh.LastBattleAt)

	at := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	fresh.Elo, fresh.LastBattleAt, fresh.TotalBattles = 1016, &at, 1
	require.NoError(t, s.SaveRating(ctx, fresh))
	require.NoError(t, s.AddRatingChange(ctx, &tournament.RatingChange{
		DriverID: 7, Track: rating.DefaultTrack, BattleID: 1, OpponentID: 8,
		StartRating: 1000, EndRating: 1016, CreatedAt: at,
	}))

	stored, err := s.Rating(ctx, 7, rating.DefaultTrack)
	require.NoError(t, err)
	assert.Equal(t, 1016.0, stored.Elo)
	require.NotNil(t, stored.LastBattleAt)
	assert.True(t, at.Equal(*stored.LastBattleAt))

	other, err := s.Rating(ctx, 7, "nürburgring")
	require.NoError(t, err)
	assert.Equal(t, rating.Initial, other.Elo, "ratings are kept per track")

	history, err := s.RatingHistory(ctx, 7, rating.DefaultTrack)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, int64(8), history[0].OpponentID)
}

func TestStore_AtomicRollsBack(t *testing.T) {
	s := tournament.NewStore(setupTestDB(t))
	ctx := context.Background()
	tr := newTournament(t, s)

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(r tournament.Repository) error {
		if err := r.AddEntry(ctx, &tournament.Entry{TournamentID: tr.ID, DriverID: 1, Number: 1}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	entries, err := s.Entries(ctx, tr.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_DeleteEntryRemovesLapsWithoutForeignKeys(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	// A pooled libSQL connection may run without foreign key enforcement.
	_, err := db.ExecContext(ctx, "PRAGMA foreign_keys=OFF")
	require.NoError(t, err)
	s := tournament.NewStore(db)
	tr := newTournament(t, s)

	keep := &tournament.Entry{TournamentID: tr.ID, DriverID: 1, Number: 1}
	gone := &tournament.Entry{TournamentID: tr.ID, DriverID: 2, Number: 2}
	require.NoError(t, s.AddEntry(ctx, keep))
	require.NoError(t, s.AddEntry(ctx, gone))
	judge := &tournament.Judge{TournamentID: tr.ID, DriverID: 900}
	require.NoError(t, s.AddJudge(ctx, judge))
	for _, e := range []*tournament.Entry{keep, gone} {
		lap := &tournament.Lap{EntryID: e.ID, Round: 1}
		require.NoError(t, s.AddLap(ctx, lap))
		require.NoError(t, s.UpsertLapScore(ctx, lap.ID, judge.ID, 70))
	}

	require.NoError(t, s.DeleteEntry(ctx, gone.ID))

	laps, err := s.Laps(ctx, tr.ID)
	require.NoError(t, err)
	require.Len(t, laps, 1)
	assert.Equal(t, keep.ID, laps[0].EntryID)

	var scores int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lap_scores").Scan(&scores))
	assert.Equal(t, 1, scores)

	require.NoError(t, s.DeleteJudge(ctx, judge.ID))
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM lap_scores").Scan(&scores))
	assert.Zero(t, scores)
}
