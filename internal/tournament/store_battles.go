package tournament

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mauv0809/drift-bracket/internal/battle"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
	"github.com/mauv0809/drift-bracket/internal/rating"
)

func nullID(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func entryOf(c competitor.Competitor) sql.NullInt64 {
	if c == nil {
		return sql.NullInt64{}
	}
	return nullID(c.EntryID())
}

// CreateBracket inserts the slots of topo as empty battles. Ids follow play
// order; successor links are written once every battle has an id.
func (r *repo) CreateBracket(ctx context.Context, tournamentID int64, topo *bracket.Topology) ([]*battle.Battle, error) {
	battles := make([]*battle.Battle, len(topo.Slots))
	for i, s := range topo.Slots {
		res, err := r.q.ExecContext(ctx, `
			INSERT INTO battles (tournament_id, position, round, side) VALUES (?, ?, ?, ?)`,
			tournamentID, i, s.Round, s.Side)
		if err != nil {
			return nil, fmt.Errorf("failed to insert battle at position %d: %w", i, err)
		}
		id, err := lastID(res)
		if err != nil {
			return nil, err
		}
		battles[i] = &battle.Battle{ID: id, Position: i, Round: s.Round, Side: s.Side}
	}

	for i, s := range topo.Slots {
		b := battles[i]
		if s.WinnerNext != bracket.None {
			b.WinnerNext = battles[s.WinnerNext].ID
		}
		if s.LoserNext != bracket.None {
			b.LoserNext = battles[s.LoserNext].ID
		}
		if b.WinnerNext == battle.NoBattle && b.LoserNext == battle.NoBattle {
			continue
		}
		_, err := r.q.ExecContext(ctx, "UPDATE battles SET winner_next = ?, loser_next = ? WHERE id = ?",
			nullID(b.WinnerNext), nullID(b.LoserNext), b.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to link battle %d: %w", b.ID, err)
		}
	}
	return battles, nil
}

// Battles returns the battles of a tournament in play order.
func (r *repo) Battles(ctx context.Context, tournamentID int64) ([]*battle.Battle, error) {
	entries, err := r.Entries(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	resolve := func(id sql.NullInt64) (competitor.Competitor, error) {
		if !id.Valid {
			return nil, nil
		}
		e, ok := byID[id.Int64]
		if !ok {
			return nil, notFound("entry", id.Int64)
		}
		return e.Competitor(), nil
	}

	rows, err := r.q.QueryContext(ctx, `
		SELECT id, position, round, side, left_entry, right_entry, winner_entry, winner_next, loser_next
		FROM battles WHERE tournament_id = ? ORDER BY position`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query battles: %w", err)
	}
	defer rows.Close()

	var battles []*battle.Battle
	for rows.Next() {
		var b battle.Battle
		var left, right, winner, winnerNext, loserNext sql.NullInt64
		if err := rows.Scan(&b.ID, &b.Position, &b.Round, &b.Side, &left, &right, &winner, &winnerNext, &loserNext); err != nil {
			return nil, fmt.Errorf("failed to scan battle: %w", err)
		}
		if b.Left, err = resolve(left); err != nil {
			return nil, err
		}
		if b.Right, err = resolve(right); err != nil {
			return nil, err
		}
		if b.Winner, err = resolve(winner); err != nil {
			return nil, err
		}
		b.WinnerNext, b.LoserNext = winnerNext.Int64, loserNext.Int64
		battles = append(battles, &b)
	}
	return battles, rows.Err()
}

func (r *repo) BattleTournament(ctx context.Context, battleID int64) (int64, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, "SELECT tournament_id FROM battles WHERE id = ?", battleID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound("battle", battleID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up battle %d: %w", battleID, err)
	}
	return id, nil
}

// UpdateBattle writes the drivers and winner of b.
func (r *repo) UpdateBattle(ctx context.Context, b *battle.Battle) error {
	_, err := r.q.ExecContext(ctx, "UPDATE battles SET left_entry = ?, right_entry = ?, winner_entry = ? WHERE id = ?",
		entryOf(b.Left), entryOf(b.Right), entryOf(b.Winner), b.ID)
	if err != nil {
		return fmt.Errorf("failed to update battle %d: %w", b.ID, err)
	}
	return nil
}

func (r *repo) DeleteBracket(ctx context.Context, tournamentID int64) error {
	if _, err := r.q.ExecContext(ctx, `
		DELETE FROM battle_votes WHERE battle_id IN (SELECT id FROM battles WHERE tournament_id = ?)`, tournamentID); err != nil {
		return fmt.Errorf("failed to delete votes: %w", err)
	}
	if _, err := r.q.ExecContext(ctx, "DELETE FROM battles WHERE tournament_id = ?", tournamentID); err != nil {
		return fmt.Errorf("failed to delete battles: %w", err)
	}
	return nil
}

// Votes returns the votes of a battle by judge id.
func (r *repo) Votes(ctx context.Context, battleID int64) ([]battle.Vote, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT judge_id, winner_entry, omt FROM battle_votes WHERE battle_id = ? ORDER BY judge_id`, battleID)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes of battle %d: %w", battleID, err)
	}
	defer rows.Close()

	var votes []battle.Vote
	for rows.Next() {
		var v battle.Vote
		var winner sql.NullInt64
		if err := rows.Scan(&v.JudgeID, &winner, &v.OMT); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		v.WinnerEntry = winner.Int64
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// UpsertVote records a judge's vote. The last vote of a judge wins.
func (r *repo) UpsertVote(ctx context.Context, battleID int64, v battle.Vote, at time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO battle_votes (battle_id, judge_id, winner_entry, omt, updated_at) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(battle_id, judge_id) DO UPDATE SET
			winner_entry = excluded.winner_entry,
			omt = excluded.omt,
			updated_at = excluded.updated_at`,
		battleID, v.JudgeID, nullID(v.WinnerEntry), v.OMT, millis(at))
	if err != nil {
		return fmt.Errorf("failed to record vote on battle %d: %w", battleID, err)
	}
	return nil
}

func (r *repo) DeleteVotes(ctx context.Context, battleID int64) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM battle_votes WHERE battle_id = ?", battleID); err != nil {
		return fmt.Errorf("failed to delete votes of battle %d: %w", battleID, err)
	}
	return nil
}

func (r *repo) CountVotes(ctx context.Context, tournamentID int64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM battle_votes v JOIN battles b ON b.id = v.battle_id WHERE b.tournament_id = ?`,
		tournamentID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count votes: %w", err)
	}
	return n, nil
}

func (r *repo) Rating(ctx context.Context, driverID int64, track string) (*Rating, error) {
	rt := Rating{DriverID: driverID, Track: track}
	var last sql.NullInt64
	err := r.q.QueryRowContext(ctx, `
		SELECT elo, last_battle_at, total_battles FROM driver_ratings WHERE driver_id = ? AND track = ?`,
		driverID, track).Scan(&rt.Elo, &last, &rt.TotalBattles)
	if errors.Is(err, sql.ErrNoRows) {
		rt.Elo = rating.Initial
		return &rt, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating of driver %d: %w", driverID, err)
	}
	if last.Valid {
		at := fromMillis(last.Int64)
		rt.LastBattleAt = &at
	}
	return &rt, nil
}

func (r *repo) SaveRating(ctx context.Context, rt *Rating) error {
	var last sql.NullInt64
	if rt.LastBattleAt != nil {
		last = sql.NullInt64{Int64: millis(*rt.LastBattleAt), Valid: true}
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO driver_ratings (driver_id, track, elo, last_battle_at, total_battles) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(driver_id, track) DO UPDATE SET
			elo = excluded.elo,
			last_battle_at = excluded.last_battle_at,
			total_battles = excluded.total_battles`,
		rt.DriverID, rt.Track, rt.Elo, last, rt.TotalBattles)
	if err != nil {
		return fmt.Errorf("failed to save rating of driver %d: %w", rt.DriverID, err)
	}
	return nil
}

func (r *repo) AddRatingChange(ctx context.Context, c *RatingChange) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO rating_history (driver_id, track, battle_id, opponent_id, start_rating, end_rating, penalty, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.DriverID, c.Track, c.BattleID, c.OpponentID, c.StartRating, c.EndRating, c.Penalty, millis(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert rating change of driver %d: %w", c.DriverID, err)
	}
	c.ID, err = lastID(res)
	return err
}

// RatingHistory returns the rating changes of a driver, oldest first.
func (r *repo) RatingHistory(ctx context.Context, driverID int64, track string) ([]RatingChange, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, driver_id, track, battle_id, opponent_id, start_rating, end_rating, penalty, created_at
		FROM rating_history WHERE driver_id = ? AND track = ? ORDER BY id`, driverID, track)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var history []RatingChange
	for rows.Next() {
		var c RatingChange
		var created int64
		if err := rows.Scan(&c.ID, &c.DriverID, &c.Track, &c.BattleID, &c.OpponentID, &c.StartRating, &c.EndRating, &c.Penalty, &created); err != nil {
			return nil, fmt.Errorf("failed to scan rating change: %w", err)
		}
		c.CreatedAt = fromMillis(created)
		history = append(history, c)
	}
	return history, rows.Err()
}
