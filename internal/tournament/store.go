package tournament

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repo implements Repository on top of a querier.
type repo struct {
	q querier
}

// NewStore creates a new SQLite backed Store.
func NewStore(db *sql.DB) Store {
	return &store{
		repo: &repo{q: db},
		db:   db,
	}
}

// Atomic runs fn inside a single transaction. Calls are serialised so a
// single-connection database never waits on itself.
func (s *store) Atomic(ctx context.Context, fn func(Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&repo{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func millis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func lastID(res sql.Result) (int64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return id, nil
}

const tournamentColumns = `id, name, format, state, bracket_size, full_inclusion, qualifying_enabled,
	battles_enabled, qualifying_laps, qualifying_order, qualifying_procedure, score_formula, created_at, updated_at`

// CreateTournament inserts t and sets its id.
func (r *repo) CreateTournament(ctx context.Context, t *Tournament) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO tournaments (name, format, state, bracket_size, full_inclusion, qualifying_enabled,
			battles_enabled, qualifying_laps, qualifying_order, qualifying_procedure, score_formula, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Name, t.Format, t.State, t.BracketSize, t.FullInclusion, t.QualifyingEnabled,
		t.BattlesEnabled, t.QualifyingLaps, t.QualifyingOrder, t.QualifyingProcedure, t.ScoreFormula,
		millis(t.CreatedAt), millis(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert tournament: %w", err)
	}
	t.ID, err = lastID(res)
	return err
}

// Tournament returns the tournament with the given id.
func (r *repo) Tournament(ctx context.Context, id int64) (*Tournament, error) {
	var t Tournament
	var created, updated int64
	err := r.q.QueryRowContext(ctx, "SELECT "+tournamentColumns+" FROM tournaments WHERE id = ?", id).Scan(
		&t.ID, &t.Name, &t.Format, &t.State, &t.BracketSize, &t.FullInclusion, &t.QualifyingEnabled,
		&t.BattlesEnabled, &t.QualifyingLaps, &t.QualifyingOrder, &t.QualifyingProcedure, &t.ScoreFormula,
		&created, &updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("tournament", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tournament %d: %w", id, err)
	}
	t.CreatedAt, t.UpdatedAt = fromMillis(created), fromMillis(updated)
	return &t, nil
}

// UpdateTournament writes the settings and state of t.
func (r *repo) UpdateTournament(ctx context.Context, t *Tournament) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE tournaments SET name = ?, format = ?, state = ?, bracket_size = ?, full_inclusion = ?,
			qualifying_enabled = ?, battles_enabled = ?, qualifying_laps = ?, qualifying_order = ?,
			qualifying_procedure = ?, score_formula = ?, updated_at = ?
		WHERE id = ?`,
		t.Name, t.Format, t.State, t.BracketSize, t.FullInclusion,
		t.QualifyingEnabled, t.BattlesEnabled, t.QualifyingLaps, t.QualifyingOrder,
		t.QualifyingProcedure, t.ScoreFormula, millis(t.UpdatedAt), t.ID)
	if err != nil {
		return fmt.Errorf("failed to update tournament %d: %w", t.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return notFound("tournament", t.ID)
	}
	return nil
}

// Entries returns every entry of a tournament, real drivers by running number
// first, then byes.
func (r *repo) Entries(ctx context.Context, tournamentID int64) ([]Entry, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, tournament_id, driver_id, number, is_bye, qualifying_position, finishing_position
		FROM tournament_drivers
		WHERE tournament_id = ?
		ORDER BY is_bye, number, id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var qualifying, finishing sql.NullInt64
		if err := rows.Scan(&e.ID, &e.TournamentID, &e.DriverID, &e.Number, &e.Bye, &qualifying, &finishing); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.QualifyingPosition, e.FinishingPosition = intPtr(qualifying), intPtr(finishing)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AddEntry inserts e and sets its id.
func (r *repo) AddEntry(ctx context.Context, e *Entry) error {
	res, err := r.q.ExecContext(ctx, `
		INSERT INTO tournament_drivers (tournament_id, driver_id, number, is_bye, qualifying_position, finishing_position)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.TournamentID, e.DriverID, e.Number, e.Bye, nullInt(e.QualifyingPosition), nullInt(e.FinishingPosition))
	if err != nil {
		return fmt.Errorf("failed to insert entry for driver %d: %w", e.DriverID, err)
	}
	e.ID, err = lastID(res)
	return err
}

// UpdateEntry writes the number and positions of e.
func (r *repo) UpdateEntry(ctx context.Context, e *Entry) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE tournament_drivers SET number = ?, qualifying_position = ?, finishing_position = ?
		WHERE id = ?`,
		e.Number, nullInt(e.QualifyingPosition), nullInt(e.FinishingPosition), e.ID)
	if err != nil {
		return fmt.Errorf("failed to update entry %d: %w", e.ID, err)
	}
	return nil
}

// execAll runs each statement with args and stops at the first failure.
func (r *repo) execAll(ctx context.Context, what string, args []any, stmts ...string) error {
	for _, stmt := range stmts {
		if _, err := r.q.ExecContext(ctx, stmt, args...); err != nil {
			return fmt.Errorf("failed to delete %s: %w", what, err)
		}
	}
	return nil
}

// DeleteEntry removes an entry with its laps and lap scores. Dependent rows
// are deleted explicitly since a pooled libSQL connection may not enforce
// foreign keys.
func (r *repo) DeleteEntry(ctx context.Context, id int64) error {
	return r.execAll(ctx, fmt.Sprintf("entry %d", id), []any{id},
		"DELETE FROM lap_scores WHERE lap_id IN (SELECT id FROM laps WHERE entry_id = ?)",
		"DELETE FROM laps WHERE entry_id = ?",
		"DELETE FROM tournament_drivers WHERE id = ?",
	)
}

func (r *repo) DeleteByes(ctx context.Context, tournamentID int64) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM tournament_drivers WHERE tournament_id = ? AND is_bye = 1", tournamentID); err != nil {
		return fmt.Errorf("failed to delete byes: %w", err)
	}
	return nil
}

// Judges returns the judges of a tournament in the order they were added.
func (r *repo) Judges(ctx context.Context, tournamentID int64) ([]Judge, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, tournament_id, driver_id, points FROM judges WHERE tournament_id = ? ORDER BY id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query judges: %w", err)
	}
	defer rows.Close()

	var judges []Judge
	for rows.Next() {
		var j Judge
		if err := rows.Scan(&j.ID, &j.TournamentID, &j.DriverID, &j.Points); err != nil {
			return nil, fmt.Errorf("failed to scan judge: %w", err)
		}
		judges = append(judges, j)
	}
	return judges, rows.Err()
}

func (r *repo) AddJudge(ctx context.Context, j *Judge) error {
	res, err := r.q.ExecContext(ctx, "INSERT INTO judges (tournament_id, driver_id, points) VALUES (?, ?, ?)",
		j.TournamentID, j.DriverID, j.Points)
	if err != nil {
		return fmt.Errorf("failed to insert judge %d: %w", j.DriverID, err)
	}
	j.ID, err = lastID(res)
	return err
}

// DeleteJudge removes a judge with every lap score and vote it cast.
func (r *repo) DeleteJudge(ctx context.Context, id int64) error {
	return r.execAll(ctx, fmt.Sprintf("judge %d", id), []any{id},
		"DELETE FROM lap_scores WHERE judge_id = ?",
		"DELETE FROM battle_votes WHERE judge_id = ?",
		"DELETE FROM judges WHERE id = ?",
	)
}

// Laps returns every lap of a tournament with its scores.
func (r *repo) Laps(ctx context.Context, tournamentID int64) ([]Lap, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT l.id, l.entry_id, l.round, l.penalty
		FROM laps l JOIN tournament_drivers e ON e.id = l.entry_id
		WHERE e.tournament_id = ?
		ORDER BY l.id`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query laps: %w", err)
	}
	var laps []Lap
	index := make(map[int64]int)
	for rows.Next() {
		l := Lap{Scores: make(map[int64]float64)}
		if err := rows.Scan(&l.ID, &l.EntryID, &l.Round, &l.Penalty); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan lap: %w", err)
		}
		index[l.ID] = len(laps)
		laps = append(laps, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	scores, err := r.q.QueryContext(ctx, `
		SELECT s.lap_id, s.judge_id, s.score
		FROM lap_scores s
		JOIN laps l ON l.id = s.lap_id
		JOIN tournament_drivers e ON e.id = l.entry_id
		WHERE e.tournament_id = ?`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query lap scores: %w", err)
	}
	defer scores.Close()
	for scores.Next() {
		var lapID, judgeID int64
		var score float64
		if err := scores.Scan(&lapID, &judgeID, &score); err != nil {
			return nil, fmt.Errorf("failed to scan lap score: %w", err)
		}
		if i, ok := index[lapID]; ok {
			laps[i].Scores[judgeID] = score
		}
	}
	return laps, scores.Err()
}

// Lap returns a single lap with its scores.
func (r *repo) Lap(ctx context.Context, id int64) (*Lap, error) {
	l := Lap{Scores: make(map[int64]float64)}
	err := r.q.QueryRowContext(ctx, "SELECT id, entry_id, round, penalty FROM laps WHERE id = ?", id).
		Scan(&l.ID, &l.EntryID, &l.Round, &l.Penalty)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("lap", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lap %d: %w", id, err)
	}

	rows, err := r.q.QueryContext(ctx, "SELECT judge_id, score FROM lap_scores WHERE lap_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores of lap %d: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var judgeID int64
		var score float64
		if err := rows.Scan(&judgeID, &score); err != nil {
			return nil, fmt.Errorf("failed to scan lap score: %w", err)
		}
		l.Scores[judgeID] = score
	}
	return &l, rows.Err()
}

func (r *repo) LapTournament(ctx context.Context, lapID int64) (int64, error) {
	var id int64
	err := r.q.QueryRowContext(ctx, `
		SELECT e.tournament_id FROM laps l JOIN tournament_drivers e ON e.id = l.entry_id WHERE l.id = ?`, lapID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, notFound("lap", lapID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to look up lap %d: %w", lapID, err)
	}
	return id, nil
}

func (r *repo) AddLap(ctx context.Context, l *Lap) error {
	res, err := r.q.ExecContext(ctx, "INSERT INTO laps (entry_id, round, penalty) VALUES (?, ?, ?)", l.EntryID, l.Round, l.Penalty)
	if err != nil {
		return fmt.Errorf("failed to insert lap: %w", err)
	}
	l.ID, err = lastID(res)
	return err
}

func (r *repo) SetLapPenalty(ctx context.Context, lapID int64, penalty float64) error {
	if _, err := r.q.ExecContext(ctx, "UPDATE laps SET penalty = ? WHERE id = ?", penalty, lapID); err != nil {
		return fmt.Errorf("failed to set penalty of lap %d: %w", lapID, err)
	}
	return nil
}

// UpsertLapScore records a judge's score. A judge scoring again replaces the
// earlier score.
func (r *repo) UpsertLapScore(ctx context.Context, lapID, judgeID int64, score float64) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO lap_scores (lap_id, judge_id, score) VALUES (?, ?, ?)
		ON CONFLICT(lap_id, judge_id) DO UPDATE SET score = excluded.score`, lapID, judgeID, score)
	if err != nil {
		return fmt.Errorf("failed to record score of lap %d: %w", lapID, err)
	}
	log.Debug("Recorded lap score", "lap_id", lapID, "judge_id", judgeID, "score", score)
	return nil
}
