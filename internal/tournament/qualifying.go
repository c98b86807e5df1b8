package tournament

import (
	"context"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/metrics"
	"github.com/mauv0809/drift-bracket/internal/scoring"
	"github.com/mauv0809/drift-bracket/internal/seeding"
)

// lapBoard is the qualifying state of a tournament at one point in time.
type lapBoard struct {
	t       *Tournament
	entries map[int64]Entry
	judges  int
	laps    []Lap
}

func loadLaps(ctx context.Context, r Repository, t *Tournament) (*lapBoard, error) {
	entries, err := realEntries(ctx, r, t.ID)
	if err != nil {
		return nil, err
	}
	judges, err := r.Judges(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	laps, err := r.Laps(ctx, t.ID)
	if err != nil {
		return nil, err
	}
	b := &lapBoard{t: t, entries: make(map[int64]Entry, len(entries)), judges: len(judges), laps: laps}
	for _, e := range entries {
		b.entries[e.ID] = e
	}
	b.order()
	return b, nil
}

// order sorts the laps in run order: by round then running number, or by
// running number then round.
func (b *lapBoard) order() {
	sort.SliceStable(b.laps, func(i, j int) bool {
		li, lj := b.laps[i], b.laps[j]
		ni, nj := b.entries[li.EntryID].Number, b.entries[lj.EntryID].Number
		if b.t.QualifyingOrder == OrderRound {
			if li.Round != lj.Round {
				return li.Round < lj.Round
			}
			return ni < nj
		}
		if ni != nj {
			return ni < nj
		}
		return li.Round < lj.Round
	})
}

func (b *lapBoard) view(l Lap) LapView {
	scores := make([]float64, 0, len(l.Scores))
	for _, s := range l.Scores {
		scores = append(scores, s)
	}
	score, complete := scoring.Aggregate(scores, b.judges, b.t.ScoreFormula, l.Penalty)
	return LapView{
		Lap:      l,
		Driver:   b.entries[l.EntryID].Driver(),
		Judges:   b.judges,
		Score:    score,
		Complete: complete,
	}
}

// next returns the first incomplete lap in run order.
func (b *lapBoard) next() (LapView, bool) {
	for _, l := range b.laps {
		if v := b.view(l); !v.Complete {
			return v, true
		}
	}
	return LapView{}, false
}

func (b *lapBoard) find(lapID int64) (LapView, bool) {
	for _, l := range b.laps {
		if l.ID == lapID {
			return b.view(l), true
		}
	}
	return LapView{}, false
}

// entrants returns every driver with its aggregated lap scores by round.
func (b *lapBoard) entrants() []seeding.Entrant {
	byEntry := make(map[int64][]float64, len(b.entries))
	for _, l := range b.laps {
		laps := byEntry[l.EntryID]
		if laps == nil {
			laps = make([]float64, b.t.QualifyingLaps)
		}
		if l.Round >= 1 && l.Round <= len(laps) {
			laps[l.Round-1] = b.view(l).Score
		}
		byEntry[l.EntryID] = laps
	}

	out := make([]seeding.Entrant, 0, len(b.entries))
	for _, e := range b.entries {
		laps := byEntry[e.ID]
		if laps == nil {
			laps = make([]float64, b.t.QualifyingLaps)
		}
		out = append(out, seeding.Entrant{Driver: e.Driver(), Laps: laps})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Driver.Number < out[j].Driver.Number })
	return out
}

func (e *engine) withProfile(ctx context.Context, v LapView) (*LapView, error) {
	profiles, err := e.profiles(ctx, []int64{v.Driver.DriverID})
	if err != nil {
		return nil, err
	}
	v.Profile = profileOf(profiles, v.Driver.DriverID)
	return &v, nil
}

// NextLap returns the next lap to judge, or nil once every lap is complete.
func (e *engine) NextLap(ctx context.Context, id int64) (*LapView, error) {
	t, err := e.store.Tournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.State != StateQualifying {
		return nil, precondition("next lap", "tournament %d is not qualifying, it is in %s", id, t.State)
	}
	board, err := loadLaps(ctx, e.store, t)
	if err != nil {
		return nil, err
	}
	v, ok := board.next()
	if !ok {
		return nil, nil
	}
	return e.withProfile(ctx, v)
}

func (e *engine) Lap(ctx context.Context, lapID int64) (*LapView, error) {
	id, err := e.store.LapTournament(ctx, lapID)
	if err != nil {
		return nil, err
	}
	t, err := e.store.Tournament(ctx, id)
	if err != nil {
		return nil, err
	}
	board, err := loadLaps(ctx, e.store, t)
	if err != nil {
		return nil, err
	}
	v, ok := board.find(lapID)
	if !ok {
		return nil, notFound("lap", lapID)
	}
	return e.withProfile(ctx, v)
}

// ScoreLap records the score of one judge for a lap. Judges may correct
// their score until qualifying ends.
func (e *engine) ScoreLap(ctx context.Context, lapID, judgeDriverID int64, score float64) (*LapView, error) {
	const op = "score lap"
	if score < 0 {
		return nil, precondition(op, "score must not be negative, got %v", score)
	}
	return e.editLap(ctx, op, lapID, func(r Repository, t *Tournament, fx *effects) error {
		j, err := judgeOf(ctx, r, t.ID, judgeDriverID)
		if err != nil {
			return err
		}
		if err := r.UpsertLapScore(ctx, lapID, j.ID, score); err != nil {
			return err
		}
		fx.count(func(m metrics.Metrics) { m.IncLapsScored() })
		return nil
	})
}

// SetLapPenalty replaces the penalty of a lap. Deductions are negative.
func (e *engine) SetLapPenalty(ctx context.Context, lapID int64, penalty float64) (*LapView, error) {
	return e.editLap(ctx, "set lap penalty", lapID, func(r Repository, _ *Tournament, _ *effects) error {
		return r.SetLapPenalty(ctx, lapID, penalty)
	})
}

func (e *engine) editLap(ctx context.Context, op string, lapID int64, fn func(Repository, *Tournament, *effects) error) (*LapView, error) {
	id, err := e.store.LapTournament(ctx, lapID)
	if err != nil {
		return nil, err
	}

	var v LapView
	err = e.atomic(ctx, op, id, func(r Repository, fx *effects) error {
		t, err := r.Tournament(ctx, id)
		if err != nil {
			return err
		}
		if t.State != StateQualifying {
			return precondition(op, "tournament %d is not qualifying, it is in %s", id, t.State)
		}
		if err := fn(r, t, fx); err != nil {
			return err
		}
		board, err := loadLaps(ctx, r, t)
		if err != nil {
			return err
		}
		var ok bool
		if v, ok = board.find(lapID); !ok {
			return notFound("lap", lapID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Debug("Updated lap", "lap_id", lapID, "score", v.Score, "complete", v.Complete)
	return e.withProfile(ctx, v)
}

// EndQualifying closes qualifying once every lap is complete, writes
// qualifying positions and seeds the bracket. Without battles the tournament
// ends right away.
func (e *engine) EndQualifying(ctx context.Context, id int64) (*Tournament, error) {
	const op = "end qualifying"
	var out *Tournament
	err := e.atomic(ctx, op, id, func(r Repository, fx *effects) error {
		t, err := r.Tournament(ctx, id)
		if err != nil {
			return err
		}
		if t.State != StateQualifying {
			return precondition(op, "tournament %d is not qualifying, it is in %s", id, t.State)
		}
		board, err := loadLaps(ctx, r, t)
		if err != nil {
			return err
		}
		if v, ok := board.next(); ok {
			return precondition(op, "lap %d of driver %d is not complete", v.ID, v.Driver.DriverID)
		}

		if !t.BattlesEnabled {
			if err := writeQualifying(ctx, r, board.entries, seeding.RankBest(board.entrants())); err != nil {
				return err
			}
			out = t
			return e.finish(ctx, r, t, fx)
		}
		if err := e.seed(ctx, r, t, fx); err != nil {
			return err
		}
		out = t
		return e.transition(ctx, r, t, StateBattles, fx)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// writeQualifying stores position index+1 for every ranked driver and clears
// it for everyone else.
func writeQualifying(ctx context.Context, r Repository, entries map[int64]Entry, ranked []seeding.Entrant) error {
	positions := make(map[int64]int, len(ranked))
	for i, en := range ranked {
		positions[en.Driver.Entry] = i + 1
	}
	for id, en := range entries {
		if pos, ok := positions[id]; ok {
			en.QualifyingPosition = &pos
		} else {
			en.QualifyingPosition = nil
		}
		if err := r.UpdateEntry(ctx, &en); err != nil {
			return err
		}
	}
	return nil
}
