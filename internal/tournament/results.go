package tournament

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/metrics"
	"github.com/mauv0809/drift-bracket/internal/pubsub"
	"github.com/mauv0809/drift-bracket/internal/rating"
	"github.com/mauv0809/drift-bracket/internal/standings"
)

// derive computes the standings of t from what is stored.
func derive(ctx context.Context, r Repository, t *Tournament) ([]standings.Standing, error) {
	in := standings.Input{
		Format:            t.Format,
		BattlesEnabled:    t.BattlesEnabled,
		QualifyingEnabled: t.QualifyingEnabled,
	}

	entries, err := realEntries(ctx, r, t.ID)
	if err != nil {
		return nil, err
	}
	laps := map[int64][]float64{}
	if t.QualifyingEnabled && !t.BattlesEnabled {
		board, err := loadLaps(ctx, r, t)
		if err != nil {
			return nil, err
		}
		for _, en := range board.entrants() {
			laps[en.Driver.Entry] = en.Laps
		}
	}
	for _, en := range entries {
		in.Entries = append(in.Entries, standings.Entry{
			Driver:             en.Driver(),
			QualifyingPosition: en.QualifyingPosition,
			Laps:               laps[en.ID],
		})
	}

	if t.BattlesEnabled {
		if in.Battles, err = r.Battles(ctx, t.ID); err != nil {
			return nil, err
		}
	}
	return standings.Derive(in), nil
}

// finish writes finishing positions for every driver and ends t.
func (e *engine) finish(ctx context.Context, r Repository, t *Tournament, fx *effects) error {
	rows, err := derive(ctx, r, t)
	if err != nil {
		return err
	}
	entries, err := realEntries(ctx, r, t.ID)
	if err != nil {
		return err
	}
	byID := make(map[int64]*Entry, len(entries))
	for i := range entries {
		byID[entries[i].ID] = &entries[i]
	}

	placements := make([]pubsub.Placement, 0, len(rows))
	for _, row := range rows {
		en, ok := byID[row.Driver.Entry]
		if !ok {
			continue
		}
		pos := row.Position
		en.FinishingPosition = &pos
		if err := r.UpdateEntry(ctx, en); err != nil {
			return err
		}
		placements = append(placements, pubsub.Placement{Position: pos, Entry: en.ID, DriverID: en.DriverID})
	}

	if err := e.transition(ctx, r, t, StateEnd, fx); err != nil {
		return err
	}
	fx.publish(e, pubsub.EventStandingsPublished, pubsub.StandingsPublished{Placements: placements})
	fx.finished(t, placements)
	fx.count(func(m metrics.Metrics) { m.IncStandingsPublished() })
	log.Info("Published standings", "tournament_id", t.ID, "drivers", len(placements))
	return nil
}

// Standings returns the finishing order. Before the tournament ended it is the
// order the tournament would end in right now.
func (e *engine) Standings(ctx context.Context, id int64) ([]Standing, error) {
	t, err := e.store.Tournament(ctx, id)
	if err != nil {
		return nil, err
	}
	rows, err := derive(ctx, e.store, t)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.Driver.DriverID)
	}
	profiles, err := e.profiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]Standing, 0, len(rows))
	for _, row := range rows {
		out = append(out, Standing{Standing: row, Profile: profileOf(profiles, row.Driver.DriverID)})
	}
	return out, nil
}

// Rating returns the rating of a driver on the configured track, decayed to
// now.
func (e *engine) Rating(ctx context.Context, driverID int64) (*RatingView, error) {
	rt, err := e.store.Rating(ctx, driverID, e.track)
	if err != nil {
		return nil, err
	}
	value, penalty := rating.Effective(rt.Elo, rt.LastBattleAt, e.clock.Now())
	return &RatingView{Rating: *rt, Effective: value, Penalty: penalty}, nil
}

func (e *engine) RatingHistory(ctx context.Context, driverID int64) ([]RatingChange, error) {
	return e.store.RatingHistory(ctx, driverID, e.track)
}
