package tournament

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"
)

// realEntries returns the drivers of a tournament in running order.
func realEntries(ctx context.Context, r Repository, tournamentID int64) ([]Entry, error) {
	all, err := r.Entries(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	drivers := all[:0:0]
	for _, e := range all {
		if !e.Bye {
			drivers = append(drivers, e)
		}
	}
	return drivers, nil
}

// renumber rewrites running numbers as 1..n in the order of entries.
func renumber(ctx context.Context, r Repository, entries []Entry) error {
	for i := range entries {
		if entries[i].Number == i+1 {
			continue
		}
		entries[i].Number = i + 1
		if err := r.UpdateEntry(ctx, &entries[i]); err != nil {
			return err
		}
	}
	return nil
}

// rosterOpen loads the tournament and checks the roster can still change.
func rosterOpen(ctx context.Context, r Repository, op string, id int64) (*Tournament, error) {
	t, err := r.Tournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.State != StateStart && t.State != StateQualifying {
		return nil, precondition(op, "the roster of tournament %d is closed in %s", id, t.State)
	}
	return t, nil
}

// known checks every driver id against the directory.
func (e *engine) known(ctx context.Context, driverIDs []int64) error {
	if e.directory == nil {
		return nil
	}
	profiles, err := e.directory.Profiles(ctx, driverIDs)
	if err != nil {
		return err
	}
	for _, id := range driverIDs {
		if _, ok := profiles[id]; !ok {
			return notFound("driver", id)
		}
	}
	return nil
}

// AddDrivers appends drivers to the running order. Drivers added during
// qualifying get their laps right away.
func (e *engine) AddDrivers(ctx context.Context, id int64, driverIDs []int64) ([]Entry, error) {
	const op = "add drivers"
	if len(driverIDs) == 0 {
		return nil, precondition(op, "no drivers given")
	}
	if err := e.known(ctx, driverIDs); err != nil {
		return nil, err
	}

	var out []Entry
	err := e.atomic(ctx, op, id, func(r Repository, _ *effects) error {
		t, err := rosterOpen(ctx, r, op, id)
		if err != nil {
			return err
		}
		entries, err := realEntries(ctx, r, id)
		if err != nil {
			return err
		}
		seen := make(map[int64]bool, len(entries))
		for _, en := range entries {
			seen[en.DriverID] = true
		}

		for _, driverID := range driverIDs {
			if driverID <= 0 {
				return precondition(op, "invalid driver id %d", driverID)
			}
			if seen[driverID] {
				return precondition(op, "driver %d is already entered", driverID)
			}
			seen[driverID] = true
			en := Entry{TournamentID: id, DriverID: driverID, Number: len(entries) + 1}
			if err := r.AddEntry(ctx, &en); err != nil {
				return err
			}
			if t.State == StateQualifying {
				if err := addLaps(ctx, r, en.ID, t.QualifyingLaps); err != nil {
					return err
				}
			}
			entries = append(entries, en)
		}
		out = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Added drivers", "tournament_id", id, "added", len(driverIDs), "entries", len(out))
	return out, nil
}

// RemoveDrivers drops drivers and their laps and closes the gaps in the
// running order.
func (e *engine) RemoveDrivers(ctx context.Context, id int64, driverIDs []int64) ([]Entry, error) {
	const op = "remove drivers"
	var out []Entry
	err := e.atomic(ctx, op, id, func(r Repository, _ *effects) error {
		if _, err := rosterOpen(ctx, r, op, id); err != nil {
			return err
		}
		entries, err := realEntries(ctx, r, id)
		if err != nil {
			return err
		}
		for _, driverID := range driverIDs {
			i := slices.IndexFunc(entries, func(en Entry) bool { return en.DriverID == driverID })
			if i < 0 {
				return notFound("entry for driver", driverID)
			}
			if err := r.DeleteEntry(ctx, entries[i].ID); err != nil {
				return err
			}
			entries = slices.Delete(entries, i, i+1)
		}
		if err := renumber(ctx, r, entries); err != nil {
			return err
		}
		out = entries
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Removed drivers", "tournament_id", id, "removed", len(driverIDs), "entries", len(out))
	return out, nil
}

// ReorderDrivers sets the running order. driverIDs must name every entered
// driver exactly once.
func (e *engine) ReorderDrivers(ctx context.Context, id int64, driverIDs []int64) ([]Entry, error) {
	const op = "reorder drivers"
	var out []Entry
	err := e.atomic(ctx, op, id, func(r Repository, _ *effects) error {
		if _, err := rosterOpen(ctx, r, op, id); err != nil {
			return err
		}
		entries, err := realEntries(ctx, r, id)
		if err != nil {
			return err
		}
		if len(driverIDs) != len(entries) {
			return precondition(op, "expected %d drivers, got %d", len(entries), len(driverIDs))
		}
		byDriver := make(map[int64]Entry, len(entries))
		for _, en := range entries {
			byDriver[en.DriverID] = en
		}
		ordered := make([]Entry, 0, len(entries))
		for _, driverID := range driverIDs {
			en, ok := byDriver[driverID]
			if !ok {
				return precondition(op, "driver %d is missing or listed twice", driverID)
			}
			delete(byDriver, driverID)
			ordered = append(ordered, en)
		}
		if err := renumber(ctx, r, ordered); err != nil {
			return err
		}
		out = ordered
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Reordered drivers", "tournament_id", id, "entries", len(out))
	return out, nil
}

func (e *engine) Entries(ctx context.Context, id int64) ([]Entry, error) {
	if _, err := e.store.Tournament(ctx, id); err != nil {
		return nil, err
	}
	return e.store.Entries(ctx, id)
}

// AddJudge adds a judge. The panel is fixed once the tournament started.
func (e *engine) AddJudge(ctx context.Context, id, driverID int64, points float64) (*Judge, error) {
	const op = "add judge"
	if err := e.known(ctx, []int64{driverID}); err != nil {
		return nil, err
	}
	var out *Judge
	err := e.atomic(ctx, op, id, func(r Repository, _ *effects) error {
		t, err := r.Tournament(ctx, id)
		if err != nil {
			return err
		}
		if t.State != StateStart {
			return precondition(op, "judges of tournament %d are frozen in %s", id, t.State)
		}
		judges, err := r.Judges(ctx, id)
		if err != nil {
			return err
		}
		if slices.ContainsFunc(judges, func(j Judge) bool { return j.DriverID == driverID }) {
			return precondition(op, "driver %d already judges tournament %d", driverID, id)
		}
		j := &Judge{TournamentID: id, DriverID: driverID, Points: points}
		if err := r.AddJudge(ctx, j); err != nil {
			return err
		}
		out = j
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Added judge", "tournament_id", id, "driver_id", driverID)
	return out, nil
}

func (e *engine) RemoveJudge(ctx context.Context, id, driverID int64) error {
	const op = "remove judge"
	return e.atomic(ctx, op, id, func(r Repository, _ *effects) error {
		t, err := r.Tournament(ctx, id)
		if err != nil {
			return err
		}
		if t.State != StateStart {
			return precondition(op, "judges of tournament %d are frozen in %s", id, t.State)
		}
		j, err := judgeOf(ctx, r, id, driverID)
		if err != nil {
			return err
		}
		return r.DeleteJudge(ctx, j.ID)
	})
}

func (e *engine) Judges(ctx context.Context, id int64) ([]Judge, error) {
	if _, err := e.store.Tournament(ctx, id); err != nil {
		return nil, err
	}
	return e.store.Judges(ctx, id)
}

// judgeOf resolves the judge row of a driver.
func judgeOf(ctx context.Context, r Repository, tournamentID, driverID int64) (*Judge, error) {
	judges, err := r.Judges(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	for _, j := range judges {
		if j.DriverID == driverID {
			return &j, nil
		}
	}
	return nil, notFound("judge", driverID)
}
