package tournament

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/pubsub"
	"github.com/mauv0809/drift-bracket/internal/scoring"
	"github.com/mauv0809/drift-bracket/internal/seeding"
)

const maxQualifyingLaps = 3

// DefaultSettings returns a double-elimination tournament for 16 drivers with
// two qualifying laps.
func DefaultSettings(name string) Settings {
	return Settings{
		Name:                name,
		Format:              bracket.DoubleElimination,
		BracketSize:         16,
		QualifyingEnabled:   true,
		BattlesEnabled:      true,
		QualifyingLaps:      2,
		QualifyingOrder:     OrderDriver,
		QualifyingProcedure: seeding.Best,
		ScoreFormula:        scoring.Averaged,
	}
}

// Validate checks s on its own. The bracket size is never coerced.
func (s Settings) Validate() error {
	const op = "validate settings"
	switch {
	case strings.TrimSpace(s.Name) == "":
		return precondition(op, "name is required")
	case !s.Format.Valid():
		return precondition(op, "unknown format %q", s.Format)
	case !s.QualifyingProcedure.Valid():
		return precondition(op, "unknown qualifying procedure %q", s.QualifyingProcedure)
	case !s.ScoreFormula.Valid():
		return precondition(op, "unknown score formula %q", s.ScoreFormula)
	case s.QualifyingOrder != OrderDriver && s.QualifyingOrder != OrderRound:
		return precondition(op, "unknown qualifying order %q", s.QualifyingOrder)
	case s.QualifyingEnabled && (s.QualifyingLaps < 1 || s.QualifyingLaps > maxQualifyingLaps):
		return precondition(op, "qualifying laps must be between 1 and %d, got %d", maxQualifyingLaps, s.QualifyingLaps)
	}
	if !bracket.IsPowerOfTwo(s.BracketSize) || s.BracketSize < 2 {
		return fmt.Errorf("%w: bracket size %d is not a power of two >= 2", bracket.ErrInvalidSize, s.BracketSize)
	}
	if s.Format == bracket.DoubleElimination && s.BracketSize < 4 {
		return fmt.Errorf("%w: double elimination needs a bracket of at least 4, got %d", bracket.ErrInvalidSize, s.BracketSize)
	}
	return nil
}

// seedingChanged reports whether moving from a to b changes the bracket.
func seedingChanged(a, b Settings) bool {
	return a.Format != b.Format ||
		a.BracketSize != b.BracketSize ||
		a.FullInclusion != b.FullInclusion ||
		a.QualifyingProcedure != b.QualifyingProcedure ||
		a.ScoreFormula != b.ScoreFormula
}

func (e *engine) Create(ctx context.Context, settings Settings) (*Tournament, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	now := e.clock.Now()
	t := &Tournament{Settings: settings, State: StateStart, CreatedAt: now, UpdatedAt: now}

	err := e.atomic(ctx, "create", 0, func(r Repository, _ *effects) error {
		return r.CreateTournament(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	log.Info("Created tournament", "tournament_id", t.ID, "name", t.Name, "format", t.Format)
	return t, nil
}

func (e *engine) Get(ctx context.Context, id int64) (*Tournament, error) {
	return e.store.Tournament(ctx, id)
}

// UpdateSettings edits a tournament. Once a battle has a vote the bracket is
// frozen. Before that, a change that affects seeding while battles exist
// rebuilds the bracket wholesale.
func (e *engine) UpdateSettings(ctx context.Context, id int64, settings Settings) (*Tournament, error) {
	const op = "update settings"
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	var out *Tournament
	err := e.atomic(ctx, op, id, func(r Repository, fx *effects) error {
		t, err := r.Tournament(ctx, id)
		if err != nil {
			return err
		}
		if t.State == StateEnd {
			return precondition(op, "tournament %d has ended", id)
		}
		if t.State != StateStart &&
			(settings.QualifyingEnabled != t.QualifyingEnabled || settings.BattlesEnabled != t.BattlesEnabled ||
				(settings.QualifyingEnabled && settings.QualifyingLaps != t.QualifyingLaps)) {
			return precondition(op, "qualifying and battle phases are fixed once the tournament started")
		}

		rebuild := t.State == StateBattles && seedingChanged(t.Settings, settings)
		if rebuild {
			votes, err := r.CountVotes(ctx, id)
			if err != nil {
				return err
			}
			if votes > 0 {
				return precondition(op, "the bracket is frozen once a battle has a vote")
			}
		}

		t.Settings = settings
		t.UpdatedAt = e.clock.Now()
		if err := r.UpdateTournament(ctx, t); err != nil {
			return err
		}
		if rebuild {
			if err := e.seed(ctx, r, t, fx); err != nil {
				return err
			}
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Updated tournament settings", "tournament_id", id, "format", out.Format, "state", out.State)
	return out, nil
}

// Start closes registration. Qualifying laps are created for every driver, or
// the bracket is seeded straight from the running order when qualifying is
// disabled.
func (e *engine) Start(ctx context.Context, id int64) (*Tournament, error) {
	const op = "start"
	var out *Tournament
	err := e.atomic(ctx, op, id, func(r Repository, fx *effects) error {
		t, err := r.Tournament(ctx, id)
		if err != nil {
			return err
		}
		if t.State != StateStart {
			return precondition(op, "tournament %d is already in %s", id, t.State)
		}
		drivers, err := realEntries(ctx, r, id)
		if err != nil {
			return err
		}
		if len(drivers) < 2 {
			return precondition(op, "at least 2 drivers are needed, got %d", len(drivers))
		}
		if t.QualifyingEnabled || t.BattlesEnabled {
			judges, err := r.Judges(ctx, id)
			if err != nil {
				return err
			}
			if len(judges) == 0 {
				return precondition(op, "at least 1 judge is needed")
			}
		}

		switch {
		case t.QualifyingEnabled:
			for _, d := range drivers {
				if err := addLaps(ctx, r, d.ID, t.QualifyingLaps); err != nil {
					return err
				}
			}
			err = e.transition(ctx, r, t, StateQualifying, fx)
		case t.BattlesEnabled:
			if err = e.seed(ctx, r, t, fx); err == nil {
				err = e.transition(ctx, r, t, StateBattles, fx)
			}
		default:
			err = e.finish(ctx, r, t, fx)
		}
		if err != nil {
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// transition moves t to state and queues the event.
func (e *engine) transition(ctx context.Context, r Repository, t *Tournament, state State, fx *effects) error {
	from := t.State
	t.State = state
	t.UpdatedAt = e.clock.Now()
	if err := r.UpdateTournament(ctx, t); err != nil {
		return err
	}
	fx.publish(e, pubsub.EventStateChanged, pubsub.StateChanged{From: string(from), To: string(state)})
	log.Info("Tournament state changed", "tournament_id", t.ID, "from", from, "to", state)
	return nil
}

func addLaps(ctx context.Context, r Repository, entryID int64, rounds int) error {
	for round := 1; round <= rounds; round++ {
		if err := r.AddLap(ctx, &Lap{EntryID: entryID, Round: round}); err != nil {
			return err
		}
	}
	return nil
}
