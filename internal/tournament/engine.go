// Package tournament runs drift tournaments: roster and judges, qualifying,
// the bracket and its battles, final standings and driver ratings. Every
// mutating call is one transaction, serialised per tournament.
package tournament

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/drift-bracket/internal/battle"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
	"github.com/mauv0809/drift-bracket/internal/metrics"
	"github.com/mauv0809/drift-bracket/internal/notifier"
	"github.com/mauv0809/drift-bracket/internal/pubsub"
	"github.com/mauv0809/drift-bracket/internal/rating"
)

var _ Service = (*engine)(nil)

type engine struct {
	store     Store
	clock     clockwork.Clock
	metrics   metrics.Metrics
	publisher Publisher
	notifier  notifier.Notifier
	directory Directory

	track         string
	kFactor       float64
	waveFractions []float64

	locks sync.Map // tournament id -> *sync.Mutex
}

// Option configures the engine.
type Option func(*engine)

func WithClock(c clockwork.Clock) Option { return func(e *engine) { e.clock = c } }

func WithMetrics(m metrics.Metrics) Option { return func(e *engine) { e.metrics = m } }

func WithPublisher(p Publisher) Option { return func(e *engine) { e.publisher = p } }

// WithNotifier announces decided battles and final standings once they are
// committed.
func WithNotifier(n notifier.Notifier) Option { return func(e *engine) { e.notifier = n } }

func WithDirectory(d Directory) Option { return func(e *engine) { e.directory = d } }

// WithRating sets the rating track and Elo K-factor.
func WithRating(track string, kFactor float64) Option {
	return func(e *engine) {
		if track != "" {
			e.track = track
		}
		if kFactor > 0 {
			e.kFactor = kFactor
		}
	}
}

// WithWaveFractions overrides the share of the field promoted per qualifying
// round under the WAVES procedure.
func WithWaveFractions(f []float64) Option { return func(e *engine) { e.waveFractions = f } }

// New creates the engine on top of store.
func New(store Store, opts ...Option) Service {
	e := &engine{
		store:   store,
		clock:   clockwork.NewRealClock(),
		metrics: nopMetrics{},
		track:   rating.DefaultTrack,
		kFactor: rating.DefaultKFactor,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *engine) lock(tournamentID int64) func() {
	m, _ := e.locks.LoadOrStore(tournamentID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// effects are collected inside a transaction and only released once it
// committed.
type effects struct {
	tournamentID int64
	events       []pubsub.Envelope
	counters     []func(metrics.Metrics)
	results      []notifier.BattleResult
	standings    *notifier.Standings
}

func (fx *effects) publish(e *engine, t pubsub.EventType, payload any) {
	fx.events = append(fx.events, pubsub.NewEnvelope(t, fx.tournamentID, e.clock.Now(), payload))
}

func (fx *effects) count(f func(metrics.Metrics)) {
	fx.counters = append(fx.counters, f)
}

// decided queues the announcement of a battle the judges decided.
func (fx *effects) decided(t *Tournament, b *battle.Battle) {
	winner, ok := competitor.AsDriver(b.Winner)
	if !ok {
		return
	}
	loser, ok := competitor.AsDriver(b.Loser())
	if !ok {
		return
	}
	r := notifier.BattleResult{
		TournamentID: t.ID,
		Tournament:   t.Name,
		BattleID:     b.ID,
		Round:        b.Round,
		Winner:       competitor.Profile{DriverID: winner.DriverID},
		Loser:        competitor.Profile{DriverID: loser.DriverID},
	}
	if t.Format == bracket.DoubleElimination {
		r.Side = string(b.Side)
	}
	fx.results = append(fx.results, r)
}

// finished queues the announcement of the final standings.
func (fx *effects) finished(t *Tournament, placements []pubsub.Placement) {
	s := &notifier.Standings{TournamentID: t.ID, Tournament: t.Name}
	for _, p := range placements {
		s.Rows = append(s.Rows, notifier.Placement{Position: p.Position, Driver: competitor.Profile{DriverID: p.DriverID}})
	}
	fx.standings = s
}

// atomic runs fn as one unit of work under the tournament lock.
func (e *engine) atomic(ctx context.Context, op string, tournamentID int64, fn func(Repository, *effects) error) error {
	start := e.clock.Now()
	unlock := e.lock(tournamentID)
	defer unlock()

	fx := &effects{tournamentID: tournamentID}
	err := e.store.Atomic(ctx, func(r Repository) error { return fn(r, fx) })
	e.metrics.ObserveOperationDuration(op, e.clock.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, ErrPrecondition) || errors.Is(err, ErrNotFound) {
			log.Warn("Rejected engine operation", "operation", op, "tournament_id", tournamentID, "error", err)
		} else {
			log.Error("Engine operation failed", "operation", op, "tournament_id", tournamentID, "error", err)
		}
		return err
	}

	for _, c := range fx.counters {
		c(e.metrics)
	}
	if e.publisher != nil {
		for _, ev := range fx.events {
			if err := e.publisher.SendMessage(ev.Type, ev); err != nil {
				log.Error("Failed to publish event", "type", ev.Type, "event_id", ev.ID, "error", err)
			}
		}
	}
	e.announce(ctx, fx)
	return nil
}

// announce sends the notifications of a committed unit of work. Profiles are
// filled in here; failures are logged and never undo the operation.
func (e *engine) announce(ctx context.Context, fx *effects) {
	if e.notifier == nil || (len(fx.results) == 0 && fx.standings == nil) {
		return
	}
	var ids []int64
	for _, r := range fx.results {
		ids = append(ids, r.Winner.DriverID, r.Loser.DriverID)
	}
	if fx.standings != nil {
		for _, row := range fx.standings.Rows {
			ids = append(ids, row.Driver.DriverID)
		}
	}
	profiles, err := e.profiles(ctx, ids)
	if err != nil {
		log.Warn("Failed to look up driver profiles for notifications", "tournament_id", fx.tournamentID, "error", err)
		profiles = map[int64]competitor.Profile{}
	}

	for _, r := range fx.results {
		r.Winner = profileOf(profiles, r.Winner.DriverID)
		r.Loser = profileOf(profiles, r.Loser.DriverID)
		if err := e.notifier.SendBattleResult(ctx, r); err != nil {
			log.Error("Failed to send battle result", "tournament_id", fx.tournamentID, "battle_id", r.BattleID, "error", err)
		}
	}
	if fx.standings != nil {
		s := *fx.standings
		s.Rows = make([]notifier.Placement, len(fx.standings.Rows))
		for i, row := range fx.standings.Rows {
			s.Rows[i] = notifier.Placement{Position: row.Position, Driver: profileOf(profiles, row.Driver.DriverID)}
		}
		if err := e.notifier.SendStandings(ctx, s); err != nil {
			log.Error("Failed to send standings", "tournament_id", fx.tournamentID, "error", err)
		}
	}
}

// profiles looks up display data. A missing directory yields empty profiles.
func (e *engine) profiles(ctx context.Context, driverIDs []int64) (map[int64]competitor.Profile, error) {
	if e.directory == nil || len(driverIDs) == 0 {
		return map[int64]competitor.Profile{}, nil
	}
	return e.directory.Profiles(ctx, driverIDs)
}

func profileOf(profiles map[int64]competitor.Profile, driverID int64) competitor.Profile {
	if p, ok := profiles[driverID]; ok {
		return p
	}
	return competitor.Profile{DriverID: driverID}
}

type nopMetrics struct{}

func (nopMetrics) IncLapsScored()                           {}
func (nopMetrics) IncVotesCast()                            {}
func (nopMetrics) IncBattlesDecided(string)                 {}
func (nopMetrics) AddByesAdvanced(int)                      {}
func (nopMetrics) IncBracketsBuilt(string)                  {}
func (nopMetrics) IncStandingsPublished()                   {}
func (nopMetrics) IncNotificationsSent()                    {}
func (nopMetrics) IncNotificationsFailed()                  {}
func (nopMetrics) ObserveOperationDuration(string, float64) {}
