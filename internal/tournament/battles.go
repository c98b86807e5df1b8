package tournament

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/battle"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
	"github.com/mauv0809/drift-bracket/internal/metrics"
	"github.com/mauv0809/drift-bracket/internal/pubsub"
	"github.com/mauv0809/drift-bracket/internal/rating"
	"github.com/mauv0809/drift-bracket/internal/seeding"
)

// seed orders the field, from qualifying or from the running order, and
// builds a fresh bracket for it.
func (e *engine) seed(ctx context.Context, r Repository, t *Tournament, fx *effects) error {
	const op = "seed"
	in := seeding.Input{
		Format:        t.Format,
		Procedure:     t.QualifyingProcedure,
		BracketSize:   t.BracketSize,
		FullInclusion: t.FullInclusion,
		WaveFractions: e.waveFractions,
	}

	var res seeding.Result
	var err error
	if t.QualifyingEnabled {
		board, lerr := loadLaps(ctx, r, t)
		if lerr != nil {
			return lerr
		}
		in.Entrants = board.entrants()
		if res, err = seeding.Qualify(in); err == nil {
			ranked := make([]seeding.Entrant, 0, len(res.Ranked))
			for _, d := range res.Ranked {
				ranked = append(ranked, seeding.Entrant{Driver: d})
			}
			err = writeQualifying(ctx, r, board.entries, ranked)
		}
	} else {
		entries, lerr := realEntries(ctx, r, t.ID)
		if lerr != nil {
			return lerr
		}
		for _, en := range entries {
			in.Entrants = append(in.Entrants, seeding.Entrant{Driver: en.Driver()})
		}
		res, err = seeding.Roster(in)
	}
	if errors.Is(err, seeding.ErrNotEnoughDrivers) {
		return precondition(op, "at least 2 drivers must qualify: %v", err)
	}
	if err != nil {
		return err
	}
	return e.build(ctx, r, t, res, fx)
}

// build replaces the bracket of t with one seeded from res and advances every
// driver facing a bye.
func (e *engine) build(ctx context.Context, r Repository, t *Tournament, res seeding.Result, fx *effects) error {
	if err := r.DeleteBracket(ctx, t.ID); err != nil {
		return err
	}
	if err := r.DeleteByes(ctx, t.ID); err != nil {
		return err
	}

	order := make([]competitor.Competitor, len(res.Order))
	for i, c := range res.Order {
		if !competitor.IsBye(c) {
			order[i] = c
			continue
		}
		bye := Entry{TournamentID: t.ID, Bye: true}
		if err := r.AddEntry(ctx, &bye); err != nil {
			return err
		}
		order[i] = bye.Competitor()
	}

	topo, err := bracket.Build(res.Size, t.Format)
	if err != nil {
		return err
	}
	battles, err := r.CreateBracket(ctx, t.ID, topo)
	if err != nil {
		return err
	}
	matchups, err := seeding.Pair(order)
	if err != nil {
		return err
	}
	for i, idx := range topo.FirstRound() {
		b := battles[idx]
		b.Left, b.Right = matchups[i].Left, matchups[i].Right
		if err := r.UpdateBattle(ctx, b); err != nil {
			return err
		}
	}

	br := battle.NewBracket(battles)
	advanced, err := br.Settle()
	if err != nil {
		return fmt.Errorf("failed to advance byes: %w", err)
	}
	if err := e.record(ctx, r, advanced, fx); err != nil {
		return err
	}
	fx.count(func(m metrics.Metrics) { m.IncBracketsBuilt(string(t.Format)) })
	log.Info("Built bracket", "tournament_id", t.ID, "format", t.Format, "size", res.Size,
		"battles", len(battles), "byes_advanced", len(advanced), "dropped", len(res.Dropped))
	return nil
}

// record persists changed battles and queues an event for each decision.
// Decisions against a bye are counted as bye advances.
func (e *engine) record(ctx context.Context, r Repository, changed []*battle.Battle, fx *effects) error {
	byes := 0
	for _, b := range changed {
		if err := r.UpdateBattle(ctx, b); err != nil {
			return err
		}
		if b.Winner == nil {
			continue
		}
		bye := competitor.IsBye(b.Left) || competitor.IsBye(b.Right)
		if bye {
			byes++
		}
		ev := pubsub.BattleDecided{
			BattleID:    b.ID,
			Round:       b.Round,
			Side:        string(b.Side),
			WinnerEntry: b.Winner.EntryID(),
			Bye:         bye,
		}
		if l := b.Loser(); l != nil {
			ev.LoserEntry = l.EntryID()
		}
		fx.publish(e, pubsub.EventBattleDecided, ev)
	}
	if byes > 0 {
		fx.count(func(m metrics.Metrics) { m.AddByesAdvanced(byes) })
	}
	return nil
}

// live loads the bracket of a battle's tournament and the battle itself.
func live(ctx context.Context, r Repository, tournamentID, battleID int64) (*battle.Bracket, *battle.Battle, error) {
	battles, err := r.Battles(ctx, tournamentID)
	if err != nil {
		return nil, nil, err
	}
	br := battle.NewBracket(battles)
	b, ok := br.Get(battleID)
	if !ok {
		return nil, nil, notFound("battle", battleID)
	}
	return br, b, nil
}

func (e *engine) battleTournament(ctx context.Context, r Repository, op string, battleID int64) (*Tournament, error) {
	id, err := r.BattleTournament(ctx, battleID)
	if err != nil {
		return nil, err
	}
	t, err := r.Tournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.State != StateBattles {
		return nil, precondition(op, "tournament %d is not in battles, it is in %s", id, t.State)
	}
	return t, nil
}

// Vote records a judge's call and decides the battle once one side has a
// majority. Deciding moves both drivers on, resolves battles against byes,
// rates both drivers and ends the tournament after the last battle.
func (e *engine) Vote(ctx context.Context, battleID, judgeDriverID, winnerDriverID int64, omt bool) (*VoteResult, error) {
	const op = "vote"
	id, err := e.store.BattleTournament(ctx, battleID)
	if err != nil {
		return nil, err
	}

	var res VoteResult
	err = e.atomic(ctx, op, id, func(r Repository, fx *effects) error {
		t, err := e.battleTournament(ctx, r, op, battleID)
		if err != nil {
			return err
		}
		judges, err := r.Judges(ctx, id)
		if err != nil {
			return err
		}
		judge, err := judgeOf(ctx, r, id, judgeDriverID)
		if err != nil {
			return err
		}
		br, b, err := live(ctx, r, id, battleID)
		if err != nil {
			return err
		}
		if s := b.State(); s != battle.StateAwaiting {
			return precondition(op, "battle %d is %s", battleID, s)
		}

		v := battle.Vote{JudgeID: judge.ID, OMT: omt}
		if !omt {
			side := sideOf(b, winnerDriverID)
			if side == nil {
				return precondition(op, "driver %d is not in battle %d", winnerDriverID, battleID)
			}
			v.WinnerEntry = side.EntryID()
		}
		now := e.clock.Now()
		if err := r.UpsertVote(ctx, battleID, v, now); err != nil {
			return err
		}
		fx.count(func(m metrics.Metrics) { m.IncVotesCast() })

		votes, err := r.Votes(ctx, battleID)
		if err != nil {
			return err
		}
		res.Outcome = battle.Tally(b, votes, len(judges))
		res.State = t.State
		if res.Outcome.Verdict != battle.Decided {
			res.Battle = view(b, votes, len(judges))
			return nil
		}

		changed, err := br.Decide(battleID, res.Outcome.Winner)
		if err != nil {
			return fmt.Errorf("failed to decide battle %d: %w", battleID, err)
		}
		if err := e.record(ctx, r, changed, fx); err != nil {
			return err
		}
		side := string(b.Side)
		fx.count(func(m metrics.Metrics) { m.IncBattlesDecided(side) })
		fx.decided(t, b)
		if err := e.rate(ctx, r, b, now); err != nil {
			return err
		}

		res.Battle = view(b, votes, len(judges))
		for _, c := range changed {
			if c.ID != battleID {
				res.Advanced = append(res.Advanced, view(c, nil, len(judges)))
			}
		}
		log.Info("Decided battle", "tournament_id", id, "battle_id", battleID, "round", b.Round,
			"side", b.Side, "winner", b.Winner.EntryID())

		if br.Complete() {
			if err := e.finish(ctx, r, t, fx); err != nil {
				return err
			}
			res.State = t.State
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	views := append([]BattleView{res.Battle}, res.Advanced...)
	if err := e.attach(ctx, views); err != nil {
		return nil, err
	}
	res.Battle, res.Advanced = views[0], views[1:]
	if len(res.Advanced) == 0 {
		res.Advanced = nil
	}
	return &res, nil
}

// sideOf returns the side of b driven by driverID.
func sideOf(b *battle.Battle, driverID int64) competitor.Competitor {
	for _, c := range []competitor.Competitor{b.Left, b.Right} {
		if d, ok := competitor.AsDriver(c); ok && d.DriverID == driverID {
			return c
		}
	}
	return nil
}

// rate moves the ratings of both drivers of a decided battle. The exchange
// runs on decayed ratings; the stored rating only moves by the exchange.
func (e *engine) rate(ctx context.Context, r Repository, b *battle.Battle, at time.Time) error {
	winner, ok := competitor.AsDriver(b.Winner)
	if !ok {
		return nil
	}
	loser, ok := competitor.AsDriver(b.Loser())
	if !ok {
		return nil
	}

	wr, err := r.Rating(ctx, winner.DriverID, e.track)
	if err != nil {
		return err
	}
	lr, err := r.Rating(ctx, loser.DriverID, e.track)
	if err != nil {
		return err
	}
	we, wp := rating.Effective(wr.Elo, wr.LastBattleAt, at)
	le, lp := rating.Effective(lr.Elo, lr.LastBattleAt, at)
	nw, nl := rating.Exchange(we, le, true, e.kFactor)

	for _, u := range []struct {
		rt       *Rating
		opponent int64
		delta    float64
		penalty  float64
	}{
		{wr, loser.DriverID, nw - we, wp},
		{lr, winner.DriverID, nl - le, lp},
	} {
		start := u.rt.Elo
		u.rt.Elo += u.delta
		u.rt.LastBattleAt = &at
		u.rt.TotalBattles++
		if err := r.SaveRating(ctx, u.rt); err != nil {
			return err
		}
		err := r.AddRatingChange(ctx, &RatingChange{
			DriverID:    u.rt.DriverID,
			Track:       e.track,
			BattleID:    b.ID,
			OpponentID:  u.opponent,
			StartRating: start,
			EndRating:   u.rt.Elo,
			Penalty:     u.penalty,
			CreatedAt:   at,
		})
		if err != nil {
			return err
		}
	}
	log.Debug("Rated battle", "battle_id", b.ID, "winner", winner.DriverID, "winner_elo", wr.Elo,
		"loser", loser.DriverID, "loser_elo", lr.Elo)
	return nil
}

// ResetVotes clears the votes of an undecided battle so the pair can run one
// more time.
func (e *engine) ResetVotes(ctx context.Context, battleID int64) (*BattleView, error) {
	const op = "reset votes"
	id, err := e.store.BattleTournament(ctx, battleID)
	if err != nil {
		return nil, err
	}

	var v BattleView
	err = e.atomic(ctx, op, id, func(r Repository, _ *effects) error {
		if _, err := e.battleTournament(ctx, r, op, battleID); err != nil {
			return err
		}
		_, b, err := live(ctx, r, id, battleID)
		if err != nil {
			return err
		}
		if b.Winner != nil {
			return precondition(op, "battle %d is already decided", battleID)
		}
		if err := r.DeleteVotes(ctx, battleID); err != nil {
			return err
		}
		judges, err := r.Judges(ctx, id)
		if err != nil {
			return err
		}
		v = view(b, nil, len(judges))
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info("Reset votes", "tournament_id", id, "battle_id", battleID)
	views := []BattleView{v}
	if err := e.attach(ctx, views); err != nil {
		return nil, err
	}
	return &views[0], nil
}

// NextBattle returns the next battle to judge, or nil when none is ready.
func (e *engine) NextBattle(ctx context.Context, id int64) (*BattleView, error) {
	t, err := e.store.Tournament(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.State != StateBattles {
		return nil, precondition("next battle", "tournament %d is not in battles, it is in %s", id, t.State)
	}
	battles, err := e.store.Battles(ctx, id)
	if err != nil {
		return nil, err
	}
	next := battle.NewBracket(battles).Next()
	if next == nil {
		return nil, nil
	}
	views, err := e.views(ctx, id, []*battle.Battle{next})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (e *engine) Battle(ctx context.Context, battleID int64) (*BattleView, error) {
	id, err := e.store.BattleTournament(ctx, battleID)
	if err != nil {
		return nil, err
	}
	_, b, err := live(ctx, e.store, id, battleID)
	if err != nil {
		return nil, err
	}
	views, err := e.views(ctx, id, []*battle.Battle{b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// Bracket returns every battle of a tournament in play order.
func (e *engine) Bracket(ctx context.Context, id int64) ([]BattleView, error) {
	if _, err := e.store.Tournament(ctx, id); err != nil {
		return nil, err
	}
	battles, err := e.store.Battles(ctx, id)
	if err != nil {
		return nil, err
	}
	return e.views(ctx, id, battles)
}

// views loads votes and profiles for battles of one tournament.
func (e *engine) views(ctx context.Context, tournamentID int64, battles []*battle.Battle) ([]BattleView, error) {
	judges, err := e.store.Judges(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	out := make([]BattleView, 0, len(battles))
	for _, b := range battles {
		votes, err := e.store.Votes(ctx, b.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, view(b, votes, len(judges)))
	}
	if err := e.attach(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

func view(b *battle.Battle, votes []battle.Vote, judges int) BattleView {
	if votes == nil {
		votes = []battle.Vote{}
	}
	return BattleView{
		Battle:  *b,
		State:   b.State(),
		Votes:   votes,
		Outcome: battle.Tally(b, votes, judges),
	}
}

// attach fills in driver profiles.
func (e *engine) attach(ctx context.Context, views []BattleView) error {
	var ids []int64
	for _, v := range views {
		for _, c := range []competitor.Competitor{v.Left, v.Right} {
			if d, ok := competitor.AsDriver(c); ok {
				ids = append(ids, d.DriverID)
			}
		}
	}
	profiles, err := e.profiles(ctx, ids)
	if err != nil {
		return err
	}
	for i := range views {
		if d, ok := competitor.AsDriver(views[i].Left); ok {
			p := profileOf(profiles, d.DriverID)
			views[i].LeftProfile = &p
		}
		if d, ok := competitor.AsDriver(views[i].Right); ok {
			p := profileOf(profiles, d.DriverID)
			views[i].RightProfile = &p
		}
	}
	return nil
}
