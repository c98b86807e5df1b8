package tournament

import (
	"context"
	"time"

	"github.com/mauv0809/drift-bracket/internal/battle"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
	"github.com/mauv0809/drift-bracket/internal/pubsub"
)

// Service is the in-process contract of the engine. Judges and winners are
// addressed by their driver id.
type Service interface {
	Create(ctx context.Context, settings Settings) (*Tournament, error)
	Get(ctx context.Context, id int64) (*Tournament, error)
	UpdateSettings(ctx context.Context, id int64, settings Settings) (*Tournament, error)
	Start(ctx context.Context, id int64) (*Tournament, error)

	AddDrivers(ctx context.Context, id int64, driverIDs []int64) ([]Entry, error)
	RemoveDrivers(ctx context.Context, id int64, driverIDs []int64) ([]Entry, error)
	ReorderDrivers(ctx context.Context, id int64, driverIDs []int64) ([]Entry, error)
	Entries(ctx context.Context, id int64) ([]Entry, error)
	AddJudge(ctx context.Context, id, driverID int64, points float64) (*Judge, error)
	RemoveJudge(ctx context.Context, id, driverID int64) error
	Judges(ctx context.Context, id int64) ([]Judge, error)

	NextLap(ctx context.Context, id int64) (*LapView, error)
	Lap(ctx context.Context, lapID int64) (*LapView, error)
	ScoreLap(ctx context.Context, lapID, judgeDriverID int64, score float64) (*LapView, error)
	SetLapPenalty(ctx context.Context, lapID int64, penalty float64) (*LapView, error)
	EndQualifying(ctx context.Context, id int64) (*Tournament, error)

	NextBattle(ctx context.Context, id int64) (*BattleView, error)
	Battle(ctx context.Context, battleID int64) (*BattleView, error)
	Bracket(ctx context.Context, id int64) ([]BattleView, error)
	Vote(ctx context.Context, battleID, judgeDriverID, winnerDriverID int64, omt bool) (*VoteResult, error)
	ResetVotes(ctx context.Context, battleID int64) (*BattleView, error)

	Standings(ctx context.Context, id int64) ([]Standing, error)
	Rating(ctx context.Context, driverID int64) (*RatingView, error)
	RatingHistory(ctx context.Context, driverID int64) ([]RatingChange, error)
}

// Repository is the persistence port of the engine.
type Repository interface {
	CreateTournament(ctx context.Context, t *Tournament) error
	Tournament(ctx context.Context, id int64) (*Tournament, error)
	UpdateTournament(ctx context.Context, t *Tournament) error

	// Entries returns real entries by running number, then byes.
	Entries(ctx context.Context, tournamentID int64) ([]Entry, error)
	AddEntry(ctx context.Context, e *Entry) error
	UpdateEntry(ctx context.Context, e *Entry) error
	DeleteEntry(ctx context.Context, id int64) error
	DeleteByes(ctx context.Context, tournamentID int64) error

	Judges(ctx context.Context, tournamentID int64) ([]Judge, error)
	AddJudge(ctx context.Context, j *Judge) error
	DeleteJudge(ctx context.Context, id int64) error

	Laps(ctx context.Context, tournamentID int64) ([]Lap, error)
	Lap(ctx context.Context, id int64) (*Lap, error)
	LapTournament(ctx context.Context, lapID int64) (int64, error)
	AddLap(ctx context.Context, l *Lap) error
	SetLapPenalty(ctx context.Context, lapID int64, penalty float64) error
	UpsertLapScore(ctx context.Context, lapID, judgeID int64, score float64) error

	// CreateBracket inserts one empty battle per slot in play order and links
	// the successors.
	CreateBracket(ctx context.Context, tournamentID int64, topo *bracket.Topology) ([]*battle.Battle, error)
	Battles(ctx context.Context, tournamentID int64) ([]*battle.Battle, error)
	BattleTournament(ctx context.Context, battleID int64) (int64, error)
	UpdateBattle(ctx context.Context, b *battle.Battle) error
	// DeleteBracket removes every vote and battle of a tournament.
	DeleteBracket(ctx context.Context, tournamentID int64) error
	Votes(ctx context.Context, battleID int64) ([]battle.Vote, error)
	UpsertVote(ctx context.Context, battleID int64, v battle.Vote, at time.Time) error
	DeleteVotes(ctx context.Context, battleID int64) error
	CountVotes(ctx context.Context, tournamentID int64) (int, error)

	// Rating returns the stored rating, or a fresh one for a driver without
	// history.
	Rating(ctx context.Context, driverID int64, track string) (*Rating, error)
	SaveRating(ctx context.Context, r *Rating) error
	AddRatingChange(ctx context.Context, c *RatingChange) error
	RatingHistory(ctx context.Context, driverID int64, track string) ([]RatingChange, error)
}

// Store is a Repository that can run a unit of work in one transaction.
type Store interface {
	Repository
	// Atomic runs fn in a transaction and commits when fn returns nil. The
	// Repository passed to fn is only valid inside fn.
	Atomic(ctx context.Context, fn func(Repository) error) error
}

// Directory resolves driver ids to display data.
type Directory interface {
	Profiles(ctx context.Context, driverIDs []int64) (map[int64]competitor.Profile, error)
}

// Publisher sends engine events.
type Publisher interface {
	SendMessage(topic pubsub.EventType, data any) error
}
