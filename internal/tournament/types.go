package tournament

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/drift-bracket/internal/battle"
	"github.com/mauv0809/drift-bracket/internal/bracket"
	"github.com/mauv0809/drift-bracket/internal/competitor"
	"github.com/mauv0809/drift-bracket/internal/scoring"
	"github.com/mauv0809/drift-bracket/internal/seeding"
	"github.com/mauv0809/drift-bracket/internal/standings"
)

// store handles all database operations for tournaments.
type store struct {
	*repo
	db *sql.DB
	mu sync.Mutex
}

// State is the lifecycle state of a tournament.
type State string

const (
	StateStart      State = "START"
	StateQualifying State = "QUALIFYING"
	StateBattles    State = "BATTLES"
	StateEnd        State = "END"
)

// QualifyingOrder is the run order of qualifying laps.
type QualifyingOrder string

const (
	// OrderDriver runs every lap of a driver before the next driver.
	OrderDriver QualifyingOrder = "DRIVER"
	// OrderRound runs every driver once per round.
	OrderRound QualifyingOrder = "ROUND"
)

// Settings are the organizer-editable parameters of a tournament.
type Settings struct {
	Name                string            `json:"name"`
	Format              bracket.Format    `json:"format"`
	BracketSize         int               `json:"bracket_size"`
	FullInclusion       bool              `json:"full_inclusion"`
	QualifyingEnabled   bool              `json:"qualifying_enabled"`
	BattlesEnabled      bool              `json:"battles_enabled"`
	QualifyingLaps      int               `json:"qualifying_laps"`
	QualifyingOrder     QualifyingOrder   `json:"qualifying_order"`
	QualifyingProcedure seeding.Procedure `json:"qualifying_procedure"`
	ScoreFormula        scoring.Formula   `json:"score_formula"`
}

// Tournament is one competition.
type Tournament struct {
	ID int64 `json:"id"`
	Settings
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Entry is a driver entered in a tournament, or a bye padding its bracket.
type Entry struct {
	ID                 int64 `json:"id"`
	TournamentID       int64 `json:"tournament_id"`
	DriverID           int64 `json:"driver_id"`
	Number             int   `json:"number"`
	Bye                bool  `json:"bye"`
	QualifyingPosition *int  `json:"qualifying_position,omitempty"`
	FinishingPosition  *int  `json:"finishing_position,omitempty"`
}

// Competitor returns the bracket variant of e.
func (e Entry) Competitor() competitor.Competitor {
	if e.Bye {
		return competitor.Bye{Entry: e.ID}
	}
	return e.Driver()
}

// Driver returns e as a real driver.
func (e Entry) Driver() competitor.Driver {
	return competitor.Driver{Entry: e.ID, DriverID: e.DriverID, Number: e.Number}
}

// Judge is a driver judging a tournament. Points are advisory.
type Judge struct {
	ID           int64   `json:"id"`
	TournamentID int64   `json:"tournament_id"`
	DriverID     int64   `json:"driver_id"`
	Points       float64 `json:"points"`
}

// Lap is one qualifying run of an entry with its per-judge scores.
type Lap struct {
	ID      int64 `json:"id"`
	EntryID int64 `json:"entry_id"`
	Round   int   `json:"round"`
	// Penalty is added to the aggregated score; deductions are negative.
	Penalty float64 `json:"penalty"`
	// Scores maps judge id to raw score.
	Scores map[int64]float64 `json:"scores"`
}

// LapView is a lap ready to be shown to judges.
type LapView struct {
	Lap
	Driver   competitor.Driver  `json:"driver"`
	Profile  competitor.Profile `json:"profile"`
	Judges   int                `json:"judges"`
	Score    float64            `json:"score"`
	Complete bool               `json:"complete"`
}

// BattleView is a battle with its votes and driver display data.
type BattleView struct {
	battle.Battle
	State        battle.State        `json:"state"`
	LeftProfile  *competitor.Profile `json:"left_profile,omitempty"`
	RightProfile *competitor.Profile `json:"right_profile,omitempty"`
	Votes        []battle.Vote       `json:"votes"`
	Outcome      battle.Outcome      `json:"outcome"`
}

// VoteResult is what a judge gets back after voting.
type VoteResult struct {
	Outcome battle.Outcome `json:"outcome"`
	Battle  BattleView     `json:"battle"`
	// Advanced are the other battles that changed because of the decision.
	Advanced []BattleView `json:"advanced,omitempty"`
	State    State        `json:"state"`
}

// Standing is a row of the final standings with display data.
type Standing struct {
	standings.Standing
	Profile competitor.Profile `json:"profile"`
}

// Rating is the stored, undecayed rating of a driver on one track.
type Rating struct {
	DriverID     int64      `json:"driver_id"`
	Track        string     `json:"track"`
	Elo          float64    `json:"elo"`
	LastBattleAt *time.Time `json:"last_battle_at,omitempty"`
	TotalBattles int        `json:"total_battles"`
}

// RatingView is a rating as displayed at a point in time.
type RatingView struct {
	Rating
	Effective float64 `json:"effective"`
	Penalty   float64 `json:"penalty"`
}

// RatingChange is one entry of a driver's rating history.
type RatingChange struct {
	ID          int64     `json:"id"`
	DriverID    int64     `json:"driver_id"`
	Track       string    `json:"track"`
	BattleID    int64     `json:"battle_id"`
	OpponentID  int64     `json:"opponent_id"`
	StartRating float64   `json:"start_rating"`
	EndRating   float64   `json:"end_rating"`
	Penalty     float64   `json:"penalty"`
	CreatedAt   time.Time `json:"created_at"`
}
