// Package notifier announces tournament results outside the engine.
package notifier

import (
	"context"

	"github.com/mauv0809/drift-bracket/internal/competitor"
)

// Notifier sends result notifications to a chat provider.
type Notifier interface {
	// For every battle decided by the judges
	SendBattleResult(ctx context.Context, result BattleResult) error
	// For the final standings of a tournament
	SendStandings(ctx context.Context, standings Standings) error
}

// BattleResult is a decided battle between two drivers.
type BattleResult struct {
	TournamentID int64
	Tournament   string
	BattleID     int64
	Round        int
	Side         string
	Winner       competitor.Profile
	Loser        competitor.Profile
}

// Standings is the finishing order of an ended tournament.
type Standings struct {
	TournamentID int64
	Tournament   string
	Rows         []Placement
}

// Placement is one row of Standings.
type Placement struct {
	Position int
	Driver   competitor.Profile
}
