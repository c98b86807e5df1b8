package pubsub

import (
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/google/uuid"
)

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub. It doubles
// as the topic name.
type EventType string

const (
	EventBattleDecided      EventType = "battle-decided"
	EventStateChanged       EventType = "tournament-state-changed"
	EventStandingsPublished EventType = "standings-published"
)

// Envelope wraps every published event.
type Envelope struct {
	ID           string    `msgpack:"id"`
	Type         EventType `msgpack:"type"`
	TournamentID int64     `msgpack:"tournament_id"`
	OccurredAt   time.Time `msgpack:"occurred_at"`
	Payload      any       `msgpack:"payload"`
}

// NewEnvelope stamps payload with a fresh event id.
func NewEnvelope(t EventType, tournamentID int64, at time.Time, payload any) Envelope {
	return Envelope{
		ID:           uuid.NewString(),
		Type:         t,
		TournamentID: tournamentID,
		OccurredAt:   at,
		Payload:      payload,
	}
}

// BattleDecided is published for every battle that gets a winner, including
// battles resolved against a bye.
type BattleDecided struct {
	BattleID    int64  `msgpack:"battle_id"`
	Round       int    `msgpack:"round"`
	Side        string `msgpack:"side"`
	WinnerEntry int64  `msgpack:"winner_entry"`
	LoserEntry  int64  `msgpack:"loser_entry"`
	Bye         bool   `msgpack:"bye"`
}

// StateChanged is published when a tournament moves through its lifecycle.
type StateChanged struct {
	From string `msgpack:"from"`
	To   string `msgpack:"to"`
}

// Placement is one row of published standings.
type Placement struct {
	Position int   `msgpack:"position"`
	Entry    int64 `msgpack:"entry"`
	DriverID int64 `msgpack:"driver_id"`
}

// StandingsPublished is published when final standings are written.
type StandingsPublished struct {
	Placements []Placement `msgpack:"placements"`
}
