package pubsub

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	at := time.Date(2025, 5, 17, 14, 0, 0, 0, time.UTC)
	a := NewEnvelope(EventStateChanged, 7, at, StateChanged{From: "START", To: "QUALIFYING"})
	b := NewEnvelope(EventStateChanged, 7, at, StateChanged{From: "START", To: "QUALIFYING"})

	_, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, int64(7), a.TournamentID)
}

func TestEncodeDecode_BattleDecided(t *testing.T) {
	at := time.Date(2025, 5, 17, 14, 0, 0, 0, time.UTC)
	env := NewEnvelope(EventBattleDecided, 3, at, BattleDecided{BattleID: 12, Round: 1000, Side: "UPPER", WinnerEntry: 4, LoserEntry: 9})

	data, err := Encode(env)
	require.NoError(t, err)

	var got struct {
		ID         string        `msgpack:"id"`
		Type       EventType     `msgpack:"type"`
		OccurredAt time.Time     `msgpack:"occurred_at"`
		Payload    BattleDecided `msgpack:"payload"`
	}
	require.NoError(t, Decode(data, &got))
	assert.Equal(t, env.ID, got.ID)
	assert.Equal(t, EventBattleDecided, got.Type)
	assert.True(t, at.Equal(got.OccurredAt))
	assert.Equal(t, int64(4), got.Payload.WinnerEntry)
	assert.Equal(t, 1000, got.Payload.Round)
}

func TestNew_WithoutProjectLogsOnly(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	defer c.Close()
	assert.NoError(t, c.SendMessage(EventStandingsPublished, StandingsPublished{Placements: []Placement{{Position: 1, Entry: 2, DriverID: 20}}}))
}
