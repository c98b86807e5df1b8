package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/mauv0809/drift-bracket/internal/directory"
	"github.com/mauv0809/drift-bracket/internal/tournament"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// withApp points the commands at a mocked engine and directory.
func withApp(t *testing.T) (*tournament.MockService, *bytes.Buffer) {
	t.Helper()
	engine := tournament.NewMock()
	drivers := directory.NewMock(
		directory.Driver{ID: 7, Name: "Daigo Saito"},
		directory.Driver{ID: 9, Name: "James Deane"},
		directory.Driver{ID: 900, Name: "Ryan Tuerck"},
	)
	prev := app
	app = &application{engine: engine, drivers: drivers}
	t.Cleanup(func() { app = prev })
	return engine, &bytes.Buffer{}
}

func run(t *testing.T, cmd *cobra.Command, out *bytes.Buffer, args ...string) error {
	t.Helper()
	cmd.SetContext(context.Background())
	cmd.SetOut(out)
	return cmd.RunE(cmd, args)
}

func TestBattleVote(t *testing.T) {
	t.Cleanup(func() { oneMoreTime = false })

	t.Run("winner by name", func(t *testing.T) {
		engine, out := withApp(t)
		oneMoreTime = false
		require.NoError(t, run(t, battleVoteCmd, out, "12", "Ryan Tuerck", "james deane"))

		require.Len(t, engine.VoteCalls, 1)
		call := engine.VoteCalls[0]
		assert.Equal(t, int64(12), call.BattleID)
		assert.Equal(t, int64(900), call.JudgeDriverID)
		assert.Equal(t, int64(9), call.WinnerDriverID)
		assert.False(t, call.OMT)
		assert.Contains(t, out.String(), "outcome")
	})

	t.Run("one more time", func(t *testing.T) {
		engine, out := withApp(t)
		oneMoreTime = true
		require.NoError(t, run(t, battleVoteCmd, out, "12", "900"))

		require.Len(t, engine.VoteCalls, 1)
		assert.True(t, engine.VoteCalls[0].OMT)
		assert.Zero(t, engine.VoteCalls[0].WinnerDriverID)
	})

	t.Run("winner and omt together", func(t *testing.T) {
		engine, out := withApp(t)
		oneMoreTime = true
		assert.Error(t, run(t, battleVoteCmd, out, "12", "900", "7"))
		assert.Empty(t, engine.VoteCalls)
	})

	t.Run("unknown judge", func(t *testing.T) {
		engine, out := withApp(t)
		oneMoreTime = false
		err := run(t, battleVoteCmd, out, "12", "Nobody", "7")
		assert.ErrorIs(t, err, directory.ErrDriverNotFound)
		assert.Empty(t, engine.Calls)
	})
}

func TestRosterAdd_ResolvesNames(t *testing.T) {
	engine, out := withApp(t)
	require.NoError(t, run(t, rosterAddCmd, out, "3", "Daigo Saito", "9"))

	require.Len(t, engine.AddDriversCalls, 1)
	assert.Equal(t, int64(3), engine.AddDriversCalls[0].ID)
	assert.Equal(t, []int64{7, 9}, engine.AddDriversCalls[0].DriverIDs)
}

func TestLapNext_AllScored(t *testing.T) {
	engine, out := withApp(t)
	require.NoError(t, run(t, lapNextCmd, out, "3"))
	assert.Equal(t, []string{"NextLap"}, engine.Calls)
	assert.Equal(t, "Every lap is scored\n", out.String())
}
