package slack

import (
	"context"
	"errors"
	"testing"

	"github.com/mauv0809/drift-bracket/internal/competitor"
	"github.com/mauv0809/drift-bracket/internal/metrics"
	"github.com/mauv0809/drift-bracket/internal/notifier"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline, "post should run with a timeout")
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", metrics)

	err := n.SendBattleResult(context.Background(), notifier.BattleResult{
		Tournament: "Ebisu Matsuri",
		Round:      1,
		Winner:     competitor.Profile{DriverID: 7, Name: "Daigo Saito"},
		Loser:      competitor.Profile{DriverID: 9, Name: "James Deane"},
	})

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.NotificationsSent())
	assert.Equal(t, 0, metrics.NotificationsFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", metrics)

	err := n.SendStandings(context.Background(), notifier.Standings{Tournament: "Ebisu Matsuri"})

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.NotificationsSent())
	assert.Equal(t, 1, metrics.NotificationsFailed())
}

func TestFormatBattleResult(t *testing.T) {
	testCases := []struct {
		name        string
		result      notifier.BattleResult
		wantHeader  string
		wantDetails string
		wantContext string
	}{
		{
			name: "named drivers",
			result: notifier.BattleResult{
				Tournament: "Ebisu Matsuri",
				Round:      2,
				Winner:     competitor.Profile{DriverID: 7, Name: "Daigo Saito"},
				Loser:      competitor.Profile{DriverID: 9, Name: "James Deane"},
			},
			wantHeader:  "🏁 Daigo Saito wins! 🏁",
			wantDetails: "Daigo Saito defeated James Deane",
			wantContext: "Ebisu Matsuri | Round 2",
		},
		{
			name: "lower bracket without names",
			result: notifier.BattleResult{
				Tournament: "Ebisu Matsuri",
				Round:      3,
				Side:       "LOWER",
				Winner:     competitor.Profile{DriverID: 7},
				Loser:      competitor.Profile{DriverID: 9},
			},
			wantHeader:  "🏁 Driver #7 wins! 🏁",
			wantDetails: "Driver #7 defeated Driver #9",
			wantContext: "Ebisu Matsuri | Round 3 | lower bracket",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			msg := formatBattleResult(tc.result)
			require.Len(t, msg.Blocks.BlockSet, 3)

			header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
			require.True(t, ok, "first block should be a header")
			assert.Equal(t, tc.wantHeader, header.Text.Text)

			section, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
			require.True(t, ok, "second block should be a section")
			assert.Equal(t, tc.wantDetails, section.Text.Text)

			ctxBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
			require.True(t, ok, "third block should be a context")
			require.Len(t, ctxBlock.ContextElements.Elements, 1)
			text, ok := ctxBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
			require.True(t, ok)
			assert.Equal(t, tc.wantContext, text.Text)
		})
	}
}

func TestFormatStandings(t *testing.T) {
	t.Run("podium and field", func(t *testing.T) {
		msg := formatStandings(notifier.Standings{
			Tournament: "Ebisu Matsuri",
			Rows: []notifier.Placement{
				{Position: 1, Driver: competitor.Profile{DriverID: 7, Name: "Daigo Saito"}},
				{Position: 2, Driver: competitor.Profile{DriverID: 9, Name: "James Deane"}},
				{Position: 3, Driver: competitor.Profile{DriverID: 11}},
				{Position: 4, Driver: competitor.Profile{DriverID: 12, Name: "Ryan Tuerck"}},
			},
		})
		require.Len(t, msg.Blocks.BlockSet, 2)

		header := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		assert.Equal(t, "🏆 Ebisu Matsuri final standings 🏆", header.Text.Text)

		section := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		assert.Equal(t, "1. 🥇 Daigo Saito\n2. 🥈 James Deane\n3. 🥉 Driver #11\n4. Ryan Tuerck", section.Text.Text)
	})

	t.Run("empty", func(t *testing.T) {
		msg := formatStandings(notifier.Standings{Tournament: "Ebisu Matsuri"})
		require.Len(t, msg.Blocks.BlockSet, 2)
		section := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		assert.Equal(t, "Nobody finished this one.", section.Text.Text)
	})
}
