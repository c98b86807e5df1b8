package slack

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/competitor"
	"github.com/mauv0809/drift-bracket/internal/metrics"
	"github.com/mauv0809/drift-bracket/internal/notifier"
	"github.com/slack-go/slack"
)

const postTimeout = 10 * time.Second

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts tournament results to a Slack channel.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	return NewNotifierWithAPI(slack.New(token), channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message) (string, string, error) {
	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotificationsFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotificationsSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendBattleResult(ctx context.Context, result notifier.BattleResult) error {
	_, _, err := s.sendMessage(ctx, formatBattleResult(result))
	return err
}

func (s *Notifier) SendStandings(ctx context.Context, standings notifier.Standings) error {
	_, _, err := s.sendMessage(ctx, formatStandings(standings))
	return err
}

func formatBattleResult(result notifier.BattleResult) slack.Message {
	blocks := make([]slack.Block, 0, 3)

	header := fmt.Sprintf("🏁 %s wins! 🏁", displayName(result.Winner))
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", header, true, false)))

	details := fmt.Sprintf("%s defeated %s", displayName(result.Winner), displayName(result.Loser))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", details, true, false), nil, nil))

	where := fmt.Sprintf("%s | Round %d", result.Tournament, result.Round)
	if result.Side != "" {
		where += " | " + strings.ToLower(result.Side) + " bracket"
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", where, true, false)))

	return slack.NewBlockMessage(blocks...)
}

func formatStandings(standings notifier.Standings) slack.Message {
	blocks := make([]slack.Block, 0, len(standings.Rows)+1)

	header := fmt.Sprintf("🏆 %s final standings 🏆", standings.Tournament)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", header, true, false)))

	if len(standings.Rows) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Nobody finished this one.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	lines := make([]string, 0, len(standings.Rows))
	for _, row := range standings.Rows {
		var medal string
		switch row.Position {
		case 1:
			medal = "🥇 "
		case 2:
			medal = "🥈 "
		case 3:
			medal = "🥉 "
		}
		lines = append(lines, fmt.Sprintf("%d. %s%s", row.Position, medal, displayName(row.Driver)))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

func displayName(p competitor.Profile) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("Driver #%d", p.DriverID)
}
