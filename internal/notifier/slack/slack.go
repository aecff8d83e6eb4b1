package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"github.com/mauv0809/ballcrusher-stats/internal/notifier"
	"github.com/mauv0809/ballcrusher-stats/internal/search"
	"github.com/slack-go/slack"
)

// leaderboardSize is how many players a day leaderboard message lists.
const leaderboardSize = 10

const sendTimeout = 10 * time.Second

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
	// alwaysDryRun is set when no bot token is configured.
	alwaysDryRun bool
}

// NewNotifier creates a new Notifier. Without a token every message is only logged.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	if token == "" {
		log.Warn("No Slack bot token configured, notifications run in dry-run mode")
		return &Notifier{
			channelID:    channelID,
			metrics:      metrics,
			alwaysDryRun: true,
		}
	}
	return &Notifier{
		api:       slack.New(token),
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.alwaysDryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-channel", "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

// SendDayAnnouncement posts the newest day and its winner.
func (s *Notifier) SendDayAnnouncement(day *daystats.DayRecord, dryRun bool) error {
	msg := s.formatDayAnnouncement(day)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// SendDayLeaderboard posts the top of a day's leaderboard.
func (s *Notifier) SendDayLeaderboard(day *daystats.DayRecord, dryRun bool) error {
	msg := s.formatDayLeaderboard(day)
	_, _, err := s.sendMessage(msg, dryRun)
	return err
}

// FormatDayLeaderboardResponse formats a day leaderboard for a slash command response.
func (s *Notifier) FormatDayLeaderboardResponse(day *daystats.DayRecord) (any, error) {
	if day == nil {
		return nil, fmt.Errorf("no day to format")
	}
	return s.formatDayLeaderboard(day), nil
}

// FormatPlayerStatsResponse formats a player's records for a slash command response.
func (s *Notifier) FormatPlayerStatsResponse(entry *search.Entry) (any, error) {
	if entry == nil {
		return nil, fmt.Errorf("no player to format")
	}
	return s.formatPlayerStats(entry), nil
}

// FormatPlayerNotFoundResponse formats a player not found message for a slash command response.
func (s *Notifier) FormatPlayerNotFoundResponse(query string, candidates []string) (any, error) {
	return s.formatPlayerNotFound(query, candidates), nil
}

// formatDayAnnouncement creates the Slack message for a newly published day.
func (s *Notifier) formatDayAnnouncement(day *daystats.DayRecord) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("📦 Day %d results are in! 📦", day.Day), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	winner := day.Winner()
	if winner == nil {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "Nobody played this day.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	winnerText := fmt.Sprintf("🏆 *%s* won in %s", playerLink(winner.Name), winner.Time)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", winnerText, false, false), nil, nil))

	contextText := fmt.Sprintf("%d players crushed %d boxes", len(day.Players), totalBoxes(day.Players))
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", contextText, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatDayLeaderboard lists the best players of a day in rank order.
func (s *Notifier) formatDayLeaderboard(day *daystats.DayRecord) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", fmt.Sprintf("🏆 Day %d Leaderboard 🏆", day.Day), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	players := day.SortedPlayers()
	if len(players) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No results for this day.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for i, player := range players {
		if i == leaderboardSize {
			break
		}
		playerText := fmt.Sprintf("%s %s\n> *Time*: %s | *Boxes*: %d",
			placeLabel(i+1, player.Rank),
			playerLink(player.Name),
			player.Time,
			player.BoxCount,
		)
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", playerText, false, false), nil, nil))
	}

	if len(players) > leaderboardSize {
		more := fmt.Sprintf("…and %d more", len(players)-leaderboardSize)
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", more, true, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerStats creates a Slack message to display every day a player took part in.
func (s *Notifier) formatPlayerStats(entry *search.Entry) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := fmt.Sprintf("📊 Stats for %s 📊", entry.Name)
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	records := search.Sort(entry, search.FieldDay, search.Desc)
	lines := make([]string, 0, len(records))
	wins, boxes := 0, 0
	best := math.Inf(1)
	bestTime := ""
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("> *Day %d*: %s in %s (%d boxes)", r.Day, rankLabel(r.Rank), r.Time, r.BoxCount))
		if r.Rank == 1 {
			wins++
		}
		boxes += r.BoxCount
		if r.Seconds < best {
			best = r.Seconds
			bestTime = r.Time
		}
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", strings.Join(lines, "\n"), false, false), nil, nil))

	totals := fmt.Sprintf("Days played: %d | Wins: %d | Boxes: %d", len(records), wins, boxes)
	if bestTime != "" {
		totals += " | Best time: " + bestTime
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", totals, true, false)))

	return slack.NewBlockMessage(blocks...)
}

// formatPlayerNotFound creates a Slack message for a query that matched no single player.
func (s *Notifier) formatPlayerNotFound(query string, candidates []string) slack.Message {
	text := fmt.Sprintf("Sorry, I couldn't find a player matching *%s*. Try a different name.", query)
	blocks := []slack.Block{
		slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", text, false, false), nil, nil),
	}
	if len(candidates) > 0 {
		hint := "Did you mean: " + strings.Join(candidates, ", ") + "?"
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", hint, true, false)))
	}
	return slack.NewBlockMessage(blocks...)
}

// placeLabel renders a leaderboard position with a medal for the podium.
func placeLabel(position, rank int) string {
	var medal string
	switch position {
	case 1:
		medal = "🥇"
	case 2:
		medal = "🥈"
	case 3:
		medal = "🥉"
	}
	label := rankLabel(rank)
	if medal == "" {
		return label
	}
	return medal + " " + label
}

func rankLabel(rank int) string {
	if rank == math.MaxInt32 {
		return "unranked"
	}
	return daystats.Ordinal(rank)
}

func playerLink(name string) string {
	link := daystats.InstagramLink(name)
	if link == "#" {
		return name
	}
	return fmt.Sprintf("<%s|%s>", link, name)
}

func totalBoxes(players []daystats.PlayerEntry) int {
	total := 0
	for _, p := range players {
		total += p.BoxCount
	}
	return total
}
