package slack

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"github.com/mauv0809/ballcrusher-stats/internal/search"
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

func testDay() *daystats.DayRecord {
	return daystats.NewDayRecord(7, []daystats.PlayerEntry{
		{Name: "Cy", Rank: 3, Time: "1:20", BoxCount: 1},
		{Name: "Bo", Rank: 1, Time: "1:00", BoxCount: 2},
		{Name: "Di", Rank: 4, Time: "1:30", BoxCount: 1},
		{Name: "Al", Rank: 2, Time: "1:10", BoxCount: 3},
	})
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	message := slackapi.NewBlockMessage()
	_, _, err := notifier.sendMessage(message, true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.SlackNotifSent())
}

func TestNewNotifier_WithoutTokenIsAlwaysDryRun(t *testing.T) {
	metrics := metrics.NewMock()
	notifier := NewNotifier("", "C123", metrics)

	require.NoError(t, notifier.SendDayAnnouncement(testDay(), false))
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			_, hasDeadline := ctx.Deadline()
			assert.True(t, hasDeadline)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	_, _, err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.SlackNotifSent())
	assert.Equal(t, 0, metrics.SlackNotifFailed())
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	err := notifier.SendDayLeaderboard(testDay(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.SlackNotifSent())
	assert.Equal(t, 1, metrics.SlackNotifFailed())
}

func TestFormatDayAnnouncement(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	msg := client.formatDayAnnouncement(testDay())
	require.Len(t, msg.Blocks.BlockSet, 3)

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "First block should be a HeaderBlock")
	assert.Equal(t, "📦 Day 7 results are in! 📦", header.Text.Text)

	winner, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "🏆 *<https://instagram.com/Bo|Bo>* won in 1:00", winner.Text.Text)

	contextBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	require.True(t, ok)
	summary, ok := contextBlock.ContextElements.Elements[0].(*slackapi.TextBlockObject)
	require.True(t, ok)
	assert.Equal(t, "4 players crushed 7 boxes", summary.Text)

	t.Run("day without players", func(t *testing.T) {
		msg := client.formatDayAnnouncement(daystats.NewDayRecord(8, nil))
		require.Len(t, msg.Blocks.BlockSet, 2)
	})
}

func TestFormatDayLeaderboard(t *testing.T) {
	t.Run("lists players in rank order with medals", func(t *testing.T) {
		client := &Notifier{channelID: "C123"}
		msg := client.formatDayLeaderboard(testDay())

		require.Len(t, msg.Blocks.BlockSet, 5, "Expected header + 4 players")

		header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
		require.True(t, ok)
		assert.Equal(t, "🏆 Day 7 Leaderboard 🏆", header.Text.Text)

		first, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
		require.True(t, ok)
		assert.Contains(t, first.Text.Text, "🥇 1st <https://instagram.com/Bo|Bo>")
		assert.Contains(t, first.Text.Text, "*Time*: 1:00 | *Boxes*: 2")

		second := msg.Blocks.BlockSet[2].(*slackapi.SectionBlock)
		assert.Contains(t, second.Text.Text, "🥈 2nd")
		third := msg.Blocks.BlockSet[3].(*slackapi.SectionBlock)
		assert.Contains(t, third.Text.Text, "🥉 3rd")
		fourth := msg.Blocks.BlockSet[4].(*slackapi.SectionBlock)
		assert.Contains(t, fourth.Text.Text, "4th <https://instagram.com/Di|Di>")
	})

	t.Run("truncates long leaderboards", func(t *testing.T) {
		players := make([]daystats.PlayerEntry, 0, 12)
		for i := 1; i <= 12; i++ {
			players = append(players, daystats.PlayerEntry{Name: "P", Rank: i, Time: "1:00", BoxCount: 1})
		}
		client := &Notifier{channelID: "C123"}
		msg := client.formatDayLeaderboard(daystats.NewDayRecord(1, players))

		require.Len(t, msg.Blocks.BlockSet, 1+leaderboardSize+1)
		more, ok := msg.Blocks.BlockSet[len(msg.Blocks.BlockSet)-1].(*slackapi.ContextBlock)
		require.True(t, ok)
		assert.Equal(t, "…and 2 more", more.ContextElements.Elements[0].(*slackapi.TextBlockObject).Text)
	})

	t.Run("empty day", func(t *testing.T) {
		client := &Notifier{channelID: "C123"}
		msg := client.formatDayLeaderboard(daystats.NewDayRecord(2, nil))
		require.Len(t, msg.Blocks.BlockSet, 2, "Expected 2 blocks (header + message)")
	})
}

func TestFormatPlayerStats(t *testing.T) {
	entry := &search.Entry{Key: "bo", Name: "Bo", Records: []search.Record{
		{Day: 1, Rank: 2, Time: "1:10", Seconds: 70, BoxCount: 1},
		{Day: 3, Rank: 1, Time: "0:58", Seconds: 58, BoxCount: 2},
		{Day: 2, Rank: math.MaxInt32, Time: "--:--", Seconds: math.Inf(1), BoxCount: 1},
	}}

	client := &Notifier{channelID: "C123"}
	msg := client.formatPlayerStats(entry)
	require.Len(t, msg.Blocks.BlockSet, 3)

	header := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	assert.Equal(t, "📊 Stats for Bo 📊", header.Text.Text)

	records := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	assert.Equal(t,
		"> *Day 3*: 1st in 0:58 (2 boxes)\n> *Day 2*: unranked in --:-- (1 boxes)\n> *Day 1*: 2nd in 1:10 (1 boxes)",
		records.Text.Text)

	totals := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	assert.Equal(t, "Days played: 3 | Wins: 1 | Boxes: 4 | Best time: 0:58",
		totals.ContextElements.Elements[0].(*slackapi.TextBlockObject).Text)
}

func TestFormatPlayerNotFound(t *testing.T) {
	client := &Notifier{channelID: "C123"}

	msg := client.formatPlayerNotFound("al", nil)
	require.Len(t, msg.Blocks.BlockSet, 1)
	section := msg.Blocks.BlockSet[0].(*slackapi.SectionBlock)
	assert.Equal(t, "Sorry, I couldn't find a player matching *al*. Try a different name.", section.Text.Text)

	msg = client.formatPlayerNotFound("al", []string{"Alice", "Alan"})
	require.Len(t, msg.Blocks.BlockSet, 2)
	hint := msg.Blocks.BlockSet[1].(*slackapi.ContextBlock)
	assert.Equal(t, "Did you mean: Alice, Alan?", hint.ContextElements.Elements[0].(*slackapi.TextBlockObject).Text)
}

func TestFormatResponses_RejectNil(t *testing.T) {
	client := &Notifier{channelID: "C123"}
	_, err := client.FormatDayLeaderboardResponse(nil)
	assert.Error(t, err)
	_, err = client.FormatPlayerStatsResponse(nil)
	assert.Error(t, err)
}
