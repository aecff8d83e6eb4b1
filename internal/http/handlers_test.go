package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mauv0809/ballcrusher-stats/internal/config"
	"github.com/mauv0809/ballcrusher-stats/internal/database"
	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
	"github.com/mauv0809/ballcrusher-stats/internal/detail"
	"github.com/mauv0809/ballcrusher-stats/internal/extrabox"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"github.com/mauv0809/ballcrusher-stats/internal/notifier"
	slacknotifier "github.com/mauv0809/ballcrusher-stats/internal/notifier/slack"
	"github.com/mauv0809/ballcrusher-stats/internal/pubsub"
	"github.com/mauv0809/ballcrusher-stats/internal/search"
	"github.com/mauv0809/ballcrusher-stats/internal/session"
	"github.com/mauv0809/ballcrusher-stats/internal/source"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSlackSigningSecret = "test-signing-secret"

const testPayload = `{"day_stats":[
	{"day":1,"players":[{"name":"Alice","rank":1,"time":"0:50"},{"name":"Alan","rank":2,"time":"0:55"}]},
	{"day":2,"players":[{"name":"Bo","rank":1,"time":"1:00","boxs":2},{"name":"Alice","rank":2,"time":"--:--"}]}
]}`

type testServer struct {
	*Server
	fetcher *source.Mock
	pubsub  *pubsub.MockPubSubClient
}

// setupTestServer initializes a new server with an in-memory database and mock collaborators.
func setupTestServer(t *testing.T, fetcher *source.Mock, notifier notifier.Notifier, cfg config.Config) testServer {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)
	t.Cleanup(dbTeardown)

	reg := prometheus.NewRegistry()
	metricsSvc := metrics.NewService(reg)
	metricsHandler := metrics.NewMetricsHandler(reg)
	pubsub := pubsub.NewMock()
	sess := session.New(fetcher, notifier, metricsSvc, pubsub, detail.Immediate{})

	server := NewServer(sess, extrabox.New(db), metrics.NewUsageStore(db), metricsSvc, metricsHandler, cfg, notifier)
	return testServer{Server: server, fetcher: fetcher, pubsub: pubsub}
}

func defaultTestServer(t *testing.T) testServer {
	return setupTestServer(t, source.NewMock([]byte(testPayload)), slacknotifier.NewNotifier("", "C123", metrics.NewMock()), config.Config{})
}

func (s testServer) do(t *testing.T, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

// createSlackCommandRequest creates an http.Request suitable for testing Slack slash commands,
// including the necessary signature and timestamp headers for verification.
func createSlackCommandRequest(t *testing.T, targetURL string, form url.Values, signingSecret string) *http.Request {
	t.Helper()

	bodyBytes := []byte(form.Encode())
	req, err := http.NewRequest("POST", targetURL, bytes.NewReader(bodyBytes))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	timestamp := time.Now().Unix()
	req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(timestamp, 10))

	baseString := fmt.Sprintf("v0:%d:%s", timestamp, string(bodyBytes))
	h := hmac.New(sha256.New, []byte(signingSecret))
	h.Write([]byte(baseString))
	req.Header.Set("X-Slack-Signature", "v0="+hex.EncodeToString(h.Sum(nil)))

	return req
}

func TestHealthCheckHandler(t *testing.T) {
	server := defaultTestServer(t)

	rr := server.do(t, "GET", "/health")

	assert.Equal(t, http.StatusOK, rr.Code, "handler returned wrong status code")
	assert.Equal(t, "OK!", rr.Body.String(), "handler returned unexpected body")
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRequestIDIsPropagated(t *testing.T) {
	server := defaultTestServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	server := defaultTestServer(t)
	server.do(t, "GET", "/days")

	rr := server.do(t, "GET", "/metrics")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ballcrusher_dataset_fetches_total 1")
}

func TestListDaysHandler(t *testing.T) {
	t.Run("lists newest first", func(t *testing.T) {
		server := defaultTestServer(t)

		rr := server.do(t, "GET", "/days")
		require.Equal(t, http.StatusOK, rr.Code)

		days := decode[[]session.DayPreview](t, rr)
		require.Len(t, days, 2)
		assert.Equal(t, session.DayPreview{Day: 2, Winner: "Bo", WinnerTime: "1:00", PlayerCount: 2}, days[0])
		assert.Equal(t, 1, days[1].Day)
	})

	t.Run("upstream failure is a bad gateway", func(t *testing.T) {
		fetcher := &source.Mock{FetchFunc: func(ctx context.Context) ([]byte, error) {
			return nil, &daystats.NetworkError{StatusCode: 503}
		}}
		server := setupTestServer(t, fetcher, notifier.NewMock(), config.Config{})

		rr := server.do(t, "GET", "/days")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		resp := decode[errorResponse](t, rr)
		assert.Equal(t, 503, resp.UpstreamStatus)
		assert.Equal(t, "failed to load stats (503)", resp.Error)
	})

	t.Run("malformed payload is a bad gateway", func(t *testing.T) {
		server := setupTestServer(t, source.NewMock([]byte(`{"nope":1}`)), notifier.NewMock(), config.Config{})

		rr := server.do(t, "GET", "/days")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
		assert.Contains(t, decode[errorResponse](t, rr).Error, "unexpected data format")
	})
}

func TestDayPanelHandlers(t *testing.T) {
	server := defaultTestServer(t)

	rr := server.do(t, "POST", "/days/2/open")
	require.Equal(t, http.StatusOK, rr.Code)
	view := decode[map[string]any](t, rr)
	assert.Equal(t, "confirming", view["state"])
	assert.Equal(t, detail.HeavyViewWarning, view["warning"])

	rr = server.do(t, "POST", "/days/2/confirm?proceed=true")
	require.Equal(t, http.StatusOK, rr.Code)
	view = decode[map[string]any](t, rr)
	assert.Equal(t, "expanded", view["state"])
	players, ok := view["players"].([]any)
	require.True(t, ok)
	assert.Len(t, players, 2)

	rr = server.do(t, "GET", "/days/2")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "expanded", decode[map[string]any](t, rr)["state"])

	rr = server.do(t, "POST", "/days/2/close")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "collapsed", decode[map[string]any](t, rr)["state"])

	t.Run("toggle", func(t *testing.T) {
		rr := server.do(t, "POST", "/days/2/toggle")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "expanded", decode[map[string]any](t, rr)["state"], "day 2 was already acknowledged")

		status := decode[map[string]any](t, server.do(t, "GET", "/status"))
		assert.Equal(t, true, status["loaded"])
		assert.Equal(t, float64(2), status["expandedDay"])

		rr = server.do(t, "POST", "/days/2/toggle")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "collapsed", decode[map[string]any](t, rr)["state"])
		assert.Nil(t, decode[map[string]any](t, server.do(t, "GET", "/status"))["expandedDay"])
	})

	t.Run("errors", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, server.do(t, "GET", "/days/99").Code)
		assert.Equal(t, http.StatusBadRequest, server.do(t, "GET", "/days/two").Code)
		assert.Equal(t, http.StatusBadRequest, server.do(t, "POST", "/days/1/confirm?proceed=maybe").Code)
		assert.Equal(t, http.StatusConflict, server.do(t, "POST", "/days/1/confirm?proceed=true").Code)
		assert.Equal(t, http.StatusMethodNotAllowed, server.do(t, "GET", "/days/1/open").Code)
	})
}

func TestSearchPlayersHandler(t *testing.T) {
	server := defaultTestServer(t)

	t.Run("found", func(t *testing.T) {
		rr := server.do(t, "GET", "/players/search?q=alice&sort=time&order=asc")
		require.Equal(t, http.StatusOK, rr.Code)

		var body struct {
			Status  string `json:"status"`
			Records []struct {
				Day     int      `json:"day"`
				Seconds *float64 `json:"seconds"`
			} `json:"records"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, "found", body.Status)
		require.Len(t, body.Records, 2)
		assert.Equal(t, 1, body.Records[0].Day)
		assert.Nil(t, body.Records[1].Seconds, "unparsable times are sent as null")
	})

	t.Run("empty query", func(t *testing.T) {
		rr := server.do(t, "GET", "/players/search?q=%20")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "empty", decode[map[string]any](t, rr)["status"])
	})

	t.Run("ambiguous query is not found with candidates", func(t *testing.T) {
		rr := server.do(t, "GET", "/players/search?q=al")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		body := decode[session.PlayerSearch](t, rr)
		assert.ElementsMatch(t, []string{"Alice", "Alan"}, body.Candidates)
	})

	t.Run("invalid sort", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, server.do(t, "GET", "/players/search?q=bo&sort=name").Code)
		assert.Equal(t, http.StatusBadRequest, server.do(t, "GET", "/players/search?q=bo&order=up").Code)
	})

	t.Run("usage is recorded", func(t *testing.T) {
		rr := server.do(t, "GET", "/usage")
		require.Equal(t, http.StatusOK, rr.Code)
		usage := decode[map[string]int](t, rr)
		assert.Equal(t, 1, usage["search_found"])
		assert.Equal(t, 1, usage["search_empty"])
		assert.Equal(t, 1, usage["search_not_found"])
	})
}

func TestSuggestionsHandler(t *testing.T) {
	server := defaultTestServer(t)

	rr := server.do(t, "GET", "/players/suggestions")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"Alan", "Alice", "Bo"}, decode[[]string](t, rr))
}

func TestReloadHandler(t *testing.T) {
	server := defaultTestServer(t)
	server.do(t, "GET", "/days")

	rr := server.do(t, "POST", "/reload?dry_run=true")
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[reloadResponse](t, rr)
	assert.Equal(t, reloadResponse{Generation: 1, Days: 2, NewestDay: 2, DryRun: true}, resp)
	assert.Equal(t, 2, server.fetcher.Calls())

	sent := server.pubsub.Sent()
	require.Len(t, sent, 1, "dry run publishes no reload event")
	assert.Equal(t, pubsub.EventDatasetLoaded, sent[0].Topic)

	rr = server.do(t, "POST", "/reload")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, server.pubsub.Sent(), 2)
}

func TestReloadHandler_AdminToken(t *testing.T) {
	cfg := config.Config{AdminToken: "s3cret"}
	server := setupTestServer(t, source.NewMock([]byte(testPayload)), notifier.NewMock(), cfg)

	assert.Equal(t, http.StatusUnauthorized, server.do(t, "POST", "/reload").Code)
	assert.Equal(t, http.StatusUnauthorized, server.do(t, "POST", "/reload?token=wrong").Code)

	req := httptest.NewRequest("POST", "/reload", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, 0, server.fetcher.Calls(), "rejected reloads never fetch")

	req = httptest.NewRequest("POST", "/reload", nil)
	req.Header.Set("Authorization", "Bearer s3cret")
	rr = httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	assert.Equal(t, http.StatusOK, server.do(t, "POST", "/reload?token=s3cret").Code)
	assert.Equal(t, http.StatusOK, server.do(t, "GET", "/days").Code, "read routes stay open")
}

func TestExtraBoxesHandlers(t *testing.T) {
	server := defaultTestServer(t)

	rr := server.do(t, "GET", "/players/Bo/extra-boxes")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, extraBoxesResponse{Name: "Bo", Key: "bo", Count: 0}, decode[extraBoxesResponse](t, rr))

	server.do(t, "POST", "/players/Bo/extra-boxes")
	rr = server.do(t, "POST", "/players/bo/extra-boxes")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 2, decode[extraBoxesResponse](t, rr).Count)

	rr = server.do(t, "POST", "/players/%20/extra-boxes")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	server.do(t, "POST", "/players/Al/extra-boxes")
	rr = server.do(t, "GET", "/extra-boxes")
	require.Equal(t, http.StatusOK, rr.Code)
	counters := decode[[]extrabox.Counter](t, rr)
	require.Len(t, counters, 2)
	assert.Equal(t, "al", counters[0].Key)
	assert.Equal(t, 1, counters[0].Count)
	assert.Equal(t, "bo", counters[1].Key)
	assert.Equal(t, 2, counters[1].Count)
}

func TestListExtraBoxesHandler_Empty(t *testing.T) {
	server := defaultTestServer(t)
	rr := server.do(t, "GET", "/extra-boxes")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestRateLimitMiddleware(t *testing.T) {
	server := setupTestServer(t, source.NewMock([]byte(testPayload)), notifier.NewMock(), config.Config{RateLimitRPS: 1})

	assert.Equal(t, http.StatusOK, server.do(t, "GET", "/health").Code)
	assert.Equal(t, http.StatusTooManyRequests, server.do(t, "GET", "/health").Code)
}

func TestDayCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatDayLeaderboardResponseFunc = func(day *daystats.DayRecord) (any, error) {
		return slack.NewBlockMessage(slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strconv.Itoa(day.Day), false, false), nil, nil)), nil
	}
	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: testSlackSigningSecret}}
	server := setupTestServer(t, source.NewMock([]byte(testPayload)), mockNotifier, cfg)

	t.Run("empty text shows the newest day", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/day", url.Values{}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"text":"2"`)
	})

	t.Run("day number", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/day", url.Values{"text": {" 1 "}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"text":"1"`)
	})

	t.Run("unknown day", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/day", url.Values{"text": {"42"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("not a number", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/day", url.Values{"text": {"latest"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPlayerStatsCommandHandler(t *testing.T) {
	mockNotifier := notifier.NewMock()
	mockNotifier.FormatPlayerStatsResponseFunc = func(entry *search.Entry) (any, error) {
		return slack.Message{}, nil
	}
	cfg := config.Config{Slack: config.SlackConfig{SigningSecret: testSlackSigningSecret}}
	server := setupTestServer(t, source.NewMock([]byte(testPayload)), mockNotifier, cfg)

	t.Run("formats stats for a found player", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"bo"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
		assert.Empty(t, mockNotifier.PlayerNotFoundCalls)
	})

	t.Run("formats not found with candidates", func(t *testing.T) {
		mockNotifier.FormatPlayerNotFoundResponseFunc = func(query string, candidates []string) (any, error) {
			return slack.Message{}, nil
		}
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"al"}}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		require.Len(t, mockNotifier.PlayerNotFoundCalls, 1)
		assert.Equal(t, "al", mockNotifier.PlayerNotFoundCalls[0].Query)
		assert.ElementsMatch(t, []string{"Alice", "Alan"}, mockNotifier.PlayerNotFoundCalls[0].Candidates)
	})

	t.Run("handles missing player name", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{}, testSlackSigningSecret)
		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects request with invalid signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"bo"}}, testSlackSigningSecret)
		req.Header.Set("X-Slack-Signature", "v0=invalid-signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with missing signature", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"bo"}}, testSlackSigningSecret)
		req.Header.Del("X-Slack-Signature")

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("rejects request with outdated timestamp", func(t *testing.T) {
		req := createSlackCommandRequest(t, "/slack/command/player-stats", url.Values{"text": {"bo"}}, testSlackSigningSecret)
		req.Header.Set("X-Slack-Request-Timestamp", strconv.FormatInt(time.Now().Add(-6*time.Minute).Unix(), 10))

		rr := httptest.NewRecorder()
		server.Router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestSlackCommands_WithRealNotifier(t *testing.T) {
	server := defaultTestServer(t)

	req := httptest.NewRequest("POST", "/slack/command/player-stats", strings.NewReader(url.Values{"text": {"Bo"}}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	server.Router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, "no signing secret means no verification")
	assert.Contains(t, rr.Body.String(), "Stats for Bo")
}
