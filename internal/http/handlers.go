package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/ballcrusher-stats/internal/dataset"
	"github.com/mauv0809/ballcrusher-stats/internal/daystats"
	"github.com/mauv0809/ballcrusher-stats/internal/detail"
	"github.com/mauv0809/ballcrusher-stats/internal/extrabox"
	"github.com/mauv0809/ballcrusher-stats/internal/search"
	"github.com/slack-go/slack"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

// StatusHandler reports the in-memory dataset, index and panel state.
func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Session.Status())
	}
}

// UsageHandler serves the persisted usage counters.
func (s *Server) UsageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Usage.GetAll()
		if err != nil {
			http.Error(w, "Failed to get usage counters", http.StatusInternalServerError)
			log.Error("Failed to get usage counters", "error", err)
			return
		}
		writeJSON(w, http.StatusOK, counters)
	}
}

// ListDaysHandler lists a preview of every day, newest first.
func (s *Server) ListDaysHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		days, err := s.Session.Days(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, days)
	}
}

// DayHandler returns the panel of one day.
func (s *Server) DayHandler() http.HandlerFunc {
	return s.panelHandler(func(ctx context.Context, r *http.Request, day int) (detail.View, error) {
		return s.Session.View(ctx, day)
	})
}

// OpenDayHandler asks to reveal a day's leaderboard.
func (s *Server) OpenDayHandler() http.HandlerFunc {
	return s.panelHandler(func(ctx context.Context, r *http.Request, day int) (detail.View, error) {
		s.Usage.Increment("day_opens")
		return s.Session.Open(ctx, day)
	})
}

// ConfirmDayHandler answers the heavy-view warning. proceed is required.
func (s *Server) ConfirmDayHandler() http.HandlerFunc {
	return s.panelHandler(func(ctx context.Context, r *http.Request, day int) (detail.View, error) {
		proceed, err := strconv.ParseBool(r.URL.Query().Get("proceed"))
		if err != nil {
			return detail.View{}, errBadRequest("proceed must be true or false")
		}
		return s.Session.Confirm(ctx, day, proceed)
	})
}

// ToggleDayHandler opens a closed panel and closes an open one.
func (s *Server) ToggleDayHandler() http.HandlerFunc {
	return s.panelHandler(func(ctx context.Context, r *http.Request, day int) (detail.View, error) {
		return s.Session.Toggle(ctx, day)
	})
}

// CloseDayHandler collapses a day panel.
func (s *Server) CloseDayHandler() http.HandlerFunc {
	return s.panelHandler(func(ctx context.Context, r *http.Request, day int) (detail.View, error) {
		return s.Session.Close(ctx, day)
	})
}

func (s *Server) panelHandler(action func(ctx context.Context, r *http.Request, day int) (detail.View, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day, err := strconv.Atoi(r.PathValue("day"))
		if err != nil {
			writeError(w, errBadRequest("day must be an integer"))
			return
		}
		view, err := action(r.Context(), r, day)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)
	}
}

// SuggestionsHandler lists every known player name.
func (s *Server) SuggestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		names, err := s.Session.Suggestions(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, names)
	}
}

// SearchPlayersHandler resolves a player query and returns the sorted records.
func (s *Server) SearchPlayersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		field, err := search.ParseField(query.Get("sort"))
		if err != nil {
			writeError(w, errBadRequest(err.Error()))
			return
		}
		order, err := search.ParseOrder(query.Get("order"))
		if err != nil {
			writeError(w, errBadRequest(err.Error()))
			return
		}

		result, err := s.Session.Search(r.Context(), query.Get("q"), field, order)
		if err != nil {
			writeError(w, err)
			return
		}
		s.Usage.Increment("search_" + string(result.Status))

		status := http.StatusOK
		switch result.Status {
		case search.StatusEmpty:
			status = http.StatusBadRequest
		case search.StatusNotFound:
			status = http.StatusNotFound
		}
		writeJSON(w, status, result)
	}
}

// ReloadHandler drops the cached dataset and loads it again.
func (s *Server) ReloadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		log.Info("Received reload request", "dryRun", isDryRun)

		snapshot, err := s.Session.Reload(r.Context(), isDryRun)
		if err != nil {
			writeError(w, err)
			return
		}
		s.Usage.Increment("dataset_reloads")

		resp := reloadResponse{
			Generation: snapshot.Generation,
			Days:       len(snapshot.Days),
			DryRun:     isDryRun,
		}
		if newest := snapshot.Newest(); newest != nil {
			resp.NewestDay = newest.Day
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ListExtraBoxesHandler returns every extra-box counter.
func (s *Server) ListExtraBoxesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counters, err := s.Boxes.All(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		if counters == nil {
			counters = []extrabox.Counter{}
		}
		writeJSON(w, http.StatusOK, counters)
	}
}

// GetExtraBoxesHandler returns a player's extra-box count.
func (s *Server) GetExtraBoxesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		count, err := s.Boxes.Get(r.Context(), name)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, extraBoxesResponse{Name: name, Key: extrabox.BuildKey(name), Count: count})
	}
}

// GrantExtraBoxHandler is called once a rewarded ad has been watched.
func (s *Server) GrantExtraBoxHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		count, err := s.Boxes.Increment(r.Context(), name)
		if err != nil {
			writeError(w, err)
			return
		}
		s.Usage.Increment("extra_boxes_granted")
		writeJSON(w, http.StatusOK, extraBoxesResponse{Name: name, Key: extrabox.BuildKey(name), Count: count})
	}
}

// respondWithSlackMsg is a helper to format and write a Slack message as an HTTP response.
func respondWithSlackMsg(w http.ResponseWriter, msg slack.Message) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(msg); err != nil {
		log.Error("Failed to encode slack message to JSON", "error", err)
	}
}

// DayCommandHandler returns a handler for the /day Slack command. The text is
// a day number; an empty text shows the newest day.
func (s *Server) DayCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		text := strings.TrimSpace(cmd.Text)
		log.Info("Received day command", "text", text, "user", cmd.UserName)

		var record *daystats.DayRecord
		if text == "" {
			record, err = s.Session.Newest(r.Context())
		} else {
			day, convErr := strconv.Atoi(text)
			if convErr != nil {
				http.Error(w, "Day must be a number.", http.StatusBadRequest)
				return
			}
			record, err = s.Session.Day(r.Context(), day)
		}
		if err != nil {
			writeError(w, err)
			return
		}

		msg, err := s.Notifier.FormatDayLeaderboardResponse(record)
		if err != nil {
			http.Error(w, "Failed to format day leaderboard", http.StatusInternalServerError)
			log.Error("Failed to format day leaderboard", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// PlayerStatsCommandHandler returns a handler for the /player-stats Slack command.
func (s *Server) PlayerStatsCommandHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cmd, err := slack.SlashCommandParse(r)
		if err != nil {
			http.Error(w, "Error parsing form", http.StatusBadRequest)
			return
		}
		playerName := strings.TrimSpace(cmd.Text)
		if playerName == "" {
			http.Error(w, "Player name is required.", http.StatusBadRequest)
			return
		}

		log.Info("Received player stats command", "player", playerName)

		result, err := s.Session.Search(r.Context(), playerName, search.FieldDay, search.Desc)
		if err != nil {
			writeError(w, err)
			return
		}
		s.Usage.Increment("slack_player_stats")

		var msg any
		if result.Status == search.StatusFound {
			msg, err = s.Notifier.FormatPlayerStatsResponse(result.Entry)
		} else {
			log.Warn("Could not resolve player", "player", playerName, "candidates", result.Candidates)
			msg, err = s.Notifier.FormatPlayerNotFoundResponse(playerName, result.Candidates)
		}
		if err != nil {
			http.Error(w, "Failed to format player stats", http.StatusInternalServerError)
			log.Error("Failed to format player stats", "error", err)
			return
		}

		slackMsg, ok := msg.(slack.Message)
		if !ok {
			http.Error(w, "Invalid message format for Slack", http.StatusInternalServerError)
			log.Error("Failed to cast message to slack.Message")
			return
		}
		respondWithSlackMsg(w, slackMsg)
	}
}

// badRequestError marks input validation failures.
type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequestError(msg) }

// writeError maps domain errors onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		badReq    badRequestError
		netErr    *daystats.NetworkError
		formatErr *daystats.FormatError
	)
	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &badReq), errors.Is(err, extrabox.ErrInvalidName):
		status = http.StatusBadRequest
	case errors.Is(err, detail.ErrUnknownDay), errors.Is(err, dataset.ErrDayNotFound):
		status = http.StatusNotFound
	case errors.Is(err, detail.ErrNotConfirming):
		status = http.StatusConflict
	case errors.As(err, &netErr):
		status = http.StatusBadGateway
		resp.UpstreamStatus = netErr.StatusCode
	case errors.As(err, &formatErr):
		status = http.StatusBadGateway
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		status = http.StatusServiceUnavailable
	}
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "status", status, "error", err)
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}
