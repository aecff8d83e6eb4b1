package http

import (
	"net/http"

	"github.com/mauv0809/ballcrusher-stats/internal/config"
	"github.com/mauv0809/ballcrusher-stats/internal/extrabox"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"github.com/mauv0809/ballcrusher-stats/internal/notifier"
	"github.com/mauv0809/ballcrusher-stats/internal/session"
)

func NewServer(sess *session.Session, boxes extrabox.Store, usage metrics.UsageStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, notifier notifier.Notifier) *Server {
	server := &Server{
		Session:        sess,
		Boxes:          boxes,
		Usage:          usage,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Notifier:       notifier,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		limiter:        newClientLimiter(cfg.RateLimitRPS),
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	// e.g. Chain(s.MyHandler(), s.api()...)
	s.Router.Handle("GET /metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), s.api()...))
	s.Router.Handle("GET /usage", Chain(s.UsageHandler(), s.api()...))
	s.Router.Handle("GET /status", Chain(s.StatusHandler(), s.api()...))

	s.Router.Handle("GET /days", Chain(s.ListDaysHandler(), s.api()...))
	s.Router.Handle("GET /days/{day}", Chain(s.DayHandler(), s.api()...))
	s.Router.Handle("POST /days/{day}/open", Chain(s.OpenDayHandler(), s.api()...))
	s.Router.Handle("POST /days/{day}/confirm", Chain(s.ConfirmDayHandler(), s.api()...))
	s.Router.Handle("POST /days/{day}/close", Chain(s.CloseDayHandler(), s.api()...))
	s.Router.Handle("POST /days/{day}/toggle", Chain(s.ToggleDayHandler(), s.api()...))

	s.Router.Handle("GET /players/suggestions", Chain(s.SuggestionsHandler(), s.api()...))
	s.Router.Handle("GET /players/search", Chain(s.SearchPlayersHandler(), s.api()...))
	s.Router.Handle("GET /extra-boxes", Chain(s.ListExtraBoxesHandler(), s.api()...))
	s.Router.Handle("GET /players/{name}/extra-boxes", Chain(s.GetExtraBoxesHandler(), s.api()...))
	s.Router.Handle("POST /players/{name}/extra-boxes", Chain(s.GrantExtraBoxHandler(), s.api()...))

	s.Router.Handle("POST /reload", Chain(s.ReloadHandler(), s.admin(s.api()...)...))

	s.Router.Handle("POST /pubsub/dataset-events", Chain(s.DatasetEventsHandler(), s.admin(requestIDMiddleware)...))

	s.Router.Handle("POST /slack/command/day", Chain(s.DayCommandHandler(), s.slack()...))
	s.Router.Handle("POST /slack/command/player-stats", Chain(s.PlayerStatsCommandHandler(), s.slack()...))
}

// api returns the middleware stack shared by every API route.
func (s *Server) api() []Middleware {
	return []Middleware{requestIDMiddleware, paramsMiddleware, s.rateLimitMiddleware}
}

// admin adds the admin token check when one is configured.
func (s *Server) admin(stack ...Middleware) []Middleware {
	if s.Cfg.AdminToken != "" {
		stack = append(stack, adminTokenMiddleware(s.Cfg.AdminToken))
	}
	return stack
}

// slack adds request signature verification when a signing secret is configured.
func (s *Server) slack() []Middleware {
	stack := s.api()
	if s.Cfg.Slack.SigningSecret != "" {
		stack = append(stack, slackVerifyMiddleware(s.Cfg.Slack.SigningSecret))
	}
	return stack
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
