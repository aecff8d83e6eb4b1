package http

import (
	"net/http"

	"github.com/mauv0809/ballcrusher-stats/internal/config"
	"github.com/mauv0809/ballcrusher-stats/internal/extrabox"
	"github.com/mauv0809/ballcrusher-stats/internal/metrics"
	"github.com/mauv0809/ballcrusher-stats/internal/notifier"
	"github.com/mauv0809/ballcrusher-stats/internal/session"
)

type Server struct {
	Session        *session.Session
	Boxes          extrabox.Store
	Usage          metrics.UsageStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Notifier       notifier.Notifier
	Cfg            config.Config
	Router         *http.ServeMux
	limiter        *clientLimiter
}

// reloadResponse is returned by POST /reload.
type reloadResponse struct {
	Generation uint64 `json:"generation"`
	Days       int    `json:"days"`
	NewestDay  int    `json:"newestDay"`
	DryRun     bool   `json:"dryRun"`
}

// extraBoxesResponse is returned by the extra-box endpoints.
type extraBoxesResponse struct {
	Name  string `json:"name"`
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// errorResponse is the JSON body of every API error.
type errorResponse struct {
	Error          string `json:"error"`
	UpstreamStatus int    `json:"upstreamStatus,omitempty"`
}
