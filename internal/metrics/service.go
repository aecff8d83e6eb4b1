package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		DatasetFetches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballcrusher_dataset_fetches_total",
			Help: "The total number of times the day dataset was fetched from its source.",
		}),
		DatasetFetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballcrusher_dataset_fetch_failures_total",
			Help: "The total number of dataset fetches that failed with a network or format error.",
		}),
		IndexBuilds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballcrusher_search_index_builds_total",
			Help: "The total number of player search index builds.",
		}),
		IndexBuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ballcrusher_search_index_build_duration_seconds",
			Help:    "The duration of player search index builds.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		SearchResolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ballcrusher_search_resolutions_total",
			Help: "The total number of player search queries, by outcome.",
		}, []string{"outcome"}),
		PanelExpansions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballcrusher_day_panel_expansions_total",
			Help: "The total number of day panels that reached the expanded state.",
		}),
		LeaderboardMaterializations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballcrusher_leaderboard_materializations_total",
			Help: "The total number of per-day leaderboards sorted for the first time.",
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballcrusher_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ballcrusher_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ballcrusher_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.DatasetFetches,
		s.DatasetFetchFailures,
		s.IndexBuilds,
		s.IndexBuildDuration,
		s.SearchResolutions,
		s.PanelExpansions,
		s.LeaderboardMaterializations,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncDatasetFetches() {
	s.DatasetFetches.Inc()
}

func (s *Service) IncDatasetFetchFailures() {
	s.DatasetFetchFailures.Inc()
}

func (s *Service) IncIndexBuilds() {
	s.IndexBuilds.Inc()
}

func (s *Service) ObserveIndexBuildDuration(duration float64) {
	s.IndexBuildDuration.Observe(duration)
}

func (s *Service) IncSearchResolutions(outcome string) {
	s.SearchResolutions.WithLabelValues(outcome).Inc()
}

func (s *Service) IncPanelExpansions() {
	s.PanelExpansions.Inc()
}

func (s *Service) IncLeaderboardMaterializations() {
	s.LeaderboardMaterializations.Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
