package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	DatasetFetches              prometheus.Counter
	DatasetFetchFailures        prometheus.Counter
	IndexBuilds                 prometheus.Counter
	IndexBuildDuration          prometheus.Histogram
	SearchResolutions           *prometheus.CounterVec
	PanelExpansions             prometheus.Counter
	LeaderboardMaterializations prometheus.Counter
	SlackNotifSent              prometheus.Counter
	SlackNotifFailed            prometheus.Counter
	StartupTimeSeconds          prometheus.Gauge
}
