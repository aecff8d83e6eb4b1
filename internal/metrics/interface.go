package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncDatasetFetches()
	IncDatasetFetchFailures()
	IncIndexBuilds()
	ObserveIndexBuildDuration(duration float64)
	IncSearchResolutions(outcome string)
	IncPanelExpansions()
	IncLeaderboardMaterializations()
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}

// UsageStore persists simple named counters across restarts.
type UsageStore interface {
	Increment(key string)
	GetAll() (map[string]int, error)
}
