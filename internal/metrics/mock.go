package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                          sync.Mutex
	datasetFetches              int
	datasetFetchFailures        int
	indexBuilds                 int
	indexBuildDurations         []float64
	searchResolutions           map[string]int
	panelExpansions             int
	leaderboardMaterializations int
	slackNotifSent              int
	slackNotifFailed            int
	startupTime                 float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		indexBuildDurations: make([]float64, 0),
		searchResolutions:   make(map[string]int),
	}
}

func (m *Mock) IncDatasetFetches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasetFetches++
}

func (m *Mock) IncDatasetFetchFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasetFetchFailures++
}

func (m *Mock) IncIndexBuilds() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexBuilds++
}

func (m *Mock) ObserveIndexBuildDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.indexBuildDurations = append(m.indexBuildDurations, duration)
}

func (m *Mock) IncSearchResolutions(outcome string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchResolutions[outcome]++
}

func (m *Mock) IncPanelExpansions() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panelExpansions++
}

func (m *Mock) IncLeaderboardMaterializations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaderboardMaterializations++
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifSent++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slackNotifFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// DatasetFetches returns the number of times IncDatasetFetches was called.
func (m *Mock) DatasetFetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.datasetFetches
}

// DatasetFetchFailures returns the number of times IncDatasetFetchFailures was called.
func (m *Mock) DatasetFetchFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.datasetFetchFailures
}

// IndexBuilds returns the number of times IncIndexBuilds was called.
func (m *Mock) IndexBuilds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.indexBuilds
}

// SearchResolutions returns how often the given outcome was recorded.
func (m *Mock) SearchResolutions(outcome string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.searchResolutions[outcome]
}

// PanelExpansions returns the number of times IncPanelExpansions was called.
func (m *Mock) PanelExpansions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.panelExpansions
}

// LeaderboardMaterializations returns the number of times IncLeaderboardMaterializations was called.
func (m *Mock) LeaderboardMaterializations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.leaderboardMaterializations
}

// SlackNotifSent returns the number of times IncSlackNotifSent was called.
func (m *Mock) SlackNotifSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifSent
}

// SlackNotifFailed returns the number of times IncSlackNotifFailed was called.
func (m *Mock) SlackNotifFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.slackNotifFailed
}
