package metrics

// Metrics defines the interface for collecting engine metrics.
// This decouples the engine from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncLapsScored()
	IncVotesCast()
	IncBattlesDecided(side string)
	AddByesAdvanced(n int)
	IncBracketsBuilt(format string)
	IncStandingsPublished()
	IncNotificationsSent()
	IncNotificationsFailed()
	ObserveOperationDuration(operation string, seconds float64)
}

// MetricsStore persists counter totals across process runs.
type MetricsStore interface {
	Add(key string, n int)
	GetAll() (map[string]int, error)
}
