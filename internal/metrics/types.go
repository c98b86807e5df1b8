package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics of the engine.
// By defining them all in one place, we ensure consistency in naming and labeling.
type Service struct {
	LapsScored         prometheus.Counter
	VotesCast          prometheus.Counter
	BattlesDecided     *prometheus.CounterVec
	ByesAdvanced       prometheus.Counter
	BracketsBuilt      *prometheus.CounterVec
	StandingsPublished prometheus.Counter
	NotificationsSent  prometheus.Counter
	NotificationsFail  prometheus.Counter
	OperationDuration  *prometheus.HistogramVec

	store MetricsStore
}

// Persisted counter keys.
const (
	KeyLapsScored         = "laps_scored"
	KeyVotesCast          = "votes_cast"
	KeyBattlesDecided     = "battles_decided"
	KeyByesAdvanced       = "byes_advanced"
	KeyBracketsBuilt      = "brackets_built"
	KeyStandingsPublished = "standings_published"
	KeyNotificationsSent  = "notifications_sent"
	KeyNotificationsFail  = "notifications_failed"
)
