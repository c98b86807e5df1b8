package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var _ Metrics = (*Service)(nil)

// NewService creates and registers the Prometheus metrics. Counters are also
// added to store when it is not nil. If no registerer is provided, it uses
// the default Prometheus registerer.
func NewService(store MetricsStore, registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		LapsScored: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drift_laps_scored_total",
			Help: "The total number of judge lap scores recorded.",
		}),
		VotesCast: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drift_battle_votes_total",
			Help: "The total number of judge battle votes recorded.",
		}),
		BattlesDecided: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drift_battles_decided_total",
			Help: "The total number of battles decided by vote, by bracket side.",
		}, []string{"side"}),
		ByesAdvanced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drift_byes_advanced_total",
			Help: "The total number of battles resolved against a bye without a vote.",
		}),
		BracketsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "drift_brackets_built_total",
			Help: "The total number of bracket topologies built, by format.",
		}, []string{"format"}),
		StandingsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drift_standings_published_total",
			Help: "The total number of times final standings were written.",
		}),
		NotificationsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drift_notifications_sent_total",
			Help: "The total number of result notifications posted.",
		}),
		NotificationsFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "drift_notifications_failed_total",
			Help: "The total number of result notifications that failed to post.",
		}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "drift_operation_duration_seconds",
			Help:    "The duration of engine operations.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}, []string{"operation"}),
		store: store,
	}

	reg.MustRegister(
		s.LapsScored,
		s.VotesCast,
		s.BattlesDecided,
		s.ByesAdvanced,
		s.BracketsBuilt,
		s.StandingsPublished,
		s.NotificationsSent,
		s.NotificationsFail,
		s.OperationDuration,
	)

	return s
}

func (s *Service) persist(key string, n int) {
	if s.store != nil && n > 0 {
		s.store.Add(key, n)
	}
}

func (s *Service) IncLapsScored() {
	s.LapsScored.Inc()
	s.persist(KeyLapsScored, 1)
}

func (s *Service) IncVotesCast() {
	s.VotesCast.Inc()
	s.persist(KeyVotesCast, 1)
}

func (s *Service) IncBattlesDecided(side string) {
	s.BattlesDecided.WithLabelValues(side).Inc()
	s.persist(KeyBattlesDecided, 1)
}

func (s *Service) AddByesAdvanced(n int) {
	if n <= 0 {
		return
	}
	s.ByesAdvanced.Add(float64(n))
	s.persist(KeyByesAdvanced, n)
}

func (s *Service) IncBracketsBuilt(format string) {
	s.BracketsBuilt.WithLabelValues(format).Inc()
	s.persist(KeyBracketsBuilt, 1)
}

func (s *Service) IncStandingsPublished() {
	s.StandingsPublished.Inc()
	s.persist(KeyStandingsPublished, 1)
}

func (s *Service) IncNotificationsSent() {
	s.NotificationsSent.Inc()
	s.persist(KeyNotificationsSent, 1)
}

func (s *Service) IncNotificationsFailed() {
	s.NotificationsFail.Inc()
	s.persist(KeyNotificationsFail, 1)
}

func (s *Service) ObserveOperationDuration(operation string, seconds float64) {
	s.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

// WriteText writes every metric family of gatherer to w in the Prometheus
// text exposition format.
func WriteText(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
