package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                 sync.Mutex
	lapsScored         int
	votesCast          int
	battlesDecided     map[string]int
	byesAdvanced       int
	bracketsBuilt      map[string]int
	standingsPublished int
	notificationsSent  int
	notificationsFail  int
	durations          map[string][]float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		battlesDecided: make(map[string]int),
		bracketsBuilt:  make(map[string]int),
		durations:      make(map[string][]float64),
	}
}

func (m *Mock) IncLapsScored() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lapsScored++
}

func (m *Mock) IncVotesCast() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.votesCast++
}

func (m *Mock) IncBattlesDecided(side string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.battlesDecided[side]++
}

func (m *Mock) AddByesAdvanced(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byesAdvanced += n
}

func (m *Mock) IncBracketsBuilt(format string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bracketsBuilt[format]++
}

func (m *Mock) IncStandingsPublished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.standingsPublished++
}

func (m *Mock) IncNotificationsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsSent++
}

func (m *Mock) IncNotificationsFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.notificationsFail++
}

// NotificationsSent returns the number of times IncNotificationsSent was called.
func (m *Mock) NotificationsSent() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsSent
}

// NotificationsFailed returns the number of times IncNotificationsFailed was called.
func (m *Mock) NotificationsFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notificationsFail
}

func (m *Mock) ObserveOperationDuration(operation string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[operation] = append(m.durations[operation], seconds)
}

// LapsScored returns the number of times IncLapsScored was called.
func (m *Mock) LapsScored() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lapsScored
}

// VotesCast returns the number of times IncVotesCast was called.
func (m *Mock) VotesCast() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.votesCast
}

// BattlesDecided returns the number of battles decided on side.
func (m *Mock) BattlesDecided(side string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.battlesDecided[side]
}

// ByesAdvanced returns the total passed to AddByesAdvanced.
func (m *Mock) ByesAdvanced() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.byesAdvanced
}

// BracketsBuilt returns the number of brackets built for format.
func (m *Mock) BracketsBuilt(format string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bracketsBuilt[format]
}

// StandingsPublished returns the number of times IncStandingsPublished was called.
func (m *Mock) StandingsPublished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.standingsPublished
}

// Observations returns the durations observed for operation.
func (m *Mock) Observations(operation string) []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.durations[operation]...)
}
