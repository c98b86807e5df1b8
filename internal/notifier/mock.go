package notifier

import (
	"context"
	"sync"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendBattleResultFunc func(result BattleResult) error
	SendStandingsFunc    func(standings Standings) error

	// Call records
	SendBattleResultCalls []BattleResult
	SendStandingsCalls    []Standings
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendBattleResultCalls = nil
	m.SendStandingsCalls = nil
}

func (m *Mock) SendBattleResult(_ context.Context, result BattleResult) error {
	m.mu.Lock()
	m.SendBattleResultCalls = append(m.SendBattleResultCalls, result)
	m.mu.Unlock()
	if m.SendBattleResultFunc != nil {
		return m.SendBattleResultFunc(result)
	}
	return nil
}

func (m *Mock) SendStandings(_ context.Context, standings Standings) error {
	m.mu.Lock()
	m.SendStandingsCalls = append(m.SendStandingsCalls, standings)
	m.mu.Unlock()
	if m.SendStandingsFunc != nil {
		return m.SendStandingsFunc(standings)
	}
	return nil
}
