package tournament

import (
	"context"
	"sync"
)

var _ Service = (*MockService)(nil)

// MockService is a mock implementation of the Service interface for testing.
// Unset funcs return zero values. It is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	// Spies for method calls
	CreateFunc         func(settings Settings) (*Tournament, error)
	GetFunc            func(id int64) (*Tournament, error)
	UpdateSettingsFunc func(id int64, settings Settings) (*Tournament, error)
	StartFunc          func(id int64) (*Tournament, error)
	AddDriversFunc     func(id int64, driverIDs []int64) ([]Entry, error)
	RemoveDriversFunc  func(id int64, driverIDs []int64) ([]Entry, error)
	ReorderDriversFunc func(id int64, driverIDs []int64) ([]Entry, error)
	EntriesFunc        func(id int64) ([]Entry, error)
	AddJudgeFunc       func(id, driverID int64, points float64) (*Judge, error)
	RemoveJudgeFunc    func(id, driverID int64) error
	JudgesFunc         func(id int64) ([]Judge, error)
	NextLapFunc        func(id int64) (*LapView, error)
	LapFunc            func(lapID int64) (*LapView, error)
	ScoreLapFunc       func(lapID, judgeDriverID int64, score float64) (*LapView, error)
	SetLapPenaltyFunc  func(lapID int64, penalty float64) (*LapView, error)
	EndQualifyingFunc  func(id int64) (*Tournament, error)
	NextBattleFunc     func(id int64) (*BattleView, error)
	BattleFunc         func(battleID int64) (*BattleView, error)
	BracketFunc        func(id int64) ([]BattleView, error)
	VoteFunc           func(battleID, judgeDriverID, winnerDriverID int64, omt bool) (*VoteResult, error)
	ResetVotesFunc     func(battleID int64) (*BattleView, error)
	StandingsFunc      func(id int64) ([]Standing, error)
	RatingFunc         func(driverID int64) (*RatingView, error)
	RatingHistoryFunc  func(driverID int64) ([]RatingChange, error)

	// Call records
	CreateCalls     []Settings
	AddDriversCalls []struct {
		ID        int64
		DriverIDs []int64
	}
	AddJudgeCalls []struct {
		ID       int64
		DriverID int64
		Points   float64
	}
	ScoreLapCalls []struct {
		LapID         int64
		JudgeDriverID int64
		Score         float64
	}
	VoteCalls []struct {
		BattleID       int64
		JudgeDriverID  int64
		WinnerDriverID int64
		OMT            bool
	}
	// Calls lists the name of every method called, in order.
	Calls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockService {
	return &MockService{}
}

// Reset clears all call records.
func (m *MockService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = nil
	m.AddDriversCalls = nil
	m.AddJudgeCalls = nil
	m.ScoreLapCalls = nil
	m.VoteCalls = nil
	m.Calls = nil
}

func (m *MockService) record(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, method)
}

func (m *MockService) Create(_ context.Context, settings Settings) (*Tournament, error) {
	m.record("Create")
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, settings)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(settings)
	}
	return &Tournament{Settings: settings, State: StateStart}, nil
}

func (m *MockService) Get(_ context.Context, id int64) (*Tournament, error) {
	m.record("Get")
	if m.GetFunc != nil {
		return m.GetFunc(id)
	}
	return &Tournament{ID: id, State: StateStart}, nil
}

func (m *MockService) UpdateSettings(_ context.Context, id int64, settings Settings) (*Tournament, error) {
	m.record("UpdateSettings")
	if m.UpdateSettingsFunc != nil {
		return m.UpdateSettingsFunc(id, settings)
	}
	return &Tournament{ID: id, Settings: settings}, nil
}

func (m *MockService) Start(_ context.Context, id int64) (*Tournament, error) {
	m.record("Start")
	if m.StartFunc != nil {
		return m.StartFunc(id)
	}
	return &Tournament{ID: id}, nil
}

func (m *MockService) AddDrivers(_ context.Context, id int64, driverIDs []int64) ([]Entry, error) {
	m.record("AddDrivers")
	m.mu.Lock()
	m.AddDriversCalls = append(m.AddDriversCalls, struct {
		ID        int64
		DriverIDs []int64
	}{id, append([]int64(nil), driverIDs...)})
	m.mu.Unlock()
	if m.AddDriversFunc != nil {
		return m.AddDriversFunc(id, driverIDs)
	}
	return nil, nil
}

func (m *MockService) RemoveDrivers(_ context.Context, id int64, driverIDs []int64) ([]Entry, error) {
	m.record("RemoveDrivers")
	if m.RemoveDriversFunc != nil {
		return m.RemoveDriversFunc(id, driverIDs)
	}
	return nil, nil
}

func (m *MockService) ReorderDrivers(_ context.Context, id int64, driverIDs []int64) ([]Entry, error) {
	m.record("ReorderDrivers")
	if m.ReorderDriversFunc != nil {
		return m.ReorderDriversFunc(id, driverIDs)
	}
	return nil, nil
}

func (m *MockService) Entries(_ context.Context, id int64) ([]Entry, error) {
	m.record("Entries")
	if m.EntriesFunc != nil {
		return m.EntriesFunc(id)
	}
	return nil, nil
}

func (m *MockService) AddJudge(_ context.Context, id, driverID int64, points float64) (*Judge, error) {
	m.record("AddJudge")
	m.mu.Lock()
	m.AddJudgeCalls = append(m.AddJudgeCalls, struct {
		ID       int64
		DriverID int64
		Points   float64
	}{id, driverID, points})
	m.mu.Unlock()
	if m.AddJudgeFunc != nil {
		return m.AddJudgeFunc(id, driverID, points)
	}
	return &Judge{TournamentID: id, DriverID: driverID, Points: points}, nil
}

func (m *MockService) RemoveJudge(_ context.Context, id, driverID int64) error {
	m.record("RemoveJudge")
	if m.RemoveJudgeFunc != nil {
		return m.RemoveJudgeFunc(id, driverID)
	}
	return nil
}

func (m *MockService) Judges(_ context.Context, id int64) ([]Judge, error) {
	m.record("Judges")
	if m.JudgesFunc != nil {
		return m.JudgesFunc(id)
	}
	return nil, nil
}

func (m *MockService) NextLap(_ context.Context, id int64) (*LapView, error) {
	m.record("NextLap")
	if m.NextLapFunc != nil {
		return m.NextLapFunc(id)
	}
	return nil, nil
}

func (m *MockService) Lap(_ context.Context, lapID int64) (*LapView, error) {
	m.record("Lap")
	if m.LapFunc != nil {
		return m.LapFunc(lapID)
	}
	return nil, nil
}

func (m *MockService) ScoreLap(_ context.Context, lapID, judgeDriverID int64, score float64) (*LapView, error) {
	m.record("ScoreLap")
	m.mu.Lock()
	m.ScoreLapCalls = append(m.ScoreLapCalls, struct {
		LapID         int64
		JudgeDriverID int64
		Score         float64
	}{lapID, judgeDriverID, score})
	m.mu.Unlock()
	if m.ScoreLapFunc != nil {
		return m.ScoreLapFunc(lapID, judgeDriverID, score)
	}
	return nil, nil
}

func (m *MockService) SetLapPenalty(_ context.Context, lapID int64, penalty float64) (*LapView, error) {
	m.record("SetLapPenalty")
	if m.SetLapPenaltyFunc != nil {
		return m.SetLapPenaltyFunc(lapID, penalty)
	}
	return nil, nil
}

func (m *MockService) EndQualifying(_ context.Context, id int64) (*Tournament, error) {
	m.record("EndQualifying")
	if m.EndQualifyingFunc != nil {
		return m.EndQualifyingFunc(id)
	}
	return &Tournament{ID: id}, nil
}

func (m *MockService) NextBattle(_ context.Context, id int64) (*BattleView, error) {
	m.record("NextBattle")
	if m.NextBattleFunc != nil {
		return m.NextBattleFunc(id)
	}
	return nil, nil
}

func (m *MockService) Battle(_ context.Context, battleID int64) (*BattleView, error) {
	m.record("Battle")
	if m.BattleFunc != nil {
		return m.BattleFunc(battleID)
	}
	return nil, nil
}

func (m *MockService) Bracket(_ context.Context, id int64) ([]BattleView, error) {
	m.record("Bracket")
	if m.BracketFunc != nil {
		return m.BracketFunc(id)
	}
	return nil, nil
}

func (m *MockService) Vote(_ context.Context, battleID, judgeDriverID, winnerDriverID int64, omt bool) (*VoteResult, error) {
	m.record("Vote")
	m.mu.Lock()
	m.VoteCalls = append(m.VoteCalls, struct {
		BattleID       int64
		JudgeDriverID  int64
		WinnerDriverID int64
		OMT            bool
	}{battleID, judgeDriverID, winnerDriverID, omt})
	m.mu.Unlock()
	if m.VoteFunc != nil {
		return m.VoteFunc(battleID, judgeDriverID, winnerDriverID, omt)
	}
	return &VoteResult{}, nil
}

func (m *MockService) ResetVotes(_ context.Context, battleID int64) (*BattleView, error) {
	m.record("ResetVotes")
	if m.ResetVotesFunc != nil {
		return m.ResetVotesFunc(battleID)
	}
	return nil, nil
}

func (m *MockService) Standings(_ context.Context, id int64) ([]Standing, error) {
	m.record("Standings")
	if m.StandingsFunc != nil {
		return m.StandingsFunc(id)
	}
	return nil, nil
}

func (m *MockService) Rating(_ context.Context, driverID int64) (*RatingView, error) {
	m.record("Rating")
	if m.RatingFunc != nil {
		return m.RatingFunc(driverID)
	}
	return nil, nil
}

func (m *MockService) RatingHistory(_ context.Context, driverID int64) ([]RatingChange, error) {
	m.record("RatingHistory")
	if m.RatingHistoryFunc != nil {
		return m.RatingHistoryFunc(driverID)
	}
	return nil, nil
}
