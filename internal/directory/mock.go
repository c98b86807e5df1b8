package directory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mauv0809/drift-bracket/internal/competitor"
)

// MockStore is a mock implementation of the DriverStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	Drivers map[int64]Driver
	nextID  int64

	// Call records
	ProfilesCalls [][]int64
}

// NewMock creates a mock directory holding drivers.
func NewMock(drivers ...Driver) *MockStore {
	m := &MockStore{Drivers: make(map[int64]Driver)}
	for _, d := range drivers {
		m.Drivers[d.ID] = d
		m.nextID = max(m.nextID, d.ID)
	}
	return m
}

func (m *MockStore) AddDriver(_ context.Context, name, avatar string) (*Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	d := Driver{ID: m.nextID, Name: name, Avatar: avatar}
	m.Drivers[d.ID] = d
	return &d, nil
}

func (m *MockStore) Profiles(_ context.Context, driverIDs []int64) (map[int64]competitor.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfilesCalls = append(m.ProfilesCalls, append([]int64(nil), driverIDs...))
	out := make(map[int64]competitor.Profile, len(driverIDs))
	for _, id := range driverIDs {
		if d, ok := m.Drivers[id]; ok {
			out[id] = d.Profile()
		}
	}
	return out, nil
}

func (m *MockStore) All(_ context.Context) ([]Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Driver, 0, len(m.Drivers))
	for _, d := range m.Drivers {
		out = append(out, d)
	}
	return out, nil
}

func (m *MockStore) FindByName(_ context.Context, name string) (*Driver, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.Drivers {
		if normalizeName(d.Name) == normalizeName(name) {
			return &d, nil
		}
	}
	return nil, fmt.Errorf("%q: %w", name, ErrDriverNotFound)
}

func (m *MockStore) Suggest(ctx context.Context, name string) ([]Suggestion, error) {
	drivers, _ := m.All(ctx)
	return suggest(name, drivers), nil
}
