package directory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/competitor"
)

// New creates a new DriverStore.
func New(db *sql.DB) DriverStore {
	return &store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// AddDriver registers a driver. Names are unique regardless of case.
func (s *store) AddDriver(ctx context.Context, name, avatar string) (*Driver, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("driver name is required")
	}
	d := &Driver{Name: name, Avatar: avatar, CreatedAt: s.now().Truncate(time.Millisecond)}
	res, err := s.db.ExecContext(ctx, "INSERT INTO drivers (name, avatar, created_at) VALUES (?, ?, ?)",
		d.Name, d.Avatar, d.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to add driver %q: %w", name, err)
	}
	if d.ID, err = res.LastInsertId(); err != nil {
		return nil, fmt.Errorf("failed to read driver id: %w", err)
	}
	log.Info("Registered driver", "driver_id", d.ID, "name", d.Name)
	return d, nil
}

// Profiles returns the profiles of the known drivers among driverIDs.
func (s *store) Profiles(ctx context.Context, driverIDs []int64) (map[int64]competitor.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[int64]competitor.Profile, len(driverIDs))
	if len(driverIDs) == 0 {
		return out, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(driverIDs)), ",")
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, avatar, created_at FROM drivers WHERE id IN ("+placeholders+")", toAnySlice(driverIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query driver profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		out[d.ID] = d.Profile()
	}
	return out, rows.Err()
}

// All returns every driver ordered by name.
func (s *store) All(ctx context.Context) ([]Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, name, avatar, created_at FROM drivers ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to query drivers: %w", err)
	}
	defer rows.Close()

	var drivers []Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, err
		}
		drivers = append(drivers, d)
	}
	return drivers, rows.Err()
}

// FindByName looks a driver up by exact name, ignoring case.
func (s *store) FindByName(ctx context.Context, name string) (*Driver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, "SELECT id, name, avatar, created_at FROM drivers WHERE name = ?", strings.TrimSpace(name))
	d, err := scanDriver(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", name, ErrDriverNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Suggest ranks registered drivers by how closely their name resembles name.
func (s *store) Suggest(ctx context.Context, name string) ([]Suggestion, error) {
	drivers, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return suggest(name, drivers), nil
}

func scanDriver(scanner interface{ Scan(...any) error }) (Driver, error) {
	var d Driver
	var created int64
	if err := scanner.Scan(&d.ID, &d.Name, &d.Avatar, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return d, err
		}
		return d, fmt.Errorf("failed to scan driver: %w", err)
	}
	d.CreatedAt = time.UnixMilli(created).UTC()
	return d, nil
}

func toAnySlice[T any](s []T) []any {
	a := make([]any, len(s))
	for i, v := range s {
		a[i] = v
	}
	return a
}
