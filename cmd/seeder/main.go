package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/drift-bracket/internal/config"
	"github.com/mauv0809/drift-bracket/internal/database"
	"github.com/mauv0809/drift-bracket/internal/directory"
	"github.com/mauv0809/drift-bracket/internal/tournament"
)

var demoJudges = []string{"Keiichi Tsuchiya", "Mad Mike Whiddett", "Ryan Tuerck"}

var demoDrivers = []string{
	"Aurimas Bakchis", "Chelsea DeNofa", "Daigo Saito", "Dean Kearney",
	"Fredric Aasbo", "Forrest Wang", "Hiroki Vertullo", "James Deane",
	"Kazuya Taguchi", "Masato Kawabata", "Matt Field", "Piotr Wiecek",
}

// ensure registers name unless a driver with that name already exists.
func ensure(ctx context.Context, drivers directory.DriverStore, name string) (int64, error) {
	d, err := drivers.FindByName(ctx, name)
	if err == nil {
		return d.ID, nil
	}
	if !errors.Is(err, directory.ErrDriverNotFound) {
		return 0, err
	}
	d, err = drivers.AddDriver(ctx, name, "")
	if err != nil {
		return 0, err
	}
	return d.ID, nil
}

func seed(ctx context.Context, engine tournament.Service, drivers directory.DriverStore) (*tournament.Tournament, error) {
	judges := make([]int64, 0, len(demoJudges))
	for _, name := range demoJudges {
		id, err := ensure(ctx, drivers, name)
		if err != nil {
			return nil, fmt.Errorf("failed to register judge %s: %w", name, err)
		}
		judges = append(judges, id)
	}
	entrants := make([]int64, 0, len(demoDrivers))
	for _, name := range demoDrivers {
		id, err := ensure(ctx, drivers, name)
		if err != nil {
			return nil, fmt.Errorf("failed to register driver %s: %w", name, err)
		}
		entrants = append(entrants, id)
	}
	log.Info("Ensured demo drivers exist.", "judges", len(judges), "drivers", len(entrants))

	settings := tournament.DefaultSettings(fmt.Sprintf("Demo Cup %s", time.Now().Format("2006-01-02")))
	t, err := engine.Create(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	for _, id := range judges {
		if _, err := engine.AddJudge(ctx, t.ID, id, 0); err != nil {
			return nil, fmt.Errorf("failed to add judge %d: %w", id, err)
		}
	}
	if _, err := engine.AddDrivers(ctx, t.ID, entrants); err != nil {
		return nil, fmt.Errorf("failed to enter drivers: %w", err)
	}
	return t, nil
}

func main() {
	log.Info("Starting database seeder...")
	cfg := config.Load()

	db, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer db.Close()

	drivers := directory.New(db)
	engine := tournament.New(tournament.NewStore(db),
		tournament.WithDirectory(drivers),
		tournament.WithRating(cfg.Rating.Track, cfg.Rating.KFactor),
		tournament.WithWaveFractions(cfg.WaveFractions),
	)

	startTime := time.Now()
	t, err := seed(context.Background(), engine, drivers)
	if err != nil {
		log.Fatalf("Failed to seed demo tournament: %s", err)
	}
	log.Info("Seeded demo tournament.", "tournament_id", t.ID, "name", t.Name, "duration", time.Since(startTime))
}
