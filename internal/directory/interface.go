package directory

import (
	"context"

	"github.com/mauv0809/drift-bracket/internal/competitor"
)

// DriverStore defines the interface for the driver directory.
type DriverStore interface {
	AddDriver(ctx context.Context, name, avatar string) (*Driver, error)
	Profiles(ctx context.Context, driverIDs []int64) (map[int64]competitor.Profile, error)
	All(ctx context.Context) ([]Driver, error)
	FindByName(ctx context.Context, name string) (*Driver, error)
	Suggest(ctx context.Context, name string) ([]Suggestion, error)
}
