package directory

import (
	"database/sql"
	"errors"
	"sync"
	"time"

	"github.com/mauv0809/drift-bracket/internal/competitor"
)

// ErrDriverNotFound is returned when no driver matches a lookup.
var ErrDriverNotFound = errors.New("driver not found")

// store handles all database operations for the driver directory.
type store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// Driver is a registered driver.
type Driver struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Profile returns the display data of d.
func (d Driver) Profile() competitor.Profile {
	return competitor.Profile{DriverID: d.ID, Name: d.Name, Avatar: d.Avatar}
}

// Suggestion is a driver whose name resembles a lookup.
type Suggestion struct {
	Driver     Driver
	Confidence float64
	Reasons    []string
}
