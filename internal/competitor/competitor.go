// Package competitor holds the two shapes a bracket participant can take: a real
// driver entered in a tournament, or a synthetic bye used to pad the field.
package competitor

import "fmt"

// Competitor is either a Driver or a Bye. The set is closed; use a type switch
// or IsBye rather than inspecting ids.
type Competitor interface {
	// EntryID is the tournament-scoped entry id. A Bye that has not been
	// persisted yet reports 0.
	EntryID() int64
	competitor()
}

// Driver is a real driver entered in a tournament.
type Driver struct {
	Entry    int64 `json:"entry_id" msgpack:"entry_id"`
	DriverID int64 `json:"driver_id" msgpack:"driver_id"`
	Number   int   `json:"number" msgpack:"number"`
}

// Bye is a placeholder opponent. Any driver matched against a bye advances.
type Bye struct {
	Entry int64 `json:"entry_id" msgpack:"entry_id"`
}

func (d Driver) EntryID() int64 { return d.Entry }
func (d Driver) competitor()    {}
func (d Driver) String() string { return fmt.Sprintf("driver(%d #%d)", d.DriverID, d.Number) }

func (b Bye) EntryID() int64 { return b.Entry }
func (b Bye) competitor()    {}
func (b Bye) String() string { return "bye" }

// IsBye reports whether c is a bye. A nil competitor is not a bye.
func IsBye(c Competitor) bool {
	_, ok := c.(Bye)
	return ok
}

// AsDriver returns the driver behind c, if any.
func AsDriver(c Competitor) (Driver, bool) {
	d, ok := c.(Driver)
	return d, ok
}

// Same reports whether a and b refer to the same entry. Two nils are the same.
func Same(a, b Competitor) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.EntryID() == b.EntryID()
}

// Profile is the display data of a driver as kept by the identity directory.
type Profile struct {
	DriverID int64  `json:"driver_id" msgpack:"driver_id"`
	Name     string `json:"name" msgpack:"name"`
	Avatar   string `json:"avatar,omitempty" msgpack:"avatar,omitempty"`
}
