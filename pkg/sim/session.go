// Package sim defines the simulator session abstraction used by the
// configuration engine. Implementations live in sim/simconnect (live sim)
// and sim/mocksim (tests).
package sim

import (
	"context"
	"errors"

	"simsetgo/pkg/simvar"
)

var (
	// ErrNotConnected is returned when a session action requires an open connection.
	ErrNotConnected = errors.New("simulator not connected")
)

// ObjectUser is the object id of the user-controlled aircraft.
const ObjectUser uint32 = 0

// EventDescriptor identifies a native input event enumerated from the sim.
// Hash is the opaque dispatch handle assigned for the current session.
type EventDescriptor struct {
	Name string
	Hash uint64
}

// InitPosition is the atomic teleport payload.
// Field order matches SIMCONNECT_DATA_INITPOSITION exactly.
type InitPosition struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Pitch     float64
	Bank      float64
	Heading   float64
	OnGround  uint32
	Airspeed  uint32
}

// IsZero reports whether no position field has been populated.
func (p InitPosition) IsZero() bool {
	return p == InitPosition{}
}

// Session is one connection to the simulator. The engine opens a session per
// apply pass and closes it when the pass ends.
type Session interface {
	// Open establishes the connection. The engine treats a failure here as
	// fatal for the whole pass.
	Open(ctx context.Context) error
	// Close tears the connection down. Best effort.
	Close() error

	// SetVariable writes one typed value to a named variable/unit pair.
	SetVariable(name, unit string, v simvar.Value) error
	// SetInitPosition transmits the teleport composite as a single write.
	SetInitPosition(p InitPosition) error
	// SetWorldVelocity transmits the world velocity composite as a single write.
	SetWorldVelocity(x, y, z float64) error

	// EnumerateInputEvents lists the input events available right now.
	EnumerateInputEvents(ctx context.Context) ([]EventDescriptor, error)
	// SetInputEvent dispatches a native input event by hash with a parameter.
	SetInputEvent(hash uint64, value float64) error

	// MapClientEventToSimEvent associates a client-side numeric id with a
	// simulator-named event. Must be called at most once per id.
	MapClientEventToSimEvent(id uint32, name string) error
	// TransmitClientEvent sends a previously mapped client event to the
	// user aircraft. Legacy events carry no payload.
	TransmitClientEvent(id uint32) error
}
