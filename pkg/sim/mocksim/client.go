// Package mocksim provides an in-memory sim.Session for tests and for
// running the tool without a simulator (-sim mock).
package mocksim

import (
	"context"
	"sync"

	"simsetgo/pkg/sim"
	"simsetgo/pkg/simvar"
)

// Op kinds recorded by the client.
const (
	OpVariable      = "variable"
	OpInitPosition  = "init_position"
	OpVelocity      = "world_velocity"
	OpInputEvent    = "input_event"
	OpMapEvent      = "map_client_event"
	OpTransmitEvent = "transmit_client_event"
)

// Op is one recorded session operation, in call order.
type Op struct {
	Kind string

	// OpVariable
	Name  string
	Unit  string
	Value simvar.Value

	// OpInitPosition
	Pos sim.InitPosition

	// OpVelocity
	X, Y, Z float64

	// OpInputEvent
	Hash  uint64
	Param float64

	// OpMapEvent / OpTransmitEvent
	EventID   uint32
	EventName string
}

// Client implements sim.Session, recording every call so tests can assert
// on ordering and payloads. Error fields inject failures.
type Client struct {
	mu  sync.Mutex
	ops []Op

	// InputEvents is the enumeration snapshot handed to the engine.
	InputEvents []sim.EventDescriptor

	// Failure injection.
	OpenErr      error
	EnumerateErr error
	SetInputErr  error
	MapErr       error
	TransmitErr  error
	CloseErr     error
	VariableErrs map[string]error
	InitPosErr   error
	VelocityErr  error

	opened     bool
	OpenCalls  int
	CloseCalls int
}

// NewClient creates an empty mock session.
func NewClient() *Client {
	return &Client{}
}

// Ops returns a copy of the recorded operations.
func (c *Client) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Op(nil), c.ops...)
}

// OpsOfKind filters the recorded operations by kind.
func (c *Client) OpsOfKind(kind string) []Op {
	var out []Op
	for _, op := range c.Ops() {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

func (c *Client) record(op Op) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, op)
}

// Open implements sim.Session.
func (c *Client) Open(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.OpenCalls++
	if c.OpenErr != nil {
		return c.OpenErr
	}
	c.opened = true
	return nil
}

// Close implements sim.Session.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CloseCalls++
	c.opened = false
	return c.CloseErr
}

// SetVariable implements sim.Session.
func (c *Client) SetVariable(name, unit string, v simvar.Value) error {
	if !c.isOpen() {
		return sim.ErrNotConnected
	}
	if err, ok := c.VariableErrs[name]; ok {
		return err
	}
	c.record(Op{Kind: OpVariable, Name: name, Unit: unit, Value: v})
	return nil
}

// SetInitPosition implements sim.Session.
func (c *Client) SetInitPosition(p sim.InitPosition) error {
	if !c.isOpen() {
		return sim.ErrNotConnected
	}
	if c.InitPosErr != nil {
		return c.InitPosErr
	}
	c.record(Op{Kind: OpInitPosition, Pos: p})
	return nil
}

// SetWorldVelocity implements sim.Session.
func (c *Client) SetWorldVelocity(x, y, z float64) error {
	if !c.isOpen() {
		return sim.ErrNotConnected
	}
	if c.VelocityErr != nil {
		return c.VelocityErr
	}
	c.record(Op{Kind: OpVelocity, X: x, Y: y, Z: z})
	return nil
}

// EnumerateInputEvents implements sim.Session.
func (c *Client) EnumerateInputEvents(ctx context.Context) ([]sim.EventDescriptor, error) {
	if !c.isOpen() {
		return nil, sim.ErrNotConnected
	}
	if c.EnumerateErr != nil {
		return nil, c.EnumerateErr
	}
	return append([]sim.EventDescriptor(nil), c.InputEvents...), nil
}

// SetInputEvent implements sim.Session.
func (c *Client) SetInputEvent(hash uint64, value float64) error {
	if !c.isOpen() {
		return sim.ErrNotConnected
	}
	if c.SetInputErr != nil {
		return c.SetInputErr
	}
	c.record(Op{Kind: OpInputEvent, Hash: hash, Param: value})
	return nil
}

// MapClientEventToSimEvent implements sim.Session.
func (c *Client) MapClientEventToSimEvent(id uint32, name string) error {
	if !c.isOpen() {
		return sim.ErrNotConnected
	}
	if c.MapErr != nil {
		return c.MapErr
	}
	c.record(Op{Kind: OpMapEvent, EventID: id, EventName: name})
	return nil
}

// TransmitClientEvent implements sim.Session.
func (c *Client) TransmitClientEvent(id uint32) error {
	if !c.isOpen() {
		return sim.ErrNotConnected
	}
	if c.TransmitErr != nil {
		return c.TransmitErr
	}
	c.record(Op{Kind: OpTransmitEvent, EventID: id})
	return nil
}

func (c *Client) isOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.opened
}
