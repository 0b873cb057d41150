//go:build windows

package simconnect

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"
	"unsafe"

	"simsetgo/pkg/sim"
	"simsetgo/pkg/simvar"
)

// cStringToGo converts a null-terminated C string byte array to a Go string.
func cStringToGo(b []byte) string {
	if idx := bytes.IndexByte(b, 0); idx >= 0 {
		return string(b[:idx])
	}
	return string(b)
}

// Request IDs
const (
	ReqIDInputEvents = 100
)

// enumTimeout bounds the dispatch pump while collecting enumeration pages.
const enumTimeout = 3 * time.Second

// Client implements sim.Session for Microsoft Flight Simulator via SimConnect.
// Unlike a telemetry consumer it owns no background loops: the engine opens
// one session per apply pass and drives every call synchronously.
type Client struct {
	handle    uintptr
	connected bool
	logger    *slog.Logger
	appName   string
	dllPath   string
	nextDefID uint32
}

// NewClient creates a new SimConnect session client.
// If dllPath is empty, it will attempt to auto-discover SimConnect.dll.
func NewClient(appName, dllPath string) *Client {
	return &Client{
		logger:  slog.Default().With("component", "simconnect"),
		appName: appName,
		dllPath: dllPath,
	}
}

// Open establishes the SimConnect session.
func (c *Client) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !IsLoaded() {
		path := c.dllPath
		if path == "" {
			var err error
			path, err = FindDLL()
			if err != nil {
				return fmt.Errorf("failed to find SimConnect.dll: %w", err)
			}
		}
		if err := LoadDLL(path); err != nil {
			return err
		}
	}

	handle, err := Open(c.appName)
	if err != nil {
		return err
	}

	c.handle = handle
	c.connected = true
	c.logger.Info("SimConnect connected", "app", c.appName)
	return nil
}

// Close terminates the session.
func (c *Client) Close() error {
	if !c.connected {
		return nil
	}
	c.connected = false
	err := Close(c.handle)
	c.handle = 0
	c.logger.Info("SimConnect disconnected")
	return err
}

// SetVariable writes one typed value to a named variable/unit pair.
// Each write uses a throwaway data definition so arbitrary names work.
func (c *Client) SetVariable(name, unit string, v simvar.Value) error {
	if !c.connected {
		return sim.ErrNotConnected
	}

	defID := c.allocDefID()
	wireType := uint32(v.Type)
	if err := AddToDataDefinition(c.handle, defID, name, unit, wireType); err != nil {
		return err
	}
	defer func() { _ = ClearDataDefinition(c.handle, defID) }()

	ptr, size, err := marshalValue(v)
	if err != nil {
		return err
	}
	return SetDataOnSimObject(c.handle, defID, OBJECT_ID_USER, 0, 0, size, ptr)
}

// SetInitPosition transmits the teleport composite as a single atomic write.
func (c *Client) SetInitPosition(p sim.InitPosition) error {
	if !c.connected {
		return sim.ErrNotConnected
	}

	defID := c.allocDefID()
	if err := AddToDataDefinition(c.handle, defID, "Initial Position", "", DATATYPE_INITPOSITION); err != nil {
		return err
	}
	defer func() { _ = ClearDataDefinition(c.handle, defID) }()

	data := InitPositionData(p)
	return SetDataOnSimObject(c.handle, defID, OBJECT_ID_USER, 0, 0,
		uint32(unsafe.Sizeof(data)), unsafe.Pointer(&data))
}

// SetWorldVelocity transmits the world velocity composite as a single write.
func (c *Client) SetWorldVelocity(x, y, z float64) error {
	if !c.connected {
		return sim.ErrNotConnected
	}

	defID := c.allocDefID()
	if err := AddToDataDefinition(c.handle, defID, "STRUCT WORLDVELOCITY", "feet per second", DATATYPE_XYZ); err != nil {
		return err
	}
	defer func() { _ = ClearDataDefinition(c.handle, defID) }()

	data := XYZData{X: x, Y: y, Z: z}
	return SetDataOnSimObject(c.handle, defID, OBJECT_ID_USER, 0, 0,
		uint32(unsafe.Sizeof(data)), unsafe.Pointer(&data))
}

// EnumerateInputEvents lists the input events currently available in the sim.
// Results can span multiple dispatch pages; the pump runs until the final
// page arrives or the timeout expires.
func (c *Client) EnumerateInputEvents(ctx context.Context) ([]sim.EventDescriptor, error) {
	if !c.connected {
		return nil, sim.ErrNotConnected
	}

	if err := EnumerateInputEvents(c.handle, ReqIDInputEvents); err != nil {
		return nil, err
	}

	deadline := time.Now().Add(enumTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	var out []sim.EventDescriptor
	pagesSeen := uint32(0)
	pagesTotal := uint32(0)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if time.Now().After(deadline) {
			// The sim answers instantly when connected; an empty result on
			// timeout means no input events are published (older sim builds).
			c.logger.Debug("Input event enumeration timed out", "collected", len(out))
			return out, nil
		}

		ppData, _, err := GetNextDispatch(c.handle)
		if err != nil {
			return nil, err
		}
		if ppData == nil {
			time.Sleep(5 * time.Millisecond)
			continue
		}

		recv := (*Recv)(ppData)
		switch recv.ID {
		case RECV_ID_OPEN:
			open := (*RecvOpen)(ppData)
			c.logger.Debug("SimConnect session opened", "app", cStringToGo(open.ApplicationName[:]))

		case RECV_ID_EXCEPTION:
			ex := (*RecvException)(ppData)
			c.logger.Warn("SimConnect exception", "exception", ex.Exception, "sendID", ex.SendID)

		case RECV_ID_QUIT:
			c.connected = false
			return nil, sim.ErrNotConnected

		case RECV_ID_ENUMERATE_INPUT_EVENTS:
			page := (*RecvEnumerateInputEvents)(ppData)
			if page.RequestID != ReqIDInputEvents {
				continue
			}
			base := uintptr(ppData) + unsafe.Sizeof(RecvEnumerateInputEvents{})
			entrySize := unsafe.Sizeof(InputEventDescriptor{})
			for i := uint32(0); i < page.ArraySize; i++ {
				d := (*InputEventDescriptor)(unsafe.Pointer(base + uintptr(i)*entrySize))
				out = append(out, sim.EventDescriptor{
					Name: cStringToGo(d.Name[:]),
					Hash: d.Hash,
				})
			}
			pagesSeen++
			pagesTotal = page.OutOf
			if pagesTotal == 0 || pagesSeen >= pagesTotal {
				return out, nil
			}
		}
	}
}

// SetInputEvent dispatches a native input event by hash with a parameter.
func (c *Client) SetInputEvent(hash uint64, value float64) error {
	if !c.connected {
		return sim.ErrNotConnected
	}
	return SetInputEvent(c.handle, hash, value)
}

// MapClientEventToSimEvent associates a client event id with a sim event name.
func (c *Client) MapClientEventToSimEvent(id uint32, name string) error {
	if !c.connected {
		return sim.ErrNotConnected
	}
	return MapClientEventToSimEvent(c.handle, id, name)
}

// TransmitClientEvent sends a mapped client event to the user aircraft.
func (c *Client) TransmitClientEvent(id uint32) error {
	if !c.connected {
		return sim.ErrNotConnected
	}
	return TransmitClientEvent(c.handle, OBJECT_ID_USER, id, 0,
		GROUP_PRIORITY_HIGHEST, EVENT_FLAG_GROUPID_IS_PRIORITY)
}

func (c *Client) allocDefID() uint32 {
	c.nextDefID++
	return c.nextDefID
}

// marshalValue produces the wire payload for a typed value.
func marshalValue(v simvar.Value) (unsafe.Pointer, uint32, error) {
	switch v.Kind {
	case simvar.KindInt:
		if v.Type == simvar.TypeInt32 {
			n := int32(v.Int)
			return unsafe.Pointer(&n), uint32(unsafe.Sizeof(n)), nil
		}
		n := v.Int
		return unsafe.Pointer(&n), uint32(unsafe.Sizeof(n)), nil

	case simvar.KindFloat:
		if v.Type == simvar.TypeFloat32 {
			f := float32(v.Float)
			return unsafe.Pointer(&f), uint32(unsafe.Sizeof(f)), nil
		}
		f := v.Float
		return unsafe.Pointer(&f), uint32(unsafe.Sizeof(f)), nil

	case simvar.KindString:
		size := stringSize(v.Type)
		if size == 0 {
			// Variable-length: bytes plus terminator.
			buf := append([]byte(v.Str), 0)
			return unsafe.Pointer(&buf[0]), uint32(len(buf)), nil
		}
		buf := make([]byte, size)
		copy(buf, v.Str)
		buf[size-1] = 0 // always terminated, truncating if needed
		return unsafe.Pointer(&buf[0]), uint32(size), nil

	case simvar.KindTriple:
		t := v.Triple
		return unsafe.Pointer(&t[0]), uint32(unsafe.Sizeof(t)), nil

	default:
		return nil, 0, fmt.Errorf("cannot marshal value of kind %d", v.Kind)
	}
}

func stringSize(dt simvar.DataType) int {
	switch dt {
	case simvar.TypeString8:
		return 8
	case simvar.TypeString32:
		return 32
	case simvar.TypeString64:
		return 64
	case simvar.TypeString128:
		return 128
	case simvar.TypeString256:
		return 256
	case simvar.TypeString260:
		return 260
	default:
		return 0
	}
}
