//go:build windows

package simconnect

// Recv is the base struct for all received messages.
type Recv struct {
	Size    uint32
	Version uint32
	ID      uint32
}

// RecvOpen is received when connection is established.
type RecvOpen struct {
	Recv
	ApplicationName         [256]byte
	ApplicationVersionMajor uint32
	ApplicationVersionMinor uint32
	ApplicationBuildMajor   uint32
	ApplicationBuildMinor   uint32
	SimConnectVersionMajor  uint32
	SimConnectVersionMinor  uint32
	SimConnectBuildMajor    uint32
	SimConnectBuildMinor    uint32
	Reserved1               uint32
	Reserved2               uint32
}

// RecvException is received when an error occurs.
type RecvException struct {
	Recv
	Exception uint32
	SendID    uint32
	Index     uint32
}

// RecvEvent is received when a subscribed system event occurs.
type RecvEvent struct {
	Recv
	UEventID uint32
	Data     uint32
}

// RecvEnumerateInputEvents is received in response to EnumerateInputEvents.
// The descriptor array follows the header; large result sets arrive paged,
// with EntryNumber/OutOf identifying the page.
type RecvEnumerateInputEvents struct {
	Recv
	RequestID   uint32
	ArraySize   uint32
	EntryNumber uint32
	OutOf       uint32
	// InputEventDescriptor entries follow immediately after this struct
}

// InputEventDescriptor is one entry of an input event enumeration.
// Must match SIMCONNECT_INPUT_EVENT_DESCRIPTOR exactly.
type InputEventDescriptor struct {
	Name [64]byte
	Hash uint64
	Type uint32
	_    uint32 // alignment padding
}

// InitPositionData is the teleport payload for SetDataOnSimObject.
// Must match SIMCONNECT_DATA_INITPOSITION exactly.
type InitPositionData struct {
	Latitude  float64
	Longitude float64
	Altitude  float64
	Pitch     float64
	Bank      float64
	Heading   float64
	OnGround  uint32
	Airspeed  uint32
}

// XYZData is the world velocity payload: three float64 components.
type XYZData struct {
	X float64
	Y float64
	Z float64
}
