//go:build windows

// Package simconnect provides direct bindings to SimConnect.dll for MSFS integration.
package simconnect

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"unsafe"
)

// DLL and procedure handles
var (
	dll                        *syscall.LazyDLL
	procOpen                   *syscall.LazyProc
	procClose                  *syscall.LazyProc
	procAddToDataDefinition    *syscall.LazyProc
	procClearDataDefinition    *syscall.LazyProc
	procSetDataOnSimObject     *syscall.LazyProc
	procGetNextDispatch        *syscall.LazyProc
	procMapClientEventToSim    *syscall.LazyProc
	procTransmitClientEvent    *syscall.LazyProc
	procEnumerateInputEvents   *syscall.LazyProc
	procSetInputEvent          *syscall.LazyProc
	procSubscribeToSystemEvent *syscall.LazyProc
)

// Error codes
const (
	SOK   = 0
	EFAIL = 0x80004005
)

// Data types
const (
	DATATYPE_INVALID      uint32 = 0
	DATATYPE_INT32        uint32 = 1
	DATATYPE_INT64        uint32 = 2
	DATATYPE_FLOAT32      uint32 = 3
	DATATYPE_FLOAT64      uint32 = 4
	DATATYPE_STRING8      uint32 = 5
	DATATYPE_STRING32     uint32 = 6
	DATATYPE_STRING64     uint32 = 7
	DATATYPE_STRING128    uint32 = 8
	DATATYPE_STRING256    uint32 = 9
	DATATYPE_STRING260    uint32 = 10
	DATATYPE_STRINGV      uint32 = 11
	DATATYPE_INITPOSITION uint32 = 12
	DATATYPE_MARKERSTATE  uint32 = 13
	DATATYPE_WAYPOINT     uint32 = 14
	DATATYPE_LATLONALT    uint32 = 15
	DATATYPE_XYZ          uint32 = 16
)

// Recv IDs
const (
	RECV_ID_NULL                   uint32 = 0
	RECV_ID_EXCEPTION              uint32 = 1
	RECV_ID_OPEN                   uint32 = 2
	RECV_ID_QUIT                   uint32 = 3
	RECV_ID_EVENT                  uint32 = 4
	RECV_ID_SIMOBJECT_DATA         uint32 = 8
	RECV_ID_ENUMERATE_INPUT_EVENTS uint32 = 34
)

// Special Object IDs
const (
	OBJECT_ID_USER uint32 = 0
)

// Notification group priorities and event flags
const (
	GROUP_PRIORITY_HIGHEST         uint32 = 1
	EVENT_FLAG_GROUPID_IS_PRIORITY uint32 = 16
)

// FindDLL returns the path to SimConnect.dll by checking SDK paths.
func FindDLL() (string, error) {
	var paths []string

	// Check MSFS_SDK environment variable
	if sdkPath := os.Getenv("MSFS_SDK"); sdkPath != "" {
		paths = append(paths, filepath.Join(sdkPath, "SimConnect SDK", "lib", "SimConnect.dll"))
	}

	// Check common SDK installation paths (MSFS 2020 and 2024)
	paths = append(paths,
		`C:\MSFS 2024 SDK\SimConnect SDK\lib\SimConnect.dll`,
		`C:\MSFS SDK\SimConnect SDK\lib\SimConnect.dll`,
		`C:\Program Files (x86)\Microsoft Flight Simulator SDK\SimConnect SDK\lib\SimConnect.dll`,
	)

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("SimConnect.dll not found; no SDK installed")
}

// LoadDLL loads the SimConnect.dll from the specified path.
func LoadDLL(path string) error {
	dll = syscall.NewLazyDLL(path)
	if err := dll.Load(); err != nil {
		return fmt.Errorf("failed to load SimConnect.dll: %w", err)
	}

	procOpen = dll.NewProc("SimConnect_Open")
	procClose = dll.NewProc("SimConnect_Close")
	procAddToDataDefinition = dll.NewProc("SimConnect_AddToDataDefinition")
	procClearDataDefinition = dll.NewProc("SimConnect_ClearDataDefinition")
	procSetDataOnSimObject = dll.NewProc("SimConnect_SetDataOnSimObject")
	procGetNextDispatch = dll.NewProc("SimConnect_GetNextDispatch")
	procMapClientEventToSim = dll.NewProc("SimConnect_MapClientEventToSimEvent")
	procTransmitClientEvent = dll.NewProc("SimConnect_TransmitClientEvent")
	procEnumerateInputEvents = dll.NewProc("SimConnect_EnumerateInputEvents")
	procSetInputEvent = dll.NewProc("SimConnect_SetInputEvent")
	procSubscribeToSystemEvent = dll.NewProc("SimConnect_SubscribeToSystemEvent")
	return nil
}

// IsLoaded returns true if the SimConnect DLL and procedures are loaded.
func IsLoaded() bool {
	return dll != nil && procOpen != nil
}

// Open establishes a connection to SimConnect.
// Returns the handle on success.
func Open(name string) (uintptr, error) {
	if !IsLoaded() {
		return 0, fmt.Errorf("SimConnect DLL not loaded")
	}
	var handle uintptr
	namePtr := append([]byte(name), 0)

	r1, _, err := procOpen.Call(
		uintptr(unsafe.Pointer(&handle)),
		uintptr(unsafe.Pointer(&namePtr[0])),
		0, // hWnd
		0, // UserEventWin32
		0, // EventHandle
		0, // ConfigIndex
	)

	if int32(r1) < 0 {
		return 0, fmt.Errorf("SimConnect_Open failed: %v (0x%x)", err, r1)
	}

	return handle, nil
}

// Close terminates the SimConnect connection.
func Close(handle uintptr) error {
	if !IsLoaded() {
		return nil // already closed or not loaded
	}
	r1, _, err := procClose.Call(handle)
	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_Close failed: %v (0x%x)", err, r1)
	}
	return nil
}

// AddToDataDefinition adds a SimVar to a data definition.
func AddToDataDefinition(handle uintptr, defineID uint32, datumName, unitsName string, datumType uint32) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	namePtr := append([]byte(datumName), 0)
	var unitsPtr []byte
	if unitsName != "" {
		unitsPtr = append([]byte(unitsName), 0)
	}

	var unitsArg uintptr
	if len(unitsPtr) > 0 {
		unitsArg = uintptr(unsafe.Pointer(&unitsPtr[0]))
	}

	r1, _, err := procAddToDataDefinition.Call(
		handle,
		uintptr(defineID),
		uintptr(unsafe.Pointer(&namePtr[0])),
		unitsArg,
		uintptr(datumType),
		uintptr(0),          // fEpsilon (float32)
		uintptr(0xFFFFFFFF), // DatumID
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_AddToDataDefinition failed for %s: %v (0x%x)", datumName, err, r1)
	}

	return nil
}

// ClearDataDefinition removes all datums from a data definition.
func ClearDataDefinition(handle uintptr, defineID uint32) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	r1, _, err := procClearDataDefinition.Call(handle, uintptr(defineID))
	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_ClearDataDefinition failed: %v (0x%x)", err, r1)
	}
	return nil
}

// SetDataOnSimObject sets data on a sim object.
func SetDataOnSimObject(handle uintptr, defineID, objectID, flags, arrayCount, cbUnitSize uint32, pDataSet unsafe.Pointer) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	r1, _, err := procSetDataOnSimObject.Call(
		handle,
		uintptr(defineID),
		uintptr(objectID),
		uintptr(flags),
		uintptr(arrayCount),
		uintptr(cbUnitSize),
		uintptr(pDataSet),
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_SetDataOnSimObject failed: %v (0x%x)", err, r1)
	}

	return nil
}

// GetNextDispatch retrieves the next message from SimConnect.
// Returns nil, 0, nil if no message is available.
func GetNextDispatch(handle uintptr) (ppData unsafe.Pointer, cbData uint32, err error) {
	if !IsLoaded() {
		return nil, 0, fmt.Errorf("DLL not loaded")
	}
	r1, _, _ := procGetNextDispatch.Call(
		handle,
		uintptr(unsafe.Pointer(&ppData)),
		uintptr(unsafe.Pointer(&cbData)),
	)

	if uint32(r1) == EFAIL {
		// No message available
		return nil, 0, nil
	}

	if int32(r1) < 0 {
		return nil, 0, fmt.Errorf("SimConnect_GetNextDispatch failed: 0x%x", r1)
	}

	return ppData, cbData, nil
}

// MapClientEventToSimEvent associates a client event id with a named sim event.
func MapClientEventToSimEvent(handle uintptr, eventID uint32, eventName string) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	namePtr := append([]byte(eventName), 0)

	r1, _, err := procMapClientEventToSim.Call(
		handle,
		uintptr(eventID),
		uintptr(unsafe.Pointer(&namePtr[0])),
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_MapClientEventToSimEvent failed for %s: %v (0x%x)", eventName, err, r1)
	}

	return nil
}

// TransmitClientEvent sends a mapped client event to a sim object.
func TransmitClientEvent(handle uintptr, objectID, eventID, data, groupID, flags uint32) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	r1, _, err := procTransmitClientEvent.Call(
		handle,
		uintptr(objectID),
		uintptr(eventID),
		uintptr(data),
		uintptr(groupID),
		uintptr(flags),
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_TransmitClientEvent failed: %v (0x%x)", err, r1)
	}

	return nil
}

// EnumerateInputEvents requests the list of currently available input events.
// Results arrive as RECV_ID_ENUMERATE_INPUT_EVENTS dispatches.
func EnumerateInputEvents(handle uintptr, requestID uint32) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	r1, _, err := procEnumerateInputEvents.Call(
		handle,
		uintptr(requestID),
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_EnumerateInputEvents failed: %v (0x%x)", err, r1)
	}

	return nil
}

// SetInputEvent sets the value of a native input event by hash.
func SetInputEvent(handle uintptr, hash uint64, value float64) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	r1, _, err := procSetInputEvent.Call(
		handle,
		uintptr(hash),
		uintptr(unsafe.Sizeof(value)),
		uintptr(unsafe.Pointer(&value)),
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_SetInputEvent failed: %v (0x%x)", err, r1)
	}

	return nil
}

// SubscribeToSystemEvent subscribes to a system event like "SimStart" or "SimStop".
func SubscribeToSystemEvent(handle uintptr, clientEventID uint32, eventName string) error {
	if !IsLoaded() {
		return fmt.Errorf("DLL not loaded")
	}
	namePtr := append([]byte(eventName), 0)

	r1, _, err := procSubscribeToSystemEvent.Call(
		handle,
		uintptr(clientEventID),
		uintptr(unsafe.Pointer(&namePtr[0])),
	)

	if int32(r1) < 0 {
		return fmt.Errorf("SimConnect_SubscribeToSystemEvent failed for %s: %v (0x%x)", eventName, err, r1)
	}

	return nil
}
